package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	rate := 5.0
	return &Table{Records: []CountyRecord{
		{FIPS: 1001, StateFIPS: 1, CountyFIPS: 1, GiniIndex: 0.45, MedianFamilyIncome: 67000, Employed: 100, Unemployed: 5, VacantHousing: 2600, PercentUnemployed: &rate, IncomeQuartile: 2},
		{FIPS: 1003, StateFIPS: 1, CountyFIPS: 3, GiniIndex: 0.47, MedianFamilyIncome: 71000, Employed: 0, Unemployed: 0, VacantHousing: 22000, IncomeQuartile: 3},
	}}
}

func TestProjectSelectsAndRenames(t *testing.T) {
	f, err := sampleTable().Display()
	require.NoError(t, err)

	assert.Equal(t, []string{GiniIndex, VacantHousing, PercentUnemployed, MedianFamilyIncome}, f.Names())
	assert.Equal(t, DisplayColumns(), f.Names())
	assert.Equal(t, 2, f.Len())

	pct, err := f.Column(PercentUnemployed)
	require.NoError(t, err)
	assert.Equal(t, 5.0, pct.Values[0])
	assert.True(t, math.IsNaN(pct.Values[1]))
}

func TestProjectIsIdempotent(t *testing.T) {
	once, err := Project(sampleTable().Frame())
	require.NoError(t, err)
	twice, err := Project(once)
	require.NoError(t, err)

	require.Equal(t, once.Names(), twice.Names())
	for i := range once.Columns {
		assert.Equal(t, once.Columns[i].Name, twice.Columns[i].Name)
		for j, v := range once.Columns[i].Values {
			w := twice.Columns[i].Values[j]
			if math.IsNaN(v) {
				assert.True(t, math.IsNaN(w))
				continue
			}
			assert.Equal(t, v, w)
		}
	}
}

func TestProjectMissingColumn(t *testing.T) {
	_, err := Project(Frame{Columns: []Column{{Name: ColGiniIndex, Values: []float64{1}}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ColVacantHousing)
}

func TestDisplayWithQuartile(t *testing.T) {
	f, err := sampleTable().DisplayWithQuartile()
	require.NoError(t, err)
	q, err := f.Column(IncomeQuartile)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, q.Values)
}

func TestFrameFiniteSkipsNaN(t *testing.T) {
	f, err := sampleTable().Display()
	require.NoError(t, err)
	vals, err := f.Finite(MedianFamilyIncome, PercentUnemployed)
	require.NoError(t, err)
	assert.Equal(t, []float64{67000}, vals[0])
	assert.Equal(t, []float64{5}, vals[1])
}

func TestFrameAppendLengthMismatch(t *testing.T) {
	f := Frame{Columns: []Column{{Name: "a", Values: []float64{1, 2}}}}
	_, err := f.Append(Column{Name: "b", Values: []float64{1}})
	assert.Error(t, err)
	_, err = f.Append(Column{Name: "a", Values: []float64{1, 2}})
	assert.Error(t, err)
}
