package analysis

import (
	"math"
	"testing"

	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineFrame builds five rows per quartile where Gini Index = q*x + 1 and
// Vacant Housing = x.
func lineFrame() pipeline.Frame {
	var gini, vacant, pct, income, quart []float64
	for q := 1; q <= 4; q++ {
		for x := 1; x <= 5; x++ {
			gini = append(gini, float64(q*x+1))
			vacant = append(vacant, float64(x))
			pct = append(pct, float64(x))
			income = append(income, float64(10000*q+x))
			quart = append(quart, float64(q))
		}
	}
	pct[0] = math.NaN()
	return pipeline.Frame{Columns: []pipeline.Column{
		{Name: pipeline.GiniIndex, Values: gini},
		{Name: pipeline.VacantHousing, Values: vacant},
		{Name: pipeline.PercentUnemployed, Values: pct},
		{Name: pipeline.MedianFamilyIncome, Values: income},
		{Name: pipeline.IncomeQuartile, Values: quart},
	}}
}

func TestExplorePerQuartileFits(t *testing.T) {
	reg, err := Explore(lineFrame(), pipeline.VacantHousing, pipeline.GiniIndex)
	require.NoError(t, err)
	assert.False(t, reg.Skipped())
	require.Len(t, reg.Fits, 4)
	for i, f := range reg.Fits {
		q := float64(i + 1)
		assert.Equal(t, i+1, f.Quartile)
		assert.Equal(t, 5, f.N)
		assert.InDelta(t, q, f.Slope, 1e-9)
		assert.InDelta(t, 1.0, f.Intercept, 1e-9)
		assert.InDelta(t, 1.0, f.RSquared, 1e-9)
		assert.InDelta(t, 1.0, f.R, 1e-9)

		x, y, ok := f.Line()
		require.True(t, ok)
		assert.Equal(t, [2]float64{1, 5}, x)
		assert.InDelta(t, q+1, y[0], 1e-9)
		assert.InDelta(t, 5*q+1, y[1], 1e-9)
	}
}

func TestExploreSkipsAbsentValues(t *testing.T) {
	reg, err := Explore(lineFrame(), pipeline.PercentUnemployed, pipeline.GiniIndex)
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Fits[0].N)
	assert.Equal(t, 5, reg.Fits[1].N)
}

func TestExploreIdenticalAxesWarns(t *testing.T) {
	for _, col := range pipeline.DisplayColumns() {
		reg, err := Explore(lineFrame(), col, col)
		require.NoError(t, err)
		assert.True(t, reg.Skipped())
		assert.Equal(t, IdenticalAxesWarning, reg.Warning)
		assert.Empty(t, reg.Fits)
		assert.Contains(t, reg.Markdown(), "Warning:")
	}
}

func TestExploreUnknownColumn(t *testing.T) {
	_, err := Explore(lineFrame(), "Population", pipeline.GiniIndex)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestExploreTooFewPoints(t *testing.T) {
	f := pipeline.Frame{Columns: []pipeline.Column{
		{Name: pipeline.GiniIndex, Values: []float64{0.4}},
		{Name: pipeline.VacantHousing, Values: []float64{10}},
		{Name: pipeline.IncomeQuartile, Values: []float64{1}},
	}}
	reg, err := Explore(f, pipeline.GiniIndex, pipeline.VacantHousing)
	require.NoError(t, err)
	require.Len(t, reg.Fits, 4)
	assert.Equal(t, 1, reg.Fits[0].N)
	assert.True(t, math.IsNaN(reg.Fits[0].Slope))
	_, _, ok := reg.Fits[0].Line()
	assert.False(t, ok)
	assert.Contains(t, reg.Markdown(), "| 1 | 1 |")
}
