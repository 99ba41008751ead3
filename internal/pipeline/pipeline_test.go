package pipeline

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/KaramelBytes/census-explorer/internal/census"
	"github.com/KaramelBytes/census-explorer/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawRow(label string, gini, income, employed, unemployed, pop, vacant string) census.RawRow {
	return census.RawRow{Location: label, Values: map[string]string{
		census.VarGiniIndex:          gini,
		census.VarMedianFamilyIncome: income,
		census.VarEmployed:           employed,
		census.VarUnemployed:         unemployed,
		census.VarPopulation:         pop,
		census.VarVacantHousing:      vacant,
	}}
}

// eightRows builds the synthetic end-to-end input. When withTerritory is set the last
// row is a Puerto Rico municipio.
func eightRows(withTerritory bool) *census.RawTable {
	incomes := []string{"52000", "71000", "48000", "90500", "61000", "39000", "83000", "57000"}
	raw := &census.RawTable{Variables: census.DefaultQuery().Variables}
	for i := 0; i < 8; i++ {
		label := fmt.Sprintf("County %c, State Y: Summary level: 050, state:06, county:%04d", 'A'+i, i+1)
		if withTerritory && i == 7 {
			label = "Adjuntas Municipio, Puerto Rico: Summary level: 050, state:72, county:0001"
		}
		employed := fmt.Sprintf("%d", 1000*(i+1))
		unemployed := fmt.Sprintf("%d", 40*(i+1)+i)
		raw.Rows = append(raw.Rows, rawRow(label, fmt.Sprintf("0.4%d", i), incomes[i], employed, unemployed, "10000", fmt.Sprintf("%d", 100*i)))
	}
	return raw
}

func newTestPipeline() *Pipeline {
	return New(nil, logging.Discard(), nil)
}

func TestRunEndToEnd(t *testing.T) {
	tbl, err := newTestPipeline().Run(eightRows(false))
	require.NoError(t, err)
	require.Len(t, tbl.Records, 8)
	assert.Zero(t, tbl.Excluded)

	for i, r := range tbl.Records {
		assert.Equal(t, 60000+i+1, r.FIPS, "fips of row %d", i)
		assert.Equal(t, 6, r.StateFIPS)
		assert.Equal(t, i+1, r.CountyFIPS)
		assert.Equal(t, fmt.Sprintf("County %c", 'A'+i), r.CountyName)
		require.NotNil(t, r.PercentUnemployed)
		assert.InDelta(t, r.Unemployed/r.Employed*100, *r.PercentUnemployed, 1e-12)
	}

	f, err := tbl.DisplayWithQuartile()
	require.NoError(t, err)
	assert.Equal(t, 8, f.Len())
	income, _ := f.Column(MedianFamilyIncome)
	quart, _ := f.Column(IncomeQuartile)
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return income.Values[idx[a]] < income.Values[idx[b]] })
	for k := 1; k < len(idx); k++ {
		assert.LessOrEqual(t, quart.Values[idx[k-1]], quart.Values[idx[k]])
	}
	assert.Equal(t, 1.0, quart.Values[idx[0]])
	assert.Equal(t, 4.0, quart.Values[idx[len(idx)-1]])
}

func TestRunDropsExcludedTerritory(t *testing.T) {
	tbl, err := newTestPipeline().Run(eightRows(true))
	require.NoError(t, err)
	require.Len(t, tbl.Records, 7)
	assert.Equal(t, 1, tbl.Excluded)
	for _, r := range tbl.Records {
		assert.NotEqual(t, 72, r.StateFIPS)
		assert.NotEqual(t, "Puerto Rico", r.StateName)
	}
}

func TestRunKeepsOtherTerritoriesUnlessConfigured(t *testing.T) {
	raw := eightRows(false)
	raw.Rows[0].Location = "Guam, Guam Territory: Summary level: 050, state:66> county:010"

	tbl, err := newTestPipeline().Run(raw)
	require.NoError(t, err)
	assert.Len(t, tbl.Records, 8)

	tbl, err = New([]string{"Puerto Rico", "Guam Territory"}, logging.Discard(), nil).Run(raw)
	require.NoError(t, err)
	assert.Len(t, tbl.Records, 7)
}

func TestRunZeroEmployedIsAbsent(t *testing.T) {
	raw := eightRows(false)
	raw.Rows[2].Values[census.VarEmployed] = "0"

	tbl, err := newTestPipeline().Run(raw)
	require.NoError(t, err)
	require.Len(t, tbl.Records, 8)
	assert.Nil(t, tbl.Records[2].PercentUnemployed)
	assert.NotEmpty(t, tbl.Warnings)
}

func TestUnemploymentRateNonFiniteOnZeroEmployed(t *testing.T) {
	assert.InDelta(t, 4.0, UnemploymentRate(40, 1000), 1e-12)
	assert.True(t, math.IsInf(UnemploymentRate(5, 0), 1))
	assert.True(t, math.IsNaN(UnemploymentRate(0, 0)))
}

func TestRunMalformedLocationFails(t *testing.T) {
	raw := eightRows(false)
	raw.Rows[4].Location = "Nowhere: state 06 county 9"

	_, err := newTestPipeline().Run(raw)
	var le *LocationError
	require.ErrorAs(t, err, &le)
}

func TestRunDuplicateFIPSFails(t *testing.T) {
	raw := eightRows(false)
	raw.Rows[1].Location = raw.Rows[0].Location

	_, err := newTestPipeline().Run(raw)
	require.ErrorIs(t, err, ErrDuplicateFIPS)
}

func TestRunDropsPlaceholderEstimates(t *testing.T) {
	raw := eightRows(false)
	raw.Rows[3].Values[census.VarMedianFamilyIncome] = "-666666666"

	tbl, err := newTestPipeline().Run(raw)
	require.NoError(t, err)
	assert.Len(t, tbl.Records, 7)
	require.Len(t, tbl.Dropped, 1)
	assert.Contains(t, tbl.Dropped[0].Reason, "placeholder")
}

func TestRunDegenerateIncomesFail(t *testing.T) {
	raw := eightRows(false)
	for i := range raw.Rows {
		raw.Rows[i].Values[census.VarMedianFamilyIncome] = "50000"
	}
	_, err := newTestPipeline().Run(raw)
	require.ErrorIs(t, err, ErrDegenerateBins)
}

func TestRunEmpty(t *testing.T) {
	_, err := newTestPipeline().Run(&census.RawTable{})
	require.ErrorIs(t, err, ErrEmptyTable)

	_, err = newTestPipeline().Run(nil)
	require.ErrorIs(t, err, ErrEmptyTable)
}
