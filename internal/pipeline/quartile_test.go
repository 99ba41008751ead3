package pipeline

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileLinear(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, Quantile(s, 0))
	assert.Equal(t, 1.75, Quantile(s, 0.25))
	assert.Equal(t, 2.5, Quantile(s, 0.5))
	assert.Equal(t, 3.25, Quantile(s, 0.75))
	assert.Equal(t, 4.0, Quantile(s, 1))
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}

func TestQuartileOfBoundaries(t *testing.T) {
	edges, err := QuartileEdges([]float64{10, 20, 30, 40, 50})
	require.NoError(t, err)
	assert.Equal(t, [5]float64{10, 20, 30, 40, 50}, edges)

	// Lowest value is in bin 1 and bins are right-closed.
	assert.Equal(t, 1, QuartileOf(10, edges))
	assert.Equal(t, 1, QuartileOf(20, edges))
	assert.Equal(t, 2, QuartileOf(20.5, edges))
	assert.Equal(t, 3, QuartileOf(40, edges))
	assert.Equal(t, 4, QuartileOf(50, edges))
}

func TestAssignQuartilesRangeAndOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	recs := make([]CountyRecord, 500)
	for i := range recs {
		recs[i].MedianFamilyIncome = 20000 + rng.Float64()*100000
	}
	_, err := AssignQuartiles(recs)
	require.NoError(t, err)

	counts := map[int]int{}
	for _, r := range recs {
		require.GreaterOrEqual(t, r.IncomeQuartile, 1)
		require.LessOrEqual(t, r.IncomeQuartile, 4)
		counts[r.IncomeQuartile]++
	}
	for q := 1; q <= 4; q++ {
		assert.InDelta(t, 125, counts[q], 1, "quartile %d", q)
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].MedianFamilyIncome < recs[j].MedianFamilyIncome })
	for i := 1; i < len(recs); i++ {
		assert.LessOrEqual(t, recs[i-1].IncomeQuartile, recs[i].IncomeQuartile)
	}
}

func TestAssignQuartilesDegenerate(t *testing.T) {
	recs := []CountyRecord{
		{MedianFamilyIncome: 50000}, {MedianFamilyIncome: 50000},
		{MedianFamilyIncome: 50000}, {MedianFamilyIncome: 50000},
		{MedianFamilyIncome: 90000},
	}
	_, err := AssignQuartiles(recs)
	require.ErrorIs(t, err, ErrDegenerateBins)
	for _, r := range recs {
		assert.Zero(t, r.IncomeQuartile, "no partial assignment on failure")
	}
}

func TestQuartileEdgesEmpty(t *testing.T) {
	_, err := QuartileEdges(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)
}
