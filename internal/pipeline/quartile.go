package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDegenerateBins is returned when the income distribution cannot be cut into
// four bins with distinct edges.
var ErrDegenerateBins = errors.New("quartile bins are degenerate: bin edges must be unique")

// Quantile returns the q-th quantile of sorted values using linear interpolation
// between closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// QuartileEdges computes the 0, 25, 50, 75 and 100 percent cut points of values.
func QuartileEdges(values []float64) ([5]float64, error) {
	var edges [5]float64
	if len(values) == 0 {
		return edges, ErrEmptyTable
	}
	cp := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return edges, fmt.Errorf("quartile input %d is not finite", i)
		}
		cp[i] = v
	}
	sort.Float64s(cp)
	for i := range edges {
		edges[i] = Quantile(cp, float64(i)/4)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			return edges, fmt.Errorf("%w: %v", ErrDegenerateBins, edges)
		}
	}
	return edges, nil
}

// QuartileOf returns the 1-based bin of v. Bins are right-closed and the lowest
// edge belongs to bin 1.
func QuartileOf(v float64, edges [5]float64) int {
	q := 1
	for q < 4 && v > edges[q] {
		q++
	}
	return q
}

// AssignQuartiles bins MedianFamilyIncome across all records and stores the result
// in IncomeQuartile.
func AssignQuartiles(records []CountyRecord) ([5]float64, error) {
	incomes := make([]float64, len(records))
	for i, r := range records {
		incomes[i] = r.MedianFamilyIncome
	}
	edges, err := QuartileEdges(incomes)
	if err != nil {
		return edges, err
	}
	for i := range records {
		records[i].IncomeQuartile = QuartileOf(records[i].MedianFamilyIncome, edges)
	}
	return edges, nil
}
