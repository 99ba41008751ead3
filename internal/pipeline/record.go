package pipeline

import (
	"errors"
	"math"
)

var (
	// ErrEmptyTable is returned when no records survive to a stage that needs data.
	ErrEmptyTable = errors.New("table has no records")
	// ErrDuplicateFIPS is returned when two rows resolve to the same combined identifier.
	ErrDuplicateFIPS = errors.New("duplicate fips")
)

// CountyRecord is one county-equivalent unit after the pipeline.
type CountyRecord struct {
	StateFIPS  int
	CountyFIPS int
	FIPS       int
	CountyName string
	StateName  string

	GiniIndex          float64
	MedianFamilyIncome float64
	Employed           float64
	Unemployed         float64
	Population         float64
	VacantHousing      float64

	// PercentUnemployed is nil when Employed is zero.
	PercentUnemployed *float64
	IncomeQuartile    int
}

// Drop records a row removed by the pipeline and why.
type Drop struct {
	Location string
	Reason   string
}

// Table is the cleaned, read-only result of one pipeline run.
type Table struct {
	Records []CountyRecord
	// Excluded counts rows removed by the territory filter.
	Excluded int
	Dropped  []Drop
	Warnings []string
	// QuartileEdges are the income cut points used for IncomeQuartile.
	QuartileEdges [5]float64
}

// Frame returns the working columns as a Frame. Absent percentages are NaN.
func (t *Table) Frame() Frame {
	n := len(t.Records)
	mk := func(name string, get func(r *CountyRecord) float64) Column {
		vals := make([]float64, n)
		for i := range t.Records {
			vals[i] = get(&t.Records[i])
		}
		return Column{Name: name, Values: vals}
	}
	return Frame{Columns: []Column{
		mk(ColFIPS, func(r *CountyRecord) float64 { return float64(r.FIPS) }),
		mk(ColStateFIPS, func(r *CountyRecord) float64 { return float64(r.StateFIPS) }),
		mk(ColCountyFIPS, func(r *CountyRecord) float64 { return float64(r.CountyFIPS) }),
		mk(ColGiniIndex, func(r *CountyRecord) float64 { return r.GiniIndex }),
		mk(ColMedianFamilyIncome, func(r *CountyRecord) float64 { return r.MedianFamilyIncome }),
		mk(ColEmployed, func(r *CountyRecord) float64 { return r.Employed }),
		mk(ColUnemployed, func(r *CountyRecord) float64 { return r.Unemployed }),
		mk(ColPopulation, func(r *CountyRecord) float64 { return r.Population }),
		mk(ColVacantHousing, func(r *CountyRecord) float64 { return r.VacantHousing }),
		mk(ColPercentUnemployed, func(r *CountyRecord) float64 {
			if r.PercentUnemployed == nil {
				return math.NaN()
			}
			return *r.PercentUnemployed
		}),
	}}
}

// Display returns the four display columns.
func (t *Table) Display() (Frame, error) {
	return Project(t.Frame())
}

// DisplayWithQuartile returns the display columns followed by Income Quartile.
func (t *Table) DisplayWithQuartile() (Frame, error) {
	f, err := t.Display()
	if err != nil {
		return Frame{}, err
	}
	q := make([]float64, len(t.Records))
	for i, r := range t.Records {
		q[i] = float64(r.IncomeQuartile)
	}
	return f.Append(Column{Name: IncomeQuartile, Values: q})
}
