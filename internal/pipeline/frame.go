package pipeline

import (
	"fmt"
	"math"
)

// Working column names.
const (
	ColFIPS               = "fips"
	ColStateFIPS          = "state_fips"
	ColCountyFIPS         = "county_fips"
	ColGiniIndex          = "gini_index"
	ColMedianFamilyIncome = "median_family_income"
	ColEmployed           = "employed"
	ColUnemployed         = "unemployed"
	ColPopulation         = "population"
	ColVacantHousing      = "vacant_housing"
	ColPercentUnemployed  = "percent_unemployed"
)

// Display column names.
const (
	GiniIndex          = "Gini Index"
	VacantHousing      = "Vacant Housing"
	PercentUnemployed  = "Percent Unemployed"
	MedianFamilyIncome = "Median Family Income"
	IncomeQuartile     = "Income Quartile"
)

// projection maps each display column to its working source, in display order.
var projection = []struct{ from, to string }{
	{ColGiniIndex, GiniIndex},
	{ColVacantHousing, VacantHousing},
	{ColPercentUnemployed, PercentUnemployed},
	{ColMedianFamilyIncome, MedianFamilyIncome},
}

// DisplayColumns lists the analysis variables users can pick as plot axes.
func DisplayColumns() []string {
	out := make([]string, len(projection))
	for i, p := range projection {
		out[i] = p.to
	}
	return out
}

// IsDisplayColumn reports whether name is one of DisplayColumns.
func IsDisplayColumn(name string) bool {
	for _, p := range projection {
		if p.to == name {
			return true
		}
	}
	return false
}

// Column is a named float column. Absent values are NaN.
type Column struct {
	Name   string
	Values []float64
}

// Frame is an ordered set of equal-length columns.
type Frame struct {
	Columns []Column
}

// Len returns the row count.
func (f Frame) Len() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return len(f.Columns[0].Values)
}

// Names returns the column names in order.
func (f Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (f Frame) Column(name string) (Column, error) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("column %s not found", name)
}

// Append returns a frame with col added at the end.
func (f Frame) Append(col Column) (Frame, error) {
	if len(f.Columns) > 0 && len(col.Values) != f.Len() {
		return Frame{}, fmt.Errorf("column %s has %d rows, frame has %d", col.Name, len(col.Values), f.Len())
	}
	if _, err := f.Column(col.Name); err == nil {
		return Frame{}, fmt.Errorf("column %s already exists", col.Name)
	}
	cols := make([]Column, 0, len(f.Columns)+1)
	cols = append(cols, f.Columns...)
	cols = append(cols, col)
	return Frame{Columns: cols}, nil
}

// Project narrows f to the four display columns, renaming working names to display
// names. A column already carrying its display name is taken as is, so projecting a
// projected frame returns an equal frame.
func Project(f Frame) (Frame, error) {
	out := Frame{Columns: make([]Column, 0, len(projection))}
	for _, p := range projection {
		c, err := f.Column(p.to)
		if err != nil {
			if c, err = f.Column(p.from); err != nil {
				return Frame{}, fmt.Errorf("project: missing %s (or %s)", p.from, p.to)
			}
		}
		out.Columns = append(out.Columns, Column{Name: p.to, Values: c.Values})
	}
	return out, nil
}

// Finite returns the values of the named columns for rows where every one of them is finite.
func (f Frame) Finite(names ...string) ([][]float64, error) {
	cols := make([]Column, len(names))
	for i, n := range names {
		c, err := f.Column(n)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	out := make([][]float64, len(names))
rows:
	for r := 0; r < f.Len(); r++ {
		for _, c := range cols {
			if v := c.Values[r]; math.IsNaN(v) || math.IsInf(v, 0) {
				continue rows
			}
		}
		for i, c := range cols {
			out[i] = append(out[i], c.Values[r])
		}
	}
	return out, nil
}
