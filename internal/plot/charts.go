package plot

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/census-explorer/internal/analysis"
	"github.com/KaramelBytes/census-explorer/internal/pipeline"
)

// ErrNoRegression is returned when a regression result carries no fits.
var ErrNoRegression = errors.New("regression was not computed")

// IncomeHistogram plots the distribution of median family income.
func IncomeHistogram(t *pipeline.Table) (*Plot, error) {
	if t == nil || len(t.Records) == 0 {
		return nil, pipeline.ErrEmptyTable
	}
	incomes := make([]float64, len(t.Records))
	for i, r := range t.Records {
		incomes[i] = r.MedianFamilyIncome
	}
	p := New(
		WithTitle("County Level Income Distribution"),
		WithXlabel("Median Family Income ($)"),
		WithYlabel("Frequency"),
		WithLegend(false),
	)
	p.Histogram(incomes, pipeline.MedianFamilyIncome, histogramColor)
	return p, nil
}

// IncomeVsUnemployment plots median family income against percent unemployed with
// one series per income quartile. Counties without a rate are left out.
func IncomeVsUnemployment(t *pipeline.Table) (*Plot, error) {
	if t == nil || len(t.Records) == 0 {
		return nil, pipeline.ErrEmptyTable
	}
	var xs, ys [4][]float64
	for _, r := range t.Records {
		if r.PercentUnemployed == nil || r.IncomeQuartile < 1 || r.IncomeQuartile > 4 {
			continue
		}
		q := r.IncomeQuartile - 1
		xs[q] = append(xs[q], r.MedianFamilyIncome)
		ys[q] = append(ys[q], *r.PercentUnemployed)
	}
	p := New(
		WithTitle("Median Family Income versus Unemployment"),
		WithXlabel("Median Family Income ($)"),
		WithYlabel("Percent Unemployed (%)"),
		WithLegend(true),
	)
	for q := range xs {
		p.Markers(xs[q], ys[q], quartileName(q+1), QuartileColors[q], 0.6)
	}
	return p, nil
}

// RegressionFacets returns one panel per income quartile with the points and the
// fitted line.
func RegressionFacets(reg *analysis.Regression) ([]*Plot, error) {
	if reg == nil || reg.Skipped() || len(reg.Fits) == 0 {
		return nil, ErrNoRegression
	}
	out := make([]*Plot, 0, len(reg.Fits))
	for _, f := range reg.Fits {
		color := QuartileColors[(f.Quartile-1)%len(QuartileColors)]
		p := New(
			WithTitle(quartileName(f.Quartile)),
			WithXlabel(reg.X),
			WithYlabel(reg.Y),
			WithLegend(false),
			WithSize(520, 400),
		)
		p.Markers(f.X, f.Y, quartileName(f.Quartile), color, 0.5)
		if x, y, ok := f.Line(); ok {
			p.Line(x[:], y[:], fmt.Sprintf("fit (r²=%.2f)", f.RSquared), color)
		}
		out = append(out, p)
	}
	return out, nil
}

func quartileName(q int) string {
	return fmt.Sprintf("Income Quartile = %d", q)
}
