package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"gonum.org/v1/gonum/stat"
)

// Report is a markdown-friendly analysis of the cleaned county table.
type Report struct {
	Name     string
	Rows     int
	Excluded int
	Dropped  int
	// Income is the rounded description of Median Family Income.
	Income   ColumnSummary
	Cols     []ColumnSummary
	Groups   []GroupResult
	Corr     *CorrMatrix
	Edges    [5]float64
	Warnings []string
}

// ColumnSummary holds count, mean, std, min, quartiles and max of one column.
// Missing counts NaN values, which are left out of every statistic.
type ColumnSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Q25     float64 `json:"p25"`
	Median  float64 `json:"p50"`
	Q75     float64 `json:"p75"`
	Max     float64 `json:"max"`
}

// GroupResult captures aggregated metrics per income quartile.
type GroupResult struct {
	Quartile  int                   `json:"quartile"`
	Size      int                   `json:"size"`
	Metrics   map[string]NumSummary `json:"metrics"`
	CorrPairs []PairCorr            `json:"corr_pairs,omitempty"`
}

// NumSummary is the count, range, mean and spread of one metric within a group.
type NumSummary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// CorrMatrix holds a symmetric Pearson correlation matrix across display columns.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// Describe summarizes values the way a data frame describe() does: sample standard
// deviation and linearly interpolated quartiles.
func Describe(name string, values []float64) ColumnSummary {
	s := ColumnSummary{Name: name}
	vals := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.Missing++
			continue
		}
		vals = append(vals, v)
	}
	s.Count = len(vals)
	if s.Count == 0 {
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan(), nan(), nan(), nan(), nan(), nan(), nan()
		return s
	}
	sort.Float64s(vals)
	s.Mean = stat.Mean(vals, nil)
	s.Std = stat.StdDev(vals, nil)
	s.Min = vals[0]
	s.Max = vals[len(vals)-1]
	s.Q25 = pipeline.Quantile(vals, 0.25)
	s.Median = pipeline.Quantile(vals, 0.5)
	s.Q75 = pipeline.Quantile(vals, 0.75)
	return s
}

// Round returns s with every statistic rounded half to even.
func (s ColumnSummary) Round() ColumnSummary {
	r := s
	for _, p := range []*float64{&r.Mean, &r.Std, &r.Min, &r.Q25, &r.Median, &r.Q75, &r.Max} {
		*p = math.RoundToEven(*p)
	}
	return r
}

// Analyze builds a Report for t.
func Analyze(name string, t *pipeline.Table) (*Report, error) {
	if t == nil || len(t.Records) == 0 {
		return nil, pipeline.ErrEmptyTable
	}
	f, err := t.DisplayWithQuartile()
	if err != nil {
		return nil, err
	}
	rep := &Report{
		Name:     name,
		Rows:     len(t.Records),
		Excluded: t.Excluded,
		Dropped:  len(t.Dropped),
		Edges:    t.QuartileEdges,
		Warnings: append([]string(nil), t.Warnings...),
	}
	display := pipeline.DisplayColumns()
	for _, n := range display {
		c, err := f.Column(n)
		if err != nil {
			return nil, err
		}
		cs := Describe(n, c.Values)
		rep.Cols = append(rep.Cols, cs)
		if n == pipeline.MedianFamilyIncome {
			rep.Income = cs.Round()
		}
	}
	if rep.Corr, err = Correlations(f, display); err != nil {
		return nil, err
	}
	if rep.Groups, err = ByQuartile(f, display); err != nil {
		return nil, err
	}
	return rep, nil
}

// Correlations computes pairwise Pearson r over rows where both columns are present.
func Correlations(f pipeline.Frame, cols []string) (*CorrMatrix, error) {
	m := &CorrMatrix{Columns: append([]string(nil), cols...), Values: make([][]float64, len(cols))}
	for i := range cols {
		m.Values[i] = make([]float64, len(cols))
		m.Values[i][i] = 1
	}
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			pair, err := f.Finite(cols[i], cols[j])
			if err != nil {
				return nil, err
			}
			r := pearson(pair[0], pair[1])
			m.Values[i][j], m.Values[j][i] = r, r
		}
	}
	return m, nil
}

// ByQuartile summarizes cols per value of the Income Quartile column of f.
func ByQuartile(f pipeline.Frame, cols []string) ([]GroupResult, error) {
	qc, err := f.Column(pipeline.IncomeQuartile)
	if err != nil {
		return nil, err
	}
	var out []GroupResult
	for q := 1; q <= 4; q++ {
		g := GroupResult{Quartile: q, Metrics: make(map[string]NumSummary, len(cols))}
		sub := subset(f, qc.Values, q)
		g.Size = sub.Len()
		if g.Size == 0 {
			continue
		}
		for _, n := range cols {
			c, err := sub.Column(n)
			if err != nil {
				return nil, err
			}
			d := Describe(n, c.Values)
			g.Metrics[n] = NumSummary{Count: d.Count, Min: d.Min, Max: d.Max, Mean: d.Mean}
		}
		cm, err := Correlations(sub, cols)
		if err != nil {
			return nil, err
		}
		g.CorrPairs = topPairs(cm, 6)
		out = append(out, g)
	}
	return out, nil
}

// subset returns the rows of f whose quartile value equals q.
func subset(f pipeline.Frame, quartiles []float64, q int) pipeline.Frame {
	out := pipeline.Frame{Columns: make([]pipeline.Column, len(f.Columns))}
	for i, c := range f.Columns {
		out.Columns[i].Name = c.Name
		for r, v := range c.Values {
			if int(quartiles[r]) == q {
				out.Columns[i].Values = append(out.Columns[i].Values, v)
			}
		}
	}
	return out
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return nan()
	}
	return stat.Correlation(x, y, nil)
}

func topPairs(m *CorrMatrix, limit int) []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r := m.Values[i][j]; !math.IsNaN(r) {
				pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai := math.Abs(pairs[i].R)
		aj := math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Counties: %d\n", r.Rows))
	if r.Excluded > 0 || r.Dropped > 0 {
		b.WriteString(fmt.Sprintf("Excluded: %d, dropped: %d\n", r.Excluded, r.Dropped))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[MEDIAN FAMILY INCOME]\n")
	b.WriteString("| count | mean | std | min | 25% | 50% | 75% | max |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	in := r.Income
	b.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s | %s |\n", in.Count,
		num(in.Mean), num(in.Std), num(in.Min), num(in.Q25), num(in.Median), num(in.Q75), num(in.Max)))

	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s: numeric (non-null %d, missing %d)", c.Name, c.Count, c.Missing))
		if c.Count > 0 {
			b.WriteString(fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
		}
		b.WriteString("\n")
	}

	if len(r.Groups) > 0 {
		b.WriteString("\n[INCOME QUARTILES]\n")
		for _, g := range r.Groups {
			lo, hi := r.Edges[g.Quartile-1], r.Edges[g.Quartile]
			b.WriteString(fmt.Sprintf("- Quartile %d (n=%d, income %s to %s)\n", g.Quartile, g.Size, num(lo), num(hi)))
			keys := make([]string, 0, len(g.Metrics))
			for k := range g.Metrics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				m := g.Metrics[k]
				b.WriteString(fmt.Sprintf("  • %s: mean %.4g (min %.4g, max %.4g)\n", k, m.Mean, m.Min, m.Max))
			}
		}
	}
	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, p := range topPairs(r.Corr, 10) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", v)
}

func nan() float64 { return math.NaN() }
