package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/census-explorer/internal/logging"
	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countyTable builds a cleaned table of n counties with increasing income.
func countyTable(t *testing.T, n int) *pipeline.Table {
	t.Helper()
	recs := make([]pipeline.CountyRecord, n)
	for i := range recs {
		recs[i] = pipeline.CountyRecord{
			FIPS:               1001 + 2*i,
			GiniIndex:          0.40 + float64(i)/100,
			MedianFamilyIncome: 40000 + 2500*float64(i),
			Employed:           float64(1000 * (i + 1)),
			Unemployed:         float64(30*(i+1) + i%3),
			VacantHousing:      float64(500 + 10*i),
		}
	}
	recs[1].Employed = 0
	pipeline.DeriveUnemployment(recs, logging.Discard())
	edges, err := pipeline.AssignQuartiles(recs)
	require.NoError(t, err)
	return &pipeline.Table{Records: recs, QuartileEdges: edges, Warnings: []string{"percent unemployed unavailable for 1 counties with zero employed"}}
}

func TestDescribe(t *testing.T) {
	s := Describe("x", []float64{4, 1, math.NaN(), 3, 2})
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1, s.Missing)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.InDelta(t, 1.75, s.Q25, 1e-12)
	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.InDelta(t, 3.25, s.Q75, 1e-12)
	assert.Equal(t, 4.0, s.Max)

	r := s.Round()
	assert.Equal(t, 2.0, r.Mean)
	assert.Equal(t, 1.0, r.Std)
	assert.Equal(t, 2.0, r.Q25)
	assert.Equal(t, 2.0, r.Median)
	assert.Equal(t, 3.0, r.Q75)
}

func TestDescribeEmpty(t *testing.T) {
	s := Describe("x", []float64{math.NaN()})
	assert.Zero(t, s.Count)
	assert.True(t, math.IsNaN(s.Mean))
	assert.True(t, math.IsNaN(s.Max))
}

func TestAnalyzeAndMarkdown(t *testing.T) {
	tbl := countyTable(t, 12)
	rep, err := Analyze("acs/acs5 2018", tbl)
	require.NoError(t, err)

	assert.Equal(t, 12, rep.Rows)
	require.Len(t, rep.Cols, 4)
	assert.Equal(t, pipeline.DisplayColumns()[0], rep.Cols[0].Name)
	assert.Equal(t, pipeline.MedianFamilyIncome, rep.Income.Name)
	assert.Equal(t, 12, rep.Income.Count)
	assert.Equal(t, 53750.0, rep.Income.Mean)
	assert.Equal(t, 40000.0, rep.Income.Min)
	assert.Equal(t, 67500.0, rep.Income.Max)

	pct := rep.Cols[2]
	assert.Equal(t, pipeline.PercentUnemployed, pct.Name)
	assert.Equal(t, 1, pct.Missing)

	require.Len(t, rep.Groups, 4)
	total := 0
	for i, g := range rep.Groups {
		assert.Equal(t, i+1, g.Quartile)
		total += g.Size
		assert.Contains(t, g.Metrics, pipeline.GiniIndex)
	}
	assert.Equal(t, 12, total)

	require.NotNil(t, rep.Corr)
	assert.InDelta(t, 1.0, rep.Corr.Values[0][3], 1e-9, "gini and income rise together")

	md := rep.Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "[MEDIAN FAMILY INCOME]", "| 12 | 53750 |", "[INCOME QUARTILES]", "[CORRELATIONS]", "[WARNINGS]"} {
		assert.True(t, strings.Contains(md, want), "markdown missing %q", want)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	_, err := Analyze("", &pipeline.Table{})
	assert.ErrorIs(t, err, pipeline.ErrEmptyTable)
}
