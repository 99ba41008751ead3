package server

import (
	"math"
	"time"

	"github.com/KaramelBytes/census-explorer/internal/analysis"
	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"github.com/KaramelBytes/census-explorer/internal/session"
)

// JSON has no NaN, so absent statistics are encoded as null.
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type statsDTO struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Missing int      `json:"missing"`
	Mean    *float64 `json:"mean"`
	Std     *float64 `json:"std"`
	Min     *float64 `json:"min"`
	P25     *float64 `json:"p25"`
	P50     *float64 `json:"p50"`
	P75     *float64 `json:"p75"`
	Max     *float64 `json:"max"`
}

func newStatsDTO(c analysis.ColumnSummary) statsDTO {
	return statsDTO{
		Name: c.Name, Count: c.Count, Missing: c.Missing,
		Mean: num(c.Mean), Std: num(c.Std), Min: num(c.Min),
		P25: num(c.Q25), P50: num(c.Median), P75: num(c.Q75), Max: num(c.Max),
	}
}

type quartileDTO struct {
	Quartile int                 `json:"quartile"`
	Size     int                 `json:"size"`
	Means    map[string]*float64 `json:"means"`
}

type summaryResponse struct {
	SnapshotID    string        `json:"snapshot_id"`
	FetchedAt     time.Time     `json:"fetched_at"`
	Counties      int           `json:"counties"`
	Excluded      int           `json:"excluded"`
	Dropped       int           `json:"dropped"`
	Income        statsDTO      `json:"median_family_income"`
	Columns       []statsDTO    `json:"columns"`
	Quartiles     []quartileDTO `json:"quartiles"`
	QuartileEdges [5]float64    `json:"quartile_edges"`
	Warnings      []string      `json:"warnings,omitempty"`
}

func newSummaryResponse(res *session.Result, rep *analysis.Report) summaryResponse {
	out := summaryResponse{
		SnapshotID:    res.SnapshotID,
		FetchedAt:     res.FetchedAt,
		Counties:      rep.Rows,
		Excluded:      rep.Excluded,
		Dropped:       rep.Dropped,
		Income:        newStatsDTO(rep.Income),
		QuartileEdges: rep.Edges,
		Warnings:      rep.Warnings,
	}
	for _, c := range rep.Cols {
		out.Columns = append(out.Columns, newStatsDTO(c))
	}
	for _, g := range rep.Groups {
		q := quartileDTO{Quartile: g.Quartile, Size: g.Size, Means: make(map[string]*float64, len(g.Metrics))}
		for k, m := range g.Metrics {
			q.Means[k] = num(m.Mean)
		}
		out.Quartiles = append(out.Quartiles, q)
	}
	return out
}

type rowDTO struct {
	FIPS               int      `json:"fips"`
	County             string   `json:"county"`
	State              string   `json:"state"`
	GiniIndex          float64  `json:"gini_index"`
	VacantHousing      float64  `json:"vacant_housing"`
	PercentUnemployed  *float64 `json:"percent_unemployed"`
	MedianFamilyIncome float64  `json:"median_family_income"`
	IncomeQuartile     int      `json:"income_quartile"`
}

type tableResponse struct {
	SnapshotID string   `json:"snapshot_id"`
	Columns    []string `json:"columns"`
	Rows       []rowDTO `json:"rows"`
}

func newTableResponse(res *session.Result) tableResponse {
	out := tableResponse{
		SnapshotID: res.SnapshotID,
		Columns:    append(pipeline.DisplayColumns(), pipeline.IncomeQuartile),
		Rows:       make([]rowDTO, 0, len(res.Table.Records)),
	}
	for _, r := range res.Table.Records {
		out.Rows = append(out.Rows, rowDTO{
			FIPS:               r.FIPS,
			County:             r.CountyName,
			State:              r.StateName,
			GiniIndex:          r.GiniIndex,
			VacantHousing:      r.VacantHousing,
			PercentUnemployed:  r.PercentUnemployed,
			MedianFamilyIncome: r.MedianFamilyIncome,
			IncomeQuartile:     r.IncomeQuartile,
		})
	}
	return out
}

type fitDTO struct {
	Quartile  int      `json:"quartile"`
	N         int      `json:"n"`
	Slope     *float64 `json:"slope"`
	Intercept *float64 `json:"intercept"`
	R         *float64 `json:"r"`
	RSquared  *float64 `json:"r_squared"`
}

type regressionResponse struct {
	X       string   `json:"x"`
	Y       string   `json:"y"`
	Warning string   `json:"warning,omitempty"`
	Fits    []fitDTO `json:"fits"`
}

func newRegressionResponse(reg *analysis.Regression) regressionResponse {
	out := regressionResponse{X: reg.X, Y: reg.Y, Warning: reg.Warning, Fits: []fitDTO{}}
	for _, f := range reg.Fits {
		out.Fits = append(out.Fits, fitDTO{
			Quartile: f.Quartile, N: f.N,
			Slope: num(f.Slope), Intercept: num(f.Intercept), R: num(f.R), RSquared: num(f.RSquared),
		})
	}
	return out
}

type refreshResponse struct {
	SnapshotID string    `json:"snapshot_id"`
	FetchedAt  time.Time `json:"fetched_at"`
	Counties   int       `json:"counties"`
	Warnings   []string  `json:"warnings,omitempty"`
}
