package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/KaramelBytes/census-explorer/internal/analysis"
	"github.com/KaramelBytes/census-explorer/internal/export"
	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"github.com/KaramelBytes/census-explorer/internal/plot"
)

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>County Census Explorer</title></head>
<body>
<h1>County Census Explorer</h1>
<p>American Community Survey 5-Year estimates ({{.Dataset}}, {{.Year}}) for every county-equivalent unit.</p>
<ul>
<li><a href="/api/summary">Descriptive statistics for Median Family Income</a></li>
<li><a href="/plots/histogram.html">Distribution of Median Family Income</a></li>
<li><a href="/plots/scatter.html">Median Family Income versus Unemployment Rate</a></li>
<li><a href="/download/{{.CSV}}">Download data as CSV</a></li>
</ul>
<h2>Custom Variable Analysis</h2>
<p>Select two variables to explore their relationship across income quartiles.</p>
<form action="/plots/regression.html" method="get">
<label>Pick an X-axis value: <select name="x">{{range .Columns}}<option>{{.}}</option>{{end}}</select></label>
<label>Pick a Y-axis value: <select name="y">{{range .YColumns}}<option>{{.}}</option>{{end}}</select></label>
<button type="submit">Plot</button>
</form>
<hr>
<p><strong>Data Source:</strong> U.S. Census Bureau, American Community Survey 5-Year Data</p>
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cols := pipeline.DisplayColumns()
	// Y defaults to Percent Unemployed so the initial pair differs.
	ycols := []string{pipeline.PercentUnemployed}
	for _, c := range cols {
		if c != pipeline.PercentUnemployed {
			ycols = append(ycols, c)
		}
	}
	q := s.sess.Query()
	var buf bytes.Buffer
	err := indexTmpl.Execute(&buf, struct {
		Dataset  string
		Year     int
		CSV      string
		Columns  []string
		YColumns []string
	}{q.Dataset, q.Year, export.DefaultFileName, cols, ycols})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.HTML(w, r, buf.String())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	res, err := s.sess.Table(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := s.sess.Query()
	rep, err := analysis.Analyze(fmt.Sprintf("%s %d", q.Dataset, q.Year), res.Table)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, newSummaryResponse(res, rep))
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	res, err := s.sess.Table(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, newTableResponse(res))
}

func (s *Server) regression(r *http.Request) (*analysis.Regression, error) {
	req, err := s.axes(r)
	if err != nil {
		return nil, err
	}
	if req.X == req.Y {
		// No data is needed to report identical axes.
		return analysis.Explore(pipeline.Frame{}, req.X, req.Y)
	}
	res, err := s.sess.Table(r.Context())
	if err != nil {
		return nil, err
	}
	f, err := res.Table.DisplayWithQuartile()
	if err != nil {
		return nil, err
	}
	return analysis.Explore(f, req.X, req.Y)
}

func (s *Server) handleRegression(w http.ResponseWriter, r *http.Request) {
	reg, err := s.regression(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, newRegressionResponse(reg))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.sess.Refresh(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, refreshResponse{
		SnapshotID: res.SnapshotID,
		FetchedAt:  res.FetchedAt,
		Counties:   len(res.Table.Records),
		Warnings:   res.Table.Warnings,
	})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	res, err := s.sess.Table(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := plot.IncomeHistogram(res.Table)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePage(w, r, plot.Page{Title: "Distribution of Median Family Income", Plots: []*plot.Plot{p}})
}

func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	res, err := s.sess.Table(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := plot.IncomeVsUnemployment(res.Table)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePage(w, r, plot.Page{Title: "Median Family Income versus Unemployment Rate", Plots: []*plot.Plot{p}})
}

func (s *Server) handleRegressionPlot(w http.ResponseWriter, r *http.Request) {
	reg, err := s.regression(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page := plot.Page{Title: fmt.Sprintf("Regression Analysis: %s vs %s", reg.X, reg.Y), Columns: 2}
	if reg.Skipped() {
		page.Notes = []string{reg.Warning}
		s.writePage(w, r, page)
		return
	}
	panels, err := plot.RegressionFacets(reg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page.Notes = []string{"Each panel represents a different income quartile (1=lowest, 4=highest)"}
	page.Plots = panels
	s.writePage(w, r, page)
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, page plot.Page) {
	var buf bytes.Buffer
	if err := page.Write(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	render.HTML(w, r, buf.String())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	base := strings.TrimSuffix(export.DefaultFileName, ".csv")
	var format export.Format
	switch name {
	case export.DefaultFileName:
		format = export.FormatCSV
	case base + ".xlsx":
		format = export.FormatXLSX
	default:
		http.NotFound(w, r)
		return
	}
	res, err := s.sess.Table(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, res.Table, format); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
}
