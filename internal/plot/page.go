package plot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/KaramelBytes/census-explorer/internal/utils"
)

// PlotlyJS is the script the generated pages load.
const PlotlyJS = "https://cdn.plot.ly/plotly-2.12.1.min.js"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.Script}}"></script>
</head>
<body>
<h2>{{.Title}}</h2>
{{range .Notes}}<p>{{.}}</p>
{{end}}<div style="display:grid;grid-template-columns:repeat({{.Columns}}, 1fr);gap:8px">
{{range $i, $f := .Figs}}<div id="plot-{{$i}}"></div>
{{end}}</div>
<script>
{{range $i, $f := .Figs}}Plotly.newPlot("plot-{{$i}}", {{$f}});
{{end}}</script>
</body>
</html>
`))

// Page lays out one or more plots in a grid.
type Page struct {
	Title   string
	Notes   []string
	Columns int
	Plots   []*Plot
}

// Write renders the page as HTML.
func (pg Page) Write(w io.Writer) error {
	cols := pg.Columns
	if cols <= 0 {
		cols = 1
	}
	figs := make([]template.JS, 0, len(pg.Plots))
	for i, p := range pg.Plots {
		raw, err := json.Marshal(p.Fig)
		if err != nil {
			return fmt.Errorf("encode plot %d: %w", i, err)
		}
		figs = append(figs, template.JS(raw))
	}
	return pageTmpl.Execute(w, struct {
		Title   string
		Script  string
		Notes   []string
		Columns int
		Figs    []template.JS
	}{pg.Title, PlotlyJS, pg.Notes, cols, figs})
}

// Save writes the rendered page to path.
func (pg Page) Save(path string) error {
	var buf bytes.Buffer
	if err := pg.Write(&buf); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
