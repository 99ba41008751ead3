// Package plot builds the dashboard figures with plotly.
package plot

import (
	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
)

// QuartileColors is the Dark2 palette used for quartiles 1 through 4.
var QuartileColors = [4]string{"#1b9e77", "#d95f02", "#7570b3", "#e7298a"}

const histogramColor = "steelblue"

// Plot is one plotly figure and its layout.
type Plot struct {
	Fig *grob.Fig
	Lay *grob.Layout
}

// Opt configures a Plot.
type Opt func(p *Plot) *Plot

// New returns an empty figure with opts applied.
func New(opt ...Opt) *Plot {
	fig := &grob.Fig{}
	lay := &grob.Layout{}
	fig.Layout = lay
	p := &Plot{Fig: fig, Lay: lay}
	for _, o := range opt {
		o(p)
	}
	return p
}

// WithTitle sets the figure title.
func WithTitle(title string) Opt {
	return func(p *Plot) *Plot { p.Lay.Title = &grob.LayoutTitle{Text: title}; return p }
}

// WithSize sets the figure size in pixels. Non-positive values keep the default.
func WithSize(w, h float64) Opt {
	return func(p *Plot) *Plot {
		if w > 0 {
			p.Lay.Width = w
		}
		if h > 0 {
			p.Lay.Height = h
		}
		return p
	}
}

// WithLegend shows or hides the legend.
func WithLegend(show bool) Opt {
	return func(p *Plot) *Plot {
		if show {
			p.Lay.Showlegend = grob.True
		} else {
			p.Lay.Showlegend = grob.False
		}
		return p
	}
}

// WithXlabel sets the x-axis title.
func WithXlabel(label string) Opt {
	return func(p *Plot) *Plot {
		if p.Lay.Xaxis == nil {
			p.Lay.Xaxis = &grob.LayoutXaxis{}
		}
		p.Lay.Xaxis.Title = &grob.LayoutXaxisTitle{Text: label}
		return p
	}
}

// WithYlabel sets the y-axis title.
func WithYlabel(label string) Opt {
	return func(p *Plot) *Plot {
		if p.Lay.Yaxis == nil {
			p.Lay.Yaxis = &grob.LayoutYaxis{}
		}
		p.Lay.Yaxis.Title = &grob.LayoutYaxisTitle{Text: label}
		return p
	}
}

// Markers adds a marker-only series.
func (p *Plot) Markers(x, y []float64, name, color string, opacity float64) {
	p.Fig.AddTraces(&grob.Scatter{
		Type:    grob.TraceTypeScatter,
		Name:    name,
		X:       x,
		Y:       y,
		Mode:    grob.ScatterModeMarkers,
		Marker:  &grob.ScatterMarker{Color: color},
		Opacity: opacity,
	})
}

// Line adds a line series.
func (p *Plot) Line(x, y []float64, name, color string) {
	p.Fig.AddTraces(&grob.Scatter{
		Type: grob.TraceTypeScatter,
		Name: name,
		X:    x,
		Y:    y,
		Mode: grob.ScatterModeLines,
		Line: &grob.ScatterLine{Color: color},
	})
}

// Histogram adds a histogram of x.
func (p *Plot) Histogram(x []float64, name, color string) {
	p.Fig.AddTraces(&grob.Histogram{
		Type:   grob.TraceTypeHistogram,
		Name:   name,
		X:      x,
		Marker: &grob.HistogramMarker{Color: color},
	})
}

// Save writes the figure as a standalone HTML page.
func (p *Plot) Save(fileName string) error {
	var title string
	if p.Lay.Title != nil {
		title, _ = p.Lay.Title.Text.(string)
	}
	return Page{Title: title, Plots: []*Plot{p}}.Save(fileName)
}
