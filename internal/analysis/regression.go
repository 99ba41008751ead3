package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"gonum.org/v1/gonum/stat"
)

// IdenticalAxesWarning is reported when X and Y name the same column.
const IdenticalAxesWarning = "Please select different variables for X and Y axes for meaningful analysis."

// ErrUnknownColumn is returned for an axis that is not a display column.
var ErrUnknownColumn = errors.New("unknown column")

// Fit is an ordinary least squares line for one income quartile.
type Fit struct {
	Quartile  int     `json:"quartile"`
	N         int     `json:"n"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
	RSquared  float64 `json:"r_squared"`

	X []float64 `json:"-"`
	Y []float64 `json:"-"`
}

// Regression is the per-quartile relationship between two display columns.
// When Warning is set no fit was computed.
type Regression struct {
	X       string `json:"x"`
	Y       string `json:"y"`
	Warning string `json:"warning,omitempty"`
	Fits    []Fit  `json:"fits,omitempty"`
}

// Skipped reports whether the regression was suppressed.
func (r *Regression) Skipped() bool { return r.Warning != "" }

// Explore regresses y on x separately within each income quartile of f. f must carry
// the Income Quartile column. Choosing the same column twice is not an error: the
// result carries IdenticalAxesWarning and no fits.
func Explore(f pipeline.Frame, x, y string) (*Regression, error) {
	for _, n := range []string{x, y} {
		if !pipeline.IsDisplayColumn(n) {
			return nil, fmt.Errorf("%w %q (choose one of: %s)", ErrUnknownColumn, n, strings.Join(pipeline.DisplayColumns(), ", "))
		}
	}
	reg := &Regression{X: x, Y: y}
	if x == y {
		reg.Warning = IdenticalAxesWarning
		return reg, nil
	}
	qc, err := f.Column(pipeline.IncomeQuartile)
	if err != nil {
		return nil, err
	}
	for q := 1; q <= 4; q++ {
		sub := subset(f, qc.Values, q)
		pts, err := sub.Finite(x, y)
		if err != nil {
			return nil, err
		}
		reg.Fits = append(reg.Fits, fitLine(q, pts[0], pts[1]))
	}
	return reg, nil
}

func fitLine(q int, xs, ys []float64) Fit {
	fit := Fit{Quartile: q, N: len(xs), X: xs, Y: ys}
	if len(xs) < 2 {
		fit.Slope, fit.Intercept, fit.R, fit.RSquared = nan(), nan(), nan(), nan()
		return fit
	}
	fit.Intercept, fit.Slope = stat.LinearRegression(xs, ys, nil, false)
	fit.RSquared = stat.RSquared(xs, ys, nil, fit.Intercept, fit.Slope)
	fit.R = stat.Correlation(xs, ys, nil)
	return fit
}

// Line returns the fitted y values at the smallest and largest x.
func (f Fit) Line() (x, y [2]float64, ok bool) {
	if f.N < 2 || math.IsNaN(f.Slope) || math.IsInf(f.Slope, 0) {
		return x, y, false
	}
	x[0], x[1] = f.X[0], f.X[0]
	for _, v := range f.X {
		x[0] = math.Min(x[0], v)
		x[1] = math.Max(x[1], v)
	}
	for i := range x {
		y[i] = f.Intercept + f.Slope*x[i]
	}
	return x, y, true
}

// Markdown renders the regression table.
func (r *Regression) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[REGRESSION] %s vs %s by Income Quartile\n", r.X, r.Y))
	if r.Skipped() {
		b.WriteString("Warning: " + r.Warning + "\n")
		return b.String()
	}
	b.WriteString("| quartile | n | slope | intercept | r | r² |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, f := range r.Fits {
		b.WriteString(fmt.Sprintf("| %d | %d | %.4g | %.4g | %.3f | %.3f |\n", f.Quartile, f.N, f.Slope, f.Intercept, f.R, f.RSquared))
	}
	return b.String()
}
