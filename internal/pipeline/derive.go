package pipeline

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// UnemploymentRate is unemployed / employed * 100. It performs plain float division:
// employed == 0 yields +Inf (or NaN when unemployed is also 0).
func UnemploymentRate(unemployed, employed float64) float64 {
	return unemployed / employed * 100
}

// DeriveUnemployment sets PercentUnemployed on every record. Records whose rate is not
// finite keep a nil value and are reported through log.
func DeriveUnemployment(records []CountyRecord, log *slog.Logger) (missing int) {
	for i := range records {
		r := &records[i]
		rate := UnemploymentRate(r.Unemployed, r.Employed)
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			r.PercentUnemployed = nil
			missing++
			if log != nil {
				log.Warn("percent unemployed unavailable",
					slog.Int("fips", r.FIPS),
					slog.String("county", r.CountyName),
					slog.Float64("employed", r.Employed),
					slog.Float64("unemployed", r.Unemployed))
			}
			continue
		}
		r.PercentUnemployed = &rate
	}
	return missing
}

// jamThreshold is the largest Census annotation value. Estimates at or below it are
// placeholders (-222222222, -666666666, -999999999, ...) rather than data.
const jamThreshold = -222222222

// estimateError reports an unusable raw estimate.
type estimateError struct {
	variable string
	raw      string
	jam      bool
}

func (e *estimateError) Error() string {
	if e.jam {
		return fmt.Sprintf("%s is a placeholder value (%s)", e.variable, e.raw)
	}
	if e.raw == "" {
		return fmt.Sprintf("%s is missing", e.variable)
	}
	return fmt.Sprintf("%s is not numeric (%q)", e.variable, e.raw)
}

func parseEstimate(variable, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") {
		return 0, &estimateError{variable: variable, raw: s}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &estimateError{variable: variable, raw: s}
	}
	if v <= jamThreshold {
		return 0, &estimateError{variable: variable, raw: s, jam: true}
	}
	return v, nil
}
