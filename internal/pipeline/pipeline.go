package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/KaramelBytes/census-explorer/internal/census"
	"github.com/KaramelBytes/census-explorer/internal/metrics"
)

// DefaultExclusions lists territories dropped before identifier parsing.
var DefaultExclusions = []string{"Puerto Rico"}

// Pipeline turns a raw fetch into a cleaned Table. It holds no per-run state and may
// be reused.
type Pipeline struct {
	exclude []string
	log     *slog.Logger
	metrics *metrics.Collectors
}

// New returns a pipeline dropping the given territories. A nil exclude uses DefaultExclusions.
func New(exclude []string, log *slog.Logger, m *metrics.Collectors) *Pipeline {
	if exclude == nil {
		exclude = DefaultExclusions
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		exclude: append([]string(nil), exclude...),
		log:     log.With(slog.String("component", "pipeline")),
		metrics: m,
	}
}

// Run executes identifier parsing, metric derivation and quartile assignment.
// Any stage failure aborts the run; there is no partial result.
func (p *Pipeline) Run(raw *census.RawTable) (*Table, error) {
	if raw == nil {
		return nil, fmt.Errorf("pipeline: %w", ErrEmptyTable)
	}
	p.metrics.PipelineRows("fetched", len(raw.Rows))

	t, err := p.ParseIdentifiers(raw.Rows)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if len(t.Records) == 0 {
		return nil, fmt.Errorf("pipeline: %w", ErrEmptyTable)
	}

	if missing := DeriveUnemployment(t.Records, p.log); missing > 0 {
		t.Warnings = append(t.Warnings, fmt.Sprintf("percent unemployed unavailable for %d counties with zero employed", missing))
	}

	edges, err := AssignQuartiles(t.Records)
	if err != nil {
		return nil, fmt.Errorf("pipeline: income quartiles: %w", err)
	}
	t.QuartileEdges = edges

	p.metrics.PipelineRows("excluded", t.Excluded)
	p.metrics.PipelineRows("dropped", len(t.Dropped))
	p.metrics.PipelineRows("final", len(t.Records))
	p.log.Info("pipeline complete",
		slog.Int("fetched", len(raw.Rows)),
		slog.Int("excluded", t.Excluded),
		slog.Int("dropped", len(t.Dropped)),
		slog.Int("records", len(t.Records)))
	return t, nil
}

// ParseIdentifiers applies the territory filter, decomposes each location label and
// reads the raw estimates. Malformed labels and duplicate identifiers are errors; rows
// whose estimates are Census placeholders are dropped and recorded in Table.Dropped.
func (p *Pipeline) ParseIdentifiers(rows []census.RawRow) (*Table, error) {
	t := &Table{Records: make([]CountyRecord, 0, len(rows))}
	seen := make(map[int]string, len(rows))

	for _, row := range rows {
		if terr := ExcludedTerritory(row.Location, p.exclude); terr != "" {
			t.Excluded++
			p.log.Debug("row excluded", slog.String("territory", terr), slog.String("location", row.Location))
			continue
		}
		loc, err := ParseLocation(row.Location)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[loc.FIPS]; dup {
			return nil, fmt.Errorf("%w %d: %q and %q", ErrDuplicateFIPS, loc.FIPS, prev, row.Location)
		}
		seen[loc.FIPS] = row.Location

		rec := CountyRecord{
			StateFIPS:  loc.StateFIPS,
			CountyFIPS: loc.CountyFIPS,
			FIPS:       loc.FIPS,
			CountyName: loc.CountyName,
			StateName:  loc.StateName,
		}
		if err := readEstimates(&rec, row.Values); err != nil {
			var ee *estimateError
			if !errors.As(err, &ee) {
				return nil, err
			}
			t.Dropped = append(t.Dropped, Drop{Location: row.Location, Reason: err.Error()})
			p.log.Warn("row dropped", slog.String("location", row.Location), slog.String("reason", err.Error()))
			continue
		}
		t.Records = append(t.Records, rec)
	}
	if len(t.Dropped) > 0 {
		t.Warnings = append(t.Warnings, fmt.Sprintf("dropped %d counties with unavailable estimates", len(t.Dropped)))
	}
	return t, nil
}

func readEstimates(rec *CountyRecord, values map[string]string) error {
	fields := []struct {
		code string
		dst  *float64
	}{
		{census.VarGiniIndex, &rec.GiniIndex},
		{census.VarMedianFamilyIncome, &rec.MedianFamilyIncome},
		{census.VarEmployed, &rec.Employed},
		{census.VarUnemployed, &rec.Unemployed},
		{census.VarPopulation, &rec.Population},
		{census.VarVacantHousing, &rec.VacantHousing},
	}
	for _, f := range fields {
		v, err := parseEstimate(f.code, values[f.code])
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}
