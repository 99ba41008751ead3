package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/KaramelBytes/census-explorer/internal/census"
	"github.com/KaramelBytes/census-explorer/internal/logging"
	"github.com/KaramelBytes/census-explorer/internal/metrics"
	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"github.com/KaramelBytes/census-explorer/internal/session"
)

// app is the wiring shared by every subcommand.
type app struct {
	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Collectors
	sess    *session.Session
}

func newApp(logOut io.Writer) (*app, error) {
	if cfg == nil {
		if err := loadConfig(); err != nil {
			return nil, err
		}
	}
	q := census.DefaultQuery()
	if cfg.Dataset != "" {
		q.Dataset = cfg.Dataset
	}
	if cfg.Year > 0 {
		q.Year = cfg.Year
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	timeout := time.Duration(cfg.HTTPTimeoutSec) * time.Second
	client := census.NewClient(cfg.APIKey, timeout,
		census.WithBaseURL(cfg.BaseURL),
		census.WithRateLimit(cfg.RateLimitPerSec),
		census.WithMetrics(m),
		census.WithLogger(log),
	)
	cache := census.NewCache(client, time.Duration(cfg.CacheTTLMin)*time.Minute, m, log)
	pipe := pipeline.New(cfg.ExcludeTerritories, log, m)

	return &app{
		log:     log,
		reg:     reg,
		metrics: m,
		sess:    session.New(cache, pipe, q, log),
	}, nil
}

// table fetches and cleans the county table.
func (a *app) table(ctx context.Context) (*session.Result, error) {
	res, err := a.sess.Table(ctx)
	if err != nil {
		if census.IsFetchError(err) {
			return nil, fmt.Errorf("fetch census data: %w", err)
		}
		return nil, fmt.Errorf("an error occurred during data processing: %w", err)
	}
	return res, nil
}
