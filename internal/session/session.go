// Package session ties the fetch cache to the pipeline so every caller sees the
// table derived from the current snapshot.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KaramelBytes/census-explorer/internal/census"
	"github.com/KaramelBytes/census-explorer/internal/pipeline"
)

// Result is a cleaned table together with the snapshot it was built from.
type Result struct {
	Table      *pipeline.Table
	SnapshotID string
	FetchedAt  time.Time
}

// Session serves the cleaned table for one query. The table is rebuilt only when
// the cache hands out a different snapshot.
type Session struct {
	cache *census.Cache
	pipe  *pipeline.Pipeline
	query census.Query
	log   *slog.Logger

	mu   sync.Mutex
	last *Result
}

// New returns a Session that builds tables for q from cache through pipe.
func New(cache *census.Cache, pipe *pipeline.Pipeline, q census.Query, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{cache: cache, pipe: pipe, query: q, log: log.With(slog.String("component", "session"))}
}

// Query returns the query this session serves.
func (s *Session) Query() census.Query { return s.query }

// Table returns the table for the current snapshot, fetching if needed.
func (s *Session) Table(ctx context.Context) (*Result, error) {
	snap, err := s.cache.Get(ctx, s.query)
	if err != nil {
		return nil, err
	}
	return s.build(snap)
}

// Refresh discards the cached snapshot and rebuilds the table from a new fetch.
func (s *Session) Refresh(ctx context.Context) (*Result, error) {
	snap, err := s.cache.Refresh(ctx, s.query)
	if err != nil {
		return nil, err
	}
	return s.build(snap)
}

// Invalidate drops the cached snapshot and derived table.
func (s *Session) Invalidate() {
	s.cache.Invalidate(s.query)
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
}

func (s *Session) build(snap *census.Snapshot) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != nil && s.last.SnapshotID == snap.ID {
		return s.last, nil
	}
	t, err := s.pipe.Run(snap.Table)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	s.last = &Result{Table: t, SnapshotID: snap.ID, FetchedAt: snap.FetchedAt}
	s.log.Debug("table rebuilt", slog.String("fetch_id", snap.ID), slog.Int("records", len(t.Records)))
	return s.last, nil
}
