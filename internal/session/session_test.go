package session

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/KaramelBytes/census-explorer/internal/census"
	"github.com/KaramelBytes/census-explorer/internal/census/censustest"
	"github.com/KaramelBytes/census-explorer/internal/logging"
	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, rows [][]string) (*Session, *censustest.Server) {
	t.Helper()
	api := censustest.NewServer(rows)
	t.Cleanup(api.Close)
	client := census.NewClient("", 2*time.Second, census.WithBaseURL(api.URL), census.WithRateLimit(0))
	cache := census.NewCache(client, time.Hour, nil, logging.Discard())
	return New(cache, pipeline.New(nil, logging.Discard(), nil), census.DefaultQuery(), logging.Discard()), api
}

func TestTableIsMemoizedPerSnapshot(t *testing.T) {
	s, api := newSession(t, censustest.Rows(12, true))
	ctx := context.Background()

	first, err := s.Table(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Table.Records, 12)
	assert.Equal(t, 1, first.Table.Excluded)
	assert.NotEmpty(t, first.SnapshotID)

	second, err := s.Table(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, api.Hits())
}

func TestRefreshRebuilds(t *testing.T) {
	s, api := newSession(t, censustest.Rows(12, false))
	ctx := context.Background()

	first, err := s.Table(ctx)
	require.NoError(t, err)

	api.SetRows(censustest.Rows(16, false))
	again, err := s.Table(ctx)
	require.NoError(t, err)
	assert.Len(t, again.Table.Records, 12, "cached snapshot served until refresh")

	refreshed, err := s.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.SnapshotID, refreshed.SnapshotID)
	assert.Len(t, refreshed.Table.Records, 16)
	assert.Equal(t, 2, api.Hits())

	s.Invalidate()
	_, err = s.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, api.Hits())
}

func TestFetchAndPipelineErrors(t *testing.T) {
	s, api := newSession(t, censustest.Rows(12, false))
	api.SetStatus(http.StatusServiceUnavailable)

	_, err := s.Table(context.Background())
	require.Error(t, err)
	assert.True(t, census.IsFetchError(err))

	api.SetStatus(0)
	rows := censustest.Rows(8, false)
	for _, r := range rows[1:] {
		r[2] = "50000"
	}
	api.SetRows(rows)
	_, err = s.Table(context.Background())
	require.ErrorIs(t, err, pipeline.ErrDegenerateBins)
	assert.False(t, census.IsFetchError(err))
}
