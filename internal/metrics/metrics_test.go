package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveFetch(time.Second, nil)
	c.ObserveFetch(time.Second, errors.New("boom"))
	c.CacheLookup(true)
	c.CacheLookup(true)
	c.CacheLookup(false)
	c.PipelineRows("final", 3142)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.fetches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fetches.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 3142.0, testutil.ToFloat64(c.pipelineRows.WithLabelValues("final")))
}

func TestNilCollectorsAreNoops(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() {
		c.ObserveFetch(time.Second, nil)
		c.CacheLookup(false)
		c.PipelineRows("final", 1)
		c.HTTPRequest("/", "200")
	})
}
