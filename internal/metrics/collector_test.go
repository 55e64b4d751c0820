package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnabledCollector(t *testing.T) *Collector {
	t.Helper()
	c, err := NewCollector(DefaultConfig())
	require.NoError(t, err)
	return c
}

func TestNewCollectorDefaults(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)
	assert.Equal(t, "postalkit", c.config.Namespace)
	assert.NotNil(t, c.Registry())
}

func TestDisabledCollectorIsNoOp(t *testing.T) {
	c, err := NewCollector(&Config{Enabled: false})
	require.NoError(t, err)

	// None of these may panic on a disabled collector.
	c.RecordParse(time.Millisecond, true)
	c.RecordNormalize(time.Millisecond, false)
	c.RecordDownload("parser", 1024, time.Second)
	c.RecordChunk("parser")
	c.RecordRetry("parser")
	assert.NoError(t, c.Stop(context.Background()))
}

func TestRecordParse(t *testing.T) {
	c := newEnabledCollector(t)

	c.RecordParse(10*time.Millisecond, true)
	c.RecordParse(20*time.Millisecond, true)
	c.RecordParse(5*time.Millisecond, false)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.parseCounter.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.parseCounter.WithLabelValues("error")))
}

func TestRecordNormalize(t *testing.T) {
	c := newEnabledCollector(t)

	c.RecordNormalize(time.Millisecond, true)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.normalizeCounter.WithLabelValues("success")))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.normalizeCounter.WithLabelValues("error")))
}

func TestRecordDownloadTelemetry(t *testing.T) {
	c := newEnabledCollector(t)

	c.RecordDownload("parser", 2048, 3*time.Second)
	c.RecordDownload("parser", 1024, time.Second)
	c.RecordChunk("parser")
	c.RecordChunk("parser")
	c.RecordRetry("parser")
	c.RecordChunk("base")

	assert.Equal(t, float64(3072), testutil.ToFloat64(c.downloadBytes.WithLabelValues("parser")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.chunkCounter.WithLabelValues("parser")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.retryCounter.WithLabelValues("parser")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.chunkCounter.WithLabelValues("base")))
}
