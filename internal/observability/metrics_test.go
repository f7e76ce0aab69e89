package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IsolatedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.CacheEvents.WithLabelValues("dedup_hit").Inc()
	m.CacheEvents.WithLabelValues("dedup_hit").Inc()
	m.PoolFetchesTotal.WithLabelValues("ok").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheEvents.WithLabelValues("dedup_hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PoolFetchesTotal.WithLabelValues("ok")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud")
	assert.Error(t, err)
}
