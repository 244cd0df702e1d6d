package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnregisteredMetrics(t *testing.T) {
	first := NewUnregisteredMetrics()
	second := NewUnregisteredMetrics()

	// Neither set touches the default registry, so both can join a fresh one.
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(first.Analyses))
	assert.False(t, prometheus.DefaultRegisterer.Unregister(second.Analyses))

	first.Analyses.WithLabelValues("success").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.Analyses.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.Analyses.WithLabelValues("success")))
}
