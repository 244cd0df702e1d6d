package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/accident-analytics-service/internal/domain"
	"github.com/couchcryptid/accident-analytics-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{PlaceName: "Broadway", FormattedAddress: "Broadway, New York"},
	}
	m := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, m)

	r1, err := cached.ReverseGeocode(context.Background(), 40.713, -74.006)
	require.NoError(t, err)
	assert.Equal(t, "Broadway", r1.PlaceName)

	r2, err := cached.ReverseGeocode(context.Background(), 40.713, -74.006)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GeocodeCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GeocodeCache.WithLabelValues("miss")))
}

func TestCachedGeocoder_DistinctCoordinates(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "Somewhere"}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 40.713, -74.006)
	_, _ = cached.ReverseGeocode(context.Background(), 34.052, -118.244)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 0, 0)
	_, _ = cached.ReverseGeocode(context.Background(), 0, 0)

	assert.Equal(t, 2, inner.calls, "empty results should not be cached")
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("mapbox down")}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.ReverseGeocode(context.Background(), 1, 2)
	require.Error(t, err)
	_, err = cached.ReverseGeocode(context.Background(), 1, 2)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_Eviction(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "Somewhere"}}
	cached := NewCachedGeocoder(inner, 2, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, _ = cached.ReverseGeocode(ctx, 1, 1)
	_, _ = cached.ReverseGeocode(ctx, 2, 2)
	_, _ = cached.ReverseGeocode(ctx, 3, 3) // evicts (1,1)
	assert.Equal(t, 3, inner.calls)

	_, _ = cached.ReverseGeocode(ctx, 3, 3)
	assert.Equal(t, 3, inner.calls, "(3,3) should be cached")

	_, _ = cached.ReverseGeocode(ctx, 1, 1)
	assert.Equal(t, 4, inner.calls, "(1,1) should have been evicted")
}
