package domain

import (
	"context"
	"log/slog"
)

// EnrichHotspots reverse-geocodes each hotspot centre. The input slice is not
// modified. If geocoder is nil the hotspots are returned unchanged; a lookup
// failure leaves that hotspot without place details (graceful degradation).
func EnrichHotspots(ctx context.Context, hotspots []HotspotCluster, geocoder Geocoder, logger *slog.Logger) []HotspotCluster {
	out := make([]HotspotCluster, len(hotspots))
	copy(out, hotspots)
	if geocoder == nil {
		return out
	}

	for i := range out {
		if ctx.Err() != nil {
			break
		}
		h := &out[i]
		result, err := geocoder.ReverseGeocode(ctx, h.Lat, h.Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"lat", h.Lat,
				"lon", h.Lon,
				"error", err,
			)
			continue
		}
		if result.FormattedAddress == "" {
			continue
		}
		h.FormattedAddress = result.FormattedAddress
		h.PlaceName = result.PlaceName
		h.GeoConfidence = result.Confidence
	}
	return out
}
