package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	// HotspotLimit is the number of clusters reported.
	HotspotLimit = 10
	// hotspotScale rounds coordinates to 3 decimal places.
	hotspotScale = 1000.0
)

// CategoryCount is one row of a frequency table.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// HourCount is one bucket of the hour-of-day histogram.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// HotspotCluster is a rounded coordinate cell and the number of rows in it.
// Place fields are filled by optional reverse geocoding.
type HotspotCluster struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Count int     `json:"count"`

	PlaceName        string  `json:"place_name,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
}

// Frequencies counts each distinct value, most frequent first. Ties keep the
// order in which categories first appeared.
func Frequencies(values []string) []CategoryCount {
	index := make(map[string]int)
	out := make([]CategoryCount, 0)
	for _, v := range values {
		i, ok := index[v]
		if !ok {
			i = len(out)
			index[v] = i
			out = append(out, CategoryCount{Category: v})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// HourHistogram counts rows per hour, ascending by hour. Hours with no rows
// are omitted.
func HourHistogram(hours []int) []HourCount {
	var counts [24]int
	for _, h := range hours {
		counts[clampHour(h)]++
	}
	out := make([]HourCount, 0, 24)
	for h, c := range counts {
		if c > 0 {
			out = append(out, HourCount{Hour: h, Count: c})
		}
	}
	return out
}

// Hotspots groups rows by coordinates rounded to 3 decimals and returns the
// HotspotLimit busiest cells. Rows missing either coordinate are skipped. A
// present but non-numeric coordinate fails the whole computation.
func Hotspots(t *Table, b Bindings) ([]HotspotCluster, error) {
	latCol, okLat := b.Column(RoleLatitude)
	lonCol, okLon := b.Column(RoleLongitude)
	if !okLat || !okLon {
		return []HotspotCluster{}, nil
	}
	lats, _ := t.Column(latCol)
	lons, _ := t.Column(lonCol)
	if lats == nil || lons == nil {
		return []HotspotCluster{}, nil
	}

	type cell struct{ lat, lon float64 }
	counts := make(map[cell]int)
	for i := range lats {
		if IsMissing(lats[i]) || IsMissing(lons[i]) {
			continue
		}
		lat, err := parseCoordinate(lats[i])
		if err != nil {
			return []HotspotCluster{}, fmt.Errorf("row %d %s: %w", i+1, latCol, err)
		}
		lon, err := parseCoordinate(lons[i])
		if err != nil {
			return []HotspotCluster{}, fmt.Errorf("row %d %s: %w", i+1, lonCol, err)
		}
		if math.IsNaN(lat) || math.IsNaN(lon) {
			continue
		}
		counts[cell{roundCoord(lat), roundCoord(lon)}]++
	}

	out := make([]HotspotCluster, 0, len(counts))
	for c, n := range counts {
		out = append(out, HotspotCluster{Lat: c.lat, Lon: c.lon, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Lat != out[j].Lat {
			return out[i].Lat < out[j].Lat
		}
		return out[i].Lon < out[j].Lon
	})
	if len(out) > HotspotLimit {
		out = out[:HotspotLimit]
	}
	return out, nil
}

func parseCoordinate(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric coordinate %q", v)
	}
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("infinite coordinate %q", v)
	}
	return f, nil
}

// roundCoord rounds half to even at 3 decimal places.
func roundCoord(v float64) float64 {
	return math.RoundToEven(v*hotspotScale) / hotspotScale
}
