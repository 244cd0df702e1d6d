package domain

import (
	"fmt"
	"strconv"
)

// PreviewLimit bounds the number of rows copied into AnalysisResult.Preview.
const PreviewLimit = 200

// AnalysisResult is the immutable summary of one input table.
type AnalysisResult struct {
	OriginalColumns []string         `json:"original_columns"`
	Weather         []CategoryCount  `json:"weather"`
	Road            []CategoryCount  `json:"road"`
	Hours           []HourCount      `json:"hours"`
	Hotspots        []HotspotCluster `json:"hotspots"`
	Preview         Preview          `json:"preview"`
	RowCount        int              `json:"row_count"`

	Bindings   Bindings   `json:"bindings"`
	HourSource HourSource `json:"hour_source"`
	Warnings   []string   `json:"warnings"`
}

// Preview is a display-only copy of the leading rows of the working table:
// the source columns followed by the canonical ones.
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Analyze runs column resolution, normalization, hour extraction and
// aggregation over the whole table. It holds no state between calls.
func Analyze(t *Table) AnalysisResult {
	bindings := ResolveRoles(t.Columns)

	weather := NormalizeCategorical(t, bindings, RoleWeather)
	road := NormalizeCategorical(t, bindings, RoleRoadCondition)
	hours, source := ExtractHours(t, bindings)

	warnings := []string{}
	hotspots, err := Hotspots(t, bindings)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("hotspots unavailable: %v", err))
		hotspots = []HotspotCluster{}
	}

	return AnalysisResult{
		OriginalColumns: append([]string(nil), t.Columns...),
		Weather:         Frequencies(weather),
		Road:            Frequencies(road),
		Hours:           HourHistogram(hours),
		Hotspots:        hotspots,
		Preview:         buildPreview(t, weather, road, hours),
		RowCount:        t.Len(),
		Bindings:        bindings,
		HourSource:      source,
		Warnings:        warnings,
	}
}

// buildPreview copies the first PreviewLimit rows with the canonical fields
// appended. A canonical name that already exists in the source is replaced
// in place rather than duplicated.
func buildPreview(t *Table, weather, road []string, hours []int) Preview {
	columns := append([]string(nil), t.Columns...)
	canonical := []string{FieldWeather, FieldRoad, FieldHour}
	slots := make([]int, len(canonical))
	for i, name := range canonical {
		slots[i] = -1
		for j, c := range columns {
			if c == name {
				slots[i] = j
				break
			}
		}
		if slots[i] < 0 {
			slots[i] = len(columns)
			columns = append(columns, name)
		}
	}

	n := min(t.Len(), PreviewLimit)
	rows := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(columns))
		copy(row, t.Rows[r])
		row[slots[0]] = weather[r]
		row[slots[1]] = road[r]
		row[slots[2]] = strconv.Itoa(hours[r])
		rows[r] = row
	}
	return Preview{Columns: columns, Rows: rows}
}
