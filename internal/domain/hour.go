package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// HourSource names the strategy that produced the canonical hour values.
type HourSource string

const (
	HourFromHourColumn HourSource = "hour_column"
	HourFromTime       HourSource = "time_column"
	HourFromDateTime   HourSource = "datetime_column"
	HourFromFallback   HourSource = "hour_fallback"
	HourDefault        HourSource = "default"
)

// hourStrategy yields an hour for every row, or ok=false when it does not
// apply to the table.
type hourStrategy struct {
	source  HourSource
	extract func(t *Table, b Bindings) (hours []int, ok bool)
}

// hourChain is tried in order; the first strategy that applies wins.
var hourChain = []hourStrategy{
	{HourFromHourColumn, func(t *Table, _ Bindings) ([]int, bool) {
		return clampedHourColumn(t, "hour")
	}},
	{HourFromTime, func(t *Table, b Bindings) ([]int, bool) {
		return timestampHours(t, b, RoleTime)
	}},
	{HourFromDateTime, func(t *Table, b Bindings) ([]int, bool) {
		return timestampHours(t, b, RoleDateTime)
	}},
	{HourFromFallback, func(t *Table, _ Bindings) ([]int, bool) {
		for _, name := range hourColumnNames {
			if hours, ok := clampedHourColumn(t, name); ok {
				return hours, true
			}
		}
		return nil, false
	}},
	{HourDefault, func(t *Table, _ Bindings) ([]int, bool) {
		return make([]int, t.Len()), true
	}},
}

// ExtractHours derives an hour in [0,23] for every row of t and reports which
// strategy produced them.
func ExtractHours(t *Table, b Bindings) ([]int, HourSource) {
	for _, s := range hourChain {
		if hours, ok := s.extract(t, b); ok {
			return hours, s.source
		}
	}
	// Unreachable: the last strategy always applies.
	return make([]int, t.Len()), HourDefault
}

// clampedHourColumn parses every value of the named column as an integer and
// clamps it to [0,23]. A single unparsable value rejects the whole column.
func clampedHourColumn(t *Table, name string) ([]int, bool) {
	values, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	hours := make([]int, len(values))
	for i, v := range values {
		h, ok := parseHourInt(v)
		if !ok {
			return nil, false
		}
		hours[i] = clampHour(h)
	}
	return hours, true
}

// timestampHours reads the hour component of the column bound to role. It
// applies when at least one value parses; values that fail get hour 0.
func timestampHours(t *Table, b Bindings, role ColumnRole) ([]int, bool) {
	col, ok := b.Column(role)
	if !ok {
		return nil, false
	}
	values, ok := t.Column(col)
	if !ok {
		return nil, false
	}
	hours := make([]int, len(values))
	parsed := 0
	for i, v := range values {
		ts, ok := ParseTimestamp(v)
		if !ok {
			continue
		}
		hours[i] = ts.Hour()
		parsed++
	}
	if parsed == 0 {
		return nil, false
	}
	return hours, true
}

// parseHourInt accepts integers and finite decimals (truncated toward zero).
func parseHourInt(v string) (int, bool) {
	if IsMissing(v) {
		return 0, false
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return clampHour(int(math.Copysign(24, f))), true
	}
	return int(math.Trunc(f)), true
}

func clampHour(h int) int {
	switch {
	case h < 0:
		return 0
	case h > 23:
		return 23
	default:
		return h
	}
}

// timestampLayouts are tried in order. Date-only layouts yield hour 0.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"3:04PM",
	"3PM",
	"3 PM",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
}

// ParseTimestamp parses a date-time, time-of-day, or date string.
func ParseTimestamp(v string) (time.Time, bool) {
	if IsMissing(v) {
		return time.Time{}, false
	}
	v = strings.ToUpper(strings.TrimSpace(v))
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
