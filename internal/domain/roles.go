package domain

import (
	"slices"
	"strings"
)

// ColumnRole is the semantic meaning a source column may carry.
type ColumnRole string

const (
	RoleWeather       ColumnRole = "weather"
	RoleRoadCondition ColumnRole = "road_condition"
	RoleLatitude      ColumnRole = "latitude"
	RoleLongitude     ColumnRole = "longitude"
	RoleTime          ColumnRole = "time"
	RoleDateTime      ColumnRole = "date_time"
	RoleHourDirect    ColumnRole = "hour_direct"
)

// roleCandidates lists, per role, lowercase substrings in priority order.
// Adding a role or a header variant only touches this table.
var roleCandidates = []struct {
	role       ColumnRole
	candidates []string
}{
	{RoleWeather, []string{"weather", "weather_condition", "weathertype"}},
	{RoleRoadCondition, []string{"road", "surface", "road_surface", "road_condition", "roadcondition"}},
	{RoleLatitude, []string{"latitude", "lat"}},
	{RoleLongitude, []string{"longitude", "lon", "lng"}},
	{RoleTime, []string{"time", "accident_time", "hour"}},
	{RoleDateTime, []string{"date_time", "datetime", "timestamp", "date/time"}},
}

// hourColumnNames are exact header names for a direct hour-of-day column,
// in the order they are tried.
var hourColumnNames = []string{"hour", "Hour"}

// Bindings maps each resolved role to the source column bound to it.
// Unresolved roles are absent.
type Bindings map[ColumnRole]string

// Column returns the column bound to role and whether one was resolved.
func (b Bindings) Column(role ColumnRole) (string, bool) {
	c, ok := b[role]
	return c, ok
}

// ResolveColumn returns the first column whose lowercased name contains one
// of the candidates. Candidates are scanned in order; for each candidate the
// columns are scanned in order.
func ResolveColumn(columns, candidates []string) (string, bool) {
	lowered := make([]string, len(columns))
	for i, c := range columns {
		lowered[i] = strings.ToLower(c)
	}
	for _, cand := range candidates {
		for i, l := range lowered {
			if strings.Contains(l, cand) {
				return columns[i], true
			}
		}
	}
	return "", false
}

// ResolveRoles binds every role in the candidate table, plus the exact-name
// hour column, against the given header.
func ResolveRoles(columns []string) Bindings {
	b := make(Bindings, len(roleCandidates)+1)
	for _, rc := range roleCandidates {
		if col, ok := ResolveColumn(columns, rc.candidates); ok {
			b[rc.role] = col
		}
	}
	for _, name := range hourColumnNames {
		if slices.Contains(columns, name) {
			b[RoleHourDirect] = name
			break
		}
	}
	return b
}
