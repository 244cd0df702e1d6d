package domain

// Unknown is the category assigned when a categorical value is unavailable.
const Unknown = "Unknown"

// Canonical column names added to the working table.
const (
	FieldWeather = "weather_condition"
	FieldRoad    = "road_condition"
	FieldHour    = "hour"
)

// NormalizeCategorical produces the canonical text value of role for every
// row. An unresolved role or a missing cell yields Unknown, so no row is ever
// dropped and no blank category competes with Unknown.
func NormalizeCategorical(t *Table, b Bindings, role ColumnRole) []string {
	out := make([]string, t.Len())
	col, ok := b.Column(role)
	var values []string
	if ok {
		values, ok = t.Column(col)
	}
	for i := range out {
		if !ok || IsMissing(values[i]) {
			out[i] = Unknown
			continue
		}
		out[i] = values[i]
	}
	return out
}
