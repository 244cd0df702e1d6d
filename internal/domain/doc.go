// Package domain turns loosely-structured accident-report CSV files into a
// normalized analytical summary.
//
// # Input Conventions
//
// Accident exports come from many agencies and none of them agree on a schema.
// The same concept shows up under different headers:
//
//	weather:   "Weather", "WeatherCondition", "weather_type", "Weather_Conditions"
//	road:      "Road_Surface", "RoadCondition", "surface"
//	latitude:  "Latitude", "Start_Lat", "lat"
//	longitude: "Longitude", "Start_Lng", "lon"
//	time:      "hour", "Time", "Accident_Time", "Start_Time", "Date/Time"
//
// Columns are bound to semantic roles by case-insensitive substring match
// against an ordered candidate list per role (see [ResolveRoles]). The first
// candidate that matches any column wins; within a candidate, the first
// matching column in file order wins. The heuristic over-matches on purpose
// ("seaweather_dept" binds to weather) so existing inputs keep working.
//
// # Missing Values
//
// Empty cells and the usual NA tokens ("NA", "N/A", "NaN", "NULL", "None",
// "#N/A", ...) are treated as missing. Missing categorical values become
// "Unknown"; missing coordinates exclude the row from hotspot clustering.
//
// # Hour Derivation
//
// Every row gets an hour in [0,23]. Strategies are tried in order and the
// first that applies wins:
//
//	1. "hour" column, integers clamped to [0,23]  (any bad row abandons it)
//	2. time-role column parsed as timestamps       (needs one good row)
//	3. date-time-role column parsed as timestamps  (needs one good row)
//	4. "hour" or "Hour" column, clamped
//	5. zero for every row
//
// Under strategies 2 and 3, rows that fail to parse get hour 0.
//
// # Hotspots
//
// Coordinates are rounded to 3 decimal places (about 111 m at the equator),
// grouped, and the 10 busiest cells are reported. A non-numeric coordinate
// anywhere in the file disables hotspots for that file rather than producing
// a partial answer.
//
// # Determinism
//
// Frequency ties are broken by first appearance, hotspot ties by ascending
// latitude then longitude. Running [Analyze] twice on the same table yields
// identical output.
package domain
