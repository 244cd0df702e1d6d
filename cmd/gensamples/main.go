// Command gensamples writes deterministic accident CSVs covering the header
// conventions the analyzer understands, then runs each through the domain
// package so the logged summary matches what the service will report.
//
// Usage:
//
//	go run ./cmd/gensamples -out samples -rows 500 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/accident-analytics-service/internal/domain"
)

var baseDate = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

var (
	weathers = []string{"Clear", "Clear", "Clear", "Cloudy", "Rain", "Rain", "Light Rain", "Fog", "Snow", ""}
	roads    = []string{"Dry", "Dry", "Dry", "Wet", "Wet", "Icy", "Snow", "NA"}
)

// city is a hotspot centre; rows are scattered within ~200m of it.
type city struct {
	lat, lon float64
}

var cities = []city{
	{40.7128, -74.0060},  // New York
	{34.0522, -118.2437}, // Los Angeles
	{41.8781, -87.6298},  // Chicago
	{29.7604, -95.3698},  // Houston
	{47.6062, -122.3321}, // Seattle
}

// sample describes one generated file.
type sample struct {
	file   string
	header []string
	row    func(r *rand.Rand, i int) []string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "samples", "directory to write sample CSVs into")
	rows := flag.Int("rows", 500, "data rows per sample")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *rows <= 0 {
		flag.Usage()
		return fmt.Errorf("-rows must be positive")
	}
	return generate(*outDir, *rows, *seed)
}

// generate writes every sample into outDir. The same seed always produces
// byte-identical files.
func generate(outDir string, rows int, seed uint64) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	for i, s := range samples() {
		r := rand.New(rand.NewPCG(seed, uint64(i)))
		path := filepath.Join(outDir, s.file)
		if err := writeSample(path, s, r, rows); err != nil {
			return fmt.Errorf("writing %s: %w", s.file, err)
		}
		if err := summarize(path); err != nil {
			return fmt.Errorf("analyzing %s: %w", s.file, err)
		}
	}
	return nil
}

func samples() []sample {
	return []sample{
		{
			// Export with a combined start timestamp and Start_Lat/Start_Lng.
			file:   "us_accidents_timestamps.csv",
			header: []string{"ID", "Start_Time", "Start_Lat", "Start_Lng", "Weather_Condition", "Road_Surface"},
			row: func(r *rand.Rand, i int) []string {
				lat, lon := scatter(r)
				return []string{
					"A-" + strconv.Itoa(i+1),
					timestamp(r).Format("2006-01-02 15:04:05"),
					lat, lon,
					pick(r, weathers), pick(r, roads),
				}
			},
		},
		{
			// Integer hour column, some values out of range.
			file:   "collisions_hour_column.csv",
			header: []string{"Accident_Index", "hour", "Weather", "Road_Condition", "Latitude", "Longitude"},
			row: func(r *rand.Rand, i int) []string {
				lat, lon := scatter(r)
				hour := r.IntN(24)
				if i%97 == 0 {
					hour = 24 + r.IntN(6)
				}
				return []string{
					fmt.Sprintf("IDX%06d", i+1), strconv.Itoa(hour),
					pick(r, weathers), pick(r, roads), lat, lon,
				}
			},
		},
		{
			// Time-of-day only, 12-hour clock.
			file:   "police_reports_time_of_day.csv",
			header: []string{"Report_No", "Time", "WeatherCondition", "Surface"},
			row: func(r *rand.Rand, i int) []string {
				return []string{
					strconv.Itoa(10000 + i),
					timestamp(r).Format("3:04 PM"),
					pick(r, weathers), pick(r, roads),
				}
			},
		},
		{
			// A time zone column sorts first, so hours come from the datetime column.
			file:   "crashes_datetime.csv",
			header: []string{"Case", "Time_Zone", "Crash_DateTime", "weather_type", "road_surface", "lat", "lng"},
			row: func(r *rand.Rand, i int) []string {
				lat, lon := scatter(r)
				return []string{
					strconv.Itoa(i + 1), "UTC",
					timestamp(r).Format(time.RFC3339),
					pick(r, weathers), pick(r, roads), lat, lon,
				}
			},
		},
		{
			// No time and no coordinates: every row lands in hour 0, no hotspots.
			file:   "survey_no_time.csv",
			header: []string{"Survey_ID", "Weather", "RoadCondition", "Severity"},
			row: func(r *rand.Rand, i int) []string {
				return []string{
					strconv.Itoa(i + 1), pick(r, weathers), pick(r, roads), strconv.Itoa(1 + r.IntN(4)),
				}
			},
		},
	}
}

func writeSample(path string, s sample, r *rand.Rand, rows int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(s.header); err != nil {
		return err
	}
	for i := range rows {
		if err := w.Write(s.row(r, i)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// summarize parses the written file with the domain package and logs the
// resulting hour source and hotspot count.
func summarize(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tbl, err := domain.ParseTable(f, domain.ParseOptions{})
	if err != nil {
		return err
	}
	result := domain.Analyze(tbl)
	log.Printf("%s: %d rows, hours from %s, %d hotspots, %d weather categories",
		filepath.Base(path), result.RowCount, result.HourSource, len(result.Hotspots), len(result.Weather))
	return nil
}

func pick(r *rand.Rand, values []string) string {
	return values[r.IntN(len(values))]
}

// timestamp draws a time in April 2024 with a rush-hour skew.
func timestamp(r *rand.Rand) time.Time {
	day := r.IntN(30)
	hour := r.IntN(24)
	if r.IntN(3) == 0 {
		hour = []int{7, 8, 16, 17, 18}[r.IntN(5)]
	}
	return baseDate.Add(time.Duration(day)*24*time.Hour +
		time.Duration(hour)*time.Hour +
		time.Duration(r.IntN(60))*time.Minute)
}

func scatter(r *rand.Rand) (string, string) {
	c := cities[r.IntN(len(cities))]
	lat := c.lat + (r.Float64()-0.5)*0.004
	lon := c.lon + (r.Float64()-0.5)*0.004
	return strconv.FormatFloat(lat, 'f', 6, 64), strconv.FormatFloat(lon, 'f', 6, 64)
}
