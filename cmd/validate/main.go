// Command validate checks a stored analysis JSON against the CSV it was
// produced from. It re-runs the analysis and verifies row counts, frequency
// and histogram sums, hotspot bounds and ordering, and that repeated runs
// agree with each other and with the stored result.
//
// Usage:
//
//	go run ./cmd/validate -csv samples/us_accidents_timestamps.csv -json out/us_accidents.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/couchcryptid/accident-analytics-service/internal/domain"
	"github.com/couchcryptid/accident-analytics-service/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the source CSV")
	jsonPath := flag.String("json", "", "path to the analysis JSON (record or bare result)")
	flag.Parse()

	if *csvPath == "" || *jsonPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*csvPath, *jsonPath))
}

func run(csvPath, jsonPath string) int {
	fmt.Println("=== Accident Analysis Validation ===")
	fmt.Println()

	stored, err := loadResult(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load analysis JSON: %v\n", err)
		return 1
	}

	first, err := analyzeFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: analyze CSV: %v\n", err)
		return 1
	}
	second, err := analyzeFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: analyze CSV: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRowCount(stored, first),
		validateSums(stored),
		validateHotspots(stored),
		validateDeterminism(stored, first, second),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d stored, %d recomputed; hours from %s\n", stored.RowCount, first.RowCount, stored.HourSource)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// loadResult accepts either a stored record or a bare analysis result.
func loadResult(path string) (domain.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	var probe struct {
		Result *json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return domain.AnalysisResult{}, err
	}
	if probe.Result != nil {
		var rec pipeline.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return domain.AnalysisResult{}, err
		}
		return rec.Result, nil
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.AnalysisResult{}, err
	}
	return result, nil
}

func analyzeFile(path string) (domain.AnalysisResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	defer f.Close()

	tbl, err := domain.ParseTable(f, domain.ParseOptions{})
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return domain.Analyze(tbl), nil
}

// ── Phase 1: Row Count ──

func validateRowCount(stored, recomputed domain.AnalysisResult) *phase {
	p := &phase{name: "Phase 1: Row Count (JSON vs CSV)"}
	if stored.RowCount != recomputed.RowCount {
		p.errorf("row_count: stored %d, CSV has %d", stored.RowCount, recomputed.RowCount)
	}
	if len(stored.Preview.Rows) > domain.PreviewLimit {
		p.errorf("preview holds %d rows, limit is %d", len(stored.Preview.Rows), domain.PreviewLimit)
	}
	return p
}

// ── Phase 2: Sums ──
// Every row contributes exactly once to each frequency table and the histogram.

func validateSums(r domain.AnalysisResult) *phase {
	p := &phase{name: "Phase 2: Frequency and Histogram Sums"}

	checkCategories(p, "weather", r.Weather, r.RowCount)
	checkCategories(p, "road", r.Road, r.RowCount)

	total := 0
	prev := -1
	for _, h := range r.Hours {
		if h.Hour < 0 || h.Hour > 23 {
			p.errorf("hours: bucket %d out of range", h.Hour)
		}
		if h.Hour <= prev {
			p.errorf("hours: bucket %d not in ascending order", h.Hour)
		}
		prev = h.Hour
		total += h.Count
	}
	if total != r.RowCount {
		p.errorf("hours: counts sum to %d, expected %d", total, r.RowCount)
	}
	return p
}

func checkCategories(p *phase, name string, counts []domain.CategoryCount, rows int) {
	total := 0
	seen := map[string]bool{}
	for i, c := range counts {
		if c.Category == "" {
			p.errorf("%s: empty category label at position %d", name, i)
		}
		if seen[c.Category] {
			p.errorf("%s: duplicate category %q", name, c.Category)
		}
		seen[c.Category] = true
		if i > 0 && counts[i-1].Count < c.Count {
			p.errorf("%s: %q (%d) follows smaller count %d", name, c.Category, c.Count, counts[i-1].Count)
		}
		total += c.Count
	}
	if total != rows {
		p.errorf("%s: counts sum to %d, expected %d", name, total, rows)
	}
}

// ── Phase 3: Hotspots ──

func validateHotspots(r domain.AnalysisResult) *phase {
	p := &phase{name: "Phase 3: Hotspot Bounds and Ordering"}

	if len(r.Hotspots) > domain.HotspotLimit {
		p.errorf("%d hotspots exceed limit of %d", len(r.Hotspots), domain.HotspotLimit)
	}
	total := 0
	for i, h := range r.Hotspots {
		if h.Count <= 0 {
			p.errorf("hotspot %d: non-positive count %d", i, h.Count)
		}
		total += h.Count
		if i == 0 {
			continue
		}
		prev := r.Hotspots[i-1]
		switch {
		case prev.Count < h.Count:
			p.errorf("hotspot %d: count %d above previous %d", i, h.Count, prev.Count)
		case prev.Count == h.Count && (prev.Lat > h.Lat || (prev.Lat == h.Lat && prev.Lon >= h.Lon)):
			p.errorf("hotspot %d: tie not ordered by coordinates", i)
		}
	}
	if total > r.RowCount {
		p.errorf("hotspot counts sum to %d, more than %d rows", total, r.RowCount)
	}
	return p
}

// ── Phase 4: Determinism ──

func validateDeterminism(stored, first, second domain.AnalysisResult) *phase {
	p := &phase{name: "Phase 4: Determinism (rerun agreement)"}

	if diff := cmp.Diff(first, second); diff != "" {
		p.errorf("two runs over the same CSV differ (-first +second):\n%s", diff)
	}

	// Geocoding details depend on an external service and are not recomputed.
	ignoreGeo := cmpopts.IgnoreFields(domain.HotspotCluster{}, "PlaceName", "FormattedAddress", "GeoConfidence")
	if diff := cmp.Diff(first, stored, ignoreGeo, cmpopts.EquateEmpty()); diff != "" {
		p.errorf("stored result differs from recomputed (-recomputed +stored):\n%s", diff)
	}
	return p
}
