// Command analyze runs a single CSV through the analysis pipeline and prints
// the aggregates as text tables. It can also write the record as JSON and
// the interactive HTML report.
//
// Usage:
//
//	go run ./cmd/analyze -csv samples/us_accidents_timestamps.csv \
//	  -json out/us_accidents.json -html out/us_accidents.html -preview 10
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/accident-analytics-service/internal/adapter/mapbox"
	"github.com/couchcryptid/accident-analytics-service/internal/domain"
	"github.com/couchcryptid/accident-analytics-service/internal/observability"
	"github.com/couchcryptid/accident-analytics-service/internal/pipeline"
	"github.com/couchcryptid/accident-analytics-service/internal/report"
	"github.com/couchcryptid/accident-analytics-service/internal/store"
)

const (
	exitOK = iota
	exitError
	exitUnparsable
)

type options struct {
	csvPath   string
	jsonPath  string
	htmlPath  string
	preview   int
	delimiter string
	geocode   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.csvPath, "csv", "", "input CSV file")
	flag.StringVar(&opts.jsonPath, "json", "", "write the analysis record as JSON to this path")
	flag.StringVar(&opts.htmlPath, "html", "", "write the HTML report to this path")
	flag.IntVar(&opts.preview, "preview", 10, "preview rows to print (0 disables)")
	flag.StringVar(&opts.delimiter, "delimiter", "", "field separator (default: sniffed)")
	flag.BoolVar(&opts.geocode, "geocode", false, "reverse geocode hotspots using MAPBOX_TOKEN")
	flag.Parse()

	if opts.csvPath == "" {
		flag.Usage()
		os.Exit(exitError)
	}

	os.Exit(run(context.Background(), opts, os.Stdout, os.Stderr))
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) int {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewUnregisteredMetrics()

	parseOpts := domain.ParseOptions{}
	if opts.delimiter != "" {
		r := []rune(opts.delimiter)
		if len(r) != 1 {
			fmt.Fprintln(stderr, "error: -delimiter must be a single character")
			return exitError
		}
		parseOpts.Delimiter = r[0]
	}

	var geocoder domain.Geocoder
	if opts.geocode {
		token := os.Getenv("MAPBOX_TOKEN")
		if token == "" {
			fmt.Fprintln(stderr, "error: -geocode requires MAPBOX_TOKEN")
			return exitError
		}
		geocoder = mapbox.NewClient(token, 5*time.Second, metrics, logger)
	}

	f, err := os.Open(opts.csvPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	defer f.Close()

	analyzer := pipeline.New(store.NewMemory(1, metrics), geocoder, nil, parseOpts, logger, metrics)
	rec, err := analyzer.Analyze(ctx, filepath.Base(opts.csvPath), f)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, domain.ErrUnparsableInput) {
			return exitUnparsable
		}
		return exitError
	}

	if err := report.RenderText(stdout, rec.Result, opts.preview); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	if opts.jsonPath != "" {
		if err := writeFile(opts.jsonPath, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}); err != nil {
			fmt.Fprintf(stderr, "error: write json: %v\n", err)
			return exitError
		}
	}

	if opts.htmlPath != "" {
		if err := writeFile(opts.htmlPath, func(w io.Writer) error {
			return report.RenderHTML(w, rec)
		}); err != nil {
			fmt.Fprintf(stderr, "error: write html: %v\n", err)
			return exitError
		}
	}
	return exitOK
}

func writeFile(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
