package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/accident-analytics-service/internal/domain"
	"github.com/couchcryptid/accident-analytics-service/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() pipeline.Record {
	return pipeline.Record{
		Filename:   "crashes.csv",
		AnalyzedAt: time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC),
		Result: domain.AnalysisResult{
			RowCount:   3,
			HourSource: domain.HourFromTime,
			Weather:    []domain.CategoryCount{{Category: "Rain", Count: 2}, {Category: "Clear", Count: 1}},
			Road:       []domain.CategoryCount{{Category: "Wet", Count: 2}, {Category: "Dry", Count: 1}},
			Hours:      []domain.HourCount{{Hour: 8, Count: 2}, {Hour: 17, Count: 1}},
			Hotspots: []domain.HotspotCluster{
				{Lat: 40.713, Lon: -74.006, Count: 2, FormattedAddress: "Broadway & <Main>"},
				{Lat: 34.052, Lon: -118.244, Count: 1},
			},
			Preview: domain.Preview{
				Columns: []string{"Weather", "weather_condition"},
				Rows:    [][]string{{"Rain", "Rain"}, {"Rain", "Rain"}, {"Clear", "Clear"}},
			},
			Warnings: []string{},
		},
	}
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, testRecord()))
	out := buf.String()

	assert.Contains(t, out, "Accidents by Weather Condition")
	assert.Contains(t, out, "Road Surface / Condition")
	assert.Contains(t, out, "Accidents by Hour of Day")
	assert.Contains(t, out, "Top Hotspots")
	assert.Contains(t, out, "40.713")
	assert.Contains(t, out, "-118.244")
	assert.Contains(t, out, "Broadway &amp; &lt;Main&gt;", "addresses are escaped")

	summary := strings.Index(out, `class="summary"`)
	closing := strings.LastIndex(out, "</body>")
	require.Positive(t, summary)
	assert.Less(t, summary, closing, "summary section sits inside the body")
}

func TestRenderHTML_NoHotspots(t *testing.T) {
	rec := testRecord()
	rec.Result.Hotspots = []domain.HotspotCluster{}
	rec.Result.Warnings = []string{"hotspots unavailable: non-numeric coordinate"}

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, rec))

	assert.Contains(t, buf.String(), "No coordinate data available.")
	assert.Contains(t, buf.String(), "hotspots unavailable")
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, testRecord().Result, 2))
	out := buf.String()
	lower := strings.ToLower(out)

	assert.Contains(t, out, "3 rows, hours from time_column")
	assert.Contains(t, lower, "weather")
	assert.Contains(t, out, "Rain")
	assert.Contains(t, lower, "total")
	assert.Contains(t, out, "08")
	assert.Contains(t, lower, "top hotspots")
	assert.Contains(t, out, "(2 of 3 preview rows)")
}

func TestRenderText_NoPreviewNoHotspots(t *testing.T) {
	result := testRecord().Result
	result.Hotspots = nil

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, result, 0))

	assert.Contains(t, buf.String(), "(no hotspots)")
	assert.NotContains(t, buf.String(), "preview rows")
}

type failingWriter struct {
	writes int
}

func (f *failingWriter) Write(_ []byte) (int, error) {
	f.writes++
	return 0, errors.New("disk full")
}

func TestRenderText_WriteError(t *testing.T) {
	w := &failingWriter{}

	err := RenderText(w, testRecord().Result, 2)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, w.writes, "output stops after the first failed write")
}
