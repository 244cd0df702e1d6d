package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/couchcryptid/accident-analytics-service/internal/domain"
)

// RenderText writes the aggregates as plain-text tables, followed by up to
// previewRows rows of the preview. A non-positive previewRows skips it. The
// first write error stops further output and is returned.
func RenderText(out io.Writer, result domain.AnalysisResult, previewRows int) error {
	w := &errWriter{w: out}
	fmt.Fprintf(w, "%d rows, hours from %s\n", result.RowCount, result.HourSource)
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}

	renderCounts(w, "Weather", result.Weather)
	renderCounts(w, "Road condition", result.Road)
	renderHours(w, result.Hours)
	renderHotspots(w, result.Hotspots)
	if previewRows > 0 {
		renderPreview(w, result.Preview, previewRows)
	}
	return w.err
}

// errWriter remembers the first error from w and fails every later write.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func renderCounts(w io.Writer, title string, counts []domain.CategoryCount) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"Category", "Count"})
	total := 0
	for _, c := range counts {
		t.AppendRow(table.Row{c.Category, c.Count})
		total += c.Count
	}
	t.AppendFooter(table.Row{"Total", total})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()
}

func renderHours(w io.Writer, hours []domain.HourCount) {
	t := newTable(w, "Hour of day")
	t.AppendHeader(table.Row{"Hour", "Count"})
	for _, h := range hours {
		t.AppendRow(table.Row{fmt.Sprintf("%02d", h.Hour), h.Count})
	}
	t.Render()
}

func renderHotspots(w io.Writer, hotspots []domain.HotspotCluster) {
	if len(hotspots) == 0 {
		fmt.Fprintln(w, "(no hotspots)")
		return
	}
	t := newTable(w, "Top hotspots")
	t.AppendHeader(table.Row{"#", "Lat", "Lon", "Count", "Place"})
	for i, h := range hotspots {
		t.AppendRow(table.Row{
			i + 1,
			strconv.FormatFloat(h.Lat, 'f', 3, 64),
			strconv.FormatFloat(h.Lon, 'f', 3, 64),
			h.Count,
			h.FormattedAddress,
		})
	}
	t.Render()
}

func renderPreview(w io.Writer, preview domain.Preview, limit int) {
	t := newTable(w, "Preview")
	header := make(table.Row, len(preview.Columns))
	for i, c := range preview.Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	n := min(limit, len(preview.Rows))
	for _, r := range preview.Rows[:n] {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}
	t.Render()
	fmt.Fprintf(w, "(%d of %d preview rows)\n", n, len(preview.Rows))
}
