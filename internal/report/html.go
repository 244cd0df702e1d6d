// Package report renders analysis results as an interactive HTML page or as
// plain-text tables.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/couchcryptid/accident-analytics-service/internal/domain"
	"github.com/couchcryptid/accident-analytics-service/internal/pipeline"
)

const (
	chartWidth  = "900px"
	chartHeight = "420px"
)

// RenderHTML writes a standalone page with the weather, road condition and
// hour-of-day charts followed by the hotspot table.
func RenderHTML(w io.Writer, rec pipeline.Record) error {
	charted := components.NewPage()
	charted.PageTitle = "Accident analysis: " + rec.Filename
	charted.SetLayout(components.PageFlexLayout)
	charted.AddCharts(
		weatherChart(rec.Result.Weather),
		roadChart(rec.Result.Road),
		hourChart(rec.Result.Hours),
	)

	var buf bytes.Buffer
	if err := charted.Render(&buf); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}

	var summary bytes.Buffer
	if err := summaryTemplate.Execute(&summary, newSummaryView(rec)); err != nil {
		return fmt.Errorf("render hotspot table: %w", err)
	}

	// The summary section goes inside <body>, after the charts.
	page := buf.Bytes()
	cut := bytes.LastIndex(page, []byte("</body>"))
	if cut < 0 {
		cut = len(page)
	}
	for _, part := range [][]byte{page[:cut], summary.Bytes(), page[cut:]} {
		if _, err := w.Write(part); err != nil {
			return err
		}
	}
	return nil
}

func initOpts() charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		Width:  chartWidth,
		Height: chartHeight,
	})
}

func weatherChart(counts []domain.CategoryCount) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(),
		charts.WithTitleOpts(opts.Title{Title: "Accidents by Weather Condition"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	labels := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		labels[i] = c.Category
		data[i] = opts.BarData{Name: c.Category, Value: c.Count}
	}
	bar.SetXAxis(labels).AddSeries("Accidents", data)
	return bar
}

func roadChart(counts []domain.CategoryCount) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initOpts(),
		charts.WithTitleOpts(opts.Title{Title: "Road Surface / Condition"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	data := make([]opts.PieData, len(counts))
	for i, c := range counts {
		data[i] = opts.PieData{Name: c.Category, Value: c.Count}
	}
	pie.AddSeries("Road condition", data).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}))
	return pie
}

func hourChart(hours []domain.HourCount) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(),
		charts.WithTitleOpts(opts.Title{Title: "Accidents by Hour of Day"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)

	labels := make([]string, len(hours))
	data := make([]opts.LineData, len(hours))
	for i, h := range hours {
		labels[i] = strconv.Itoa(h.Hour)
		data[i] = opts.LineData{Value: h.Count}
	}
	line.SetXAxis(labels).
		AddSeries("Accidents", data).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	return line
}

type summaryView struct {
	Filename   string
	AnalyzedAt string
	RowCount   int
	HourSource domain.HourSource
	Hotspots   []domain.HotspotCluster
	Warnings   []string
}

func newSummaryView(rec pipeline.Record) summaryView {
	return summaryView{
		Filename:   rec.Filename,
		AnalyzedAt: rec.AnalyzedAt.Format("2006-01-02 15:04:05 MST"),
		RowCount:   rec.Result.RowCount,
		HourSource: rec.Result.HourSource,
		Hotspots:   rec.Result.Hotspots,
		Warnings:   rec.Result.Warnings,
	}
}

var summaryTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"coord": func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) },
	"inc":   func(i int) int { return i + 1 },
}).Parse(`
<section class="summary" style="width:900px;margin:24px auto;font-family:sans-serif">
  <h2>{{.Filename}}</h2>
  <p>{{.RowCount}} rows analyzed at {{.AnalyzedAt}}; hours derived from {{.HourSource}}.</p>
  {{range .Warnings}}<p class="warning">{{.}}</p>{{end}}
  <h3>Top Hotspots</h3>
  {{if .Hotspots}}
  <table class="hotspots" border="1" cellpadding="4" cellspacing="0">
    <thead><tr><th>#</th><th>Latitude</th><th>Longitude</th><th>Accidents</th><th>Place</th></tr></thead>
    <tbody>
    {{range $i, $h := .Hotspots}}
      <tr><td>{{inc $i}}</td><td>{{coord $h.Lat}}</td><td>{{coord $h.Lon}}</td><td>{{$h.Count}}</td><td>{{$h.FormattedAddress}}</td></tr>
    {{end}}
    </tbody>
  </table>
  {{else}}
  <p>No coordinate data available.</p>
  {{end}}
</section>
`))
