// Package visual provides alternative renderings of a chart view: an
// interactive echarts page and a PNG snapshot taken in headless Chrome.
package visual

import (
	"bytes"
	"fmt"
	"math"

	"circadian/internal/chart"
	"circadian/internal/dataset"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	symbolSize = 8 // 与 SVG 标记半径 4 对应

	// 与 SVG 提示框一致：名称 / Hour / Value（两位小数）。
	tooltipFormatter = `function (p) {
  var v = p.value && p.value[1];
  var text = (typeof v === 'number') ? v.toFixed(2) : 'NaN';
  return '<strong>' + p.seriesName + '</strong><br>Hour: ' + p.value[0] + '<br>Value: ' + text;
}`
)

// BuildEChartsPage renders one view as a standalone echarts HTML page using
// the same scales, colours and labels as the SVG scene.
func BuildEChartsPage(kind chart.Kind, data dataset.Datasets) ([]byte, error) {
	line, err := BuildLineChart(kind, data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, fmt.Errorf("render echarts %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}

// BuildLineChart 构建 go-echarts 折线图对象。
func BuildLineChart(kind chart.Kind, data dataset.Datasets) (*charts.Line, error) {
	cfg, err := chart.ConfigFor(kind)
	if err != nil {
		return nil, err
	}
	if !data.Loaded() {
		return nil, chart.ErrNotLoaded
	}
	md := data.Metric(cfg.Metric)
	xScale, yScale := chart.Scales(md)
	xDomain, yDomain := xScale.Domain(), yScale.Domain()
	margin := chart.Layout.Margin

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: cfg.Title,
			Width:     fmt.Sprintf("%dpx", int(chart.Layout.Width)),
			Height:    fmt.Sprintf("%dpx", int(chart.Layout.Height)),
		}),
		charts.WithTitleOpts(opts.Title{
			Title: cfg.Title,
			Left:  "center",
			Top:   "10",
		}),
		charts.WithGridOpts(opts.Grid{
			Top:    fmt.Sprint(margin.Top),
			Right:  fmt.Sprint(margin.Right),
			Bottom: fmt.Sprint(margin.Bottom),
			Left:   fmt.Sprint(margin.Left),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Orient: "vertical",
			Right:  fmt.Sprint(margin.Right),
			Top:    fmt.Sprint(margin.Top),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts(tooltipFormatter),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:         "value",
			Name:         "Hour of the Day",
			NameLocation: "middle",
			NameGap:      30,
			Min:          xDomain[0],
			Max:          xDomain[1],
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:         "value",
			Name:         cfg.YAxisLabel,
			NameLocation: "middle",
			NameGap:      45,
			Min:          round(yDomain[0], 6),
			Max:          round(yDomain[1], 6),
		}),
	)

	for _, ds := range chart.Descriptors(md) {
		line.AddSeries(ds.Name, toLineData(ds.Data),
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(true),
				Symbol:     "circle",
				SymbolSize: symbolSize,
			}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: ds.Color, Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Color}),
		)
	}
	return line, nil
}

// toLineData keeps series order; points that cannot be placed become gaps.
func toLineData(series dataset.CohortSeries) []opts.LineData {
	out := make([]opts.LineData, len(series))
	for i, s := range series {
		if !s.Finite() {
			out[i] = opts.LineData{Value: nil}
			continue
		}
		out[i] = opts.LineData{Value: []float64{s.Hour, s.AvgValue}}
	}
	return out
}

func round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}
