package chart

import (
	"fmt"
	"math"
	"strings"

	"circadian/internal/dataset"
)

// Margin 为绘图区四周留白。
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Layout is fixed: an 800x400 surface with the inset area at 710x300.
var Layout = struct {
	Width, Height float64
	Margin        Margin
}{
	Width:  800,
	Height: 400,
	Margin: Margin{Top: 50, Right: 30, Bottom: 50, Left: 60},
}

const (
	xDomainMax   = 24
	yPad         = 1
	markerRadius = 4
	strokeWidth  = 2
	legendOffset = 150
	legendRow    = 20
	legendSwatch = 10
)

// InnerSize returns the inset drawing area.
func InnerSize() (width, height float64) {
	return Layout.Width - Layout.Margin.Left - Layout.Margin.Right,
		Layout.Height - Layout.Margin.Top - Layout.Margin.Bottom
}

// Scales 计算一次渲染所用的 x/y 比例尺，每次渲染都重新计算。
func Scales(md dataset.MetricDataset) (x, y Linear) {
	width, height := InnerSize()
	lo, hi := PaddedExtent(md.Values(), yPad)
	return NewLinear(0, xDomainMax, 0, width), NewLinear(lo, hi, height, 0)
}

// Render builds the scene for one view. It is a pure function of its inputs:
// the same kind and data always produce the same scene, and nothing from a
// previous call is reused.
func Render(kind Kind, data dataset.Datasets) (*Scene, error) {
	cfg, err := ConfigFor(kind)
	if err != nil {
		return nil, err
	}
	if !data.Loaded() {
		return nil, ErrNotLoaded
	}
	return renderView(cfg, data.Metric(cfg.Metric)), nil
}

func renderView(cfg ViewConfig, md dataset.MetricDataset) *Scene {
	width, height := InnerSize()
	xScale, yScale := Scales(md)
	descriptors := Descriptors(md)

	svg := newNode("svg").
		Set("xmlns", "http://www.w3.org/2000/svg").
		SetNum("width", Layout.Width).
		SetNum("height", Layout.Height).
		Set("data-kind", cfg.Kind.String())
	plot := svg.Append("g").
		Set("transform", fmt.Sprintf("translate(%s,%s)", FormatNumber(Layout.Margin.Left), FormatNumber(Layout.Margin.Top)))

	appendAxis(plot, axisBottom, xScale).
		Set("transform", "translate(0,"+FormatNumber(height)+")")
	appendAxis(plot, axisLeft, yScale)

	for _, ds := range descriptors {
		group := plot.Append("g").Set("class", strings.Join(strings.Fields(ds.Name), ""))
		path := group.Append("path").
			Set("fill", "none").
			Set("stroke", ds.Color).
			SetNum("stroke-width", strokeWidth)
		if d := linePath(ds.Data, xScale, yScale); d != "" {
			path.Set("d", d)
		}
		for _, s := range ds.Data {
			hover := NewHover(ds.Name, s)
			c := group.Append("circle").
				SetNum("cx", xScale.Map(s.Hour)).
				SetNum("cy", yScale.Map(s.AvgValue)).
				SetNum("r", markerRadius).
				Set("fill", ds.Color)
			c.Hover = &hover
		}
	}

	appendLegend(plot, descriptors, width)

	plot.Append("text").
		SetNum("x", width/2).
		SetNum("y", -20).
		Set("text-anchor", "middle").
		Set("style", "font-size: 16px;").
		SetText(cfg.Title)
	plot.Append("text").
		SetNum("x", width/2).
		SetNum("y", height+40).
		Set("text-anchor", "middle").
		SetText("Hour of the Day")
	plot.Append("text").
		Set("transform", "rotate(-90)").
		SetNum("y", -50).
		SetNum("x", -height/2).
		Set("dy", "1em").
		Set("text-anchor", "middle").
		SetText(cfg.YAxisLabel)

	return &Scene{
		Kind:    cfg.Kind.String(),
		Width:   Layout.Width,
		Height:  Layout.Height,
		Tooltip: DefaultBehavior,
		Root:    svg,
	}
}

// linePath joins points with straight segments in series order. A point
// that cannot be placed ends the current segment instead of poisoning the path.
func linePath(series dataset.CohortSeries, x, y Linear) string {
	var b strings.Builder
	pen := false
	for _, s := range series {
		px, py := x.Map(s.Hour), y.Map(s.AvgValue)
		if !finite(px) || !finite(py) {
			pen = false
			continue
		}
		if pen {
			b.WriteByte('L')
		} else {
			b.WriteByte('M')
			pen = true
		}
		b.WriteString(FormatNumber(px))
		b.WriteByte(',')
		b.WriteString(FormatNumber(py))
	}
	return b.String()
}

func appendLegend(plot *Node, descriptors []Descriptor, width float64) {
	legend := plot.Append("g").
		Set("class", "legend").
		Set("transform", "translate("+FormatNumber(width-legendOffset)+",0)")
	for i, ds := range descriptors {
		legend.Append("rect").
			SetNum("x", 0).
			SetNum("y", float64(i*legendRow)).
			SetNum("width", legendSwatch).
			SetNum("height", legendSwatch).
			Set("fill", ds.Color)
	}
	for i, ds := range descriptors {
		legend.Append("text").
			SetNum("x", 15).
			SetNum("y", float64(i*legendRow+9)).
			Set("font-size", "12px").
			Set("fill", "#000").
			SetText(ds.Name)
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
