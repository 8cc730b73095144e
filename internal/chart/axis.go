package chart

import "strings"

const (
	tickSize    = 6
	tickPadding = 3
	tickCount   = 10
)

type axisOrient int

const (
	axisBottom axisOrient = iota
	axisLeft
)

// appendAxis 在 parent 下绘制一条坐标轴：domain 路径 + 每个刻度的短线与标签。
// Coordinates are shifted by half a unit so one-unit strokes land on pixel centres.
func appendAxis(parent *Node, orient axisOrient, scale Linear) *Node {
	g := parent.Append("g").
		Set("fill", "none").
		Set("font-size", "10").
		Set("font-family", "sans-serif")
	if orient == axisBottom {
		g.Set("class", "x-axis").Set("text-anchor", "middle")
	} else {
		g.Set("class", "y-axis").Set("text-anchor", "end")
	}

	r0, r1 := scale.R0, scale.R1
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	lo, hi := FormatNumber(r0+0.5), FormatNumber(r1+0.5)
	var d strings.Builder
	switch orient {
	case axisBottom:
		d.WriteString("M" + lo + "," + formatInt(tickSize) + "V0.5H" + hi + "V" + formatInt(tickSize))
	case axisLeft:
		d.WriteString("M-" + formatInt(tickSize) + "," + hi + "H0.5V" + lo + "H-" + formatInt(tickSize))
	}
	g.Append("path").
		Set("class", "domain").
		Set("stroke", "currentColor").
		Set("d", d.String())

	for _, tick := range scale.Ticks(tickCount) {
		pos := FormatNumber(scale.Map(tick.Value) + 0.5)
		t := g.Append("g").Set("class", "tick").Set("opacity", "1")
		line := t.Append("line").Set("stroke", "currentColor")
		label := t.Append("text").Set("fill", "currentColor")
		switch orient {
		case axisBottom:
			t.Set("transform", "translate("+pos+",0)")
			line.Set("y2", formatInt(tickSize))
			label.Set("y", formatInt(tickSize+tickPadding)).Set("dy", "0.71em")
		case axisLeft:
			t.Set("transform", "translate(0,"+pos+")")
			line.Set("x2", "-"+formatInt(tickSize))
			label.Set("x", "-"+formatInt(tickSize+tickPadding)).Set("dy", "0.32em")
		}
		label.SetText(tick.Label)
	}
	return g
}
