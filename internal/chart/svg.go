package chart

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// EncodeSVG writes the scene as a standalone SVG document. Hover bindings
// become data-* attributes on the markers and the tooltip behaviour is
// attached to the root element for the page script.
func EncodeSVG(w io.Writer, scene *Scene) error {
	if scene == nil || scene.Root == nil {
		return fmt.Errorf("empty scene")
	}
	bw := bufio.NewWriter(w)
	root := *scene.Root
	root.Attrs = append(append([]Attr(nil), root.Attrs...), behaviorAttrs(scene.Tooltip)...)
	if err := encodeNode(bw, &root); err != nil {
		return err
	}
	return bw.Flush()
}

func behaviorAttrs(b Behavior) []Attr {
	return []Attr{
		{Name: "data-tooltip-offset-x", Value: FormatNumber(b.OffsetX)},
		{Name: "data-tooltip-offset-y", Value: FormatNumber(b.OffsetY)},
		{Name: "data-tooltip-opacity", Value: FormatNumber(b.Opacity)},
		{Name: "data-tooltip-fade-in", Value: strconv.FormatInt(b.FadeInMS, 10)},
		{Name: "data-tooltip-fade-out", Value: strconv.FormatInt(b.FadeOutMS, 10)},
	}
}

func encodeNode(w *bufio.Writer, n *Node) error {
	w.WriteByte('<')
	w.WriteString(n.Tag)
	for _, a := range n.Attrs {
		writeAttr(w, a.Name, a.Value)
	}
	if n.Hover != nil {
		writeAttr(w, "data-cohort", n.Hover.Cohort)
		writeAttr(w, "data-hour", n.Hover.Hour)
		writeAttr(w, "data-value", n.Hover.Value)
	}
	if n.Text == "" && len(n.Children) == 0 {
		_, err := w.WriteString("/>")
		return err
	}
	w.WriteByte('>')
	if n.Text != "" {
		if err := xml.EscapeText(w, []byte(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := encodeNode(w, c); err != nil {
			return err
		}
	}
	w.WriteString("</")
	w.WriteString(n.Tag)
	_, err := w.WriteString(">")
	return err
}

func writeAttr(w *bufio.Writer, name, value string) {
	w.WriteByte(' ')
	w.WriteString(name)
	w.WriteString(`="`)
	xml.EscapeText(w, []byte(value))
	w.WriteByte('"')
}
