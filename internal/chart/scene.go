package chart

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Attr is one presentation attribute. Attributes keep insertion order so
// encodings of the same scene are byte-identical.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Node 是场景图中的一个元素（g/path/circle/rect/text/line）。
type Node struct {
	Tag      string  `json:"tag"`
	Attrs    []Attr  `json:"attrs,omitempty"`
	Text     string  `json:"text,omitempty"`
	Hover    *Hover  `json:"hover,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

func newNode(tag string) *Node { return &Node{Tag: tag} }

// Set appends an attribute, or replaces it when already present.
func (n *Node) Set(name, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

func (n *Node) SetNum(name string, v float64) *Node { return n.Set(name, FormatNumber(v)) }

func (n *Node) Append(tag string) *Node {
	child := newNode(tag)
	n.Children = append(n.Children, child)
	return child
}

func (n *Node) SetText(text string) *Node {
	n.Text = text
	return n
}

// Attr returns the value of an attribute and whether it was set.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Walk visits n and its descendants depth-first; returning false stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// FindAll 收集满足条件的所有节点。
func (n *Node) FindAll(match func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(x *Node) bool {
		if match(x) {
			out = append(out, x)
		}
		return true
	})
	return out
}

// HasClass reports whether the node's class attribute equals class.
func HasClass(class string) func(*Node) bool {
	return func(n *Node) bool {
		v, _ := n.Attr("class")
		return v == class
	}
}

// IsTag matches nodes by element name.
func IsTag(tag string) func(*Node) bool {
	return func(n *Node) bool { return n.Tag == tag }
}

// Scene 是一次渲染的完整输出，整体替换挂载点中的旧内容。
type Scene struct {
	Kind    string   `json:"kind"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Tooltip Behavior `json:"tooltip"`
	Root    *Node    `json:"root"`
}

// FormatNumber renders a coordinate for attributes. Values are rounded to
// six decimals to keep the output stable; non-finite values print as NaN.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	d := decimal.NewFromFloat(v).Round(6)
	if d.IsZero() {
		return "0"
	}
	return d.String()
}

func formatInt(v int) string { return strconv.Itoa(v) }
