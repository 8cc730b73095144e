package chart

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"circadian/internal/dataset"

	"github.com/shopspring/decimal"
)

// Behavior 描述悬浮提示的固定参数，随场景一起输出给浏览器端。
type Behavior struct {
	OffsetX     float64 `json:"offset_x"`
	OffsetY     float64 `json:"offset_y"`
	Opacity     float64 `json:"opacity"`
	FadeInMS    int64   `json:"fade_in_ms"`
	FadeOutMS   int64   `json:"fade_out_ms"`
	ValueDigits int32   `json:"value_digits"`
}

// DefaultBehavior: label at pointer +5/-28, fade to 0.9 in 200ms, out in 500ms.
var DefaultBehavior = Behavior{
	OffsetX:     5,
	OffsetY:     -28,
	Opacity:     0.9,
	FadeInMS:    200,
	FadeOutMS:   500,
	ValueDigits: 2,
}

// Hover 绑定在每个数据点标记上，内容在渲染时即确定。
type Hover struct {
	Cohort string `json:"cohort"`
	Hour   string `json:"hour"`
	Value  string `json:"value"`
}

// Lines returns the three tooltip lines.
func (h Hover) Lines() []string {
	return []string{h.Cohort, "Hour: " + h.Hour, "Value: " + h.Value}
}

// Text is the plain form, e.g. "Male / Hour: 6 / Value: 36.40".
func (h Hover) Text() string { return strings.Join(h.Lines(), " / ") }

// NewHover formats a sample for the tooltip of the named cohort.
func NewHover(cohort string, s dataset.Sample) Hover {
	return Hover{
		Cohort: cohort,
		Hour:   FormatHour(s.Hour),
		Value:  FormatValue(s.AvgValue, DefaultBehavior.ValueDigits),
	}
}

// FormatHour prints the hour the way it was read: 6 -> "6", 6.5 -> "6.5".
func FormatHour(h float64) string {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return FormatNumber(h)
	}
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// FormatValue 固定小数位输出，非有限值输出 NaN/Infinity。
// Rounding is half away from zero on the exact binary value, so 1.005
// (stored just below 1.005) prints "1.00" while an exact tie like 0.125
// prints "0.13".
func FormatValue(v float64, digits int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatNumber(v)
	}
	exact, err := decimal.NewFromString(new(big.Float).SetFloat64(v).Text('f', exactDigits))
	if err != nil {
		return decimal.NewFromFloat(v).StringFixed(digits)
	}
	return exact.StringFixed(digits)
}

// exactDigits 足以区分真实的 .5 边界与略低/略高的二进制值。
const exactDigits = 40

// PointerPosition is the pointer location in page coordinates.
type PointerPosition struct {
	X, Y float64
}

// HoverPoint is the marker under the pointer at enter time.
type HoverPoint struct {
	Sample  dataset.Sample
	Pointer PointerPosition
}

// HoverHandler receives marker hover notifications from the rendering surface.
type HoverHandler interface {
	OnEnter(point HoverPoint, cohort string)
	OnLeave()
}

// Fade 描述一次透明度过渡。
type Fade struct {
	Opacity  float64
	Duration time.Duration
}

// Tooltip is the floating label. It owns only its own visibility, content
// and position; the position is captured on enter and not re-tracked.
type Tooltip struct {
	Behavior Behavior
	Content  Hover
	Left     float64
	Top      float64
	Fade     Fade
}

func NewTooltip() *Tooltip {
	return &Tooltip{Behavior: DefaultBehavior}
}

func (t *Tooltip) OnEnter(point HoverPoint, cohort string) {
	t.Content = NewHover(cohort, point.Sample)
	t.Left = point.Pointer.X + t.Behavior.OffsetX
	t.Top = point.Pointer.Y + t.Behavior.OffsetY
	t.Fade = Fade{Opacity: t.Behavior.Opacity, Duration: time.Duration(t.Behavior.FadeInMS) * time.Millisecond}
}

func (t *Tooltip) OnLeave() {
	t.Fade = Fade{Opacity: 0, Duration: time.Duration(t.Behavior.FadeOutMS) * time.Millisecond}
}

// Visible reports whether the label is fading in or shown.
func (t *Tooltip) Visible() bool { return t.Fade.Opacity > 0 }

var _ HoverHandler = (*Tooltip)(nil)
