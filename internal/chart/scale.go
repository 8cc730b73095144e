package chart

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Linear maps a domain interval onto a range interval.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Map 线性映射；退化定义域映射到 range 中点。
func (s Linear) Map(v float64) float64 {
	span := s.D1 - s.D0
	if span == 0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (v-s.D0)/span*(s.R1-s.R0)
}

func (s Linear) Domain() [2]float64 { return [2]float64{s.D0, s.D1} }
func (s Linear) Range() [2]float64  { return [2]float64{s.R0, s.R1} }

// PaddedExtent returns [min-pad, max+pad] over the finite values. With no
// finite values it falls back to [-pad, pad] so the domain is never empty.
func PaddedExtent(values []float64, pad float64) (lo, hi float64) {
	first := true
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo - pad, hi + pad
}

// Tick 是坐标轴上的一个刻度。
type Tick struct {
	Value float64
	Label string
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickStep picks a 1, 2 or 5 times power-of-ten step giving roughly count
// ticks over [start, stop].
func tickStep(start, stop float64, count int) (decimal.Decimal, bool) {
	if count <= 0 || !(stop > start) || math.IsInf(stop-start, 0) {
		return decimal.Zero, false
	}
	raw := (stop - start) / float64(count)
	power := int32(math.Floor(math.Log10(raw)))
	errRatio := raw / math.Pow(10, float64(power))
	factor := int64(1)
	switch {
	case errRatio >= e10:
		return decimal.New(1, power+1), true
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}
	return decimal.New(factor, power), true
}

// Ticks 返回定义域内的刻度及其标签。刻度值通过 decimal 计算，避免 0.1 累加误差。
func (s Linear) Ticks(count int) []Tick {
	lo, hi := s.D0, s.D1
	if lo > hi {
		lo, hi = hi, lo
	}
	step, ok := tickStep(lo, hi, count)
	if !ok {
		if lo == hi && !math.IsNaN(lo) {
			return []Tick{{Value: lo, Label: formatTickLabel(decimal.NewFromFloat(lo), 0)}}
		}
		return nil
	}
	first := decimal.NewFromFloat(lo).Div(step).Ceil()
	last := decimal.NewFromFloat(hi).Div(step).Floor()
	places := int32(0)
	if exp := step.Exponent(); exp < 0 {
		places = -exp
	}
	var ticks []Tick
	for k := first; k.LessThanOrEqual(last); k = k.Add(decimal.NewFromInt(1)) {
		v := k.Mul(step)
		f, _ := v.Float64()
		ticks = append(ticks, Tick{Value: f, Label: formatTickLabel(v, places)})
	}
	return ticks
}

// formatTickLabel 固定小数位并按千位加逗号分组。
func formatTickLabel(v decimal.Decimal, places int32) string {
	s := v.StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	if neg && strings.Trim(s, "0.") != "" {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
