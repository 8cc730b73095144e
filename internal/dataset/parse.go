package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

const (
	columnHour  = "hour"
	columnValue = "avg_value"
)

// MalformedPolicy 决定无法转换为数字的行如何处理。
type MalformedPolicy string

const (
	// PolicyPassthrough keeps NaN samples; they plot as gaps in the line.
	PolicyPassthrough MalformedPolicy = "passthrough"
	PolicyDrop        MalformedPolicy = "drop"
	PolicyReject      MalformedPolicy = "reject"
)

func ParsePolicy(s string) (MalformedPolicy, error) {
	switch p := MalformedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyPassthrough, nil
	case PolicyPassthrough, PolicyDrop, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown malformed policy %q", s)
	}
}

// ParseResult 是单个 CSV 资源的解析结果。
type ParseResult struct {
	Series    CohortSeries
	Rows      int
	Malformed int // rows with a non-finite hour or avg_value
}

// ParseCSV reads a header row followed by data rows. Columns are located by
// name so their order and any extra columns do not matter.
func ParseCSV(r io.Reader, policy MalformedPolicy) (ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return ParseResult{}, fmt.Errorf("missing header row")
	}
	if err != nil {
		return ParseResult{}, fmt.Errorf("read header: %w", err)
	}
	hourIdx, valueIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case columnHour:
			hourIdx = i
		case columnValue:
			valueIdx = i
		}
	}
	if hourIdx < 0 || valueIdx < 0 {
		return ParseResult{}, fmt.Errorf("header must contain %q and %q columns, got %v", columnHour, columnValue, header)
	}

	var res ParseResult
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ParseResult{}, fmt.Errorf("read row %d: %w", res.Rows+1, err)
		}
		if isBlankRecord(record) {
			continue
		}
		res.Rows++
		sample := Sample{
			Hour:     coerceField(record, hourIdx),
			AvgValue: coerceField(record, valueIdx),
		}
		if !sample.Finite() {
			res.Malformed++
			switch policy {
			case PolicyReject:
				return ParseResult{}, fmt.Errorf("%w: row %d (%s=%q, %s=%q)", ErrMalformedSample, res.Rows,
					columnHour, fieldAt(record, hourIdx), columnValue, fieldAt(record, valueIdx))
			case PolicyDrop:
				continue
			}
		}
		res.Series = append(res.Series, sample)
	}
	return res, nil
}

// Coerce converts CSV text to a number the way a numeric cast of a string
// does: surrounding whitespace is ignored and empty text is zero. Accepted
// forms are decimal literals with an optional sign and exponent, unsigned
// 0x/0o/0b integers and the exact word "Infinity" (optionally signed).
// Anything else, including underscores, "inf", "nan" and hex floats, is NaN.
func Coerce(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	switch text {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if v, ok := coerceRadix(text); ok {
		return v
	}
	if !decimalLiteral.MatchString(text) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// coerceRadix handles 0x/0o/0b integers; ok is false when text has no such prefix.
func coerceRadix(text string) (float64, bool) {
	body := strings.TrimLeft(text, "+-")
	if len(body) < 2 || body[0] != '0' {
		return 0, false
	}
	var base int
	switch body[1] {
	case 'x', 'X':
		base = 16
	case 'o', 'O':
		base = 8
	case 'b', 'B':
		base = 2
	default:
		return 0, false
	}
	digits := body[2:]
	if len(body) != len(text) || digits == "" || strings.Contains(digits, "_") {
		return math.NaN(), true
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN(), true
	}
	v, _ := new(big.Float).SetInt(n).Float64()
	return v, true
}

// coerceField treats a missing trailing field as undefined, i.e. NaN.
func coerceField(record []string, idx int) float64 {
	if idx >= len(record) {
		return math.NaN()
	}
	return Coerce(record[idx])
}

func fieldAt(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
