package chart

import (
	"errors"
	"fmt"
	"strings"

	"circadian/internal/dataset"
)

// Kind 选择两个固定视图之一。
type Kind int

const (
	KindTemperature Kind = iota
	KindActivity
)

var (
	ErrUnknownKind = errors.New("unknown chart kind")
	ErrNotLoaded   = errors.New("datasets not loaded")
)

func Kinds() []Kind { return []Kind{KindTemperature, KindActivity} }

func (k Kind) String() string {
	switch k {
	case KindTemperature:
		return "temperature"
	case KindActivity:
		return "activity"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts the view names used in URLs and CLI flags.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "temperature", "temp":
		return KindTemperature, nil
	case "activity", "act":
		return KindActivity, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// ViewConfig 是两个视图之间唯一的差异。
type ViewConfig struct {
	Kind       Kind
	Title      string
	YAxisLabel string
	Metric     dataset.Metric
}

// ConfigFor returns the fixed configuration of a view.
func ConfigFor(kind Kind) (ViewConfig, error) {
	switch kind {
	case KindTemperature:
		return ViewConfig{
			Kind:       kind,
			Title:      "Average Temperature Throughout the Day",
			YAxisLabel: "Temperature (°C)",
			Metric:     dataset.MetricTemperature,
		}, nil
	case KindActivity:
		return ViewConfig{
			Kind:       kind,
			Title:      "Average Activity Throughout the Day",
			YAxisLabel: "Activity",
			Metric:     dataset.MetricActivity,
		}, nil
	default:
		return ViewConfig{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// Descriptor 描述一个 cohort 在图中的呈现，每次渲染重新构造。
type Descriptor struct {
	Name   string
	Cohort dataset.Cohort
	Data   dataset.CohortSeries
	Color  string
}

var cohortStyles = [...]struct {
	name  string
	color string
}{
	dataset.CohortFemEst:    {"Female (Estrus)", "red"},
	dataset.CohortFemNonEst: {"Female (Non-Estrus)", "blue"},
	dataset.CohortMale:      {"Male", "green"},
}

// CohortName is the display label of a cohort.
func CohortName(c dataset.Cohort) string { return cohortStyles[c].name }

// CohortColor is the stroke and fill colour of a cohort.
func CohortColor(c dataset.Cohort) string { return cohortStyles[c].color }

// Descriptors builds the three cohort descriptors for a metric dataset.
func Descriptors(ds dataset.MetricDataset) []Descriptor {
	out := make([]Descriptor, 0, 3)
	for _, c := range dataset.Cohorts() {
		out = append(out, Descriptor{
			Name:   CohortName(c),
			Cohort: c,
			Data:   ds.Series(c),
			Color:  CohortColor(c),
		})
	}
	return out
}
