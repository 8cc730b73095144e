package dataset

// CohortSummary 汇总单个 cohort 序列，用于启动摘要、CLI 与 /api/datasets。
type CohortSummary struct {
	Metric    string   `json:"metric" yaml:"metric"`
	Cohort    string   `json:"cohort" yaml:"cohort"`
	Samples   int      `json:"samples" yaml:"samples"`
	Malformed int      `json:"malformed" yaml:"malformed"`
	MinValue  *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue  *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	FirstHour *float64 `json:"first_hour,omitempty" yaml:"first_hour,omitempty"`
	LastHour  *float64 `json:"last_hour,omitempty" yaml:"last_hour,omitempty"`
}

// Summarize lists all six cohort series, temperature first. Extents cover
// finite samples only and are nil when a series has none.
func Summarize(data Datasets) []CohortSummary {
	out := make([]CohortSummary, 0, 6)
	for _, metric := range Metrics() {
		md := data.Metric(metric)
		for _, cohort := range Cohorts() {
			out = append(out, summarizeSeries(metric, cohort, md.series[cohort]))
		}
	}
	return out
}

func summarizeSeries(metric Metric, cohort Cohort, series CohortSeries) CohortSummary {
	sum := CohortSummary{Metric: metric.String(), Cohort: cohort.Key(), Samples: len(series)}
	var lo, hi, first, last float64
	seen := false
	for _, s := range series {
		if !s.Finite() {
			sum.Malformed++
			continue
		}
		if !seen {
			lo, hi, first = s.AvgValue, s.AvgValue, s.Hour
			seen = true
		}
		lo = min(lo, s.AvgValue)
		hi = max(hi, s.AvgValue)
		last = s.Hour
	}
	if seen {
		sum.MinValue, sum.MaxValue = &lo, &hi
		sum.FirstHour, sum.LastHour = &first, &last
	}
	return sum
}
