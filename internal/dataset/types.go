// Package dataset loads the six per-cohort CSV resources into two read-only
// metric datasets (temperature and activity).
package dataset

import (
	"fmt"
	"math"
	"strings"
)

// Metric 标识一个被追踪的指标，每个指标对应一个图表视图。
type Metric int

const (
	MetricTemperature Metric = iota
	MetricActivity
)

var metricKeys = [...]string{"temperature", "activity"}

// Metrics returns both metrics in display order.
func Metrics() []Metric { return []Metric{MetricTemperature, MetricActivity} }

func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricKeys) {
		return fmt.Sprintf("metric(%d)", int(m))
	}
	return metricKeys[m]
}

// ParseMetric 解析 "temperature" / "activity"（大小写不敏感）。
func ParseMetric(s string) (Metric, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, k := range metricKeys {
		if k == key {
			return Metric(i), nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// Cohort 是三个固定受试组之一，顺序固定：发情期雌性、非发情期雌性、雄性。
type Cohort int

const (
	CohortFemEst Cohort = iota
	CohortFemNonEst
	CohortMale
	cohortCount
)

var cohortKeys = [cohortCount]string{"femEst", "femNonEst", "male"}

// Cohorts returns the three cohorts in their fixed order.
func Cohorts() []Cohort { return []Cohort{CohortFemEst, CohortFemNonEst, CohortMale} }

// Key 返回 cohort 在数据结构与 manifest 中使用的键名。
func (c Cohort) Key() string {
	if c < 0 || c >= cohortCount {
		return fmt.Sprintf("cohort(%d)", int(c))
	}
	return cohortKeys[c]
}

func (c Cohort) String() string { return c.Key() }

func ParseCohort(s string) (Cohort, error) {
	key := strings.TrimSpace(s)
	for i, k := range cohortKeys {
		if strings.EqualFold(k, key) {
			return Cohort(i), nil
		}
	}
	return 0, fmt.Errorf("unknown cohort %q", s)
}

// Sample 是一次 (hour, avg_value) 观测，解析后不可变。
type Sample struct {
	Hour     float64 `json:"hour"`
	AvgValue float64 `json:"avg_value"`
}

// Finite reports whether both fields are plottable numbers.
func (s Sample) Finite() bool {
	return !math.IsNaN(s.Hour) && !math.IsInf(s.Hour, 0) &&
		!math.IsNaN(s.AvgValue) && !math.IsInf(s.AvgValue, 0)
}

// CohortSeries keeps the row order of its source; callers must not re-sort it.
type CohortSeries []Sample

// MetricDataset 保存单个指标下三个 cohort 的序列。构造后只读。
type MetricDataset struct {
	metric Metric
	series [cohortCount]CohortSeries
}

// NewMetricDataset copies the given series so later changes to the caller's
// slices do not leak into the dataset.
func NewMetricDataset(metric Metric, femEst, femNonEst, male CohortSeries) MetricDataset {
	ds := MetricDataset{metric: metric}
	for i, s := range []CohortSeries{femEst, femNonEst, male} {
		ds.series[i] = append(CohortSeries(nil), s...)
	}
	return ds
}

func (d MetricDataset) Metric() Metric { return d.metric }

// Series 返回指定 cohort 序列的副本。
func (d MetricDataset) Series(c Cohort) CohortSeries {
	if c < 0 || c >= cohortCount {
		return nil
	}
	return append(CohortSeries(nil), d.series[c]...)
}

// Len returns the sample count of a cohort without copying.
func (d MetricDataset) Len(c Cohort) int {
	if c < 0 || c >= cohortCount {
		return 0
	}
	return len(d.series[c])
}

// Values 汇总三个 cohort 的全部 avg_value，用于计算 y 轴范围。
func (d MetricDataset) Values() []float64 {
	total := 0
	for _, s := range d.series {
		total += len(s)
	}
	out := make([]float64, 0, total)
	for _, s := range d.series {
		for _, sample := range s {
			out = append(out, sample.AvgValue)
		}
	}
	return out
}

// Datasets 是一次成功加载的结果；零值表示尚未加载。
type Datasets struct {
	Temperature MetricDataset
	Activity    MetricDataset
	loaded      bool
}

// NewDatasets marks both metric datasets as loaded together.
func NewDatasets(temperature, activity MetricDataset) Datasets {
	return Datasets{Temperature: temperature, Activity: activity, loaded: true}
}

func (d Datasets) Loaded() bool { return d.loaded }

// Metric 返回指定指标的数据集。
func (d Datasets) Metric(m Metric) MetricDataset {
	if m == MetricActivity {
		return d.Activity
	}
	return d.Temperature
}
