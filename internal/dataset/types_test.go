package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCohortOrderAndKeys(t *testing.T) {
	cohorts := Cohorts()
	require.Len(t, cohorts, 3)
	assert.Equal(t, []string{"femEst", "femNonEst", "male"}, []string{cohorts[0].Key(), cohorts[1].Key(), cohorts[2].Key()})

	c, err := ParseCohort("FEMNONEST")
	require.NoError(t, err)
	assert.Equal(t, CohortFemNonEst, c)
	_, err = ParseCohort("juvenile")
	assert.Error(t, err)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("Activity")
	require.NoError(t, err)
	assert.Equal(t, MetricActivity, m)
	assert.Equal(t, "temperature", MetricTemperature.String())
	_, err = ParseMetric("humidity")
	assert.Error(t, err)
}

func TestMetricDatasetIsolatedFromCaller(t *testing.T) {
	male := CohortSeries{{0, 36.1}, {6, 36.4}}
	ds := NewMetricDataset(MetricTemperature, nil, nil, male)

	male[0].AvgValue = 99
	assert.Equal(t, 36.1, ds.Series(CohortMale)[0].AvgValue)

	got := ds.Series(CohortMale)
	got[1].AvgValue = -1
	assert.Equal(t, 36.4, ds.Series(CohortMale)[1].AvgValue)
	assert.Equal(t, 2, ds.Len(CohortMale))
	assert.Zero(t, ds.Len(CohortFemEst))
}

func TestMetricDatasetValues(t *testing.T) {
	ds := NewMetricDataset(MetricActivity,
		CohortSeries{{0, 1}},
		CohortSeries{{0, 2}, {1, 3}},
		CohortSeries{{0, 4}},
	)
	assert.Equal(t, []float64{1, 2, 3, 4}, ds.Values())
}

func TestDatasetsLoaded(t *testing.T) {
	var zero Datasets
	assert.False(t, zero.Loaded())

	temp := NewMetricDataset(MetricTemperature, nil, nil, nil)
	act := NewMetricDataset(MetricActivity, nil, nil, nil)
	d := NewDatasets(temp, act)
	assert.True(t, d.Loaded())
	assert.Equal(t, MetricActivity, d.Metric(MetricActivity).Metric())
	assert.Equal(t, MetricTemperature, d.Metric(MetricTemperature).Metric())
}
