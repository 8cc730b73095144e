package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	temp := NewMetricDataset(MetricTemperature,
		CohortSeries{{0, 36.2}, {6, math.NaN()}, {12, 36.9}},
		nil,
		CohortSeries{{0, 36.1}},
	)
	act := NewMetricDataset(MetricActivity, nil, nil, nil)
	sums := Summarize(NewDatasets(temp, act))
	require.Len(t, sums, 6)

	first := sums[0]
	assert.Equal(t, "temperature", first.Metric)
	assert.Equal(t, "femEst", first.Cohort)
	assert.Equal(t, 3, first.Samples)
	assert.Equal(t, 1, first.Malformed)
	assert.Equal(t, 36.2, *first.MinValue)
	assert.Equal(t, 36.9, *first.MaxValue)
	assert.Equal(t, 0.0, *first.FirstHour)
	assert.Equal(t, 12.0, *first.LastHour)

	assert.Nil(t, sums[1].MinValue, "empty series has no extent")
	assert.Equal(t, "activity", sums[5].Metric)
	assert.Equal(t, "male", sums[5].Cohort)
}
