package chart

import (
	"math"
	"testing"
	"time"

	"circadian/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoverText(t *testing.T) {
	h := NewHover("Male", dataset.Sample{Hour: 6, AvgValue: 36.4})
	assert.Equal(t, "Male / Hour: 6 / Value: 36.40", h.Text())
	assert.Equal(t, []string{"Male", "Hour: 6", "Value: 36.40"}, h.Lines())
}

func TestFormatHourAndValue(t *testing.T) {
	assert.Equal(t, "6.5", FormatHour(6.5))
	assert.Equal(t, "0", FormatHour(0))
	assert.Equal(t, "NaN", FormatHour(math.NaN()))
	assert.Equal(t, "36.00", FormatValue(36, 2))
	assert.Equal(t, "1.23", FormatValue(1.234, 2))
	assert.Equal(t, "-0.50", FormatValue(-0.5, 2))
	assert.Equal(t, "NaN", FormatValue(math.NaN(), 2))

	// ties are judged on the stored binary value
	cases := map[float64]string{
		1.005:  "1.00",
		2.675:  "2.67",
		0.125:  "0.13",
		-0.125: "-0.13",
		36.455: "36.45",
		10.5:   "10.50",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatValue(in, 2), "value %v", in)
	}
	assert.Equal(t, "Male / Hour: 6 / Value: 1.00", NewHover("Male", dataset.Sample{Hour: 6, AvgValue: 1.005}).Text())
}

func TestTooltipHandler(t *testing.T) {
	var handler HoverHandler = NewTooltip()
	tip := handler.(*Tooltip)
	assert.False(t, tip.Visible())

	handler.OnEnter(HoverPoint{
		Sample:  dataset.Sample{Hour: 6, AvgValue: 36.4},
		Pointer: PointerPosition{X: 100, Y: 200},
	}, "Male")
	require.True(t, tip.Visible())
	assert.Equal(t, "Male / Hour: 6 / Value: 36.40", tip.Content.Text())
	assert.Equal(t, 105.0, tip.Left)
	assert.Equal(t, 172.0, tip.Top)
	assert.Equal(t, Fade{Opacity: 0.9, Duration: 200 * time.Millisecond}, tip.Fade)

	handler.OnLeave()
	assert.False(t, tip.Visible())
	assert.Equal(t, 500*time.Millisecond, tip.Fade.Duration)
	assert.Equal(t, "Male / Hour: 6 / Value: 36.40", tip.Content.Text(), "content stays while fading out")
}

func TestMarkersCarryHoverBinding(t *testing.T) {
	scene, err := Render(KindTemperature, sampleDatasets())
	require.NoError(t, err)
	for _, c := range scene.Root.FindAll(IsTag("circle")) {
		require.NotNil(t, c.Hover)
	}
	male := cohortGroup(t, scene, "Male").FindAll(IsTag("circle"))
	assert.Equal(t, "Male / Hour: 6 / Value: 36.40", male[1].Hover.Text())
}
