package charts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarsRendersColoredBars(t *testing.T) {
	html, err := Bars(420, 220, []Bar{
		{Label: "Confirmed", Value: 12, Color: "#16a34a"},
		{Label: "Cancelled", Value: 3, Color: "#dc2626"},
		{Label: "<script>", Value: 0},
	}, Frame{Title: "Bookings by status"})
	require.NoError(t, err)

	out := string(html)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Equal(t, 3, strings.Count(out, "<rect"))
	assert.Contains(t, out, `fill="#16a34a"`)
	assert.Contains(t, out, `fill="#dc2626"`)
	assert.Contains(t, out, "Confirmed: 12")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `aria-labelledby="bookings-by-status-bar-title bookings-by-status-bar-desc"`)
}

func TestBarsRejectsBadInput(t *testing.T) {
	_, err := Bars(400, 200, nil, Frame{})
	require.Error(t, err)
	_, err = Bars(400, 200, []Bar{{Label: "x", Value: -1}}, Frame{})
	require.Error(t, err)
	_, err = Bars(20, 20, []Bar{{Label: "x", Value: 1}}, Frame{Padding: 30})
	require.Error(t, err)
}

func TestLineRendersPathAndThinsLabels(t *testing.T) {
	series := []float64{0, 2, 5, 1, 0, 4}
	labels := []string{"10:00", "10:01", "10:02", "10:03", "10:04", "10:05"}
	html, err := Line(400, 200, series, labels, Frame{Title: "Events"}, LineStyle{Fill: "#dbeafe", ShowDots: true, LabelEvery: 3})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `<path d="M`)
	assert.Equal(t, len(series), strings.Count(out, "<circle"))
	assert.Contains(t, out, ">10:00<")
	assert.Contains(t, out, ">10:03<")
	assert.Contains(t, out, ">10:05<")
	assert.NotContains(t, out, ">10:01<")
}

func TestLineSinglePointAndMismatch(t *testing.T) {
	_, err := Line(400, 200, []float64{1}, []string{"a"}, Frame{}, LineStyle{})
	require.NoError(t, err)
	_, err = Line(400, 200, []float64{1, 2}, []string{"a"}, Frame{}, LineStyle{})
	require.Error(t, err)
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "0", formatTick(0))
	assert.Equal(t, "2.5", formatTick(2.5))
	assert.Equal(t, "1.5k", formatTick(1500))
	assert.Equal(t, "2.0M", formatTick(2_000_000))
}
