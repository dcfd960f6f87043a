// Package charts renders small dependency-free SVG charts for the dashboard.
package charts

import (
	"fmt"
	"math"
	"strings"
)

// Defaults for dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 28.0
	DefaultTicks   = 5
)

// Frame holds options shared by every chart.
type Frame struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
}

// viewport is a resolved Frame for a given size.
type viewport struct {
	width, height int
	pad           float64
	innerW        float64
	innerH        float64
	ticks         int
	axis          string
	grid          string
}

func resolve(width, height int, f Frame) (viewport, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	pad := f.Padding
	if pad <= 0 {
		pad = DefaultPadding
	}
	ticks := f.TickCount
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	v := viewport{
		width:  width,
		height: height,
		pad:    pad,
		innerW: float64(width) - 2*pad,
		innerH: float64(height) - 2*pad,
		ticks:  ticks,
		axis:   fallback(f.AxisColor, "#475569"),
		grid:   fallback(f.GridColor, "#cbd5e1"),
	}
	if v.innerW <= 0 || v.innerH <= 0 {
		return viewport{}, fmt.Errorf("charts: viewport too small")
	}
	return v, nil
}

// open writes the svg root with accessible title and description.
func (v viewport) open(b *strings.Builder, f Frame, kind string) {
	titleID := makeID(f.Title, kind+"-title")
	descID := makeID(f.Title, kind+"-desc")
	fmt.Fprintf(b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, v.width, v.height, titleID, descID)
	fmt.Fprintf(b, `<title id="%s">%s</title>`, titleID, escape(fallback(f.Title, kind+" chart")))
	fmt.Fprintf(b, `<desc id="%s">%s</desc>`, descID, escape(f.Description))
}

// gridAndAxes draws horizontal grid lines with tick labels for [lo, hi].
func (v viewport) gridAndAxes(b *strings.Builder, lo, hi float64) {
	for i := 0; i <= v.ticks; i++ {
		ratio := float64(i) / float64(v.ticks)
		y := v.pad + v.innerH - ratio*v.innerH
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, v.pad, y, v.pad+v.innerW, y, v.grid)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, v.pad-6, y+4, v.axis, escape(formatTick(lo+(hi-lo)*ratio)))
	}
	fmt.Fprintf(b, `<g stroke="%s" aria-hidden="true">`, v.axis)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, v.pad, v.pad, v.pad, v.pad+v.innerH)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, v.pad, v.pad+v.innerH, v.pad+v.innerW, v.pad+v.innerH)
	b.WriteString("</g>")
}

func (v viewport) xLabel(b *strings.Builder, x float64, label string) {
	fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x, v.pad+v.innerH+14, v.axis, escape(label))
}

// span returns a non-degenerate [lo, hi] that always includes zero.
func span(values []float64) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.Abs(hi-lo) < 1e-9 {
		hi = lo + 1
	}
	return lo, hi
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")
	return r.Replace(s)
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case math.Abs(v-math.Round(v)) < 1e-9:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}
