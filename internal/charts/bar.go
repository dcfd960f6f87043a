package charts

import (
	"fmt"
	"html/template"
	"strings"
)

// Bar is one labelled value. Color falls back to the chart default.
type Bar struct {
	Label string
	Value float64
	Color string
}

// Bars renders a single-series bar chart with per-bar colors and value labels.
func Bars(width, height int, bars []Bar, f Frame) (template.HTML, error) {
	if len(bars) == 0 {
		return "", fmt.Errorf("charts: at least one bar required")
	}
	v, err := resolve(width, height, f)
	if err != nil {
		return "", err
	}
	values := make([]float64, len(bars))
	for i, bar := range bars {
		if bar.Value < 0 {
			return "", fmt.Errorf("charts: bar %q has negative value", bar.Label)
		}
		values[i] = bar.Value
	}
	lo, hi := span(values)
	scale := v.innerH / (hi - lo)
	slot := v.innerW / float64(len(bars))
	width64 := slot * 0.6

	var b strings.Builder
	v.open(&b, f, "bar")
	v.gridAndAxes(&b, lo, hi)
	bottom := v.pad + v.innerH
	for i, bar := range bars {
		h := bar.Value * scale
		x := v.pad + float64(i)*slot + (slot-width64)/2
		y := bottom - h
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"><title>%s: %s</title></rect>`,
			x, y, width64, h, fallback(bar.Color, "#0ea5e9"), escape(bar.Label), escape(formatTick(bar.Value)))
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x+width64/2, y-4, v.axis, escape(formatTick(bar.Value)))
		v.xLabel(&b, x+width64/2, bar.Label)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
