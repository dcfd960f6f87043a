package charts

import (
	"fmt"
	"html/template"
	"strings"
)

// LineStyle customises a line chart.
type LineStyle struct {
	Stroke   string
	Fill     string
	ShowDots bool
	// LabelEvery prints every nth x label; 0 prints all.
	LabelEvery int
}

// Line renders one series as a line with an optional filled area.
func Line(width, height int, series []float64, labels []string, f Frame, style LineStyle) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("charts: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("charts: labels length must match series")
	}
	v, err := resolve(width, height, f)
	if err != nil {
		return "", err
	}
	stroke := fallback(style.Stroke, "#2563eb")
	lo, hi := span(series)
	scale := v.innerH / (hi - lo)
	bottom := v.pad + v.innerH

	xAt := func(i int) float64 {
		if len(series) == 1 {
			return v.pad + v.innerW/2
		}
		return v.pad + float64(i)*v.innerW/float64(len(series)-1)
	}
	yAt := func(value float64) float64 {
		return bottom - (value-lo)*scale
	}

	var path strings.Builder
	for i, value := range series {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&path, "%s%.2f %.2f ", cmd, xAt(i), yAt(value))
	}
	d := strings.TrimSpace(path.String())

	var b strings.Builder
	v.open(&b, f, "line")
	v.gridAndAxes(&b, lo, hi)
	if style.Fill != "" {
		fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none" aria-hidden="true"></path>`, d, xAt(len(series)-1), bottom, xAt(0), bottom, style.Fill)
	}
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, d, stroke)
	if style.ShowDots {
		for i, value := range series {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"></circle>`, xAt(i), yAt(value), stroke)
		}
	}
	for i, label := range labels {
		if style.LabelEvery > 1 && i%style.LabelEvery != 0 && i != len(labels)-1 {
			continue
		}
		v.xLabel(&b, xAt(i), label)
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
