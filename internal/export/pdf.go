package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/report"
)

// Renderer converts HTML into PDF bytes. *report.Client satisfies it.
type Renderer interface {
	RenderHTML(ctx context.Context, html string, opts report.PageOptions) ([]byte, error)
}

var printTemplate = template.Must(template.New("print").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>
body{font-family:sans-serif;margin:24px;font-size:11px}
h1{font-size:18px;margin:0 0 4px}
p.meta{color:#64748b;margin:0 0 12px}
table{width:100%;border-collapse:collapse}
th,td{border:1px solid #e2e8f0;padding:4px 6px;text-align:left}
th{background:#f1f5f9}
</style></head><body>
<h1>{{.Title}}</h1>
<p class="meta">{{.Summary}}{{with .Filters}} · {{.}}{{end}} · generated {{.Generated}}</p>
<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range .Rows}}<tr>{{range .Cells}}<td>{{.Text}}</td>{{end}}</tr>{{end}}</tbody>
</table>
</body></html>`))

type printData struct {
	Title     string
	Summary   string
	Filters   string
	Generated string
	Headers   []string
	Rows      []datatable.RenderedRow
}

// PrintHTML lays out views as a standalone printable document.
func PrintHTML(views []datatable.View, generated time.Time) (string, error) {
	if len(views) == 0 {
		return "", fmt.Errorf("export: no table to print")
	}
	first := views[0]
	data := printData{
		Title:     first.Title,
		Summary:   first.Summary(),
		Filters:   describeQuery(first),
		Generated: generated.UTC().Format("02 Jan 2006 15:04 MST"),
		Headers:   first.Headers,
	}
	for _, v := range views {
		data.Rows = append(data.Rows, v.Rows...)
	}
	if len(views) > 1 {
		data.Summary = fmt.Sprintf("%d of %d rows", len(data.Rows), first.Pager.Total)
	}
	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func describeQuery(v datatable.View) string {
	var parts []string
	if v.Query.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", v.Query.Search))
	}
	for _, f := range v.Filters {
		if f.Selected != "" {
			parts = append(parts, f.Label+": "+f.Selected)
		}
	}
	return strings.Join(parts, ", ")
}

// PDF prints views and converts the document through r.
func PDF(ctx context.Context, r Renderer, views []datatable.View, generated time.Time) ([]byte, error) {
	html, err := PrintHTML(views, generated)
	if err != nil {
		return nil, err
	}
	return r.RenderHTML(ctx, html, report.PageOptions{Landscape: true, Margin: 0.4})
}
