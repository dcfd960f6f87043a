package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/report"
)

var bookingTable = datatable.Table{
	ID:       "bookings",
	Title:    "Bookings",
	BasePath: "/bookings",
	Columns: []datatable.Column{
		{Key: "ref", Header: "Reference"},
		{Key: "customer", Header: "Customer"},
		datatable.StatusColumn("status", "Status"),
	},
	Filters: []datatable.Filter{{Key: "status", Label: "Status", Options: []datatable.Option{{Label: "Paid", Value: "paid"}}}},
}

func sampleView(q datatable.Query, rows ...datatable.Row) datatable.View {
	return bookingTable.View(datatable.Result{Rows: rows, Total: 12}, q, "")
}

func TestWriteCSVConcatenatesPages(t *testing.T) {
	q := datatable.Query{Page: 1, Limit: 2}
	page1 := sampleView(q,
		datatable.NewRow("1", map[string]string{"ref": "BK-1", "customer": "Ana, Lima", "status": "paid"}),
		datatable.NewRow("2", map[string]string{"ref": "BK-2", "customer": "=HYPERLINK()", "status": "cancelled"}),
	)
	page2 := sampleView(datatable.Query{Page: 2, Limit: 2},
		datatable.NewRow("3", map[string]string{"ref": "BK-3", "customer": "Bo", "status": ""}),
	)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, page1, page2))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Reference,Customer,Status", lines[0])
	assert.Equal(t, `BK-1,"Ana, Lima",Paid`, lines[1])
	assert.Equal(t, "BK-2,'=HYPERLINK(),Cancelled", lines[2])
	assert.Equal(t, "BK-3,Bo,—", lines[3])
}

func TestWriteCSVWithoutViews(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf))
	assert.Empty(t, buf.String())
}

type fakeRenderer struct {
	html string
	opts report.PageOptions
}

func (f *fakeRenderer) RenderHTML(_ context.Context, html string, opts report.PageOptions) ([]byte, error) {
	f.html = html
	f.opts = opts
	return []byte("%PDF"), nil
}

func TestPDFPrintsEscapedTable(t *testing.T) {
	q := datatable.Query{Page: 1, Limit: 10, Search: "ana", Filters: map[string]string{"status": "paid"}}
	v := sampleView(q, datatable.NewRow("1", map[string]string{"ref": "<b>BK-1</b>", "customer": "Ana", "status": "paid"}))

	renderer := &fakeRenderer{}
	pdf, err := PDF(context.Background(), renderer, []datatable.View{v}, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf))
	assert.True(t, renderer.opts.Landscape)

	assert.Contains(t, renderer.html, "<h1>Bookings</h1>")
	assert.Contains(t, renderer.html, "&lt;b&gt;BK-1&lt;/b&gt;")
	assert.Contains(t, renderer.html, "Status: paid")
	assert.Contains(t, renderer.html, "01 Mar 2026 09:30 UTC")
}

func TestPrintHTMLRequiresView(t *testing.T) {
	_, err := PrintHTML(nil, time.Now())
	require.Error(t, err)
}
