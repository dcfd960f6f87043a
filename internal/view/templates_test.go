package view

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/datatable"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderTableFragment(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	table := datatable.Table{
		ID:       "customers",
		BasePath: "/customers",
		Columns:  []datatable.Column{{Key: "name", Header: "Name"}, datatable.StatusColumn("status", "Status")},
		RowLink:  func(r datatable.Row) string { return "/customers/" + r.ID() },
	}
	rows := []datatable.Row{datatable.NewRow("c-9", map[string]string{"name": "Dewi <b>", "status": "blocked"})}
	v := table.View(datatable.Result{Rows: rows, Total: 31}, datatable.Query{Page: 2, Limit: 10}, "")

	html, err := engine.RenderString("partials/datatable", map[string]any{"Table": v, "CSRF": "tok"})
	require.NoError(t, err)

	assert.Contains(t, html, `id="table-customers"`)
	assert.Contains(t, html, "Dewi &lt;b&gt;")
	assert.Contains(t, html, "badge badge-negative")
	assert.Contains(t, html, `href="/customers/c-9"`)
	assert.Contains(t, html, "11–20 of 31")
	assert.Contains(t, html, "/customers?limit=10&amp;page=3")
}

func TestRenderHidesPagerForSinglePage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	table := datatable.Table{ID: "coupons", BasePath: "/coupons", Columns: []datatable.Column{{Key: "code", Header: "Code"}}}
	v := table.View(datatable.Result{Rows: []datatable.Row{datatable.NewRow("1", map[string]string{"code": "HEMAT"})}, Total: 1}, datatable.Query{Page: 1, Limit: 10}, "")

	html, err := engine.RenderString("partials/datatable", map[string]any{"Table": v})
	require.NoError(t, err)
	assert.NotContains(t, html, `class="pager"`)
}

func TestRenderPageWritesContentType(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/login.html", TemplateData{Title: "Sign in", CSRFToken: "tok", Data: map[string]any{"Errors": map[string]string{}}})
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(rec.Body.String(), "<form"))
}
