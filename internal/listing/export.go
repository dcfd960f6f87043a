package listing

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/export"
)

// collect walks backend pages for the current search and filters, at
// MaxLimit rows per page, until the total is reached or MaxExportPages.
func (h *Handler) collect(r *http.Request) ([]datatable.View, error) {
	q := datatable.ParseQuery(r, h.res.Table, datatable.MaxLimit)
	q.Limit = datatable.MaxLimit
	var views []datatable.View
	for page := 1; page <= h.deps.MaxExportPages; page++ {
		q.Page = page
		res, err := h.res.Source.List(r.Context(), q)
		if err != nil {
			return nil, err
		}
		v := h.res.Table.View(res, q, "")
		views = append(views, v)
		if len(res.Rows) == 0 || page >= v.Pager.TotalPages {
			break
		}
	}
	return views, nil
}

func (h *Handler) filename(ext string) string {
	return fmt.Sprintf("%s-%s.%s", h.res.Table.ID, time.Now().UTC().Format("20060102-1504"), ext)
}

func (h *Handler) exportFailed(w http.ResponseWriter, r *http.Request, err error) {
	if backend.IsUnauthorized(err) {
		SignOut(w, r)
		return
	}
	h.deps.Logger.Error("export table", slog.Any("error", err))
	http.Error(w, backend.Message(err), http.StatusBadGateway)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	views, err := h.collect(r)
	if err != nil {
		h.exportFailed(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, views...); err != nil {
		h.exportFailed(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.filename("csv")+`"`)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	if h.deps.PDF == nil {
		http.Error(w, "PDF export is not configured", http.StatusServiceUnavailable)
		return
	}
	views, err := h.collect(r)
	if err != nil {
		h.exportFailed(w, r, err)
		return
	}
	pdf, err := export.PDF(r.Context(), h.deps.PDF, views, time.Now())
	if err != nil {
		h.exportFailed(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.filename("pdf")+`"`)
	_, _ = w.Write(pdf)
}
