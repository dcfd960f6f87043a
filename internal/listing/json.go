package listing

import (
	"log/slog"
	"net/http"

	"github.com/transitdesk/console/internal/auth"
	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/platform/httpx"
	"github.com/transitdesk/console/internal/shared"
)

type pageResponse struct {
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"totalPages"`
	Rows       []map[string]string `json:"rows"`
}

// pageJSON serves one table page as display values. The remembered table
// state is left untouched.
func (h *Handler) pageJSON(w http.ResponseWriter, r *http.Request) {
	q := datatable.ParseQuery(r, h.res.Table, h.deps.PageSize)
	res, err := h.res.Source.List(r.Context(), q)
	if err != nil {
		if backend.IsUnauthorized(err) {
			auth.Expire(shared.SessionFromContext(r.Context()))
		}
		h.deps.Logger.Warn("table page json", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pager := shared.NewPagination(q.Page, q.Limit, res.Total)
	rows := make([]map[string]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		out := map[string]string{"id": row.ID()}
		for _, key := range row.Keys() {
			out[key] = row.Value(key)
		}
		rows = append(rows, out)
	}
	httpx.JSON(w, http.StatusOK, pageResponse{
		Page:       pager.Page,
		Limit:      pager.PerPage,
		Total:      pager.Total,
		TotalPages: pager.TotalPages,
		Rows:       rows,
	})
}
