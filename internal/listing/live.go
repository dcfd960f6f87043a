package listing

import (
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/debounce"
	"github.com/transitdesk/console/internal/realtime"
	"github.com/transitdesk/console/internal/shared"
)

// live streams refreshed table fragments while the page is open. Bursts of
// real-time events are coalesced by the debouncer so one quiet period yields
// a single reload.
func (h *Handler) live(w http.ResponseWriter, r *http.Request) {
	if h.deps.Hub == nil || h.res.Entity == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	ctx := r.Context()
	q := datatable.ParseQuery(r, h.res.Table, h.deps.PageSize)
	sess := shared.SessionFromContext(ctx)
	csrfToken := ""
	if h.deps.CSRF != nil && sess != nil {
		csrfToken, _ = h.deps.CSRF.EnsureToken(ctx, sess)
	}

	entity := h.res.Entity
	if entity == AnyEntity {
		entity = ""
	}
	events := h.deps.Hub.Subscribe(entity)
	defer h.deps.Hub.Unsubscribe(events)
	defer h.deps.Metrics.StreamOpened()()

	refresh := make(chan struct{}, 1)
	settle := debounce.New(h.deps.Debounce, func(realtime.Event) {
		select {
		case refresh <- struct{}{}:
		default:
		}
	})
	defer settle.Stop()

	sse := datastar.NewSSE(w, r)
	var state datatable.State
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			settle.Set(ev)
		case <-refresh:
			if err := state.Load(ctx, q, h.res.Source.List); err != nil {
				h.deps.Logger.Warn("live reload", slog.Any("error", err))
			}
			fragment, err := h.deps.Templates.RenderString("partials/datatable", map[string]any{
				"Table": state.Render(h.res.Table, q),
				"CSRF":  csrfToken,
				"Live":  true,
			})
			if err != nil {
				_ = sse.ConsoleError(err)
				continue
			}
			if err := sse.PatchElements(fragment); err != nil {
				return
			}
		}
	}
}
