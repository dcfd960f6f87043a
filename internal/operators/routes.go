package operators

import (
	"github.com/go-chi/chi/v5"

	"github.com/transitdesk/console/internal/listing"
)

// MountRoutes registers operator routes relative to /operators.
func (h *Handler) MountRoutes(r chi.Router) {
	listing.NewHandler(h.deps, h.Resource()).MountRoutes(r)
	r.Get("/{id}", h.show)
	r.Post("/{id}/status", h.changeStatus)
}
