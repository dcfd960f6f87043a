package wallet

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transitdesk/console/internal/listing"
	"github.com/transitdesk/console/internal/shared"
)

// Handler serves the wallet pages.
type Handler struct {
	deps    listing.Deps
	service *Service
}

// NewHandler constructs a wallet Handler.
func NewHandler(deps listing.Deps, service *Service) *Handler {
	return &Handler{deps: deps, service: service}
}

// Resource describes the wallet table for the listing handler.
func (h *Handler) Resource() listing.Resource {
	return listing.Resource{Table: Table, Entity: Entity, Source: h.service}
}

// MountRoutes registers wallet routes relative to /wallet.
func (h *Handler) MountRoutes(r chi.Router) {
	listing.NewHandler(h.deps, h.Resource()).MountRoutes(r)
	r.Get("/{id}", h.show)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	d := listing.Detail{Back: "/wallet", Heading: "Transaction"}
	tx, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		listing.ShowDetail(w, r, h.deps, "Transaction", d, err)
		return
	}
	row := tx.Row()
	customer := row.Value("customer")
	if tx.CustomerID != "" {
		customer += " (" + tx.CustomerID.String() + ")"
	}
	d = listing.Detail{
		Back:    "/wallet",
		Heading: "Transaction " + row.Value("reference"),
		Fields: []listing.Field{
			{Label: "Customer", Value: customer},
			{Label: "Type", Value: row.Value("type")},
			{Label: "Amount", Value: row.Value("amount")},
			{Label: "Channel", Value: row.Value("channel")},
			{Label: "Description", Value: shared.OrDash(tx.Description)},
			{Label: "Date", Value: row.Value("at")},
		},
	}.WithStatus(tx.Status)
	listing.ShowDetail(w, r, h.deps, d.Heading, d, nil)
}
