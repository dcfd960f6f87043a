package customers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transitdesk/console/internal/listing"
)

// Handler serves the customer pages.
type Handler struct {
	deps    listing.Deps
	service *Service
}

// NewHandler constructs a customer Handler.
func NewHandler(deps listing.Deps, service *Service) *Handler {
	return &Handler{deps: deps, service: service}
}

// Resource describes the customers table for the listing handler.
func (h *Handler) Resource() listing.Resource {
	return listing.Resource{
		Table:  Table,
		Entity: Entity,
		Source: h.service,
		Links:  []listing.Link{{Label: "Wallet activity", Href: "/wallet"}},
	}
}

// MountRoutes registers customer routes relative to /customers.
func (h *Handler) MountRoutes(r chi.Router) {
	listing.NewHandler(h.deps, h.Resource()).MountRoutes(r)
	r.Get("/{id}", h.show)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	d := listing.Detail{Back: "/customers", Heading: "Customer"}
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		listing.ShowDetail(w, r, h.deps, "Customer", d, err)
		return
	}
	row := c.Row()
	d = listing.Detail{
		Back:    "/customers",
		Heading: c.FullName(),
		Fields: []listing.Field{
			{Label: "ID", Value: c.ID.String()},
			{Label: "Email", Value: row.Value("email")},
			{Label: "Phone", Value: row.Value("phone")},
			{Label: "Wallet balance", Value: row.Value("balance")},
			{Label: "Bookings", Value: row.Value("bookings")},
			{Label: "Last booking", Value: row.Value("last_booking")},
			{Label: "Joined", Value: row.Value("joined")},
		},
	}.WithStatus(c.Status)
	listing.ShowDetail(w, r, h.deps, c.FullName(), d, nil)
}
