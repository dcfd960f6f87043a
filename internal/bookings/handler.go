package bookings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transitdesk/console/internal/audit"
	"github.com/transitdesk/console/internal/listing"
)

// Handler serves the booking pages.
type Handler struct {
	deps    listing.Deps
	service *Service
	audit   audit.Recorder
}

// NewHandler constructs a booking Handler.
func NewHandler(deps listing.Deps, service *Service, recorder audit.Recorder) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if recorder == nil {
		recorder = audit.NewService(nil, deps.Logger)
	}
	return &Handler{deps: deps, service: service, audit: recorder}
}

// Resource describes the bookings table for the listing handler.
func (h *Handler) Resource() listing.Resource {
	return listing.Resource{Table: Table, Entity: Entity, Source: h.service}
}

// MountRoutes registers booking routes relative to /bookings.
func (h *Handler) MountRoutes(r chi.Router) {
	listing.NewHandler(h.deps, h.Resource()).MountRoutes(r)
	r.Get("/{id}", h.show)
	r.Post("/{id}/cancel", h.cancel)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	d := listing.Detail{Back: "/bookings", Heading: "Booking"}
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		listing.ShowDetail(w, r, h.deps, "Booking", d, err)
		return
	}
	row := b.Row()
	d = listing.Detail{
		Back:    "/bookings",
		Heading: "Booking " + b.Reference,
		Fields: []listing.Field{
			{Label: "Service", Value: row.Value("service")},
			{Label: "Customer", Value: row.Value("customer")},
			{Label: "Operator", Value: row.Value("operator")},
			{Label: "Route", Value: row.Value("route")},
			{Label: "Quantity", Value: row.Value("quantity")},
			{Label: "Starts", Value: row.Value("starts")},
			{Label: "Amount", Value: row.Value("amount")},
			{Label: "Payment", Value: row.Value("payment")},
			{Label: "Booked on", Value: row.Value("booked")},
		},
		Actions: Table.RowActions(row),
	}.WithStatus(b.Status)
	listing.ShowDetail(w, r, h.deps, d.Heading, d, nil)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target := "/bookings/" + id
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := CancelRequest{Reason: r.PostFormValue("reason")}
	if err := h.service.Cancel(r.Context(), id, req); err != nil {
		listing.ActionFailed(w, r, h.deps, target, err)
		return
	}
	actorID, actor := listing.Actor(r)
	if err := h.audit.Record(r.Context(), audit.Entry{
		ActorID:  actorID,
		Actor:    actor,
		Action:   "cancel",
		Entity:   Entity,
		EntityID: id,
		Detail:   req.Reason,
	}); err != nil {
		h.deps.Logger.Warn("audit booking cancel", slog.String("booking", id), slog.Any("error", err))
	}
	listing.Flash(r, "success", "Booking cancelled")
	http.Redirect(w, r, target, http.StatusSeeOther)
}
