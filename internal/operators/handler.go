package operators

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transitdesk/console/internal/audit"
	"github.com/transitdesk/console/internal/listing"
	"github.com/transitdesk/console/internal/shared"
)

// Handler serves the operator pages.
type Handler struct {
	deps    listing.Deps
	service *Service
	audit   audit.Recorder
}

// NewHandler constructs an operator Handler.
func NewHandler(deps listing.Deps, service *Service, recorder audit.Recorder) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if recorder == nil {
		recorder = audit.NewService(nil, deps.Logger)
	}
	return &Handler{deps: deps, service: service, audit: recorder}
}

// Resource describes the operators table for the listing handler.
func (h *Handler) Resource() listing.Resource {
	return listing.Resource{Table: Table, Entity: Entity, Source: h.service}
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d := listing.Detail{Back: "/operators", Heading: "Operator"}
	op, err := h.service.Get(r.Context(), id)
	if err != nil {
		listing.ShowDetail(w, r, h.deps, "Operator", d, err)
		return
	}
	row := op.Row()
	d = listing.Detail{
		Back:    "/operators",
		Heading: op.Name,
		Fields: []listing.Field{
			{Label: "ID", Value: op.ID.String()},
			{Label: "Type", Value: row.Value("kind")},
			{Label: "Email", Value: shared.OrDash(op.Email)},
			{Label: "Phone", Value: shared.OrDash(op.Phone)},
			{Label: "City", Value: row.Value("city")},
			{Label: "Capacity", Value: row.Value("fleet")},
			{Label: "Rating", Value: row.Value("rating")},
			{Label: "Joined", Value: row.Value("joined")},
		},
		Actions: Table.RowActions(row),
	}.WithStatus(op.Status)
	listing.ShowDetail(w, r, h.deps, op.Name, d, nil)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target := "/operators/" + id
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	change := StatusChange{Status: r.PostFormValue("status"), Reason: r.PostFormValue("reason")}
	if err := h.service.SetStatus(r.Context(), id, change); err != nil {
		listing.ActionFailed(w, r, h.deps, target, err)
		return
	}
	actorID, actor := listing.Actor(r)
	if err := h.audit.Record(r.Context(), audit.Entry{
		ActorID:  actorID,
		Actor:    actor,
		Action:   "status_change",
		Entity:   Entity,
		EntityID: id,
		Detail:   "status set to " + change.Status,
	}); err != nil {
		h.deps.Logger.Warn("audit status change", slog.String("operator", id), slog.Any("error", err))
	}
	listing.Flash(r, "success", "Operator "+change.Status)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
