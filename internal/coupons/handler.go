package coupons

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/transitdesk/console/internal/audit"
	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/listing"
)

// Handler serves the coupon pages.
type Handler struct {
	deps    listing.Deps
	service *Service
	audit   audit.Recorder
}

// NewHandler constructs a coupon Handler.
func NewHandler(deps listing.Deps, service *Service, recorder audit.Recorder) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if recorder == nil {
		recorder = audit.NewService(nil, deps.Logger)
	}
	return &Handler{deps: deps, service: service, audit: recorder}
}

// Resource describes the coupons table for the listing handler.
func (h *Handler) Resource() listing.Resource {
	return listing.Resource{
		Table:  Table,
		Entity: Entity,
		Source: h.service,
		Links:  []listing.Link{{Label: "New coupon", Href: "/coupons/new"}},
	}
}

// MountRoutes registers coupon routes relative to /coupons.
func (h *Handler) MountRoutes(r chi.Router) {
	listing.NewHandler(h.deps, h.Resource()).MountRoutes(r)
	r.Post("/", h.create)
	r.Get("/new", h.showForm)
	r.Get("/{id}", h.show)
	r.Post("/{id}/deactivate", h.deactivate)
}

// couponForm keeps the raw form input so it can be echoed back.
type couponForm struct {
	Code          string
	DiscountType  string
	DiscountValue string
	Service       string
	UsageLimit    string
	ExpiresAt     string
}

type formPageData struct {
	Form     couponForm
	Errors   map[string]string
	Services []datatable.Option
}

func (f couponForm) request() (CreateCouponRequest, FieldErrors) {
	errs := FieldErrors{}
	req := CreateCouponRequest{
		Code:         strings.ToUpper(strings.TrimSpace(f.Code)),
		DiscountType: f.DiscountType,
		Service:      f.Service,
	}
	if value, err := strconv.ParseFloat(strings.TrimSpace(f.DiscountValue), 64); err == nil {
		req.DiscountValue = value
	} else {
		errs["DiscountValue"] = "Enter a number"
	}
	if raw := strings.TrimSpace(f.UsageLimit); raw != "" && raw != "0" {
		if n, err := strconv.Atoi(raw); err == nil {
			req.UsageLimit = &n
		} else {
			errs["UsageLimit"] = "Enter a whole number"
		}
	}
	if raw := strings.TrimSpace(f.ExpiresAt); raw != "" {
		if day, err := time.Parse("2006-01-02", raw); err == nil {
			end := day.Add(24*time.Hour - time.Second)
			req.ExpiresAt = &end
		} else {
			errs["ExpiresAt"] = "Enter a valid date"
		}
	}
	return req, errs
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	data := formPageData{Form: couponForm{DiscountType: "percent"}, Errors: map[string]string{}, Services: Services}
	listing.Render(w, r, h.deps, "pages/coupon_form.html", "New coupon", data, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := couponForm{
		Code:          r.PostFormValue("code"),
		DiscountType:  r.PostFormValue("discount_type"),
		DiscountValue: r.PostFormValue("discount_value"),
		Service:       r.PostFormValue("service"),
		UsageLimit:    r.PostFormValue("usage_limit"),
		ExpiresAt:     r.PostFormValue("expires_at"),
	}
	req, errs := form.request()
	var invalid FieldErrors
	if errors.As(h.service.Validate(req), &invalid) {
		for field, msg := range invalid {
			if _, taken := errs[field]; !taken {
				errs[field] = msg
			}
		}
	}
	var created Coupon
	if len(errs) == 0 {
		var err error
		created, err = h.service.Create(r.Context(), req)
		var fieldErrs FieldErrors
		switch {
		case err == nil:
		case errors.As(err, &fieldErrs):
			errs = fieldErrs
		case backend.IsUnauthorized(err):
			listing.SignOut(w, r)
			return
		default:
			h.deps.Logger.Error("create coupon", slog.Any("error", err))
			errs["general"] = backend.Message(err)
		}
	}
	if len(errs) > 0 {
		data := formPageData{Form: form, Errors: errs, Services: Services}
		listing.Render(w, r, h.deps, "pages/coupon_form.html", "New coupon", data, http.StatusUnprocessableEntity)
		return
	}

	h.record(r, "create", created.ID.String(), "code "+created.Code)
	listing.Flash(r, "success", "Coupon "+created.Code+" created")
	http.Redirect(w, r, "/coupons/"+created.ID.String(), http.StatusSeeOther)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	d := listing.Detail{Back: "/coupons", Heading: "Coupon"}
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		listing.ShowDetail(w, r, h.deps, "Coupon", d, err)
		return
	}
	row := c.Row()
	d = listing.Detail{
		Back:    "/coupons",
		Heading: c.Code,
		Fields: []listing.Field{
			{Label: "Discount", Value: row.Value("discount")},
			{Label: "Service", Value: row.Value("service")},
			{Label: "Usage", Value: row.Value("usage")},
			{Label: "Expires", Value: row.Value("expires")},
		},
		Actions: Table.RowActions(row),
	}.WithStatus(c.Status)
	listing.ShowDetail(w, r, h.deps, "Coupon "+c.Code, d, nil)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target := "/coupons/" + id
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		listing.ActionFailed(w, r, h.deps, target, err)
		return
	}
	h.record(r, "deactivate", id, "")
	listing.Flash(r, "success", "Coupon deactivated")
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) record(r *http.Request, action, id, detail string) {
	actorID, actor := listing.Actor(r)
	err := h.audit.Record(r.Context(), audit.Entry{
		ActorID:  actorID,
		Actor:    actor,
		Action:   action,
		Entity:   Entity,
		EntityID: id,
		Detail:   detail,
	})
	if err != nil {
		h.deps.Logger.Warn("audit coupon", slog.String("action", action), slog.String("coupon", id), slog.Any("error", err))
	}
}
