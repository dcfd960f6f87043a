package coupons

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/listcache"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldErrors maps form fields to messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "coupon: invalid request: " + strings.Join(parts, "; ")
}

var fieldMessages = map[string]string{
	"Code.required":         "Code is required",
	"Code.alphanum":         "Use letters and digits only",
	"Code.min":              "Code must be at least 4 characters",
	"Code.max":              "Code must be at most 20 characters",
	"DiscountType.required": "Choose a discount type",
	"DiscountType.oneof":    "Choose a discount type",
	"DiscountValue.gt":      "Discount must be greater than zero",
	"Service.oneof":         "Unknown service",
	"UsageLimit.gte":        "Usage limit must be at least 1",
}

// Service reads and manages coupons through the platform API.
type Service struct {
	client *backend.Client
	cache  *listcache.Cache
	now    func() time.Time
}

// NewService constructs a Service. cache may be nil.
func NewService(client *backend.Client, cache *listcache.Cache) *Service {
	return &Service{client: client, cache: cache, now: time.Now}
}

// List implements listing.Source.
func (s *Service) List(ctx context.Context, q datatable.Query) (datatable.Result, error) {
	params := q.Params()
	page, err := listcache.Fetch(ctx, s.cache, Entity, []string{params.Values().Encode()}, func(ctx context.Context) (backend.Page[Coupon], error) {
		return backend.FetchPage[Coupon](ctx, s.client, "/coupons", "coupons", params)
	})
	if err != nil {
		return datatable.Result{}, err
	}
	rows := make([]datatable.Row, 0, len(page.Data))
	for _, c := range page.Data {
		rows = append(rows, c.Row())
	}
	return datatable.Result{Rows: rows, Total: page.Total}, nil
}

// Get loads one coupon.
func (s *Service) Get(ctx context.Context, id string) (Coupon, error) {
	return backend.FetchItem[Coupon](ctx, s.client, "/coupons/"+id)
}

// Validate checks req, returning FieldErrors keyed by struct field.
func (s *Service) Validate(req CreateCouponRequest) error {
	errs := FieldErrors{}
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
			if !ok {
				msg = fe.Error()
			}
			errs[fe.Field()] = msg
		}
	}
	if req.DiscountType == "percent" && req.DiscountValue > 100 {
		errs["DiscountValue"] = "A percentage cannot exceed 100"
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		errs["ExpiresAt"] = "Expiry must be in the future"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Create validates and submits a new coupon.
func (s *Service) Create(ctx context.Context, req CreateCouponRequest) (Coupon, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.Validate(req); err != nil {
		return Coupon{}, err
	}
	raw, err := s.client.Do(ctx, http.MethodPost, "/coupons", nil, req)
	if err != nil {
		return Coupon{}, err
	}
	created, err := backend.DecodeItem[Coupon]("/coupons", raw)
	if err != nil {
		return Coupon{}, err
	}
	s.bump(ctx)
	return created, nil
}

// Deactivate stops a coupon from being redeemed.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	if err := s.client.Patch(ctx, "/coupons/"+id, deactivateRequest{Status: "inactive"}, nil); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// bump drops cached coupon pages. On failure they age out with the cache TTL.
func (s *Service) bump(ctx context.Context) {
	_ = s.cache.Bump(ctx, Entity)
}
