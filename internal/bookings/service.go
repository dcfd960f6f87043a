package bookings

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/listcache"
	"github.com/transitdesk/console/internal/shared"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service reads and cancels bookings through the platform API.
type Service struct {
	client *backend.Client
	cache  *listcache.Cache
}

// NewService constructs a Service. cache may be nil.
func NewService(client *backend.Client, cache *listcache.Cache) *Service {
	return &Service{client: client, cache: cache}
}

// List implements listing.Source.
func (s *Service) List(ctx context.Context, q datatable.Query) (datatable.Result, error) {
	params := q.Params()
	page, err := listcache.Fetch(ctx, s.cache, Entity, []string{params.Values().Encode()}, func(ctx context.Context) (backend.Page[Booking], error) {
		return backend.FetchPage[Booking](ctx, s.client, "/bookings", "bookings", params)
	})
	if err != nil {
		return datatable.Result{}, err
	}
	rows := make([]datatable.Row, 0, len(page.Data))
	for _, b := range page.Data {
		rows = append(rows, b.Row())
	}
	return datatable.Result{Rows: rows, Total: page.Total}, nil
}

// Get loads one booking.
func (s *Service) Get(ctx context.Context, id string) (Booking, error) {
	return backend.FetchItem[Booking](ctx, s.client, "/bookings/"+id)
}

// Cancel cancels a booking on the admin's behalf.
func (s *Service) Cancel(ctx context.Context, id string, req CancelRequest) error {
	req.Reason = strings.TrimSpace(req.Reason)
	if err := validate.Struct(req); err != nil {
		return &shared.PublicError{Message: "A cancellation reason is required"}
	}
	if err := s.client.Post(ctx, "/bookings/"+id+"/cancel", req, nil); err != nil {
		return err
	}
	// On failure cached pages age out with the cache TTL.
	_ = s.cache.Bump(ctx, Entity)
	return nil
}
