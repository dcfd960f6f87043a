package operators

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/listcache"
	"github.com/transitdesk/console/internal/shared"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service reads and updates operators through the platform API.
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
	page, err := listcache.Fetch(ctx, s.cache, Entity, []string{params.Values().Encode()}, func(ctx context.Context) (backend.Page[Operator], error) {
		return backend.FetchPage[Operator](ctx, s.client, "/operators", "operators", params)
	})
	if err != nil {
		return datatable.Result{}, err
	}
	rows := make([]datatable.Row, 0, len(page.Data))
	for _, op := range page.Data {
		rows = append(rows, op.Row())
	}
	return datatable.Result{Rows: rows, Total: page.Total}, nil
}

// Get loads one operator.
func (s *Service) Get(ctx context.Context, id string) (Operator, error) {
	return backend.FetchItem[Operator](ctx, s.client, "/operators/"+id)
}

// SetStatus approves, rejects or blocks an operator.
func (s *Service) SetStatus(ctx context.Context, id string, change StatusChange) error {
	if err := validate.Struct(change); err != nil {
		return &shared.PublicError{Message: "Unsupported status change"}
	}
	if err := s.client.Patch(ctx, "/operators/"+id+"/status", change, nil); err != nil {
		return err
	}
	// On failure cached pages age out with the cache TTL.
	_ = s.cache.Bump(ctx, Entity)
	return nil
}
