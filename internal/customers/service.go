package customers

import (
	"context"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/listcache"
)

// Service reads customers through the platform API.
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
	page, err := listcache.Fetch(ctx, s.cache, Entity, []string{params.Values().Encode()}, func(ctx context.Context) (backend.Page[Customer], error) {
		return backend.FetchPage[Customer](ctx, s.client, "/customers", "customers", params)
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

// Get loads one customer.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	return backend.FetchItem[Customer](ctx, s.client, "/customers/"+id)
}
