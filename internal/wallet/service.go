package wallet

import (
	"context"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/listcache"
)

// Service reads wallet transactions through the platform API.
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
	page, err := listcache.Fetch(ctx, s.cache, Entity, []string{params.Values().Encode()}, func(ctx context.Context) (backend.Page[Transaction], error) {
		return backend.FetchPage[Transaction](ctx, s.client, "/wallet/transactions", "transactions", params)
	})
	if err != nil {
		return datatable.Result{}, err
	}
	rows := make([]datatable.Row, 0, len(page.Data))
	for _, tx := range page.Data {
		rows = append(rows, tx.Row())
	}
	return datatable.Result{Rows: rows, Total: page.Total}, nil
}

// Get loads one transaction.
func (s *Service) Get(ctx context.Context, id string) (Transaction, error) {
	return backend.FetchItem[Transaction](ctx, s.client, "/wallet/transactions/"+id)
}
