package audit

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
)

type stubRepo struct {
	inserted []Entry
	entries  []Entry
	total    int
	last     Filters
	err      error
}

func (s *stubRepo) Insert(_ context.Context, entry Entry) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, entry)
	return nil
}

func (s *stubRepo) Page(_ context.Context, filters Filters) ([]Entry, int, error) {
	s.last = filters
	return s.entries, s.total, s.err
}

func TestRecordStampsTimeAndValidates(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	err := svc.Record(context.Background(), Entry{Action: "status_change", Entity: "operator"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Empty(t, repo.inserted)

	require.NoError(t, svc.Record(context.Background(), Entry{Actor: "Ada", Action: "status_change", Entity: "operator", EntityID: "op-1", Detail: "approved"}))
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), repo.inserted[0].At)
}

func TestRecordWithoutRepositoryIsDropped(t *testing.T) {
	svc := NewService(nil, nil)
	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.Record(context.Background(), Entry{Action: "create", Entity: "coupon", EntityID: "c-1"}))

	_, err := svc.List(context.Background(), datatable.Query{Page: 1, Limit: 10})
	require.Error(t, err)
	assert.Equal(t, "The audit log is not configured", backend.Message(err))
}

func TestListTranslatesQueryToWindow(t *testing.T) {
	at := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	repo := &stubRepo{
		entries: []Entry{{At: at, ActorID: "a-7", Action: "deactivate", Entity: "coupon", EntityID: "c-9"}},
		total:   31,
	}
	svc := NewService(repo, nil)

	res, err := svc.List(context.Background(), datatable.Query{
		Page:    3,
		Limit:   10,
		Search:  "ada",
		Filters: map[string]string{"entity": "coupon"},
	})
	require.NoError(t, err)
	assert.Equal(t, Filters{Actor: "ada", Entity: "coupon", Offset: 20, Limit: 10}, repo.last)
	assert.Equal(t, 31, res.Total)
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	assert.Equal(t, "a-7", row.Value("actor"))
	assert.Equal(t, "01 Feb 2026 09:30", row.Value("at"))
	assert.Equal(t, "—", row.Value("detail"))
}

func TestListHugePageKeepsOffsetPositive(t *testing.T) {
	repo := &stubRepo{total: 3}
	svc := NewService(repo, nil)

	_, err := svc.List(context.Background(), datatable.Query{Page: 92233720368547760, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, repo.last.Offset)
	assert.Equal(t, 100, repo.last.Limit)
}

func TestListPropagatesRepositoryErrors(t *testing.T) {
	svc := NewService(&stubRepo{err: errors.New("db down")}, nil)
	_, err := svc.List(context.Background(), datatable.Query{Page: 1, Limit: 5})
	assert.EqualError(t, err, "db down")
}

func TestFiltersClauseNumbersPlaceholders(t *testing.T) {
	where, args := Filters{Actor: " ada ", Action: "create"}.clause()
	assert.Equal(t, " WHERE actor ILIKE '%' || $1 || '%' AND action = $2", where)
	assert.Equal(t, []any{"ada", "create"}, args)

	where, args = Filters{}.clause()
	assert.Empty(t, where)
	assert.Nil(t, args)
}
