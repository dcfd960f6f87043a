package datatable

import (
	"context"
	"sync"

	"github.com/transitdesk/console/internal/backend"
)

// Fetcher loads one page of rows for a query.
type Fetcher func(ctx context.Context, q Query) (Result, error)

// Snapshot is a copy of State at one instant.
type Snapshot struct {
	Query   Query
	Result  Result
	Loading bool
	Err     string
}

// State is the loading/error/data cell of one table view.
//
// Loads are not cancelled when a newer one starts. Whichever response arrives
// last overwrites the state, even if it answers an older query.
type State struct {
	mu      sync.Mutex
	query   Query
	result  Result
	loading bool
	err     string
}

// Load runs fetch and stores its outcome. On failure the previous rows are
// kept and Err carries a user-facing message.
func (s *State) Load(ctx context.Context, q Query, fetch Fetcher) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	res, err := fetch(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = backend.Message(err)
		return err
	}
	s.query = q
	s.result = res
	s.err = ""
	return nil
}

// Snapshot returns the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Query: s.query, Result: s.result, Loading: s.loading, Err: s.err}
}

// Render composes the current state into a View of t. The view shows the
// query the rows answer, which may not be the most recently requested one.
func (s *State) Render(t Table, requested Query) View {
	snap := s.Snapshot()
	q := snap.Query
	if q.Limit == 0 {
		q = requested
	}
	v := t.View(snap.Result, q, snap.Err)
	v.Loading = snap.Loading
	return v
}
