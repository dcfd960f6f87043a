// Package audit records the actions admins take through the console and
// serves them back as a paginated log.
package audit

import (
	"context"
	"errors"
	"time"
)

// Entry is one recorded admin action.
type Entry struct {
	ID       int64
	At       time.Time
	ActorID  string
	Actor    string
	Action   string
	Entity   string
	EntityID string
	Detail   string
}

// Filters narrows a log query. Empty fields match everything.
type Filters struct {
	Actor  string
	Entity string
	Action string
	Offset int
	Limit  int
}

// Repository persists entries.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	Page(ctx context.Context, filters Filters) ([]Entry, int, error)
}

// Recorder is the write side used by action handlers.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// ErrInvalidEntry is returned when an entry lacks its action, entity or id.
var ErrInvalidEntry = errors.New("audit: entry requires action, entity and entity id")

// Validate checks the fields every entry must carry.
func (e Entry) Validate() error {
	if e.Action == "" || e.Entity == "" || e.EntityID == "" {
		return ErrInvalidEntry
	}
	return nil
}
