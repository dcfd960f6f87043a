package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/shared"
)

// Service coordinates recording and reading the audit log. A Service
// without a repository accepts records and drops them, so the console runs
// without a database.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// ErrDisabled is returned when reading the log without a database.
var ErrDisabled = &shared.PublicError{Message: "The audit log is not configured"}

// NewService constructs a Service. repo may be nil.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Enabled reports whether entries are persisted.
func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record validates and stores entry.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	if !s.Enabled() {
		s.logger.Debug("audit disabled, entry dropped", slog.String("action", entry.Action), slog.String("entity", entry.Entity))
		return nil
	}
	if entry.At.IsZero() {
		entry.At = s.now().UTC()
	}
	return s.repo.Insert(ctx, entry)
}

// List implements listing.Source for the audit table. Search matches the
// actor; the entity and action filters match exactly.
func (s *Service) List(ctx context.Context, q datatable.Query) (datatable.Result, error) {
	if !s.Enabled() {
		return datatable.Result{}, ErrDisabled
	}
	limit := q.Limit
	if limit <= 0 {
		limit = shared.DefaultPerPage
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	entries, total, err := s.repo.Page(ctx, Filters{
		Actor:  q.Search,
		Entity: q.Filters["entity"],
		Action: q.Filters["action"],
		Offset: shared.PageOffset(page, limit),
		Limit:  limit,
	})
	if err != nil {
		return datatable.Result{}, err
	}
	rows := make([]datatable.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e.Row())
	}
	return datatable.Result{Rows: rows, Total: total}, nil
}

// Row reshapes an entry for the audit table.
func (e Entry) Row() datatable.Row {
	actor := e.Actor
	if actor == "" {
		actor = e.ActorID
	}
	return datatable.NewRow(
		e.Entity+":"+e.EntityID+":"+e.At.Format(time.RFC3339Nano),
		map[string]string{
			"at":        shared.FormatDateTime(e.At),
			"actor":     shared.OrDash(actor),
			"action":    e.Action,
			"entity":    e.Entity,
			"entity_id": e.EntityID,
			"detail":    shared.OrDash(e.Detail),
		},
	)
}

// Table is the audit log definition.
var Table = datatable.Table{
	ID:       "audit",
	Title:    "Audit log",
	BasePath: "/audit",
	Columns: []datatable.Column{
		{Key: "at", Header: "When"},
		{Key: "actor", Header: "Admin"},
		{Key: "action", Header: "Action"},
		{Key: "entity", Header: "Entity"},
		{Key: "entity_id", Header: "Reference"},
		{Key: "detail", Header: "Detail"},
	},
	Filters: []datatable.Filter{
		{Key: "entity", Label: "Entity", Options: []datatable.Option{
			{Label: "Operators", Value: "operator"},
			{Label: "Coupons", Value: "coupon"},
			{Label: "Bookings", Value: "booking"},
		}},
		{Key: "action", Label: "Action", Options: []datatable.Option{
			{Label: "Status change", Value: "status_change"},
			{Label: "Create", Value: "create"},
			{Label: "Deactivate", Value: "deactivate"},
			{Label: "Cancel", Value: "cancel"},
		}},
	},
}
