package listing

import (
	"log/slog"
	"net/http"

	"github.com/transitdesk/console/internal/auth"
	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/shared"
	"github.com/transitdesk/console/internal/status"
)

// Field is one label/value pair on a detail page.
type Field struct {
	Label string
	Value string
}

// Detail is the template model of pages/detail.html.
type Detail struct {
	Back    string
	Heading string
	Status  *status.Badge
	Error   string
	Fields  []Field
	Actions []datatable.RenderedAction
}

// WithStatus attaches a badge for raw.
func (d Detail) WithStatus(raw string) Detail {
	badge := status.BadgeFor(raw)
	d.Status = &badge
	return d
}

// ShowDetail renders a detail page, or the load error in its place. A
// rejected token signs the admin out.
func ShowDetail(w http.ResponseWriter, r *http.Request, deps Deps, title string, d Detail, err error) {
	if err == nil {
		Render(w, r, deps, "pages/detail.html", title, d, http.StatusOK)
		return
	}
	if backend.IsUnauthorized(err) {
		SignOut(w, r)
		return
	}
	code := http.StatusBadGateway
	if backend.IsNotFound(err) {
		code = http.StatusNotFound
	} else {
		deps.logger().Error("load detail", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	Render(w, r, deps, "pages/detail.html", title, Detail{Back: d.Back, Heading: title, Error: backend.Message(err)}, code)
}

// Flash queues a one-time message shown on the next page.
func Flash(r *http.Request, kind, message string) {
	shared.SessionFromContext(r.Context()).AddFlash(shared.FlashMessage{Kind: kind, Message: message})
}

// ActionFailed reports a failed POST action through a flash and sends the
// admin back to target.
func ActionFailed(w http.ResponseWriter, r *http.Request, deps Deps, target string, err error) {
	if backend.IsUnauthorized(err) {
		SignOut(w, r)
		return
	}
	deps.logger().Warn("action failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	Flash(r, "error", backend.Message(err))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Actor identifies the signed-in admin for audit entries.
func Actor(r *http.Request) (id, name string) {
	sess := shared.SessionFromContext(r.Context())
	return sess.User(), auth.AdminName(sess)
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
