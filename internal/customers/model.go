package customers

import (
	"strings"
	"time"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/shared"
)

// Entity is the real-time entity name of customer events.
const Entity = "customer"

// Customer is a rider or guest account. Older services send a single name,
// newer ones split it.
type Customer struct {
	ID            backend.ID `json:"id" validate:"required"`
	Name          string     `json:"name"`
	FirstName     string     `json:"first_name" validate:"required_without=Name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Status        string     `json:"status" validate:"required"`
	WalletBalance *float64   `json:"wallet_balance"`
	Currency      string     `json:"currency"`
	TotalBookings int        `json:"total_bookings"`
	LastBookingAt *time.Time `json:"last_booking_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// FullName prefers the split name fields.
func (c Customer) FullName() string {
	if full := strings.TrimSpace(c.FirstName + " " + c.LastName); full != "" {
		return full
	}
	return strings.TrimSpace(c.Name)
}

func (c Customer) balance() string {
	if c.WalletBalance == nil {
		return shared.Dash
	}
	return shared.FormatMoney(*c.WalletBalance, c.Currency)
}

func (c Customer) lastBooking() string {
	if c.LastBookingAt == nil {
		return "Never"
	}
	return shared.FormatDate(*c.LastBookingAt)
}

// Row reshapes the customer for the customers table.
func (c Customer) Row() datatable.Row {
	return datatable.NewRow(c.ID.String(), map[string]string{
		"name":         c.FullName(),
		"email":        shared.OrDash(c.Email),
		"phone":        shared.OrDash(c.Phone),
		"balance":      c.balance(),
		"bookings":     shared.FormatCount(c.TotalBookings),
		"last_booking": c.lastBooking(),
		"status":       c.Status,
		"joined":       shared.FormatDate(c.CreatedAt),
	})
}

// Table is the customers list definition.
var Table = datatable.Table{
	ID:       "customers",
	Title:    "Customers",
	BasePath: "/customers",
	Columns: []datatable.Column{
		{Key: "name", Header: "Name"},
		{Key: "email", Header: "Email"},
		{Key: "phone", Header: "Phone"},
		{Key: "balance", Header: "Wallet"},
		{Key: "bookings", Header: "Bookings"},
		{Key: "last_booking", Header: "Last booking"},
		datatable.StatusColumn("status", "Status"),
	},
	Filters: []datatable.Filter{
		{Key: "status", Label: "Status", Options: []datatable.Option{
			{Label: "Active", Value: "active"},
			{Label: "Pending", Value: "pending"},
			{Label: "Blocked", Value: "blocked"},
		}},
	},
	RowLink: func(row datatable.Row) string { return "/customers/" + row.ID() },
}
