package bookings

import (
	"strings"
	"time"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/shared"
	"github.com/transitdesk/console/internal/status"
)

// Entity is the real-time entity name of booking events.
const Entity = "booking"

// Booking is a trip or a hotel stay.
type Booking struct {
	ID            backend.ID `json:"id" validate:"required"`
	Reference     string     `json:"reference" validate:"required"`
	Service       string     `json:"service" validate:"required"`
	CustomerName  string     `json:"customer_name"`
	OperatorName  string     `json:"operator_name"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	Seats         int        `json:"seats"`
	Nights        int        `json:"nights"`
	Amount        float64    `json:"amount" validate:"gte=0"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status" validate:"required"`
	PaymentStatus string     `json:"payment_status"`
	StartsAt      *time.Time `json:"starts_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Statuses are the booking lifecycle states offered as filters.
var Statuses = []datatable.Option{
	{Label: "Booked", Value: "booked"},
	{Label: "Confirmed", Value: "confirmed"},
	{Label: "Upcoming", Value: "upcoming"},
	{Label: "In progress", Value: "in progress"},
	{Label: "Completed", Value: "completed"},
	{Label: "Cancelled", Value: "cancelled"},
}

var serviceLabels = map[string]string{
	"bus":   "Bus",
	"taxi":  "Taxi",
	"bike":  "Bike",
	"hotel": "Hotel",
}

// Route describes where the booking goes: origin to destination for trips,
// the property for hotel stays.
func (b Booking) Route() string {
	switch {
	case b.Service == "hotel":
		return shared.OrDash(b.Destination)
	case b.Origin != "" && b.Destination != "":
		return b.Origin + " → " + b.Destination
	default:
		return shared.OrDash(b.Origin + b.Destination)
	}
}

func (b Booking) quantity() string {
	if b.Service == "hotel" {
		if b.Nights == 1 {
			return "1 night"
		}
		return shared.FormatCount(b.Nights) + " nights"
	}
	if b.Seats <= 1 {
		return "1 seat"
	}
	return shared.FormatCount(b.Seats) + " seats"
}

func (b Booking) starts() string {
	if b.StartsAt == nil {
		return shared.Dash
	}
	return shared.FormatDateTime(*b.StartsAt)
}

// Row reshapes the booking for the bookings table.
func (b Booking) Row() datatable.Row {
	service, ok := serviceLabels[b.Service]
	if !ok {
		service = b.Service
	}
	return datatable.NewRow(b.ID.String(), map[string]string{
		"reference": b.Reference,
		"service":   service,
		"customer":  shared.OrDash(b.CustomerName),
		"operator":  shared.OrDash(b.OperatorName),
		"route":     b.Route(),
		"quantity":  b.quantity(),
		"amount":    shared.FormatMoney(b.Amount, b.Currency),
		"payment":   shared.OrDash(strings.ToLower(b.PaymentStatus)),
		"starts":    b.starts(),
		"status":    b.Status,
		"booked":    shared.FormatDate(b.CreatedAt),
	})
}

// Cancellable reports whether a booking in this state can still be cancelled.
func Cancellable(raw string) bool {
	switch status.Classify(raw) {
	case status.Pending:
		return true
	case status.Positive:
		return strings.EqualFold(strings.TrimSpace(raw), "confirmed")
	default:
		return false
	}
}

// Actions offered for a booking.
var Actions = []datatable.Action{
	{
		Label:   "Cancel",
		Path:    func(row datatable.Row) string { return "/bookings/" + row.ID() + "/cancel" },
		Name:    "reason",
		Value:   "Cancelled by an administrator",
		Confirm: "Cancel this booking? The customer is refunded to their wallet.",
		Visible: func(row datatable.Row) bool { return Cancellable(row.Value("status")) },
	},
}

// Table is the bookings list definition.
var Table = datatable.Table{
	ID:       "bookings",
	Title:    "Bookings",
	BasePath: "/bookings",
	Columns: []datatable.Column{
		{Key: "reference", Header: "Reference"},
		{Key: "service", Header: "Service"},
		{Key: "customer", Header: "Customer"},
		{Key: "operator", Header: "Operator"},
		{Key: "route", Header: "Route"},
		{Key: "starts", Header: "Starts"},
		{Key: "amount", Header: "Amount"},
		datatable.StatusColumn("payment", "Payment"),
		datatable.StatusColumn("status", "Status"),
	},
	Filters: []datatable.Filter{
		{Key: "service", Label: "Service", Options: []datatable.Option{
			{Label: "Bus", Value: "bus"},
			{Label: "Taxi", Value: "taxi"},
			{Label: "Bike", Value: "bike"},
			{Label: "Hotel", Value: "hotel"},
		}},
		{Key: "status", Label: "Status", Options: Statuses},
		{Key: "payment_status", Label: "Payment", Options: []datatable.Option{
			{Label: "Paid", Value: "paid"},
			{Label: "Pending", Value: "pending"},
			{Label: "Failed", Value: "failed"},
		}},
	},
	RowLink: func(row datatable.Row) string { return "/bookings/" + row.ID() },
	Actions: Actions,
}
