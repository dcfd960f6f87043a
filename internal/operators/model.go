package operators

import (
	"strconv"
	"time"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/shared"
)

// Entity is the real-time entity name of operator events.
const Entity = "operator"

// Operator is a bus, taxi, bike or hotel operator as the platform returns it.
type Operator struct {
	ID        backend.ID `json:"id" validate:"required"`
	Name      string     `json:"name" validate:"required"`
	Kind      string     `json:"kind" validate:"required"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	City      string     `json:"city"`
	Status    string     `json:"status" validate:"required"`
	FleetSize *int       `json:"fleet_size"`
	Rating    *float64   `json:"rating"`
	CreatedAt time.Time  `json:"created_at"`
}

var kindLabels = map[string]string{
	"bus":   "Bus",
	"taxi":  "Taxi",
	"bike":  "Bike",
	"hotel": "Hotel",
}

// KindLabel names an operator kind for display.
func KindLabel(kind string) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return shared.OrDash(kind)
}

func (o Operator) contact() string {
	if o.Email != "" {
		return o.Email
	}
	return shared.OrDash(o.Phone)
}

func (o Operator) fleet() string {
	if o.FleetSize == nil {
		return shared.Dash
	}
	if o.Kind == "hotel" {
		return strconv.Itoa(*o.FleetSize) + " rooms"
	}
	return strconv.Itoa(*o.FleetSize) + " vehicles"
}

func (o Operator) rating() string {
	if o.Rating == nil {
		return shared.Dash
	}
	return strconv.FormatFloat(*o.Rating, 'f', 1, 64) + " / 5"
}

// Row reshapes the operator for the operators table.
func (o Operator) Row() datatable.Row {
	return datatable.NewRow(o.ID.String(), map[string]string{
		"name":    o.Name,
		"kind":    KindLabel(o.Kind),
		"contact": o.contact(),
		"city":    shared.OrDash(o.City),
		"fleet":   o.fleet(),
		"rating":  o.rating(),
		"status":  o.Status,
		"joined":  shared.FormatDate(o.CreatedAt),
	})
}
