package coupons

import (
	"strconv"
	"time"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/shared"
	"github.com/transitdesk/console/internal/status"
)

// Entity is the real-time entity name of coupon events.
const Entity = "coupon"

// Coupon is a discount code redeemable on one service or all of them.
type Coupon struct {
	ID            backend.ID `json:"id" validate:"required"`
	Code          string     `json:"code" validate:"required"`
	DiscountType  string     `json:"discount_type" validate:"required,oneof=percent fixed"`
	DiscountValue float64    `json:"discount_value" validate:"gte=0"`
	Currency      string     `json:"currency"`
	Service       string     `json:"service"`
	UsageLimit    *int       `json:"usage_limit"`
	UsedCount     int        `json:"used_count"`
	Status        string     `json:"status" validate:"required"`
	ExpiresAt     *time.Time `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Services a coupon can be restricted to.
var Services = []datatable.Option{
	{Label: "Bus", Value: "bus"},
	{Label: "Taxi", Value: "taxi"},
	{Label: "Bike", Value: "bike"},
	{Label: "Hotel", Value: "hotel"},
}

func serviceLabel(service string) string {
	for _, opt := range Services {
		if opt.Value == service {
			return opt.Label
		}
	}
	if service == "" {
		return "All services"
	}
	return service
}

// Discount renders the discount as "15%" or an amount.
func (c Coupon) Discount() string {
	if c.DiscountType == "percent" {
		return strconv.FormatFloat(c.DiscountValue, 'f', -1, 64) + "%"
	}
	return shared.FormatMoney(c.DiscountValue, c.Currency)
}

// Usage renders redemptions against the limit.
func (c Coupon) Usage() string {
	if c.UsageLimit == nil || *c.UsageLimit == 0 {
		return shared.FormatCount(c.UsedCount) + " used"
	}
	return shared.FormatCount(c.UsedCount) + " / " + shared.FormatCount(*c.UsageLimit)
}

func (c Coupon) expires() string {
	if c.ExpiresAt == nil {
		return "Never"
	}
	return shared.FormatDate(*c.ExpiresAt)
}

// Row reshapes the coupon for the coupons table.
func (c Coupon) Row() datatable.Row {
	return datatable.NewRow(c.ID.String(), map[string]string{
		"code":     c.Code,
		"discount": c.Discount(),
		"service":  serviceLabel(c.Service),
		"usage":    c.Usage(),
		"expires":  c.expires(),
		"status":   c.Status,
	})
}

// Actions offered for a coupon.
var Actions = []datatable.Action{
	{
		Label:   "Deactivate",
		Path:    func(row datatable.Row) string { return "/coupons/" + row.ID() + "/deactivate" },
		Confirm: "Deactivate this coupon? Customers will no longer be able to redeem it.",
		Visible: func(row datatable.Row) bool { return status.Classify(row.Value("status")) == status.Positive },
	},
}

// Table is the coupons list definition.
var Table = datatable.Table{
	ID:       "coupons",
	Title:    "Coupons",
	BasePath: "/coupons",
	Columns: []datatable.Column{
		{Key: "code", Header: "Code"},
		{Key: "discount", Header: "Discount"},
		{Key: "service", Header: "Service"},
		{Key: "usage", Header: "Usage"},
		{Key: "expires", Header: "Expires"},
		datatable.StatusColumn("status", "Status"),
	},
	Filters: []datatable.Filter{
		{Key: "status", Label: "Status", Options: []datatable.Option{
			{Label: "Active", Value: "active"},
			{Label: "Inactive", Value: "inactive"},
			{Label: "Expired", Value: "expired"},
		}},
		{Key: "service", Label: "Service", Options: Services},
	},
	RowLink: func(row datatable.Row) string { return "/coupons/" + row.ID() },
	Actions: Actions,
}
