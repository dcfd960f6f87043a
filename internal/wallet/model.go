package wallet

import (
	"time"

	"github.com/transitdesk/console/internal/backend"
	"github.com/transitdesk/console/internal/datatable"
	"github.com/transitdesk/console/internal/shared"
)

// Entity is the real-time entity name of wallet events.
const Entity = "wallet"

// Transaction is one wallet movement.
type Transaction struct {
	ID           backend.ID `json:"id" validate:"required"`
	Reference    string     `json:"reference"`
	CustomerID   backend.ID `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	Type         string     `json:"type" validate:"required"`
	Amount       float64    `json:"amount" validate:"gte=0"`
	Currency     string     `json:"currency"`
	Status       string     `json:"status" validate:"required"`
	Channel      string     `json:"channel"`
	Description  string     `json:"description"`
	CreatedAt    time.Time  `json:"created_at" validate:"required"`
}

var typeLabels = map[string]string{
	"topup":      "Top-up",
	"payment":    "Payment",
	"refund":     "Refund",
	"withdrawal": "Withdrawal",
	"bonus":      "Bonus",
}

// debits leave the wallet.
var debits = map[string]bool{"payment": true, "withdrawal": true}

// TypeLabel names a transaction type for display.
func TypeLabel(kind string) string {
	if label, ok := typeLabels[kind]; ok {
		return label
	}
	return shared.OrDash(kind)
}

// Signed returns the amount with a minus sign for money leaving the wallet.
func (t Transaction) Signed() string {
	text := shared.FormatMoney(t.Amount, t.Currency)
	if debits[t.Type] {
		return "-" + text
	}
	return "+" + text
}

func (t Transaction) reference() string {
	if t.Reference != "" {
		return t.Reference
	}
	return t.ID.String()
}

// Row reshapes the transaction for the wallet table.
func (t Transaction) Row() datatable.Row {
	customer := t.CustomerName
	if customer == "" {
		customer = t.CustomerID.String()
	}
	return datatable.NewRow(t.ID.String(), map[string]string{
		"reference": t.reference(),
		"customer":  shared.OrDash(customer),
		"type":      TypeLabel(t.Type),
		"amount":    t.Signed(),
		"channel":   shared.OrDash(t.Channel),
		"status":    t.Status,
		"at":        shared.FormatDateTime(t.CreatedAt),
	})
}

// Table is the wallet transactions definition.
var Table = datatable.Table{
	ID:       "wallet",
	Title:    "Wallet transactions",
	BasePath: "/wallet",
	Columns: []datatable.Column{
		{Key: "reference", Header: "Reference"},
		{Key: "customer", Header: "Customer"},
		{Key: "type", Header: "Type"},
		{Key: "amount", Header: "Amount"},
		{Key: "channel", Header: "Channel"},
		datatable.StatusColumn("status", "Status"),
		{Key: "at", Header: "Date"},
	},
	Filters: []datatable.Filter{
		{Key: "type", Label: "Type", Options: []datatable.Option{
			{Label: "Top-up", Value: "topup"},
			{Label: "Payment", Value: "payment"},
			{Label: "Refund", Value: "refund"},
			{Label: "Withdrawal", Value: "withdrawal"},
		}},
		{Key: "status", Label: "Status", Options: []datatable.Option{
			{Label: "Completed", Value: "completed"},
			{Label: "Pending", Value: "pending"},
			{Label: "Processing", Value: "processing"},
			{Label: "Failed", Value: "failed"},
		}},
	},
	RowLink: func(row datatable.Row) string { return "/wallet/" + row.ID() },
}
