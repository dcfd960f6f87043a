package wallet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionRow(t *testing.T) {
	tx := Transaction{
		ID:         "tx-9",
		CustomerID: "c-1",
		Type:       "payment",
		Amount:     2500,
		Currency:   "NGN",
		Status:     "completed",
		CreatedAt:  time.Date(2026, 4, 1, 18, 30, 0, 0, time.UTC),
	}
	row := tx.Row()
	assert.Equal(t, "tx-9", row.ID())
	assert.Equal(t, "tx-9", row.Value("reference"))
	assert.Equal(t, "c-1", row.Value("customer"))
	assert.Equal(t, "Payment", row.Value("type"))
	assert.Equal(t, "-NGN 2,500.00", row.Value("amount"))
	assert.Equal(t, "—", row.Value("channel"))
	assert.Equal(t, "01 Apr 2026 18:30", row.Value("at"))

	tx.Type = "refund"
	tx.Reference = "RF-1"
	tx.CustomerName = "Amaka"
	row = tx.Row()
	assert.Equal(t, "+NGN 2,500.00", row.Value("amount"))
	assert.Equal(t, "RF-1", row.Value("reference"))
	assert.Equal(t, "Amaka", row.Value("customer"))
	assert.Equal(t, "Refund", row.Value("type"))
}
