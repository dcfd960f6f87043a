package coupons

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreateRequest(t *testing.T) {
	svc := NewService(nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	limit := 0
	past := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)

	err := svc.Validate(CreateCouponRequest{
		Code:          "no",
		DiscountType:  "percent",
		DiscountValue: 120,
		Service:       "ferry",
		UsageLimit:    &limit,
		ExpiresAt:     &past,
	})
	var fieldErrs FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, FieldErrors{
		"Code":          "Code must be at least 4 characters",
		"DiscountValue": "A percentage cannot exceed 100",
		"Service":       "Unknown service",
		"UsageLimit":    "Usage limit must be at least 1",
		"ExpiresAt":     "Expiry must be in the future",
	}, fieldErrs)

	future := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, svc.Validate(CreateCouponRequest{Code: "SPRING26", DiscountType: "fixed", DiscountValue: 500, ExpiresAt: &future}))
}

func TestCouponPresentation(t *testing.T) {
	limit := 1000
	c := Coupon{ID: "c-1", Code: "RIDE10", DiscountType: "percent", DiscountValue: 12.5, Service: "taxi", UsageLimit: &limit, UsedCount: 1500, Status: "active"}
	row := c.Row()
	assert.Equal(t, "12.5%", row.Value("discount"))
	assert.Equal(t, "Taxi", row.Value("service"))
	assert.Equal(t, "1,500 / 1,000", row.Value("usage"))
	assert.Equal(t, "Never", row.Value("expires"))

	c = Coupon{ID: "c-2", Code: "STAY", DiscountType: "fixed", DiscountValue: 2000, Currency: "NGN", UsedCount: 4}
	row = c.Row()
	assert.Equal(t, "NGN 2,000.00", row.Value("discount"))
	assert.Equal(t, "All services", row.Value("service"))
	assert.Equal(t, "4 used", row.Value("usage"))
}
