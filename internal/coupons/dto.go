package coupons

import "time"

// CreateCouponRequest is the body of POST /coupons.
type CreateCouponRequest struct {
	Code          string     `json:"code" validate:"required,alphanum,min=4,max=20"`
	DiscountType  string     `json:"discount_type" validate:"required,oneof=percent fixed"`
	DiscountValue float64    `json:"discount_value" validate:"gt=0"`
	Service       string     `json:"service,omitempty" validate:"omitempty,oneof=bus taxi bike hotel"`
	UsageLimit    *int       `json:"usage_limit,omitempty" validate:"omitempty,gte=1"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

type deactivateRequest struct {
	Status string `json:"status"`
}
