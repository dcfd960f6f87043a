package bookings

// CancelRequest is the body of POST /bookings/{id}/cancel.
type CancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
