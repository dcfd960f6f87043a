package operators

// StatusChange is the body of PATCH /operators/{id}/status.
type StatusChange struct {
	Status string `json:"status" validate:"required,oneof=approved rejected blocked"`
	Reason string `json:"reason,omitempty" validate:"max=500"`
}
