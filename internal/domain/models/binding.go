package models

// Binding is the email address an identity receives notifications on.
// At most one exists per identity.
type Binding struct {
	IdentityID string `json:"identityId"`
	Email      string `json:"email"`
}
