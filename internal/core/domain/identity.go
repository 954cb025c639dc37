// Package domain defines the core domain models for Trainly clients.
package domain

import "time"

// PlanTier is the subscription tier attached to an identity.
type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanPro     PlanTier = "pro"
	PlanPremium PlanTier = "premium"
)

// Identity is the user record resolved by the identity service.
//
// The client treats every field as opaque data; only ID is required to
// consider the identity resolved.
type Identity struct {
	ID        string    `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Plan      PlanTier  `json:"plan,omitempty" yaml:"plan,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// DisplayName returns the name if set, falling back to the email.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

// Clone returns a deep copy so snapshots never share the pointer held by
// the session.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}
