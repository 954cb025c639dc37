// Package domain defines the core domain models for Trainly clients.
package domain

// Phase is the rest state of a session.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseAnonymous     Phase = "anonymous"
	PhaseAuthenticated Phase = "authenticated"
)

// SessionState is an immutable snapshot of the client session.
//
// IsLoading is a transient flag layered on top of the phase, not a phase
// of its own.
type SessionState struct {
	User          *Identity `json:"user" yaml:"user"`
	IsInitialized bool      `json:"is_initialized" yaml:"is_initialized"`
	IsLoading     bool      `json:"is_loading" yaml:"is_loading"`
	Error         string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// IsAuthenticated reports whether a resolved identity is present.
func (s SessionState) IsAuthenticated() bool {
	return s.User != nil
}

// Phase returns the rest state of the session.
func (s SessionState) Phase() Phase {
	switch {
	case !s.IsInitialized && s.User == nil:
		return PhaseUninitialized
	case s.User != nil:
		return PhaseAuthenticated
	default:
		return PhaseAnonymous
	}
}

// Clone returns a copy that does not share the identity pointer.
func (s SessionState) Clone() SessionState {
	s.User = s.User.Clone()
	return s
}
