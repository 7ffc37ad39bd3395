package session

import "fmt"

// Flag is the tri-state authentication status of the client.
type Flag int

const (
	// FlagUnknown holds only until Initialize has read storage.
	FlagUnknown Flag = iota
	FlagAuthenticated
	FlagUnauthenticated
)

func (f Flag) String() string {
	switch f {
	case FlagAuthenticated:
		return "authenticated"
	case FlagUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Role tags which workflow the authenticated party belongs to. It drives
// routing only; the backend enforces authorization.
type Role string

const (
	RoleNone       Role = ""
	RoleCustomer   Role = "customer"
	RoleRestaurant Role = "restaurant"
)

// ParseRole validates a persisted or submitted role tag.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleRestaurant:
		return r, nil
	default:
		return RoleNone, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	return string(r)
}

// State is the snapshot consumers read.
type State struct {
	Flag Flag
	Role Role
}

// Authenticated reports whether the flag is FlagAuthenticated.
func (s State) Authenticated() bool {
	return s.Flag == FlagAuthenticated
}
