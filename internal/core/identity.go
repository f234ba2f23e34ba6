package core

import "strings"

type (
	Role string

	AuthStatus int

	// User is the authenticated identity supplied by the identity provider.
	User struct {
		ID        string
		FirstName string
		Username  string
		Role      Role
	}

	// Identity is the tri-state the dashboard consumes from the identity provider.
	Identity struct {
		Status AuthStatus
		User   User
	}
)

const RoleAdmin Role = "admin"

const (
	AuthLoading AuthStatus = iota
	AuthSignedOut
	AuthSignedIn
)

func (s AuthStatus) String() string {
	switch s {
	case AuthLoading:
		return "loading"
	case AuthSignedOut:
		return "signed-out"
	case AuthSignedIn:
		return "signed-in"
	default:
		return "unknown"
	}
}

// SignedIn returns the signed-in identity for u.
func SignedIn(u User) Identity {
	return Identity{Status: AuthSignedIn, User: u}
}

// SignedOut returns the signed-out identity.
func SignedOut() Identity {
	return Identity{Status: AuthSignedOut}
}

func (i Identity) IsSignedIn() bool {
	return i.Status == AuthSignedIn && strings.TrimSpace(i.User.ID) != ""
}

// IsAdmin is the sole authorization predicate of the dashboard.
func (i Identity) IsAdmin() bool {
	return i.IsSignedIn() && i.User.Role == RoleAdmin
}

// DisplayName is the name snapshotted onto new records.
func (u User) DisplayName() string {
	if n := strings.TrimSpace(u.Username); n != "" {
		return n
	}
	if n := strings.TrimSpace(u.FirstName); n != "" {
		return n
	}
	return "Unknown"
}
