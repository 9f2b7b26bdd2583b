package models

import "time"

// RoleAdmin is the only role the service knows about.
const RoleAdmin = "admin"

// Admin represents an administrator account.
type Admin struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose this to the client
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	Photo        string `json:"photo,omitempty"`
	// Enabled and Removed are persisted but no operation reads them yet.
	Enabled    bool  `json:"enabled"`
	Removed    bool  `json:"removed"`
	IsLoggedIn *bool `json:"isLoggedIn,omitempty"` // nil until the first login
	// SessionExpiresAt is the expiry of the most recently issued token.
	SessionExpiresAt *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// LoggedIn reports whether the single-session flag is set.
func (a Admin) LoggedIn() bool {
	return a.IsLoggedIn != nil && *a.IsLoggedIn
}
