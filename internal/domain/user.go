package domain

import "time"

// Role is the coarse permission class attached to a resolved principal.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

// Principal is the identity derived from a verified credential. It is never
// persisted; it lives for one request.
type Principal struct {
	Subject string
	Role    Role
}

// User is a stored account that can obtain tokens.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
