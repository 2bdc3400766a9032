package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and token/session payloads.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r belongs to the closed set of known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole normalizes a role string and rejects anything outside the known set.
func ParseRole(value string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(value)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q (valid options: admin, user)", value)
	}
	return r, nil
}

// RoleSet is the set of roles allowed to perform an operation.
// An empty set admits any authenticated role.
type RoleSet map[Role]struct{}

// Roles builds a RoleSet from the given roles.
func Roles(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Allows reports whether r may pass a gate guarded by this set.
func (s RoleSet) Allows(r Role) bool {
	if !r.Valid() {
		return false
	}
	if len(s) == 0 {
		return true
	}
	_, ok := s[r]
	return ok
}

// TokenKind distinguishes access tokens from refresh tokens.
// Each kind is signed with its own key pair.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Valid reports whether k is a known token kind.
func (k TokenKind) Valid() bool {
	return k == TokenKindAccess || k == TokenKindRefresh
}

func (k TokenKind) String() string { return string(k) }

// Session is the server-side record persisted for a logged-in subject.
// It is a snapshot taken at login and only proves the session is live;
// request handling always reloads the current user record.
type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	PhoneNumber string    `json:"phonenumber"`
	Role        Role      `json:"role"`
	IssuedAt    time.Time `json:"issued_at"`
}

// IsAdmin returns true if the snapshot was taken for an admin.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
