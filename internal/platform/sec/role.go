// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access, including user administration
	RoleAdmin UserRole = "admin"

	// Can remove reviews and comments posted by other members
	RoleModerator UserRole = "moderator"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// Valid reports whether r is one of the three recognized roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// RoleNames returns the permitted role values for validation messages.
func RoleNames() []string {
	return []string{string(RoleUser), string(RoleModerator), string(RoleAdmin)}
}
