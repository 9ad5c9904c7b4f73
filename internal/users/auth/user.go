// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/okoshkin/revu/internal/platform/sec"
)

// User is the identity record backing authentication.
type User struct {
	ID          uuid.UUID    `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	Role        sec.UserRole `json:"role"`
	IsActive    bool         `json:"-"`
	IsSuperuser bool         `json:"-"`
	CreatedAt   time.Time    `json:"-"`
}

// IsAdmin reports whether the user holds administrative power. A superuser
// is an admin regardless of the stored role; an inactive account never is.
func (user *User) IsAdmin() bool {
	if !user.IsActive {
		return false
	}
	return user.Role == sec.RoleAdmin || user.IsSuperuser
}

// IsModerator reports whether the user holds the moderator role.
func (user *User) IsModerator() bool {
	return user.IsActive && user.Role == sec.RoleModerator
}

// EffectiveRole is the role folded into the access token. Superusers are
// issued the admin role so that every downstream check is a plain role
// comparison.
func (user *User) EffectiveRole() sec.UserRole {
	if user.IsSuperuser {
		return sec.RoleAdmin
	}
	return user.Role
}
