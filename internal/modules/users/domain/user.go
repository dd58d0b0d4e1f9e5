package domain

import (
	"strings"

	"bookshelfWs/internal/shared/normalization"
)

// Role is the access level of an account.
type Role string

const (
	RoleUser      Role = "user"
	RoleSeller    Role = "seller"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var validRoles = []Role{RoleUser, RoleSeller, RoleModerator, RoleAdmin}

// Roles lists the assignable roles.
func Roles() []Role {
	return append([]Role(nil), validRoles...)
}

// ParseRole normalizes raw and reports whether it is an assignable role.
func ParseRole(raw string) (Role, bool) {
	value := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, role := range validRoles {
		if role == value {
			return role, true
		}
	}
	return value, false
}

// User is one row of the admin users screen.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	ProfileImage string `json:"profileImage,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// NormalizeUser builds a User from a loosely typed payload. A missing role reads as user.
func NormalizeUser(raw map[string]any) (User, bool) {
	id := normalization.AsString(raw["id"])
	if id == "" {
		return User{}, false
	}
	user := User{
		ID:           id,
		Name:         normalization.AsString(raw["name"]),
		Email:        normalization.AsString(raw["email"]),
		Role:         Role(strings.ToLower(normalization.AsString(raw["role"]))),
		ProfileImage: normalization.AsString(raw["profile_image"]),
		CreatedAt:    normalization.AsString(raw["created_at"]),
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return user, true
}

// NormalizeUsers keeps the normalizable entries of records.
func NormalizeUsers(records []map[string]any) []User {
	users := make([]User, 0, len(records))
	for _, raw := range records {
		if user, ok := NormalizeUser(raw); ok {
			users = append(users, user)
		}
	}
	return users
}
