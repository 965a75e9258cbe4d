package model

// Package model contains domain models/data structures.
// No business logic here; validation lives in the service layer.

// Role is the closed set of caller roles. Authorization branches switch on it
// exhaustively; anything that does not parse is rejected upstream.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// ParseRole converts a raw role string into a Role.
// The boolean is false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	}
	return "", false
}

// UserContext is the validated caller identity supplied by the upstream
// authentication layer. This core performs no token verification itself.
type UserContext struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           Role   `json:"role"`
}

// Complete reports whether every field needed for authorization scoping is
// present. Incomplete contexts must fail closed.
func (u UserContext) Complete() bool {
	return u.UserID != "" && u.OrganizationID != "" && u.Role.Valid()
}
