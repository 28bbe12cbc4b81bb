package domain

import "strings"

// Role is the caller's role as stamped by the gateway.
type Role string

const (
	RoleRider  Role = "RIDER"
	RoleDriver Role = "DRIVER"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole normalizes a role header value. Unknown values yield an empty role.
func ParseRole(s string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleRider, RoleDriver, RoleAdmin:
		return r
	}
	return ""
}

// Identity is the trusted caller context.
type Identity struct {
	UserID string
	Role   Role
}
