package user

import (
	"errors"
	"strings"
)

// Role is a platform user role using the Seryvo canonical values.
type Role string

const (
	RoleClient       Role = "client"
	RoleDriver       Role = "driver"
	RoleSupportAgent Role = "support_agent"
	RoleAdmin        Role = "admin"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole normalizes (lowercases+trims) and validates a role string.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if role.Valid() {
		return role, nil
	}
	return "", ErrInvalidRole
}

// Valid reports whether role is one of the allowed role constants.
func (role Role) Valid() bool {
	switch role {
	case RoleClient, RoleDriver, RoleSupportAgent, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Role.
func (role Role) String() string {
	return string(role)
}

// Convenience helpers.
func (role Role) IsClient() bool  { return role == RoleClient }
func (role Role) IsDriver() bool  { return role == RoleDriver }
func (role Role) IsSupport() bool { return role == RoleSupportAgent }
func (role Role) IsAdmin() bool   { return role == RoleAdmin }
