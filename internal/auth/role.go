package auth

import (
	"errors"
	"strings"
)

var ErrInvalidRole = errors.New("invalid role")

// Role is the operator role. Only the two terminal roles exist.
type Role int

const (
	RoleEmployee Role = iota + 1
	RoleManager
)

func (r Role) String() string {
	switch r {
	case RoleEmployee:
		return "EMPLOYEE"
	case RoleManager:
		return "MANAGER"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager
}

// Privileged reports whether r may authorize refunds.
func (r Role) Privileged() bool {
	return r == RoleManager
}

// ParseRole accepts the role name in any case.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EMPLOYEE":
		return RoleEmployee, nil
	case "MANAGER":
		return RoleManager, nil
	}
	return 0, ErrInvalidRole
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrInvalidRole
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
