package domain

import (
	"strings"
	"time"
)

// Role is a permission level in the total order CUSTOMER < MANAGER < ADMIN.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	// RoleUser is the legacy name for RoleCustomer; both share one rank.
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleCustomer: 0,
	RoleUser:     0,
	RoleManager:  1,
	RoleAdmin:    2,
}

// ParseRole normalises s into a known Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := roleRank[r]
	return r, ok
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r is at least as privileged as required.
// Unknown roles never satisfy a requirement.
func (r Role) AtLeast(required Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	need, ok := roleRank[required]
	if !ok {
		return false
	}
	return have >= need
}

// User models an account of the charter site.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Phone        string     `json:"phone,omitempty"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// HasRole reports whether user holds requiredRole or a more privileged one.
func HasRole(user *User, requiredRole Role) bool {
	if user == nil {
		return false
	}
	return user.Role.AtLeast(requiredRole)
}

// RequireRole returns a predicate that checks users against requiredRole.
func RequireRole(requiredRole Role) func(*User) bool {
	return func(u *User) bool { return HasRole(u, requiredRole) }
}
