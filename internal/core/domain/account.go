package domain

import (
	"strings"
	"time"
)

// Role is the access tier of an account.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleManager       Role = "Manager"
	RoleUser          Role = "User"
)

// Roles lists every valid role, highest tier first.
var Roles = []Role{RoleAdministrator, RoleManager, RoleUser}

// ParseRole resolves a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// Lower returns the wire representation of the role.
func (r Role) Lower() string {
	return strings.ToLower(string(r))
}

// Account models a user account and the actor performing operations.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountChanges is a partial update. Nil fields are left untouched.
type AccountChanges struct {
	Name   *string
	Email  *string
	Role   *Role
	Active *bool
}

// IsEmpty reports whether no field is set.
func (c AccountChanges) IsEmpty() bool {
	return c.Name == nil && c.Email == nil && c.Role == nil && c.Active == nil
}

// Apply copies the set fields onto a.
func (c AccountChanges) Apply(a *Account) {
	if c.Name != nil {
		a.Name = *c.Name
	}
	if c.Email != nil {
		a.Email = *c.Email
	}
	if c.Role != nil {
		a.Role = *c.Role
	}
	if c.Active != nil {
		a.Active = *c.Active
	}
}
