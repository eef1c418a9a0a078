package domain

import "time"

// Role enumerates the account roles that gate API capabilities.
type Role string

const (
	RoleWarehouseManager Role = "WarehouseManager"
	RoleHR               Role = "HR"
	RoleEmployee         Role = "Employee"
	RoleAdmin            Role = "Admin"
)

// Roles lists every known role.
var Roles = []Role{RoleWarehouseManager, RoleHR, RoleEmployee, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User is the domain model for an account holder.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the subset of a user carried in access tokens and cached by clients.
type Identity struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Identity projects the user onto its token-facing identity.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role}
}
