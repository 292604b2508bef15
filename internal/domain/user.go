package domain

import "time"

// Role is the single role an account holds, fixed at registration.
type Role string

const (
	RoleUser Role = "USER"
	RoleTech Role = "TECH"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleTech
}

// User is the account model for requesters and technicians alike.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
