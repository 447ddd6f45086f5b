package domain

import "time"

// Role identifies which side of the care workflow a user is on.
type Role string

const (
	RolePatient   Role = "patient"
	RoleFamily    Role = "family"
	RoleCaregiver Role = "caregiver"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleFamily, RoleCaregiver:
		return true
	}
	return false
}

// Seeker reports whether the role submits service requests (patient or family).
func (r Role) Seeker() bool {
	return r == RolePatient || r == RoleFamily
}

// User models an account holder. It is replaced wholesale on login and never
// mutated while loaded into a session.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	DateOfBirth  string    `json:"dateOfBirth"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
