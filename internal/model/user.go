package model

import "strings"

// Role distinguishes customers, providers and administrators.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// User is an authenticated person. Providers in the reference catalog are
// users with RoleProvider.
type User struct {
	ID              string `json:"id" validate:"required"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Role            Role   `json:"role" validate:"omitempty,oneof=customer provider admin"`
	Verified        bool   `json:"verified"`
	ProfileImage    string `json:"profileImage,omitempty"`
	ServiceCategory string `json:"serviceCategory,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
