package models

import "github.com/google/uuid"

const (
	StudentRole = "student"
	AdminRole   = "admin"
)

// Principal is the caller identified by a verified access token.
type Principal struct {
	UserID uuid.UUID
	Roles  []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(AdminRole)
}
