package models

import "github.com/google/uuid"

const (
	StudentRole = "student"
	StaffRole   = "staff"
)

type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Roles    []string  `json:"roles"`
}

// Anonymous stands in for an unauthenticated requester.
func Anonymous() User {
	return User{ID: uuid.Nil}
}

func (u User) IsAnonymous() bool {
	return u.ID == uuid.Nil
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
