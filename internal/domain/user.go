package domain

import "time"

// User is the domain model for all account holders: managers, support
// agents and end-users alike, distinguished only by Role.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
