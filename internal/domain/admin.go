package domain

import "time"

// Admin models an administrative operator of the platform.
type Admin struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
