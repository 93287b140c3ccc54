package domain

import "time"

// UserStatus represents lifecycle states for an end-user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// DeletionRequestStatus tracks an account-deletion request attached to a user.
type DeletionRequestStatus string

const (
	DeletionRequestNone     DeletionRequestStatus = "NONE"
	DeletionRequestPending  DeletionRequestStatus = "PENDING"
	DeletionRequestApproved DeletionRequestStatus = "APPROVED"
	DeletionRequestRejected DeletionRequestStatus = "REJECTED"
)

// User is the domain model for end-users (parents/guardians) of the platform.
type User struct {
	ID             string
	FullName       string
	Email          string
	Phone          string
	PasswordHash   string
	Status         UserStatus
	DeletionStatus DeletionRequestStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PendingDeletion reports whether the account carries an active deletion
// request. Tokens issued for such accounts are downgraded to read-only.
func (u *User) PendingDeletion() bool {
	return u.DeletionStatus == DeletionRequestPending || u.DeletionStatus == DeletionRequestApproved
}
