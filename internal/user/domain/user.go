package domain

import (
	"errors"
	"time"
)

// User is the core user entity. Credentials live on the user row; there is a
// single local identity provider.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Status       UserStatus
	// LockedUntil bounds a locked status; a lock in the past no longer blocks login.
	LockedUntil *time.Time
	// RequiresMFA marks the account as needing a second factor. Sessions created
	// for such users start with MFAVerified=false; no verification flow exists yet.
	RequiresMFA bool
	LastLoginAt *time.Time
	LastLoginIP string
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusLocked    UserStatus = "locked"
)

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}

// IsLocked reports whether the account lock is still in force at now.
// A locked status with no expiry is a permanent lock.
func (u *User) IsLocked(now time.Time) bool {
	if u.Status != UserStatusLocked {
		return false
	}
	if u.LockedUntil == nil {
		return true
	}
	return now.Before(*u.LockedUntil)
}

// FullName returns the display name composed from first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
