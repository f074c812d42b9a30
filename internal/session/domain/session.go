package domain

import "time"

// Session binds an opaque bearer token to a user for a bounded window.
// Sessions are terminated logically (IsActive + TerminatedAt); rows are never
// deleted by this service — cleanup is an external concern.
type Session struct {
	ID           string
	Token        string
	RefreshToken string
	UserID       string
	IPAddress    string
	UserAgent    string
	DeviceInfo   string
	IsActive     bool
	// MFAVerified is set to !user.RequiresMFA at login. There is no second-factor
	// flow yet, so for MFA-requiring users it stays false and the session is unusable.
	MFAVerified    bool
	LastActivityAt *time.Time
	TerminatedAt   *time.Time
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// Usable reports whether the session authenticates requests at now:
// still active, not past expiry, and MFA-verified where the account demands it.
// Expiry is detected lazily here; nothing sweeps expired rows.
func (s *Session) Usable(now time.Time, userRequiresMFA bool) bool {
	if !s.IsActive {
		return false
	}
	if !now.Before(s.ExpiresAt) {
		return false
	}
	if userRequiresMFA && !s.MFAVerified {
		return false
	}
	return true
}
