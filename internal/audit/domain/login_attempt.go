package domain

import "time"

// Outcome reasons recorded with each attempt. The uniform client-facing
// message never distinguishes these; they exist for the audit trail only.
const (
	ReasonSuccess         = "success"
	ReasonUnknownUser     = "unknown_user"
	ReasonWrongPassword   = "wrong_password"
	ReasonAccountLocked   = "account_locked"
	ReasonAccountInactive = "account_inactive"
)

// LoginAttempt is one append-only audit record. Every login path writes one,
// success or failure; nothing in this service ever reads them back.
type LoginAttempt struct {
	ID         string
	Identifier string
	UserID     string // empty when the identifier matched no account
	IPAddress  string
	UserAgent  string
	Success    bool
	Reason     string
	CreatedAt  time.Time
}
