// Package audit records login attempts. Writes are best-effort: a failed
// audit write is logged and never affects the request that triggered it.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"finboard/internal/audit/domain"
	auditrepo "finboard/internal/audit/repository"
)

// Recorder writes a single login-attempt record. Used by the auth service on
// every login path, success or failure.
type Recorder interface {
	RecordLoginAttempt(ctx context.Context, identifier, userID, ip, userAgent string, success bool, reason string)
}

// Emitter fans an attempt out to an external sink (e.g. Kafka). Optional.
type Emitter interface {
	Emit(ctx context.Context, a *domain.LoginAttempt)
}

// Logger implements Recorder using the attempt repository and an optional emitter.
type Logger struct {
	repo    auditrepo.Repository
	emitter Emitter
}

// NewLogger returns a Recorder that persists to repo and, when emitter is
// non-nil, also fans out fire-and-forget.
func NewLogger(repo auditrepo.Repository, emitter Emitter) *Logger {
	return &Logger{repo: repo, emitter: emitter}
}

// RecordLoginAttempt writes one attempt. Best-effort: errors are logged and not returned.
func (l *Logger) RecordLoginAttempt(ctx context.Context, identifier, userID, ip, userAgent string, success bool, reason string) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.LoginAttempt{
		ID:         uuid.New().String(),
		Identifier: identifier,
		UserID:     userID,
		IPAddress:  ip,
		UserAgent:  userAgent,
		Success:    success,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to record login attempt for %q: %v", identifier, err)
	}
	if l.emitter != nil {
		l.emitter.Emit(ctx, entry)
	}
}
