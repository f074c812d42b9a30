package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	auditdomain "finboard/internal/audit/domain"
	authzdomain "finboard/internal/authz/domain"
	"finboard/internal/security"
	sessiondomain "finboard/internal/session/domain"
	userdomain "finboard/internal/user/domain"
)

// Sentinel errors for the auth service; the HTTP layer maps them to envelope codes.
var (
	// ErrInvalidCredentials covers both unknown identifier and wrong password.
	// The message is identical in both cases so responses cannot be used to
	// enumerate accounts; the audit trail keeps the distinct reason.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountInactive    = errors.New("account is not active")
)

// DeviceInfo carries per-login client metadata recorded on the session and audit trail.
type DeviceInfo struct {
	IPAddress string
	UserAgent string
	Device    string
}

// PublicUser is the client-safe view returned from Login. Never includes
// password hashes or raw stored tokens beyond the session pair being issued.
type PublicUser struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	RoleLabel   string   `json:"role"`
	Permissions []string `json:"permissions"`
	RequiresMFA bool     `json:"requires_mfa"`
	MFAVerified bool     `json:"mfa_verified"`
}

// LoginResult holds the session pair and user view issued by a successful login.
type LoginResult struct {
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
	User         PublicUser
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByIdentifier(ctx context.Context, identifier string) (*userdomain.User, error)
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time, ip string) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByToken(ctx context.Context, token string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Terminate(ctx context.Context, id string, at time.Time) error
	UpdateLastActivity(ctx context.Context, id string, at time.Time) error
}

// IdentityResolver resolves role and permission sets for a user.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (roles []string, permissions []string, err error)
}

// AttemptRecorder records login attempts; best-effort, never fails the caller.
type AttemptRecorder interface {
	RecordLoginAttempt(ctx context.Context, identifier, userID, ip, userAgent string, success bool, reason string)
}

// AuthService implements login, logout, session validation, and permission checks.
type AuthService struct {
	userRepo    UserRepo
	sessionRepo SessionRepo
	resolver    IdentityResolver
	attempts    AttemptRecorder
	hasher      *security.Hasher
	sessionTTL  time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
// attempts may be nil to disable audit recording (tests only).
func NewAuthService(
	userRepo UserRepo,
	sessionRepo SessionRepo,
	resolver IdentityResolver,
	attempts AttemptRecorder,
	hasher *security.Hasher,
	sessionTTL time.Duration,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		resolver:    resolver,
		attempts:    attempts,
		hasher:      hasher,
		sessionTTL:  sessionTTL,
	}
}

// Login authenticates identifier (username or email) and password, creates a
// session, and returns the session pair plus a public user view. Every path,
// success or failure, records one login attempt.
func (s *AuthService) Login(ctx context.Context, identifier, password string, device DeviceInfo) (*LoginResult, error) {
	if identifier == "" || password == "" {
		s.record(ctx, identifier, "", device, false, auditdomain.ReasonUnknownUser)
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.record(ctx, identifier, "", device, false, auditdomain.ReasonUnknownUser)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.record(ctx, identifier, user.ID, device, false, auditdomain.ReasonWrongPassword)
		return nil, ErrInvalidCredentials
	}
	now := time.Now().UTC()
	if user.IsLocked(now) {
		s.record(ctx, identifier, user.ID, device, false, auditdomain.ReasonAccountLocked)
		return nil, ErrAccountLocked
	}
	if user.Status != userdomain.UserStatusActive {
		s.record(ctx, identifier, user.ID, device, false, auditdomain.ReasonAccountInactive)
		return nil, ErrAccountInactive
	}

	token, err := security.NewToken()
	if err != nil {
		return nil, err
	}
	refreshToken, err := security.NewToken()
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:           uuid.New().String(),
		Token:        token,
		RefreshToken: refreshToken,
		UserID:       user.ID,
		IPAddress:    device.IPAddress,
		UserAgent:    device.UserAgent,
		DeviceInfo:   device.Device,
		IsActive:     true,
		MFAVerified:  !user.RequiresMFA,
		ExpiresAt:    now.Add(s.sessionTTL),
		CreatedAt:    now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now, device.IPAddress); err != nil {
		return nil, err
	}
	s.record(ctx, identifier, user.ID, device, true, auditdomain.ReasonSuccess)

	roles, permissions, err := s.resolver.Resolve(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	roleLabel := ""
	if len(roles) > 0 {
		roleLabel = roles[0]
	}
	return &LoginResult{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    sess.ExpiresAt,
		User: PublicUser{
			ID:          user.ID,
			Username:    user.Username,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			RoleLabel:   roleLabel,
			Permissions: permissions,
			RequiresMFA: user.RequiresMFA,
			MFAVerified: sess.MFAVerified,
		},
	}, nil
}

// ValidateSession resolves a bearer token into an Identity, or (nil, nil) when
// the token is empty, unknown, expired, terminated, or MFA-pending. Callers
// decide whether anonymous access is acceptable. Errors are store failures only.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*authzdomain.Identity, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	now := time.Now().UTC()
	if !sess.Usable(now, user.RequiresMFA) {
		return nil, nil
	}
	roles, permissions, err := s.resolver.Resolve(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	// Best-effort; stale last-activity is acceptable.
	_ = s.sessionRepo.UpdateLastActivity(ctx, sess.ID, now)
	return &authzdomain.Identity{
		UserID:      user.ID,
		Username:    user.Username,
		Status:      string(user.Status),
		Roles:       roles,
		Permissions: permissions,
		SessionID:   sess.ID,
	}, nil
}

// CheckPermission reports whether the identity may exercise the permission.
// A nil identity is always denied; super_admin bypasses all checks.
func (s *AuthService) CheckPermission(identity *authzdomain.Identity, permission string) bool {
	return identity.Can(permission)
}

// Logout terminates the session for the token. Idempotent: an unknown token
// or an already-inactive session is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sess, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	return s.sessionRepo.Terminate(ctx, sess.ID, time.Now().UTC())
}

func (s *AuthService) record(ctx context.Context, identifier, userID string, device DeviceInfo, success bool, reason string) {
	if s.attempts == nil {
		return
	}
	s.attempts.RecordLoginAttempt(ctx, identifier, userID, device.IPAddress, device.UserAgent, success, reason)
}
