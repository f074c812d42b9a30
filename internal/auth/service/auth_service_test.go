package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	authzdomain "finboard/internal/authz/domain"
	"finboard/internal/security"
	sessiondomain "finboard/internal/session/domain"
	userdomain "finboard/internal/user/domain"
)

type memUserRepo struct {
	mu   sync.Mutex
	byID map[string]*userdomain.User
}

func (r *memUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if (u.Username == identifier || u.Email == identifier) && u.DeletedAt == nil {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.byID[id]
	if u == nil || u.DeletedAt != nil {
		return nil, nil
	}
	return u, nil
}

func (r *memUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u.LastLoginAt = &at
		u.LastLoginIP = ip
	}
	return nil
}

type memSessionRepo struct {
	mu sync.Mutex
	m  map[string]*sessiondomain.Session
}

func (r *memSessionRepo) GetByToken(ctx context.Context, token string) (*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.m {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) Create(ctx context.Context, s *sessiondomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s2 := *s
	r.m[s.ID] = &s2
	return nil
}

func (r *memSessionRepo) Terminate(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		s.IsActive = false
		if s.TerminatedAt == nil {
			s.TerminatedAt = &at
		}
	}
	return nil
}

func (r *memSessionRepo) UpdateLastActivity(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		s.LastActivityAt = &at
	}
	return nil
}

type staticResolver struct {
	roles map[string][]string
	perms map[string][]string
}

func (r *staticResolver) Resolve(ctx context.Context, userID string) ([]string, []string, error) {
	return r.roles[userID], r.perms[userID], nil
}

type recordingAttempts struct {
	mu    sync.Mutex
	calls []struct {
		Identifier, UserID, Reason string
		Success                    bool
	}
}

func (a *recordingAttempts) RecordLoginAttempt(ctx context.Context, identifier, userID, ip, userAgent string, success bool, reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, struct {
		Identifier, UserID, Reason string
		Success                    bool
	}{identifier, userID, reason, success})
}

func (a *recordingAttempts) last(t *testing.T) (string, bool) {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.calls) == 0 {
		t.Fatal("expected a recorded login attempt")
	}
	c := a.calls[len(a.calls)-1]
	return c.Reason, c.Success
}

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepo, *memSessionRepo, *recordingAttempts) {
	t.Helper()
	users := &memUserRepo{byID: make(map[string]*userdomain.User)}
	sessions := &memSessionRepo{m: make(map[string]*sessiondomain.Session)}
	resolver := &staticResolver{
		roles: map[string][]string{"u1": {"manager"}, "u2": {authzdomain.SuperAdminRole}},
		perms: map[string][]string{"u1": {"expenses.view", "reports.view"}},
	}
	attempts := &recordingAttempts{}
	hasher := security.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash([]byte("Password123!"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	now := time.Now().UTC()
	users.byID["u1"] = &userdomain.User{
		ID: "u1", Username: "alice", Email: "alice@example.com",
		PasswordHash: hash, Status: userdomain.UserStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}
	svc := NewAuthService(users, sessions, resolver, attempts, hasher, 8*time.Hour)
	return svc, users, sessions, attempts
}

func TestAuthService_LoginSuccess(t *testing.T) {
	svc, users, _, attempts := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "alice", "Password123!", DeviceInfo{IPAddress: "203.0.113.9", UserAgent: "go-test"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.RefreshToken == "" {
		t.Fatal("Login should return a session token pair")
	}
	if res.Token == res.RefreshToken {
		t.Error("session and refresh tokens must be independent")
	}
	if got := time.Until(res.ExpiresAt); got < 7*time.Hour || got > 9*time.Hour {
		t.Errorf("expiry should be ~8h out, got %v", got)
	}
	if res.User.ID != "u1" || res.User.Username != "alice" || res.User.RoleLabel != "manager" {
		t.Errorf("public user = %+v", res.User)
	}
	if res.User.RequiresMFA || !res.User.MFAVerified {
		t.Errorf("MFA flags = %+v, want not required and verified", res.User)
	}
	if reason, success := attempts.last(t); !success || reason != "success" {
		t.Errorf("attempt = %q/%v, want success", reason, success)
	}
	if users.byID["u1"].LastLoginAt == nil || users.byID["u1"].LastLoginIP != "203.0.113.9" {
		t.Error("last login should be stamped")
	}
}

func TestAuthService_LoginByEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	if _, err := svc.Login(context.Background(), "alice@example.com", "Password123!", DeviceInfo{}); err != nil {
		t.Fatalf("Login by email: %v", err)
	}
}

func TestAuthService_InvalidCredentialsUniformMessage(t *testing.T) {
	svc, _, _, attempts := newTestAuthService(t)
	ctx := context.Background()

	_, errWrongPassword := svc.Login(ctx, "alice", "wrong", DeviceInfo{})
	_, errUnknownUser := svc.Login(ctx, "nobody", "whatever", DeviceInfo{})

	if errWrongPassword != ErrInvalidCredentials || errUnknownUser != ErrInvalidCredentials {
		t.Fatalf("want ErrInvalidCredentials for both, got %v / %v", errWrongPassword, errUnknownUser)
	}
	if errWrongPassword.Error() != errUnknownUser.Error() {
		t.Error("messages must be byte-identical to prevent account enumeration")
	}
	// Both failures still hit the audit trail with distinct reasons.
	attempts.mu.Lock()
	defer attempts.mu.Unlock()
	if len(attempts.calls) != 2 {
		t.Fatalf("attempts = %d, want 2", len(attempts.calls))
	}
	if attempts.calls[0].Reason != "wrong_password" || attempts.calls[1].Reason != "unknown_user" {
		t.Errorf("reasons = %q, %q", attempts.calls[0].Reason, attempts.calls[1].Reason)
	}
}

func TestAuthService_LoginLockedAccount(t *testing.T) {
	svc, users, _, attempts := newTestAuthService(t)
	ctx := context.Background()

	until := time.Now().Add(time.Hour)
	users.byID["u1"].Status = userdomain.UserStatusLocked
	users.byID["u1"].LockedUntil = &until
	if _, err := svc.Login(ctx, "alice", "Password123!", DeviceInfo{}); err != ErrAccountLocked {
		t.Fatalf("locked account: want ErrAccountLocked, got %v", err)
	}
	if reason, _ := attempts.last(t); reason != "account_locked" {
		t.Errorf("reason = %q", reason)
	}

	// A lock that has expired no longer blocks login.
	past := time.Now().Add(-time.Hour)
	users.byID["u1"].LockedUntil = &past
	_, err := svc.Login(ctx, "alice", "Password123!", DeviceInfo{})
	if err != ErrAccountInactive {
		// Status is still "locked" so the account is not active.
		t.Fatalf("expired lock: want ErrAccountInactive, got %v", err)
	}
}

func TestAuthService_LoginInactiveAccount(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)
	ctx := context.Background()

	for _, status := range []userdomain.UserStatus{userdomain.UserStatusSuspended, userdomain.UserStatusInactive} {
		users.byID["u1"].Status = status
		if _, err := svc.Login(ctx, "alice", "Password123!", DeviceInfo{}); err != ErrAccountInactive {
			t.Errorf("status %s: want ErrAccountInactive, got %v", status, err)
		}
	}
}

func TestAuthService_LoginValidateRoundTrip(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "alice", "Password123!", DeviceInfo{})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	identity, err := svc.ValidateSession(ctx, res.Token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if identity == nil {
		t.Fatal("expected identity for fresh session")
	}
	if identity.UserID != res.User.ID {
		t.Errorf("identity user = %q, want %q", identity.UserID, res.User.ID)
	}
	if !identity.Can("expenses.view") {
		t.Error("resolved identity should carry granted permissions")
	}
	if identity.Can("expenses.manage") {
		t.Error("ungranted permission should be denied")
	}
}

func TestAuthService_ValidateEmptyToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	identity, err := svc.ValidateSession(context.Background(), "")
	if err != nil || identity != nil {
		t.Fatalf("empty token: want (nil, nil), got (%v, %v)", identity, err)
	}
}

func TestAuthService_ValidateExpiredSession(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService(t)
	ctx := context.Background()

	sessions.m["s1"] = &sessiondomain.Session{
		ID: "s1", Token: "expired-token", UserID: "u1",
		IsActive:  true, // active flag alone must not rescue an expired session
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	identity, err := svc.ValidateSession(ctx, "expired-token")
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if identity != nil {
		t.Error("expired session must not resolve an identity")
	}
}

func TestAuthService_ValidateMFAPendingSession(t *testing.T) {
	svc, users, sessions, _ := newTestAuthService(t)
	ctx := context.Background()

	users.byID["u1"].RequiresMFA = true
	sessions.m["s1"] = &sessiondomain.Session{
		ID: "s1", Token: "pending-token", UserID: "u1",
		IsActive: true, MFAVerified: false,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	identity, err := svc.ValidateSession(ctx, "pending-token")
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if identity != nil {
		t.Error("MFA-pending session must not resolve an identity")
	}
}

func TestAuthService_LogoutIdempotent(t *testing.T) {
	svc, _, sessions, _ := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "alice", "Password123!", DeviceInfo{})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	var sess *sessiondomain.Session
	sessions.mu.Lock()
	for _, s := range sessions.m {
		sess = s
	}
	sessions.mu.Unlock()
	if sess == nil || sess.IsActive || sess.TerminatedAt == nil {
		t.Fatalf("session should be terminated, got %+v", sess)
	}
	first := *sess.TerminatedAt

	// Logging out again succeeds and keeps the original termination stamp.
	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if !sess.TerminatedAt.Equal(first) {
		t.Error("repeat logout must not move the termination time")
	}

	if identity, _ := svc.ValidateSession(ctx, res.Token); identity != nil {
		t.Error("terminated session must not validate")
	}
}

func TestAuthService_LogoutUnknownToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	if err := svc.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("Logout unknown token: %v", err)
	}
}

func TestAuthService_CheckPermission(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	identity := &authzdomain.Identity{Roles: []string{"manager"}, Permissions: []string{"expenses.view"}}
	if !svc.CheckPermission(identity, "expenses.view") {
		t.Error("granted permission should pass")
	}
	if svc.CheckPermission(identity, "admin.settings") {
		t.Error("ungranted permission should be denied")
	}
	if svc.CheckPermission(nil, "expenses.view") {
		t.Error("nil identity is always denied")
	}

	super := &authzdomain.Identity{Roles: []string{authzdomain.SuperAdminRole}}
	if !svc.CheckPermission(super, "anything.at.all") {
		t.Error("super_admin bypasses all checks")
	}
}

func TestAuthService_MFARequiredLoginIssuesUnverifiedSession(t *testing.T) {
	svc, users, sessions, _ := newTestAuthService(t)
	ctx := context.Background()

	users.byID["u1"].RequiresMFA = true
	res, err := svc.Login(ctx, "alice", "Password123!", DeviceInfo{})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.MFAVerified {
		t.Error("session for MFA-requiring user starts unverified")
	}
	sessions.mu.Lock()
	var sess *sessiondomain.Session
	for _, s := range sessions.m {
		sess = s
	}
	sessions.mu.Unlock()
	if sess == nil || sess.MFAVerified {
		t.Error("stored session should have mfa_verified = false")
	}
}
