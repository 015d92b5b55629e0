// Package session owns the authentication token lifecycle: restore on
// startup, login/register/logout, and profile creation against the gateway.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"streamvault/gateway"
	"streamvault/models"
)

var (
	// ErrNotAuthenticated is returned by operations that require a session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrProfileLimitReached is returned by CreateProfile when the plan
	// ceiling is already reached. No gateway call is made in that case.
	ErrProfileLimitReached = errors.New("profile limit reached for plan")

	// ErrLoginInProgress is returned when a login is submitted while another
	// one is still in flight.
	ErrLoginInProgress = errors.New("login already in progress")

	// ErrAlreadyAuthenticated is returned when Login is called on an
	// authenticated session. Log out first.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
)

const (
	tokenKey       = "token"
	tokenExpiryKey = "token_expires_at"
)

// TokenStore is the persistence contract for the auth token.
type TokenStore interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
	Clear(key string) error
}

// Gateway is the slice of the gateway contract the session manager uses.
type Gateway interface {
	Login(ctx context.Context, email, password string) (gateway.Credentials, error)
	Register(ctx context.Context, reg models.Registration) error
	FetchUser(ctx context.Context, token string) (models.User, error)
	CreateProfile(ctx context.Context, token string, params models.ProfileParams) (models.Profile, error)
}

// Service is the session manager. All state transitions are serialized; the
// gateway is the only suspension point.
type Service struct {
	// mu guards every field below and is held across gateway calls so that
	// state transitions stay strictly ordered.
	mu sync.Mutex

	gw     Gateway
	tokens TokenStore
	log    *slog.Logger

	state   models.AuthState
	failure string
	token   string
	user    *models.User

	onLogout []func()
}

// NewService creates a session manager in the Anonymous state. Call Restore
// to pick up a persisted token.
func NewService(gw Gateway, tokens TokenStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		gw:     gw,
		tokens: tokens,
		log:    log,
		state:  models.AuthAnonymous,
	}
}

// OnLogout registers a hook invoked whenever the session ends, explicitly or
// through an expired token. Hooks run in registration order.
func (s *Service) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// Restore attempts to resume a persisted session. Every outcome is a
// terminal state: Authenticated on success, Anonymous (with the stale token
// cleared) on any failure. No error escapes.
func (s *Service) Restore(ctx context.Context) models.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, found, err := s.tokens.Load(tokenKey)
	if err != nil || !found || token == "" {
		if err != nil {
			s.log.Warn("token store read failed, starting anonymous", "error", err)
		}
		s.state = models.AuthAnonymous
		return s.state
	}

	if s.tokenExpired() {
		s.log.Info("persisted token expired, starting anonymous")
		s.clearTokenLocked()
		s.state = models.AuthAnonymous
		return s.state
	}

	user, err := s.gw.FetchUser(ctx, token)
	if err != nil {
		s.log.Info("session restore failed, starting anonymous", "error", err)
		s.clearTokenLocked()
		s.state = models.AuthAnonymous
		return s.state
	}

	s.token = token
	s.user = &user
	s.state = models.AuthAuthenticated
	s.failure = ""
	s.log.Info("session restored", "user", user.ID)
	return s.state
}

// Login authenticates with the gateway, persists the returned token, and
// fetches the user. On failure the state is Failed with the gateway's reason
// and nothing is persisted.
func (s *Service) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case models.AuthAuthenticating:
		return ErrLoginInProgress
	case models.AuthAuthenticated:
		return ErrAlreadyAuthenticated
	}

	s.state = models.AuthAuthenticating
	s.failure = ""

	creds, err := s.gw.Login(ctx, email, password)
	if err != nil {
		return s.failLocked(err)
	}

	if err := s.tokens.Save(tokenKey, creds.Token); err != nil {
		return s.failLocked(fmt.Errorf("persist token: %w", err))
	}
	if !creds.ExpiresAt.IsZero() {
		if err := s.tokens.Save(tokenExpiryKey, creds.ExpiresAt.UTC().Format(time.RFC3339)); err != nil {
			s.log.Warn("persist token expiry failed", "error", err)
		}
	}

	user, err := s.gw.FetchUser(ctx, creds.Token)
	if err != nil {
		s.clearTokenLocked()
		return s.failLocked(fmt.Errorf("fetch user: %w", err))
	}

	s.token = creds.Token
	s.user = &user
	s.state = models.AuthAuthenticated
	s.log.Info("logged in", "user", user.ID)
	return nil
}

// Register creates an account. It is stateless relative to the session; the
// caller still logs in afterwards.
func (s *Service) Register(ctx context.Context, reg models.Registration) error {
	if err := s.gw.Register(ctx, reg); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout ends the session: token cleared from memory and persistence, user
// dropped, state Anonymous, logout hooks run. Callable from any state.
func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked()
}

// CreateProfile creates a profile for the authenticated user. The plan
// ceiling is checked before any gateway call; on success the user is
// refetched so the profile list is the server's canonical one.
func (s *Service) CreateProfile(ctx context.Context, params models.ProfileParams) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.AuthAuthenticated || s.user == nil {
		return models.Profile{}, ErrNotAuthenticated
	}
	if !s.user.CanCreateProfile() {
		return models.Profile{}, ErrProfileLimitReached
	}

	profile, err := s.gw.CreateProfile(ctx, s.token, params)
	if err != nil {
		if errors.Is(err, gateway.ErrSessionExpired) {
			s.logoutLocked()
		}
		return models.Profile{}, fmt.Errorf("create profile: %w", err)
	}

	// The gateway assigned the profile its identity; refetch rather than
	// append so the local list cannot diverge from the server's.
	user, err := s.gw.FetchUser(ctx, s.token)
	if err != nil {
		if errors.Is(err, gateway.ErrSessionExpired) {
			s.logoutLocked()
			return models.Profile{}, fmt.Errorf("refresh user: %w", err)
		}
		s.log.Warn("user refetch after profile creation failed", "error", err)
		return profile, nil
	}
	s.user = &user

	return profile, nil
}

// HandleExpiry performs the implicit logout mandated for a SessionExpired
// discovered by any component. Safe to call repeatedly.
func (s *Service) HandleExpiry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == models.AuthAnonymous {
		return
	}
	s.log.Info("session expired, logging out")
	s.logoutLocked()
}

// Snapshot returns the current session state.
func (s *Service) Snapshot() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.Session{Token: s.token, State: s.state, FailureReason: s.failure}
	if s.user != nil {
		u := *s.user
		u.Profiles = append([]models.Profile(nil), s.user.Profiles...)
		snap.User = &u
	}
	return snap
}

// State returns the state machine position.
func (s *Service) State() models.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the authenticated user, if any.
func (s *Service) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	u := *s.user
	u.Profiles = append([]models.Profile(nil), s.user.Profiles...)
	return u, true
}

// Token returns the auth token for gateway calls, if authenticated.
func (s *Service) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.state == models.AuthAuthenticated && s.token != ""
}

func (s *Service) failLocked(err error) error {
	s.state = models.AuthFailed
	s.failure = err.Error()
	s.log.Info("login failed", "reason", s.failure)
	return fmt.Errorf("login: %w", err)
}

func (s *Service) logoutLocked() {
	s.clearTokenLocked()
	s.user = nil
	s.failure = ""
	s.state = models.AuthAnonymous
	for _, fn := range s.onLogout {
		fn()
	}
}

func (s *Service) clearTokenLocked() {
	s.token = ""
	if err := s.tokens.Clear(tokenKey); err != nil {
		s.log.Warn("clear persisted token failed", "error", err)
	}
	if err := s.tokens.Clear(tokenExpiryKey); err != nil {
		s.log.Warn("clear persisted token expiry failed", "error", err)
	}
}

// tokenExpired reports whether the persisted expiry timestamp, if any, is in
// the past. A missing or malformed timestamp means not expired.
func (s *Service) tokenExpired() bool {
	raw, found, err := s.tokens.Load(tokenExpiryKey)
	if err != nil || !found {
		return false
	}
	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return false
	}
	return time.Now().After(expiry)
}
