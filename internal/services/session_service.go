package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// SessionService is the auth gate: it tracks the backend session and resets
// every other component on logout.
type SessionService struct {
	listeners

	backend  AuthBackend
	settings *SettingsService
	inbox    InboxRefresher
	logger   *log.Logger

	mu        sync.RWMutex
	session   Session
	loggingIn bool
	resets    []func(ctx context.Context)
}

// NewSessionService creates the auth gate
func NewSessionService(backend AuthBackend, settings *SettingsService, inbox InboxRefresher, logger *log.Logger) *SessionService {
	return &SessionService{
		backend:  backend,
		settings: settings,
		inbox:    inbox,
		logger:   logger,
	}
}

// OnLogout registers a hook that clears one component's state on logout
func (s *SessionService) OnLogout(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.resets = append(s.resets, fn)
	s.mu.Unlock()
}

// CheckStatus queries the backend session. A locally stored key counts as
// present whatever the backend reports. On failure the state is unchanged.
func (s *SessionService) CheckStatus(ctx context.Context) error {
	if s.backend == nil {
		return fmt.Errorf("auth backend not available")
	}
	st, err := s.backend.Status(ctx)
	if err != nil {
		logf(s.logger, "session: status check failed: %v", err)
		return fmt.Errorf("check status: %w", err)
	}

	hasKey := st.HasGeminiKey
	if s.settings != nil && s.settings.HasStoredKey() {
		hasKey = true
	}

	s.mu.Lock()
	s.session = Session{
		Authenticated: st.Authenticated,
		UserEmail:     st.Email,
		HasKey:        hasKey,
	}
	s.mu.Unlock()
	s.emit()

	if st.Authenticated {
		s.refreshInbox(ctx)
	}
	return nil
}

// Login authenticates against the backend and loads the inbox on success.
// A failure leaves the session untouched and returns ErrLoginFailed.
func (s *SessionService) Login(ctx context.Context, email, password string) error {
	if s.backend == nil {
		return fmt.Errorf("auth backend not available")
	}
	email = strings.TrimSpace(email)

	s.mu.Lock()
	s.loggingIn = true
	s.mu.Unlock()
	s.emit()
	defer func() {
		s.mu.Lock()
		s.loggingIn = false
		s.mu.Unlock()
		s.emit()
	}()

	if err := s.backend.Login(ctx, email, password); err != nil {
		logf(s.logger, "session: login for %s failed: %v", email, err)
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	s.mu.Lock()
	s.session.Authenticated = true
	s.session.UserEmail = email
	if s.settings != nil && s.settings.HasStoredKey() {
		s.session.HasKey = true
	}
	s.mu.Unlock()
	s.emit()

	logf(s.logger, "session: logged in as %s", email)
	s.refreshInbox(ctx)
	return nil
}

// Logout ends the backend session and then resets all client state, even
// when the remote call fails.
func (s *SessionService) Logout(ctx context.Context) error {
	var remoteErr error
	if s.backend != nil {
		if err := s.backend.Logout(ctx); err != nil {
			logf(s.logger, "session: remote logout failed: %v", err)
			remoteErr = fmt.Errorf("logout: %w", err)
		}
	}

	s.mu.RLock()
	resets := append([]func(context.Context){}, s.resets...)
	s.mu.RUnlock()
	for _, reset := range resets {
		reset(ctx)
	}

	s.mu.Lock()
	s.session = Session{}
	s.loggingIn = false
	s.mu.Unlock()
	s.emit()
	return remoteErr
}

// MarkKeyPresent records that an API key is now available
func (s *SessionService) MarkKeyPresent() {
	s.mu.Lock()
	s.session.HasKey = true
	s.mu.Unlock()
	s.emit()
}

// Current returns a snapshot of the session
func (s *SessionService) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// LoggingIn reports whether a login request is in flight
func (s *SessionService) LoggingIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggingIn
}

func (s *SessionService) refreshInbox(ctx context.Context) {
	if s.inbox == nil {
		return
	}
	if err := s.inbox.Refresh(ctx); err != nil {
		logf(s.logger, "session: inbox refresh failed: %v", err)
	}
}
