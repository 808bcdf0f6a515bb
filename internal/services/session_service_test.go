package services

import (
	"context"
	"errors"
	"testing"

	"github.com/eren-998/Email-assistant/internal/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessionService_CheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		remote    agent.StatusResponse
		storedKey string
		want      Session
		refresh   bool
	}{
		{
			name:    "authenticated_remote_key",
			remote:  agent.StatusResponse{Authenticated: true, Email: "me@example.com", HasGeminiKey: true},
			want:    Session{Authenticated: true, UserEmail: "me@example.com", HasKey: true},
			refresh: true,
		},
		{
			name:      "local_key_wins_over_remote_flag",
			remote:    agent.StatusResponse{Authenticated: true, Email: "me@example.com", HasGeminiKey: false},
			storedKey: "local",
			want:      Session{Authenticated: true, UserEmail: "me@example.com", HasKey: true},
			refresh:   true,
		},
		{
			name:   "not_authenticated",
			remote: agent.StatusResponse{},
			want:   Session{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &MockBackend{}
			remote := tt.remote
			backend.On("Status", mock.Anything).Return(&remote, nil).Once()
			inbox := &MockRefresher{}
			if tt.refresh {
				inbox.On("Refresh", mock.Anything).Return(nil).Once()
			}
			settings := NewSettingsService(newMemKV(), nil)
			if tt.storedKey != "" {
				require.NoError(t, settings.SaveAPIKey(context.Background(), tt.storedKey))
			}
			svc := NewSessionService(backend, settings, inbox, nil)

			require.NoError(t, svc.CheckStatus(context.Background()))
			assert.Equal(t, tt.want, svc.Current())
			if tt.refresh {
				inbox.AssertExpectations(t)
			} else {
				inbox.AssertNotCalled(t, "Refresh", mock.Anything)
			}
		})
	}
}

func TestSessionService_CheckStatus_FailureKeepsState(t *testing.T) {
	backend := &MockBackend{}
	backend.On("Login", mock.Anything, "me@example.com", "pw").Return(nil).Once()
	backend.On("Status", mock.Anything).Return(nil, errors.New("offline")).Once()
	svc := NewSessionService(backend, nil, nil, nil)

	require.NoError(t, svc.Login(context.Background(), "me@example.com", "pw"))
	before := svc.Current()

	err := svc.CheckStatus(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, svc.Current())
	assert.True(t, svc.Current().Authenticated)
}

func TestSessionService_Login(t *testing.T) {
	t.Run("success_refreshes_inbox", func(t *testing.T) {
		backend := &MockBackend{}
		backend.On("Login", mock.Anything, "me@example.com", "app-pw").Return(nil).Once()
		inbox := &MockRefresher{}
		inbox.On("Refresh", mock.Anything).Return(nil).Once()
		svc := NewSessionService(backend, nil, inbox, nil)

		var flags []bool
		svc.OnChange(func() { flags = append(flags, svc.LoggingIn()) })

		require.NoError(t, svc.Login(context.Background(), " me@example.com ", "app-pw"))
		assert.Equal(t, Session{Authenticated: true, UserEmail: "me@example.com"}, svc.Current())
		assert.False(t, svc.LoggingIn())
		assert.Equal(t, true, flags[0])
		inbox.AssertExpectations(t)
	})

	t.Run("failure_keeps_state", func(t *testing.T) {
		backend := &MockBackend{}
		cause := &agent.HTTPError{StatusCode: 401, Detail: "Invalid credentials"}
		backend.On("Login", mock.Anything, "me@example.com", "bad").Return(cause).Once()
		inbox := &MockRefresher{}
		svc := NewSessionService(backend, nil, inbox, nil)

		err := svc.Login(context.Background(), "me@example.com", "bad")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLoginFailed)
		var httpErr *agent.HTTPError
		assert.ErrorAs(t, err, &httpErr)
		assert.Equal(t, Session{}, svc.Current())
		assert.False(t, svc.LoggingIn())
		inbox.AssertNotCalled(t, "Refresh", mock.Anything)
	})
}

func TestSessionService_Logout_RunsResetsEvenOnRemoteFailure(t *testing.T) {
	backend := &MockBackend{}
	backend.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	backend.On("Logout", mock.Anything).Return(errors.New("network")).Once()
	svc := NewSessionService(backend, nil, nil, nil)

	require.NoError(t, svc.Login(context.Background(), "me@example.com", "pw"))
	svc.MarkKeyPresent()

	resets := 0
	svc.OnLogout(func(context.Context) { resets++ })
	svc.OnLogout(func(context.Context) { resets++ })

	err := svc.Logout(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 2, resets)
	assert.Equal(t, Session{}, svc.Current())
}
