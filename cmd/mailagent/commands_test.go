package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/eren-998/Email-assistant/internal/agent"
	"github.com/eren-998/Email-assistant/internal/config"
	"github.com/eren-998/Email-assistant/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory assistant backend
type fakeBackend struct {
	mu            sync.Mutex
	authenticated bool
	email         string
	hasKey        bool
	emails        []agent.EmailSummary
	emailsStatus  int
	reply         agent.CommandResponse
	commands      []agent.CommandRequest
	logins        []agent.LoginRequest
	savedKeys     []string
	logouts       int
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case agent.PathStatus:
		writeJSON(w, agent.StatusResponse{Authenticated: f.authenticated, Email: f.email, HasGeminiKey: f.hasKey})
	case agent.PathLogin:
		var req agent.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.logins = append(f.logins, req)
		f.authenticated, f.email = true, req.Email
		writeJSON(w, map[string]string{"status": "ok"})
	case agent.PathLogout:
		f.logouts++
		f.authenticated, f.email = false, ""
		writeJSON(w, map[string]string{"status": "ok"})
	case agent.PathEmails:
		if f.emailsStatus != 0 {
			w.WriteHeader(f.emailsStatus)
			writeJSON(w, map[string]string{"detail": "gmail unavailable"})
			return
		}
		writeJSON(w, agent.EmailsResponse{Emails: f.emails})
	case agent.PathAgent:
		var req agent.CommandRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.commands = append(f.commands, req)
		writeJSON(w, f.reply)
	case agent.PathGeminiKey:
		var req struct {
			Key string `json:"key"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.savedKeys = append(f.savedKeys, req.Key)
		f.hasKey = true
		writeJSON(w, map[string]string{"status": "ok"})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type cliEnv struct {
	t       *testing.T
	backend *fakeBackend
	server  *httptest.Server
	config  string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.StorePath = filepath.Join(dir, "state.sqlite3")
	cfg.LogFile = filepath.Join(dir, "mailagent.log")
	cfg.ThemeDir = filepath.Join(dir, "themes")
	path := filepath.Join(dir, "config.json")
	require.NoError(t, cfg.SaveConfig(path))

	backend := &fakeBackend{reply: agent.CommandResponse{Type: agent.ResponseTypeOK, Message: "Done"}}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	return &cliEnv{t: t, backend: backend, server: server, config: path}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config, "--backend", e.server.URL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAsk_UsesSavedKeyAndPersistsHistory(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.reply = agent.CommandResponse{Type: agent.ResponseTypeOK, Message: "You have 2 unread emails"}

	out, err := env.run("key", "sk-test")
	require.NoError(t, err)
	assert.Contains(t, out, "Settings saved! Using gemini-2.0-flash-exp")
	assert.Equal(t, []string{"sk-test"}, env.backend.savedKeys)

	out, err = env.run("ask", "how", "many", "unread?")
	require.NoError(t, err)
	assert.Contains(t, out, "You have 2 unread emails")
	require.Len(t, env.backend.commands, 1)
	assert.Equal(t, agent.CommandRequest{
		Command:   "how many unread?",
		Model:     string(services.DefaultModel),
		GeminiKey: "sk-test",
	}, env.backend.commands[0])

	out, err = env.run("history")
	require.NoError(t, err)
	assert.Contains(t, out, "You: how many unread?")
	assert.Contains(t, out, "Agent: You have 2 unread emails")
	// The key confirmation is part of the log too
	assert.Contains(t, out, "Agent: ✅ Settings saved!")

	_, err = env.run("history", "--clear")
	require.NoError(t, err)
	out, err = env.run("history")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved conversation")
}

func TestAsk_MissingKey(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("ask", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrMissingAPIKey)
	assert.Contains(t, out, "Gemini API key is missing")
	assert.Empty(t, env.backend.commands)
}

func TestAsk_ServerError(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.reply = agent.CommandResponse{Type: agent.ResponseTypeError, Message: "quota exceeded"}
	_, err := env.run("key", "sk-test")
	require.NoError(t, err)

	out, err := env.run("ask", "hello")
	require.Error(t, err)
	assert.True(t, services.IsServerError(err))
	assert.Contains(t, out, "❌ quota exceeded")
}

func TestInbox(t *testing.T) {
	t.Run("logged_in", func(t *testing.T) {
		env := newCLIEnv(t)
		env.backend.authenticated, env.backend.email = true, "ana@example.com"
		env.backend.emails = []agent.EmailSummary{
			{ID: "m1", Sender: "Bob Stone <bob@example.com>", Subject: "Lunch", BodySnippet: "Noon?", IsUnread: true},
			{ID: "m2", Sender: "<news@example.com>", Subject: "Weekly digest"},
		}

		out, err := env.run("inbox", "--width", "80")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "Bob Stone")
		assert.Contains(t, lines[0], "Lunch - Noon?")
		assert.Contains(t, lines[1], "news@example.com")
		assert.Contains(t, lines[1], "No preview available")
	})

	t.Run("logged_out", func(t *testing.T) {
		env := newCLIEnv(t)
		_, err := env.run("inbox")
		assert.ErrorIs(t, err, errNotLoggedIn)
	})

	t.Run("fetch_failure", func(t *testing.T) {
		env := newCLIEnv(t)
		env.backend.authenticated = true
		env.backend.emailsStatus = http.StatusInternalServerError

		_, err := env.run("inbox")
		require.Error(t, err)
		assert.Equal(t, "Failed to fetch emails", err.Error())
	})
}

func TestStatus(t *testing.T) {
	env := newCLIEnv(t)
	env.backend.authenticated, env.backend.email, env.backend.hasKey = true, "ana@example.com", true

	out, err := env.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as ana@example.com")
	assert.Contains(t, out, "API key:  present")
	assert.Contains(t, out, "Model:    gemini-2.0-flash-exp")
	assert.Contains(t, out, env.server.URL)
}

func TestStatus_BackendDown(t *testing.T) {
	env := newCLIEnv(t)
	env.server.Close()

	out, err := env.run("status")
	assert.Error(t, err)
	assert.Contains(t, out, "Session:  unreachable")
}

func TestLoginLogout(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("login", "--email", "ana@example.com")
	require.Error(t, err)
	assert.Empty(t, env.backend.logins)

	t.Setenv(config.EnvPassword, "abcd efgh ijkl mnop")
	out, err := env.run("login", "--email", "ana@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as ana@example.com")
	require.Len(t, env.backend.logins, 1)
	assert.Equal(t, agent.LoginRequest{Email: "ana@example.com", Password: "abcd efgh ijkl mnop"}, env.backend.logins[0])

	out, err = env.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	assert.Equal(t, 1, env.backend.logouts)
}

func TestModelAndTheme(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("model", "gemini-1.5-pro")
	require.NoError(t, err)
	out, err := env.run("model")
	require.NoError(t, err)
	assert.Contains(t, out, "* gemini-1.5-pro")
	assert.Contains(t, out, "  gemini-2.0-flash-exp")

	_, err = env.run("model", "gpt-4")
	assert.ErrorIs(t, err, services.ErrUnknownModel)

	_, err = env.run("theme", "light")
	require.NoError(t, err)
	out, err = env.run("theme")
	require.NoError(t, err)
	assert.Contains(t, out, "* light")

	_, err = env.run("theme", "neon")
	assert.ErrorIs(t, err, services.ErrUnknownTheme)
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "mailagent")
	assert.Contains(t, out, "Go version:")
}

func TestSetup_InvalidBackend(t *testing.T) {
	env := newCLIEnv(t)
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", env.config, "--backend", "ftp://nowhere", "status"})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestNewSummarizer(t *testing.T) {
	client, err := agent.NewClient("http://localhost:8000", 0)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	s, err := newSummarizer(cfg, client)
	require.NoError(t, err)
	assert.IsType(t, &services.AgentSummarizer{}, s)

	cfg.LLM.SummaryProvider = config.SummaryProviderOllama
	s, err = newSummarizer(cfg, client)
	require.NoError(t, err)
	assert.IsType(t, &services.ProviderSummarizer{}, s)

	cfg.LLM.SummaryProvider = "openai"
	_, err = newSummarizer(cfg, client)
	assert.Error(t, err)
}

func TestMain(m *testing.M) {
	// Keep developer configuration out of the tests
	os.Unsetenv(config.EnvConfigPath)
	os.Unsetenv(config.EnvBackendURL)
	os.Unsetenv(config.EnvPassword)
	os.Exit(m.Run())
}
