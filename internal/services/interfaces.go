package services

import (
	"context"

	"github.com/eren-998/Email-assistant/internal/agent"
)

// KVStore is the durable string key/value store behind the settings service
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// AuthBackend handles the remote mailbox session
type AuthBackend interface {
	Status(ctx context.Context) (*agent.StatusResponse, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
}

// InboxBackend lists inbox messages
type InboxBackend interface {
	Emails(ctx context.Context) ([]agent.EmailSummary, error)
}

// CommandBackend runs natural-language commands on the agent endpoint
type CommandBackend interface {
	Command(ctx context.Context, req agent.CommandRequest) (*agent.CommandResponse, error)
}

// KeyBackend stores the API key on the backend session
type KeyBackend interface {
	SaveGeminiKey(ctx context.Context, key string) error
}

// Backend is everything the panel needs from the remote side; *agent.Client implements it
type Backend interface {
	AuthBackend
	InboxBackend
	CommandBackend
	KeyBackend
}

// Summarizer produces the short insight text for one email
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// InsightStore persists generated summaries; *db.InsightStore implements it
type InsightStore interface {
	LoadInsight(ctx context.Context, accountEmail, messageID, model string) (string, bool, error)
	SaveInsight(ctx context.Context, accountEmail, messageID, model, summary string) error
	DeleteInsights(ctx context.Context, accountEmail string) error
}

// InboxRefresher is the part of the inbox cache other services trigger
type InboxRefresher interface {
	Refresh(ctx context.Context) error
}

// Notifier surfaces short-lived status messages
type Notifier interface {
	Success(text string)
	Error(text string)
	Info(text string)
}

// Data structures

type SummaryRequest struct {
	EmailID string
	Prompt  string
	Model   string
	APIKey  string
}
