package services

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const msgKeySaveFailed = "Failed to save key"

// Options tunes how NewPanel builds the services
type Options struct {
	Logger *log.Logger
	// Summarizer defaults to the agent endpoint
	Summarizer Summarizer
	// Clock defaults to the wall clock
	Clock Clock
	// Insights caches summaries per account; nil disables the cache
	Insights InsightStore
}

// Panel wires the agent panel services over one backend and one store
type Panel struct {
	Settings     *SettingsService
	Session      *SessionService
	Inbox        *InboxService
	Conversation *ConversationService
	Insight      *InsightService
	Toasts       *ToastService

	backend Backend
	logger  *log.Logger
}

// NewPanel creates all services and registers their logout resets
func NewPanel(backend Backend, store KVStore, opts Options) *Panel {
	var toastOpts []ToastOption
	if opts.Clock != nil {
		toastOpts = append(toastOpts, WithClock(opts.Clock))
	}
	toasts := NewToastService(opts.Logger, toastOpts...)
	settings := NewSettingsService(store, opts.Logger)
	inbox := NewInboxService(backend, toasts, opts.Logger)

	summarizer := opts.Summarizer
	if summarizer == nil {
		summarizer = NewAgentSummarizer(backend)
	}

	session := NewSessionService(backend, settings, inbox, opts.Logger)
	var insightOpts []InsightOption
	if opts.Insights != nil {
		insightOpts = append(insightOpts, WithSummaryCache(NewSummaryCache(opts.Insights), func() string {
			return session.Current().UserEmail
		}))
	}

	p := &Panel{
		Settings:     settings,
		Session:      session,
		Inbox:        inbox,
		Conversation: NewConversationService(backend, settings, inbox, opts.Logger),
		Insight:      NewInsightService(summarizer, settings, opts.Logger, insightOpts...),
		Toasts:       toasts,
		backend:      backend,
		logger:       opts.Logger,
	}

	// History belongs to the account that just left. Clear serializes the
	// delete with in-flight saves and drops late replies.
	p.Session.OnLogout(func(ctx context.Context) {
		if err := p.Conversation.Clear(ctx); err != nil {
			logf(p.logger, "panel: purge history on logout failed: %v", err)
		}
	})
	p.Session.OnLogout(func(context.Context) { p.Inbox.Reset() })
	p.Session.OnLogout(func(ctx context.Context) {
		p.Insight.Reset()
		// Runs before the session is cleared, so the account is still known
		if err := p.Insight.ClearCache(ctx, p.Session.Current().UserEmail); err != nil {
			logf(p.logger, "panel: purge insights on logout failed: %v", err)
		}
	})
	p.Session.OnLogout(func(context.Context) { p.Toasts.Reset() })
	p.Session.OnLogout(func(context.Context) { p.Settings.Reset() })
	return p
}

// Start loads persisted state, restores the conversation and checks the
// backend session. A failed status check is not fatal.
func (p *Panel) Start(ctx context.Context) error {
	_, history, err := p.Settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	p.Conversation.Restore(history)
	if err := p.Session.CheckStatus(ctx); err != nil {
		logf(p.logger, "panel: starting without a backend session: %v", err)
	}
	return nil
}

// SaveAPIKey stores the key on the backend and locally, then confirms in
// the conversation which model is in use
func (p *Panel) SaveAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyAPIKey
	}
	if p.backend != nil {
		if err := p.backend.SaveGeminiKey(ctx, key); err != nil {
			logf(p.logger, "panel: save key on backend failed: %v", err)
			p.Toasts.Error(msgKeySaveFailed)
			return fmt.Errorf("save key: %w", err)
		}
	}
	if err := p.Settings.SaveAPIKey(ctx, key); err != nil {
		p.Toasts.Error(msgKeySaveFailed)
		return fmt.Errorf("save key: %w", err)
	}
	p.Session.MarkKeyPresent()
	p.Conversation.AppendAssistant(ctx, fmt.Sprintf("✅ Settings saved! Using %s", p.Settings.Model()))
	return nil
}

// Logout ends the session and resets every component
func (p *Panel) Logout(ctx context.Context) error {
	return p.Session.Logout(ctx)
}
