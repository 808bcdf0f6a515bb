package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/eren-998/Email-assistant/internal/agent"
)

const (
	summaryInstruction = "Summarize this email in three short, direct bullet points."
	msgSummaryFailed   = "Could not generate a summary for this email."
)

// SummaryPrompt builds the summarization prompt for one email
func SummaryPrompt(email agent.EmailSummary) string {
	return fmt.Sprintf("%s\n\nSubject: %s\n\n%s", summaryInstruction, email.Subject, email.BodySnippet)
}

// InsightService keeps the AI summary of the selected email. Only the latest
// selection may write the visible insight; older replies are dropped.
type InsightService struct {
	listeners

	summarizer Summarizer
	settings   *SettingsService
	logger     *log.Logger
	cache      *SummaryCache
	account    func() string

	mu       sync.RWMutex
	current  Insight
	selected bool
	seq      uint64
}

// InsightOption configures an InsightService
type InsightOption func(*InsightService)

// WithSummaryCache reuses summaries saved for the account returned by account
func WithSummaryCache(cache *SummaryCache, account func() string) InsightOption {
	return func(s *InsightService) {
		s.cache = cache
		s.account = account
	}
}

// NewInsightService creates the insight controller
func NewInsightService(summarizer Summarizer, settings *SettingsService, logger *log.Logger, opts ...InsightOption) *InsightService {
	s := &InsightService{
		summarizer: summarizer,
		settings:   settings,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PendingInsight is a summary request claimed by Begin and run by Complete
type PendingInsight struct {
	email   agent.EmailSummary
	key     string
	model   Model
	account string
	fresh   bool
	seq     uint64
}

// EmailID returns the id of the email being summarized
func (p *PendingInsight) EmailID() string { return p.email.ID }

// Select makes email the current selection and summarizes it. Selecting the
// email that is already current does nothing; a nil or id-less email is ignored.
func (s *InsightService) Select(ctx context.Context, email *agent.EmailSummary) error {
	return s.Complete(ctx, s.Begin(email, false))
}

// Regenerate summarizes email again even when it is already selected
func (s *InsightService) Regenerate(ctx context.Context, email *agent.EmailSummary) error {
	return s.Complete(ctx, s.Begin(email, true))
}

// Begin makes email the current selection right away and returns the request
// Complete must run, or nil when there is nothing to fetch. Callers that
// select in order must call Begin in that order; only the latest Begin may
// write the visible insight, whatever order the Completes finish in.
func (s *InsightService) Begin(email *agent.EmailSummary, fresh bool) *PendingInsight {
	if email == nil || strings.TrimSpace(email.ID) == "" {
		return nil
	}
	key := ""
	model := DefaultModel
	if s.settings != nil {
		key = s.settings.ResolveAPIKey()
		model = s.settings.Model()
	}

	s.mu.Lock()
	if !fresh && s.selected && s.current.EmailID == email.ID {
		s.mu.Unlock()
		return nil
	}
	s.seq++
	s.selected = true
	s.current = Insight{EmailID: email.ID}
	// Summaries are best effort: without a key nothing is requested or shown
	if key == "" || s.summarizer == nil {
		s.mu.Unlock()
		s.emit()
		return nil
	}
	s.current.Loading = true
	p := &PendingInsight{email: *email, key: key, model: model, fresh: fresh, seq: s.seq}
	s.mu.Unlock()
	s.emit()

	p.account = s.accountEmail()
	return p
}

// Complete fetches the summary claimed by Begin. A nil request is a no-op.
func (s *InsightService) Complete(ctx context.Context, p *PendingInsight) error {
	if p == nil {
		return nil
	}
	id := p.email.ID
	summary, cached := "", false
	if !p.fresh {
		summary, cached = s.cachedSummary(ctx, p.account, id, string(p.model))
	}
	var err error
	if !cached {
		summary, err = s.summarizer.Summarize(ctx, SummaryRequest{
			EmailID: id,
			Prompt:  SummaryPrompt(p.email),
			Model:   string(p.model),
			APIKey:  p.key,
		})
	}
	summary = strings.TrimSpace(summary)

	s.mu.Lock()
	if s.seq != p.seq {
		s.mu.Unlock()
		logf(s.logger, "insight: dropping stale summary for %s", id)
		return nil
	}
	s.current.Loading = false
	if err != nil {
		s.current.Error = msgSummaryFailed
	} else {
		s.current.Summary = summary
	}
	s.mu.Unlock()
	s.emit()

	if err != nil {
		logf(s.logger, "insight: summarize %s failed: %v", id, err)
		return fmt.Errorf("summarize email %s: %w", id, err)
	}
	if !cached && summary != "" && s.cache.enabled(p.account) {
		if err := s.cache.SaveSummary(ctx, p.account, id, string(p.model), summary); err != nil {
			logf(s.logger, "insight: cache save for %s failed: %v", id, err)
		}
	}
	return nil
}

// ClearCache forgets the cached summaries of accountEmail
func (s *InsightService) ClearCache(ctx context.Context, accountEmail string) error {
	if !s.cache.enabled(accountEmail) {
		return nil
	}
	return s.cache.ClearCache(ctx, accountEmail)
}

func (s *InsightService) cachedSummary(ctx context.Context, account, emailID, model string) (string, bool) {
	if !s.cache.enabled(account) {
		return "", false
	}
	summary, ok, err := s.cache.GetSummary(ctx, account, emailID, model)
	if err != nil {
		logf(s.logger, "insight: cache lookup for %s failed: %v", emailID, err)
		return "", false
	}
	return summary, ok
}

func (s *InsightService) accountEmail() string {
	if s.account == nil {
		return ""
	}
	return s.account()
}

// Current returns the insight of the selected email
func (s *InsightService) Current() Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reset clears the selection; pending replies are dropped
func (s *InsightService) Reset() {
	s.mu.Lock()
	s.seq++
	s.selected = false
	s.current = Insight{}
	s.mu.Unlock()
	s.emit()
}
