package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/eren-998/Email-assistant/internal/agent"
)

// Toast texts for inbox refreshes
const (
	msgInboxRefreshed = "Inbox refreshed"
	msgInboxFailed    = "Failed to fetch emails"
)

// InboxService caches the last fetched inbox listing
type InboxService struct {
	listeners

	backend  InboxBackend
	notifier Notifier
	logger   *log.Logger

	mu       sync.RWMutex
	emails   []agent.EmailSummary
	inFlight int
}

// NewInboxService creates an inbox cache
func NewInboxService(backend InboxBackend, notifier Notifier, logger *log.Logger) *InboxService {
	return &InboxService{
		backend:  backend,
		notifier: notifier,
		logger:   logger,
	}
}

// Refresh replaces the cache with the first MaxInboxItems emails from the
// backend, keeping server order. The loading flag is cleared on every path.
func (s *InboxService) Refresh(ctx context.Context) error {
	if s.backend == nil {
		return fmt.Errorf("inbox backend not available")
	}

	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
	s.emit()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
		s.emit()
	}()

	emails, err := s.backend.Emails(ctx)
	if err != nil {
		logf(s.logger, "inbox: refresh failed: %v", err)
		s.notify(ToastError, msgInboxFailed)
		return fmt.Errorf("fetch emails: %w", err)
	}

	if len(emails) > MaxInboxItems {
		emails = emails[:MaxInboxItems]
	}
	snapshot := make([]agent.EmailSummary, len(emails))
	copy(snapshot, emails)

	s.mu.Lock()
	s.emails = snapshot
	s.mu.Unlock()

	s.notify(ToastSuccess, msgInboxRefreshed)
	return nil
}

func (s *InboxService) notify(kind ToastKind, text string) {
	if s.notifier == nil {
		return
	}
	switch kind {
	case ToastSuccess:
		s.notifier.Success(text)
	case ToastError:
		s.notifier.Error(text)
	default:
		s.notifier.Info(text)
	}
}

// Emails returns a copy of the cached listing
func (s *InboxService) Emails() []agent.EmailSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]agent.EmailSummary, len(s.emails))
	copy(out, s.emails)
	return out
}

// Find looks up a cached email by id
func (s *InboxService) Find(id string) (agent.EmailSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.emails {
		if e.ID == id {
			return e, true
		}
	}
	return agent.EmailSummary{}, false
}

// Loading reports whether a refresh is in flight
func (s *InboxService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// Reset empties the cache
func (s *InboxService) Reset() {
	s.mu.Lock()
	s.emails = nil
	s.mu.Unlock()
	s.emit()
}
