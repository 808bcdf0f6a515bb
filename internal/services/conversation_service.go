package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/eren-998/Email-assistant/internal/agent"
)

// Assistant texts for failed turns
const (
	msgMissingAPIKey = "❌ Gemini API key is missing. Add it in settings."
	msgRequestFailed = "❌ Error. Check your API key."
)

// refreshTrigger in a command makes a successful turn refresh the inbox
const refreshTrigger = "refresh"

// ConversationService owns the conversation log and runs one command at a time
type ConversationService struct {
	listeners

	backend  CommandBackend
	settings *SettingsService
	inbox    InboxRefresher
	logger   *log.Logger

	mu       sync.RWMutex
	messages []Message
	sending  bool
	// epoch changes on Clear/Reset so replies to older turns are dropped
	epoch uint64

	saveMu sync.Mutex
}

// NewConversationService creates the conversation engine
func NewConversationService(backend CommandBackend, settings *SettingsService, inbox InboxRefresher, logger *log.Logger) *ConversationService {
	return &ConversationService{
		backend:  backend,
		settings: settings,
		inbox:    inbox,
		logger:   logger,
	}
}

// PrepareCommand trims input and cuts it to MaxCommandLength characters
func PrepareCommand(input string) string {
	cmd := strings.TrimSpace(input)
	if r := []rune(cmd); len(r) > MaxCommandLength {
		cmd = string(r[:MaxCommandLength])
	}
	return cmd
}

// Submit runs one command turn: the user message is appended right away,
// then exactly one assistant message (reply or failure) follows. Submissions
// made while a turn is in flight are rejected with ErrBusy.
func (s *ConversationService) Submit(ctx context.Context, input string) error {
	command := PrepareCommand(input)
	if command == "" {
		return ErrEmptyCommand
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return ErrBusy
	}
	s.sending = true
	epoch := s.epoch
	s.appendLocked(Message{Role: RoleUser, Content: command})
	s.mu.Unlock()
	s.persist(ctx)
	s.emit()

	refresh, err := s.runTurn(ctx, command, epoch)
	if refresh && s.inbox != nil {
		if rerr := s.inbox.Refresh(ctx); rerr != nil {
			logf(s.logger, "conversation: inbox refresh after command failed: %v", rerr)
		}
	}
	return err
}

// runTurn resolves the key, calls the agent and applies the result. The
// sending flag is cleared on every path.
func (s *ConversationService) runTurn(ctx context.Context, command string, epoch uint64) (refresh bool, err error) {
	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
		s.emit()
	}()

	key := ""
	model := DefaultModel
	if s.settings != nil {
		key = s.settings.ResolveAPIKey()
		model = s.settings.Model()
	}
	if key == "" {
		s.reply(ctx, epoch, msgMissingAPIKey)
		return false, ErrMissingAPIKey
	}
	if s.backend == nil {
		s.reply(ctx, epoch, msgRequestFailed)
		return false, errors.New("agent backend not available")
	}

	resp, err := s.backend.Command(ctx, agent.CommandRequest{
		Command:   command,
		Model:     string(model),
		GeminiKey: key,
	})
	if err != nil {
		logf(s.logger, "conversation: agent request failed: %v", err)
		s.reply(ctx, epoch, msgRequestFailed)
		return false, fmt.Errorf("agent command: %w", err)
	}
	if resp.IsError() {
		logf(s.logger, "conversation: agent reported error: %s", resp.Message)
		s.reply(ctx, epoch, "❌ "+resp.Message)
		return false, &ServerError{Message: resp.Message}
	}

	s.reply(ctx, epoch, resp.Message)
	return strings.Contains(strings.ToLower(command), refreshTrigger), nil
}

// reply appends an assistant message unless the log was cleared after the turn started
func (s *ConversationService) reply(ctx context.Context, epoch uint64, text string) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		logf(s.logger, "conversation: dropping reply for a cleared conversation")
		return
	}
	s.appendLocked(Message{Role: RoleAssistant, Content: text})
	s.mu.Unlock()
	s.persist(ctx)
	s.emit()
}

// AppendAssistant adds an assistant-authored notice to the log
func (s *ConversationService) AppendAssistant(ctx context.Context, text string) {
	s.mu.Lock()
	s.appendLocked(Message{Role: RoleAssistant, Content: text})
	s.mu.Unlock()
	s.persist(ctx)
	s.emit()
}

func (s *ConversationService) appendLocked(m Message) {
	s.messages = append(s.messages, m)
	if len(s.messages) > MaxHistory {
		s.messages = TrimHistory(s.messages)
	}
}

// persist writes the latest log; the snapshot is taken under saveMu so the
// last write always carries the newest state
func (s *ConversationService) persist(ctx context.Context) {
	if s.settings == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.settings.SaveLog(ctx, s.Messages()); err != nil {
		logf(s.logger, "conversation: save history failed: %v", err)
	}
}

// Clear empties the log and purges the persisted copy
func (s *ConversationService) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.messages = nil
	s.epoch++
	s.mu.Unlock()

	var err error
	if s.settings != nil {
		s.saveMu.Lock()
		err = s.settings.ClearLog(ctx)
		s.saveMu.Unlock()
	}
	s.emit()
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Restore replaces the in-memory log with previously persisted messages
func (s *ConversationService) Restore(msgs []Message) {
	s.mu.Lock()
	s.messages = TrimHistory(msgs)
	s.mu.Unlock()
	s.emit()
}

// Messages returns a copy of the log in display order
func (s *ConversationService) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Sending reports whether a command is in flight
func (s *ConversationService) Sending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sending
}
