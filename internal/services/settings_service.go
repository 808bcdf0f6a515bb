package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
)

// Keys of the durable store
const (
	KeySelectedModel = "selectedModel"
	KeyGeminiKey     = "geminiKey"
	KeyChatHistory   = "chatHistory"
	KeyTheme         = "theme"
)

// SettingsService owns the persisted settings and conversation history.
// The API key has two sources: the key input draft and the stored key.
type SettingsService struct {
	listeners

	store  KVStore
	logger *log.Logger

	mu        sync.RWMutex
	keyInput  string
	storedKey string
	model     Model
	theme     Theme
}

// NewSettingsService creates a settings service over a durable store
func NewSettingsService(store KVStore, logger *log.Logger) *SettingsService {
	return &SettingsService{
		store:  store,
		logger: logger,
		model:  DefaultModel,
		theme:  DefaultTheme,
	}
}

// Load reads settings and history from the store. Unreadable or corrupt
// values are discarded and logged; they never fail the load.
func (s *SettingsService) Load(ctx context.Context) (Settings, []Message, error) {
	if s.store == nil {
		return Settings{}, nil, fmt.Errorf("settings store not available")
	}

	model := DefaultModel
	if v, ok := s.read(ctx, KeySelectedModel); ok {
		if m, valid := ParseModel(v); valid {
			model = m
		} else {
			logf(s.logger, "settings: ignoring unknown model %q", v)
		}
	}

	theme := DefaultTheme
	if v, ok := s.read(ctx, KeyTheme); ok {
		if t, valid := ParseTheme(v); valid {
			theme = t
		} else {
			logf(s.logger, "settings: ignoring unknown theme %q", v)
		}
	}

	key, _ := s.read(ctx, KeyGeminiKey)
	key = strings.TrimSpace(key)

	var history []Message
	if raw, ok := s.read(ctx, KeyChatHistory); ok {
		history = decodeHistory(raw, s.logger)
	}

	s.mu.Lock()
	s.model = model
	s.theme = theme
	s.storedKey = key
	// Seed the draft so the stored key wins once both exist
	s.keyInput = key
	s.mu.Unlock()
	s.emit()

	return Settings{APIKey: key, Model: model, Theme: theme}, history, nil
}

func (s *SettingsService) read(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logf(s.logger, "settings: read %s failed: %v", key, err)
		return "", false
	}
	return v, ok
}

func decodeHistory(raw string, logger *log.Logger) []Message {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		logf(logger, "settings: discarding corrupt chat history: %v", err)
		return nil
	}
	for _, m := range msgs {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			logf(logger, "settings: discarding chat history with unknown role %q", m.Role)
			return nil
		}
	}
	return TrimHistory(msgs)
}

// Save persists all settings at once
func (s *SettingsService) Save(ctx context.Context, st Settings) error {
	if s.store == nil {
		return fmt.Errorf("settings store not available")
	}
	model, ok := ParseModel(string(st.Model))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModel, st.Model)
	}
	theme, ok := ParseTheme(string(st.Theme))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, st.Theme)
	}
	key := strings.TrimSpace(st.APIKey)

	if err := s.store.Set(ctx, KeySelectedModel, string(model)); err != nil {
		return err
	}
	if err := s.store.Set(ctx, KeyTheme, string(theme)); err != nil {
		return err
	}
	if err := s.writeKey(ctx, key); err != nil {
		return err
	}

	s.mu.Lock()
	s.model = model
	s.theme = theme
	s.storedKey = key
	s.keyInput = key
	s.mu.Unlock()
	s.emit()
	return nil
}

func (s *SettingsService) writeKey(ctx context.Context, key string) error {
	if key == "" {
		return s.store.Delete(ctx, KeyGeminiKey)
	}
	return s.store.Set(ctx, KeyGeminiKey, key)
}

// SaveLog persists the conversation log trimmed to the last MaxHistory
// entries. An empty log is never written.
func (s *SettingsService) SaveLog(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if s.store == nil {
		return fmt.Errorf("settings store not available")
	}
	data, err := json.Marshal(TrimHistory(msgs))
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}
	return s.store.Set(ctx, KeyChatHistory, string(data))
}

// ClearLog removes the persisted conversation log
func (s *SettingsService) ClearLog(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("settings store not available")
	}
	return s.store.Delete(ctx, KeyChatHistory)
}

// SaveAPIKey persists key locally and makes it the current draft
func (s *SettingsService) SaveAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyAPIKey
	}
	if s.store == nil {
		return fmt.Errorf("settings store not available")
	}
	if err := s.writeKey(ctx, key); err != nil {
		return err
	}
	s.mu.Lock()
	s.storedKey = key
	s.keyInput = key
	s.mu.Unlock()
	s.emit()
	return nil
}

// SetKeyInput updates the in-memory key draft
func (s *SettingsService) SetKeyInput(v string) {
	s.mu.Lock()
	s.keyInput = v
	s.mu.Unlock()
	s.emit()
}

// KeyInput returns the in-memory key draft
func (s *SettingsService) KeyInput() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyInput
}

// ResolveAPIKey returns the key draft, else the stored key, else ""
func (s *SettingsService) ResolveAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k := strings.TrimSpace(s.keyInput); k != "" {
		return k
	}
	return s.storedKey
}

// HasStoredKey reports whether a key is persisted locally
func (s *SettingsService) HasStoredKey() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storedKey != ""
}

// Model returns the selected model
func (s *SettingsService) Model() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// SetModel validates and persists the selected model
func (s *SettingsService) SetModel(ctx context.Context, name string) error {
	m, ok := ParseModel(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	if s.store != nil {
		if err := s.store.Set(ctx, KeySelectedModel, string(m)); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
	s.emit()
	return nil
}

// Theme returns the selected theme
func (s *SettingsService) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme validates and persists the selected theme
func (s *SettingsService) SetTheme(ctx context.Context, name string) error {
	t, ok := ParseTheme(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	if s.store != nil {
		if err := s.store.Set(ctx, KeyTheme, string(t)); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
	s.emit()
	return nil
}

// Current returns a snapshot of the settings
func (s *SettingsService) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Settings{APIKey: s.storedKey, Model: s.model, Theme: s.theme}
}

// Reset drops the unsaved key draft
func (s *SettingsService) Reset() {
	s.mu.Lock()
	s.keyInput = s.storedKey
	s.mu.Unlock()
	s.emit()
}
