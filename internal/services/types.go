package services

import (
	"log"
	"strings"
	"sync"
)

// Limits shared by the panel components
const (
	MaxHistory       = 30
	MaxInboxItems    = 20
	MaxCommandLength = 500
)

// Role identifies who authored a conversation message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable entry of the conversation log
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is the client's view of the backend mailbox session
type Session struct {
	Authenticated bool
	UserEmail     string
	HasKey        bool
}

// Model is one of the LLM models the agent endpoint accepts
type Model string

const (
	ModelGemini20FlashExp Model = "gemini-2.0-flash-exp"
	ModelGemini25Flash    Model = "gemini-2.5-flash"
	ModelGemini15Flash    Model = "gemini-1.5-flash"
	ModelGemini15Pro      Model = "gemini-1.5-pro"

	DefaultModel = ModelGemini20FlashExp
)

var modelLabels = map[Model]string{
	ModelGemini20FlashExp: "Gemini 2.0 Flash (Recommended)",
	ModelGemini25Flash:    "Gemini 2.5 Flash",
	ModelGemini15Flash:    "Gemini 1.5 Flash",
	ModelGemini15Pro:      "Gemini 1.5 Pro",
}

// Models lists the selectable models in display order
func Models() []Model {
	return []Model{ModelGemini20FlashExp, ModelGemini25Flash, ModelGemini15Flash, ModelGemini15Pro}
}

// ParseModel validates a model name
func ParseModel(s string) (Model, bool) {
	m := Model(strings.TrimSpace(s))
	_, ok := modelLabels[m]
	return m, ok
}

// Label returns the human readable model name
func (m Model) Label() string {
	if l, ok := modelLabels[m]; ok {
		return l
	}
	return string(m)
}

// Theme is the persisted color scheme name
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	DefaultTheme = ThemeDark
)

// Themes lists the selectable themes
func Themes() []Theme {
	return []Theme{ThemeDark, ThemeLight}
}

// ParseTheme validates a theme name
func ParseTheme(s string) (Theme, bool) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeDark, ThemeLight:
		return t, true
	}
	return "", false
}

// Settings is the durable user configuration
type Settings struct {
	APIKey string
	Model  Model
	Theme  Theme
}

// Insight is the AI summary bound to the currently selected email
type Insight struct {
	EmailID string
	Summary string
	Loading bool
	Error   string
}

// TrimHistory returns a copy holding at most the last MaxHistory messages
func TrimHistory(msgs []Message) []Message {
	if len(msgs) > MaxHistory {
		msgs = msgs[len(msgs)-MaxHistory:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// listeners fans a change notification out to UI subscribers
type listeners struct {
	mu  sync.Mutex
	fns []func()
}

// OnChange registers fn to run after every state change. fn runs outside
// service locks and may call back into the service.
func (l *listeners) OnChange(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.fns = append(l.fns, fn)
	l.mu.Unlock()
}

func (l *listeners) emit() {
	l.mu.Lock()
	fns := append([]func(){}, l.fns...)
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
