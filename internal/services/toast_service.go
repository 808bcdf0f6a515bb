package services

import (
	"log"
	"strings"
	"sync"
	"time"
)

// ToastDuration is how long a toast stays visible
const ToastDuration = 3 * time.Second

// ToastKind is the severity of a toast
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast is an ephemeral status message
type Toast struct {
	Kind   ToastKind
	Text   string
	Expiry time.Time
}

// Timer is the handle returned by Clock.AfterFunc
type Timer interface {
	Stop() bool
}

// Clock abstracts time for the toast service
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// ToastService shows at most one toast at a time; a new toast replaces the
// current one and restarts the dismiss timer.
type ToastService struct {
	listeners

	clock    Clock
	duration time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	current *Toast
	seq     uint64
	timer   Timer
}

// ToastOption configures a ToastService
type ToastOption func(*ToastService)

// WithClock replaces the wall clock, mostly for tests
func WithClock(c Clock) ToastOption {
	return func(s *ToastService) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewToastService creates a toast emitter
func NewToastService(logger *log.Logger, opts ...ToastOption) *ToastService {
	s := &ToastService{
		clock:    realClock{},
		duration: ToastDuration,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Show replaces any visible toast and schedules its dismissal
func (s *ToastService) Show(kind ToastKind, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.seq++
	id := s.seq
	s.current = &Toast{Kind: kind, Text: text, Expiry: s.clock.Now().Add(s.duration)}
	s.timer = s.clock.AfterFunc(s.duration, func() { s.expire(id) })
	s.mu.Unlock()

	logf(s.logger, "%s: %s", strings.ToUpper(string(kind)), text)
	s.emit()
}

// expire clears the toast only if no newer toast replaced it
func (s *ToastService) expire(id uint64) {
	s.mu.Lock()
	if s.seq != id || s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.timer = nil
	s.mu.Unlock()
	s.emit()
}

// Current returns the visible toast, if any
func (s *ToastService) Current() (Toast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || !s.clock.Now().Before(s.current.Expiry) {
		return Toast{}, false
	}
	return *s.current, true
}

// Reset hides the current toast and cancels its timer
func (s *ToastService) Reset() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	s.current = nil
	s.mu.Unlock()
	s.emit()
}

// Convenience methods for common operations

// Success shows a success toast
func (s *ToastService) Success(text string) { s.Show(ToastSuccess, text) }

// Error shows an error toast
func (s *ToastService) Error(text string) { s.Show(ToastError, text) }

// Info shows an info toast
func (s *ToastService) Info(text string) { s.Show(ToastInfo, text) }
