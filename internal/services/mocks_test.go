package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eren-998/Email-assistant/internal/agent"
	"github.com/stretchr/testify/mock"
)

// MockBackend implements Backend for testing
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Status(ctx context.Context) (*agent.StatusResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.StatusResponse), args.Error(1)
}

func (m *MockBackend) Login(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *MockBackend) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBackend) Emails(ctx context.Context) ([]agent.EmailSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]agent.EmailSummary), args.Error(1)
}

func (m *MockBackend) Command(ctx context.Context, req agent.CommandRequest) (*agent.CommandResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.CommandResponse), args.Error(1)
}

func (m *MockBackend) SaveGeminiKey(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockRefresher implements InboxRefresher for testing
type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// memKV is an in-memory KVStore
type memKV struct {
	mu      sync.Mutex
	data    map[string]string
	sets    map[string]int
	failGet map[string]error
	failSet error
	// beforeSet runs outside the lock ahead of every Set
	beforeSet func(key string)
}

func newMemKV() *memKV {
	return &memKV{
		data:    map[string]string{},
		sets:    map[string]int{},
		failGet: map[string]error{},
	}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failGet[key]; err != nil {
		return "", false, err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	if m.beforeSet != nil {
		m.beforeSet(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	if key == "" {
		return errors.New("empty key")
	}
	m.data[key] = value
	m.sets[key]++
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memKV) setCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[key]
}

// fakeClock fires timers only when advanced
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves the clock and runs every due timer in deadline order
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// gateSummarizer blocks each Summarize call until its email is released
type gateSummarizer struct {
	mu      sync.Mutex
	gates   map[string]chan string
	started chan string
}

func newGateSummarizer(ids ...string) *gateSummarizer {
	g := &gateSummarizer{gates: map[string]chan string{}, started: make(chan string, len(ids))}
	for _, id := range ids {
		g.gates[id] = make(chan string, 1)
	}
	return g
}

func (g *gateSummarizer) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	g.mu.Lock()
	gate := g.gates[req.EmailID]
	g.mu.Unlock()
	g.started <- req.EmailID
	select {
	case out := <-gate:
		return out, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *gateSummarizer) release(id, summary string) {
	g.gates[id] <- summary
}

// stubSummarizer returns a fixed result and records prompts
type stubSummarizer struct {
	mu      sync.Mutex
	out     string
	err     error
	prompts []SummaryRequest
}

func (s *stubSummarizer) Summarize(_ context.Context, req SummaryRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, req)
	return s.out, s.err
}

func (s *stubSummarizer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// recordingNotifier captures toasts
type recordingNotifier struct {
	mu     sync.Mutex
	events []Toast
}

func (r *recordingNotifier) add(kind ToastKind, text string) {
	r.mu.Lock()
	r.events = append(r.events, Toast{Kind: kind, Text: text})
	r.mu.Unlock()
}

func (r *recordingNotifier) Success(text string) { r.add(ToastSuccess, text) }
func (r *recordingNotifier) Error(text string)   { r.add(ToastError, text) }
func (r *recordingNotifier) Info(text string)    { r.add(ToastInfo, text) }

func (r *recordingNotifier) all() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast{}, r.events...)
}

func sampleEmails(n int) []agent.EmailSummary {
	out := make([]agent.EmailSummary, n)
	for i := range out {
		out[i] = agent.EmailSummary{
			ID:          fmt.Sprintf("msg-%02d", i),
			Sender:      "Sender <sender@example.com>",
			Subject:     "Subject",
			BodySnippet: "snippet",
		}
	}
	return out
}
