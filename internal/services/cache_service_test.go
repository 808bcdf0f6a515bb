package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/eren-998/Email-assistant/internal/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memInsights is an in-memory InsightStore
type memInsights struct {
	mu      sync.Mutex
	data    map[string]string
	loadErr error
	saves   int
}

func newMemInsights() *memInsights {
	return &memInsights{data: map[string]string{}}
}

func insightKey(account, id, model string) string { return account + "|" + id + "|" + model }

func (m *memInsights) LoadInsight(_ context.Context, account, id, model string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return "", false, m.loadErr
	}
	v, ok := m.data[insightKey(account, id, model)]
	return v, ok, nil
}

func (m *memInsights) SaveInsight(_ context.Context, account, id, model, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.data[insightKey(account, id, model)] = summary
	return nil
}

func (m *memInsights) DeleteInsights(_ context.Context, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if len(k) > len(account) && k[:len(account)+1] == account+"|" {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *memInsights) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func TestSummaryCache_NilStore(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]*SummaryCache{"nil_cache": nil, "nil_store": NewSummaryCache(nil)} {
		t.Run(name, func(t *testing.T) {
			_, _, err := c.GetSummary(ctx, "a@b.c", "m1", "x")
			assert.ErrorContains(t, err, "summary cache not available")
			assert.ErrorContains(t, c.SaveSummary(ctx, "a@b.c", "m1", "x", "s"), "summary cache not available")
			assert.NoError(t, c.ClearCache(ctx, "a@b.c"))
			assert.False(t, c.enabled("a@b.c"))
		})
	}
}

func TestSummaryCache_Validation(t *testing.T) {
	c := NewSummaryCache(newMemInsights())
	ctx := context.Background()

	tests := []struct {
		name    string
		account string
		id      string
		summary string
		wantErr string
	}{
		{"empty_account", "", "m1", "s", "accountEmail, messageID, and summary cannot be empty"},
		{"empty_message", "a@b.c", " ", "s", "accountEmail, messageID, and summary cannot be empty"},
		{"empty_summary", "a@b.c", "m1", "", "accountEmail, messageID, and summary cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, c.SaveSummary(ctx, tt.account, tt.id, "x", tt.summary), tt.wantErr)
		})
	}

	_, _, err := c.GetSummary(ctx, "", "m1", "x")
	assert.EqualError(t, err, "accountEmail and messageID cannot be empty")
	assert.EqualError(t, c.ClearCache(ctx, " "), "accountEmail cannot be empty")
	assert.False(t, c.enabled(""))
}

func TestSummaryCache_RoundTrip(t *testing.T) {
	store := newMemInsights()
	c := NewSummaryCache(store)
	ctx := context.Background()

	require.NoError(t, c.SaveSummary(ctx, "a@b.c", "m1", "x", "- one"))
	got, ok, err := c.GetSummary(ctx, "a@b.c", "m1", "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "- one", got)

	require.NoError(t, c.ClearCache(ctx, "a@b.c"))
	_, ok, err = c.GetSummary(ctx, "a@b.c", "m1", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummaryCache_LoadError(t *testing.T) {
	store := newMemInsights()
	store.loadErr = errors.New("disk I/O error")
	c := NewSummaryCache(store)

	_, _, err := c.GetSummary(context.Background(), "a@b.c", "m1", "x")
	assert.ErrorContains(t, err, "failed to load summary from cache")
	assert.ErrorIs(t, err, store.loadErr)
}

func newCachedInsight(t *testing.T, summarizer Summarizer, store InsightStore, account string) *InsightService {
	t.Helper()
	settings := NewSettingsService(newMemKV(), nil)
	require.NoError(t, settings.SaveAPIKey(context.Background(), "k"))
	return NewInsightService(summarizer, settings, nil,
		WithSummaryCache(NewSummaryCache(store), func() string { return account }))
}

func TestInsightService_CachedSummaryIsReused(t *testing.T) {
	store := newMemInsights()
	summarizer := &stubSummarizer{out: " - cached once \n"}
	email := &agent.EmailSummary{ID: "m1", Subject: "Hi"}

	first := newCachedInsight(t, summarizer, store, "ana@example.com")
	require.NoError(t, first.Select(context.Background(), email))
	assert.Equal(t, 1, summarizer.calls())
	assert.Equal(t, 1, store.len())

	// A new session for the same account reads the stored summary
	second := newCachedInsight(t, summarizer, store, "ana@example.com")
	require.NoError(t, second.Select(context.Background(), email))
	assert.Equal(t, 1, summarizer.calls())
	assert.Equal(t, Insight{EmailID: "m1", Summary: "- cached once"}, second.Current())

	// Another account has no entry
	other := newCachedInsight(t, summarizer, store, "bob@example.com")
	require.NoError(t, other.Select(context.Background(), email))
	assert.Equal(t, 2, summarizer.calls())
}

func TestInsightService_RegenerateBypassesCache(t *testing.T) {
	store := newMemInsights()
	summarizer := &stubSummarizer{out: "fresh"}
	svc := newCachedInsight(t, summarizer, store, "ana@example.com")
	email := &agent.EmailSummary{ID: "m1"}

	require.NoError(t, store.SaveInsight(context.Background(), "ana@example.com", "m1", string(DefaultModel), "stale"))
	require.NoError(t, svc.Select(context.Background(), email))
	assert.Equal(t, "stale", svc.Current().Summary)
	assert.Equal(t, 0, summarizer.calls())

	require.NoError(t, svc.Regenerate(context.Background(), email))
	assert.Equal(t, "fresh", svc.Current().Summary)
	assert.Equal(t, 1, summarizer.calls())
	got, _, _ := store.LoadInsight(context.Background(), "ana@example.com", "m1", string(DefaultModel))
	assert.Equal(t, "fresh", got)
}

func TestInsightService_CacheSkippedWithoutAccount(t *testing.T) {
	store := newMemInsights()
	summarizer := &stubSummarizer{out: "sum"}
	svc := newCachedInsight(t, summarizer, store, "")

	require.NoError(t, svc.Select(context.Background(), &agent.EmailSummary{ID: "m1"}))
	assert.Equal(t, 1, summarizer.calls())
	assert.Zero(t, store.saves)
}

func TestInsightService_FailuresAreNotCached(t *testing.T) {
	store := newMemInsights()
	summarizer := &stubSummarizer{err: errors.New("boom")}
	svc := newCachedInsight(t, summarizer, store, "ana@example.com")

	err := svc.Select(context.Background(), &agent.EmailSummary{ID: "m1"})
	require.Error(t, err)
	assert.Zero(t, store.saves)
}

func TestInsightService_LookupErrorFallsBackToSummarizer(t *testing.T) {
	store := newMemInsights()
	store.loadErr = errors.New("locked")
	summarizer := &stubSummarizer{out: "sum"}
	svc := newCachedInsight(t, summarizer, store, "ana@example.com")

	require.NoError(t, svc.Select(context.Background(), &agent.EmailSummary{ID: "m1"}))
	assert.Equal(t, "sum", svc.Current().Summary)
	assert.Equal(t, 1, summarizer.calls())
}
