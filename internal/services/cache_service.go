package services

import (
	"context"
	"fmt"
	"strings"
)

// SummaryCache validates and forwards insight cache calls to a store. A nil
// *SummaryCache is valid and caches nothing.
type SummaryCache struct {
	store InsightStore
}

// NewSummaryCache creates a summary cache over store
func NewSummaryCache(store InsightStore) *SummaryCache {
	return &SummaryCache{store: store}
}

// GetSummary returns the cached summary for (account, message, model)
func (c *SummaryCache) GetSummary(ctx context.Context, accountEmail, messageID, model string) (string, bool, error) {
	if c == nil || c.store == nil {
		return "", false, fmt.Errorf("summary cache not available")
	}
	if strings.TrimSpace(accountEmail) == "" || strings.TrimSpace(messageID) == "" {
		return "", false, fmt.Errorf("accountEmail and messageID cannot be empty")
	}

	summary, found, err := c.store.LoadInsight(ctx, accountEmail, messageID, model)
	if err != nil {
		return "", false, fmt.Errorf("failed to load summary from cache: %w", err)
	}
	return summary, found, nil
}

// SaveSummary stores summary for (account, message, model)
func (c *SummaryCache) SaveSummary(ctx context.Context, accountEmail, messageID, model, summary string) error {
	if c == nil || c.store == nil {
		return fmt.Errorf("summary cache not available")
	}
	if strings.TrimSpace(accountEmail) == "" || strings.TrimSpace(messageID) == "" || strings.TrimSpace(summary) == "" {
		return fmt.Errorf("accountEmail, messageID, and summary cannot be empty")
	}

	if err := c.store.SaveInsight(ctx, accountEmail, messageID, model, summary); err != nil {
		return fmt.Errorf("failed to save summary to cache: %w", err)
	}
	return nil
}

// ClearCache drops every cached summary of an account
func (c *SummaryCache) ClearCache(ctx context.Context, accountEmail string) error {
	if c == nil || c.store == nil {
		return nil
	}
	if strings.TrimSpace(accountEmail) == "" {
		return fmt.Errorf("accountEmail cannot be empty")
	}

	if err := c.store.DeleteInsights(ctx, accountEmail); err != nil {
		return fmt.Errorf("failed to clear summary cache: %w", err)
	}
	return nil
}

// enabled reports whether lookups can be made for accountEmail
func (c *SummaryCache) enabled(accountEmail string) bool {
	return c != nil && c.store != nil && strings.TrimSpace(accountEmail) != ""
}
