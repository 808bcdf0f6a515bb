package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// InsightStore caches generated email summaries per account and model
type InsightStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewInsightStore creates an insight cache from a base store
func NewInsightStore(store *Store) *InsightStore {
	if store == nil {
		return nil
	}
	return &InsightStore{db: store.DB(), now: time.Now}
}

// SaveInsight upserts the summary for (account, message, model)
func (s *InsightStore) SaveInsight(ctx context.Context, accountEmail, messageID, model, summary string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("insight store not initialized")
	}
	if strings.TrimSpace(accountEmail) == "" || strings.TrimSpace(messageID) == "" || strings.TrimSpace(summary) == "" {
		return fmt.Errorf("invalid insight inputs")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO insights(account_email, message_id, model, summary, updated_at)
VALUES(?,?,?,?,?)
ON CONFLICT(account_email, message_id, model) DO UPDATE SET summary=excluded.summary, updated_at=excluded.updated_at;
`, accountEmail, messageID, model, summary, s.now().Unix())
	if err != nil {
		return fmt.Errorf("save insight %s: %w", messageID, err)
	}
	return nil
}

// LoadInsight returns a cached summary if present
func (s *InsightStore) LoadInsight(ctx context.Context, accountEmail, messageID, model string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, fmt.Errorf("insight store not initialized")
	}
	var out string
	err := s.db.QueryRowContext(ctx,
		`SELECT summary FROM insights WHERE account_email=? AND message_id=? AND model=?`,
		accountEmail, messageID, model).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load insight %s: %w", messageID, err)
	}
	return out, true, nil
}

// DeleteInsights removes every cached summary of an account
func (s *InsightStore) DeleteInsights(ctx context.Context, accountEmail string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("insight store not initialized")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM insights WHERE account_email=?`, accountEmail); err != nil {
		return fmt.Errorf("delete insights: %w", err)
	}
	return nil
}
