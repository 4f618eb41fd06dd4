// Package journal keeps a local log of the attendance and session actions
// taken through the agent.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	KindCheckIn          = "check_in"
	KindCheckOut         = "check_out"
	KindClockIn          = "clock_in"
	KindClockOut         = "clock_out"
	KindImplicitClockOut = "implicit_clock_out"
	KindApproval         = "approval"
	KindDisapproval      = "disapproval"
)

// Entry is one journal row
type Entry struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Message   string            `json:"message"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Journal stores entries in the activity_log table
type Journal struct {
	db     *sql.DB
	now    func() time.Time
	logger *zap.Logger
}

// NewJournal creates a journal over an opened database
func NewJournal(db *sql.DB, logger *zap.Logger) *Journal {
	return &Journal{
		db:     db,
		now:    time.Now,
		logger: logger,
	}
}

// Record appends an entry
func (j *Journal) Record(ctx context.Context, kind, message string, attrs map[string]string) error {
	var attrData []byte
	if len(attrs) > 0 {
		var err error
		attrData, err = json.Marshal(attrs)
		if err != nil {
			return fmt.Errorf("failed to marshal attrs: %w", err)
		}
	}

	id := uuid.NewString()
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, kind, message, attrs, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, kind, message, string(attrData), j.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}

	j.logger.Debug("Journal entry recorded",
		zap.String("id", id),
		zap.String("kind", kind),
	)
	return nil
}

// List returns the newest entries first. kind filters when non-empty.
func (j *Journal) List(ctx context.Context, kind string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, kind, message, attrs, created_at FROM activity_log`
	args := []interface{}{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var attrs sql.NullString
		if err := rows.Scan(&e.ID, &e.Kind, &e.Message, &attrs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		if attrs.Valid && attrs.String != "" {
			if err := json.Unmarshal([]byte(attrs.String), &e.Attrs); err != nil {
				j.logger.Error("Failed to unmarshal journal attrs", zap.Error(err), zap.String("id", e.ID))
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal rows: %w", err)
	}
	return entries, nil
}

// Count returns the number of entries
func (j *Journal) Count(ctx context.Context) (int, error) {
	var count int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_log`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count journal entries: %w", err)
	}
	return count, nil
}

// Prune removes entries older than olderThan
func (j *Journal) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := j.now().Add(-olderThan).UTC()
	result, err := j.db.ExecContext(ctx, `DELETE FROM activity_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		j.logger.Info("Pruned journal entries", zap.Int64("count", rowsAffected))
	}
	return rowsAffected, nil
}
