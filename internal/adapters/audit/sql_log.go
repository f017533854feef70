package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sqlLog is the storage shared by the SQLite and MySQL audit logs. Both use
// the same table layout and placeholder style.
type sqlLog struct {
	db     *sql.DB
	logger *zap.Logger
	driver string
}

const insertEntry = `
	INSERT INTO phishing_audit (id, recorded_at, sender, subject, score, risk_level, reasons)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

const selectRecent = `
	SELECT id, recorded_at, sender, subject, score, risk_level, reasons
	FROM phishing_audit
	ORDER BY recorded_at DESC
	LIMIT ?
`

// Record stores an entry
func (l *sqlLog) Record(ctx context.Context, entry *core.AuditEntry) error {
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	reasons, err := encodeReasons(entry.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}

	_, err = l.db.ExecContext(ctx, insertEntry,
		id.String(),
		formatTime(entry.Timestamp),
		entry.From,
		entry.Subject,
		entry.Score,
		string(entry.RiskLevel),
		reasons,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (l *sqlLog) Recent(ctx context.Context, limit int) ([]core.AuditEntry, error) {
	rows, err := l.db.QueryContext(ctx, selectRecent, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]core.AuditEntry, 0)
	for rows.Next() {
		var (
			entry             core.AuditEntry
			id, recorded, lvl string
			reasons           string
		)
		if err := rows.Scan(&id, &recorded, &entry.From, &entry.Subject, &entry.Score, &lvl, &reasons); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		if entry.ID, err = uuid.Parse(id); err != nil {
			l.logger.Warn("Skipping audit entry with invalid id", zap.String("id", id), zap.Error(err))
			continue
		}
		if entry.Timestamp, err = parseTime(recorded); err != nil {
			l.logger.Warn("Skipping audit entry with invalid timestamp", zap.String("id", id), zap.Error(err))
			continue
		}
		entry.RiskLevel = core.RiskLevel(lvl)
		entry.Reasons = decodeReasons(reasons)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return entries, nil
}

// Close closes the database connection
func (l *sqlLog) Close() error {
	if err := l.db.Close(); err != nil {
		l.logger.Error("Failed to close audit database", zap.String("driver", l.driver), zap.Error(err))
		return err
	}
	return nil
}
