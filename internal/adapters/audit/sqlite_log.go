package audit

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteLog is a SQLite implementation of the audit log
type SQLiteLog struct {
	sqlLog
}

// NewSQLiteLog opens (and if needed creates) the audit database at dbPath
func NewSQLiteLog(dbPath string, logger *zap.Logger) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS phishing_audit (
			id TEXT PRIMARY KEY,
			recorded_at TEXT NOT NULL,
			sender TEXT,
			subject TEXT,
			score INTEGER,
			risk_level TEXT,
			reasons TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_recorded_at ON phishing_audit(recorded_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	logger.Info("Opened SQLite audit log", zap.String("path", dbPath))
	return &SQLiteLog{sqlLog{db: db, logger: logger, driver: "sqlite3"}}, nil
}
