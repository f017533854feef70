package audit

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLLog is a MySQL implementation of the audit log
type MySQLLog struct {
	sqlLog
}

// NewMySQLLog connects to MySQL and creates the audit table if needed
func NewMySQLLog(dsn string, logger *zap.Logger) (*MySQLLog, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS phishing_audit (
			id CHAR(36) PRIMARY KEY,
			recorded_at VARCHAR(32) NOT NULL,
			sender VARCHAR(512),
			subject TEXT,
			score INT,
			risk_level VARCHAR(16),
			reasons TEXT,
			INDEX idx_recorded_at (recorded_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Info("Connected to MySQL audit log")
	return &MySQLLog{sqlLog{db: db, logger: logger, driver: "mysql"}}, nil
}
