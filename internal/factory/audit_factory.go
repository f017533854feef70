package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cypheral1/phish-shiled/internal/adapters/audit"
	"github.com/cypheral1/phish-shiled/internal/config"
	"github.com/cypheral1/phish-shiled/internal/core"
	"go.uber.org/zap"
)

// AuditFactory creates audit logs based on configuration
type AuditFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAuditFactory creates a new audit factory
func NewAuditFactory(cfg *config.Config, logger *zap.Logger) *AuditFactory {
	return &AuditFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAuditLogger creates an audit log based on the configuration
func (f *AuditFactory) CreateAuditLogger() (core.AuditLogger, error) {
	auditCfg := f.cfg.GetAudit()

	switch auditCfg.Type {
	case "memory":
		return audit.NewMemoryLog(f.logger, auditCfg.MemoryCapacity), nil
	case "csv":
		if err := ensureDir(auditCfg.CSVPath); err != nil {
			return nil, fmt.Errorf("failed to create CSV directory: %w", err)
		}
		return audit.NewCSVLog(auditCfg.CSVPath, f.logger), nil
	case "sqlite":
		if err := ensureDir(auditCfg.SQLitePath); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return audit.NewSQLiteLog(auditCfg.SQLitePath, f.logger)
	case "mysql":
		return audit.NewMySQLLog(auditCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("%w: %s", audit.ErrUnsupported, auditCfg.Type)
	}
}

// IsAuditEnabled returns whether analyses are recorded
func (f *AuditFactory) IsAuditEnabled() bool {
	return f.cfg.GetAudit().Enabled
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
