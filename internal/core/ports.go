package core

import (
	"context"
)

// Analyzer scores a raw email. Implementations must be pure: the same text
// always yields the same result.
type Analyzer interface {
	Analyze(text string) *AnalysisResult
}

// AuditLogger defines the interface for the append-only analysis log
type AuditLogger interface {
	// Record appends an entry to the log
	Record(ctx context.Context, entry *AuditEntry) error

	// Recent returns up to limit entries, newest first
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)
}
