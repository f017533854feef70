package audit

import (
	"context"
	"sync"

	"github.com/cypheral1/phish-shiled/internal/core"
	"go.uber.org/zap"
)

// MemoryLog keeps the most recent audit entries in process memory
type MemoryLog struct {
	entries  []core.AuditEntry
	capacity int
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewMemoryLog creates an in-memory audit log holding at most capacity entries
func NewMemoryLog(logger *zap.Logger, capacity int) *MemoryLog {
	if capacity <= 0 {
		capacity = DefaultRecentLimit
	}
	return &MemoryLog{
		entries:  make([]core.AuditEntry, 0, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// Record appends an entry, evicting the oldest one when full
func (l *MemoryLog) Record(ctx context.Context, entry *core.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := *entry
	e.Reasons = append([]string(nil), entry.Reasons...)

	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
		l.logger.Debug("Evicted oldest audit entry", zap.Int("capacity", l.capacity))
	}
	l.entries = append(l.entries, e)
	return nil
}

// Recent returns up to limit entries, newest first
func (l *MemoryLog) Recent(ctx context.Context, limit int) ([]core.AuditEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	limit = normalizeLimit(limit)
	out := make([]core.AuditEntry, 0, min(limit, len(l.entries)))
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}

// Close is a no-op
func (l *MemoryLog) Close() error {
	return nil
}
