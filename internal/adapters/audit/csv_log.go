package audit

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var csvHeader = []string{"Timestamp", "From", "Subject", "Risk Score", "Risk Level", "Reasons"}

// CSVLog appends audit entries to a CSV file. The header row is written when
// the file is created. Reasons share one column joined by ReasonSeparator, so
// a reason that itself contains the separator reads back split in two.
type CSVLog struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewCSVLog creates a CSV audit log at path
func NewCSVLog(path string, logger *zap.Logger) *CSVLog {
	return &CSVLog{
		path:   path,
		logger: logger,
	}
}

// Record appends one row
func (l *CSVLog) Record(ctx context.Context, entry *core.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat audit log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("failed to write audit log header: %w", err)
		}
		l.logger.Info("Created audit log", zap.String("path", l.path))
	}

	row := []string{
		entry.Timestamp.Format(time.RFC3339),
		entry.From,
		entry.Subject,
		strconv.Itoa(entry.Score),
		string(entry.RiskLevel),
		joinReasons(entry.Reasons),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write audit log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush audit log: %w", err)
	}
	return nil
}

// Recent reads the file back and returns up to limit rows, newest first.
// A missing file yields no entries.
func (l *CSVLog) Recent(ctx context.Context, limit int) ([]core.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []core.AuditEntry{}, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeader)

	var all []core.AuditEntry
	for line := 0; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read audit log: %w", err)
		}
		if line == 0 {
			continue
		}

		entry, err := parseCSVRow(line, rec)
		if err != nil {
			l.logger.Warn("Skipping malformed audit row", zap.Int("line", line+1), zap.Error(err))
			continue
		}
		all = append(all, entry)
	}

	limit = normalizeLimit(limit)
	out := make([]core.AuditEntry, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// csvRowNamespace scopes the ids derived for CSV rows
var csvRowNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("phish-shield:audit:csv"))

// parseCSVRow converts one data row. The file has no id column, so the id is
// derived from the row's line number and contents and stays the same across
// reads of an append-only file.
func parseCSVRow(line int, rec []string) (core.AuditEntry, error) {
	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return core.AuditEntry{}, fmt.Errorf("bad timestamp: %w", err)
	}
	score, err := strconv.Atoi(rec[3])
	if err != nil {
		return core.AuditEntry{}, fmt.Errorf("bad score: %w", err)
	}
	key := strconv.Itoa(line) + "\x00" + strings.Join(rec, "\x00")
	return core.AuditEntry{
		ID:        uuid.NewSHA1(csvRowNamespace, []byte(key)),
		Timestamp: ts,
		From:      rec[1],
		Subject:   rec[2],
		Score:     score,
		RiskLevel: core.RiskLevel(rec[4]),
		Reasons:   splitReasons(rec[5]),
	}, nil
}

// Close is a no-op; the file is opened per write
func (l *CSVLog) Close() error {
	return nil
}
