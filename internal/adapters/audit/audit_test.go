package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func entryAt(minute int, from string, score int) *core.AuditEntry {
	return &core.AuditEntry{
		ID:        uuid.New(),
		Timestamp: time.Date(2024, 5, 1, 12, minute, 0, 0, time.UTC),
		From:      from,
		Subject:   "Subject " + from,
		Score:     score,
		RiskLevel: core.RiskLevelForScore(score),
		Reasons:   []string{"first reason", "second, with comma"},
	}
}

type auditLog interface {
	core.AuditLogger
	Close() error
}

// exerciseLog records three entries and checks they come back newest first
func exerciseLog(t *testing.T, log auditLog) {
	t.Helper()
	ctx := context.Background()
	defer log.Close()

	empty, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	in := []*core.AuditEntry{
		entryAt(1, "a@example.com", 10),
		entryAt(2, "b@example.com", 55),
		entryAt(3, "c@example.com", 90),
	}
	for _, e := range in {
		require.NoError(t, log.Record(ctx, e))
	}

	got, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i, want := range []*core.AuditEntry{in[2], in[1]} {
		assert.True(t, want.Timestamp.Equal(got[i].Timestamp), "timestamp %d", i)
		assert.Equal(t, want.From, got[i].From)
		assert.Equal(t, want.Subject, got[i].Subject)
		assert.Equal(t, want.Score, got[i].Score)
		assert.Equal(t, want.RiskLevel, got[i].RiskLevel)
		assert.Equal(t, want.Reasons, got[i].Reasons)
	}

	all, err := log.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryLog(t *testing.T) {
	exerciseLog(t, NewMemoryLog(zap.NewNop(), 10))
}

func TestMemoryLogEvictsOldest(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog(zap.NewNop(), 2)

	for i := 1; i <= 3; i++ {
		require.NoError(t, log.Record(ctx, entryAt(i, "x@example.com", i)))
	}

	got, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Score)
	assert.Equal(t, 2, got[1].Score)
}

func TestMemoryLogCopiesReasons(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog(zap.NewNop(), 2)
	e := entryAt(1, "x@example.com", 1)
	require.NoError(t, log.Record(ctx, e))

	e.Reasons[0] = "changed"

	got, err := log.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "first reason", got[0].Reasons[0])
}

func TestCSVLog(t *testing.T) {
	exerciseLog(t, NewCSVLog(filepath.Join(t.TempDir(), "flagged.csv"), zap.NewNop()))
}

func TestCSVLogFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flagged.csv")
	log := NewCSVLog(path, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, log.Record(ctx, entryAt(1, "a@example.com", 80)))
	require.NoError(t, log.Record(ctx, entryAt(2, "b@example.com", 20)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp,From,Subject,Risk Score,Risk Level,Reasons", lines[0])
	assert.Equal(t, `2024-05-01T12:01:00Z,a@example.com,Subject a@example.com,80,CRITICAL,"first reason; second, with comma"`, lines[1])
}

func TestCSVLogAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flagged.csv")
	ctx := context.Background()

	require.NoError(t, NewCSVLog(path, zap.NewNop()).Record(ctx, entryAt(1, "a@example.com", 80)))
	require.NoError(t, NewCSVLog(path, zap.NewNop()).Record(ctx, entryAt(2, "b@example.com", 20)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "Timestamp,From"))

	got, err := NewCSVLog(path, zap.NewNop()).Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLiteLog(t *testing.T) {
	log, err := NewSQLiteLog(filepath.Join(t.TempDir(), "audit.db"), zap.NewNop())
	require.NoError(t, err)
	exerciseLog(t, log)
}

func TestSQLiteLogKeepsID(t *testing.T) {
	log, err := NewSQLiteLog(filepath.Join(t.TempDir(), "audit.db"), zap.NewNop())
	require.NoError(t, err)
	defer log.Close()

	ctx := context.Background()
	e := entryAt(1, "a@example.com", 50)
	require.NoError(t, log.Record(ctx, e))

	got, err := log.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e.ID, got[0].ID)
}

func TestReasonsRoundTrip(t *testing.T) {
	assert.Equal(t, []string{}, splitReasons(""))
	assert.Equal(t, []string{"a", "b"}, splitReasons(joinReasons([]string{"a", "b"})))
}

func TestEncodedReasonsKeepSeparator(t *testing.T) {
	reasons := []string{"risky attachment: a; b.exe", "plain"}

	stored, err := encodeReasons(reasons)
	require.NoError(t, err)
	assert.Equal(t, reasons, decodeReasons(stored))

	empty, err := encodeReasons(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
	assert.Equal(t, []string{}, decodeReasons(empty))

	// rows written as joined text still read back
	assert.Equal(t, []string{"a", "b"}, decodeReasons("a; b"))
	assert.Equal(t, []string{"[bracketed", "x"}, decodeReasons("[bracketed; x"))
}

func TestSQLiteLogKeepsReasonsWithSeparator(t *testing.T) {
	log, err := NewSQLiteLog(filepath.Join(t.TempDir(), "audit.db"), zap.NewNop())
	require.NoError(t, err)
	defer log.Close()

	ctx := context.Background()
	e := entryAt(1, "a@example.com", 90)
	e.Reasons = []string{"risky attachment: a; b.exe"}
	require.NoError(t, log.Record(ctx, e))

	got, err := log.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e.Reasons, got[0].Reasons)
}

func TestCSVLogDerivesStableIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flagged.csv")
	log := NewCSVLog(path, zap.NewNop())
	ctx := context.Background()

	// identical rows still get distinct ids
	require.NoError(t, log.Record(ctx, entryAt(1, "a@example.com", 80)))
	require.NoError(t, log.Record(ctx, entryAt(1, "a@example.com", 80)))

	first, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.NotEqual(t, uuid.Nil, first[0].ID)
	assert.NotEqual(t, uuid.Nil, first[1].ID)
	assert.NotEqual(t, first[0].ID, first[1].ID)

	again, err := NewCSVLog(path, zap.NewNop()).Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, again[0].ID)
	assert.Equal(t, first[1].ID, again[1].ID)
}
