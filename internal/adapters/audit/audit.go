// Package audit holds the append-only audit log backends: a CSV file that
// matches the historical flagged-email export, SQLite, MySQL and an
// in-memory log.
package audit

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrUnsupported is returned by the factory for an unknown audit.type
var ErrUnsupported = errors.New("unsupported audit log type")

// DefaultRecentLimit is used when Recent is called without a positive limit
const DefaultRecentLimit = 100

// ReasonSeparator joins reasons into a single column
const ReasonSeparator = "; "

// timestamps are stored in UTC with a fixed width so they sort as text
const timeLayout = "2006-01-02 15:04:05.000000"

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return limit
}

func joinReasons(reasons []string) string {
	return strings.Join(reasons, ReasonSeparator)
}

func splitReasons(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ReasonSeparator)
}

// encodeReasons stores reasons as a JSON array so reasons containing the
// separator survive the round trip
func encodeReasons(reasons []string) (string, error) {
	if reasons == nil {
		reasons = []string{}
	}
	b, err := json.Marshal(reasons)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeReasons reads a column written by encodeReasons. Anything that is not
// a JSON array is treated as separator-joined text.
func decodeReasons(stored string) []string {
	if strings.HasPrefix(stored, "[") {
		var reasons []string
		if err := json.Unmarshal([]byte(stored), &reasons); err == nil && reasons != nil {
			return reasons
		}
	}
	return splitReasons(stored)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
