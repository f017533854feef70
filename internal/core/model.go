package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the coarse band a final score falls into
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskLevelForScore maps a final score onto its band
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 75:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 25:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Rank orders risk levels so they can be compared
func (l RiskLevel) Rank() int {
	switch l {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}

// ParseRiskLevel parses a risk level name, defaulting to CRITICAL for unknown values
func ParseRiskLevel(s string) RiskLevel {
	level := RiskLevel(strings.ToUpper(strings.TrimSpace(s)))
	switch level {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return level
	default:
		return RiskCritical
	}
}

// AttachmentClass is the classification of an attachment by extension
type AttachmentClass string

const (
	AttachmentRisky  AttachmentClass = "risky"
	AttachmentOffice AttachmentClass = "office"
	AttachmentBenign AttachmentClass = "benign"
)

// Headers holds the few headers the detector looks at
type Headers struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	To      string `json:"to"`
}

// URLFinding is the per-URL analysis outcome
type URLFinding struct {
	URL     string   `json:"url"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// AttachmentFinding is a filename found in the email and its class
type AttachmentFinding struct {
	Filename string          `json:"filename"`
	Class    AttachmentClass `json:"class"`
}

// ContentStats carries counters gathered during analysis
type ContentStats struct {
	UrgencyKeywordCount  int `json:"urgency_keyword_count"`
	LinkCount            int `json:"link_count"`
	AttachmentCount      int `json:"attachment_count"`
	RiskyAttachmentCount int `json:"risky_attachment_count"`
}

// AnalysisResult represents the result of phishing analysis
type AnalysisResult struct {
	Score              int                 `json:"score"`
	RiskLevel          RiskLevel           `json:"risk_level"`
	Reasons            []string            `json:"reasons"`
	URLFindings        []URLFinding        `json:"url_findings"`
	AttachmentFindings []AttachmentFinding `json:"attachment_findings"`
	ContentStats       ContentStats        `json:"content_stats"`
	Headers            Headers             `json:"headers"`
}

// AuditEntry is one row of the analysis audit log
type AuditEntry struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Score     int       `json:"score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Reasons   []string  `json:"reasons"`
}

// NewAuditEntry builds an audit entry for a finished analysis
func NewAuditEntry(result *AnalysisResult, at time.Time) *AuditEntry {
	reasons := make([]string, len(result.Reasons))
	copy(reasons, result.Reasons)
	return &AuditEntry{
		ID:        uuid.New(),
		Timestamp: at,
		From:      result.Headers.From,
		Subject:   result.Headers.Subject,
		Score:     result.Score,
		RiskLevel: result.RiskLevel,
		Reasons:   reasons,
	}
}
