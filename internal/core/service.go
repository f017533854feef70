package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cypheral1/phish-shiled/internal/whitelist"
	"go.uber.org/zap"
)

// ErrEmptyInput is returned when there is no email text to analyze
var ErrEmptyInput = errors.New("email text is empty")

// WhitelistedReason is the only reason reported for a trusted sender
const WhitelistedReason = "sender domain is whitelisted"

// PhishingService is the core service for phishing detection. It sits
// between the adapters and the analyzer: it validates input, applies the
// sender whitelist and writes the audit log.
type PhishingService struct {
	analyzer     Analyzer
	audit        AuditLogger
	logger       *zap.Logger
	auditEnabled bool
	whitelist    *whitelist.Checker
	now          func() time.Time
}

// NewPhishingService creates a new phishing service
func NewPhishingService(
	analyzer Analyzer,
	audit AuditLogger,
	logger *zap.Logger,
	auditEnabled bool,
	checker *whitelist.Checker,
) *PhishingService {
	return &PhishingService{
		analyzer:     analyzer,
		audit:        audit,
		logger:       logger,
		auditEnabled: auditEnabled && audit != nil,
		whitelist:    checker,
		now:          time.Now,
	}
}

// AnalyzeEmail scores an email and records the outcome
func (s *PhishingService) AnalyzeEmail(ctx context.Context, text string) (*AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	result := s.analyzer.Analyze(text)

	if s.whitelist.IsWhitelisted(result.Headers.From) {
		s.logger.Info("Skipping phishing score for whitelisted domain",
			zap.String("sender", result.Headers.From),
			zap.String("action", "whitelist_bypass"))
		result.Score = 0
		result.RiskLevel = RiskLow
		result.Reasons = []string{WhitelistedReason}
	}

	if s.auditEnabled {
		if err := s.audit.Record(ctx, NewAuditEntry(result, s.now())); err != nil {
			s.logger.Error("Failed to write audit log", zap.Error(err))
		}
	}

	s.logger.Debug("Analyzed email",
		zap.String("from", result.Headers.From),
		zap.Int("score", result.Score),
		zap.String("risk_level", string(result.RiskLevel)))

	return result, nil
}

// History returns the most recent audit entries
func (s *PhishingService) History(ctx context.Context, limit int) ([]AuditEntry, error) {
	if s.audit == nil {
		return []AuditEntry{}, nil
	}
	return s.audit.Recent(ctx, limit)
}

// IsBlocked reports whether a result reaches the given blocking level
func (s *PhishingService) IsBlocked(result *AnalysisResult, level RiskLevel) bool {
	return result.RiskLevel.Rank() >= level.Rank()
}
