package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/cypheral1/phish-shiled/internal/utils"
	"github.com/jaytaylor/html2text"
	"go.uber.org/zap"
)

const previewSize = 500

// CliFilter implements a command-line interface for phishing detection
type CliFilter struct {
	service       *core.PhishingService
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	out           io.Writer
	verbose       bool
	jsonOutput    bool
}

// NewCliFilter creates a new CLI filter that writes its report to out
func NewCliFilter(
	service *core.PhishingService,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	out io.Writer,
	verbose bool,
	jsonOutput bool,
) (*CliFilter, error) {
	if out == nil {
		return nil, fmt.Errorf("cli filter needs an output writer")
	}
	return &CliFilter{
		service:       service,
		logger:        logger,
		textProcessor: textProcessor,
		out:           out,
		verbose:       verbose,
		jsonOutput:    jsonOutput,
	}, nil
}

// ProcessEmail analyzes the email and prints the report
func (f *CliFilter) ProcessEmail(ctx context.Context, text string) (*core.AnalysisResult, error) {
	text = f.textProcessor.SanitizeUTF8(text)
	f.logger.Debug("Processing email", zap.Int("size", len(text)))

	startTime := time.Now()
	result, err := f.service.AnalyzeEmail(ctx, text)
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		return nil, err
	}
	duration := time.Since(startTime)

	if f.jsonOutput {
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return nil, fmt.Errorf("failed to encode result: %w", err)
		}
		return result, nil
	}

	f.printSummary(text, result)
	f.printResult(result, duration)
	return result, nil
}

func (f *CliFilter) printSummary(text string, result *core.AnalysisResult) {
	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", result.Headers.From)
	fmt.Fprintf(f.out, "To: %s\n", result.Headers.To)
	fmt.Fprintf(f.out, "Subject: %s\n", result.Headers.Subject)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(text))

	if f.verbose {
		preview, err := html2text.FromString(text)
		if err != nil {
			f.logger.Debug("Falling back to raw preview", zap.Error(err))
			preview = text
		}
		preview = f.textProcessor.TruncateText(strings.TrimSpace(preview), previewSize)
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", preview)
	}
}

func (f *CliFilter) printResult(result *core.AnalysisResult, duration time.Duration) {
	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Phishing score: %d/100\n", result.Score)
	fmt.Fprintf(f.out, "Risk level: %s\n", result.RiskLevel)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	fmt.Fprintf(f.out, "\n=== Reasons ===\n")
	if len(result.Reasons) == 0 {
		fmt.Fprintf(f.out, "No suspicious indicators found\n")
	}
	for i, reason := range result.Reasons {
		fmt.Fprintf(f.out, "%2d. %s\n", i+1, reason)
	}

	var suspicious []core.URLFinding
	for _, u := range result.URLFindings {
		if u.Score > 0 {
			suspicious = append(suspicious, u)
		}
	}
	if len(suspicious) > 0 {
		fmt.Fprintf(f.out, "\n=== Suspicious URLs ===\n")
		for _, u := range suspicious {
			fmt.Fprintf(f.out, " - %s (score %d): %s\n", u.URL, u.Score, strings.Join(u.Reasons, "; "))
		}
	}

	if len(result.AttachmentFindings) > 0 {
		fmt.Fprintf(f.out, "\n=== Attachments ===\n")
		for _, a := range result.AttachmentFindings {
			fmt.Fprintf(f.out, " - %s (%s)\n", a.Filename, a.Class)
		}
	}

	stats := result.ContentStats
	fmt.Fprintf(f.out, "\n=== Stats ===\n")
	fmt.Fprintf(f.out, "Urgency keywords: %d\n", stats.UrgencyKeywordCount)
	fmt.Fprintf(f.out, "Links: %d\n", stats.LinkCount)
	fmt.Fprintf(f.out, "Attachments: %d (risky: %d)\n", stats.AttachmentCount, stats.RiskyAttachmentCount)
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
