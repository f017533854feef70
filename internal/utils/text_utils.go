package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
)

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := truncateUTF8(text, maxSize)

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// TruncateLine shortens text to a single line of at most maxSize bytes,
// suitable for a mail header value
func (tp *TextProcessor) TruncateLine(text string, maxSize int) string {
	line := strings.Join(strings.Fields(text), " ")
	if maxSize <= 0 || len(line) <= maxSize {
		return line
	}
	if maxSize <= 3 {
		return truncateUTF8(line, maxSize)
	}
	return truncateUTF8(line, maxSize-3) + "..."
}

func truncateUTF8(text string, maxSize int) string {
	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated
}

// SanitizeUTF8 drops a leading byte order mark and replaces invalid UTF-8
// sequences with the Unicode replacement character
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	sanitized, err := unicode.UTF8BOM.NewDecoder().String(text)
	if err != nil {
		tp.logger.Warn("Failed to decode text as UTF-8", zap.Error(err))
		return strings.ToValidUTF8(text, "�")
	}

	if len(sanitized) != len(text) {
		tp.logger.Debug("Text sanitized",
			zap.Int("original_size", len(text)),
			zap.Int("sanitized_size", len(sanitized)))
	}
	return sanitized
}

// ProcessText truncates and sanitizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.SanitizeUTF8(tp.TruncateText(text, maxSize))
}
