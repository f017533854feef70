package ports

import (
	"context"

	"github.com/cypheral1/phish-shiled/internal/core"
)

// EmailFilter defines the interface for the front ends that feed email text
// to the phishing service
type EmailFilter interface {
	// ProcessEmail analyzes raw email text and returns the result
	ProcessEmail(ctx context.Context, text string) (*core.AnalysisResult, error)

	// Start starts the email filter service
	Start() error

	// Stop stops the email filter service
	Stop() error
}
