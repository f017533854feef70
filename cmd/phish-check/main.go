package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cypheral1/phish-shiled/internal/adapters/filter"
	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/cypheral1/phish-shiled/internal/di"
	"github.com/cypheral1/phish-shiled/internal/ports"
	"go.uber.org/zap"
)

func main() {
	fs := flag.NewFlagSet("phish-check", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: phish-check [flags] <email-file>\n\n")
		fs.PrintDefaults()
	}

	flags, err := di.ParseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	if _, err := os.Stat(flags.InputFile); err != nil {
		fmt.Fprintf(os.Stderr, "File not found: %s\n", flags.InputFile)
		os.Exit(1)
	}

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run reads the email, prints the report and closes the audit log
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	emailFilter ports.EmailFilter,
	auditLog core.AuditLogger,
) error {
	defer logger.Sync()
	defer func() {
		if closer, ok := auditLog.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close audit log", zap.Error(err))
			}
		}
	}()

	raw, err := os.ReadFile(flags.InputFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", flags.InputFile, err)
	}
	logger.Info("Reading email from file", zap.String("file", flags.InputFile))

	text := string(raw)
	if flags.MIME {
		text, err = filter.NormalizeMessage(raw)
		if err != nil {
			return err
		}
	}

	if _, err := emailFilter.ProcessEmail(context.Background(), text); err != nil {
		if errors.Is(err, core.ErrEmptyInput) {
			return fmt.Errorf("%s contains no email text", flags.InputFile)
		}
		return err
	}
	return nil
}
