package di

import (
	"flag"
	"fmt"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/cypheral1/phish-shiled/internal/config"
	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/cypheral1/phish-shiled/internal/factory"
	"github.com/cypheral1/phish-shiled/internal/logging"
	"github.com/cypheral1/phish-shiled/internal/ports"
	"github.com/cypheral1/phish-shiled/internal/whitelist"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Input flags
	InputFile string
	MIME      bool

	// Output flags
	JSON    bool
	Verbose bool
	JSONLog bool

	// Detection flags
	LookalikeDistance int
	Whitelist         string

	// Audit and configuration
	Audit      bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct. A
// positional argument is taken as the input file when -file is not given.
func ParseFlags(fs *flag.FlagSet, args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}

	fs.StringVar(&flags.InputFile, "file", "", "Input email file (or pass it as the first argument)")
	fs.BoolVar(&flags.MIME, "mime", false, "Decode the input as a MIME (.eml) message first")

	fs.BoolVar(&flags.JSON, "json", false, "Print the analysis result as JSON")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging and show a body preview")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	fs.IntVar(&flags.LookalikeDistance, "lookalike-distance", 2, "Maximum edit distance for brand lookalike senders (0 disables)")
	fs.StringVar(&flags.Whitelist, "whitelist", "", "Comma separated sender domains that are never scored")

	fs.BoolVar(&flags.Audit, "audit", false, "Append the result to the configured audit log")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if flags.InputFile == "" && fs.NArg() > 0 {
		flags.InputFile = fs.Arg(0)
	}
	if flags.InputFile == "" {
		return nil, fmt.Errorf("no email file given")
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.Load(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			cfg.Set("server.filter_type", "cli")
			cfg.Set("cli.verbose", flags.Verbose)
			cfg.Set("cli.json", flags.JSON)
			cfg.Set("audit.enabled", flags.Audit)
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register audit log; nil unless -audit was given
	if err := container.Provide(func(f *factory.AuditFactory) (core.AuditLogger, error) {
		if !f.IsAuditEnabled() {
			return nil, nil
		}
		return f.CreateAuditLogger()
	}); err != nil {
		return nil, err
	}

	// Register phishing service
	if err := container.Provide(func(
		analyzer core.Analyzer,
		auditLog core.AuditLogger,
		logger *zap.Logger,
		checker *whitelist.Checker,
	) *core.PhishingService {
		return core.NewPhishingService(analyzer, auditLog, logger, auditLog != nil, checker)
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)
	v.Set("cli.json", flags.JSON)

	v.Set("detector.lookalike_distance", flags.LookalikeDistance)
	if flags.Whitelist != "" {
		v.Set("phishing.whitelisted_domains", strings.Split(flags.Whitelist, ","))
	}

	v.Set("audit.enabled", flags.Audit)

	return config.NewFromViper(v)
}
