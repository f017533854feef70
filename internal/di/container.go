package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/cypheral1/phish-shiled/internal/config"
	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/cypheral1/phish-shiled/internal/factory"
	"github.com/cypheral1/phish-shiled/internal/logging"
	"github.com/cypheral1/phish-shiled/internal/ports"
	"github.com/cypheral1/phish-shiled/internal/utils"
	"github.com/cypheral1/phish-shiled/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
// for the long running server
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register audit log
	if err := container.Provide(func(f *factory.AuditFactory) (core.AuditLogger, error) {
		return f.CreateAuditLogger()
	}); err != nil {
		return nil, err
	}

	// Register phishing service
	if err := container.Provide(func(
		analyzer core.Analyzer,
		auditLog core.AuditLogger,
		logger *zap.Logger,
		f *factory.AuditFactory,
		checker *whitelist.Checker,
	) *core.PhishingService {
		return core.NewPhishingService(analyzer, auditLog, logger, f.IsAuditEnabled(), checker)
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

// provideCommon registers what the server and the CLI share: the text
// processor, the factories, the detector and the whitelist
func provideCommon(container *dig.Container) error {
	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewDetectorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewAuditFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return err
	}

	// Register analyzer
	if err := container.Provide(func(f *factory.DetectorFactory) core.Analyzer {
		return f.CreateDetector()
	}); err != nil {
		return err
	}

	// Register whitelist
	if err := container.Provide(func(f *factory.DetectorFactory) *whitelist.Checker {
		return f.CreateWhitelist()
	}); err != nil {
		return err
	}

	return nil
}
