package factory

import (
	"fmt"
	"os"

	"github.com/cypheral1/phish-shiled/internal/adapters/filter"
	"github.com/cypheral1/phish-shiled/internal/config"
	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/cypheral1/phish-shiled/internal/ports"
	"github.com/cypheral1/phish-shiled/internal/utils"
	"go.uber.org/zap"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.PhishingService
	textProcessor *utils.TextProcessor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.PhishingService,
	textProcessor *utils.TextProcessor,
) *FilterFactory {
	return &FilterFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		textProcessor: textProcessor,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	serverCfg := f.cfg.GetServer()

	switch serverCfg.FilterType {
	case "http":
		return filter.NewHTTPFilter(
			f.service,
			f.logger,
			f.textProcessor,
			serverCfg.ListenAddress,
			serverCfg.MaxBodySize,
			serverCfg.ShutdownTimeout,
		), nil
	case "postfix":
		return filter.NewPostfixFilter(f.service, f.logger, f.textProcessor, f.postfixOptions(serverCfg)), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			f.textProcessor,
			os.Stdout,
			f.cfg.GetBool("cli.verbose"),
			f.cfg.GetBool("cli.json"),
		)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", serverCfg.FilterType)
	}
}

func (f *FilterFactory) postfixOptions(serverCfg config.ServerConfig) filter.PostfixOptions {
	postfixCfg := f.cfg.GetPostfix()
	return filter.PostfixOptions{
		ListenAddress:    f.cfg.GetSMTP().ListenAddress,
		BlockPhishing:    serverCfg.BlockPhishing,
		BlockLevel:       core.ParseRiskLevel(serverCfg.BlockLevel),
		ScoreHeader:      serverCfg.Headers.Score,
		LevelHeader:      serverCfg.Headers.Level,
		ReasonsHeader:    serverCfg.Headers.Reasons,
		MaxReasonsLength: serverCfg.Headers.MaxReasonsLength,
		ModifySubject:    serverCfg.ModifySubject,
		SubjectPrefix:    serverCfg.SubjectPrefix,
		PostfixEnabled:   postfixCfg.Enabled,
		PostfixAddress:   postfixCfg.Address,
		PostfixPort:      postfixCfg.Port,
	}
}
