package factory

import (
	"github.com/cypheral1/phish-shiled/internal/config"
	"github.com/cypheral1/phish-shiled/internal/detector"
	"github.com/cypheral1/phish-shiled/internal/whitelist"
	"go.uber.org/zap"
)

// DetectorFactory creates the rule engine and the sender whitelist
type DetectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewDetectorFactory creates a new detector factory
func NewDetectorFactory(cfg *config.Config, logger *zap.Logger) *DetectorFactory {
	return &DetectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDetector creates a detector tuned by the detector.* settings. An
// empty brand list falls back to the built-in one.
func (f *DetectorFactory) CreateDetector() *detector.Detector {
	detectorCfg := f.cfg.GetDetector()

	brands := detectorCfg.BrandDomains
	if len(brands) == 0 {
		brands = nil
	}

	f.logger.Debug("Creating detector",
		zap.Int("brand_domains", len(brands)),
		zap.Int("lookalike_distance", detectorCfg.LookalikeDistance))

	return detector.NewDetector(f.logger, brands, detectorCfg.LookalikeDistance)
}

// CreateWhitelist creates the checker for phishing.whitelisted_domains
func (f *DetectorFactory) CreateWhitelist() *whitelist.Checker {
	return whitelist.NewChecker(f.cfg.GetWhitelistedDomains(), f.logger)
}
