package filter

import (
	"testing"

	"github.com/cypheral1/phish-shiled/internal/adapters/audit"
	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/cypheral1/phish-shiled/internal/detector"
	"github.com/cypheral1/phish-shiled/internal/utils"
	"github.com/cypheral1/phish-shiled/internal/whitelist"
	"go.uber.org/zap"
)

const phishingMessage = "From: \"PayPal\" <support@paypa1.com>\r\n" +
	"To: victim@example.com\r\n" +
	"Subject: Verify your account\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"XYZ\"\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Dear User,\r\n" +
	"please verify immediately at http://bit.ly/x\r\n" +
	"--XYZ\r\n" +
	"Content-Type: application/octet-stream\r\n" +
	"Content-Disposition: attachment; filename=\"invoice.exe\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"TVqQAAMAAAAEAAAA\r\n" +
	"--XYZ--\r\n"

const cleanMessage = "From: Alice <alice@example.com>\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: Lunch tomorrow\r\n" +
	"\r\n" +
	"Hi Bob, are we still on for lunch tomorrow at noon?\r\n"

func newTestService(t *testing.T, whitelisted ...string) (*core.PhishingService, *audit.MemoryLog) {
	t.Helper()
	logger := zap.NewNop()
	log := audit.NewMemoryLog(logger, 10)
	checker := whitelist.NewChecker(whitelisted, logger)
	svc := core.NewPhishingService(detector.NewDetector(logger, nil, 2), log, logger, true, checker)
	return svc, log
}

func newTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(zap.NewNop())
}
