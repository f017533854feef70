package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/cypheral1/phish-shiled/internal/utils"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// AnalysisErrorHeader is added when a message could not be analyzed
const AnalysisErrorHeader = "X-Phishing-Analysis-Error"

const (
	sessionAnalysisTimeout = 10 * time.Second
	reinjectDialTimeout    = 10 * time.Second
	reinjectTimeout        = 30 * time.Second
)

// PostfixOptions configures the content filter
type PostfixOptions struct {
	ListenAddress    string
	BlockPhishing    bool
	BlockLevel       core.RiskLevel
	ScoreHeader      string
	LevelHeader      string
	ReasonsHeader    string
	MaxReasonsLength int
	ModifySubject    bool
	SubjectPrefix    string
	PostfixEnabled   bool
	PostfixAddress   string
	PostfixPort      int
}

// PostfixFilter implements a Postfix content filter. Postfix hands each
// message over SMTP; the filter scores it, adds its headers and re-injects
// it on the return port.
type PostfixFilter struct {
	service       *core.PhishingService
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	opts          PostfixOptions
	server        *smtp.Server
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.PhishingService,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	opts PostfixOptions,
) *PostfixFilter {
	if opts.SubjectPrefix == "" && opts.ModifySubject {
		opts.SubjectPrefix = "[PHISHING] "
	}
	if opts.BlockLevel == "" {
		opts.BlockLevel = core.RiskCritical
	}

	return &PostfixFilter{
		service:       service,
		logger:        logger,
		textProcessor: textProcessor,
		opts:          opts,
	}
}

// Start listens for Postfix on the configured address in the background
func (f *PostfixFilter) Start() error {
	srv := smtp.NewServer(&smtpBackend{filter: f})
	srv.Addr = f.opts.ListenAddress
	srv.Domain = "localhost"
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.MaxMessageBytes = 30 << 20
	srv.MaxRecipients = 50
	srv.AllowInsecureAuth = true
	f.server = srv

	f.logger.Info("Postfix filter starting", zap.String("address", f.opts.ListenAddress))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop closes the listener and any open sessions
func (f *PostfixFilter) Stop() error {
	if f.server == nil {
		return nil
	}
	return f.server.Close()
}

// ProcessEmail analyzes email text directly, without the SMTP round trip
func (f *PostfixFilter) ProcessEmail(ctx context.Context, text string) (*core.AnalysisResult, error) {
	return f.service.AnalyzeEmail(ctx, f.textProcessor.SanitizeUTF8(text))
}

// analyzeMessage normalizes a raw message and scores it
func (f *PostfixFilter) analyzeMessage(ctx context.Context, raw []byte) (*core.AnalysisResult, error) {
	text, err := NormalizeMessage(raw)
	if err != nil {
		f.logger.Warn("Failed to decode MIME message, analyzing raw text", zap.Error(err))
		text = string(raw)
	}
	return f.ProcessEmail(ctx, text)
}

// shouldReject reports whether a result is bad enough to refuse delivery
func (f *PostfixFilter) shouldReject(result *core.AnalysisResult) bool {
	return f.opts.BlockPhishing && result != nil && f.service.IsBlocked(result, f.opts.BlockLevel)
}

// decorate prepends the phishing headers to the raw message and, for
// blockable results, marks the subject
func (f *PostfixFilter) decorate(raw []byte, result *core.AnalysisResult, analysisErr error) []byte {
	var out bytes.Buffer

	if analysisErr != nil {
		fmt.Fprintf(&out, "%s: %s\r\n", AnalysisErrorHeader,
			f.textProcessor.TruncateLine(analysisErr.Error(), f.opts.MaxReasonsLength))
		out.Write(raw)
		return out.Bytes()
	}

	fmt.Fprintf(&out, "%s: %d\r\n", f.opts.ScoreHeader, result.Score)
	fmt.Fprintf(&out, "%s: %s\r\n", f.opts.LevelHeader, result.RiskLevel)
	if len(result.Reasons) > 0 {
		reasons := strings.Join(result.Reasons, "; ")
		fmt.Fprintf(&out, "%s: %s\r\n", f.opts.ReasonsHeader,
			f.textProcessor.TruncateLine(reasons, f.opts.MaxReasonsLength))
	}

	if f.opts.ModifySubject && f.service.IsBlocked(result, f.opts.BlockLevel) {
		raw = prefixSubject(raw, f.opts.SubjectPrefix)
	}
	out.Write(raw)
	return out.Bytes()
}

// reinject hands the decorated message back to Postfix on the return port.
// Recipients Postfix refuses are logged and skipped; the message fails only
// when none are accepted.
func (f *PostfixFilter) reinject(sender string, recipients []string, msg []byte) error {
	addr := net.JoinHostPort(f.opts.PostfixAddress, strconv.Itoa(f.opts.PostfixPort))

	conn, err := net.DialTimeout("tcp", addr, reinjectDialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix at %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(reinjectTimeout)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	helo, err := os.Hostname()
	if err != nil {
		helo = "localhost"
	}
	if err := c.Hello(helo); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := 0
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			f.logger.Warn("Postfix refused recipient", zap.String("recipient", rcpt), zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return errors.New("postfix refused every recipient")
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("postfix did not accept the message: %w", err)
	}

	// the message is queued by now; a failed QUIT changes nothing
	if err := c.Quit(); err != nil {
		f.logger.Debug("QUIT failed after delivery", zap.Error(err))
	}
	return nil
}

type smtpBackend struct {
	filter *PostfixFilter
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession collects the envelope of one message from Postfix
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}

// Data scores the message and either rejects it or re-injects it with the
// phishing headers added
func (s *smtpSession) Data(r io.Reader) error {
	f := s.filter

	raw, err := io.ReadAll(r)
	if err != nil {
		f.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sessionAnalysisTimeout)
	defer cancel()

	result, analysisErr := f.analyzeMessage(ctx, raw)
	if analysisErr != nil {
		f.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", s.sender))
	}

	if f.shouldReject(result) {
		f.logger.Info("Rejecting phishing email",
			zap.String("sender", s.sender),
			zap.Int("score", result.Score),
			zap.String("risk_level", string(result.RiskLevel)))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as phishing (score: %d, risk: %s)", result.Score, result.RiskLevel),
		}
	}

	decorated := f.decorate(raw, result, analysisErr)

	if f.opts.PostfixEnabled {
		if err := f.reinject(s.sender, s.recipients, decorated); err != nil {
			f.logger.Error("Failed to send email back to Postfix",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		f.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
	}

	fields := []zap.Field{zap.String("sender", s.sender)}
	if result != nil {
		fields = append(fields,
			zap.Int("score", result.Score),
			zap.String("risk_level", string(result.RiskLevel)))
	}
	f.logger.Info("Processed email", fields...)

	return nil
}
