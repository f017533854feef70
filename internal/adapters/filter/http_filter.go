package filter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/cypheral1/phish-shiled/internal/detector"
	"github.com/cypheral1/phish-shiled/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 20

// AnalyzeRequest is the JSON body of POST /api/analyze. Older clients send
// the text as "email".
type AnalyzeRequest struct {
	EmailText string `json:"email_text" validate:"required_without=Email"`
	Email     string `json:"email" validate:"required_without=EmailText"`
}

func (r AnalyzeRequest) text() string {
	if r.EmailText != "" {
		return r.EmailText
	}
	return r.Email
}

// AnalyzeResponse wraps an analysis result for the web front end
type AnalyzeResponse struct {
	*core.AnalysisResult
	Success    bool      `json:"success"`
	Timestamp  time.Time `json:"timestamp"`
	AnalysisID uuid.UUID `json:"analysis_id"`
	Filename   string    `json:"filename,omitempty"`
}

// SampleResponse is returned by GET /api/sample
type SampleResponse struct {
	AnalyzeResponse
	EmailText string `json:"email_text"`
}

// HistoryResponse is returned by GET /api/history
type HistoryResponse struct {
	Success bool              `json:"success"`
	Entries []core.AuditEntry `json:"entries"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// HTTPFilter serves the analysis API over HTTP
type HTTPFilter struct {
	service       *core.PhishingService
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	listenAddr    string
	stopTimeout   time.Duration
	echo          *echo.Echo
	now           func() time.Time
}

// NewHTTPFilter creates a new HTTP filter
func NewHTTPFilter(
	service *core.PhishingService,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	listenAddr string,
	maxBodySize string,
	stopTimeout time.Duration,
) *HTTPFilter {
	if stopTimeout <= 0 {
		stopTimeout = 10 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	if maxBodySize != "" {
		e.Use(middleware.BodyLimit(maxBodySize))
	}

	f := &HTTPFilter{
		service:       service,
		logger:        logger,
		textProcessor: textProcessor,
		listenAddr:    listenAddr,
		stopTimeout:   stopTimeout,
		echo:          e,
		now:           time.Now,
	}

	e.GET("/health", f.healthCheck)
	e.POST("/api/analyze", f.analyze)
	e.POST("/api/analyze-file", f.analyzeFile)
	e.GET("/api/sample", f.sample)
	e.GET("/api/history", f.history)

	return f
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("Handled request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	})
}

// Handler exposes the router, mainly for tests
func (f *HTTPFilter) Handler() http.Handler {
	return f.echo
}

// Start starts the HTTP server in the background
func (f *HTTPFilter) Start() error {
	f.logger.Info("HTTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.echo.Start(f.listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the HTTP server down
func (f *HTTPFilter) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), f.stopTimeout)
	defer cancel()
	return f.echo.Shutdown(ctx)
}

// ProcessEmail analyzes email text directly
func (f *HTTPFilter) ProcessEmail(ctx context.Context, text string) (*core.AnalysisResult, error) {
	return f.service.AnalyzeEmail(ctx, f.textProcessor.SanitizeUTF8(text))
}

func (f *HTTPFilter) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "phishing-shield",
	})
}

func (f *HTTPFilter) analyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return f.fail(c, http.StatusBadRequest, "invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return f.fail(c, http.StatusBadRequest, "email_text is required")
	}

	return f.respond(c, req.text(), "")
}

func (f *HTTPFilter) analyzeFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return f.fail(c, http.StatusBadRequest, "no file uploaded")
	}
	if fh.Filename == "" {
		return f.fail(c, http.StatusBadRequest, "no file selected")
	}

	src, err := fh.Open()
	if err != nil {
		f.logger.Error("Failed to open upload", zap.Error(err))
		return f.fail(c, http.StatusInternalServerError, "failed to read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		f.logger.Error("Failed to read upload", zap.Error(err))
		return f.fail(c, http.StatusInternalServerError, "failed to read uploaded file")
	}

	return f.respond(c, string(data), fh.Filename)
}

func (f *HTTPFilter) sample(c echo.Context) error {
	result, err := f.ProcessEmail(c.Request().Context(), detector.SampleEmail)
	if err != nil {
		f.logger.Error("Failed to analyze sample email", zap.Error(err))
		return f.fail(c, http.StatusInternalServerError, "analysis failed")
	}

	return c.JSON(http.StatusOK, SampleResponse{
		AnalyzeResponse: f.wrap(result, ""),
		EmailText:       detector.SampleEmail,
	})
}

func (f *HTTPFilter) history(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return f.fail(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	entries, err := f.service.History(c.Request().Context(), limit)
	if err != nil {
		f.logger.Error("Failed to read audit history", zap.Error(err))
		return f.fail(c, http.StatusInternalServerError, "failed to read history")
	}

	return c.JSON(http.StatusOK, HistoryResponse{Success: true, Entries: entries})
}

func (f *HTTPFilter) respond(c echo.Context, text, filename string) error {
	if strings.TrimSpace(text) == "" {
		return f.fail(c, http.StatusBadRequest, "email text is empty")
	}

	result, err := f.ProcessEmail(c.Request().Context(), text)
	if errors.Is(err, core.ErrEmptyInput) {
		return f.fail(c, http.StatusBadRequest, "email text is empty")
	}
	if err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		return f.fail(c, http.StatusInternalServerError, "analysis failed")
	}

	return c.JSON(http.StatusOK, f.wrap(result, filename))
}

func (f *HTTPFilter) wrap(result *core.AnalysisResult, filename string) AnalyzeResponse {
	return AnalyzeResponse{
		AnalysisResult: result,
		Success:        true,
		Timestamp:      f.now().UTC(),
		AnalysisID:     uuid.New(),
		Filename:       filename,
	}
}

func (f *HTTPFilter) fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Success: false, Error: msg})
}
