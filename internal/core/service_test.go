package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cypheral1/phish-shiled/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(text string) *AnalysisResult {
	args := m.Called(text)
	return args.Get(0).(*AnalysisResult)
}

type mockAuditLogger struct {
	mock.Mock
}

func (m *mockAuditLogger) Record(ctx context.Context, entry *AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditLogger) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]AuditEntry)
	return entries, args.Error(1)
}

type PhishingServiceSuite struct {
	suite.Suite
	analyzer *mockAnalyzer
	audit    *mockAuditLogger
	service  *PhishingService
	now      time.Time
}

func TestPhishingService(t *testing.T) {
	suite.Run(t, new(PhishingServiceSuite))
}

func (suite *PhishingServiceSuite) SetupTest() {
	suite.analyzer = &mockAnalyzer{}
	suite.audit = &mockAuditLogger{}
	suite.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	checker := whitelist.NewChecker([]string{"example.com"}, zap.NewNop())
	suite.service = NewPhishingService(suite.analyzer, suite.audit, zap.NewNop(), true, checker)
	suite.service.now = func() time.Time { return suite.now }
}

func (suite *PhishingServiceSuite) TearDownTest() {
	suite.analyzer.AssertExpectations(suite.T())
	suite.audit.AssertExpectations(suite.T())
}

func phishyResult() *AnalysisResult {
	return &AnalysisResult{
		Score:     80,
		RiskLevel: RiskCritical,
		Reasons:   []string{"risky attachment: a.exe"},
		Headers:   Headers{From: "bad@paypa1.com", Subject: "Verify"},
	}
}

func (suite *PhishingServiceSuite) TestAnalyzeEmailRecordsAudit() {
	ctx := context.Background()
	suite.analyzer.On("Analyze", "Subject: Verify").Return(phishyResult())
	suite.audit.On("Record", ctx, mock.MatchedBy(func(e *AuditEntry) bool {
		return e.Score == 80 &&
			e.RiskLevel == RiskCritical &&
			e.From == "bad@paypa1.com" &&
			e.Subject == "Verify" &&
			e.Timestamp.Equal(suite.now)
	})).Return(nil)

	result, err := suite.service.AnalyzeEmail(ctx, "Subject: Verify")

	suite.Require().NoError(err)
	suite.Equal(80, result.Score)
	suite.Equal(RiskCritical, result.RiskLevel)
}

func (suite *PhishingServiceSuite) TestAnalyzeEmailRejectsEmptyInput() {
	for _, text := range []string{"", "   ", "\r\n\t"} {
		result, err := suite.service.AnalyzeEmail(context.Background(), text)
		suite.ErrorIs(err, ErrEmptyInput)
		suite.Nil(result)
	}
	suite.analyzer.AssertNotCalled(suite.T(), "Analyze", mock.Anything)
}

func (suite *PhishingServiceSuite) TestAnalyzeEmailWhitelistedSender() {
	ctx := context.Background()
	result := phishyResult()
	result.Headers.From = "Alice <alice@Example.com>"
	suite.analyzer.On("Analyze", "hello").Return(result)
	suite.audit.On("Record", ctx, mock.MatchedBy(func(e *AuditEntry) bool {
		return e.Score == 0 && e.RiskLevel == RiskLow
	})).Return(nil)

	got, err := suite.service.AnalyzeEmail(ctx, "hello")

	suite.Require().NoError(err)
	suite.Equal(0, got.Score)
	suite.Equal(RiskLow, got.RiskLevel)
	suite.Equal([]string{WhitelistedReason}, got.Reasons)
}

func (suite *PhishingServiceSuite) TestAnalyzeEmailAuditFailureIsNotFatal() {
	ctx := context.Background()
	suite.analyzer.On("Analyze", "hello").Return(phishyResult())
	suite.audit.On("Record", ctx, mock.Anything).Return(errors.New("disk full"))

	result, err := suite.service.AnalyzeEmail(ctx, "hello")

	suite.Require().NoError(err)
	suite.Equal(80, result.Score)
}

func (suite *PhishingServiceSuite) TestHistory() {
	ctx := context.Background()
	entries := []AuditEntry{{Score: 10}, {Score: 5}}
	suite.audit.On("Recent", ctx, 2).Return(entries, nil)

	got, err := suite.service.History(ctx, 2)

	suite.Require().NoError(err)
	suite.Equal(entries, got)
}

func TestAuditDisabled(t *testing.T) {
	analyzer := &mockAnalyzer{}
	analyzer.On("Analyze", "hello").Return(phishyResult())
	audit := &mockAuditLogger{}

	service := NewPhishingService(analyzer, audit, zap.NewNop(), false, nil)
	result, err := service.AnalyzeEmail(context.Background(), "hello")

	assert.NoError(t, err)
	assert.Equal(t, 80, result.Score)
	audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestHistoryWithoutAuditLog(t *testing.T) {
	service := NewPhishingService(&mockAnalyzer{}, nil, zap.NewNop(), true, nil)

	entries, err := service.History(context.Background(), 10)

	assert.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestIsBlocked(t *testing.T) {
	service := NewPhishingService(&mockAnalyzer{}, nil, zap.NewNop(), false, nil)

	tests := []struct {
		level RiskLevel
		block RiskLevel
		want  bool
	}{
		{RiskCritical, RiskCritical, true},
		{RiskHigh, RiskCritical, false},
		{RiskHigh, RiskHigh, true},
		{RiskCritical, RiskMedium, true},
		{RiskLow, RiskMedium, false},
		{RiskLow, RiskLow, true},
	}

	for _, tt := range tests {
		got := service.IsBlocked(&AnalysisResult{RiskLevel: tt.level}, tt.block)
		assert.Equal(t, tt.want, got, "%s at block level %s", tt.level, tt.block)
	}
}

func TestRiskLevelForScore(t *testing.T) {
	tests := map[int]RiskLevel{
		0:   RiskLow,
		24:  RiskLow,
		25:  RiskMedium,
		49:  RiskMedium,
		50:  RiskHigh,
		74:  RiskHigh,
		75:  RiskCritical,
		100: RiskCritical,
	}
	for score, want := range tests {
		assert.Equal(t, want, RiskLevelForScore(score), "score %d", score)
	}
}

func TestParseRiskLevel(t *testing.T) {
	assert.Equal(t, RiskHigh, ParseRiskLevel("HIGH"))
	assert.Equal(t, RiskMedium, ParseRiskLevel(" medium "))
	assert.Equal(t, RiskCritical, ParseRiskLevel("bogus"))
	assert.Equal(t, RiskCritical, ParseRiskLevel(""))
}

func TestNewAuditEntryCopiesReasons(t *testing.T) {
	result := phishyResult()
	at := time.Now()

	entry := NewAuditEntry(result, at)
	result.Reasons[0] = "changed"

	assert.Equal(t, []string{"risky attachment: a.exe"}, entry.Reasons)
	assert.Equal(t, at, entry.Timestamp)
	assert.NotEqual(t, [16]byte{}, [16]byte(entry.ID))
}
