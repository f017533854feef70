package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/cypheral1/phish-shiled/internal/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCliFilterReport(t *testing.T) {
	svc, _ := newTestService(t)
	var out bytes.Buffer
	f, err := NewCliFilter(svc, zap.NewNop(), newTextProcessor(), &out, true, false)
	require.NoError(t, err)

	result, err := f.ProcessEmail(context.Background(), detector.SampleEmail)
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)

	report := out.String()
	assert.Contains(t, report, "=== Email Summary ===")
	assert.Contains(t, report, "Subject: URGENT! Verify your account NOW!")
	assert.Contains(t, report, "Body preview:")
	assert.Contains(t, report, "Phishing score: 100/100")
	assert.Contains(t, report, "Risk level: CRITICAL")
	assert.Contains(t, report, "=== Suspicious URLs ===")
	assert.Contains(t, report, " - http://bit.ly/paypal-verify-now (score ")
	assert.Contains(t, report, " - verify-account.exe (risky)")
	assert.Contains(t, report, " 1. ")
}

func TestCliFilterCleanReport(t *testing.T) {
	svc, _ := newTestService(t)
	var out bytes.Buffer
	f, err := NewCliFilter(svc, zap.NewNop(), newTextProcessor(), &out, false, false)
	require.NoError(t, err)

	_, err = f.ProcessEmail(context.Background(), cleanMessage)
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "Risk level: LOW")
	assert.Contains(t, report, "No suspicious indicators found")
	assert.NotContains(t, report, "Body preview:")
	assert.NotContains(t, report, "=== Attachments ===")
}

func TestCliFilterJSON(t *testing.T) {
	svc, _ := newTestService(t)
	var out bytes.Buffer
	f, err := NewCliFilter(svc, zap.NewNop(), newTextProcessor(), &out, false, true)
	require.NoError(t, err)

	_, err = f.ProcessEmail(context.Background(), detector.SampleEmail)
	require.NoError(t, err)

	var decoded core.AnalysisResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 100, decoded.Score)
	assert.Equal(t, core.RiskCritical, decoded.RiskLevel)
	assert.NotContains(t, out.String(), "=== Results ===")
}

func TestCliFilterErrors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := NewCliFilter(svc, zap.NewNop(), newTextProcessor(), nil, false, false)
	assert.Error(t, err)

	var out bytes.Buffer
	f, err := NewCliFilter(svc, zap.NewNop(), newTextProcessor(), &out, false, false)
	require.NoError(t, err)

	_, err = f.ProcessEmail(context.Background(), "\n\t ")
	assert.ErrorIs(t, err, core.ErrEmptyInput)
	assert.Empty(t, out.String())
}
