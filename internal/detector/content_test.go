package detector

import (
	"testing"

	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestUrgencyRuleIsCapped(t *testing.T) {
	assert.Equal(t, signal{}, urgencyRule(&evidence{}))

	s := urgencyRule(&evidence{urgencyCount: 2})
	assert.Equal(t, 10, s.score)
	assert.Equal(t, []string{"urgency keywords detected (2)"}, s.reasons)

	assert.Equal(t, 15, urgencyRule(&evidence{urgencyCount: 9}).score)
}

func TestSubjectRules(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		score   int
	}{
		{"missing subject", "", 0},
		{"short", "Hi", 5},
		{"four runes", "Ünïç", 5},
		{"five runes", "Hello", 0},
		{"exclamations", "Act fast!!!", 8},
		{"short exclamations", "!!!", 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &evidence{headers: core.Headers{Subject: tt.subject}}
			got := shortSubjectRule(ev).score + subjectExclamationRule(ev).score
			assert.Equal(t, tt.score, got)
		})
	}
}

func TestSenderDomainRule(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		score   int
		reasons []string
	}{
		{
			name:  "brand mimic and lookalike are capped",
			from:  "PayPal <support@paypa1.com>",
			score: 25,
			reasons: []string{
				"sender domain paypa1.com: " + ReasonBrandMimic,
				"sender domain paypa1.com: lookalike of known brand domain paypal.com",
			},
		},
		{
			name:    "lookalike only",
			from:    "billing@paypal.co",
			score:   20,
			reasons: []string{"sender domain paypal.co: lookalike of known brand domain paypal.com"},
		},
		{
			name:  "genuine brand",
			from:  "service@paypal.com",
			score: 0,
		},
		{
			name:  "no domain",
			from:  "",
			score: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := senderDomainRule(&evidence{
				headers:           core.Headers{From: tt.from},
				brandDomains:      DefaultBrandDomains,
				lookalikeDistance: 2,
			})
			assert.Equal(t, tt.score, s.score)
			assert.Equal(t, tt.reasons, s.reasons)
		})
	}
}

func TestAutomatedSenderRule(t *testing.T) {
	assert.Equal(t, 5, automatedSenderRule(&evidence{headers: core.Headers{From: "no-reply@example.com"}}).score)
	assert.Equal(t, 0, automatedSenderRule(&evidence{headers: core.Headers{From: "alice@example.com"}}).score)
}

func TestURLRiskRule(t *testing.T) {
	tests := []struct {
		name     string
		findings []core.URLFinding
		score    int
		reasons  []string
	}{
		{"no urls", nil, 0, nil},
		{
			name:     "scaled",
			findings: []core.URLFinding{{URL: "a", Score: 25, Reasons: []string{"one"}}},
			score:    20,
			reasons:  []string{"one"},
		},
		{
			name: "capped and first two reasons per url",
			findings: []core.URLFinding{
				{URL: "a", Score: 40, Reasons: []string{"one", "two", "three"}},
				{URL: "b", Score: 10, Reasons: []string{"four"}},
			},
			score:   30,
			reasons: []string{"one", "two", "four"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := urlRiskRule(&evidence{urlFindings: tt.findings})
			assert.Equal(t, tt.score, s.score)
			assert.Equal(t, tt.reasons, s.reasons)
		})
	}
}

func TestExcessiveLinksRule(t *testing.T) {
	five := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, 0, excessiveLinksRule(&evidence{urls: five}).score)

	s := excessiveLinksRule(&evidence{urls: append(five, "f")})
	assert.Equal(t, 8, s.score)
	assert.Equal(t, []string{"excessive links (6)"}, s.reasons)
}

func TestGreetingRule(t *testing.T) {
	assert.Equal(t, 5, greetingRule(&evidence{text: "Subject: x\n\nDear Customer,\nhello"}).score)
	assert.Equal(t, 0, greetingRule(&evidence{text: "Hi Alice, dear customer of ours"}).score)
}

func TestSuspiciousTagsRule(t *testing.T) {
	for _, text := range []string{"<script src=x>", "<IFRAME>", "<object data=x>", "<embed src=y>"} {
		assert.Equal(t, 25, suspiciousTagsRule(&evidence{text: text}).score, text)
	}
	assert.Equal(t, 0, suspiciousTagsRule(&evidence{text: "<p>scripted</p>"}).score)
}

func TestMisspellingRule(t *testing.T) {
	s := misspellingRule(&evidence{text: "You will recieve it. It occured twice. recieve"})
	assert.Equal(t, 4, s.score)
	assert.Equal(t, []string{"spelling errors detected (2)"}, s.reasons)

	assert.Equal(t, 0, misspellingRule(&evidence{text: "receivers occurred"}).score)
}

func TestBodyCallToActionRule(t *testing.T) {
	text := "Please verify your account today"
	assert.Equal(t, 10, bodyCallToActionRule(&evidence{text: text}).score)
	assert.Equal(t, 0, bodyCallToActionRule(&evidence{text: text, subjectCallToAction: true}).score)
	assert.Equal(t, 0, bodyCallToActionRule(&evidence{text: "see you at lunch"}).score)
}
