package detector

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/cypheral1/phish-shiled/internal/core"
	"github.com/cypheral1/phish-shiled/internal/whitelist"
)

// signal is what one rule contributes to the email's score
type signal struct {
	score   int
	reasons []string
}

func (s *signal) add(score int, reason string) {
	s.score += score
	s.reasons = append(s.reasons, reason)
}

// evidence is everything extracted from one email before the rules run.
// It is built once per analysis and never shared.
type evidence struct {
	text        string
	headers     core.Headers
	doc         *goquery.Document
	urls        []string
	urlFindings []core.URLFinding
	attachments []core.AttachmentFinding

	urgencyCount        int
	subjectCallToAction bool

	brandDomains      []string
	lookalikeDistance int
}

type rule struct {
	name  string
	check func(ev *evidence) signal
}

// contentRules run in this order; their reasons appear in the same order
var contentRules = []rule{
	{"urgency", urgencyRule},
	{"short_subject", shortSubjectRule},
	{"subject_exclamation", subjectExclamationRule},
	{"subject_keywords", subjectKeywordsRule},
	{"sender_domain", senderDomainRule},
	{"automated_sender", automatedSenderRule},
	{"url_risk", urlRiskRule},
	{"excessive_links", excessiveLinksRule},
	{"attachments", attachmentRule},
	{"generic_greeting", greetingRule},
	{"html_link", htmlLinkRule},
	{"suspicious_tags", suspiciousTagsRule},
	{"misspellings", misspellingRule},
	{"body_call_to_action", bodyCallToActionRule},
}

func urgencyRule(ev *evidence) signal {
	var s signal
	if ev.urgencyCount > 0 {
		s.add(min(ev.urgencyCount*5, 15), fmt.Sprintf("urgency keywords detected (%d)", ev.urgencyCount))
	}
	return s
}

func shortSubjectRule(ev *evidence) signal {
	var s signal
	if subject := ev.headers.Subject; subject != "" && utf8.RuneCountInString(subject) < 5 {
		s.add(5, ReasonShortSubject)
	}
	return s
}

func subjectExclamationRule(ev *evidence) signal {
	var s signal
	if exclamationPattern.MatchString(ev.headers.Subject) {
		s.add(8, ReasonExclamation)
	}
	return s
}

func subjectKeywordsRule(ev *evidence) signal {
	var s signal
	if ev.subjectCallToAction {
		s.add(12, ReasonSubjectKeywords)
	}
	return s
}

// senderDomainRule runs the domain checks on the sender's domain and flags
// near misses of known brand domains. The total is capped.
func senderDomainRule(ev *evidence) signal {
	var s signal
	domain := whitelist.SenderDomain(ev.headers.From)
	if domain == "" {
		return s
	}

	score, reasons := AnalyzeDomain(domain)
	for _, r := range reasons {
		s.reasons = append(s.reasons, fmt.Sprintf("sender domain %s: %s", domain, r))
	}
	s.score += score

	if registrable, err := registrableDomain(domain); err == nil {
		if brand, ok := closestBrand(registrable, ev.brandDomains, ev.lookalikeDistance); ok {
			s.add(20, fmt.Sprintf("sender domain %s: lookalike of known brand domain %s", domain, brand))
		}
	}

	s.score = min(s.score, maxSenderScore)
	return s
}

func automatedSenderRule(ev *evidence) signal {
	var s signal
	if automatedSenderPattern.MatchString(ev.headers.From) {
		s.add(5, ReasonAutomatedSender)
	}
	return s
}

// urlRiskRule adds four fifths of the riskiest URL's score, capped, and the
// leading reasons of every URL
func urlRiskRule(ev *evidence) signal {
	var s signal
	highest := 0
	for _, f := range ev.urlFindings {
		highest = max(highest, f.Score)
		n := min(len(f.Reasons), urlReasonsPerLink)
		s.reasons = append(s.reasons, f.Reasons[:n]...)
	}
	s.score = min(highest*4/5, maxURLContribution)
	return s
}

func excessiveLinksRule(ev *evidence) signal {
	var s signal
	if n := len(ev.urls); n > excessiveLinks {
		s.add(8, fmt.Sprintf("excessive links (%d)", n))
	}
	return s
}

func attachmentRule(ev *evidence) signal {
	return scoreAttachments(ev.attachments)
}

func greetingRule(ev *evidence) signal {
	var s signal
	if genericGreetingPattern.MatchString(ev.text) {
		s.add(5, ReasonGreeting)
	}
	return s
}

func htmlLinkRule(ev *evidence) signal {
	var s signal
	if hasDisplayedAnchor(ev.doc, ev.text) {
		s.add(10, ReasonHTMLLink)
	}
	return s
}

func suspiciousTagsRule(ev *evidence) signal {
	var s signal
	if suspiciousTagPattern.MatchString(ev.text) {
		s.add(25, ReasonSuspiciousTags)
	}
	return s
}

func misspellingRule(ev *evidence) signal {
	var s signal
	count := 0
	for _, p := range misspellings {
		if p.MatchString(ev.text) {
			count++
		}
	}
	if count > 0 {
		s.add(min(count*2, 10), fmt.Sprintf("spelling errors detected (%d)", count))
	}
	return s
}

// bodyCallToActionRule is skipped when the subject already carried the
// phishing keywords
func bodyCallToActionRule(ev *evidence) signal {
	var s signal
	if !ev.subjectCallToAction && bodyCallToAction.MatchString(strings.ToLower(ev.text)) {
		s.add(10, ReasonCallToAction)
	}
	return s
}
