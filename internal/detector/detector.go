// Package detector implements the rule-based phishing heuristics: header,
// URL and attachment extraction, per-URL and per-domain scoring, the content
// rule table and the final aggregation into a risk level.
package detector

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/cypheral1/phish-shiled/internal/core"
	"go.uber.org/zap"
)

// Detector scores raw email text. It holds no per-email state and is safe
// for concurrent use.
type Detector struct {
	logger            *zap.Logger
	brandDomains      []string
	lookalikeDistance int
}

// NewDetector creates a detector. brandDomains feed the sender lookalike
// check; a nil slice falls back to DefaultBrandDomains and a distance of 0
// disables the check.
func NewDetector(logger *zap.Logger, brandDomains []string, lookalikeDistance int) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if brandDomains == nil {
		brandDomains = DefaultBrandDomains
	}
	return &Detector{
		logger:            logger,
		brandDomains:      append([]string(nil), brandDomains...),
		lookalikeDistance: lookalikeDistance,
	}
}

// Analyze scores an email. It never fails: a check that cannot run is
// logged and contributes nothing.
func (d *Detector) Analyze(text string) *core.AnalysisResult {
	ev := d.collect(text)

	total := 0
	reasons := newReasonList()
	for _, r := range contentRules {
		s := d.apply(r, ev)
		total += clamp(s.score)
		reasons.add(s.reasons...)
	}

	score := min(total, 100)
	return &core.AnalysisResult{
		Score:              score,
		RiskLevel:          core.RiskLevelForScore(score),
		Reasons:            reasons.top(maxReasons),
		URLFindings:        ev.urlFindings,
		AttachmentFindings: ev.attachments,
		ContentStats: core.ContentStats{
			UrgencyKeywordCount:  ev.urgencyCount,
			LinkCount:            len(ev.urls),
			AttachmentCount:      len(ev.attachments),
			RiskyAttachmentCount: countRisky(ev.attachments),
		},
		Headers: ev.headers,
	}
}

func (d *Detector) collect(text string) *evidence {
	headers := ExtractHeaders(text)
	ev := &evidence{
		text:                text,
		headers:             headers,
		doc:                 d.parseHTML(text),
		attachments:         classifyAttachments(ExtractAttachments(text)),
		urgencyCount:        len(urgencyPattern.FindAllStringIndex(text, -1)),
		subjectCallToAction: headers.Subject != "" && subjectCallToAction.MatchString(headers.Subject),
		brandDomains:        d.brandDomains,
		lookalikeDistance:   d.lookalikeDistance,
	}

	ev.urls = ExtractURLs(ev.doc, text)
	ev.urlFindings = make([]core.URLFinding, 0, len(ev.urls))
	for _, u := range ev.urls {
		ev.urlFindings = append(ev.urlFindings, d.analyzeURL(u))
	}
	return ev
}

// parseHTML returns nil when the document cannot be parsed; callers then
// fall back to plain regex scanning
func (d *Detector) parseHTML(text string) (doc *goquery.Document) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Warn("HTML parsing failed", zap.Any("panic", rec))
			doc = nil
		}
	}()

	doc, err := parseHTML(text)
	if err != nil {
		d.logger.Warn("HTML parsing failed, using text scan only", zap.Error(err))
		return nil
	}
	return doc
}

func (d *Detector) analyzeURL(raw string) (finding core.URLFinding) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Warn("URL analysis failed", zap.String("url", raw), zap.Any("panic", rec))
			finding = core.URLFinding{URL: raw, Score: 10, Reasons: []string{ReasonURLParse}}
		}
	}()
	return AnalyzeURL(raw)
}

func (d *Detector) apply(r rule, ev *evidence) (s signal) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Warn("Rule evaluation failed", zap.String("rule", r.name), zap.Any("panic", rec))
			s = signal{}
		}
	}()
	return r.check(ev)
}
