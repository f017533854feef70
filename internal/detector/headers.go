package detector

import (
	"regexp"
	"strings"

	"github.com/cypheral1/phish-shiled/internal/core"
)

// ExtractHeaders pulls From, Subject and To out of raw email text. The first
// line starting with the header name wins; a missing header is "".
func ExtractHeaders(text string) core.Headers {
	return core.Headers{
		From:    firstHeader(headerFromPattern, text),
		Subject: firstHeader(headerSubjectPattern, text),
		To:      firstHeader(headerToPattern, text),
	}
}

func firstHeader(pattern *regexp.Regexp, text string) string {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
