package detector

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cypheral1/phish-shiled/internal/core"
)

// AnalyzeURL scores a single URL. Checks run in a fixed order; a URL without
// a host stops after that check. A URL that url.Parse rejects is still
// checked on the scheme and host recovered from its authority.
func AnalyzeURL(raw string) core.URLFinding {
	var s signal

	lower := strings.ToLower(raw)
	for _, shortener := range shorteners {
		if strings.Contains(lower, shortener) {
			s.add(25, fmt.Sprintf("URL uses shortener: %s", shortener))
			break
		}
	}

	u, err := url.Parse(raw)
	parseFailed := err != nil
	if parseFailed {
		s.add(10, ReasonURLParse)
		u = authorityURL(raw)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		s.add(30, ReasonInvalidURL)
		return urlFinding(raw, s)
	}

	domainScore, domainReasons := AnalyzeDomain(host)
	s.score += domainScore
	s.reasons = append(s.reasons, domainReasons...)

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		switch {
		case err != nil || port > maxPort:
			if !parseFailed {
				s.add(10, ReasonURLParse)
			}
		case port != 80 && port != 443:
			s.add(10, fmt.Sprintf("non-standard port: %d", port))
		}
	}

	if ipHostPattern.MatchString(host) {
		s.add(30, ReasonIPHost)
	}

	if u.Scheme == "http" {
		s.add(15, ReasonPlainHTTP)
	}

	if strings.Count(host, ".") > 2 {
		s.add(10, ReasonSubdomains)
	}

	return urlFinding(raw, s)
}

// authorityURL keeps only the scheme and host of raw, cutting the authority
// at the first path, query or fragment delimiter. A non-numeric port is
// dropped. Without "://" the result has no host.
func authorityURL(raw string) *url.URL {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return &url.URL{}
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	if i := strings.LastIndexByte(rest, ':'); i > strings.LastIndexByte(rest, ']') && !isDigits(rest[i+1:]) {
		rest = rest[:i]
	}
	return &url.URL{Scheme: strings.ToLower(scheme), Host: rest}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func urlFinding(raw string, s signal) core.URLFinding {
	return core.URLFinding{
		URL:     raw,
		Score:   clamp(s.score),
		Reasons: nonNil(s.reasons),
	}
}
