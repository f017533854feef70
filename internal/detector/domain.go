package detector

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// normalizeHost lower-cases host, drops a trailing dot and converts
// internationalized names to their ASCII form. Hosts idna rejects are kept as-is.
func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		return ascii
	}
	return host
}

// registrableDomain returns the eTLD+1 of host, e.g. "paypal.co.uk" for
// "secure.paypal.co.uk"
func registrableDomain(host string) (string, error) {
	host = normalizeHost(host)
	if host == "" {
		return "", fmt.Errorf("empty host")
	}
	return publicsuffix.EffectiveTLDPlusOne(host)
}

// coreLabel returns the registrable domain with its public suffix removed,
// e.g. "paypal" for "secure.paypal.co.uk"
func coreLabel(host string) (string, error) {
	domain, err := registrableDomain(host)
	if err != nil {
		return "", err
	}
	suffix, _ := publicsuffix.PublicSuffix(domain)
	return strings.TrimSuffix(domain, "."+suffix), nil
}

// AnalyzeDomain scores a host name for typosquatting, brand mimicry and
// hyphen stuffing. Hosts without a registrable domain score 0.
func AnalyzeDomain(host string) (int, []string) {
	label, err := coreLabel(host)
	if err != nil || label == "" {
		return 0, []string{}
	}

	var s signal
	if typosquatPattern.MatchString(label) {
		s.add(15, ReasonTyposquat)
	}
	if brandMimicPattern.MatchString(label) {
		s.add(20, ReasonBrandMimic)
	}
	if strings.Count(label, "-") > 2 {
		s.add(10, ReasonHyphens)
	}
	return s.score, nonNil(s.reasons)
}

// closestBrand returns the brand domain nearest to domain by edit distance
// when it is within maxDistance but not an exact match
func closestBrand(domain string, brands []string, maxDistance int) (string, bool) {
	if domain == "" || maxDistance <= 0 {
		return "", false
	}
	best, bestDistance := "", maxDistance+1
	for _, brand := range brands {
		d := levenshtein.ComputeDistance(domain, strings.ToLower(brand))
		if d == 0 {
			return "", false
		}
		if d < bestDistance {
			best, bestDistance = brand, d
		}
	}
	return best, best != ""
}
