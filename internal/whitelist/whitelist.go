package whitelist

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker tells whether a sender belongs to a trusted domain
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new whitelist checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make(map[string]struct{}, len(domains))
	names := make([]string, 0, len(domains))
	for _, domain := range domains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if _, ok := normalized[domain]; !ok {
			names = append(names, domain)
		}
		normalized[domain] = struct{}{}
	}

	if len(names) > 0 && logger != nil {
		logger.Info("Initialized whitelist checker", zap.Strings("domains", names))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsWhitelisted checks a From header value such as
// `"PayPal" <service@paypal.com>` or a bare address
func (c *Checker) IsWhitelisted(from string) bool {
	if c == nil || len(c.domains) == 0 {
		return false
	}

	domain := SenderDomain(from)
	if domain == "" {
		return false
	}

	if _, ok := c.domains[domain]; ok {
		if c.logger != nil {
			c.logger.Debug("Domain is whitelisted",
				zap.String("domain", domain),
				zap.String("from", from))
		}
		return true
	}
	return false
}

// SenderDomain returns the lower-cased domain of the address in a From
// header, or "" when there is none
func SenderDomain(from string) string {
	address := from
	if parsed, err := mail.ParseAddress(from); err == nil {
		address = parsed.Address
	}

	at := strings.LastIndex(address, "@")
	if at < 0 || at == len(address)-1 {
		return ""
	}
	domain := address[at+1:]
	domain = strings.TrimRight(domain, "> \t")
	return strings.ToLower(domain)
}
