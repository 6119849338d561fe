package utils

import (
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeDomain canonicalizes a DNS name for matching: trims whitespace
// and the trailing dot, lowercases, and maps Unicode labels to their ASCII
// (punycode) form.
//
// Names that fail IDNA mapping are returned lowercased as-is so that lookups
// degrade to a non-match instead of an error.
func NormalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimSuffix(domain, ".")
	domain = strings.ToLower(domain)
	if domain == "" || isASCII(domain) {
		return domain
	}
	mapped, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return domain
	}
	return mapped
}

// WalkSuffixes calls fn for every label suffix of domain, from the full name
// down to the TLD:
//
//	"cdn.ads.example.com" -> "cdn.ads.example.com", "ads.example.com", "example.com", "com"
//
// Iteration stops early when fn returns false.
func WalkSuffixes(domain string, fn func(suffix string) bool) {
	for domain != "" {
		if !fn(domain) {
			return
		}
		dot := strings.IndexByte(domain, '.')
		if dot < 0 {
			return
		}
		domain = domain[dot+1:]
	}
}

// CountLabels returns the number of dot-separated labels in domain.
// Used as the specificity of a suffix match: "ads.example.com" is more
// specific (3) than "example.com" (2).
func CountLabels(domain string) int {
	if domain == "" {
		return 0
	}
	return strings.Count(domain, ".") + 1
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
