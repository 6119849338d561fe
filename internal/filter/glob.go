package filter

import "github.com/dnsblockd/dnsblockd/internal/rules"

// globMatches evaluates one glob rule against target (domain, or
// domain+path when a path was supplied). domainLen is the length of the
// domain part inside target, used for domain anchoring.
func globMatches(r *rules.Rule, target string, domainLen int) bool {
	switch r.Anchor {
	case rules.AnchorStart:
		return globFrom(r.Pattern, target, 0)
	case rules.AnchorDomain:
		// The match must begin at a domain-label boundary.
		if globFrom(r.Pattern, target, 0) {
			return true
		}
		for i := 0; i < domainLen-1; i++ {
			if target[i] == '.' && globFrom(r.Pattern, target, i+1) {
				return true
			}
		}
		return false
	default:
		for i := 0; i <= len(target); i++ {
			if globFrom(r.Pattern, target, i) {
				return true
			}
		}
		return false
	}
}

// globFrom matches pattern against target starting at offset ti. '*'
// matches any run of characters, '^' matches a separator character or the
// end of the target. The pattern does not have to consume the whole target.
func globFrom(pattern, target string, ti int) bool {
	pi := 0
	starPi, starTi := -1, 0
	for {
		if pi == len(pattern) {
			return true
		}
		c := pattern[pi]
		switch {
		case c == '*':
			starPi, starTi = pi, ti
			pi++
			continue
		case ti < len(target) && (c == target[ti] || (c == '^' && isSeparator(target[ti]))):
			pi++
			ti++
			continue
		case c == '^' && ti == len(target):
			pi++
			continue
		}
		if starPi < 0 {
			return false
		}
		starTi++
		if starTi > len(target) {
			return false
		}
		ti = starTi
		pi = starPi + 1
	}
}

// isSeparator implements the filter-list separator class: any character
// that is not a hostname or path-safe character.
func isSeparator(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return false
	case c == '_' || c == '-' || c == '.' || c == '%':
		return false
	}
	return true
}
