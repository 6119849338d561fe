package rules

import (
	"strings"

	"github.com/dnsblockd/dnsblockd/internal/utils"
)

// cosmeticMarkers separate element-hiding directives from network rules.
var cosmeticMarkers = []string{"##", "#@#", "#?#", "#$#"}

// Options that turn a rule into an element or response rewrite, which
// DNS-level blocking cannot honor. Rules carrying them are dropped whole.
var unsupportedOptions = []string{
	"elemhide",
	"generichide",
	"rewrite=",
	"csp=",
	"removeparam",
	"redirect=",
	"redirect-rule=",
	"replace=",
}

// ParseLine turns one filter-list line into a Rule. The second return is
// false for blank lines, comments, list headers, and anything unparseable.
// Cosmetic directives come back as KindCosmetic so callers can count them
// before discarding. One bad line never aborts ingestion of the rest.
func ParseLine(line string, src Source) (Rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
		return Rule{}, false
	}
	for _, marker := range cosmeticMarkers {
		if strings.Contains(line, marker) {
			return Rule{Kind: KindCosmetic, Source: src}, true
		}
	}

	exception := false
	if strings.HasPrefix(line, "@@") {
		exception = true
		line = line[2:]
	}

	if i := strings.LastIndexByte(line, '$'); i > 0 {
		if hasUnsupportedOption(line[i+1:]) {
			return Rule{}, false
		}
		line = line[:i]
	}

	// Regex rules are unsupported.
	if len(line) > 2 && strings.HasPrefix(line, "/") && strings.HasSuffix(line, "/") {
		return Rule{}, false
	}

	line = strings.ToLower(line)

	switch {
	case strings.HasPrefix(line, "||"):
		body := strings.TrimPrefix(line, "||")
		if domain, ok := domainPattern(body); ok {
			return Rule{Pattern: domain, Kind: blockKind(exception), Anchor: AnchorDomain, Source: src}, true
		}
		return globRule(body, AnchorDomain, exception, src)
	case strings.HasPrefix(line, "|"):
		return globRule(strings.TrimPrefix(line, "|"), AnchorStart, exception, src)
	}

	// Bare domains and the *.domain / .domain shorthands become suffix rules;
	// everything else falls through to substring glob matching.
	if domain, ok := domainPattern(line); ok {
		return Rule{Pattern: domain, Kind: blockKind(exception), Anchor: AnchorDomain, Source: src}, true
	}
	return globRule(line, AnchorNone, exception, src)
}

// localNames are hosts-file boilerplate entries that must never become
// block rules.
var localNames = map[string]struct{}{
	"localhost":             {},
	"localhost.localdomain": {},
	"local":                 {},
	"broadcasthost":         {},
	"ip6-localhost":         {},
	"ip6-loopback":          {},
	"ip6-localnet":          {},
	"ip6-mcastprefix":       {},
	"ip6-allnodes":          {},
	"ip6-allrouters":        {},
	"ip6-allhosts":          {},
}

// ParseHostsLine parses one hosts-file line ("0.0.0.0 domain" style) into
// block rules. Only null-routed entries block; comments, entries pointing at
// real addresses, and the loopback boilerplate names are ignored.
func ParseHostsLine(line string, src Source) []Rule {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || (fields[0] != "0.0.0.0" && fields[0] != "127.0.0.1") {
		return nil
	}

	var out []Rule
	for _, name := range fields[1:] {
		if strings.HasPrefix(name, "#") {
			break
		}
		name = utils.NormalizeDomain(name)
		if _, local := localNames[name]; local || !IsDomainPattern(name) {
			continue
		}
		out = append(out, Rule{Pattern: name, Kind: KindDomainBlock, Anchor: AnchorDomain, Source: src})
	}
	return out
}

// IsDomainPattern reports whether s looks like a plain DNS name usable as a
// suffix rule: hostname characters only, at least one dot, no separators.
func IsDomainPattern(s string) bool {
	if len(s) < 3 || !strings.Contains(s, ".") {
		return false
	}
	if s[0] == '.' || s[0] == '-' || s[len(s)-1] == '.' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_':
		case c >= 0x80: // Unicode labels, mapped to punycode on normalization
		default:
			return false
		}
	}
	return true
}

// domainPattern extracts a bare domain from a pattern body, accepting the
// ||domain^, ||domain/ and *.domain shorthands. Returns false when the body
// needs glob matching instead.
func domainPattern(body string) (string, bool) {
	for len(body) > 0 {
		switch body[len(body)-1] {
		case '|', '^', '/':
			body = body[:len(body)-1]
			continue
		}
		break
	}
	body = strings.TrimPrefix(body, "*.")
	body = strings.TrimPrefix(body, ".")
	if !IsDomainPattern(body) {
		return "", false
	}
	return utils.NormalizeDomain(body), true
}

func globRule(body string, anchor Anchor, exception bool, src Source) (Rule, bool) {
	body = stripScheme(body)
	if anchor == AnchorNone {
		body = strings.TrimLeft(body, "*")
	}
	body = strings.TrimRight(body, "*")
	if len(body) < 3 {
		return Rule{}, false
	}
	kind := KindPathGlob
	if exception {
		kind = KindException
	}
	return Rule{Pattern: body, Kind: kind, Anchor: anchor, Source: src}, true
}

func stripScheme(body string) string {
	for _, prefix := range []string{"https://", "http://", "wss://", "ws://", "*://", "//"} {
		if strings.HasPrefix(body, prefix) {
			return strings.TrimPrefix(body, prefix)
		}
	}
	return body
}

func hasUnsupportedOption(opts string) bool {
	for _, opt := range strings.Split(opts, ",") {
		opt = strings.TrimSpace(strings.ToLower(opt))
		for _, bad := range unsupportedOptions {
			if opt == strings.TrimSuffix(bad, "=") || strings.HasPrefix(opt, bad) {
				return true
			}
		}
	}
	return false
}

func blockKind(exception bool) Kind {
	if exception {
		return KindException
	}
	return KindDomainBlock
}
