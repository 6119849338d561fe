package filter

import (
	"strings"

	"github.com/dnsblockd/dnsblockd/internal/rules"
	"github.com/dnsblockd/dnsblockd/internal/utils"
)

// Category is the verdict class of a classification decision.
type Category uint8

const (
	CategoryClean Category = iota
	CategoryAdvertisement
	CategoryTracking
	CategoryMalware
	CategorySocial
	CategoryCustom
	CategoryWhitelisted
)

func (c Category) String() string {
	switch c {
	case CategoryAdvertisement:
		return "advertisement"
	case CategoryTracking:
		return "tracking"
	case CategoryMalware:
		return "malware"
	case CategorySocial:
		return "social"
	case CategoryCustom:
		return "custom"
	case CategoryWhitelisted:
		return "whitelisted"
	default:
		return "clean"
	}
}

// CategoryForSource maps a rule's origin to the category it blocks under.
func CategoryForSource(src rules.Source) Category {
	switch src {
	case rules.SourceMalware:
		return CategoryMalware
	case rules.SourceEasyPrivacy, rules.SourceTracking:
		return CategoryTracking
	case rules.SourceSocial:
		return CategorySocial
	case rules.SourceCustom:
		return CategoryCustom
	default:
		return CategoryAdvertisement
	}
}

// Query is one classification request.
type Query struct {
	Domain string
	// Path is the URL path when known. DNS queries leave it empty.
	Path string
	// Referrer is accepted for future third-party refinement; it does not
	// change the precedence rules.
	Referrer string
}

// Decision is the answer returned per query.
type Decision struct {
	Blocked  bool
	Category Category
	// Reason is the human-readable rule description (pattern + source).
	Reason string
	// Rule points into the index the decision was made against; nil when no
	// rule decided the outcome.
	Rule *rules.Rule
}

// Classify runs the precedence chain for one query: whitelist, exceptions,
// domain blocks, aggressive exact matches, path globs. First match wins;
// nothing matching is Clean.
//
// Classification never fails: a nil index or an unmappable domain degrades
// to Clean, since failing closed would black-hole all resolution.
func (idx *Index) Classify(q Query) Decision {
	if idx == nil {
		return Decision{Category: CategoryClean, Reason: "no index loaded"}
	}

	domain := utils.NormalizeDomain(q.Domain)
	if domain == "" {
		return Decision{Category: CategoryClean, Reason: "empty domain"}
	}

	// Whitelist short-circuits everything, regardless of source.
	whitelisted := false
	utils.WalkSuffixes(domain, func(s string) bool {
		if _, ok := idx.whitelist[s]; ok {
			whitelisted = true
			return false
		}
		return true
	})
	if whitelisted {
		return Decision{Category: CategoryWhitelisted, Reason: "domain is whitelisted"}
	}

	// An exception at any suffix level is an explicit allow, even when a
	// more specific block rule exists.
	var exception *rules.Rule
	utils.WalkSuffixes(domain, func(s string) bool {
		if e, ok := idx.domains[s]; ok && e.exception != nil {
			exception = e.exception
			return false
		}
		return true
	})
	if exception != nil {
		return Decision{Category: CategoryClean, Reason: "exception " + exception.Describe(), Rule: exception}
	}

	// Most specific domain block wins.
	var block *rules.Rule
	utils.WalkSuffixes(domain, func(s string) bool {
		if e, ok := idx.domains[s]; ok && e.block != nil {
			block = e.block
			return false
		}
		return true
	})
	if block != nil {
		return Decision{
			Blocked:  true,
			Category: CategoryForSource(block.Source),
			Reason:   "matched " + block.Describe(),
			Rule:     block,
		}
	}

	// Aggressive mode widens path-restricted rules to their bare domain.
	// Strictly additive, always Advertisement, never consulted before the
	// whitelist and exception passes above.
	if idx.aggressiveOn {
		if src, ok := idx.aggressive[domain]; ok {
			return Decision{
				Blocked:  true,
				Category: CategoryAdvertisement,
				Reason:   "aggressive exact match (" + src.String() + ")",
			}
		}
	}

	// Ordered glob evaluation, first match wins.
	target := domain
	if q.Path != "" {
		path := strings.ToLower(q.Path)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		target = domain + path
	}
	for i := range idx.globs {
		r := &idx.globs[i]
		if !globMatches(r, target, len(domain)) {
			continue
		}
		if r.Kind == rules.KindException {
			return Decision{Category: CategoryClean, Reason: "exception " + r.Describe(), Rule: r}
		}
		return Decision{
			Blocked:  true,
			Category: CategoryForSource(r.Source),
			Reason:   "matched " + r.Describe(),
			Rule:     r,
		}
	}

	return Decision{Category: CategoryClean, Reason: "no rule matched"}
}
