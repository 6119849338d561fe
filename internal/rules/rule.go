package rules

import "strings"

// Kind identifies how a rule participates in classification.
type Kind uint8

const (
	// KindDomainBlock blocks a domain and all of its subdomains.
	KindDomainBlock Kind = iota
	// KindPathGlob is a wildcard pattern evaluated against domain+path.
	KindPathGlob
	// KindException un-blocks whatever its pattern would otherwise block.
	KindException
	// KindCosmetic marks element-hiding directives. They are recognized so
	// they can be counted, but ParseLine never emits them.
	KindCosmetic
)

func (k Kind) String() string {
	switch k {
	case KindDomainBlock:
		return "domain"
	case KindPathGlob:
		return "glob"
	case KindException:
		return "exception"
	case KindCosmetic:
		return "cosmetic"
	default:
		return "unknown"
	}
}

// Anchor constrains where a pattern may match.
type Anchor uint8

const (
	// AnchorNone patterns may match anywhere in the target.
	AnchorNone Anchor = iota
	// AnchorStart patterns must match at the beginning of the target.
	AnchorStart
	// AnchorDomain patterns must align with a domain-label boundary.
	AnchorDomain
)

func (a Anchor) String() string {
	switch a {
	case AnchorStart:
		return "start"
	case AnchorDomain:
		return "domain"
	default:
		return "none"
	}
}

// Source identifies the filter list a rule came from.
type Source uint8

const (
	SourceEasyList Source = iota
	SourceEasyPrivacy
	SourceMalware
	SourceSocial
	SourceTracking
	SourceCustom
)

func (s Source) String() string {
	switch s {
	case SourceEasyList:
		return "easylist"
	case SourceEasyPrivacy:
		return "easyprivacy"
	case SourceMalware:
		return "malware"
	case SourceSocial:
		return "social"
	case SourceTracking:
		return "tracking"
	case SourceCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Rule is one compiled filter directive. Immutable once constructed: a
// malformed line never produces a Rule.
type Rule struct {
	// Pattern is the normalized matchable text: a bare lowercase domain for
	// domain-form rules, glob text otherwise.
	Pattern string
	Kind    Kind
	Anchor  Anchor
	Source  Source
}

// DomainForm reports whether the rule matches by domain suffix. Exceptions
// parsed from `@@||domain^` lines are domain-form; exceptions parsed from
// glob lines are not.
func (r Rule) DomainForm() bool {
	if r.Kind == KindPathGlob {
		return false
	}
	return !strings.ContainsAny(r.Pattern, "*/^")
}

// Describe returns the human-readable form used in decision reasons and logs.
func (r Rule) Describe() string {
	return r.Pattern + " (" + r.Source.String() + ")"
}
