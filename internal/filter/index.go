package filter

import (
	"time"

	"github.com/dnsblockd/dnsblockd/internal/rules"
)

// Index is the compiled, queryable form of an entire rule set. It is built
// once per compilation and never mutated afterwards: it is either the live
// snapshot or a discarded predecessor.
type Index struct {
	// domains maps a lowercase domain suffix to the rules anchored at it.
	domains map[string]domainEntry
	// globs are evaluated in insertion order against domain+path.
	globs []rules.Rule
	// aggressive holds exact domain names widened from path-restricted
	// rules. Only consulted when aggressive mode was compiled in.
	aggressive map[string]rules.Source
	// whitelist is a suffix set that overrides every block rule.
	whitelist map[string]struct{}

	aggressiveOn bool

	stats IndexStats
}

type domainEntry struct {
	block     *rules.Rule
	exception *rules.Rule
}

// IndexStats describes a compiled index for logs and the status API.
type IndexStats struct {
	DomainRules      int            `json:"domain_rules"`
	GlobRules        int            `json:"glob_rules"`
	ExceptionRules   int            `json:"exception_rules"`
	AggressiveExact  int            `json:"aggressive_exact"`
	WhitelistEntries int            `json:"whitelist_entries"`
	CosmeticSkipped  int            `json:"cosmetic_skipped"`
	DroppedLines     int            `json:"dropped_lines"`
	RulesBySource    map[string]int `json:"rules_by_source"`
	Warnings         []string       `json:"warnings,omitempty"`
	BuiltAt          time.Time      `json:"built_at"`
}

// Stats returns a copy of the compilation statistics.
func (idx *Index) Stats() IndexStats {
	if idx == nil {
		return IndexStats{}
	}
	out := idx.stats
	out.RulesBySource = make(map[string]int, len(idx.stats.RulesBySource))
	for k, v := range idx.stats.RulesBySource {
		out.RulesBySource[k] = v
	}
	out.Warnings = append([]string(nil), idx.stats.Warnings...)
	return out
}
