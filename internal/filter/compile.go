package filter

import (
	"bufio"
	"strings"
	"time"

	"github.com/dnsblockd/dnsblockd/internal/errors"
	"github.com/dnsblockd/dnsblockd/internal/log"
	"github.com/dnsblockd/dnsblockd/internal/rules"
	"github.com/dnsblockd/dnsblockd/internal/utils"
)

// SourceText is one fetched filter source ready for compilation.
type SourceText struct {
	Source rules.Source
	// Name identifies the source in warnings and stats (list name or URL).
	Name string
	Text string
	// Hosts marks hosts-file format ("0.0.0.0 domain" lines) instead of
	// filter-list syntax.
	Hosts bool
}

// Options carries the compilation inputs that are not rule text.
type Options struct {
	// Whitelist domains are exempt from all blocking, regardless of source.
	Whitelist []string
	// Builtin rules are pre-parsed tables (tracker and social domains)
	// compiled alongside the fetched sources.
	Builtin []rules.Rule
	// Aggressive additionally blocks exact matches of the domain part of
	// path-restricted rules. Broader recall, more false positives.
	Aggressive bool
	// Warnings records sources the caller failed to fetch. They are kept on
	// the index so the status API can report a degraded compilation.
	Warnings []string
}

// ErrEmptyIndex is returned when compilation produced no usable rules and no
// whitelist entries. Callers decide whether to keep the previous snapshot or
// abort startup; a silently block-nothing index is never returned.
var ErrEmptyIndex = errors.New(errors.ErrCodeEmptyIndex, "no usable rules or whitelist entries after compilation")

// Source priority for categorizing a domain blocked by several lists.
// Security sources dominate.
var sourcePriority = map[rules.Source]int{
	rules.SourceMalware:     0,
	rules.SourceEasyPrivacy: 1,
	rules.SourceTracking:    2,
	rules.SourceSocial:      3,
	rules.SourceCustom:      4,
	rules.SourceEasyList:    5,
}

// Compile parses every source and builds an immutable Index.
//
// Compilation is pure: the same inputs produce an index that makes identical
// decisions for any query. Identical (pattern, kind, anchor, source) tuples
// are deduplicated to bound memory.
func Compile(inputs []SourceText, opts Options) (*Index, error) {
	idx := &Index{
		domains:      make(map[string]domainEntry),
		aggressive:   make(map[string]rules.Source),
		whitelist:    make(map[string]struct{}, len(opts.Whitelist)),
		aggressiveOn: opts.Aggressive,
	}
	idx.stats.RulesBySource = make(map[string]int)
	idx.stats.Warnings = append([]string(nil), opts.Warnings...)
	idx.stats.BuiltAt = time.Now()

	seen := make(map[ruleKey]struct{})
	for _, in := range inputs {
		idx.ingest(in, seen)
	}
	for _, r := range opts.Builtin {
		idx.add(r, seen)
	}

	for _, domain := range opts.Whitelist {
		domain = strings.TrimPrefix(strings.TrimPrefix(domain, "*."), ".")
		domain = utils.NormalizeDomain(domain)
		if domain == "" {
			continue
		}
		idx.whitelist[domain] = struct{}{}
	}
	idx.stats.WhitelistEntries = len(idx.whitelist)
	idx.stats.AggressiveExact = len(idx.aggressive)

	if len(idx.domains) == 0 && len(idx.globs) == 0 && len(idx.whitelist) == 0 {
		return nil, ErrEmptyIndex
	}
	return idx, nil
}

type ruleKey struct {
	pattern string
	kind    rules.Kind
	anchor  rules.Anchor
	source  rules.Source
}

func (idx *Index) ingest(in SourceText, seen map[ruleKey]struct{}) {
	scanner := bufio.NewScanner(strings.NewReader(in.Text))
	for scanner.Scan() {
		line := scanner.Text()
		if in.Hosts {
			for _, r := range rules.ParseHostsLine(line, in.Source) {
				idx.add(r, seen)
			}
			continue
		}

		r, ok := rules.ParseLine(line, in.Source)
		if !ok {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && trimmed[0] != '!' && trimmed[0] != '[' {
				idx.stats.DroppedLines++
				log.Debugf("skipping unparseable rule from %s: %q", in.Name, trimmed)
			}
			continue
		}
		if r.Kind == rules.KindCosmetic {
			idx.stats.CosmeticSkipped++
			continue
		}
		idx.add(r, seen)
	}
}

func (idx *Index) add(r rules.Rule, seen map[ruleKey]struct{}) {
	key := ruleKey{r.Pattern, r.Kind, r.Anchor, r.Source}
	if _, dup := seen[key]; dup {
		return
	}
	seen[key] = struct{}{}
	idx.stats.RulesBySource[r.Source.String()]++

	if r.DomainForm() {
		entry := idx.domains[r.Pattern]
		rc := r
		if r.Kind == rules.KindException {
			if entry.exception == nil {
				entry.exception = &rc
			}
			idx.stats.ExceptionRules++
		} else {
			if entry.block == nil || sourcePriority[r.Source] < sourcePriority[entry.block.Source] {
				entry.block = &rc
			}
			idx.stats.DomainRules++
		}
		idx.domains[r.Pattern] = entry
		return
	}

	idx.globs = append(idx.globs, r)
	if r.Kind == rules.KindException {
		idx.stats.ExceptionRules++
	} else {
		idx.stats.GlobRules++
	}

	if idx.aggressiveOn {
		if dom, ok := exactDomain(r); ok {
			if _, have := idx.aggressive[dom]; !have {
				idx.aggressive[dom] = r.Source
			}
		}
	}
}

// exactDomain extracts the leading domain of a glob block pattern.
// Aggressive mode blocks exact matches of these names even though the rule
// itself is path-restricted.
func exactDomain(r rules.Rule) (string, bool) {
	if r.Kind != rules.KindPathGlob {
		return "", false
	}
	p := r.Pattern
	if i := strings.IndexAny(p, "/^*"); i >= 0 {
		p = p[:i]
	}
	if !rules.IsDomainPattern(p) {
		return "", false
	}
	return p, true
}
