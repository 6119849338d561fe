package lists

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/filter"
	"github.com/dnsblockd/dnsblockd/internal/log"
	"github.com/dnsblockd/dnsblockd/internal/rules"
)

// Load returns the text of every enabled source plus the inline custom
// filters from the configuration.
//
// With refresh set, URL sources are re-downloaded; otherwise a cached copy is
// used when present. A source that cannot be fetched falls back to its cached
// copy, or is skipped with a warning. Load never fails outright: compilation
// with the sources that did load is always preferable to serving no filter
// at all.
func Load(ctx context.Context, cfg *config.Config, refresh bool) ([]filter.SourceText, []string) {
	var inputs []filter.SourceText
	var warnings []string

	for _, src := range Plan(cfg) {
		text, warn := loadSource(ctx, src, cfg, refresh)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if text == "" {
			continue
		}
		inputs = append(inputs, filter.SourceText{
			Source: src.Tag,
			Name:   src.Name,
			Text:   text,
			Hosts:  src.Hosts,
		})
	}

	if len(cfg.Filtering.CustomFilters) > 0 {
		inputs = append(inputs, filter.SourceText{
			Source: rules.SourceCustom,
			Name:   "custom_filters",
			Text:   strings.Join(cfg.Filtering.CustomFilters, "\n"),
		})
	}

	return inputs, warnings
}

// loadSource returns the text of one source and a warning when the source is
// degraded (unreachable, stale cached copy in use) or entirely unavailable.
func loadSource(ctx context.Context, src *Source, cfg *config.Config, refresh bool) (string, string) {
	if src.File != "" {
		content, err := os.ReadFile(src.File)
		if err != nil {
			warn := fmt.Sprintf("filter list %q unavailable (%v), continuing without it", src.Name, err)
			log.Warnf("%s", warn)
			return "", warn
		}
		return string(content), ""
	}

	if !cfg.Filtering.CacheFilters {
		content, _, err := fetch(ctx, src.URL)
		if err != nil {
			warn := fmt.Sprintf("filter list %q unavailable (%v), continuing without it", src.Name, err)
			log.Warnf("%s", warn)
			return "", warn
		}
		return string(content), ""
	}

	cachePath := src.CachePath(cfg)
	_, cacheErr := os.Stat(cachePath)
	haveCache := cacheErr == nil

	var warn string
	if refresh || !haveCache {
		if _, err := DownloadSource(ctx, src, cfg); err != nil {
			if !haveCache {
				warn := fmt.Sprintf("filter list %q unavailable (%v), continuing without it", src.Name, err)
				log.Warnf("%s", warn)
				return "", warn
			}
			warn = fmt.Sprintf("filter list %q unreachable (%v), using cached copy", src.Name, err)
			log.Warnf("%s", warn)
		}
	}

	content, err := os.ReadFile(cachePath)
	if err != nil {
		warn = fmt.Sprintf("filter list %q unavailable (%v), continuing without it", src.Name, err)
		log.Warnf("%s", warn)
		return "", warn
	}
	return string(content), warn
}

// BuildIndex loads every enabled source and compiles a classification index.
func BuildIndex(ctx context.Context, cfg *config.Config, refresh bool) (*filter.Index, error) {
	inputs, warnings := Load(ctx, cfg, refresh)

	opts := filter.Options{
		Whitelist:  cfg.Filtering.WhitelistDomains,
		Builtin:    builtinRules(cfg),
		Aggressive: cfg.Filtering.AggressiveBlocking,
		Warnings:   warnings,
	}
	return filter.Compile(inputs, opts)
}

// builtinRules returns the pre-parsed tables enabled by the configuration.
func builtinRules(cfg *config.Config) []rules.Rule {
	var builtin []rules.Rule
	if cfg.Filtering.BlockTracking {
		builtin = append(builtin, rules.BuiltinTracking()...)
	}
	if cfg.Filtering.BlockSocial {
		builtin = append(builtin, rules.BuiltinSocial()...)
	}
	return builtin
}
