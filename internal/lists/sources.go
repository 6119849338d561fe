package lists

import (
	"path/filepath"

	"github.com/dnsblockd/dnsblockd/internal/config"
	"github.com/dnsblockd/dnsblockd/internal/rules"
	"github.com/dnsblockd/dnsblockd/internal/utils"
)

// URLs of the built-in filter lists.
const (
	EasyListURL         = "https://easylist.to/easylist/easylist.txt"
	EasyPrivacyURL      = "https://easylist.to/easylist/easyprivacy.txt"
	MalwareDomainsURL   = "https://malware-filter.gitlab.io/malware-filter/urlhaus-filter-online.txt"
	SocialAnnoyancesURL = "https://easylist.to/easylist/fanboy-social.txt"

	// StevenBlackHostsURL is a popular hosts-format blocklist. It is not
	// enabled by default; add it as an extra [[source]] with format = "hosts".
	StevenBlackHostsURL = "https://raw.githubusercontent.com/StevenBlack/hosts/master/hosts"
)

// Source is one filter list scheduled for loading. Exactly one of URL or
// File is set.
type Source struct {
	// Name is the cache file stem and the label used in logs and warnings.
	Name string
	URL  string
	// File is an absolute path for local sources.
	File string
	// Tag is the rule source recorded on every rule parsed from this list.
	Tag rules.Source
	// Hosts marks hosts(5) syntax instead of filter-list syntax.
	Hosts bool
}

// CachePath returns where a downloaded copy of this source is stored.
func (s *Source) CachePath(cfg *config.Config) string {
	return filepath.Join(cfg.GetAbsCacheDir(), s.Name+".txt")
}

// Plan returns the sources enabled by the filtering configuration, built-in
// lists first and extra sources in configuration order.
func Plan(cfg *config.Config) []*Source {
	var plan []*Source
	f := cfg.Filtering

	if f.EnableEasyList {
		plan = append(plan, &Source{Name: "easylist", URL: EasyListURL, Tag: rules.SourceEasyList})
	}
	if f.EnableEasyPrivacy {
		plan = append(plan, &Source{Name: "easyprivacy", URL: EasyPrivacyURL, Tag: rules.SourceEasyPrivacy})
	}
	if f.EnableMalwareProtection {
		plan = append(plan, &Source{Name: "malware", URL: MalwareDomainsURL, Tag: rules.SourceMalware})
	}
	if f.BlockSocial {
		plan = append(plan, &Source{Name: "social", URL: SocialAnnoyancesURL, Tag: rules.SourceSocial})
	}

	for _, src := range cfg.Sources {
		s := &Source{
			Name:  src.Name,
			URL:   src.URL,
			Tag:   categoryTag(src.Category),
			Hosts: src.Format == config.SourceFormatHosts,
		}
		if src.File != "" {
			s.File = utils.GetAbsolutePath(src.File, cfg.GetConfigDir())
		}
		plan = append(plan, s)
	}

	return plan
}

// categoryTag maps the user-facing category of an extra source onto the rule
// source that reports that category.
func categoryTag(category string) rules.Source {
	switch category {
	case "advertisement":
		return rules.SourceEasyList
	case "tracking":
		return rules.SourceTracking
	case "malware":
		return rules.SourceMalware
	case "social":
		return rules.SourceSocial
	default:
		return rules.SourceCustom
	}
}
