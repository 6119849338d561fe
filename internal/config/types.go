package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dnsblockd/dnsblockd/internal/utils"
)

// Blocking modes for the DNS responder.
const (
	BlockingModeNullIP   = "null_ip"
	BlockingModeNXDomain = "nxdomain"
)

// Filter source formats.
const (
	SourceFormatFilter = "filter"
	SourceFormatHosts  = "hosts"
)

type Config struct {
	// ConfigVersion is the configuration file version.
	ConfigVersion uint8 `toml:"config_version" json:"config_version"`
	// General holds general configuration.
	General *GeneralConfig `toml:"general" json:"general"`
	// DNS holds the DNS listener and upstream configuration.
	DNS *DNSConfig `toml:"dns" json:"dns"`
	// Filtering selects which filter lists are compiled and how matches are applied.
	Filtering *FilteringConfig `toml:"filtering" json:"filtering"`
	// API configures the HTTP management API (disabled when section is omitted).
	API *APIConfig `toml:"api" json:"api,omitempty"`
	// Redirect configures transparent interception of port 53 traffic via iptables.
	Redirect *RedirectConfig `toml:"redirect" json:"redirect,omitempty"`
	// Sources are additional filter lists. You must set "name" and either "url" or "file" for each source.
	Sources []*FilterSource `toml:"source,omitempty" json:"source,omitempty"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// CacheDir is the directory for downloaded filter lists.
	CacheDir string `toml:"cache_dir" json:"cache_dir" validate:"required"`
}

type DNSConfig struct {
	// Listen is the DNS listener address in "host:port" form (default: 127.0.0.1:5353).
	Listen string `toml:"listen" json:"listen" validate:"required,hostport_or_empty"`
	// Upstreams lists upstream DNS servers. Supported: udp://ip:port, doh://host/path.
	Upstreams []string `toml:"upstreams" json:"upstreams" validate:"required,min=1,dive,upstream_url"`
	// BlockingMode selects the synthesized answer for blocked queries: "null_ip" (default) or "nxdomain".
	BlockingMode string `toml:"blocking_mode" json:"blocking_mode" validate:"omitempty,oneof=null_ip nxdomain"`
	// BlockingTTL is the TTL in seconds for synthesized answers (default: 300).
	BlockingTTL uint32 `toml:"blocking_ttl" json:"blocking_ttl" validate:"max=86400"`
	// ReusePort enables SO_REUSEPORT on the listeners so multiple processes can share the port.
	ReusePort bool `toml:"reuse_port" json:"reuse_port"`
}

type FilteringConfig struct {
	// EnableEasyList enables the EasyList advertisement filter (default: true).
	EnableEasyList bool `toml:"enable_easylist" json:"enable_easylist"`
	// EnableEasyPrivacy enables the EasyPrivacy tracking filter (default: true).
	EnableEasyPrivacy bool `toml:"enable_easyprivacy" json:"enable_easyprivacy"`
	// EnableMalwareProtection enables the malware domain filter (default: false, the list is large and slow to fetch).
	EnableMalwareProtection bool `toml:"enable_malware_protection" json:"enable_malware_protection"`
	// BlockTracking enables the built-in tracker domain table (default: true).
	BlockTracking bool `toml:"block_tracking" json:"block_tracking"`
	// BlockSocial enables the social widget filter and built-in social domain table (default: false).
	BlockSocial bool `toml:"block_social" json:"block_social"`
	// AggressiveBlocking additionally blocks the base domain of every path-restricted rule (default: false).
	AggressiveBlocking bool `toml:"aggressive_blocking" json:"aggressive_blocking"`
	// CacheFilters caches downloaded lists in cache_dir and reuses them when a fetch fails (default: true).
	CacheFilters bool `toml:"cache_filters" json:"cache_filters"`
	// CustomFilters are inline rules in filter-list syntax, compiled with the "custom" category.
	CustomFilters []string `toml:"custom_filters" json:"custom_filters"`
	// WhitelistDomains are never blocked, including their subdomains.
	WhitelistDomains []string `toml:"whitelist_domains" json:"whitelist_domains"`
	// RefreshIntervalHours is the interval for background list refresh (0 = disabled, default: 24).
	RefreshIntervalHours int `toml:"refresh_interval_hours" json:"refresh_interval_hours" validate:"gte=0"`
}

type APIConfig struct {
	// Enable enables the HTTP management API (default: false).
	Enable bool `toml:"enable" json:"enable"`
	// Listen is the API listener address in "host:port" form (default: 127.0.0.1:8080).
	Listen string `toml:"listen" json:"listen" validate:"hostport_or_empty,required_if=Enable true"`
	// PrivateOnly restricts API access to loopback and private subnets (default: true).
	PrivateOnly bool `toml:"private_only" json:"private_only"`
	// EnableMetrics exposes Prometheus metrics on /metrics (default: false).
	EnableMetrics bool `toml:"enable_metrics" json:"enable_metrics"`
}

type RedirectConfig struct {
	// Enable installs iptables rules that redirect port 53 traffic to the DNS listener (default: false).
	Enable bool `toml:"enable" json:"enable"`
	// Interfaces are the LAN interfaces to intercept DNS traffic on.
	Interfaces []string `toml:"interfaces" json:"interfaces" validate:"required_if=Enable true"`
	// IPTablesRules are additional iptables rules (you can provide multiple rules). Available variables: {{chain}}, {{dns_ip}}, {{dns_port}}, {{interface}}.
	IPTablesRules []*IPTablesRule `toml:"iptables_rule,omitempty" json:"iptables_rule,omitempty" validate:"dive"`
}

type IPTablesRule struct {
	Chain string   `toml:"chain" json:"chain"`
	Table string   `toml:"table" json:"table"`
	Rule  []string `toml:"rule" json:"rule"`
}

// String returns a string representation of the rule
func (r *IPTablesRule) String() string {
	return fmt.Sprintf("%s/%s: %s", r.Table, r.Chain, strings.Join(r.Rule, " "))
}

// FilterSource is a user-supplied filter list, fetched from a URL or read from a local file.
type FilterSource struct {
	// Name identifies the source in logs and statistics.
	Name string `toml:"name" json:"name" validate:"required,source_name"`
	// URL is the URL of the list (optional).
	URL string `toml:"url,omitempty" json:"url,omitempty" validate:"omitempty,url"`
	// File is the local file path of the list (optional).
	File string `toml:"file,omitempty" json:"file,omitempty"`
	// Format is the list syntax: "filter" (default) or "hosts".
	Format string `toml:"format,omitempty" json:"format,omitempty" validate:"omitempty,oneof=filter hosts"`
	// Category is the category reported for domains this source blocks (default: custom).
	Category string `toml:"category,omitempty" json:"category,omitempty" validate:"omitempty,oneof=advertisement tracking malware social custom"`
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

func (c *Config) GetAbsCacheDir() string {
	return utils.GetAbsolutePath(c.General.CacheDir, c.GetConfigDir())
}

func (src *FilterSource) Type() string {
	if src.URL != "" {
		return "url"
	}
	return "file"
}

// CachePath returns the path where a downloaded copy of this source is stored.
func (src *FilterSource) CachePath(cfg *Config) string {
	return filepath.Join(cfg.GetAbsCacheDir(), fmt.Sprintf("%s.txt", src.Name))
}

func (src *FilterSource) GetAbsolutePath(cfg *Config) (string, error) {
	var path string
	if src.URL != "" {
		path = src.CachePath(cfg)
	} else if src.File != "" {
		path = utils.GetAbsolutePath(src.File, cfg.GetConfigDir())
	}

	if path == "" {
		return "", fmt.Errorf("source path is empty")
	}

	return path, nil
}

func (src *FilterSource) GetAbsolutePathAndCheckExists(cfg *Config) (string, error) {
	if path, err := src.GetAbsolutePath(cfg); err != nil {
		return "", err
	} else {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if src.URL != "" {
				return "", fmt.Errorf("source file does not exist: %s, please run 'dnsblockd download' first", path)
			} else {
				return "", fmt.Errorf("source file does not exist: %s", path)
			}
		}

		return path, nil
	}
}
