package config

import "fmt"

// Preset names accepted by Preset and the "init" command.
const (
	PresetDefault            = "default"
	PresetMinimal            = "minimal"
	PresetPrivacyFocused     = "privacy_focused"
	PresetPerformanceFocused = "performance_focused"
)

const (
	DefaultListenAddr   = "127.0.0.1:5353"
	DefaultAPIAddr      = "127.0.0.1:8080"
	DefaultCacheDir     = "/var/cache/dnsblockd"
	DefaultBlockingTTL  = 300
	DefaultRefreshHours = 24
)

func DefaultGeneral() *GeneralConfig {
	return &GeneralConfig{
		CacheDir: DefaultCacheDir,
	}
}

func DefaultDNS() *DNSConfig {
	return &DNSConfig{
		Listen:       DefaultListenAddr,
		Upstreams:    []string{"udp://1.1.1.1:53", "udp://8.8.8.8:53"},
		BlockingMode: BlockingModeNullIP,
		BlockingTTL:  DefaultBlockingTTL,
	}
}

// DefaultFiltering enables the common advertisement and tracking filters.
// Malware protection stays off because the list is large and its mirrors are
// occasionally unreachable.
func DefaultFiltering() *FilteringConfig {
	return &FilteringConfig{
		EnableEasyList:          true,
		EnableEasyPrivacy:       true,
		EnableMalwareProtection: false,
		BlockTracking:           true,
		BlockSocial:             false,
		AggressiveBlocking:      false,
		CacheFilters:            true,
		CustomFilters:           []string{},
		WhitelistDomains:        []string{},
		RefreshIntervalHours:    DefaultRefreshHours,
	}
}

// MinimalFiltering keeps only the EasyList advertisement filter.
func MinimalFiltering() *FilteringConfig {
	f := DefaultFiltering()
	f.EnableEasyPrivacy = false
	f.BlockTracking = false
	return f
}

// PrivacyFocusedFiltering enables every filter, including the aggressive mode.
func PrivacyFocusedFiltering() *FilteringConfig {
	f := DefaultFiltering()
	f.EnableMalwareProtection = true
	f.BlockSocial = true
	f.AggressiveBlocking = true
	return f
}

// PerformanceFocusedFiltering trades coverage for a smaller index and faster compilation.
func PerformanceFocusedFiltering() *FilteringConfig {
	f := DefaultFiltering()
	f.EnableEasyPrivacy = false
	f.BlockTracking = false
	return f
}

// Preset returns a complete configuration for the given preset name.
func Preset(name string) (*Config, error) {
	cfg := &Config{
		ConfigVersion: 1,
		General:       DefaultGeneral(),
		DNS:           DefaultDNS(),
		API: &APIConfig{
			Enable:      false,
			Listen:      DefaultAPIAddr,
			PrivateOnly: true,
		},
	}

	switch name {
	case PresetDefault, "":
		cfg.Filtering = DefaultFiltering()
	case PresetMinimal:
		cfg.Filtering = MinimalFiltering()
	case PresetPrivacyFocused:
		cfg.Filtering = PrivacyFocusedFiltering()
	case PresetPerformanceFocused:
		cfg.Filtering = PerformanceFocusedFiltering()
	default:
		return nil, fmt.Errorf("unknown preset %q (available: %s, %s, %s, %s)",
			name, PresetDefault, PresetMinimal, PresetPrivacyFocused, PresetPerformanceFocused)
	}

	return cfg, nil
}

// PresetWithPath returns a preset bound to a config file path so it can be written.
func PresetWithPath(name, path string) (*Config, error) {
	cfg, err := Preset(name)
	if err != nil {
		return nil, err
	}
	cfg._absConfigFilePath = path
	return cfg, nil
}
