package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig_NonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/file.conf")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "invalid.conf")

	invalidTOML := `[general
cache_dir = "/tmp"`

	err := os.WriteFile(configFile, []byte(invalidTOML), 0644)
	if err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	_, err = LoadConfig(configFile)
	if err == nil {
		t.Error("Expected error for invalid TOML")
	}
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "valid.conf")

	validTOML := `config_version = 1

[general]
cache_dir = "/var/cache/dnsblockd"

[dns]
listen = "127.0.0.1:5353"
upstreams = ["udp://1.1.1.1:53"]
blocking_mode = "null_ip"
blocking_ttl = 300

[filtering]
enable_easylist = true
block_tracking = true
cache_filters = true
refresh_interval_hours = 24

[api]
enable = true
listen = "127.0.0.1:8080"
private_only = true

[[source]]
name = "stevenblack"
url = "https://raw.githubusercontent.com/StevenBlack/hosts/master/hosts"
format = "hosts"
category = "advertisement"`

	err := os.WriteFile(configFile, []byte(validTOML), 0644)
	if err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	config, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("Expected no error for valid config: %v", err)
	}

	if config.General == nil {
		t.Fatal("Expected config.General to be non-nil")
	} else if config.General.CacheDir != "/var/cache/dnsblockd" {
		t.Errorf("Expected cache_dir to be '/var/cache/dnsblockd', got %s", config.General.CacheDir)
	}

	if config.DNS == nil {
		t.Fatal("Expected config.DNS to be non-nil")
	}
	if config.DNS.Listen != "127.0.0.1:5353" {
		t.Errorf("Expected listen to be '127.0.0.1:5353', got %s", config.DNS.Listen)
	}
	if len(config.DNS.Upstreams) != 1 {
		t.Fatalf("Expected 1 upstream, got %d", len(config.DNS.Upstreams))
	}

	if len(config.Sources) != 1 {
		t.Fatalf("Expected 1 extra source, got %d", len(config.Sources))
	}
	if config.Sources[0].Name != "stevenblack" {
		t.Errorf("Expected source name 'stevenblack', got %s", config.Sources[0].Name)
	}
	if config.Sources[0].Format != SourceFormatHosts {
		t.Errorf("Expected hosts format, got %s", config.Sources[0].Format)
	}
}

func TestSerializeConfig(t *testing.T) {
	config, err := Preset(PresetDefault)
	if err != nil {
		t.Fatalf("Failed to build preset: %v", err)
	}

	buf, err := config.SerializeConfig()
	if err != nil {
		t.Fatalf("Failed to serialize config: %v", err)
	}

	serialized := buf.String()
	for _, want := range []string{"[general]", "cache_dir", "[dns]", "upstreams", "[filtering]"} {
		if !strings.Contains(serialized, want) {
			t.Errorf("Expected serialized config to contain %q", want)
		}
	}
}

func TestWriteConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "dnsblockd.conf")

	config, err := PresetWithPath(PresetDefault, configFile)
	if err != nil {
		t.Fatalf("Failed to build preset: %v", err)
	}
	if err := config.WriteConfig(); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	reloaded, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("Failed to reload written config: %v", err)
	}
	if reloaded.DNS.Listen != config.DNS.Listen {
		t.Errorf("Expected listen %s after round trip, got %s", config.DNS.Listen, reloaded.DNS.Listen)
	}
	if !reloaded.Filtering.EnableEasyList {
		t.Error("Expected enable_easylist to survive the round trip")
	}
	if err := reloaded.ValidateConfig(); err != nil {
		t.Errorf("Expected reloaded config to validate: %v", err)
	}
}

func TestUpgradeConfig_MissingSections(t *testing.T) {
	config := &Config{ConfigVersion: 1}

	upgraded, err := config.UpgradeConfig()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !upgraded {
		t.Error("Expected config to be upgraded")
	}

	if config.General == nil || config.DNS == nil || config.Filtering == nil {
		t.Fatal("Expected missing sections to be filled with defaults")
	}
	if config.DNS.BlockingMode != BlockingModeNullIP {
		t.Errorf("Expected default blocking mode, got %s", config.DNS.BlockingMode)
	}
	if config.DNS.BlockingTTL != DefaultBlockingTTL {
		t.Errorf("Expected default blocking TTL, got %d", config.DNS.BlockingTTL)
	}

	// A second pass must be a no-op
	upgraded, err = config.UpgradeConfig()
	if err != nil {
		t.Fatalf("Expected no error on second upgrade, got %v", err)
	}
	if upgraded {
		t.Error("Expected second upgrade to change nothing")
	}
}

func TestUpgradeConfig_PartialDNS(t *testing.T) {
	config := &Config{
		General:   DefaultGeneral(),
		DNS:       &DNSConfig{Listen: "127.0.0.1:5353", Upstreams: []string{"udp://1.1.1.1:53"}},
		Filtering: DefaultFiltering(),
	}

	upgraded, err := config.UpgradeConfig()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !upgraded {
		t.Error("Expected upgrade to fill blocking fields")
	}
	if config.DNS.BlockingMode != BlockingModeNullIP {
		t.Errorf("Expected default blocking mode, got %s", config.DNS.BlockingMode)
	}
	if config.DNS.Listen != "127.0.0.1:5353" {
		t.Error("Upgrade must not touch fields that are already set")
	}
}

func TestPreset_AllPresetsValidate(t *testing.T) {
	for _, name := range []string{PresetDefault, PresetMinimal, PresetPrivacyFocused, PresetPerformanceFocused} {
		config, err := Preset(name)
		if err != nil {
			t.Fatalf("Preset %q failed: %v", name, err)
		}
		if _, err := config.UpgradeConfig(); err != nil {
			t.Fatalf("Preset %q failed to upgrade: %v", name, err)
		}
		if err := config.ValidateConfig(); err != nil {
			t.Errorf("Preset %q does not validate: %v", name, err)
		}
	}
}

func TestPreset_Unknown(t *testing.T) {
	_, err := Preset("paranoid")
	if err == nil {
		t.Error("Expected error for unknown preset")
	}
}

func TestPreset_EmptyNameIsDefault(t *testing.T) {
	config, err := Preset("")
	if err != nil {
		t.Fatalf("Expected empty name to select the default preset: %v", err)
	}
	if !config.Filtering.EnableEasyPrivacy {
		t.Error("Expected default preset filtering")
	}
}
