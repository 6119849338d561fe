// Package config handles configuration file parsing and validation for dnsblockd.
//
// This package reads TOML configuration files and provides strongly-typed
// structures for accessing configuration data. It supports automatic upgrade
// of older configuration files and provides comprehensive validation.
//
// # Configuration Structure
//
// The configuration file defines:
//   - General settings (filter cache directory)
//   - DNS listener, upstreams and blocking behavior
//   - Filtering toggles (which lists to compile, aggressive mode, whitelist)
//   - Extra filter sources (URLs or files, filter or hosts syntax)
//   - HTTP API and transparent redirect settings
//
// # Supported Features
//
//   - TOML format with automatic type conversion
//   - Preset configurations (default, minimal, privacy_focused, performance_focused)
//   - Template variables for iptables rules
//   - Source validation (URL or file, reserved names, duplicate detection)
//   - Inline custom filter rule validation
//
// # Example Usage
//
// Loading and validating a configuration file:
//
//	cfg, err := config.LoadConfig("/etc/dnsblockd.conf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatal(err)
//	}
//
// Accessing configuration:
//
//	fmt.Printf("listen: %s, upstreams: %v\n", cfg.DNS.Listen, cfg.DNS.Upstreams)
//	for _, src := range cfg.Sources {
//	    fmt.Printf("source %s (%s)\n", src.Name, src.Type())
//	}
//
// The package provides clear error messages for validation failures, grouped
// per field with the TOML field path.
package config
