package commands

import (
	"fmt"

	"github.com/dnsblockd/dnsblockd/internal/config"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	Verbose    bool

	// Build identification, set by the linker in main.
	Version string
	Commit  string
	Date    string
}

// loadAndValidateConfigOrFail loads configuration from file and validates it.
// Missing sections added after the file was written are filled with defaults
// before validation runs.
func loadAndValidateConfigOrFail(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	if _, err := cfg.UpgradeConfig(); err != nil {
		return nil, fmt.Errorf("failed to upgrade configuration: %v", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return cfg, nil
}
