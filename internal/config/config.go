package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"github.com/dnsblockd/dnsblockd/internal/log"
)

var (
	sourceNameRegexp = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

const (
	IPTABLES_TMPL_CHAIN     = "chain"
	IPTABLES_TMPL_DNS_IP    = "dns_ip"
	IPTABLES_TMPL_DNS_PORT  = "dns_port"
	IPTABLES_TMPL_INTERFACE = "interface"
)

func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Errorf("Configuration file not found: %s", configFile)
		return nil, fmt.Errorf("configuration file not found: %s", configFile)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	if err := toml.Unmarshal(content, &config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf(derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, fmt.Errorf("failed to parse config file")
		}
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	config._absConfigFilePath = configFile

	log.Debugf("Configuration file path: %s", configFile)

	return &config, nil
}

func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (c *Config) WriteConfig() error {
	config, err := c.SerializeConfig()
	if err != nil {
		return err
	}
	if parentDir := filepath.Dir(c._absConfigFilePath); parentDir != "" {
		if err := os.MkdirAll(parentDir, 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %v", err)
		}
	}
	if err := os.WriteFile(c._absConfigFilePath, config.Bytes(), 0644); err != nil {
		return err
	}
	return nil
}

// UpgradeConfig fills sections and fields added after the config file was written.
func (c *Config) UpgradeConfig() (bool, error) {
	upgraded := false

	if c.General == nil {
		c.General = DefaultGeneral()
		log.Infof("Adding missing \"general\" section with defaults")
		upgraded = true
	}

	if c.DNS == nil {
		c.DNS = DefaultDNS()
		log.Infof("Adding missing \"dns\" section with defaults")
		upgraded = true
	}

	if c.Filtering == nil {
		c.Filtering = DefaultFiltering()
		log.Infof("Adding missing \"filtering\" section with defaults")
		upgraded = true
	}

	if c.DNS.BlockingMode == "" {
		c.DNS.BlockingMode = BlockingModeNullIP

		log.Infof("Upgrading required field \"blocking_mode\" for dns section")
		upgraded = true
	}

	if c.DNS.BlockingTTL == 0 {
		c.DNS.BlockingTTL = DefaultBlockingTTL
		upgraded = true
	}

	return upgraded, nil
}
