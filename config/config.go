package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the node-level configuration loaded from TOML.
type Config struct {
	RPCAddress     string `toml:"RPCAddress"`
	MetricsAddress string `toml:"MetricsAddress"`
	DataDir        string `toml:"DataDir"`
	Backend        string `toml:"Backend"`
	NetworkName    string `toml:"NetworkName"`
	Environment    string `toml:"Environment"`
	ParamsFile     string `toml:"ParamsFile"`

	LogFilePath   string `toml:"LogFilePath"`
	LogMaxSizeMB  int    `toml:"LogMaxSizeMB"`
	LogMaxBackups int    `toml:"LogMaxBackups"`
	LogMaxAgeDays int    `toml:"LogMaxAgeDays"`

	OtelEndpoint string `toml:"OtelEndpoint"`
	OtelInsecure bool   `toml:"OtelInsecure"`
	OtelHeaders  string `toml:"OtelHeaders"`
	OtelMetrics  bool   `toml:"OtelMetrics"`
	OtelTraces   bool   `toml:"OtelTraces"`
}

// Load reads the configuration at path, creating a default file when none
// exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8545"
	}
	if strings.TrimSpace(cfg.MetricsAddress) == "" {
		cfg.MetricsAddress = ":9464"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./launch-data"
	}
	if strings.TrimSpace(cfg.Backend) == "" {
		cfg.Backend = "leveldb"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "launch-local"
	}
	if cfg.LogMaxSizeMB <= 0 {
		cfg.LogMaxSizeMB = 100
	}
}

func validate(cfg *Config) error {
	switch cfg.Backend {
	case "memory", "leveldb", "bolt":
	default:
		return fmt.Errorf("config: unknown backend %q (want memory, leveldb, or bolt)", cfg.Backend)
	}
	return nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:     ":8545",
		MetricsAddress: ":9464",
		DataDir:        "./launch-data",
		Backend:        "leveldb",
		NetworkName:    "launch-local",
		LogMaxSizeMB:   100,
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
