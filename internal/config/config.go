// Package config provides centralized configuration for the ledger daemon.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the ledger daemon.
type Config struct {
	// Storage settings.
	Storage StorageConfig `yaml:"storage"`

	// RPC settings.
	RPC RPCConfig `yaml:"rpc"`

	// Logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Ledger holds defaults for kernel behavior not fixed by the wire format.
	Ledger LedgerConfig `yaml:"ledger"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	// DataDir is the directory holding the SQLite-backed KV store file.
	DataDir string `yaml:"data_dir"`
}

// RPCConfig holds JSON-RPC and WebSocket transport settings.
type RPCConfig struct {
	// Addr is the listen address for the JSON-RPC/WebSocket server.
	Addr string `yaml:"addr"`

	// RequestTimeout is read from the config file but not applied: the
	// RPC server's HTTP read and write timeouts are fixed at 30 seconds.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// File is read from the config file but not applied: the daemon
	// always logs to stderr.
	File string `yaml:"file"`
}

// LedgerConfig holds kernel defaults the wire format leaves
// implementation-defined (spec §4.6: "limit... treat as
// implementation-defined default").
type LedgerConfig struct {
	// DefaultTransferLimit bounds get_account_transfers/get_account_balances
	// result size when the caller's filter.Limit is zero.
	DefaultTransferLimit uint32 `yaml:"default_transfer_limit"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir: "~/.ledgerd",
		},
		RPC: RPCConfig{
			Addr:           "127.0.0.1:8080",
			RequestTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		Ledger: LedgerConfig{
			DefaultTransferLimit: 8189,
		},
	}
}

// ConfigFileName is the default config file name.
const ConfigFileName = "config.yaml"

// LoadConfig loads configuration from a YAML file under dataDir.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(dataDir string) (*Config, error) {
	expandedDir := expandPath(dataDir)
	configPath := filepath.Join(expandedDir, ConfigFileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.Storage.DataDir = dataDir

		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# ledgerd configuration\n# Generated automatically on first run\n\n")
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigPath returns the expected config file path for a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(expandPath(dataDir), ConfigFileName)
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}
