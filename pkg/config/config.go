/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/minfmt/pkg/compress"
)

// Config represents the minfmt configuration
type Config struct {
	Compression Compression `yaml:"compression"`
	Output      Output      `yaml:"output"`
	Workers     int         `yaml:"workers"`
	Catalog     Catalog     `yaml:"catalog"`
	Server      Server      `yaml:"server"`
	Logging     Logging     `yaml:"logging"`
}

// Compression selects the codec applied to encoded bodies
type Compression struct {
	Method          string `yaml:"method"`
	MaxDecodedBytes int64  `yaml:"max_decoded_bytes"` // cap on a decompressed body
}

// Output controls where converted files are written
type Output struct {
	Dir       string `yaml:"dir"` // empty means next to the input
	Overwrite bool   `yaml:"overwrite"`
}

// Catalog configures the conversion history store
type Catalog struct {
	Enabled bool   `yaml:"enabled"`
	DataDir string `yaml:"data_dir"`
}

// Server contains HTTP API configuration
type Server struct {
	Bind         string `yaml:"bind"`
	Port         int    `yaml:"port"`
	APIKey       string `yaml:"api_key"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Compression: Compression{
			Method:          string(compress.MethodZstd),
			MaxDecodedBytes: 256 << 20,
		},
		Workers: 4,
		Catalog: Catalog{
			Enabled: true,
			DataDir: defaultCatalogDir(),
		},
		Server: Server{
			Bind:         "127.0.0.1",
			Port:         8090,
			APIKey:       "auto",
			MaxBodyBytes: 64 << 20,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks that configured values are usable
func (c *Config) Validate() error {
	if _, err := compress.ByName(c.Compression.Method); err != nil {
		return fmt.Errorf("compression: %w", err)
	}
	if c.Compression.MaxDecodedBytes <= 0 {
		return fmt.Errorf("compression max_decoded_bytes must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server max_body_bytes must be positive")
	}
	if c.Catalog.Enabled && c.Catalog.DataDir == "" {
		return fmt.Errorf("catalog data_dir is required when the catalog is enabled")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}

// Compressor returns the configured compression codec
func (c *Config) Compressor() (compress.Codec, error) {
	return compress.ByName(c.Compression.Method)
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unset keys keep their defaults.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadOrDefault loads configPath when it exists and returns defaults otherwise
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" || !ConfigExists(configPath) {
		return DefaultConfig(), nil
	}
	return LoadConfig(configPath)
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file holds the API key.
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a default configuration with a generated API key
func BootstrapConfig(configPath string, catalogDir string) (*Config, error) {
	config := DefaultConfig()
	if catalogDir != "" {
		config.Catalog.DataDir = catalogDir
	}

	apiKey, err := GenerateSecureKey(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}
	config.Server.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./minfmt.yaml"
	}
	return filepath.Join(homeDir, ".config", "minfmt", "config.yaml")
}

func defaultCatalogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./minfmt-catalog"
	}
	return filepath.Join(homeDir, ".local", "share", "minfmt", "catalog")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
