// Package config provides configuration loading and structs for the autosuggest service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool              `yaml:"debug"`
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Autosuggest AutosuggestConfig `yaml:"autosuggest"`
	Watch       WatchConfig       `yaml:"watch"`
}

// WatchConfig holds content directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the document database and the suggest index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// AutosuggestConfig holds the autosuggest feature settings. Empty list and string values
// are left empty here; the endpoint resolver applies its own defaults.
type AutosuggestConfig struct {
	// Mode is "managed" or "self_hosted" (default).
	Mode string `yaml:"mode"`
	// ManagedHost is the base URL of the managed search service.
	ManagedHost string `yaml:"managed_host"`
	// IndexName is the managed index the suggest URL points at.
	IndexName string `yaml:"index_name"`
	// EndpointURL is the self-hosted suggest endpoint. It is exposed to the public.
	EndpointURL  string   `yaml:"endpoint_url"`
	SearchFields []string `yaml:"search_fields"`
	PostTypes    []string `yaml:"post_types"`
	PostStatus   string   `yaml:"post_status"`
	// Action is "navigate" (default) or "search".
	Action string `yaml:"action"`
	// MinGram and MaxGram bound the prefixes indexed by the edge n-gram analyzer.
	MinGram int `yaml:"min_gram"`
	MaxGram int `yaml:"max_gram"`
	// BaseSchemaPath optionally points at a JSON index schema to augment instead of the
	// built-in one.
	BaseSchemaPath string `yaml:"base_schema_path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	if cfg.Autosuggest.BaseSchemaPath != "" {
		cfg.Autosuggest.BaseSchemaPath = expandPath(cfg.Autosuggest.BaseSchemaPath, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Validate rejects values the server cannot run with. Call after ApplyDefaults.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Autosuggest.MinGram < 1 {
		return fmt.Errorf("autosuggest.min_gram must be at least 1, got %d", c.Autosuggest.MinGram)
	}
	if c.Autosuggest.MaxGram < c.Autosuggest.MinGram {
		return fmt.Errorf("autosuggest.max_gram %d is below min_gram %d", c.Autosuggest.MaxGram, c.Autosuggest.MinGram)
	}
	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("watch extension %q must start with a dot", ext)
		}
	}
	return nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
