package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".prefixscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .prefixscan configuration file.
// Every field is optional; unset fields leave the current value untouched.
// Pointer fields distinguish "unset" from a meaningful zero (max_depth: 0,
// delay: 0s).
type File struct {
	API        APISection        `yaml:"api,omitempty"`
	Crawl      CrawlSection      `yaml:"crawl,omitempty"`
	Checkpoint CheckpointSection `yaml:"checkpoint,omitempty"`
	Output     OutputSection     `yaml:"output,omitempty"`
}

// APISection configures the query client.
type APISection struct {
	BaseURL     string            `yaml:"base_url,omitempty"`
	Version     *string           `yaml:"version,omitempty"`
	Timeout     time.Duration     `yaml:"timeout,omitempty"`
	UserAgent   string            `yaml:"user_agent,omitempty"`
	Proxy       string            `yaml:"proxy,omitempty"`
	MaxBodySize int64             `yaml:"max_body_size,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
}

// CrawlSection configures the exploration engine.
type CrawlSection struct {
	MaxDepth *int           `yaml:"max_depth,omitempty"`
	Delay    *time.Duration `yaml:"delay,omitempty"`
	Workers  int            `yaml:"workers,omitempty"`
}

// CheckpointSection configures the checkpoint store.
type CheckpointSection struct {
	Path    string `yaml:"path,omitempty"`
	Backend string `yaml:"backend,omitempty"`
}

// OutputSection configures the output artifacts.
type OutputSection struct {
	Dir     string   `yaml:"dir,omitempty"`
	Formats []string `yaml:"formats,omitempty"`
}

// LoadConfigFile loads a configuration file from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cf, nil
}

// Apply overlays the values set in the file onto cfg.
func (cf *File) Apply(cfg *Config) {
	if cf.API.BaseURL != "" {
		cfg.BaseURL = cf.API.BaseURL
	}
	if cf.API.Version != nil {
		cfg.APIVersion = *cf.API.Version
	}
	if cf.API.Timeout != 0 {
		cfg.Timeout = cf.API.Timeout
	}
	if cf.API.UserAgent != "" {
		cfg.UserAgent = cf.API.UserAgent
	}
	if cf.API.Proxy != "" {
		cfg.ProxyAddress = cf.API.Proxy
	}
	if cf.API.MaxBodySize != 0 {
		cfg.MaxBodySize = cf.API.MaxBodySize
	}
	if len(cf.API.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range cf.API.Headers {
			cfg.Headers[k] = v
		}
	}

	if cf.Crawl.MaxDepth != nil {
		cfg.MaxDepth = *cf.Crawl.MaxDepth
	}
	if cf.Crawl.Delay != nil {
		cfg.Delay = *cf.Crawl.Delay
	}
	if cf.Crawl.Workers != 0 {
		cfg.Workers = cf.Crawl.Workers
	}

	if cf.Checkpoint.Path != "" {
		cfg.CheckpointPath = cf.Checkpoint.Path
	}
	if cf.Checkpoint.Backend != "" {
		cfg.CheckpointBackend = cf.Checkpoint.Backend
	}

	if cf.Output.Dir != "" {
		cfg.OutputDir = cf.Output.Dir
	}
	if len(cf.Output.Formats) > 0 {
		cfg.Formats = append([]string(nil), cf.Output.Formats...)
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .prefixscan in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .prefixscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
