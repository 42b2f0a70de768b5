package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable prefixscan reads.
const EnvPrefix = "PREFIXSCAN_"

// Environment variable names (without EnvPrefix).
const (
	EnvBaseURL           = "BASE_URL"
	EnvAPIVersion        = "API_VERSION"
	EnvTimeout           = "TIMEOUT"
	EnvUserAgent         = "USER_AGENT"
	EnvProxy             = "PROXY"
	EnvAPIKey            = "API_KEY"
	EnvMaxDepth          = "MAX_DEPTH"
	EnvDelay             = "DELAY"
	EnvWorkers           = "WORKERS"
	EnvCheckpoint        = "CHECKPOINT"
	EnvCheckpointBackend = "CHECKPOINT_BACKEND"
	EnvOutputDir         = "OUTPUT_DIR"
	EnvFormats           = "FORMATS"
)

// APIKeyHeader is the header an API key from the environment is sent in.
const APIKeyHeader = "X-API-Key"

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables that are already set are not overridden. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays PREFIXSCAN_* environment variables onto cfg.
// lookup is usually os.LookupEnv; tests pass a map-backed function.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := get(EnvAPIVersion); ok {
		cfg.APIVersion = v
	}
	if v, ok := get(EnvUserAgent); ok && v != "" {
		cfg.UserAgent = v
	}
	if v, ok := get(EnvProxy); ok {
		cfg.ProxyAddress = v
	}
	if v, ok := get(EnvAPIKey); ok && v != "" {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[APIKeyHeader] = v
	}
	if v, ok := get(EnvCheckpoint); ok && v != "" {
		cfg.CheckpointPath = v
	}
	if v, ok := get(EnvCheckpointBackend); ok && v != "" {
		cfg.CheckpointBackend = v
	}
	if v, ok := get(EnvOutputDir); ok && v != "" {
		cfg.OutputDir = v
	}
	if v, ok := get(EnvFormats); ok && v != "" {
		cfg.Formats = splitList(v)
	}

	if v, ok := get(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v, ok := get(EnvDelay); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvDelay, err)
		}
		cfg.Delay = d
	}
	if v, ok := get(EnvMaxDepth); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvMaxDepth, err)
		}
		cfg.MaxDepth = n
	}
	if v, ok := get(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvWorkers, err)
		}
		cfg.Workers = n
	}

	return nil
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
