package config

import (
	"net"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBaseURL is the autocomplete service the crawler was written against.
	DefaultBaseURL = "http://35.200.185.69:8000"

	// DefaultAPIVersion is the version path segment inserted before the endpoint.
	DefaultAPIVersion = "v1"

	// EndpointPath is the autocomplete resource below the versioned base URL.
	EndpointPath = "autocomplete"

	// DefaultTimeout bounds a single HTTP request, including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth bounds recursion. Seeds are depth 0, so the longest
	// prefix ever queried is DefaultMaxDepth+1 characters.
	DefaultMaxDepth = 5

	// DefaultDelay is waited by a worker before each query it issues.
	// The delay is per worker, so aggregate throughput grows with Workers.
	DefaultDelay = 1 * time.Second

	// DefaultWorkers is the size of the worker pool the 26 seeds are spread over.
	DefaultWorkers = 4

	// DefaultUserAgent identifies prefixscan in HTTP requests.
	DefaultUserAgent = "prefixscan/1.0 (+https://github.com/nao1215/prefixscan)"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 1 * 1024 * 1024 // 1MB

	// DefaultCheckpointFile is the JSON checkpoint path when none is configured.
	DefaultCheckpointFile = "checkpoint.json"

	// DefaultSQLiteFile is the SQLite checkpoint file name inside the XDG data dir.
	DefaultSQLiteFile = "checkpoint.db"

	// DefaultOutputDir is where output artifacts are written.
	DefaultOutputDir = "."

	// AppName is the application name used for XDG directory paths.
	AppName = "prefixscan"
)

// Checkpoint backend names, used by the checkpoint package.
const (
	BackendAuto   = "auto"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Output format names, used by the report package.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatSummary  = "summary"
	FormatMarkdown = "markdown"
)

// KnownFormats lists every output format in the order artifacts are written.
var KnownFormats = []string{FormatText, FormatJSON, FormatCSV, FormatSummary, FormatMarkdown}

// DefaultFormats are the artifacts produced when no format is configured.
var DefaultFormats = []string{FormatText, FormatJSON, FormatCSV, FormatSummary}

// Config holds all configuration options for prefixscan.
// It is populated from defaults, the config file, the environment and CLI
// flags, then passed down explicitly; nothing reads global state.
type Config struct {
	// BaseURL is the scheme and host of the autocomplete service.
	BaseURL string

	// APIVersion is the version path segment, e.g. "v1". Empty omits the segment.
	APIVersion string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every query.
	UserAgent string

	// Headers are extra static headers sent with every query (API keys etc.).
	Headers map[string]string

	// ProxyAddress routes queries through a SOCKS5 proxy in host:port form.
	// Empty means direct connections.
	ProxyAddress string

	// MaxBodySize is the maximum response body size in bytes. 0 uses the default.
	MaxBodySize int64

	// MaxDepth is the deepest recursion level that is still queried.
	MaxDepth int

	// Delay is waited before every query, independently by each worker.
	Delay time.Duration

	// Workers is the number of seed subtrees explored concurrently.
	Workers int

	// CheckpointPath is the checkpoint location. Empty resolves per backend,
	// see ResolveCheckpointPath.
	CheckpointPath string

	// CheckpointBackend selects the checkpoint store: auto, json or sqlite.
	CheckpointBackend string

	// OutputDir is the directory output artifacts are written into.
	OutputDir string

	// Formats lists the output artifacts to produce after the crawl.
	Formats []string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONLogs switches the log handler to JSON.
	JSONLogs bool

	// ConfigFilePath is the explicit configuration file, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		APIVersion:        DefaultAPIVersion,
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		Headers:           make(map[string]string),
		MaxBodySize:       DefaultMaxBodySize,
		MaxDepth:          DefaultMaxDepth,
		Delay:             DefaultDelay,
		Workers:           DefaultWorkers,
		CheckpointBackend: BackendAuto,
		OutputDir:         DefaultOutputDir,
		Formats:           slices.Clone(DefaultFormats),
	}
}

// Endpoint returns the full autocomplete URL without the query string.
// Example: http://35.200.185.69:8000/v1/autocomplete
func (c *Config) Endpoint() string {
	base := strings.TrimRight(c.BaseURL, "/")
	version := strings.Trim(c.APIVersion, "/")
	if version == "" {
		return base + "/" + EndpointPath
	}
	return base + "/" + version + "/" + EndpointPath
}

// ResolveCheckpointPath returns the checkpoint location to use.
// An explicit CheckpointPath always wins. Otherwise the SQLite backend
// stores its database in the XDG data directory and every other backend
// uses checkpoint.json in the working directory.
func (c *Config) ResolveCheckpointPath() string {
	if c.CheckpointPath != "" {
		return c.CheckpointPath
	}
	if c.CheckpointBackend == BackendSQLite {
		return filepath.Join(XDGDataDir(), DefaultSQLiteFile)
	}
	return DefaultCheckpointFile
}

// HasFormat reports whether the named output format is enabled.
func (c *Config) HasFormat(format string) bool {
	return slices.Contains(c.Formats, format)
}

// XDGDataDir returns the XDG data directory for prefixscan.
// On Linux: ~/.local/share/prefixscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for prefixscan.
// On Linux: ~/.config/prefixscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.CheckpointBackend {
	case BackendAuto, BackendJSON, BackendSQLite:
	default:
		return ErrUnknownCheckpointBackend
	}

	for _, f := range c.Formats {
		if !slices.Contains(KnownFormats, f) {
			return ErrUnknownOutputFormat
		}
	}

	if c.ProxyAddress != "" && !isValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}

	return nil
}

// isValidProxyAddress checks if the address is in "host:port" form with a
// port between 1 and 65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
