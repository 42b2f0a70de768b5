package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() for programmatic handling while keeping readable messages.
var (
	// ErrInvalidBaseURL is returned when the API base URL is empty or not http(s).
	ErrInvalidBaseURL = errors.New("invalid API base URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxDepth is returned when the maximum recursion depth is negative.
	// A depth of 0 is allowed and means only the 26 single letters are queried.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidDelay is returned when the inter-request delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidWorkers is returned when the worker pool size is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownCheckpointBackend is returned for a backend other than auto, json or sqlite.
	ErrUnknownCheckpointBackend = errors.New("unknown checkpoint backend: expected auto, json or sqlite")

	// ErrUnknownOutputFormat is returned when an output format name is not recognized.
	ErrUnknownOutputFormat = errors.New("unknown output format: expected text, json, csv, summary or markdown")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy is not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)
