// Package config provides configuration structures and utilities for prefixscan.
//
// Settings are layered, lowest precedence first:
//  1. Built-in defaults (NewConfig)
//  2. The YAML configuration file (.prefixscan or --config)
//  3. Environment variables prefixed with PREFIXSCAN_, optionally read from .env
//  4. Command-line flags
//
// The resulting Config is validated once before a crawl starts and is not
// reconfigurable while the crawl runs.
package config
