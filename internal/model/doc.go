// Package model defines the value types shared across prefixscan.
//
// This package contains the following main types:
//   - Prefix helpers: the fixed lowercase alphabet and child expansion
//   - Snapshot: the persisted projection of the visited and result sets
//   - Summary: the statistics of a finished (or interrupted) crawl
//
// Models live in their own package so that the crawler, checkpoint and
// report packages can share them without import cycles.
package model
