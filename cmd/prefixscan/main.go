// Package main provides the entry point for the prefixscan CLI.
//
// prefixscan enumerates every name an autocomplete service knows about by
// exploring the tree of alphabetic query prefixes. Progress is checkpointed
// after every query, so an interrupted crawl resumes where it stopped.
//
// Usage:
//
//	prefixscan crawl
//	prefixscan crawl --depth 3 --workers 8 --delay 500ms
//	prefixscan inspect checkpoint.json
//
// See --help for all available options.
package main

// main is the entry point for prefixscan.
func main() {
	Execute()
}
