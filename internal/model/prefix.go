package model

import (
	"errors"
	"strings"
)

// Prefix errors.
var (
	// ErrEmptyPrefix is returned when a prefix is empty.
	ErrEmptyPrefix = errors.New("prefix cannot be empty")
	// ErrInvalidPrefix is returned when a prefix contains characters
	// outside the lowercase ASCII alphabet.
	ErrInvalidPrefix = errors.New("invalid prefix: only a-z are allowed")
)

// Alphabet is the character set the crawler extends prefixes with.
// The remote service is only explored over lowercase ASCII letters.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

// Seeds returns the 26 single-letter prefixes a crawl starts from.
func Seeds() []string {
	seeds := make([]string, 0, len(Alphabet))
	for _, c := range Alphabet {
		seeds = append(seeds, string(c))
	}
	return seeds
}

// Children returns the 26 one-letter extensions of prefix in alphabet order.
func Children(prefix string) []string {
	children := make([]string, 0, len(Alphabet))
	for _, c := range Alphabet {
		children = append(children, prefix+string(c))
	}
	return children
}

// Depth returns the recursion depth of prefix. Single letters are depth 0.
func Depth(prefix string) int {
	return len(prefix) - 1
}

// ValidatePrefix checks that prefix is a non-empty string over Alphabet.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return ErrEmptyPrefix
	}
	for _, c := range prefix {
		if !strings.ContainsRune(Alphabet, c) {
			return ErrInvalidPrefix
		}
	}
	return nil
}
