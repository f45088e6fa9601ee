// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package endpoint normalizes the portal base URL and builds the fixed page
// URLs the automation engine navigates to. The path grammar of every template
// is dictated by the portal and must not change.
package endpoint

import "fmt"

// Scheme represents the URL scheme of a portal base URL
type Scheme string

const (
	SchemeHTTP    Scheme = "http"
	SchemeHTTPS   Scheme = "https"
	SchemeMissing Scheme = ""
	SchemeUnknown Scheme = "unknown"
)

// DefaultProjectListPath is the project listing page used for id resolution.
const DefaultProjectListPath = "project-all.html"

// ParseError represents an error that occurred during base URL parsing
type ParseError struct {
	URL    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid portal URL: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid portal URL: %s", e.Reason)
}

// NewParseError creates a new ParseError
func NewParseError(raw, reason, hint string) *ParseError {
	return &ParseError{
		URL:    raw,
		Reason: reason,
		Hint:   hint,
	}
}
