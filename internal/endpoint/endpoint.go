// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoint

import (
	"fmt"
	"net/url"
	"strings"
)

// DetectScheme detects the scheme of a raw base URL
func DetectScheme(raw string) Scheme {
	lower := strings.ToLower(strings.TrimSpace(raw))

	if strings.HasPrefix(lower, "https://") {
		return SchemeHTTPS
	}
	if strings.HasPrefix(lower, "http://") {
		return SchemeHTTP
	}
	if strings.Contains(lower, "://") {
		return SchemeUnknown
	}
	return SchemeMissing
}

// Parse validates a raw base URL and returns its normalized form.
// A missing scheme defaults to http, and trailing slashes are removed.
func Parse(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", NewParseError(raw, "empty URL", "provide the portal root, e.g. http://10.200.10.220/zentao")
	}

	candidate := raw
	switch DetectScheme(raw) {
	case SchemeMissing:
		candidate = "http://" + raw
	case SchemeUnknown:
		return "", NewParseError(raw, "unsupported scheme", "use http:// or https://")
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", NewParseError(raw, err.Error(), "check the URL for typos")
	}
	if strings.TrimSpace(u.Hostname()) == "" {
		return "", NewParseError(raw, "missing host", "provide host in format http://host/zentao")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", NewParseError(raw, "query or fragment not allowed", "use only the portal root path")
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String(), nil
}

// Endpoint builds portal page URLs from a normalized base URL.
type Endpoint struct {
	Base            string
	ProjectListPath string
}

// New parses base and returns an Endpoint. An empty projectListPath selects
// DefaultProjectListPath.
func New(base, projectListPath string) (Endpoint, error) {
	normalized, err := Parse(base)
	if err != nil {
		return Endpoint{}, err
	}
	projectListPath = strings.TrimLeft(strings.TrimSpace(projectListPath), "/")
	if projectListPath == "" {
		projectListPath = DefaultProjectListPath
	}
	return Endpoint{Base: normalized, ProjectListPath: projectListPath}, nil
}

// LoginURL returns {base}/user-login.html.
func (e Endpoint) LoginURL() string {
	return e.Base + "/user-login.html"
}

// ProjectListURL returns the project listing page.
func (e Endpoint) ProjectListURL() string {
	return e.Base + "/" + e.ProjectListPath
}

// BugListURL returns the list page for one project, sorted ascending by
// resolution and sized large enough to avoid pagination.
func (e Endpoint) BugListURL(projectID string) string {
	return fmt.Sprintf("%s/project-bug-%s-resolution_asc-0-all-0--2000-1.html", e.Base, projectID)
}

// BugViewURL returns the detail page of one record.
func (e Endpoint) BugViewURL(recordID string) string {
	return fmt.Sprintf("%s/bug-view-%s.html", e.Base, recordID)
}

// IsLoginURL reports whether location still points at the login page.
func (e Endpoint) IsLoginURL(location string) bool {
	return strings.Contains(location, "user-login")
}
