// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoint

import (
	"errors"
	"testing"
)

func TestDetectScheme(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Scheme
	}{
		{name: "http", raw: "http://10.200.10.220/zentao", want: SchemeHTTP},
		{name: "https uppercase", raw: "HTTPS://pms.example.com", want: SchemeHTTPS},
		{name: "no scheme", raw: "pms.example.com/zentao", want: SchemeMissing},
		{name: "ftp", raw: "ftp://pms.example.com", want: SchemeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectScheme(tt.raw)
			if got != tt.want {
				t.Errorf("DetectScheme() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		want        string
		expectError bool
	}{
		{name: "plain", raw: "http://10.200.10.220/zentao", want: "http://10.200.10.220/zentao"},
		{name: "trailing slashes", raw: "http://10.200.10.220/zentao//", want: "http://10.200.10.220/zentao"},
		{name: "missing scheme", raw: "pms.example.com/zentao/", want: "http://pms.example.com/zentao"},
		{name: "root only", raw: "https://pms.example.com/", want: "https://pms.example.com"},
		{name: "surrounding spaces", raw: "  http://pms.example.com  ", want: "http://pms.example.com"},
		{name: "empty", raw: "", expectError: true},
		{name: "unsupported scheme", raw: "ftp://pms.example.com", expectError: true},
		{name: "query string", raw: "http://pms.example.com/zentao?m=user", expectError: true},
		{name: "missing host", raw: "http:///zentao", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.expectError {
				if err == nil {
					t.Fatalf("Parse() expected error, got %q", got)
				}
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Errorf("Parse() error type = %T, want *ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEndpointURLs(t *testing.T) {
	e, err := New("http://10.200.10.220/zentao/", "")
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	checks := map[string]string{
		e.LoginURL():          "http://10.200.10.220/zentao/user-login.html",
		e.ProjectListURL():    "http://10.200.10.220/zentao/project-all.html",
		e.BugListURL("2242"):  "http://10.200.10.220/zentao/project-bug-2242-resolution_asc-0-all-0--2000-1.html",
		e.BugViewURL("999"):   "http://10.200.10.220/zentao/bug-view-999.html",
	}
	for got, want := range checks {
		if got != want {
			t.Errorf("url = %v, want %v", got, want)
		}
	}

	if !e.IsLoginURL("http://10.200.10.220/zentao/user-login.html?referer=x") {
		t.Errorf("IsLoginURL() = false, want true")
	}
	if e.IsLoginURL("http://10.200.10.220/zentao/my.html") {
		t.Errorf("IsLoginURL() = true, want false")
	}
}

func TestNewCustomProjectListPath(t *testing.T) {
	e, err := New("http://pms.example.com", "/project-browse.html")
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if got, want := e.ProjectListURL(), "http://pms.example.com/project-browse.html"; got != want {
		t.Errorf("ProjectListURL() = %v, want %v", got, want)
	}
}
