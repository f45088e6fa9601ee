// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package portal drives the issue-tracking portal through a headless browser.
// It owns the browser session (launch, login, teardown), resolves project names
// to portal ids, scrapes the record list of a project into Records, and drives
// state transitions (close, activate, resolve, assign) on single records.
//
// All DOM reads go through HTML snapshots parsed with goquery, so the parsing
// and filtering rules are plain functions that can be exercised without a
// browser. Live interactions (navigation, clicks, form filling) go through the
// Browser interface, implemented on top of chromedp.
package portal

import (
	"log/slog"
	"strings"
)

// AllSentinel is the portal's "any value" choice for condition filters.
const AllSentinel = "全部"

// Credentials identify the admin account used to log into the portal.
// They live only for the duration of one operation.
type Credentials struct {
	Account  string
	Password string `masq:"secret"`
}

// Configured reports whether both fields are present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.Account) != "" && c.Password != ""
}

// LogValue keeps the password out of structured logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("account", c.Account))
}

// Record is one row scraped from a project's record list.
type Record struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	OpenedBy   string `json:"opened_by"`
	AssignedTo string `json:"assigned_to"`
	Solution   string `json:"solution"`
}

// FilterMode selects which inclusion rule applies to scraped rows.
type FilterMode int

const (
	// ModeUnfiltered keeps every row with an id.
	ModeUnfiltered FilterMode = iota
	// ModeByCondition keeps rows matching assigned_to and solution.
	ModeByCondition
	// ModeByID keeps the single row with the requested id.
	ModeByID
)

func (m FilterMode) String() string {
	switch m {
	case ModeByCondition:
		return "by_condition"
	case ModeByID:
		return "by_id"
	default:
		return "unfiltered"
	}
}

// Query describes one list lookup. RecordID takes priority over the
// AssignedTo/Solution pair when both are filled in.
type Query struct {
	ProjectName string `json:"project_name"`
	AssignedTo  string `json:"assigned_to"`
	Solution    string `json:"solution"`
	RecordID    string `json:"record_id"`
}

// Mode reports the inclusion rule selected by the filled-in fields.
func (q Query) Mode() FilterMode {
	if strings.TrimSpace(q.RecordID) != "" {
		return ModeByID
	}
	if strings.TrimSpace(q.AssignedTo) != "" && strings.TrimSpace(q.Solution) != "" {
		return ModeByCondition
	}
	return ModeUnfiltered
}

// IsAll reports whether v is the "any value" choice of a condition filter.
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == AllSentinel || strings.EqualFold(v, "all")
}

// ActionCommand asks for one state transition on one record.
type ActionCommand struct {
	RecordID string
	Action   Action
	Comment  string
}

// OperationResult is the terminal value of a query or an action.
type OperationResult struct {
	Success bool
	Message string
}
