// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package portal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	zerrors "zentaoctl/cli/internal/errors"
)

// MatchPolicy decides what happens when several project rows mention a name.
type MatchPolicy int

const (
	// MatchStrict fails on more than one distinct id unless exactly one
	// row's link text equals the name.
	MatchStrict MatchPolicy = iota
	// MatchLastRow keeps the last matching row in document order.
	MatchLastRow
)

// ParseMatchPolicy maps "strict" and "last" to a policy.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return MatchStrict, nil
	case "last", "last-row", "last_row":
		return MatchLastRow, nil
	}
	return MatchStrict, fmt.Errorf("unknown match policy %q (use strict or last)", s)
}

var (
	projectLink   = ByCSS(`a[href*="project-view"]`)
	projectViewRe = regexp.MustCompile(`project-view-(\d+)`)
)

type projectMatch struct {
	ID    string
	Label string
}

// ResolveProjectID picks the project id for name out of a project-list page.
// name is matched as given, without normalization.
func ResolveProjectID(html, name string, policy MatchPolicy) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", zerrors.New(zerrors.NotFound, "project name is empty")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", zerrors.Wrap(zerrors.Unexpected, "project list could not be parsed", err)
	}
	matches := findProjectMatches(doc, name)
	if len(matches) == 0 {
		return "", zerrors.New(zerrors.NotFound, fmt.Sprintf("project %q not found", name))
	}
	if policy == MatchLastRow {
		return matches[len(matches)-1].ID, nil
	}

	ids := distinctIDs(matches)
	if len(ids) == 1 {
		return ids[0], nil
	}
	var exact []projectMatch
	for _, m := range matches {
		if m.Label == name {
			exact = append(exact, m)
		}
	}
	if exactIDs := distinctIDs(exact); len(exactIDs) == 1 {
		return exactIDs[0], nil
	}
	return "", zerrors.New(zerrors.Ambiguous,
		fmt.Sprintf("project %q matches several projects: %s", name, describeMatches(matches)))
}

func findProjectMatches(doc *goquery.Document, name string) []projectMatch {
	var matches []projectMatch
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if !rowMentions(row, name) {
			return
		}
		link := row.Find(`a[href*="project-view-"]`).First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		m := projectViewRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		matches = append(matches, projectMatch{ID: m[1], Label: strings.TrimSpace(link.Text())})
	})
	return matches
}

// rowMentions reports whether the row's text or any title attribute inside
// it contains name.
func rowMentions(row *goquery.Selection, name string) bool {
	if strings.Contains(row.Text(), name) {
		return true
	}
	found := false
	row.Find("[title]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t, _ := s.Attr("title"); strings.Contains(t, name) {
			found = true
			return false
		}
		return true
	})
	return found
}

func distinctIDs(matches []projectMatch) []string {
	seen := make(map[string]bool, len(matches))
	var ids []string
	for _, m := range matches {
		if !seen[m.ID] {
			seen[m.ID] = true
			ids = append(ids, m.ID)
		}
	}
	return ids
}

func describeMatches(matches []projectMatch) string {
	seen := make(map[string]bool, len(matches))
	var parts []string
	for _, m := range matches {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Label, m.ID))
	}
	return strings.Join(parts, ", ")
}
