// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package portal_test

import (
	"testing"

	zerrors "zentaoctl/cli/internal/errors"
	"zentaoctl/cli/internal/portal"
	"zentaoctl/cli/internal/portal/portaltest"
)

const projectList = `<table class="table">
<tr><th>名称</th><th>状态</th></tr>
<tr><td><a href="/zentao/project-view-11.html">Apollo</a></td><td>进行中</td></tr>
<tr><td><a href="/zentao/project-view-12.html">Apollo Mobile</a></td><td>进行中</td></tr>
<tr><td><a href="/zentao/project-view-20.html" title="Gemini long name">Gemini…</a></td><td>挂起</td></tr>
<tr><td><a href="/zentao/project-view-30.html">Mercury</a></td><td>Mercury</td></tr>
</table>`

func TestResolveProjectID(t *testing.T) {
	tests := []struct {
		name     string
		project  string
		policy   portal.MatchPolicy
		want     string
		wantKind zerrors.Kind
	}{
		{name: "single match", project: "Mobile", want: "12"},
		{name: "title attribute", project: "Gemini long", want: "20"},
		{name: "same id twice in row", project: "Mercury", want: "30"},
		{name: "exact link text breaks tie", project: "Apollo", want: "11"},
		{name: "last row policy", project: "Apollo", policy: portal.MatchLastRow, want: "12"},
		{name: "ambiguous", project: "o", wantKind: zerrors.Ambiguous},
		{name: "last row picks last of many", project: "o", policy: portal.MatchLastRow, want: "20"},
		{name: "not found", project: "Venus", wantKind: zerrors.NotFound},
		{name: "empty name", project: " ", wantKind: zerrors.NotFound},
		{name: "name matched verbatim", project: "Apollo ", want: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := portal.ResolveProjectID(portaltest.Page(projectList), tt.project, tt.policy)
			if tt.wantKind != "" {
				if !zerrors.Is(err, tt.wantKind) {
					t.Errorf("ResolveProjectID() error = %v, want kind %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveProjectID() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveProjectID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseMatchPolicy(t *testing.T) {
	if p, err := portal.ParseMatchPolicy("last"); err != nil || p != portal.MatchLastRow {
		t.Errorf("ParseMatchPolicy(last) = %v, %v", p, err)
	}
	if p, err := portal.ParseMatchPolicy(""); err != nil || p != portal.MatchStrict {
		t.Errorf("ParseMatchPolicy(\"\") = %v, %v", p, err)
	}
	if _, err := portal.ParseMatchPolicy("first"); err == nil {
		t.Error("ParseMatchPolicy(first) should fail")
	}
}
