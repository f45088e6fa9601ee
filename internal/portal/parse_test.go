// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package portal_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	zerrors "zentaoctl/cli/internal/errors"
	"zentaoctl/cli/internal/portal"
	"zentaoctl/cli/internal/portal/portaltest"
)

func cell(t *testing.T, inner string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table><tr><td>" + inner + "</td></tr></table>"))
	if err != nil {
		t.Fatal(err)
	}
	return doc.Find("td").First()
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		name  string
		inner string
		want  string
	}{
		{name: "detail link", inner: `<a href="/zentao/bug-view-1234.html">1234</a>`, want: "1234"},
		{name: "link with query", inner: `<a href="bug-view-88.html?onlybody=yes#top">x</a>`, want: "88"},
		{name: "link without digits falls back to text", inner: `<a href="javascript:;">0042</a>`, want: "0042"},
		{name: "plain digits", inner: ` 77 `, want: "77"},
		{name: "digit run in text", inner: `Bug#55 open`, want: "55"},
		{name: "no digits", inner: `n/a`, want: ""},
		{name: "checkbox and link", inner: `<input type="checkbox" value="9"> <a href="/bug-view-9.html">009</a>`, want: "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := portal.ExtractID(cell(t, tt.inner)); got != tt.want {
				t.Errorf("ExtractID() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := portal.ExtractID(nil); got != "" {
		t.Errorf("ExtractID(nil) = %q, want empty", got)
	}
}

func TestIDFromHref(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{href: "http://10.200.10.220/zentao/bug-view-31.html", want: "31"},
		{href: "bug-edit-label-1234.html", want: "1234"},
		{href: "/index.php?m=bug&f=view&bugID=5", want: ""},
		{href: "project-view-12-3.html", want: "12"},
	}

	for _, tt := range tests {
		if got := portal.IDFromHref(tt.href); got != tt.want {
			t.Errorf("IDFromHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestParseRecordsFixedLayout(t *testing.T) {
	html := portaltest.Page(`<table class="table">
<tr><th>#</th><th>级别</th><th>P</th><th>名称</th><th>by</th><th>to</th><th>date</th><th>how</th></tr>
<tr><td><a href="/zentao/bug-view-101.html">101</a></td><td>激活</td><td>3</td><td>Login button misaligned</td><td>alice</td><td>bob</td><td>06-01</td><td>fixed</td></tr>
<tr><td>102</td><td>已关闭</td><td>2</td><td>Crash on save</td><td>carol</td><td>dave</td></tr>
<tr><td>short</td><td>row</td></tr>
<tr><td colspan="8">no data</td></tr>
<tr><td>-</td><td>a</td><td>b</td><td>c</td><td>d</td><td>e</td></tr>
</table>`)

	got, err := portal.ParseRecords(html)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	want := []portal.Record{
		{ID: "101", Status: "激活", Title: "Login button misaligned", OpenedBy: "alice", AssignedTo: "bob", Solution: "fixed"},
		{ID: "102", Status: "已关闭", Title: "Crash on save", OpenedBy: "carol", AssignedTo: "dave", Solution: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseRecords() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRecordsHeaderLayout(t *testing.T) {
	html := portaltest.Page(`<div id="bugList"><table>
<thead><tr><th>ID</th><th>Bug标题</th><th>状态</th><th>创建者</th><th>指派给</th><th>方案</th></tr></thead>
<tbody>
<tr><td><a href="bug-view-7.html">007</a></td><td>Typo</td><td>激活</td><td>eve</td><td>frank</td><td></td></tr>
</tbody></table></div>`)

	got, err := portal.ParseRecords(html)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	want := []portal.Record{{ID: "7", Title: "Typo", Status: "激活", OpenedBy: "eve", AssignedTo: "frank"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseRecords() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRecordsPortalListHeader(t *testing.T) {
	html := portaltest.Page(`<table class="table">
<thead><tr><th>ID</th><th>级别</th><th>P</th><th>Bug标题</th><th>创建者</th><th>指派给</th><th>解决者</th><th>方案</th></tr></thead>
<tbody>
<tr><td><a href="bug-view-101.html">101</a></td><td>3</td><td>2</td><td>登录崩溃</td><td>李四</td><td>张诗婉</td><td>张诗婉</td><td>已解决</td></tr>
</tbody></table>`)

	got, err := portal.ParseRecords(html)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	want := []portal.Record{{ID: "101", Title: "登录崩溃", Status: "3", OpenedBy: "李四", AssignedTo: "张诗婉", Solution: "已解决"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseRecords() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRecordsUnknownHeaderUsesFixedIndex(t *testing.T) {
	html := portaltest.Page(`<table class="table">
<thead><tr><th>ID</th><th>Sev.</th><th>P</th><th>Summary</th><th>Reporter</th><th>指派给</th><th>x</th><th>方案</th></tr></thead>
<tbody>
<tr><td>12</td><td>1</td><td>3</td><td>Crash</td><td>amy</td><td>bob</td><td></td><td>fixed</td></tr>
</tbody></table>`)

	got, err := portal.ParseRecords(html)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	want := []portal.Record{{ID: "12", Title: "Crash", Status: "1", OpenedBy: "amy", AssignedTo: "bob", Solution: "fixed"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseRecords() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRecordsTablePreference(t *testing.T) {
	html := portaltest.Page(`<table><tr><td>layout</td></tr></table>
<table class="table"><tr><th>h</th></tr>
<tr><td>5</td><td>s</td><td>-</td><td>t</td><td>o</td><td>a</td></tr></table>`)

	got, err := portal.ParseRecords(html)
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "5" {
		t.Errorf("ParseRecords() = %+v, want one record with id 5", got)
	}
}

func TestParseRecordsNoTable(t *testing.T) {
	_, err := portal.ParseRecords(portaltest.Page(`<p>empty</p>`))
	if !zerrors.Is(err, zerrors.NotFound) {
		t.Errorf("ParseRecords() error kind = %v, want %v", zerrors.KindOf(err), zerrors.NotFound)
	}
}
