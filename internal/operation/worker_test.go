package operation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zentaoctl/cli/internal/audit"
	"zentaoctl/cli/internal/endpoint"
	zerrors "zentaoctl/cli/internal/errors"
	"zentaoctl/cli/internal/portal"
	"zentaoctl/cli/internal/portal/portaltest"
)

const base = "http://pms.test/zentao"

var ep = endpoint.Endpoint{Base: base, ProjectListPath: endpoint.DefaultProjectListPath}

var admin = portal.Credentials{Account: "admin", Password: "s3cret"}

func fakePortal() *portaltest.Browser {
	f := portaltest.New(map[string]string{
		ep.LoginURL(): portaltest.Page(`<form><input id="account"><input name="password"><button id="submit">登录</button></form>`),
		base + "/my.html": portaltest.Page(`<div class="main-header"></div>`),
		ep.ProjectListURL(): portaltest.Page(`<table><tr><td><a href="/zentao/project-view-7.html">Apollo</a></td></tr></table>`),
		ep.BugListURL("7"): portaltest.Page(`<table class="table">
<tr><th>ID</th><th>Bug标题</th><th>状态</th><th>创建者</th><th>指派给</th><th>方案</th></tr>
<tr><td><a href="/zentao/bug-view-31.html">31</a></td><td>Broken link</td><td>激活</td><td>amy</td><td>张诗婉</td><td>已解决</td></tr>
<tr><td><a href="/zentao/bug-view-32.html">32</a></td><td>Slow page</td><td>激活</td><td>amy</td><td>张诗婉</td><td>延期处理</td></tr>
</table>`),
		ep.BugViewURL("31"):           portaltest.Page(`<a href="/zentao/bug-close-31.html">关闭</a>`),
		base + "/bug-close-31.html":   portaltest.Page(`<form><textarea name="comment"></textarea><button type="submit">保存</button></form>`),
		base + "/bug-view-31.html?ok": portaltest.Page(`<p>保存成功</p>`),
	})
	f.OnClick(portal.ByCSS(`#submit`), base+"/my.html")
	f.OnClick(portal.ByCSS(`a[href*="bug-close"]`), base+"/bug-close-31.html")
	f.OnClick(portal.ByCSS(`button[type="submit"]`), base+"/bug-view-31.html?ok")
	return f
}

type memorySink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (m *memorySink) Record(_ context.Context, e audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memorySink) descriptions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.entries {
		out = append(out, e.Description)
	}
	return out
}

func testDeps(l portal.Launcher, sink audit.Sink) Deps {
	return Deps{
		Launcher: l,
		Endpoint: ep,
		Timeouts: portaltest.Timeouts(),
		Audit:    sink,
		Now:      func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local) },
	}
}

func collect(t *testing.T, h *Handle) []Event {
	t.Helper()
	var events []Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range h.Events() {
			events = append(events, ev)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("operation did not finish")
	}
	return events
}

func finishedEvents(events []Event) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == EventFinished {
			out = append(out, ev)
		}
	}
	return out
}

func TestQuerySuccess(t *testing.T) {
	f := fakePortal()
	sink := &memorySink{}
	q := portal.Query{ProjectName: "Apollo", AssignedTo: "张诗婉", Solution: "已解决"}

	h := Start(context.Background(), Request{Credentials: admin, Operator: "王五", Query: &q}, testDeps(f.Launcher(), sink))
	events := collect(t, h)

	var records []portal.Record
	for _, ev := range events {
		if ev.Type == EventRecords {
			records = ev.Records
		}
	}
	require.Len(t, records, 1)
	assert.Equal(t, "31", records[0].ID)

	fin := finishedEvents(events)
	require.Len(t, fin, 1)
	assert.True(t, fin[0].Success)
	assert.Equal(t, EventFinished, events[len(events)-1].Type)
	assert.True(t, h.Wait().Success)

	assert.Equal(t, []string{audit.LoginDescription}, sink.descriptions())
	assert.Equal(t, 1, f.Closed())
}

func TestActionSuccess(t *testing.T) {
	f := fakePortal()
	sink := &memorySink{}
	cmd := portal.ActionCommand{RecordID: "31", Action: portal.ActionClose}

	h := Start(context.Background(), Request{Credentials: admin, Operator: "王五", Command: &cmd}, testDeps(f.Launcher(), sink))
	events := collect(t, h)

	var results []Event
	for _, ev := range events {
		if ev.Type == EventResult {
			results = append(results, ev)
		}
	}
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	assert.Equal(t, "[操作人: 王五] 执行关闭BUG操作", f.Value(`textarea[name="comment"]`))
	assert.Equal(t, []string{audit.LoginDescription, "BUG操作: 关闭BUG - BUG ID: 31"}, sink.descriptions())
	assert.Len(t, finishedEvents(events), 1)
	assert.Equal(t, 1, f.Closed())
}

func TestOperationFailures(t *testing.T) {
	rejecting := func() *portaltest.Browser {
		f := fakePortal()
		f.OnClick(portal.ByCSS(`#submit`), ep.LoginURL())
		return f
	}
	query := func(name string) Request {
		return Request{Credentials: admin, Query: &portal.Query{ProjectName: name, RecordID: "99"}}
	}

	tests := []struct {
		name     string
		launcher portal.Launcher
		req      Request
		want     zerrors.Kind
	}{
		{
			name:     "not configured",
			launcher: fakePortal().Launcher(),
			req:      Request{Query: &portal.Query{ProjectName: "Apollo"}},
			want:     zerrors.NotConfigured,
		},
		{
			name: "driver init",
			launcher: portal.LauncherFunc(func(context.Context, portal.LaunchOptions) (portal.Browser, error) {
				return nil, errors.New("exec: google-chrome: not found")
			}),
			req:  query("Apollo"),
			want: zerrors.DriverInit,
		},
		{name: "login rejected", launcher: rejecting().Launcher(), req: query("Apollo"), want: zerrors.Auth},
		{name: "unknown project", launcher: fakePortal().Launcher(), req: query("Gemini"), want: zerrors.NotFound},
		{name: "empty result", launcher: fakePortal().Launcher(), req: query("Apollo"), want: zerrors.EmptyResult},
		{
			name: "panic",
			launcher: portal.LauncherFunc(func(context.Context, portal.LaunchOptions) (portal.Browser, error) {
				panic("boom")
			}),
			req:  query("Apollo"),
			want: zerrors.Unexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &memorySink{}
			h := Start(context.Background(), tt.req, testDeps(tt.launcher, sink))
			events := collect(t, h)

			fin := finishedEvents(events)
			require.Len(t, fin, 1)
			assert.False(t, fin[0].Success)
			assert.Equal(t, tt.want, fin[0].Kind)
			assert.NotEmpty(t, fin[0].Message)
			assert.Equal(t, tt.want, h.Wait().Kind)
			if tt.want == zerrors.DriverInit {
				assert.Contains(t, h.Wait().Detail, "google-chrome: not found")
			}

			if tt.want == zerrors.Auth || tt.want == zerrors.NotConfigured || tt.want == zerrors.DriverInit {
				assert.Empty(t, sink.descriptions())
			}
		})
	}
}

func TestEmptyResultIsNotAnErrorLine(t *testing.T) {
	f := fakePortal()
	h := Start(context.Background(), Request{Credentials: admin, Query: &portal.Query{ProjectName: "Apollo", RecordID: "99"}}, testDeps(f.Launcher(), nil))
	events := collect(t, h)

	last := events[len(events)-2]
	assert.Equal(t, EventLog, last.Type)
	assert.False(t, last.IsError)
}

func TestAbort(t *testing.T) {
	f := fakePortal()
	f.Block = true
	deps := testDeps(f.Launcher(), nil)
	deps.Timeouts.LoginForm = time.Minute

	h := Start(context.Background(), Request{Credentials: admin, Query: &portal.Query{ProjectName: "Apollo"}}, deps)

	var finished Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range h.Events() {
			if ev.Type == EventLog && ev.Message == "logging in as admin" {
				go h.Abort(time.Second)
			}
			if ev.Type == EventFinished {
				finished = ev
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("abort did not stop the operation")
	}
	assert.False(t, finished.Success)
	assert.Equal(t, "operation aborted", finished.Message)
	assert.Equal(t, 1, f.Closed())
	assert.True(t, h.Abort(10*time.Millisecond))
}

func TestRequestValidate(t *testing.T) {
	closeCmd := portal.ActionCommand{RecordID: "12", Action: portal.ActionClose}
	tests := []struct {
		name string
		req  Request
		want zerrors.Kind
	}{
		{name: "query ok", req: Request{Credentials: admin, Query: &portal.Query{ProjectName: "Apollo"}}},
		{name: "command ok", req: Request{Credentials: admin, Command: &closeCmd}},
		{name: "no credentials", req: Request{Command: &closeCmd}, want: zerrors.NotConfigured},
		{name: "both", req: Request{Credentials: admin, Query: &portal.Query{ProjectName: "x"}, Command: &closeCmd}, want: zerrors.Invalid},
		{name: "neither", req: Request{Credentials: admin}, want: zerrors.Invalid},
		{name: "missing project", req: Request{Credentials: admin, Query: &portal.Query{}}, want: zerrors.Invalid},
		{name: "non numeric id", req: Request{Credentials: admin, Command: &portal.ActionCommand{RecordID: "12a", Action: portal.ActionClose}}, want: zerrors.Invalid},
		{name: "bad action", req: Request{Credentials: admin, Command: &portal.ActionCommand{RecordID: "12"}}, want: zerrors.Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, zerrors.KindOf(err))
		})
	}
}
