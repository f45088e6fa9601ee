// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package portaltest provides an in-memory portal.Browser for tests.
//
// Pages are served from a URL-keyed map. CSS selectors are evaluated with
// goquery; XPath support covers unions of //tag[contains(text(),'x')] and
// //tag[@value='x'], which is what the portal selectors use.
package portaltest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"zentaoctl/cli/internal/portal"
)

// Browser serves canned pages and follows canned click targets.
type Browser struct {
	mu      sync.Mutex
	pages   map[string]string
	clicks  map[string]string
	current string
	closed  int

	// NavErr, when set, fails every navigation.
	NavErr error
	// Block, when set, makes every wait hang until ctx is done.
	Block bool
	// StallActions, when set, makes clicks and inputs hang until ctx is done.
	StallActions bool

	values   map[string]string
	selected map[string]string
	clicked  []string
	visited  []string
}

// New returns a browser serving pages keyed by absolute URL.
func New(pages map[string]string) *Browser {
	if pages == nil {
		pages = map[string]string{}
	}
	return &Browser{
		pages:    pages,
		clicks:   map[string]string{},
		values:   map[string]string{},
		selected: map[string]string{},
	}
}

// SetPage adds or replaces a page.
func (b *Browser) SetPage(url, html string) *Browser {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pages[url] = html
	return b
}

// SetPageAfter replaces a page once d has passed, as a page that renders
// part of its content late would.
func (b *Browser) SetPageAfter(url, html string, d time.Duration) *Browser {
	time.AfterFunc(d, func() { b.SetPage(url, html) })
	return b
}

// OnClick makes a click on sel move the browser to target.
func (b *Browser) OnClick(sel portal.Selector, target string) *Browser {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clicks[sel.String()] = target
	return b
}

// Launcher returns a launcher handing out b.
func (b *Browser) Launcher() portal.Launcher {
	return portal.LauncherFunc(func(context.Context, portal.LaunchOptions) (portal.Browser, error) {
		return b, nil
	})
}

// Value returns what SetValue wrote into the element matched by query.
func (b *Browser) Value(query string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.values[query]
}

// Selected returns the option chosen with Select for query, if any.
func (b *Browser) Selected(query string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.selected[query]
	return v, ok
}

// Visited returns the navigated URLs in order.
func (b *Browser) Visited() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.visited...)
}

// Clicked returns the clicked selectors in order.
func (b *Browser) Clicked() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.clicked...)
}

// Closed returns how many times Close was called.
func (b *Browser) Closed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Browser) Navigate(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.NavErr != nil {
		return b.NavErr
	}
	b.current = url
	b.visited = append(b.visited, url)
	return nil
}

func (b *Browser) wait(ctx context.Context, sel portal.Selector) error {
	for {
		if ok, _ := b.Exists(ctx, sel); ok && !b.Block {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func (b *Browser) WaitReady(ctx context.Context, sel portal.Selector) error {
	return b.wait(ctx, sel)
}

func (b *Browser) WaitVisible(ctx context.Context, sel portal.Selector) error {
	return b.wait(ctx, sel)
}

func (b *Browser) Exists(_ context.Context, sel portal.Selector) (bool, error) {
	b.mu.Lock()
	html := b.pages[b.current]
	b.mu.Unlock()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, err
	}
	if sel.Kind == portal.CSS {
		return doc.Find(sel.Query).Length() > 0, nil
	}
	return evalXPath(doc, sel.Query)
}

var (
	xpathContains = regexp.MustCompile(`^//(\w+)\[contains\(text\(\),'([^']*)'\)\]$`)
	xpathValue    = regexp.MustCompile(`^//(\w+)\[@value='([^']*)'\]$`)
)

func evalXPath(doc *goquery.Document, expr string) (bool, error) {
	for _, part := range strings.Split(expr, "|") {
		part = strings.TrimSpace(part)
		if m := xpathContains.FindStringSubmatch(part); m != nil {
			found := doc.Find(m[1]).FilterFunction(func(_ int, s *goquery.Selection) bool {
				return strings.Contains(s.Text(), m[2])
			})
			if found.Length() > 0 {
				return true, nil
			}
			continue
		}
		if m := xpathValue.FindStringSubmatch(part); m != nil {
			if doc.Find(fmt.Sprintf(`%s[value="%s"]`, m[1], m[2])).Length() > 0 {
				return true, nil
			}
			continue
		}
		return false, fmt.Errorf("unsupported xpath %q", part)
	}
	return false, nil
}

func (b *Browser) require(ctx context.Context, sel portal.Selector) error {
	if b.StallActions {
		<-ctx.Done()
		return ctx.Err()
	}
	ok, err := b.Exists(ctx, sel)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no element matches %s", sel)
	}
	return nil
}

func (b *Browser) Click(ctx context.Context, sel portal.Selector) error {
	if err := b.require(ctx, sel); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clicked = append(b.clicked, sel.String())
	if target, ok := b.clicks[sel.String()]; ok {
		b.current = target
	}
	return nil
}

func (b *Browser) SetValue(ctx context.Context, sel portal.Selector, value string) error {
	if err := b.require(ctx, sel); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[sel.Query] = value
	return nil
}

func (b *Browser) Select(ctx context.Context, sel portal.Selector, value string) error {
	if err := b.require(ctx, sel); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected[sel.Query] = value
	return nil
}

func (b *Browser) HTML(context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pages[b.current], nil
}

func (b *Browser) Location(context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed++
	return nil
}

// Page wraps body in a minimal HTML document.
func Page(body string) string {
	return "<html><head></head><body>" + body + "</body></html>"
}

// Timeouts returns step timeouts short enough for tests.
func Timeouts() portal.Timeouts {
	return portal.Timeouts{
		PageLoad:    time.Second,
		ElementWait: 50 * time.Millisecond,
		LoginForm:   50 * time.Millisecond,
		ProjectList: 50 * time.Millisecond,
		ListBody:    50 * time.Millisecond,
		DetailBody:  50 * time.Millisecond,
		ActionForm:  50 * time.Millisecond,
		Settle:      time.Millisecond,
	}
}
