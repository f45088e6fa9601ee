// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/m-mizutani/goerr/v2"
)

const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

// ChromeLauncher starts a local Chrome/Chromium through chromedp.
type ChromeLauncher struct{}

// Launch starts the browser and opens one tab. The browser lives until Close
// is called or ctx is cancelled.
func (ChromeLauncher) Launch(ctx context.Context, opts LaunchOptions) (Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(ua))
	}
	if path := strings.TrimSpace(opts.ExecPath); path != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// The first Run starts the browser process and must use the tab context
	// itself, or the process dies with the derived context.
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriverScript).Do(ctx)
		return err
	}))
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, goerr.Wrap(err, "failed to start browser", goerr.V("exec_path", opts.ExecPath))
	}

	b := &chromeBrowser{ctx: tabCtx, opts: opts}
	b.cancel = func() {
		tabCancel()
		allocCancel()
	}
	return b, nil
}

type chromeBrowser struct {
	ctx    context.Context
	cancel func()
	opts   LaunchOptions
	once   sync.Once
}

// run executes actions on the tab, bounded by the page-load ceiling and by
// the caller's ctx.
func (b *chromeBrowser) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(b.ctx, b.opts.PageLoad)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func queryOption(sel Selector) chromedp.QueryOption {
	if sel.Kind == XPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (b *chromeBrowser) Navigate(ctx context.Context, url string) error {
	if err := b.run(ctx, chromedp.Navigate(url)); err != nil {
		return goerr.Wrap(err, "navigation failed", goerr.V("url", url))
	}
	return nil
}

func (b *chromeBrowser) WaitReady(ctx context.Context, sel Selector) error {
	return b.run(ctx, chromedp.WaitReady(sel.Query, queryOption(sel)))
}

func (b *chromeBrowser) WaitVisible(ctx context.Context, sel Selector) error {
	return b.run(ctx, chromedp.WaitVisible(sel.Query, queryOption(sel)))
}

func (b *chromeBrowser) Exists(ctx context.Context, sel Selector) (bool, error) {
	q, err := json.Marshal(sel.Query)
	if err != nil {
		return false, err
	}
	var expr string
	if sel.Kind == XPath {
		expr = fmt.Sprintf(`document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue !== null`, q)
	} else {
		expr = fmt.Sprintf(`document.querySelector(%s) !== null`, q)
	}
	var found bool
	if err := b.run(ctx, chromedp.Evaluate(expr, &found)); err != nil {
		return false, err
	}
	return found, nil
}

func (b *chromeBrowser) Click(ctx context.Context, sel Selector) error {
	return b.run(ctx, chromedp.Click(sel.Query, queryOption(sel)))
}

func (b *chromeBrowser) SetValue(ctx context.Context, sel Selector, value string) error {
	actions := []chromedp.Action{chromedp.Clear(sel.Query, queryOption(sel))}
	if value != "" {
		actions = append(actions, chromedp.SendKeys(sel.Query, value, queryOption(sel)))
	}
	return b.run(ctx, actions...)
}

func (b *chromeBrowser) Select(ctx context.Context, sel Selector, value string) error {
	return b.run(ctx, chromedp.SetValue(sel.Query, value, queryOption(sel)))
}

func (b *chromeBrowser) HTML(ctx context.Context) (string, error) {
	var html string
	if err := b.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (b *chromeBrowser) Location(ctx context.Context) (string, error) {
	var loc string
	if err := b.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

func (b *chromeBrowser) Close() error {
	b.once.Do(b.cancel)
	return nil
}
