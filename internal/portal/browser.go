// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package portal

import (
	"context"
	"time"
)

// SelectorKind tells the browser how to interpret a Selector query.
type SelectorKind int

const (
	CSS SelectorKind = iota
	XPath
)

// Selector is one element-location strategy.
type Selector struct {
	Kind  SelectorKind
	Query string
}

// ByCSS returns a CSS selector strategy.
func ByCSS(q string) Selector { return Selector{Kind: CSS, Query: q} }

// ByXPath returns an XPath strategy.
func ByXPath(q string) Selector { return Selector{Kind: XPath, Query: q} }

func (s Selector) String() string {
	if s.Kind == XPath {
		return "xpath:" + s.Query
	}
	return "css:" + s.Query
}

// Browser is the subset of a live browser tab the portal needs.
// Wait calls block until the element shows up or ctx expires; callers bound
// them with a per-step timeout.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	WaitReady(ctx context.Context, sel Selector) error
	WaitVisible(ctx context.Context, sel Selector) error
	Exists(ctx context.Context, sel Selector) (bool, error)
	Click(ctx context.Context, sel Selector) error
	SetValue(ctx context.Context, sel Selector, value string) error
	Select(ctx context.Context, sel Selector, value string) error
	HTML(ctx context.Context) (string, error)
	Location(ctx context.Context) (string, error)
	Close() error
}

// LaunchOptions configure a browser launch.
type LaunchOptions struct {
	Headless  bool
	ExecPath  string
	UserAgent string
	Width     int
	Height    int
	// PageLoad caps every single browser round trip, navigation included.
	PageLoad time.Duration
}

// DefaultUserAgent is presented by launched browsers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultLaunchOptions returns a headless 1920x1080 configuration.
func DefaultLaunchOptions() LaunchOptions {
	return LaunchOptions{
		Headless:  true,
		UserAgent: DefaultUserAgent,
		Width:     1920,
		Height:    1080,
		PageLoad:  60 * time.Second,
	}
}

// Launcher starts browsers.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Browser, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, opts LaunchOptions) (Browser, error)

func (f LauncherFunc) Launch(ctx context.Context, opts LaunchOptions) (Browser, error) {
	return f(ctx, opts)
}

// Timeouts bound each step of a portal interaction.
type Timeouts struct {
	PageLoad time.Duration
	// ElementWait is how long a control lookup keeps retrying, and the
	// ceiling for each click or input on a control.
	ElementWait time.Duration
	LoginForm   time.Duration
	ProjectList time.Duration
	ListBody    time.Duration
	DetailBody  time.Duration
	ActionForm  time.Duration
	Settle      time.Duration
}

// DefaultTimeouts returns the step timeouts used against a live portal.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		PageLoad:    60 * time.Second,
		ElementWait: 10 * time.Second,
		LoginForm:   15 * time.Second,
		ProjectList: 10 * time.Second,
		ListBody:    20 * time.Second,
		DetailBody:  15 * time.Second,
		ActionForm:  10 * time.Second,
		Settle:      2 * time.Second,
	}
}

// FirstMatch returns the first candidate that currently matches an element.
// Candidates whose lookup errors are skipped unless ctx itself is done.
func FirstMatch(ctx context.Context, b Browser, candidates []Selector) (Selector, bool, error) {
	for _, c := range candidates {
		ok, err := b.Exists(ctx, c)
		if err != nil {
			if ctx.Err() != nil {
				return Selector{}, false, ctx.Err()
			}
			continue
		}
		if ok {
			return c, true, nil
		}
	}
	return Selector{}, false, nil
}

// matchPollInterval spaces the passes of WaitFirstMatch.
const matchPollInterval = 100 * time.Millisecond

// WaitFirstMatch repeats FirstMatch until a candidate matches or wait runs
// out. Each pass tries the candidates in order. A zero wait makes one pass.
func WaitFirstMatch(ctx context.Context, b Browser, candidates []Selector, wait time.Duration) (Selector, bool, error) {
	deadline := time.Now().Add(wait)
	for {
		sel, ok, err := FirstMatch(ctx, b, candidates)
		if err != nil || ok {
			return sel, ok, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Selector{}, false, nil
		}
		if err := sleep(ctx, min(matchPollInterval, remaining)); err != nil {
			return Selector{}, false, err
		}
	}
}

// waitWithin runs fn under a d timeout. A non-positive d leaves only ctx
// in charge.
func waitWithin(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}
	wctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(wctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
