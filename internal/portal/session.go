// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package portal

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"zentaoctl/cli/internal/endpoint"
	zerrors "zentaoctl/cli/internal/errors"
)

const (
	loginFailureMarker = "登录失败"
	loginPollInterval  = 200 * time.Millisecond
)

var (
	accountField  = ByCSS(`#account`)
	passwordField = ByCSS(`input[name="password"]`)
	loginSubmit   = ByCSS(`#submit`)
	mainHeader    = ByCSS(`.main-header`)
	pageBody      = ByCSS(`body`)
)

// Session owns one browser for the duration of one operation.
type Session struct {
	Launcher Launcher
	Launch   LaunchOptions
	Endpoint endpoint.Endpoint
	Timeouts Timeouts
	Logger   *slog.Logger

	mu      sync.Mutex
	browser Browser
}

// Open starts the browser. Any failure is reported as a DriverInit error.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return nil
	}
	launcher := s.Launcher
	if launcher == nil {
		launcher = ChromeLauncher{}
	}
	b, err := launcher.Launch(ctx, s.Launch)
	if err != nil {
		return zerrors.Wrap(zerrors.DriverInit, "browser driver failed to initialize", err)
	}
	s.browser = b
	return nil
}

// Browser returns the live browser, or nil before Open or after Close.
func (s *Session) Browser() Browser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browser
}

// Login submits the admin credentials. It returns false with a nil error when
// the portal rejects them, and false with an Auth error when the login flow
// itself breaks (missing form, navigation failure).
func (s *Session) Login(ctx context.Context, creds Credentials) (bool, error) {
	b := s.Browser()
	if b == nil {
		return false, zerrors.New(zerrors.Unexpected, "browser session is not open")
	}
	logger := s.logger()
	loginURL := s.Endpoint.LoginURL()

	if err := b.Navigate(ctx, loginURL); err != nil {
		return false, zerrors.Wrap(zerrors.Auth, "login page could not be loaded", err)
	}
	err := waitWithin(ctx, s.Timeouts.LoginForm, func(ctx context.Context) error {
		if err := b.WaitVisible(ctx, accountField); err != nil {
			return err
		}
		return b.WaitVisible(ctx, passwordField)
	})
	if err != nil {
		return false, zerrors.Wrap(zerrors.Auth, "login form did not appear", err)
	}
	err = waitWithin(ctx, s.Timeouts.ElementWait, func(ctx context.Context) error {
		if err := b.SetValue(ctx, accountField, creds.Account); err != nil {
			return err
		}
		return b.SetValue(ctx, passwordField, creds.Password)
	})
	if err != nil {
		return false, zerrors.Wrap(zerrors.Auth, "failed to fill login form", err)
	}
	err = waitWithin(ctx, s.Timeouts.ElementWait, func(ctx context.Context) error {
		return b.Click(ctx, loginSubmit)
	})
	if err != nil {
		return false, zerrors.Wrap(zerrors.Auth, "failed to submit login form", err)
	}

	// Either the URL moves away from the login page or the main header shows
	// up. A timeout here falls through to the checks below.
	_ = waitWithin(ctx, s.Timeouts.LoginForm, func(ctx context.Context) error {
		return poll(ctx, loginPollInterval, func() bool {
			if loc, err := b.Location(ctx); err == nil && loc != loginURL {
				return true
			}
			ok, err := b.Exists(ctx, mainHeader)
			return err == nil && ok
		})
	})
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	html, err := b.HTML(ctx)
	if err != nil {
		return false, zerrors.Wrap(zerrors.Auth, "login outcome could not be read", err)
	}
	if strings.Contains(html, loginFailureMarker) {
		logger.Info("portal rejected login", slog.Any("creds", creds))
		return false, nil
	}
	loc, err := b.Location(ctx)
	if err != nil {
		return false, zerrors.Wrap(zerrors.Auth, "login outcome could not be read", err)
	}
	if s.Endpoint.IsLoginURL(loc) {
		logger.Info("still on login page after submit", slog.String("url", loc))
		return false, nil
	}
	logger.Debug("logged in", slog.Any("creds", creds), slog.String("url", loc))
	return true, nil
}

// Close releases the browser. It is safe to call more than once and never
// fails; teardown problems are only logged.
func (s *Session) Close() {
	s.mu.Lock()
	b := s.browser
	s.browser = nil
	s.mu.Unlock()
	if b == nil {
		return
	}
	if err := b.Close(); err != nil {
		s.logger().Warn("browser close failed", slog.Any("error", err))
	}
}

func (s *Session) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func poll(ctx context.Context, interval time.Duration, done func() bool) error {
	for {
		if done() {
			return nil
		}
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
}
