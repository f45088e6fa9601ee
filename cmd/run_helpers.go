// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"zentaoctl/cli/internal/audit"
	"zentaoctl/cli/internal/config"
	zerrors "zentaoctl/cli/internal/errors"
	"zentaoctl/cli/internal/keychain"
	"zentaoctl/cli/internal/logging"
	"zentaoctl/cli/internal/operation"
	"zentaoctl/cli/internal/portal"
	"zentaoctl/cli/internal/xdg"

	"github.com/pterm/pterm"
)

// abortWait bounds how long an interrupted operation may take to release
// its browser.
const abortWait = 3 * time.Second

// runtimeEnv is what query and exec need before starting an operation.
type runtimeEnv struct {
	cfg    config.Config
	creds  portal.Credentials
	deps   operation.Deps
	closer func()
}

// loadRuntime reads config and credentials and opens the audit sinks.
// The returned env's closer must be called when the operation is over.
func loadRuntime(ctx context.Context) (*runtimeEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	ep, err := cfg.Endpoint()
	if err != nil {
		pterm.Error.Println(err.Error())
		pterm.Info.Println("Run 'zentaoctl configure' to set the portal URL.")
		return nil, &exitError{code: 1}
	}
	submit, match, err := cfg.Policies()
	if err != nil {
		return nil, err
	}

	var store config.CredentialStore
	if km, err := keychain.GetManager(); err == nil {
		store = km
	} else {
		slog.Debug("keychain unavailable", slog.Any("error", err))
	}
	creds, source, err := config.ResolveCredentials(store)
	if err != nil {
		pterm.Warning.Println(zerrors.Message(err, "admin credentials are not configured"))
		pterm.Info.Println("Run 'zentaoctl configure' or set " + config.EnvAdminAccount + " and " + config.EnvAdminPassword + ".")
		return nil, &exitError{code: 1}
	}
	slog.Debug("credentials resolved", slog.String("source", source), slog.Any("credentials", creds))

	sink, closeSink := openAuditSink(ctx, cfg)
	return &runtimeEnv{
		cfg:   cfg,
		creds: creds,
		deps: operation.Deps{
			Launch:   cfg.LaunchOptions(),
			Endpoint: ep,
			Timeouts: cfg.Timeouts(),
			Match:    match,
			Submit:   submit,
			Audit:    sink,
			Logger:   slog.Default(),
			Now:      time.Now,
		},
		closer: closeSink,
	}, nil
}

// openAuditSink returns the file sink, mirrored to Postgres when a DSN is
// configured. A database that cannot be reached only produces a warning.
func openAuditSink(ctx context.Context, cfg config.Config) (audit.Sink, func()) {
	sinks := audit.Multi{}
	closer := func() {}

	path := cfg.Audit.File
	if path == "" {
		if dir, err := xdg.StateDir(); err == nil {
			path = filepath.Join(dir, "logs", audit.DefaultFileName)
		} else {
			slog.Warn("audit log directory unavailable", slog.Any("error", err))
		}
	}
	if path != "" {
		sinks = append(sinks, audit.NewFileSink(path))
	}

	if dsn := strings.TrimSpace(cfg.Audit.PostgresDSN); dsn != "" {
		pg, err := audit.OpenPostgres(ctx, dsn)
		if err != nil {
			pterm.Warning.Println("Audit database unavailable; recording to the log file only.")
			slog.Warn("audit database unavailable", slog.String("error", logging.Mask(err.Error())))
		} else {
			sinks = append(sinks, pg)
			closer = pg.Close
		}
	}
	if len(sinks) == 0 {
		return nil, closer
	}
	return sinks, closer
}

// runOperation starts req and renders its events until it finishes. When ctx
// is cancelled the operation is aborted and given abortWait to stop.
func runOperation(ctx context.Context, req operation.Request, deps operation.Deps) (operation.Result, []portal.Record) {
	type drained struct {
		res     operation.Result
		records []portal.Record
	}

	renderer := operation.NewRenderer(verbose)
	h := operation.Start(ctx, req, deps)
	out := make(chan drained, 1)
	go func() {
		res, records := operation.Drain(h, renderer.Render)
		out <- drained{res: res, records: records}
	}()

	select {
	case d := <-out:
		return d.res, d.records
	case <-ctx.Done():
	}

	pterm.Warning.Println("Interrupted, closing the browser...")
	if !h.Abort(abortWait) {
		pterm.Warning.Printfln("The browser did not stop within %s and may still be running.", abortWait)
		return operation.Result{
			OperationResult: portal.OperationResult{Message: "operation aborted"},
			Kind:            zerrors.Unexpected,
		}, nil
	}
	d := <-out
	return d.res, d.records
}

// reportFailure adds a diagnosis for failures caused by the browser or the
// network, and returns the exit error for res.
func reportFailure(res operation.Result) error {
	switch {
	case res.Kind == zerrors.DriverInit:
		logging.PresentBrowserError("Could not start the browser", res.Detail)
	case logging.ParseBrowserError(res.Detail) != logging.BrowserErrorUnknown && res.Message != "operation aborted":
		logging.PresentBrowserError("Could not reach the portal", res.Detail)
	}
	return &exitError{code: 1}
}
