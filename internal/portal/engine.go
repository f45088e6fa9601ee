// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package portal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"zentaoctl/cli/internal/endpoint"
	zerrors "zentaoctl/cli/internal/errors"
)

// SubmitPolicy decides how a submit without a visible confirmation is judged.
type SubmitPolicy int

const (
	// SubmitLenient treats a submit without confirmation as success.
	SubmitLenient SubmitPolicy = iota
	// SubmitStrict treats it as failure.
	SubmitStrict
)

// ParseSubmitPolicy maps "lenient" and "strict" to a policy.
func ParseSubmitPolicy(s string) (SubmitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return SubmitLenient, nil
	case "strict":
		return SubmitStrict, nil
	}
	return SubmitLenient, fmt.Errorf("unknown submit policy %q (use lenient or strict)", s)
}

const successMarker = "成功"

var (
	assignedToFilter = ByCSS(`select[name="assigned_to"]`)
	solutionFilter   = ByCSS(`select[name="solution"]`)
	actionForm       = ByCSS(`form`)
)

// Reporter receives human-readable progress lines.
type Reporter interface {
	Log(message string, isError bool)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(message string, isError bool)

func (f ReporterFunc) Log(message string, isError bool) { f(message, isError) }

// Engine performs lookups and actions on a logged-in browser.
type Engine struct {
	Browser  Browser
	Endpoint endpoint.Endpoint
	Timeouts Timeouts
	Match    MatchPolicy
	Submit   SubmitPolicy
	Reporter Reporter
	Logger   *slog.Logger
}

// ResolveProjectID loads the project list and resolves name to an id.
func (e *Engine) ResolveProjectID(ctx context.Context, name string) (string, error) {
	e.report(fmt.Sprintf("resolving project %q", name), false)
	if err := e.Browser.Navigate(ctx, e.Endpoint.ProjectListURL()); err != nil {
		return "", zerrors.Wrap(zerrors.NotFound, "project list could not be loaded", err)
	}
	err := waitWithin(ctx, e.Timeouts.ProjectList, func(ctx context.Context) error {
		return e.Browser.WaitReady(ctx, projectLink)
	})
	if err != nil {
		return "", zerrors.Wrap(zerrors.NotFound, "project list shows no projects", err)
	}
	html, err := e.Browser.HTML(ctx)
	if err != nil {
		return "", zerrors.Wrap(zerrors.Unexpected, "project list could not be read", err)
	}
	id, err := ResolveProjectID(html, name, e.Match)
	if err != nil {
		e.report(zerrors.Message(err, "project lookup failed"), true)
		return "", err
	}
	e.report(fmt.Sprintf("project %q resolved to id %s", name, id), false)
	return id, nil
}

// FetchRecords loads the record list of a project and filters it by q.
// An empty result is an EmptyResult error.
func (e *Engine) FetchRecords(ctx context.Context, projectID string, q Query) ([]Record, error) {
	listURL := e.Endpoint.BugListURL(projectID)
	e.logger().Debug("loading record list", slog.String("url", listURL), slog.String("mode", q.Mode().String()))
	if err := e.Browser.Navigate(ctx, listURL); err != nil {
		return nil, zerrors.Wrap(zerrors.Unexpected, "record list could not be loaded", err)
	}
	err := waitWithin(ctx, e.Timeouts.ListBody, func(ctx context.Context) error {
		return e.Browser.WaitReady(ctx, pageBody)
	})
	if err != nil {
		return nil, zerrors.Wrap(zerrors.Unexpected, "record list did not finish loading", err)
	}
	if q.Mode() == ModeByCondition {
		e.applyListFilters(ctx, q)
	}

	html, err := e.Browser.HTML(ctx)
	if err != nil {
		return nil, zerrors.Wrap(zerrors.Unexpected, "record list could not be read", err)
	}
	all, err := ParseRecords(html)
	if err != nil {
		return nil, err
	}
	records := FilterRecords(all, q)
	e.logger().Debug("records parsed", slog.Int("rows", len(all)), slog.Int("matched", len(records)))
	if len(records) == 0 {
		return nil, zerrors.New(zerrors.EmptyResult, "no records matched the query")
	}
	e.report(fmt.Sprintf("found %d record(s)", len(records)), false)
	return records, nil
}

// applyListFilters sets the list page's own filter controls when present.
// Failures are ignored; rows are filtered again after parsing.
func (e *Engine) applyListFilters(ctx context.Context, q Query) {
	for _, f := range []struct {
		sel   Selector
		value string
	}{
		{assignedToFilter, q.AssignedTo},
		{solutionFilter, q.Solution},
	} {
		if IsAll(f.value) {
			continue
		}
		ok, err := e.Browser.Exists(ctx, f.sel)
		if err != nil || !ok {
			continue
		}
		err = waitWithin(ctx, e.Timeouts.ElementWait, func(ctx context.Context) error {
			return e.Browser.Select(ctx, f.sel, strings.TrimSpace(f.value))
		})
		if err != nil {
			e.logger().Debug("list filter not applied", slog.String("selector", f.sel.String()), slog.Any("error", err))
		}
	}
}

// Execute performs one action on one record. It returns true when the form
// was submitted and judged successful under the engine's submit policy.
func (e *Engine) Execute(ctx context.Context, cmd ActionCommand) (bool, error) {
	if !cmd.Action.Valid() {
		return false, zerrors.New(zerrors.Unexpected, fmt.Sprintf("unsupported action %s", cmd.Action))
	}
	label := cmd.Action.Label()
	e.report(fmt.Sprintf("executing %s on record %s", label, cmd.RecordID), false)

	if err := e.Browser.Navigate(ctx, e.Endpoint.BugViewURL(cmd.RecordID)); err != nil {
		return false, zerrors.Wrap(zerrors.Unexpected, "record page could not be loaded", err)
	}
	err := waitWithin(ctx, e.Timeouts.DetailBody, func(ctx context.Context) error {
		return e.Browser.WaitReady(ctx, pageBody)
	})
	if err != nil {
		return false, zerrors.Wrap(zerrors.Unexpected, "record page did not finish loading", err)
	}

	trigger, ok, err := WaitFirstMatch(ctx, e.Browser, cmd.Action.Triggers(), e.Timeouts.ElementWait)
	if err != nil {
		return false, err
	}
	if !ok {
		e.report(fmt.Sprintf("%s button not found", label), true)
		return false, zerrors.New(zerrors.NotFound, fmt.Sprintf("%s button not found", label))
	}
	if err := e.click(ctx, trigger); err != nil {
		return false, zerrors.Wrap(zerrors.Unexpected, fmt.Sprintf("%s button could not be clicked", label), err)
	}
	err = waitWithin(ctx, e.Timeouts.ActionForm, func(ctx context.Context) error {
		return e.Browser.WaitReady(ctx, actionForm)
	})
	if err != nil {
		return false, zerrors.Wrap(zerrors.NotFound, fmt.Sprintf("%s form did not appear", label), err)
	}
	return e.submitForm(ctx, cmd.Comment)
}

func (e *Engine) submitForm(ctx context.Context, comment string) (bool, error) {
	field, ok, err := WaitFirstMatch(ctx, e.Browser, commentFields, e.Timeouts.ElementWait)
	if err != nil {
		return false, err
	}
	if ok {
		err := waitWithin(ctx, e.Timeouts.ElementWait, func(ctx context.Context) error {
			return e.Browser.SetValue(ctx, field, comment)
		})
		if err != nil {
			return false, zerrors.Wrap(zerrors.Unexpected, "comment could not be filled in", err)
		}
		e.report("comment filled in", false)
	} else {
		e.report("comment field not found, submitting without comment", true)
	}

	submit, ok, err := WaitFirstMatch(ctx, e.Browser, submitControls, e.Timeouts.ElementWait)
	if err != nil {
		return false, err
	}
	if !ok {
		e.report("submit button not found", true)
		return false, zerrors.New(zerrors.Submit, "submit button not found")
	}
	if err := e.click(ctx, submit); err != nil {
		return false, zerrors.Wrap(zerrors.Submit, "submit button could not be clicked", err)
	}
	if err := sleep(ctx, e.Timeouts.Settle); err != nil {
		return false, err
	}

	html, err := e.Browser.HTML(ctx)
	if err != nil {
		return false, zerrors.Wrap(zerrors.Unexpected, "result page could not be read", err)
	}
	loc, err := e.Browser.Location(ctx)
	if err != nil {
		return false, zerrors.Wrap(zerrors.Unexpected, "result page could not be read", err)
	}
	if strings.Contains(html, successMarker) || strings.Contains(strings.ToLower(loc), "success") {
		e.report("submitted successfully", false)
		return true, nil
	}
	if e.Submit == SubmitStrict {
		e.report("no confirmation after submit", true)
		return false, zerrors.New(zerrors.Submit, "portal did not confirm the submission")
	}
	e.report("no confirmation after submit, assuming it went through", true)
	return true, nil
}

func (e *Engine) click(ctx context.Context, sel Selector) error {
	return waitWithin(ctx, e.Timeouts.ElementWait, func(ctx context.Context) error {
		return e.Browser.Click(ctx, sel)
	})
}

func (e *Engine) report(message string, isError bool) {
	if e.Reporter != nil {
		e.Reporter.Log(message, isError)
	}
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
