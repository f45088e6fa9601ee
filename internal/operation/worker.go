package operation

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"zentaoctl/cli/internal/audit"
	zerrors "zentaoctl/cli/internal/errors"
	"zentaoctl/cli/internal/logging"
	"zentaoctl/cli/internal/portal"
)

const eventBuffer = 64

// Handle controls a running operation.
type Handle struct {
	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// Start runs req on a new goroutine. The returned handle's event channel
// must be drained; it closes after the finished event.
func Start(ctx context.Context, req Request, deps Deps) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		events: make(chan Event, eventBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	w := &worker{deps: deps, events: h.events}
	go h.run(ctx, w, req)
	return h
}

func (h *Handle) run(ctx context.Context, w *worker, req Request) {
	defer close(h.events)
	defer h.cancel()

	h.result = w.runSafely(ctx, req)
	close(h.done)
	h.events <- Event{
		Type:    EventFinished,
		Success: h.result.Success,
		Message: h.result.Message,
		Kind:    h.result.Kind,
	}
}

// Events returns the event stream.
func (h *Handle) Events() <-chan Event { return h.events }

// Wait blocks until the operation is over and returns its result.
func (h *Handle) Wait() Result {
	<-h.done
	return h.result
}

// Abort cancels the operation and waits up to timeout for it to stop.
// It reports false when the worker did not stop in time; the browser may
// then outlive the call.
func (h *Handle) Abort(timeout time.Duration) bool {
	h.cancel()
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-h.done:
		return true
	case <-t.C:
		return false
	}
}

type worker struct {
	deps   Deps
	events chan<- Event
}

// runSafely owns the session lifetime and converts panics into an
// unexpected failure.
func (w *worker) runSafely(ctx context.Context, req Request) (res Result) {
	session := &portal.Session{
		Launcher: w.deps.Launcher,
		Launch:   w.deps.Launch,
		Endpoint: w.deps.Endpoint,
		Timeouts: w.deps.Timeouts,
		Logger:   w.logger(),
	}
	defer session.Close()
	defer func() {
		if r := recover(); r != nil {
			w.logger().Error("operation panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			res = w.fail(zerrors.New(zerrors.Unexpected, "unexpected error, see log for details"))
		}
	}()
	return w.run(ctx, session, req)
}

func (w *worker) run(ctx context.Context, session *portal.Session, req Request) Result {
	if err := req.Validate(); err != nil {
		return w.fail(err)
	}

	w.log("starting browser", false)
	if err := session.Open(ctx); err != nil {
		return w.fail(err)
	}
	w.log(fmt.Sprintf("logging in as %s", req.Credentials.Account), false)
	ok, err := session.Login(ctx, req.Credentials)
	if err != nil {
		return w.fail(err)
	}
	if !ok {
		return w.fail(zerrors.New(zerrors.Auth, "admin login failed"))
	}
	w.log("login succeeded", false)
	w.audit(ctx, req, audit.LoginDescription)

	engine := &portal.Engine{
		Browser:  session.Browser(),
		Endpoint: w.deps.Endpoint,
		Timeouts: w.deps.Timeouts,
		Match:    w.deps.Match,
		Submit:   w.deps.Submit,
		Reporter: portal.ReporterFunc(w.log),
		Logger:   w.logger(),
	}
	if req.Command != nil {
		return w.execute(ctx, engine, req)
	}
	return w.query(ctx, engine, *req.Query)
}

func (w *worker) query(ctx context.Context, engine *portal.Engine, q portal.Query) Result {
	projectID, err := engine.ResolveProjectID(ctx, q.ProjectName)
	if err != nil {
		return w.fail(err)
	}
	records, err := engine.FetchRecords(ctx, projectID, q)
	if err != nil {
		return w.fail(err)
	}
	w.emit(Event{Type: EventRecords, Records: records})
	return succeed(fmt.Sprintf("found %d record(s)", len(records)))
}

func (w *worker) execute(ctx context.Context, engine *portal.Engine, req Request) Result {
	cmd := *req.Command
	cmd.Comment = portal.PrepareComment(cmd.Comment, req.Operator, cmd.Action)
	label := cmd.Action.Label()

	ok, err := engine.Execute(ctx, cmd)
	if err == nil && !ok {
		err = zerrors.New(zerrors.Submit, fmt.Sprintf("%s failed", label))
	}
	if err != nil {
		res := w.fail(err)
		w.emit(Event{Type: EventResult, Success: false, Message: res.Message, Kind: res.Kind})
		return res
	}

	w.audit(ctx, req, audit.ActionDescription(label, cmd.RecordID))
	res := succeed(fmt.Sprintf("%s succeeded for record %s", label, cmd.RecordID))
	w.emit(Event{Type: EventResult, Success: true, Message: res.Message})
	return res
}

func (w *worker) audit(ctx context.Context, req Request, description string) {
	if w.deps.Audit == nil {
		return
	}
	entry := audit.Entry{
		Time:        w.now(),
		Admin:       req.Credentials.Account,
		Operator:    req.Operator,
		Description: description,
	}
	if err := w.deps.Audit.Record(ctx, entry); err != nil {
		w.logger().Warn("audit entry not written", slog.Any("error", err))
		w.log("audit log could not be written", true)
	}
}

// fail logs err in full and returns the short message as the result.
func (w *worker) fail(err error) Result {
	kind := zerrors.KindOf(err)
	msg := zerrors.Message(err, "unexpected error, see log for details")
	if stderrors.Is(err, context.Canceled) {
		msg = "operation aborted"
	}
	if kind == zerrors.EmptyResult {
		w.logger().Info("operation finished without data", slog.String("kind", string(kind)))
	} else {
		w.logger().Error("operation failed", slog.String("kind", string(kind)), slog.Any("error", err))
	}
	w.log(msg, kind != zerrors.EmptyResult)
	return Result{
		OperationResult: portal.OperationResult{Success: false, Message: msg},
		Kind:            kind,
		Detail:          logging.Mask(err.Error()),
	}
}

func succeed(msg string) Result {
	return Result{OperationResult: portal.OperationResult{Success: true, Message: msg}}
}

func (w *worker) log(message string, isError bool) {
	w.emit(Event{Type: EventLog, Message: message, IsError: isError})
}

func (w *worker) emit(ev Event) {
	w.events <- ev
}

func (w *worker) logger() *slog.Logger {
	if w.deps.Logger != nil {
		return w.deps.Logger
	}
	return slog.Default()
}

func (w *worker) now() time.Time {
	if w.deps.Now != nil {
		return w.deps.Now()
	}
	return time.Now()
}
