package operation

import (
	"log/slog"
	"strings"
	"time"

	"zentaoctl/cli/internal/audit"
	"zentaoctl/cli/internal/endpoint"
	zerrors "zentaoctl/cli/internal/errors"
	"zentaoctl/cli/internal/portal"
)

// Request is one unit of work. Exactly one of Query and Command is set.
type Request struct {
	Credentials portal.Credentials
	Operator    string
	Query       *portal.Query
	Command     *portal.ActionCommand
}

// Validate checks the request before any browser is started.
func (r Request) Validate() error {
	if !r.Credentials.Configured() {
		return zerrors.New(zerrors.NotConfigured, "admin credentials are not configured")
	}
	switch {
	case r.Query != nil && r.Command != nil:
		return zerrors.New(zerrors.Invalid, "request has both a query and a command")
	case r.Query != nil:
		if strings.TrimSpace(r.Query.ProjectName) == "" {
			return zerrors.New(zerrors.Invalid, "project name is required")
		}
	case r.Command != nil:
		id := strings.TrimSpace(r.Command.RecordID)
		if id == "" || strings.Trim(id, "0123456789") != "" {
			return zerrors.New(zerrors.Invalid, "record id must be numeric")
		}
		if !r.Command.Action.Valid() {
			return zerrors.New(zerrors.Invalid, "unsupported action")
		}
	default:
		return zerrors.New(zerrors.Invalid, "request has neither a query nor a command")
	}
	return nil
}

// Deps are the collaborators an operation runs with.
type Deps struct {
	Launcher portal.Launcher
	Launch   portal.LaunchOptions
	Endpoint endpoint.Endpoint
	Timeouts portal.Timeouts
	Match    portal.MatchPolicy
	Submit   portal.SubmitPolicy
	// Audit may be nil when no audit sink is configured.
	Audit  audit.Sink
	Logger *slog.Logger
	Now    func() time.Time
}
