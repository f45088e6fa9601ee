// Package operation runs one portal query or action on its own goroutine and
// reports back exclusively through an event channel.
//
// Every operation opens a fresh browser session, logs in with the admin
// account, does its work and tears the session down again. The channel
// carries progress lines, the structured result and exactly one finished
// event, after which it is closed.
package operation

import (
	zerrors "zentaoctl/cli/internal/errors"
	"zentaoctl/cli/internal/portal"
)

// EventType enumerates operation event kinds.
type EventType string

const (
	// EventLog carries a progress line.
	EventLog EventType = "log"
	// EventRecords carries the records found by a query.
	EventRecords EventType = "records"
	// EventResult carries the outcome of an action.
	EventResult EventType = "result"
	// EventFinished is the last event of every operation.
	EventFinished EventType = "finished"
)

// Event is a generic container for operation events.
// Only a subset of fields is set depending on Type.
type Event struct {
	Type EventType `json:"type"`

	Message string `json:"message,omitempty"`
	IsError bool   `json:"is_error,omitempty"`

	// Records
	Records []portal.Record `json:"records,omitempty"`

	// Result and finished
	Success bool         `json:"success,omitempty"`
	Kind    zerrors.Kind `json:"kind,omitempty"`
}

// Result is the terminal value of an operation. Kind is empty on success.
type Result struct {
	portal.OperationResult
	Kind zerrors.Kind
	// Detail is the masked text of the underlying error, for diagnostics.
	Detail string
}
