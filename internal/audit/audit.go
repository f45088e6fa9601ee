// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package audit records every use of the shared admin account.
//
// Each entry names the admin account, the operator who borrowed it and what it
// was used for. Entries are appended to a local log file and can be mirrored
// into a PostgreSQL table for central review.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeLayout is the timestamp format of audit lines.
const TimeLayout = "2006-01-02 15:04:05"

// Entry is one use of the admin account.
type Entry struct {
	Time        time.Time
	Admin       string
	Operator    string
	Description string
}

// Line renders the entry in the audit log's line format.
func (e Entry) Line() string {
	return fmt.Sprintf("[%s] 管理员账号 %s 被操作人 %s 用于 %s",
		e.Time.Format(TimeLayout), e.Admin, e.Operator, e.Description)
}

// LoginDescription is recorded when the admin account logs in for an operation.
const LoginDescription = "管理员登录用于BUG操作"

// ActionDescription describes an action applied to a record.
func ActionDescription(label, recordID string) string {
	return fmt.Sprintf("BUG操作: %s - BUG ID: %s", label, recordID)
}

// Sink stores audit entries.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// Multi fans an entry out to every sink. All sinks are attempted; their
// errors are joined.
type Multi []Sink

func (m Multi) Record(ctx context.Context, e Entry) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
