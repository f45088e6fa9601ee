// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package audit

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultFileName is the audit log's file name inside the state directory.
const DefaultFileName = "admin_operations.log"

// FileSink appends entries to a text file, one line each.
type FileSink struct {
	Path string

	mu sync.Mutex
}

// NewFileSink returns a sink appending to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (s *FileSink) Record(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return goerr.Wrap(err, "failed to create audit log directory", goerr.V("path", s.Path))
	}
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return goerr.Wrap(err, "failed to open audit log", goerr.V("path", s.Path))
	}
	defer f.Close()

	if _, err := f.WriteString(e.Line() + "\n"); err != nil {
		return goerr.Wrap(err, "failed to append audit entry", goerr.V("path", s.Path))
	}
	return nil
}
