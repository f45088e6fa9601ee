package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/natefinch/atomic"

	"zentaoctl/cli/internal/portal"
	"zentaoctl/cli/internal/xdg"
)

const lastQueryFile = "last_query.json"

// DefaultLastQuery is used before any query has been run.
func DefaultLastQuery() portal.Query {
	return portal.Query{AssignedTo: portal.AllSentinel, Solution: portal.AllSentinel}
}

// LastQueryPath returns where the last query is remembered.
func LastQueryPath() (string, error) {
	dir, err := xdg.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, lastQueryFile), nil
}

// LoadLastQuery returns the parameters of the previous query.
func LoadLastQuery() (portal.Query, error) {
	p, err := LastQueryPath()
	if err != nil {
		return DefaultLastQuery(), err
	}
	return LoadLastQueryFrom(p)
}

// LoadLastQueryFrom reads a remembered query; a missing file yields defaults.
func LoadLastQueryFrom(path string) (portal.Query, error) {
	q := DefaultLastQuery()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return q, nil
		}
		return q, goerr.Wrap(err, "failed to read last query", goerr.V("path", path))
	}
	if err := json.Unmarshal(data, &q); err != nil {
		return DefaultLastQuery(), goerr.Wrap(err, "failed to decode last query", goerr.V("path", path))
	}
	return q, nil
}

// SaveLastQuery remembers q for the next run.
func SaveLastQuery(q portal.Query) error {
	p, err := LastQueryPath()
	if err != nil {
		return err
	}
	return SaveLastQueryTo(p, q)
}

// SaveLastQueryTo writes q to path.
func SaveLastQueryTo(path string, q portal.Query) error {
	b, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode last query")
	}
	if err := atomic.WriteFile(path, bytes.NewReader(b)); err != nil {
		return goerr.Wrap(err, "failed to write last query", goerr.V("path", path))
	}
	return nil
}
