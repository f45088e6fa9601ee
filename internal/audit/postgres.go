// Copyright (c) 2025 Zentaoctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS admin_operations (
	id          BIGSERIAL PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	admin       TEXT NOT NULL,
	operator    TEXT NOT NULL,
	description TEXT NOT NULL
)`

const insertSQL = `INSERT INTO admin_operations (occurred_at, admin, operator, description) VALUES ($1, $2, $3, $4)`

// execer is the part of *pgxpool.Pool the sink uses.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink mirrors entries into the admin_operations table.
type PostgresSink struct {
	db    execer
	close func()
}

// OpenPostgres connects to dsn, checks the connection and creates the table
// if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create audit database pool")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, goerr.Wrap(err, "failed to reach audit database")
	}
	s := &PostgresSink{db: pool, close: pool.Close}
	if err := s.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSink) ensureTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return goerr.Wrap(err, "failed to create admin_operations table")
	}
	return nil
}

func (s *PostgresSink) Record(ctx context.Context, e Entry) error {
	if _, err := s.db.Exec(ctx, insertSQL, e.Time, e.Admin, e.Operator, e.Description); err != nil {
		return goerr.Wrap(err, "failed to insert audit entry",
			goerr.V("operator", e.Operator), goerr.V("description", e.Description))
	}
	return nil
}

// Close releases the pool.
func (s *PostgresSink) Close() {
	if s.close != nil {
		s.close()
	}
}
