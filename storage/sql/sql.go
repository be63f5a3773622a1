/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package sql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/dialogo-im/dialogo/log"
	"github.com/dialogo-im/dialogo/storage/repository"
)

// pingInterval defines how often to check the connection
var pingInterval = 15 * time.Second

// pingTimeout defines how long to wait for pong from server
var pingTimeout = 10 * time.Second

type container struct {
	accounts  *sqlAccounts
	messages  *sqlMessages
	roster    *sqlRoster
	presences *sqlPresences

	h          *sql.DB
	cancelPing context.CancelFunc
}

// NewSQLite returns a SQLite storage repository container,
// bootstrapping the database schema when needed.
func NewSQLite(file string) (repository.Container, error) {
	h, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	if err := bootstrapSQLite(h); err != nil {
		_ = h.Close()
		return nil, err
	}
	return newContainer(h, sq.Question, false)
}

// NewMySQL returns a MySQL storage repository container.
func NewMySQL(host, user, password, database string, poolSize int) (repository.Container, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", user, password, host, database)
	h, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	h.SetMaxOpenConns(poolSize)
	return newContainer(h, sq.Question, true)
}

// NewPgSQL returns a PostgreSQL storage repository container.
func NewPgSQL(host, user, password, database, sslMode string, poolSize int) (repository.Container, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s", user, password, host, database, sslMode)
	h, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	h.SetMaxOpenConns(poolSize)
	return newContainer(h, sq.Dollar, true)
}

func newContainer(h *sql.DB, placeholder sq.PlaceholderFormat, pinged bool) (repository.Container, error) {
	c := &container{h: h}

	sb := sq.StatementBuilder.PlaceholderFormat(placeholder)

	if pinged {
		if err := c.ping(context.Background()); err != nil {
			_ = h.Close()
			return nil, err
		}
		ctx, cancel := context.WithCancel(context.Background())
		c.cancelPing = cancel
		go c.loop(ctx)
	}
	c.accounts = newAccounts(h, sb)
	c.messages = newMessages(h, sb)
	c.roster = newRoster(h, sb)
	c.presences = newPresences(h, sb)
	return c, nil
}

func (c *container) Accounts() repository.Accounts   { return c.accounts }
func (c *container) Messages() repository.Messages   { return c.messages }
func (c *container) Roster() repository.Roster       { return c.roster }
func (c *container) Presences() repository.Presences { return c.presences }

// Close shuts down the container closing the underlying database handle.
func (c *container) Close(_ context.Context) error {
	if c.cancelPing != nil {
		c.cancelPing()
	}
	return c.h.Close()
}

func (c *container) loop(ctx context.Context) {
	tick := time.NewTicker(pingInterval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			if err := c.ping(ctx); err != nil {
				log.Error(err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// ping sends a ping request to the server and outputs any error to log
func (c *container) ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return c.h.PingContext(pingCtx)
}

func inTransaction(ctx context.Context, h *sql.DB, f func(tx *sql.Tx) error) error {
	tx, txErr := h.BeginTx(ctx, nil)
	if txErr != nil {
		return txErr
	}
	if err := f(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func bootstrapSQLite(h *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			jid TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			from_jid TEXT NOT NULL,
			to_jid TEXT NOT NULL,
			body TEXT NOT NULL,
			message_type TEXT NOT NULL,
			stanza_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS i_messages_from_to ON messages (from_jid, to_jid)`,
		`CREATE TABLE IF NOT EXISTS roster_items (
			username TEXT NOT NULL,
			jid TEXT NOT NULL,
			name TEXT NOT NULL,
			subscription TEXT NOT NULL,
			item_groups TEXT NOT NULL,
			ask BOOL NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (username, jid)
		)`,
		`CREATE TABLE IF NOT EXISTS presences (
			jid TEXT PRIMARY KEY,
			show_state TEXT NOT NULL,
			status TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := h.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
