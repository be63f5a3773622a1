/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package sql

import (
	"errors"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/dialogo-im/dialogo/log"
)

var errGeneric = errors.New("sql: generic storage error")

// NewMock returns a mocked storage container instance.
func NewMock() (*container, sqlmock.Sqlmock) {
	var err error
	var sqlMock sqlmock.Sqlmock

	c := &container{}
	c.h, sqlMock, err = sqlmock.New()
	if err != nil {
		log.Fatalf("%v", err)
	}
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)

	c.accounts = newAccounts(c.h, sb)
	c.messages = newMessages(c.h, sb)
	c.roster = newRoster(c.h, sb)
	c.presences = newPresences(c.h, sb)
	return c, sqlMock
}
