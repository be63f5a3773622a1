/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package sql

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dialogo-im/dialogo/model"
)

type sqlAccounts struct {
	h  *sql.DB
	sb sq.StatementBuilderType
}

func newAccounts(h *sql.DB, sb sq.StatementBuilderType) *sqlAccounts {
	return &sqlAccounts{h: h, sb: sb}
}

func (a *sqlAccounts) UpsertAccount(ctx context.Context, acc *model.Account) error {
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}
	return inTransaction(ctx, a.h, func(tx *sql.Tx) error {
		if _, err := a.sb.Delete("accounts").
			Where(sq.Eq{"jid": acc.JID}).
			RunWith(tx).ExecContext(ctx); err != nil {
			return err
		}
		_, err := a.sb.Insert("accounts").
			Columns("jid", "name", "created_at").
			Values(acc.JID, acc.Name, acc.CreatedAt).
			RunWith(tx).ExecContext(ctx)
		return err
	})
}

func (a *sqlAccounts) FetchAccounts(ctx context.Context) ([]model.Account, error) {
	q := a.sb.Select("jid", "name", "created_at").
		From("accounts").
		OrderBy("created_at")

	rows, err := q.RunWith(a.h).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var acc model.Account
		if err := rows.Scan(&acc.JID, &acc.Name, &acc.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}
