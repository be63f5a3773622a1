/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package sql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dialogo-im/dialogo/model/rostermodel"
)

type sqlRoster struct {
	h  *sql.DB
	sb sq.StatementBuilderType
}

func newRoster(h *sql.DB, sb sq.StatementBuilderType) *sqlRoster {
	return &sqlRoster{h: h, sb: sb}
}

func (r *sqlRoster) UpsertRosterItem(ctx context.Context, ri *rostermodel.Item) error {
	groups := strings.Join(ri.Groups, ";")

	return inTransaction(ctx, r.h, func(tx *sql.Tx) error {
		if _, err := r.sb.Delete("roster_items").
			Where(sq.And{sq.Eq{"username": ri.Username}, sq.Eq{"jid": ri.JID}}).
			RunWith(tx).ExecContext(ctx); err != nil {
			return err
		}
		_, err := r.sb.Insert("roster_items").
			Columns("username", "jid", "name", "subscription", "item_groups", "ask", "created_at").
			Values(ri.Username, ri.JID, ri.Name, ri.Subscription, groups, ri.Ask, time.Now().UTC()).
			RunWith(tx).ExecContext(ctx)
		return err
	})
}

func (r *sqlRoster) DeleteRosterItem(ctx context.Context, username, jid string) error {
	_, err := r.sb.Delete("roster_items").
		Where(sq.And{sq.Eq{"username": username}, sq.Eq{"jid": jid}}).
		RunWith(r.h).ExecContext(ctx)
	return err
}

func (r *sqlRoster) FetchRosterItems(ctx context.Context, username string) ([]rostermodel.Item, error) {
	q := r.sb.Select("username", "jid", "name", "subscription", "item_groups", "ask").
		From("roster_items").
		Where(sq.Eq{"username": username}).
		OrderBy("name", "jid")

	rows, err := q.RunWith(r.h).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []rostermodel.Item
	for rows.Next() {
		ri, err := scanRosterItemEntity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ri)
	}
	return items, rows.Err()
}

func (r *sqlRoster) FetchRosterItem(ctx context.Context, username, jid string) (*rostermodel.Item, error) {
	q := r.sb.Select("username", "jid", "name", "subscription", "item_groups", "ask").
		From("roster_items").
		Where(sq.And{sq.Eq{"username": username}, sq.Eq{"jid": jid}})

	ri, err := scanRosterItemEntity(q.RunWith(r.h).QueryRowContext(ctx))
	switch err {
	case nil:
		return ri, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, err
	}
}

type rowScanner interface {
	Scan(...interface{}) error
}

func scanRosterItemEntity(scanner rowScanner) (*rostermodel.Item, error) {
	var ri rostermodel.Item
	var groups string

	if err := scanner.Scan(&ri.Username, &ri.JID, &ri.Name, &ri.Subscription, &groups, &ri.Ask); err != nil {
		return nil, err
	}
	if len(groups) > 0 {
		ri.Groups = strings.Split(groups, ";")
	}
	return &ri, nil
}
