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

type sqlPresences struct {
	h  *sql.DB
	sb sq.StatementBuilderType
}

func newPresences(h *sql.DB, sb sq.StatementBuilderType) *sqlPresences {
	return &sqlPresences{h: h, sb: sb}
}

func (p *sqlPresences) UpsertPresence(ctx context.Context, presence *model.Presence) error {
	if presence.UpdatedAt.IsZero() {
		presence.UpdatedAt = time.Now().UTC()
	}
	return inTransaction(ctx, p.h, func(tx *sql.Tx) error {
		if _, err := p.sb.Delete("presences").
			Where(sq.Eq{"jid": presence.JID}).
			RunWith(tx).ExecContext(ctx); err != nil {
			return err
		}
		_, err := p.sb.Insert("presences").
			Columns("jid", "show_state", "status", "updated_at").
			Values(presence.JID, presence.Show, presence.Status, presence.UpdatedAt).
			RunWith(tx).ExecContext(ctx)
		return err
	})
}

func (p *sqlPresences) FetchPresence(ctx context.Context, jid string) (*model.Presence, error) {
	q := p.sb.Select("jid", "show_state", "status", "updated_at").
		From("presences").
		Where(sq.Eq{"jid": jid})

	var presence model.Presence
	err := q.RunWith(p.h).QueryRowContext(ctx).
		Scan(&presence.JID, &presence.Show, &presence.Status, &presence.UpdatedAt)
	switch err {
	case nil:
		return &presence, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, err
	}
}
