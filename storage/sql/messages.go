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
	"github.com/google/uuid"
)

type sqlMessages struct {
	h  *sql.DB
	sb sq.StatementBuilderType
}

func newMessages(h *sql.DB, sb sq.StatementBuilderType) *sqlMessages {
	return &sqlMessages{h: h, sb: sb}
}

func (m *sqlMessages) InsertMessage(ctx context.Context, msg *model.ChatMessage) (string, error) {
	if len(msg.ID) == 0 {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := m.sb.Insert("messages").
		Columns("id", "from_jid", "to_jid", "body", "message_type", "stanza_id", "created_at").
		Values(msg.ID, msg.FromJID, msg.ToJID, msg.Body, msg.Type, msg.StanzaID, msg.CreatedAt).
		RunWith(m.h).ExecContext(ctx)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (m *sqlMessages) FetchChatHistory(ctx context.Context, userJID, contactJID string, limit, offset int) ([]model.ChatMessage, error) {
	q := m.sb.Select("id", "from_jid", "to_jid", "body", "message_type", "stanza_id", "created_at").
		From("messages").
		Where(sq.Or{
			sq.And{sq.Eq{"from_jid": userJID}, sq.Eq{"to_jid": contactJID}},
			sq.And{sq.Eq{"from_jid": contactJID}, sq.Eq{"to_jid": userJID}},
		}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	rows, err := q.RunWith(m.h).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var messages []model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.FromJID, &msg.ToJID, &msg.Body, &msg.Type, &msg.StanzaID, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
