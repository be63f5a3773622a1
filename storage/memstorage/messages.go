/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package memstorage

import (
	"context"
	"sort"
	"time"

	"github.com/dialogo-im/dialogo/model"
	"github.com/google/uuid"
)

// InsertMessage inserts a new message entity into the archive,
// assigning it a unique identifier when none is set.
func (m *Storage) InsertMessage(_ context.Context, msg *model.ChatMessage) (string, error) {
	if err := m.inWriteLock(func() error {
		if len(msg.ID) == 0 {
			msg.ID = uuid.New().String()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
		m.messages = append(m.messages, *msg)
		return nil
	}); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// FetchChatHistory retrieves from the archive all messages exchanged
// between a user and a contact, newest first.
func (m *Storage) FetchChatHistory(_ context.Context, userJID, contactJID string, limit, offset int) ([]model.ChatMessage, error) {
	var history []model.ChatMessage
	if err := m.inReadLock(func() error {
		for _, msg := range m.messages {
			if (msg.FromJID == userJID && msg.ToJID == contactJID) || (msg.FromJID == contactJID && msg.ToJID == userJID) {
				history = append(history, msg)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})
	if offset >= len(history) {
		return nil, nil
	}
	history = history[offset:]
	if limit > 0 && limit < len(history) {
		history = history[:limit]
	}
	return history, nil
}
