/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package repository

import (
	"context"

	"github.com/dialogo-im/dialogo/model"
)

// Messages defines storage operations for the chat message archive.
type Messages interface {
	// InsertMessage inserts a new message entity into the archive,
	// assigning it a unique identifier when none is set, and returns
	// the archived message identifier.
	InsertMessage(ctx context.Context, m *model.ChatMessage) (string, error)

	// FetchChatHistory retrieves from the archive all messages exchanged
	// between a user and a contact, newest first.
	FetchChatHistory(ctx context.Context, userJID, contactJID string, limit, offset int) ([]model.ChatMessage, error)
}
