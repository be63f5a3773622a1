/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package repository

import (
	"context"

	"github.com/dialogo-im/dialogo/model"
)

// Presences defines storage operations for contact presences.
type Presences interface {
	// UpsertPresence inserts a contact last known presence into storage,
	// or updates it in case it's been previously inserted.
	UpsertPresence(ctx context.Context, p *model.Presence) error

	// FetchPresence retrieves from storage the last known presence
	// associated to a given JID.
	FetchPresence(ctx context.Context, jid string) (*model.Presence, error)
}
