/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package memstorage

import (
	"context"
	"time"

	"github.com/dialogo-im/dialogo/model"
)

// UpsertPresence inserts a contact last known presence into storage,
// or updates it in case it's been previously inserted.
func (m *Storage) UpsertPresence(_ context.Context, p *model.Presence) error {
	return m.inWriteLock(func() error {
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = time.Now().UTC()
		}
		m.presences[p.JID] = *p
		return nil
	})
}

// FetchPresence retrieves from storage the last known presence
// associated to a given JID.
func (m *Storage) FetchPresence(_ context.Context, jid string) (*model.Presence, error) {
	var found *model.Presence
	if err := m.inReadLock(func() error {
		if p, ok := m.presences[jid]; ok {
			found = &p
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return found, nil
}
