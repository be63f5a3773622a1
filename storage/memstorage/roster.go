/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package memstorage

import (
	"context"

	"github.com/dialogo-im/dialogo/model/rostermodel"
)

// UpsertRosterItem inserts a new roster item entity into storage,
// or updates it in case it's been previously inserted.
func (m *Storage) UpsertRosterItem(_ context.Context, ri *rostermodel.Item) error {
	return m.inWriteLock(func() error {
		ris := m.roster[ri.Username]
		for i, r := range ris {
			if r.JID == ri.JID {
				ris[i] = *ri
				return nil
			}
		}
		m.roster[ri.Username] = append(ris, *ri)
		return nil
	})
}

// DeleteRosterItem deletes a roster item entity from storage.
func (m *Storage) DeleteRosterItem(_ context.Context, username, jid string) error {
	return m.inWriteLock(func() error {
		ris := m.roster[username]
		for i, ri := range ris {
			if ri.JID == jid {
				m.roster[username] = append(ris[:i], ris[i+1:]...)
				return nil
			}
		}
		return nil
	})
}

// FetchRosterItems retrieves from storage all roster item entities
// associated to a given user.
func (m *Storage) FetchRosterItems(_ context.Context, username string) ([]rostermodel.Item, error) {
	var ris []rostermodel.Item
	if err := m.inReadLock(func() error {
		ris = append(ris, m.roster[username]...)
		return nil
	}); err != nil {
		return nil, err
	}
	return ris, nil
}

// FetchRosterItem retrieves from storage a roster item entity.
func (m *Storage) FetchRosterItem(_ context.Context, username, jid string) (*rostermodel.Item, error) {
	var found *rostermodel.Item
	if err := m.inReadLock(func() error {
		for _, ri := range m.roster[username] {
			if ri.JID == jid {
				item := ri
				found = &item
				return nil
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return found, nil
}
