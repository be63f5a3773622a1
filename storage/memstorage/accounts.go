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
)

// UpsertAccount inserts a new account entity into storage,
// or updates it in case it's been previously inserted.
func (m *Storage) UpsertAccount(_ context.Context, a *model.Account) error {
	return m.inWriteLock(func() error {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		m.accounts[a.JID] = *a
		return nil
	})
}

// FetchAccounts retrieves from storage all account entities
// ordered by creation time.
func (m *Storage) FetchAccounts(_ context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if err := m.inReadLock(func() error {
		for _, a := range m.accounts {
			accounts = append(accounts, a)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}
