/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package memstorage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dialogo-im/dialogo/model"
	"github.com/dialogo-im/dialogo/model/rostermodel"
	"github.com/dialogo-im/dialogo/storage/repository"
	"github.com/pkg/errors"
)

// ErrMocked will be returned by any Storage method
// when mocked error is activated.
var ErrMocked = errors.New("memstorage: mocked error")

// Storage represents an in-memory storage repository container.
type Storage struct {
	mockErr   uint32
	mu        sync.RWMutex
	accounts  map[string]model.Account
	messages  []model.ChatMessage
	roster    map[string][]rostermodel.Item
	presences map[string]model.Presence
}

// New returns a new in-memory container instance.
func New() *Storage {
	return &Storage{
		accounts:  make(map[string]model.Account),
		roster:    make(map[string][]rostermodel.Item),
		presences: make(map[string]model.Presence),
	}
}

// Accounts satisfies repository.Container interface.
func (m *Storage) Accounts() repository.Accounts { return m }

// Messages satisfies repository.Container interface.
func (m *Storage) Messages() repository.Messages { return m }

// Roster satisfies repository.Container interface.
func (m *Storage) Roster() repository.Roster { return m }

// Presences satisfies repository.Container interface.
func (m *Storage) Presences() repository.Presences { return m }

// Close satisfies repository.Container interface.
func (m *Storage) Close(_ context.Context) error { return nil }

// ActivateMockedError makes every storage operation fail
// with ErrMocked until deactivated.
func (m *Storage) ActivateMockedError() {
	atomic.StoreUint32(&m.mockErr, 1)
}

// DeactivateMockedError restores normal storage operation.
func (m *Storage) DeactivateMockedError() {
	atomic.StoreUint32(&m.mockErr, 0)
}

func (m *Storage) inWriteLock(f func() error) error {
	if atomic.LoadUint32(&m.mockErr) == 1 {
		return ErrMocked
	}
	m.mu.Lock()
	err := f()
	m.mu.Unlock()
	return err
}

func (m *Storage) inReadLock(f func() error) error {
	if atomic.LoadUint32(&m.mockErr) == 1 {
		return ErrMocked
	}
	m.mu.RLock()
	err := f()
	m.mu.RUnlock()
	return err
}
