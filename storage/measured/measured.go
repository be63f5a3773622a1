/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package measured

import (
	"context"

	"github.com/dialogo-im/dialogo/model"
	"github.com/dialogo-im/dialogo/model/rostermodel"
	"github.com/dialogo-im/dialogo/storage/repository"
	"github.com/sony/gobreaker"
)

// Container decorates a repository container with a circuit breaker,
// so a degraded storage backend trips open instead of stalling callers.
type Container struct {
	inner     repository.Container
	accounts  *measuredAccounts
	messages  *measuredMessages
	roster    *measuredRoster
	presences *measuredPresences
}

// New returns a circuit breaker decorated container.
func New(inner repository.Container) *Container {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "storage"})
	return &Container{
		inner:     inner,
		accounts:  &measuredAccounts{inner: inner.Accounts(), cb: cb},
		messages:  &measuredMessages{inner: inner.Messages(), cb: cb},
		roster:    &measuredRoster{inner: inner.Roster(), cb: cb},
		presences: &measuredPresences{inner: inner.Presences(), cb: cb},
	}
}

// Accounts satisfies repository.Container interface.
func (c *Container) Accounts() repository.Accounts { return c.accounts }

// Messages satisfies repository.Container interface.
func (c *Container) Messages() repository.Messages { return c.messages }

// Roster satisfies repository.Container interface.
func (c *Container) Roster() repository.Roster { return c.roster }

// Presences satisfies repository.Container interface.
func (c *Container) Presences() repository.Presences { return c.presences }

// Close satisfies repository.Container interface.
func (c *Container) Close(ctx context.Context) error { return c.inner.Close(ctx) }

type measuredAccounts struct {
	inner repository.Accounts
	cb    *gobreaker.CircuitBreaker
}

func (a *measuredAccounts) UpsertAccount(ctx context.Context, acc *model.Account) error {
	_, err := a.cb.Execute(func() (interface{}, error) {
		return nil, a.inner.UpsertAccount(ctx, acc)
	})
	return err
}

func (a *measuredAccounts) FetchAccounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := a.cb.Execute(func() (interface{}, error) {
		return a.inner.FetchAccounts(ctx)
	})
	if err != nil {
		return nil, err
	}
	return accounts.([]model.Account), nil
}

type measuredMessages struct {
	inner repository.Messages
	cb    *gobreaker.CircuitBreaker
}

func (m *measuredMessages) InsertMessage(ctx context.Context, msg *model.ChatMessage) (string, error) {
	id, err := m.cb.Execute(func() (interface{}, error) {
		return m.inner.InsertMessage(ctx, msg)
	})
	if err != nil {
		return "", err
	}
	return id.(string), nil
}

func (m *measuredMessages) FetchChatHistory(ctx context.Context, userJID, contactJID string, limit, offset int) ([]model.ChatMessage, error) {
	history, err := m.cb.Execute(func() (interface{}, error) {
		return m.inner.FetchChatHistory(ctx, userJID, contactJID, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return history.([]model.ChatMessage), nil
}

type measuredRoster struct {
	inner repository.Roster
	cb    *gobreaker.CircuitBreaker
}

func (r *measuredRoster) UpsertRosterItem(ctx context.Context, ri *rostermodel.Item) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.inner.UpsertRosterItem(ctx, ri)
	})
	return err
}

func (r *measuredRoster) DeleteRosterItem(ctx context.Context, username, jid string) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.inner.DeleteRosterItem(ctx, username, jid)
	})
	return err
}

func (r *measuredRoster) FetchRosterItems(ctx context.Context, username string) ([]rostermodel.Item, error) {
	items, err := r.cb.Execute(func() (interface{}, error) {
		return r.inner.FetchRosterItems(ctx, username)
	})
	if err != nil {
		return nil, err
	}
	return items.([]rostermodel.Item), nil
}

func (r *measuredRoster) FetchRosterItem(ctx context.Context, username, jid string) (*rostermodel.Item, error) {
	ri, err := r.cb.Execute(func() (interface{}, error) {
		return r.inner.FetchRosterItem(ctx, username, jid)
	})
	if err != nil {
		return nil, err
	}
	return ri.(*rostermodel.Item), nil
}

type measuredPresences struct {
	inner repository.Presences
	cb    *gobreaker.CircuitBreaker
}

func (p *measuredPresences) UpsertPresence(ctx context.Context, presence *model.Presence) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.inner.UpsertPresence(ctx, presence)
	})
	return err
}

func (p *measuredPresences) FetchPresence(ctx context.Context, jid string) (*model.Presence, error) {
	presence, err := p.cb.Execute(func() (interface{}, error) {
		return p.inner.FetchPresence(ctx, jid)
	})
	if err != nil {
		return nil, err
	}
	return presence.(*model.Presence), nil
}
