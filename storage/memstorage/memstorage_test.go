/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package memstorage

import (
	"context"
	"testing"
	"time"

	"github.com/dialogo-im/dialogo/model"
	"github.com/dialogo-im/dialogo/model/rostermodel"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageAccounts(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.Nil(t, s.Accounts().UpsertAccount(ctx, &model.Account{JID: "ortuman@localhost", Name: "Miguel", CreatedAt: time.Unix(100, 0)}))
	require.Nil(t, s.Accounts().UpsertAccount(ctx, &model.Account{JID: "noelia@localhost", Name: "Noelia", CreatedAt: time.Unix(50, 0)}))

	accounts, err := s.Accounts().FetchAccounts(ctx)
	require.Nil(t, err)
	require.Equal(t, 2, len(accounts))
	require.Equal(t, "noelia@localhost", accounts[0].JID) // creation order

	s.ActivateMockedError()
	_, err = s.Accounts().FetchAccounts(ctx)
	require.Equal(t, ErrMocked, err)
}

func TestMemoryStorageMessages(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, err := s.Messages().InsertMessage(ctx, &model.ChatMessage{
		FromJID: "ortuman@localhost", ToJID: "noelia@localhost", Body: "pint?", Type: "chat", CreatedAt: time.Unix(100, 0),
	})
	require.Nil(t, err)
	require.NotEmpty(t, id1)

	_, err = s.Messages().InsertMessage(ctx, &model.ChatMessage{
		FromJID: "noelia@localhost", ToJID: "ortuman@localhost", Body: "sure!", Type: "chat", CreatedAt: time.Unix(200, 0),
	})
	require.Nil(t, err)

	_, err = s.Messages().InsertMessage(ctx, &model.ChatMessage{
		FromJID: "someone@localhost", ToJID: "ortuman@localhost", Body: "unrelated", Type: "chat", CreatedAt: time.Unix(300, 0),
	})
	require.Nil(t, err)

	history, err := s.Messages().FetchChatHistory(ctx, "ortuman@localhost", "noelia@localhost", 10, 0)
	require.Nil(t, err)
	require.Equal(t, 2, len(history))
	require.Equal(t, "sure!", history[0].Body) // newest first

	history, err = s.Messages().FetchChatHistory(ctx, "ortuman@localhost", "noelia@localhost", 1, 1)
	require.Nil(t, err)
	require.Equal(t, 1, len(history))
	require.Equal(t, "pint?", history[0].Body)

	s.ActivateMockedError()
	_, err = s.Messages().InsertMessage(ctx, &model.ChatMessage{})
	require.Equal(t, ErrMocked, err)
}

func TestMemoryStorageRoster(t *testing.T) {
	s := New()
	ctx := context.Background()

	ri := &rostermodel.Item{Username: "ortuman@localhost", JID: "noelia@localhost", Name: "Noelia", Subscription: rostermodel.SubscriptionTo}
	require.Nil(t, s.Roster().UpsertRosterItem(ctx, ri))

	ri.Subscription = rostermodel.SubscriptionBoth
	require.Nil(t, s.Roster().UpsertRosterItem(ctx, ri))

	items, err := s.Roster().FetchRosterItems(ctx, "ortuman@localhost")
	require.Nil(t, err)
	require.Equal(t, 1, len(items))
	require.Equal(t, rostermodel.SubscriptionBoth, items[0].Subscription)

	found, err := s.Roster().FetchRosterItem(ctx, "ortuman@localhost", "noelia@localhost")
	require.Nil(t, err)
	require.NotNil(t, found)

	require.Nil(t, s.Roster().DeleteRosterItem(ctx, "ortuman@localhost", "noelia@localhost"))

	found, err = s.Roster().FetchRosterItem(ctx, "ortuman@localhost", "noelia@localhost")
	require.Nil(t, err)
	require.Nil(t, found)
}

func TestMemoryStoragePresences(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.Nil(t, s.Presences().UpsertPresence(ctx, &model.Presence{JID: "noelia@localhost/garden", Show: "away"}))
	require.Nil(t, s.Presences().UpsertPresence(ctx, &model.Presence{JID: "noelia@localhost/garden", Show: "online"}))

	p, err := s.Presences().FetchPresence(ctx, "noelia@localhost/garden")
	require.Nil(t, err)
	require.NotNil(t, p)
	require.Equal(t, "online", p.Show)

	p, err = s.Presences().FetchPresence(ctx, "nobody@localhost")
	require.Nil(t, err)
	require.Nil(t, p)
}
