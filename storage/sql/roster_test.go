/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package sql

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/dialogo-im/dialogo/model/rostermodel"
	"github.com/stretchr/testify/require"
)

func TestSQLStorageUpsertRosterItem(t *testing.T) {
	ri := rostermodel.Item{
		Username:     "ortuman@localhost",
		JID:          "noelia@localhost",
		Name:         "Noelia",
		Subscription: rostermodel.SubscriptionBoth,
		Groups:       []string{"general", "friends"},
	}

	s, mock := NewMock()
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM roster_items (.+)").
		WithArgs(ri.Username, ri.JID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO roster_items (.+)").
		WithArgs(ri.Username, ri.JID, ri.Name, ri.Subscription, "general;friends", ri.Ask, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := s.Roster().UpsertRosterItem(context.Background(), &ri)
	require.Nil(t, mock.ExpectationsWereMet())
	require.Nil(t, err)
}

func TestSQLStorageDeleteRosterItem(t *testing.T) {
	s, mock := NewMock()
	mock.ExpectExec("DELETE FROM roster_items (.+)").
		WithArgs("ortuman@localhost", "noelia@localhost").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Roster().DeleteRosterItem(context.Background(), "ortuman@localhost", "noelia@localhost")
	require.Nil(t, mock.ExpectationsWereMet())
	require.Nil(t, err)
}

func TestSQLStorageFetchRosterItems(t *testing.T) {
	cols := []string{"username", "jid", "name", "subscription", "item_groups", "ask"}

	s, mock := NewMock()
	mock.ExpectQuery("SELECT (.+) FROM roster_items (.+)").
		WithArgs("ortuman@localhost").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("ortuman@localhost", "noelia@localhost", "Noelia", "both", "general;friends", false))

	items, err := s.Roster().FetchRosterItems(context.Background(), "ortuman@localhost")
	require.Nil(t, mock.ExpectationsWereMet())
	require.Nil(t, err)
	require.Equal(t, 1, len(items))
	require.Equal(t, []string{"general", "friends"}, items[0].Groups)
}

func TestSQLStorageFetchRosterItem(t *testing.T) {
	cols := []string{"username", "jid", "name", "subscription", "item_groups", "ask"}

	s, mock := NewMock()
	mock.ExpectQuery("SELECT (.+) FROM roster_items (.+)").
		WithArgs("ortuman@localhost", "noelia@localhost").
		WillReturnRows(sqlmock.NewRows(cols))

	ri, err := s.Roster().FetchRosterItem(context.Background(), "ortuman@localhost", "noelia@localhost")
	require.Nil(t, mock.ExpectationsWereMet())
	require.Nil(t, err)
	require.Nil(t, ri)

	s, mock = NewMock()
	mock.ExpectQuery("SELECT (.+) FROM roster_items (.+)").
		WithArgs("ortuman@localhost", "noelia@localhost").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("ortuman@localhost", "noelia@localhost", "Noelia", "both", "", false))

	ri, err = s.Roster().FetchRosterItem(context.Background(), "ortuman@localhost", "noelia@localhost")
	require.Nil(t, mock.ExpectationsWereMet())
	require.Nil(t, err)
	require.NotNil(t, ri)
	require.Equal(t, "noelia@localhost", ri.JID)
	require.Nil(t, ri.Groups)
}
