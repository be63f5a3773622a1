/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package jid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJID(t *testing.T) {
	j1, err := New("ortuman", "example.org", "balcony", false)
	require.Nil(t, err)
	require.Equal(t, "ortuman", j1.Node())
	require.Equal(t, "example.org", j1.Domain())
	require.Equal(t, "balcony", j1.Resource())

	j2, err := New("ortuman", "example.org", "balcony", true)
	require.Nil(t, err)
	require.Equal(t, "ortuman", j2.Node())
	require.Equal(t, "example.org", j2.Domain())
	require.Equal(t, "balcony", j2.Resource())
}

func TestNewWithString(t *testing.T) {
	j, err := NewWithString("user@localhost/xmpp-client", false)
	require.Nil(t, err)
	require.Equal(t, "user", j.Node())
	require.Equal(t, "localhost", j.Domain())
	require.Equal(t, "xmpp-client", j.Resource())

	j2, err := NewWithString("localhost", false)
	require.Nil(t, err)
	require.True(t, j2.IsServer())

	_, err = NewWithString("user@", false)
	require.NotNil(t, err)

	_, err = NewWithString("user@localhost/", false)
	require.NotNil(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	inputs := []string{
		"user@localhost",
		"user@localhost/xmpp-client",
		"a@localhost/res",
		"conference.localhost",
		"room@conference.localhost/nick",
	}
	for _, in := range inputs {
		j, err := NewWithString(in, false)
		require.Nil(t, err)
		require.Equal(t, in, j.String())

		// re-parsing the string form yields identical parts
		j2, err := NewWithString(j.String(), false)
		require.Nil(t, err)
		require.Equal(t, j.Node(), j2.Node())
		require.Equal(t, j.Domain(), j2.Domain())
		require.Equal(t, j.Resource(), j2.Resource())
	}
}

func TestBareJID(t *testing.T) {
	j, _ := NewWithString("ortuman@example.org/balcony", false)
	bare := j.ToBareJID()
	require.Equal(t, "ortuman@example.org", bare.String())
	require.True(t, bare.IsBare())
	require.False(t, bare.IsFull())
	require.True(t, j.IsFull())
	require.True(t, j.IsFullWithUser())
}

func TestWithResource(t *testing.T) {
	j, _ := NewWithString("room@conference.localhost", false)
	full := j.WithResource("nick")
	require.Equal(t, "room@conference.localhost/nick", full.String())
	require.Equal(t, "room@conference.localhost", j.String())
}

func TestMatches(t *testing.T) {
	j1, _ := NewWithString("ortuman@example.org/balcony", false)
	j2, _ := NewWithString("ortuman@example.org/yard", false)
	j3, _ := NewWithString("ortuman@example.org", false)

	require.True(t, j1.Matches(j2, MatchesBare))
	require.False(t, j1.Matches(j2, MatchesFull))
	require.True(t, j1.Matches(j3, MatchesBare))
	require.True(t, j1.Matches(j2, MatchesDomain))
}

func TestStringPrepErrors(t *testing.T) {
	_, err := New("o r tuman", "example.org", "", false)
	require.NotNil(t, err)

	_, err = New("ortu@man", "example.org", "", false)
	require.NotNil(t, err)
}
