/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package client

import (
	"context"
	"testing"
	"time"

	"github.com/dialogo-im/dialogo/xmpp"
	"github.com/stretchr/testify/require"
)

func testStanza(t *testing.T, el *xmpp.Element) xmpp.Stanza {
	t.Helper()
	stanza, err := xmpp.NewStanzaFromElement(el)
	require.Nil(t, err)
	return stanza
}

func connectedTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(testConfig())
	require.Nil(t, env.client.Connect(context.Background()))
	expectSent(t, env.stream) // initial presence
	return env
}

func TestClientIncomingMessage(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("message")
	el.SetID("msg_abc").SetType(xmpp.ChatType)
	el.SetFrom("bob@dialogo.im/laptop").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(xmpp.NewElementName("body").SetText("lunch?"))

	env.stream.deliver(testStanza(t, el))

	ev := expectEvent(t, env.events, MessageReceived)
	info := ev.Info.(*MessageEventInfo)
	require.Equal(t, "lunch?", info.Body)
	require.Equal(t, "msg_abc", info.StanzaID)
	require.Equal(t, "bob@dialogo.im/laptop", info.From.String())

	archived, err := env.storage.FetchChatHistory(context.Background(), "alice@dialogo.im", "bob@dialogo.im", 10, 0)
	require.Nil(t, err)
	require.Len(t, archived, 1)
	require.Equal(t, "lunch?", archived[0].Body)
}

func TestClientIncomingDelayedMessage(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("message")
	el.SetID("msg_off").SetType(xmpp.ChatType)
	el.SetFrom("bob@dialogo.im/laptop").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(xmpp.NewElementName("body").SetText("missed you"))

	delay := xmpp.NewElementNamespace("delay", "urn:xmpp:delay")
	delay.SetAttribute("from", "dialogo.im")
	delay.SetAttribute("stamp", "2026-03-15T10:30:00Z")
	el.AppendElement(delay)

	env.stream.deliver(testStanza(t, el))

	ev := expectEvent(t, env.events, MessageReceived)
	info := ev.Info.(*MessageEventInfo)

	expected, _ := time.Parse(time.RFC3339, "2026-03-15T10:30:00Z")
	require.Equal(t, expected, info.Timestamp)
}

func TestClientIncomingChatState(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("message")
	el.SetID("msg_cs").SetType(xmpp.ChatType)
	el.SetFrom("bob@dialogo.im/laptop").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(xmpp.NewElementNamespace("composing", chatStatesNamespace))

	env.stream.deliver(testStanza(t, el))

	ev := expectEvent(t, env.events, ChatStateReceived)
	require.Equal(t, ChatStateComposing, ev.Info.(*ChatStateEventInfo).State)

	// a state only message never yields a message event
	el2 := xmpp.NewElementName("message")
	el2.SetID("msg_cs2").SetType(xmpp.ChatType)
	el2.SetFrom("bob@dialogo.im/laptop").SetTo("alice@dialogo.im/desktop")
	el2.AppendElement(xmpp.NewElementNamespace("paused", chatStatesNamespace))

	env.stream.deliver(testStanza(t, el2))

	ev = <-env.events
	require.Equal(t, ChatStateReceived, ev.Type)
	require.Equal(t, ChatStatePaused, ev.Info.(*ChatStateEventInfo).State)
}

func TestClientIncomingReceipts(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("message")
	el.SetID("msg_r1").SetType(xmpp.ChatType)
	el.SetFrom("bob@dialogo.im/laptop").SetTo("alice@dialogo.im/desktop")
	received := xmpp.NewElementNamespace("received", receiptsNamespace)
	received.SetAttribute("id", "msg_original")
	el.AppendElement(received)

	env.stream.deliver(testStanza(t, el))

	ev := expectEvent(t, env.events, MessageDelivered)
	require.Equal(t, "msg_original", ev.Info.(*ReceiptEventInfo).StanzaID)

	el2 := xmpp.NewElementName("message")
	el2.SetID("msg_r2").SetType(xmpp.ChatType)
	el2.SetFrom("bob@dialogo.im/laptop").SetTo("alice@dialogo.im/desktop")
	displayed := xmpp.NewElementNamespace("displayed", chatMarkersNamespace)
	displayed.SetAttribute("id", "msg_original")
	el2.AppendElement(displayed)

	env.stream.deliver(testStanza(t, el2))

	ev = expectEvent(t, env.events, MessageDisplayed)
	require.Equal(t, "msg_original", ev.Info.(*ReceiptEventInfo).StanzaID)
}

func TestClientIncomingPresence(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("presence")
	el.SetFrom("bob@dialogo.im/laptop").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(xmpp.NewElementName("show").SetText("away"))
	el.AppendElement(xmpp.NewElementName("status").SetText("busy"))
	el.AppendElement(xmpp.NewElementName("priority").SetText("10"))

	env.stream.deliver(testStanza(t, el))

	ev := expectEvent(t, env.events, PresenceReceived)
	info := ev.Info.(*PresenceEventInfo)
	require.Equal(t, "away", info.Show)
	require.Equal(t, "busy", info.Status)
	require.Equal(t, int8(10), info.Priority)

	stored, err := env.storage.FetchPresence(context.Background(), "bob@dialogo.im")
	require.Nil(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "away", stored.Show)
	require.Equal(t, "busy", stored.Status)
}

func TestClientIncomingPresenceDefaultShow(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("presence")
	el.SetFrom("bob@dialogo.im/laptop").SetTo("alice@dialogo.im/desktop")

	env.stream.deliver(testStanza(t, el))

	ev := expectEvent(t, env.events, PresenceReceived)
	require.Equal(t, "online", ev.Info.(*PresenceEventInfo).Show)
}

func TestClientIncomingSubscriptionPresences(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	for presenceType, evType := range map[string]EventType{
		xmpp.SubscribeType:    SubscriptionRequest,
		xmpp.SubscribedType:   SubscriptionApproved,
		xmpp.UnsubscribedType: SubscriptionDeclined,
	} {
		el := xmpp.NewElementName("presence")
		el.SetType(presenceType)
		el.SetFrom("bob@dialogo.im").SetTo("alice@dialogo.im/desktop")

		env.stream.deliver(testStanza(t, el))

		ev := expectEvent(t, env.events, evType)
		require.Equal(t, "bob@dialogo.im", ev.Info.(*SubscriptionEventInfo).JID.String())
	}
}

func TestClientIncomingRosterResult(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	query := xmpp.NewElementNamespace("query", rosterNamespace)

	bob := xmpp.NewElementName("item")
	bob.SetAttribute("jid", "bob@dialogo.im")
	bob.SetAttribute("name", "Bob")
	bob.SetAttribute("subscription", "both")
	bob.AppendElement(xmpp.NewElementName("group").SetText("Friends"))
	query.AppendElement(bob)

	carol := xmpp.NewElementName("item")
	carol.SetAttribute("jid", "carol@dialogo.im")
	carol.SetAttribute("subscription", "to")
	query.AppendElement(carol)

	el := xmpp.NewElementName("iq")
	el.SetID("iq_roster").SetType(xmpp.ResultType)
	el.SetFrom("dialogo.im").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(query)

	env.stream.deliver(testStanza(t, el))

	ev := expectEvent(t, env.events, RosterReceived)
	items := ev.Info.(*RosterEventInfo).Items
	require.Len(t, items, 2)
	require.Equal(t, "bob@dialogo.im", items[0].JID)
	require.Equal(t, []string{"Friends"}, items[0].Groups)

	st := env.client.State()
	require.Len(t, st.Roster, 2)

	stored, err := env.storage.FetchRosterItems(context.Background(), "alice")
	require.Nil(t, err)
	require.Len(t, stored, 2)
}

func TestClientIncomingRosterPush(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	push := func(itemAttrs map[string]string) {
		item := xmpp.NewElementName("item")
		for label, value := range itemAttrs {
			item.SetAttribute(label, value)
		}
		query := xmpp.NewElementNamespace("query", rosterNamespace)
		query.AppendElement(item)

		el := xmpp.NewElementName("iq")
		el.SetID("iq_push").SetType(xmpp.SetType)
		el.SetFrom("dialogo.im").SetTo("alice@dialogo.im/desktop")
		el.AppendElement(query)

		env.stream.deliver(testStanza(t, el))
	}
	push(map[string]string{"jid": "bob@dialogo.im", "name": "Bob", "subscription": "both"})

	ev := expectEvent(t, env.events, RosterItemAdded)
	require.Equal(t, "bob@dialogo.im", ev.Info.(*RosterItemEventInfo).Item.JID)

	ack := expectSent(t, env.stream)
	require.Equal(t, "iq", ack.Name())
	require.Equal(t, xmpp.ResultType, ack.Type())
	require.Equal(t, "iq_push", ack.ID())

	require.Len(t, env.client.State().Roster, 1)

	push(map[string]string{"jid": "bob@dialogo.im", "name": "Bobby", "subscription": "both"})

	ev = expectEvent(t, env.events, RosterItemUpdated)
	require.Equal(t, "Bobby", ev.Info.(*RosterItemEventInfo).Item.Name)
	expectSent(t, env.stream) // push acknowledgment
	require.Len(t, env.client.State().Roster, 1)

	push(map[string]string{"jid": "bob@dialogo.im", "subscription": "remove"})

	ev = expectEvent(t, env.events, RosterItemRemoved)
	require.Equal(t, "bob@dialogo.im", ev.Info.(*RosterItemEventInfo).Item.JID)

	expectSent(t, env.stream) // push acknowledgment

	require.Len(t, env.client.State().Roster, 0)

	stored, err := env.storage.FetchRosterItem(context.Background(), "alice", "bob@dialogo.im")
	require.Nil(t, err)
	require.Nil(t, stored)
}

func TestClientIncomingPing(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("iq")
	el.SetID("ping_1").SetType(xmpp.GetType)
	el.SetFrom("dialogo.im").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(xmpp.NewElementNamespace("ping", pingNamespace))

	env.stream.deliver(testStanza(t, el))

	pong := expectSent(t, env.stream)
	require.Equal(t, "iq", pong.Name())
	require.Equal(t, xmpp.ResultType, pong.Type())
	require.Equal(t, "ping_1", pong.ID())
}

func TestClientIncomingVersionQuery(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("iq")
	el.SetID("ver_1").SetType(xmpp.GetType)
	el.SetFrom("dialogo.im").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(xmpp.NewElementNamespace("query", versionNamespace))

	env.stream.deliver(testStanza(t, el))

	result := expectSent(t, env.stream)
	require.Equal(t, xmpp.ResultType, result.Type())
	query := result.Elements().ChildNamespace("query", versionNamespace)
	require.NotNil(t, query)
	require.Equal(t, "dialogo", query.Elements().Child("name").Text())
	require.NotEmpty(t, query.Elements().Child("version").Text())
}

func TestClientIncomingRoomMessage(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("message")
	el.SetID("muc_1").SetType(xmpp.GroupChatType)
	el.SetFrom("garden@conference.dialogo.im/bob").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(xmpp.NewElementName("body").SetText("hi room"))

	env.stream.deliver(testStanza(t, el))

	ev := expectEvent(t, env.events, MucMessageReceived)
	info := ev.Info.(*MucMessageEventInfo)
	require.Equal(t, "garden@conference.dialogo.im", info.Room.String())
	require.Equal(t, "bob", info.Nickname)
	require.Equal(t, "hi room", info.Body)
}

func TestClientIncomingRoomSubject(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("message")
	el.SetID("muc_2").SetType(xmpp.GroupChatType)
	el.SetFrom("garden@conference.dialogo.im/bob").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(xmpp.NewElementName("subject").SetText("spring planning"))

	env.stream.deliver(testStanza(t, el))

	ev := expectEvent(t, env.events, MucSubjectChanged)
	require.Equal(t, "spring planning", ev.Info.(*MucSubjectEventInfo).Subject)
}

func TestClientIncomingRoomPresences(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	el := xmpp.NewElementName("presence")
	el.SetFrom("garden@conference.dialogo.im/bob").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(xmpp.NewElementNamespace("x", mucUserNamespace))

	env.stream.deliver(testStanza(t, el))

	ev := expectEvent(t, env.events, MucUserJoined)
	info := ev.Info.(*MucEventInfo)
	require.Equal(t, "garden@conference.dialogo.im", info.Room.String())
	require.Equal(t, "bob", info.Nickname)

	el2 := xmpp.NewElementName("presence")
	el2.SetType(xmpp.UnavailableType)
	el2.SetFrom("garden@conference.dialogo.im/bob").SetTo("alice@dialogo.im/desktop")
	el2.AppendElement(xmpp.NewElementNamespace("x", mucUserNamespace))

	env.stream.deliver(testStanza(t, el2))

	expectEvent(t, env.events, MucUserLeft)
}

func TestClientIncomingMalformedStanza(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	bogus := xmpp.NewElementName("presence")
	bogus.SetType("bogus")
	env.stream.deliverStanzaError(bogus)

	el := xmpp.NewElementName("message")
	el.SetID("msg_after").SetType(xmpp.ChatType)
	el.SetFrom("bob@dialogo.im/laptop").SetTo("alice@dialogo.im/desktop")
	el.AppendElement(xmpp.NewElementName("body").SetText("still here?"))

	env.stream.deliver(testStanza(t, el))

	// the malformed stanza is dropped and the stream keeps going
	ev := expectEvent(t, env.events, MessageReceived)
	require.Equal(t, "still here?", ev.Info.(*MessageEventInfo).Body)
	require.Equal(t, StatusConnected, env.client.State().Status)
}

func TestClientStreamLost(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	env.stream.terminate()

	ev := expectEvent(t, env.events, Disconnected)
	require.Equal(t, "connection reset by peer", ev.Info.(*DisconnectedEventInfo).Reason)

	st := env.client.State()
	require.Equal(t, StatusDisconnected, st.Status)
	require.False(t, st.Authenticated)
}

func TestClientStreamError(t *testing.T) {
	env := connectedTestEnv(t)
	defer env.client.Shutdown(context.Background())

	streamErr := xmpp.NewElementName("stream:error")
	streamErr.AppendElement(xmpp.NewElementNamespace("conflict", "urn:ietf:params:xml:ns:xmpp-streams"))

	env.stream.deliver(streamErr)

	ev := expectEvent(t, env.events, StreamError)
	require.Equal(t, "conflict", ev.Info.(*ErrorEventInfo).Error)
}
