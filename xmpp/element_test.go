/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"testing"

	"github.com/dialogo-im/dialogo/xmpp/jid"
	"github.com/stretchr/testify/require"
)

func TestElementBuild(t *testing.T) {
	e := NewElementNamespace("query", "jabber:iq:roster")
	e.SetID("iq_1")
	require.Equal(t, "query", e.Name())
	require.Equal(t, "jabber:iq:roster", e.Namespace())
	require.Equal(t, "iq_1", e.ID())

	item := NewElementName("item")
	item.SetAttribute("jid", "a@localhost")
	e.AppendElement(item)
	require.Equal(t, 1, e.Elements().Count())
	require.NotNil(t, e.Elements().Child("item"))
}

func TestElementToXML(t *testing.T) {
	e := NewElementName("message")
	e.SetID("msg_1")
	e.SetType("chat")

	body := NewElementName("body")
	body.SetText("hi & <bye>")
	e.AppendElement(body)

	require.Equal(t, `<message id="msg_1" type="chat"><body>hi &amp; &lt;bye&gt;</body></message>`, e.String())
}

func TestElementEmptyToXML(t *testing.T) {
	e := NewElementName("presence")
	require.Equal(t, `<presence/>`, e.String())
}

func TestElementCopy(t *testing.T) {
	e := NewElementNamespace("x", "http://jabber.org/protocol/muc")
	e.AppendElement(NewElementName("password").SetText("secret"))

	cp := NewElementFromElement(e)
	require.Equal(t, e.String(), cp.String())

	// mutating the copy must not affect the original
	cp.SetAttribute("extra", "1")
	require.NotEqual(t, e.String(), cp.String())
}

func TestNewStanzaFromElement(t *testing.T) {
	e := NewElementName("message")
	e.SetFrom("a@localhost/res")
	e.SetTo("b@localhost")
	e.SetType("chat")

	stanza, err := NewStanzaFromElement(e)
	require.Nil(t, err)
	msg, ok := stanza.(*Message)
	require.True(t, ok)
	require.Equal(t, "a@localhost/res", msg.FromJID().String())
	require.Equal(t, "b@localhost", msg.ToJID().String())

	e2 := NewElementName("whatever")
	_, err = NewStanzaFromElement(e2)
	require.NotNil(t, err)
}

func TestMessageBody(t *testing.T) {
	j1, _ := jid.NewWithString("a@localhost", false)
	j2, _ := jid.NewWithString("b@localhost", false)

	e := NewElementName("message")
	e.SetType("chat")
	e.AppendElement(NewElementName("body").SetText("hello there"))

	msg, err := NewMessageFromElement(e, j1, j2)
	require.Nil(t, err)
	require.True(t, msg.IsChat())
	require.True(t, msg.IsMessageWithBody())
	require.Equal(t, "hello there", msg.Body())

	e2 := NewElementName("message")
	msg2, err := NewMessageFromElement(e2, j1, j2)
	require.Nil(t, err)
	require.False(t, msg2.IsMessageWithBody())
	require.Equal(t, "", msg2.Body())
}

func TestPresenceShowAndPriority(t *testing.T) {
	j1, _ := jid.NewWithString("b@localhost/res", false)
	j2, _ := jid.NewWithString("a@localhost", false)

	e := NewElementName("presence")
	e.AppendElement(NewElementName("show").SetText("away"))
	e.AppendElement(NewElementName("status").SetText("brb"))
	e.AppendElement(NewElementName("priority").SetText("10"))

	p, err := NewPresenceFromElement(e, j1, j2)
	require.Nil(t, err)
	require.True(t, p.IsAvailable())
	require.Equal(t, AwayShowState, p.ShowState())
	require.Equal(t, "away", p.ShowState().String())
	require.Equal(t, "brb", p.Status())
	require.Equal(t, int8(10), p.Priority())
}

func TestPresenceInvalidShow(t *testing.T) {
	j1, _ := jid.NewWithString("b@localhost", false)
	j2, _ := jid.NewWithString("a@localhost", false)

	e := NewElementName("presence")
	e.AppendElement(NewElementName("show").SetText("invisible"))

	_, err := NewPresenceFromElement(e, j1, j2)
	require.NotNil(t, err)
}

func TestIQValidation(t *testing.T) {
	j1, _ := jid.NewWithString("a@localhost", false)
	j2, _ := jid.NewWithString("localhost", false)

	e := NewElementName("iq")
	_, err := NewIQFromElement(e, j1, j2)
	require.NotNil(t, err) // missing id

	e.SetID("iq_1")
	_, err = NewIQFromElement(e, j1, j2)
	require.NotNil(t, err) // missing type

	e.SetType("get")
	_, err = NewIQFromElement(e, j1, j2)
	require.NotNil(t, err) // get must carry exactly one child

	e.AppendElement(NewElementNamespace("query", "jabber:iq:roster"))
	iq, err := NewIQFromElement(e, j1, j2)
	require.Nil(t, err)
	require.True(t, iq.IsGet())

	result := iq.ResultIQ()
	require.Equal(t, "iq_1", result.ID())
	require.True(t, result.IsResult())
}

func TestDelayStamp(t *testing.T) {
	e := NewElementName("message")
	_, ok := e.DelayStamp()
	require.False(t, ok)

	e.Delay("localhost", "offline delivery")
	stamp, ok := e.DelayStamp()
	require.True(t, ok)
	require.False(t, stamp.IsZero())
}
