/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package client

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dialogo-im/dialogo/log"
	"github.com/dialogo-im/dialogo/model"
	"github.com/dialogo-im/dialogo/model/rostermodel"
	"github.com/dialogo-im/dialogo/session"
	"github.com/dialogo-im/dialogo/version"
	"github.com/dialogo-im/dialogo/xmpp"
)

// chatStates holds every chat state notification, most significant
// first. A message carrying more than one notification reports only
// the highest ranked state.
var chatStates = []ChatState{
	ChatStateComposing,
	ChatStateActive,
	ChatStatePaused,
	ChatStateInactive,
	ChatStateGone,
}

// readLoop processes inbound stream elements until the stream
// terminates. It is the only goroutine reading from the session, and
// it always posts the terminal Disconnected event before exiting.
// Malformed stanzas are dropped, keeping the stream alive.
func (c *Client) readLoop(sess xmppStream, done chan struct{}) {
	for {
		elem, sErr := sess.Receive()
		if sErr != nil {
			if sErr.Element != nil {
				log.Warnf("dropping malformed stanza: %v", sErr.UnderlyingErr)
				continue
			}
			c.handleStreamEnd(sErr)
			close(done)
			return
		}
		if elem == nil {
			continue
		}
		c.handleElement(elem)
	}
}

func (c *Client) handleElement(elem xmpp.XElement) {
	switch stanza := elem.(type) {
	case *xmpp.Message:
		c.handleMessage(stanza)
	case *xmpp.Presence:
		c.handlePresence(stanza)
	case *xmpp.IQ:
		c.handleIQ(stanza)
	default:
		if elem.Name() == "stream:error" {
			c.hub.post(Event{Type: StreamError, Info: &ErrorEventInfo{Error: streamErrorReason(elem)}})
			return
		}
		log.Debugf("ignoring inbound element: %s", elem.Name())
	}
}

func (c *Client) handleMessage(m *xmpp.Message) {
	timestamp := time.Now()
	if stamp, ok := m.DelayStamp(); ok {
		timestamp = stamp
	}
	if m.IsGroupChat() {
		c.handleRoomMessage(m, timestamp)
		return
	}
	if received := m.Elements().ChildNamespace("received", receiptsNamespace); received != nil {
		c.hub.post(Event{Type: MessageDelivered, Info: &ReceiptEventInfo{
			From:     m.FromJID(),
			StanzaID: received.Attributes().Get("id"),
		}})
	}
	if displayed := m.Elements().ChildNamespace("displayed", chatMarkersNamespace); displayed != nil {
		c.hub.post(Event{Type: MessageDisplayed, Info: &ReceiptEventInfo{
			From:     m.FromJID(),
			StanzaID: displayed.Attributes().Get("id"),
		}})
	}
	for _, chatState := range chatStates {
		if m.Elements().ChildNamespace(string(chatState), chatStatesNamespace) == nil {
			continue
		}
		c.hub.post(Event{Type: ChatStateReceived, Info: &ChatStateEventInfo{
			From:  m.FromJID(),
			State: chatState,
		}})
		break
	}
	c.archiveMessage(&model.ChatMessage{
		FromJID:   m.FromJID().ToBareJID().String(),
		ToJID:     m.ToJID().ToBareJID().String(),
		Body:      m.Body(),
		Type:      m.Type(),
		StanzaID:  m.ID(),
		CreatedAt: timestamp,
	})
	if !m.IsMessageWithBody() {
		return
	}
	c.hub.post(Event{Type: MessageReceived, Info: &MessageEventInfo{
		From:      m.FromJID(),
		To:        m.ToJID(),
		Body:      m.Body(),
		StanzaID:  m.ID(),
		Timestamp: timestamp,
	}})
}

func (c *Client) handleRoomMessage(m *xmpp.Message, timestamp time.Time) {
	roomJID := m.FromJID().ToBareJID()
	nickname := m.FromJID().Resource()

	if subject := m.Elements().Child("subject"); subject != nil && !m.IsMessageWithBody() {
		c.hub.post(Event{Type: MucSubjectChanged, Info: &MucSubjectEventInfo{
			Room:    roomJID,
			Subject: subject.Text(),
		}})
		return
	}
	if !m.IsMessageWithBody() {
		return
	}
	c.archiveMessage(&model.ChatMessage{
		FromJID:   m.FromJID().String(),
		ToJID:     m.ToJID().ToBareJID().String(),
		Body:      m.Body(),
		Type:      m.Type(),
		StanzaID:  m.ID(),
		CreatedAt: timestamp,
	})
	c.hub.post(Event{Type: MucMessageReceived, Info: &MucMessageEventInfo{
		Room:      roomJID,
		Nickname:  nickname,
		Body:      m.Body(),
		Timestamp: timestamp,
	}})
}

func (c *Client) handlePresence(p *xmpp.Presence) {
	if x := p.Elements().ChildNamespace("x", mucUserNamespace); x != nil {
		c.handleRoomPresence(p)
		return
	}
	from := p.FromJID().ToBareJID()
	show := p.ShowState().String()
	if len(show) == 0 {
		show = "online"
	}
	if err := c.repo.Presences().UpsertPresence(context.Background(), &model.Presence{
		JID:       from.String(),
		Show:      show,
		Status:    p.Status(),
		UpdatedAt: time.Now(),
	}); err != nil {
		log.Errorf("failed to update presence: %v", err)
	}
	switch p.Type() {
	case xmpp.SubscribeType:
		c.hub.post(Event{Type: SubscriptionRequest, Info: &SubscriptionEventInfo{JID: from}})

	case xmpp.SubscribedType:
		c.hub.post(Event{Type: SubscriptionApproved, Info: &SubscriptionEventInfo{JID: from}})

	case xmpp.UnsubscribedType:
		c.hub.post(Event{Type: SubscriptionDeclined, Info: &SubscriptionEventInfo{JID: from}})

	case xmpp.AvailableType, xmpp.UnavailableType:
		c.hub.post(Event{Type: PresenceReceived, Info: &PresenceEventInfo{
			From:     p.FromJID(),
			Show:     show,
			Status:   p.Status(),
			Priority: p.Priority(),
		}})

	default:
		log.Debugf("ignoring %s presence from %s", p.Type(), from)
	}
}

func (c *Client) handleRoomPresence(p *xmpp.Presence) {
	info := &MucEventInfo{
		Room:     p.FromJID().ToBareJID(),
		Nickname: p.FromJID().Resource(),
	}
	switch p.Type() {
	case xmpp.AvailableType:
		c.hub.post(Event{Type: MucUserJoined, Info: info})
	case xmpp.UnavailableType:
		c.hub.post(Event{Type: MucUserLeft, Info: info})
	}
}

func (c *Client) handleIQ(iq *xmpp.IQ) {
	switch {
	case iq.Elements().ChildNamespace("query", rosterNamespace) != nil:
		c.handleRosterIQ(iq)

	case iq.IsGet() && iq.Elements().ChildNamespace("ping", pingNamespace) != nil:
		if err := c.sess.Send(iq.ResultIQ()); err != nil {
			log.Warnf("client: %v", err)
		}

	case iq.IsGet() && iq.Elements().ChildNamespace("query", versionNamespace) != nil:
		c.sendVersion(iq)

	default:
		log.Debugf("ignoring %s iq: %s", iq.Type(), iq.ID())
	}
}

func (c *Client) handleRosterIQ(iq *xmpp.IQ) {
	if !iq.IsResult() && !iq.IsSet() {
		return
	}
	query := iq.Elements().ChildNamespace("query", rosterNamespace)
	username := c.cfg.JID.Node()

	var items []rostermodel.Item
	var removed []string
	for _, itemElem := range query.Elements().Children("item") {
		ri, err := rostermodel.NewItem(itemElem)
		if err != nil {
			log.Warnf("invalid roster item: %v", err)
			continue
		}
		ri.Username = username
		if ri.Subscription == rostermodel.SubscriptionRemove {
			if err := c.repo.Roster().DeleteRosterItem(context.Background(), username, ri.JID); err != nil {
				log.Errorf("failed to delete roster item: %v", err)
			}
			removed = append(removed, ri.JID)
			continue
		}
		if err := c.repo.Roster().UpsertRosterItem(context.Background(), ri); err != nil {
			log.Errorf("failed to update roster item: %v", err)
		}
		items = append(items, *ri)
	}
	if iq.IsResult() {
		c.state.update(func(s *State) { s.Roster = items })
		c.hub.post(Event{Type: RosterReceived, Info: &RosterEventInfo{Items: items}})
		return
	}
	// roster push: acknowledge and notify every pushed item
	if err := c.sess.Send(iq.ResultIQ()); err != nil {
		log.Warnf("client: %v", err)
	}
	known := make(map[string]bool)
	for _, ri := range c.state.get().Roster {
		known[ri.JID] = true
	}
	c.state.update(func(s *State) {
		for _, jidStr := range removed {
			s.Roster = removeRosterEntry(s.Roster, jidStr)
		}
		for _, ri := range items {
			s.Roster = replaceRosterEntry(s.Roster, ri)
		}
	})
	for _, jidStr := range removed {
		c.hub.post(Event{Type: RosterItemRemoved, Info: &RosterItemEventInfo{
			Item: &rostermodel.Item{Username: username, JID: jidStr, Subscription: rostermodel.SubscriptionRemove},
		}})
	}
	for i := range items {
		evType := RosterItemUpdated
		if !known[items[i].JID] {
			evType = RosterItemAdded
		}
		c.hub.post(Event{Type: evType, Info: &RosterItemEventInfo{Item: &items[i]}})
	}
}

func (c *Client) sendVersion(iq *xmpp.IQ) {
	query := xmpp.NewElementNamespace("query", versionNamespace)
	query.AppendElement(xmpp.NewElementName("name").SetText("dialogo"))
	query.AppendElement(xmpp.NewElementName("version").SetText(version.ApplicationVersion.String()))

	result := iq.ResultIQ()
	result.AppendElement(query)
	if err := c.sess.Send(result); err != nil {
		log.Warnf("client: %v", err)
	}
}

// handleStreamEnd resets the client to its disconnected state and
// posts the terminal Disconnected event, triggering the reconnection
// supervisor when the stream was lost unexpectedly.
func (c *Client) handleStreamEnd(sErr *session.Error) {
	userRequested := atomic.LoadUint32(&c.closing) == 1

	var reason string
	switch {
	case userRequested:
		reason = "disconnect requested"
	case sErr.UnderlyingErr != nil:
		reason = sErr.UnderlyingErr.Error()
	default:
		reason = "stream closed by peer"
	}
	c.state.update(func(s *State) {
		*s = State{}
	})
	c.hub.post(Event{Type: Disconnected, Info: &DisconnectedEventInfo{Reason: reason}})

	log.Infof("disconnected: %s", reason)

	if !userRequested && c.cfg.AutoReconnect {
		select {
		case c.lostCh <- struct{}{}:
		default:
		}
	}
}

func streamErrorReason(elem xmpp.XElement) string {
	if children := elem.Elements().All(); len(children) > 0 {
		return children[0].Name()
	}
	return "unknown"
}

func removeRosterEntry(roster []rostermodel.Item, jidStr string) []rostermodel.Item {
	for i, ri := range roster {
		if ri.JID == jidStr {
			return append(roster[:i], roster[i+1:]...)
		}
	}
	return roster
}

func replaceRosterEntry(roster []rostermodel.Item, item rostermodel.Item) []rostermodel.Item {
	for i, ri := range roster {
		if ri.JID == item.JID {
			roster[i] = item
			return roster
		}
	}
	return append(roster, item)
}
