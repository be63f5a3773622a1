/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package client

import (
	"sync"
	"time"

	"github.com/dialogo-im/dialogo/log"
	"github.com/dialogo-im/dialogo/model/rostermodel"
	"github.com/dialogo-im/dialogo/xmpp/jid"
)

// EventType identifies a client event.
type EventType string

const (
	// Connecting event is posted when a connection attempt starts.
	Connecting = EventType("connecting")

	// Connected event is posted once the stream is negotiated and a
	// resource is bound.
	Connected = EventType("connected")

	// Disconnected event is posted when the stream terminates for any
	// reason. It is always the last event of a connection.
	Disconnected = EventType("disconnected")

	// ConnectionError event is posted when a connection attempt fails
	// before authentication.
	ConnectionError = EventType("connection_error")

	// AuthenticationSuccess event is posted after a successful SASL
	// exchange.
	AuthenticationSuccess = EventType("authentication_success")

	// AuthenticationError event is posted when SASL negotiation fails.
	AuthenticationError = EventType("authentication_error")

	// MessageReceived event is posted for every inbound message
	// carrying a non-empty body.
	MessageReceived = EventType("message_received")

	// MessageSent event is posted after an outbound message is written
	// to the stream.
	MessageSent = EventType("message_sent")

	// MessageDelivered event is posted when a delivery receipt arrives.
	MessageDelivered = EventType("message_delivered")

	// MessageDisplayed event is posted when a displayed marker arrives.
	MessageDisplayed = EventType("message_displayed")

	// ChatStateReceived event is posted when an inbound message carries
	// a chat state notification.
	ChatStateReceived = EventType("chat_state_received")

	// PresenceReceived event is posted for inbound available and
	// unavailable presences.
	PresenceReceived = EventType("presence_received")

	// PresenceSent event is posted after an own presence update is
	// written to the stream.
	PresenceSent = EventType("presence_sent")

	// RosterReceived event is posted when a roster result or push has
	// been processed.
	RosterReceived = EventType("roster_received")

	// RosterItemAdded event is posted when a roster push introduces a
	// previously unknown item.
	RosterItemAdded = EventType("roster_item_added")

	// RosterItemUpdated event is posted when a roster push modifies an
	// already known item.
	RosterItemUpdated = EventType("roster_item_updated")

	// RosterItemRemoved event is posted when a roster push removes an
	// item.
	RosterItemRemoved = EventType("roster_item_removed")

	// SubscriptionRequest event is posted when a contact asks for
	// presence subscription.
	SubscriptionRequest = EventType("subscription_request")

	// SubscriptionApproved event is posted when a contact approves a
	// subscription request.
	SubscriptionApproved = EventType("subscription_approved")

	// SubscriptionDeclined event is posted when a contact declines or
	// revokes a subscription.
	SubscriptionDeclined = EventType("subscription_declined")

	// MucJoined event is posted after a room join presence is sent.
	MucJoined = EventType("muc_joined")

	// MucLeft event is posted after a room leave presence is sent.
	MucLeft = EventType("muc_left")

	// MucMessageReceived event is posted for room messages.
	MucMessageReceived = EventType("muc_message_received")

	// MucSubjectChanged event is posted when a room subject changes.
	MucSubjectChanged = EventType("muc_subject_changed")

	// MucUserJoined event is posted when an occupant enters a room.
	MucUserJoined = EventType("muc_user_joined")

	// MucUserLeft event is posted when an occupant leaves a room.
	MucUserLeft = EventType("muc_user_left")

	// FileTransferRequest event is posted when a peer offers a file.
	FileTransferRequest = EventType("file_transfer_request")

	// FileTransferStarted event is posted when a transfer begins.
	FileTransferStarted = EventType("file_transfer_started")

	// FileTransferProgress event is posted while a transfer advances.
	FileTransferProgress = EventType("file_transfer_progress")

	// FileTransferCompleted event is posted when a transfer finishes.
	FileTransferCompleted = EventType("file_transfer_completed")

	// FileTransferError event is posted when a transfer fails.
	FileTransferError = EventType("file_transfer_error")

	// StreamError event is posted when the server closes the stream
	// with a stream level error.
	StreamError = EventType("stream_error")

	// DiscoInfoReceived event is posted when a service discovery
	// information result arrives.
	DiscoInfoReceived = EventType("disco_info_received")

	// DiscoItemsReceived event is posted when a service discovery
	// items result arrives.
	DiscoItemsReceived = EventType("disco_items_received")
)

// ChatState represents a chat state notification.
type ChatState string

const (
	// ChatStateNone indicates no chat state notification.
	ChatStateNone = ChatState("")

	// ChatStateActive indicates active participation in the conversation.
	ChatStateActive = ChatState("active")

	// ChatStateComposing indicates the peer is composing a message.
	ChatStateComposing = ChatState("composing")

	// ChatStatePaused indicates the peer paused composing.
	ChatStatePaused = ChatState("paused")

	// ChatStateInactive indicates the peer is not participating.
	ChatStateInactive = ChatState("inactive")

	// ChatStateGone indicates the peer left the conversation.
	ChatStateGone = ChatState("gone")
)

// Event represents a client event notification along with its
// associated payload.
type Event struct {
	Type EventType
	Info interface{}
}

// ConnectedEventInfo contains the bound full address of a connection.
type ConnectedEventInfo struct {
	JID *jid.JID
}

// DisconnectedEventInfo contains the reason why a stream terminated.
type DisconnectedEventInfo struct {
	Reason string
}

// ErrorEventInfo contains an error description.
type ErrorEventInfo struct {
	Error string
}

// MessageEventInfo contains the details of an inbound or outbound
// message.
type MessageEventInfo struct {
	From      *jid.JID
	To        *jid.JID
	Body      string
	StanzaID  string
	Timestamp time.Time
}

// ReceiptEventInfo contains the stanza identifier a delivery receipt
// or displayed marker refers to.
type ReceiptEventInfo struct {
	From     *jid.JID
	StanzaID string
}

// ChatStateEventInfo contains a peer chat state notification.
type ChatStateEventInfo struct {
	From  *jid.JID
	State ChatState
}

// PresenceEventInfo contains the details of a presence update.
type PresenceEventInfo struct {
	From     *jid.JID
	Show     string
	Status   string
	Priority int8
}

// RosterEventInfo contains the items of a processed roster result or
// push.
type RosterEventInfo struct {
	Items []rostermodel.Item
}

// RosterItemEventInfo contains a single roster item update.
type RosterItemEventInfo struct {
	Item *rostermodel.Item
}

// SubscriptionEventInfo contains the peer address of a subscription
// state change.
type SubscriptionEventInfo struct {
	JID *jid.JID
}

// MucEventInfo contains room occupancy details.
type MucEventInfo struct {
	Room     *jid.JID
	Nickname string
}

// MucMessageEventInfo contains the details of a room message.
type MucMessageEventInfo struct {
	Room      *jid.JID
	Nickname  string
	Body      string
	Timestamp time.Time
}

// MucSubjectEventInfo contains a room subject change.
type MucSubjectEventInfo struct {
	Room    *jid.JID
	Subject string
}

// FileTransferEventInfo contains the details of a file transfer.
type FileTransferEventInfo struct {
	Peer     *jid.JID
	FileName string
	Size     int64
	Error    string
}

// eventChannelBufferSize is the per subscriber buffer size. Events are
// dropped when a subscriber falls this far behind.
const eventChannelBufferSize = 256

type eventHub struct {
	mu   sync.RWMutex
	subs []chan Event
}

func (h *eventHub) subscribe() <-chan Event {
	ch := make(chan Event, eventChannelBufferSize)
	h.mu.Lock()
	h.subs = append(h.subs, ch)
	h.mu.Unlock()
	return ch
}

func (h *eventHub) unsubscribe(sub <-chan Event) {
	h.mu.Lock()
	for i, ch := range h.subs {
		if ch == sub {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			close(ch)
			break
		}
	}
	h.mu.Unlock()
}

func (h *eventHub) post(ev Event) {
	h.mu.RLock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			log.Warnf("subscriber channel full: dropping %s event", ev.Type)
		}
	}
	h.mu.RUnlock()
}

func (h *eventHub) close() {
	h.mu.Lock()
	for _, ch := range h.subs {
		close(ch)
	}
	h.subs = nil
	h.mu.Unlock()
}
