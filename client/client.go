/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dialogo-im/dialogo/log"
	"github.com/dialogo-im/dialogo/model"
	"github.com/dialogo-im/dialogo/model/rostermodel"
	"github.com/dialogo-im/dialogo/session"
	"github.com/dialogo-im/dialogo/storage/repository"
	"github.com/dialogo-im/dialogo/transport"
	"github.com/dialogo-im/dialogo/xmpp"
	"github.com/dialogo-im/dialogo/xmpp/jid"
	"github.com/google/uuid"
)

const (
	chatStatesNamespace  = "http://jabber.org/protocol/chatstates"
	rosterNamespace      = "jabber:iq:roster"
	mucNamespace         = "http://jabber.org/protocol/muc"
	mucUserNamespace     = "http://jabber.org/protocol/muc#user"
	pingNamespace        = "urn:ietf:params:xml:ns:xmpp-ping"
	versionNamespace     = "jabber:iq:version"
	receiptsNamespace    = "urn:xmpp:receipts"
	chatMarkersNamespace = "urn:xmpp:chat-markers:0"
)

// xmppStream represents a negotiable XMPP stream.
type xmppStream interface {
	Negotiate(tlsCfg *tls.Config) (*jid.JID, error)
	Send(elem xmpp.XElement) error
	Receive() (xmpp.XElement, *session.Error)
	Close() error
}

type dialFunc func(cfg *Config) (transport.Transport, error)

type streamFunc func(cfg *session.Config) xmppStream

// Client represents an XMPP client connection manager. Operations are
// processed sequentially by a single goroutine, in submission order.
type Client struct {
	cfg  *Config
	repo repository.Container
	hub  *eventHub

	cmdCh  chan *command
	doneCh chan struct{}
	lostCh chan struct{}

	state *stateHolder

	dial      dialFunc
	newStream streamFunc

	closeOnce sync.Once
	closing   uint32

	// fields below are owned by the command loop goroutine
	tr          transport.Transport
	sess        xmppStream
	jid         *jid.JID
	inboundDone chan struct{}
	rooms       map[string]string
}

// New returns a new client associated to an account configuration,
// archiving messages, roster and presences to repo.
func New(cfg *Config, repo repository.Container) *Client {
	c := &Client{
		cfg:    cfg,
		repo:   repo,
		hub:    &eventHub{},
		cmdCh:  make(chan *command, commandQueueSize),
		doneCh: make(chan struct{}),
		lostCh: make(chan struct{}, 1),
		state:  newStateHolder(),
		rooms:  make(map[string]string),
	}
	c.dial = dialSocket
	c.newStream = func(sessCfg *session.Config) xmppStream {
		return session.New(sessCfg)
	}
	go c.loop()
	if cfg.AutoReconnect {
		go c.supervise()
	}
	return c
}

// State returns the current client state snapshot.
func (c *Client) State() *State {
	return c.state.get()
}

// SubscribeEvents registers a new event subscriber channel.
func (c *Client) SubscribeEvents() <-chan Event {
	return c.hub.subscribe()
}

// UnsubscribeEvents unregisters a previously subscribed channel.
func (c *Client) UnsubscribeEvents(ch <-chan Event) {
	c.hub.unsubscribe(ch)
}

// Connect establishes a connection to the configured server, secures
// and authenticates the stream and binds the account resource.
func (c *Client) Connect(ctx context.Context) error {
	return c.submit(ctx, &command{typ: cmdConnect})
}

// Disconnect closes the active connection, waiting until the inbound
// stream has fully terminated before returning.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.submit(ctx, &command{typ: cmdDisconnect})
}

// SendMessage sends a chat message along with an optional chat state
// notification, archiving it to the message repository.
func (c *Client) SendMessage(ctx context.Context, to *jid.JID, body string, chatState ChatState) error {
	return c.submit(ctx, &command{typ: cmdSendMessage, to: to, body: body, chatState: chatState})
}

// SendPresence broadcasts an own presence update.
func (c *Client) SendPresence(ctx context.Context, show, status string) error {
	return c.submit(ctx, &command{typ: cmdSendPresence, show: show, status: status})
}

// RequestRoster asks the server for the account roster. Items are
// notified asynchronously through a RosterReceived event.
func (c *Client) RequestRoster(ctx context.Context) error {
	return c.submit(ctx, &command{typ: cmdGetRoster})
}

// AddRosterItem adds or updates a contact in the account roster.
func (c *Client) AddRosterItem(ctx context.Context, contact *jid.JID, name string, groups []string) error {
	return c.submit(ctx, &command{typ: cmdAddRosterItem, to: contact, name: name, groups: groups})
}

// RemoveRosterItem removes a contact from the account roster.
func (c *Client) RemoveRosterItem(ctx context.Context, contact *jid.JID) error {
	return c.submit(ctx, &command{typ: cmdRemoveRosterItem, to: contact})
}

// ApproveSubscription accepts a contact presence subscription request.
func (c *Client) ApproveSubscription(ctx context.Context, contact *jid.JID) error {
	return c.submit(ctx, &command{typ: cmdApproveSubscription, to: contact})
}

// DeclineSubscription rejects or revokes a contact presence
// subscription.
func (c *Client) DeclineSubscription(ctx context.Context, contact *jid.JID) error {
	return c.submit(ctx, &command{typ: cmdDeclineSubscription, to: contact})
}

// JoinRoom enters a multi-user chat room under a given nickname.
func (c *Client) JoinRoom(ctx context.Context, room *jid.JID, nickname, password string) error {
	return c.submit(ctx, &command{typ: cmdJoinRoom, to: room, nickname: nickname, password: password})
}

// LeaveRoom exits a previously joined multi-user chat room.
func (c *Client) LeaveRoom(ctx context.Context, room *jid.JID) error {
	return c.submit(ctx, &command{typ: cmdLeaveRoom, to: room})
}

// SendRoomMessage sends a group chat message to a joined room.
func (c *Client) SendRoomMessage(ctx context.Context, room *jid.JID, body string) error {
	return c.submit(ctx, &command{typ: cmdSendRoomMessage, to: room, body: body})
}

// SendFile offers a file to a contact.
func (c *Client) SendFile(ctx context.Context, to *jid.JID, filePath string) error {
	return c.submit(ctx, &command{typ: cmdSendFile, to: to, filePath: filePath})
}

// History retrieves the archived conversation between the account and
// a contact, newest first.
func (c *Client) History(ctx context.Context, contactJID string, limit, offset int) ([]model.ChatMessage, error) {
	return c.repo.Messages().FetchChatHistory(ctx, c.cfg.JID.ToBareJID().String(), contactJID, limit, offset)
}

// Shutdown disconnects the client and stops processing operations.
// Pending operations fail with ErrClientClosed.
func (c *Client) Shutdown(ctx context.Context) error {
	if err := c.Disconnect(ctx); err != nil && err != ErrNotConnected {
		log.Warnf("client: %v", err)
	}
	c.closeOnce.Do(func() {
		close(c.doneCh)
		c.hub.close()
	})
	return nil
}

func (c *Client) loop() {
	for {
		select {
		case cmd := <-c.cmdCh:
			cmd.result <- c.processCommand(cmd)
		case <-c.doneCh:
			return
		}
	}
}

func (c *Client) processCommand(cmd *command) error {
	switch cmd.typ {
	case cmdConnect:
		return c.connect()
	case cmdDisconnect:
		return c.disconnect()
	case cmdSendMessage:
		return c.sendMessage(cmd.to, cmd.body, cmd.chatState)
	case cmdSendPresence:
		return c.sendPresence(cmd.show, cmd.status)
	case cmdGetRoster:
		return c.requestRoster()
	case cmdAddRosterItem:
		return c.addRosterItem(cmd.to, cmd.name, cmd.groups)
	case cmdRemoveRosterItem:
		return c.removeRosterItem(cmd.to)
	case cmdApproveSubscription:
		return c.sendSubscriptionPresence(cmd.to, xmpp.SubscribedType, SubscriptionApproved)
	case cmdDeclineSubscription:
		return c.sendSubscriptionPresence(cmd.to, xmpp.UnsubscribedType, SubscriptionDeclined)
	case cmdJoinRoom:
		return c.joinRoom(cmd.to, cmd.nickname, cmd.password)
	case cmdLeaveRoom:
		return c.leaveRoom(cmd.to)
	case cmdSendRoomMessage:
		return c.sendRoomMessage(cmd.to, cmd.body)
	case cmdSendFile:
		return c.sendFile(cmd.to, cmd.filePath)
	}
	return nil
}

func (c *Client) connect() error {
	switch c.state.get().Status {
	case StatusConnecting, StatusConnected:
		return ErrAlreadyConnected
	}
	c.state.update(func(s *State) {
		s.Status = StatusConnecting
		s.LastError = ""
	})
	c.hub.post(Event{Type: Connecting})

	tr, err := c.dial(c.cfg)
	if err != nil {
		c.failConnect(ConnectionError, err)
		return err
	}
	sess := c.newStream(&session.Config{
		JID:           c.cfg.JID,
		Password:      c.cfg.Password,
		Transport:     tr,
		MaxStanzaSize: c.cfg.MaxStanzaSize,
	})
	boundJID, err := sess.Negotiate(c.tlsConfig())
	if err != nil {
		_ = tr.Close()
		var authErr *session.AuthenticationError
		if errors.As(err, &authErr) {
			c.failConnect(AuthenticationError, err)
		} else {
			c.failConnect(ConnectionError, err)
		}
		return err
	}
	c.tr = tr
	c.sess = sess
	c.jid = boundJID
	c.inboundDone = make(chan struct{})
	c.rooms = make(map[string]string)

	if err := c.repo.Accounts().UpsertAccount(context.Background(), &model.Account{
		JID:  c.cfg.JID.ToBareJID().String(),
		Name: c.cfg.JID.Node(),
	}); err != nil {
		log.Errorf("failed to store account: %v", err)
	}

	// announce initial availability
	if err := sess.Send(xmpp.NewElementName("presence")); err != nil {
		log.Warnf("client: %v", err)
	}
	c.state.update(func(s *State) {
		s.Status = StatusConnected
		s.Authenticated = true
		s.ConnectedAt = time.Now()
	})
	c.hub.post(Event{Type: Connected, Info: &ConnectedEventInfo{JID: boundJID}})
	c.hub.post(Event{Type: AuthenticationSuccess})

	go c.readLoop(sess, c.inboundDone)

	log.Infof("connected as %s", boundJID)
	return nil
}

func (c *Client) disconnect() error {
	if c.state.get().Status != StatusConnected {
		return ErrNotConnected
	}
	atomic.StoreUint32(&c.closing, 1)
	defer atomic.StoreUint32(&c.closing, 0)

	unavailable := xmpp.NewElementName("presence")
	unavailable.SetType(xmpp.UnavailableType)
	if err := c.sess.Send(unavailable); err != nil {
		log.Warnf("client: %v", err)
	}
	_ = c.sess.Close()
	_ = c.tr.Close()

	<-c.inboundDone

	c.tr = nil
	c.sess = nil
	c.jid = nil
	c.inboundDone = nil
	return nil
}

func (c *Client) requireConnected() error {
	if c.state.get().Status != StatusConnected {
		return ErrNotConnected
	}
	return nil
}

func (c *Client) sendMessage(to *jid.JID, body string, chatState ChatState) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	msgID := generateMessageID()
	m := xmpp.NewMessageType(msgID, xmpp.ChatType)
	m.SetFromJID(c.jid)
	m.SetToJID(to)
	if len(body) > 0 {
		m.AppendElement(xmpp.NewElementName("body").SetText(body))
	}
	if chatState != ChatStateNone {
		m.AppendElement(xmpp.NewElementNamespace(string(chatState), chatStatesNamespace))
	}
	if err := c.sess.Send(m); err != nil {
		return err
	}
	now := time.Now()
	c.archiveMessage(&model.ChatMessage{
		FromJID:   c.jid.ToBareJID().String(),
		ToJID:     to.ToBareJID().String(),
		Body:      body,
		Type:      xmpp.ChatType,
		StanzaID:  msgID,
		CreatedAt: now,
	})
	c.hub.post(Event{Type: MessageSent, Info: &MessageEventInfo{
		From:      c.jid,
		To:        to,
		Body:      body,
		StanzaID:  msgID,
		Timestamp: now,
	}})
	return nil
}

func (c *Client) sendPresence(show, status string) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	p := xmpp.NewElementName("presence")
	if len(show) > 0 && show != "online" {
		p.AppendElement(xmpp.NewElementName("show").SetText(show))
	}
	if len(status) > 0 {
		p.AppendElement(xmpp.NewElementName("status").SetText(status))
	}
	if err := c.sess.Send(p); err != nil {
		return err
	}
	c.hub.post(Event{Type: PresenceSent, Info: &PresenceEventInfo{
		From:   c.jid,
		Show:   show,
		Status: status,
	}})
	return nil
}

func (c *Client) requestRoster() error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	iq := xmpp.NewIQType(generateIQID(), xmpp.GetType)
	iq.SetFromJID(c.jid)
	iq.AppendElement(xmpp.NewElementNamespace("query", rosterNamespace))
	return c.sess.Send(iq)
}

func (c *Client) addRosterItem(contact *jid.JID, name string, groups []string) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	item := xmpp.NewElementName("item")
	item.SetAttribute("jid", contact.ToBareJID().String())
	if len(name) > 0 {
		item.SetAttribute("name", name)
	}
	for _, group := range groups {
		item.AppendElement(xmpp.NewElementName("group").SetText(group))
	}
	query := xmpp.NewElementNamespace("query", rosterNamespace)
	query.AppendElement(item)

	iq := xmpp.NewIQType(generateIQID(), xmpp.SetType)
	iq.SetFromJID(c.jid)
	iq.AppendElement(query)
	if err := c.sess.Send(iq); err != nil {
		return err
	}
	return c.repo.Roster().UpsertRosterItem(context.Background(), &rostermodel.Item{
		Username:     c.cfg.JID.Node(),
		JID:          contact.ToBareJID().String(),
		Name:         name,
		Subscription: rostermodel.SubscriptionNone,
		Groups:       groups,
	})
}

func (c *Client) removeRosterItem(contact *jid.JID) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	item := xmpp.NewElementName("item")
	item.SetAttribute("jid", contact.ToBareJID().String())
	item.SetAttribute("subscription", "remove")
	query := xmpp.NewElementNamespace("query", rosterNamespace)
	query.AppendElement(item)

	iq := xmpp.NewIQType(generateIQID(), xmpp.SetType)
	iq.SetFromJID(c.jid)
	iq.AppendElement(query)
	if err := c.sess.Send(iq); err != nil {
		return err
	}
	return c.repo.Roster().DeleteRosterItem(context.Background(), c.cfg.JID.Node(), contact.ToBareJID().String())
}

func (c *Client) sendSubscriptionPresence(contact *jid.JID, presenceType string, evType EventType) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	p := xmpp.NewPresence(c.jid, contact.ToBareJID(), presenceType)
	if err := c.sess.Send(p); err != nil {
		return err
	}
	c.hub.post(Event{Type: evType, Info: &SubscriptionEventInfo{JID: contact.ToBareJID()}})
	return nil
}

func (c *Client) joinRoom(room *jid.JID, nickname, password string) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	occupantJID, err := jid.New(room.Node(), room.Domain(), nickname, false)
	if err != nil {
		return err
	}
	p := xmpp.NewPresence(c.jid, occupantJID, xmpp.AvailableType)
	x := xmpp.NewElementNamespace("x", mucNamespace)
	if len(password) > 0 {
		x.AppendElement(xmpp.NewElementName("password").SetText(password))
	}
	p.AppendElement(x)
	if err := c.sess.Send(p); err != nil {
		return err
	}
	c.rooms[room.ToBareJID().String()] = nickname
	c.hub.post(Event{Type: MucJoined, Info: &MucEventInfo{Room: room.ToBareJID(), Nickname: nickname}})
	return nil
}

func (c *Client) leaveRoom(room *jid.JID) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	roomJID := room.ToBareJID()
	to := roomJID
	if nickname, ok := c.rooms[roomJID.String()]; ok {
		occupantJID, err := jid.New(room.Node(), room.Domain(), nickname, false)
		if err == nil {
			to = occupantJID
		}
	}
	p := xmpp.NewPresence(c.jid, to, xmpp.UnavailableType)
	if err := c.sess.Send(p); err != nil {
		return err
	}
	delete(c.rooms, roomJID.String())
	c.hub.post(Event{Type: MucLeft, Info: &MucEventInfo{Room: roomJID}})
	return nil
}

func (c *Client) sendRoomMessage(room *jid.JID, body string) error {
	if err := c.requireConnected(); err != nil {
		return err
	}
	m := xmpp.NewMessageType(generateMessageID(), xmpp.GroupChatType)
	m.SetFromJID(c.jid)
	m.SetToJID(room.ToBareJID())
	m.AppendElement(xmpp.NewElementName("body").SetText(body))
	if err := c.sess.Send(m); err != nil {
		return err
	}
	c.hub.post(Event{Type: MucMessageReceived, Info: &MucMessageEventInfo{
		Room:      room.ToBareJID(),
		Nickname:  "me",
		Body:      body,
		Timestamp: time.Now(),
	}})
	return nil
}

func (c *Client) sendFile(to *jid.JID, filePath string) error {
	c.hub.post(Event{Type: FileTransferError, Info: &FileTransferEventInfo{
		Peer:     to,
		FileName: filePath,
		Error:    "File transfer not yet implemented",
	}})
	return nil
}

func (c *Client) failConnect(evType EventType, err error) {
	c.state.update(func(s *State) {
		s.Status = StatusError
		s.LastError = err.Error()
	})
	c.hub.post(Event{Type: evType, Info: &ErrorEventInfo{Error: err.Error()}})

	// once the failure has been notified the client settles back to
	// disconnected, keeping LastError for inspection
	c.state.update(func(s *State) {
		s.Status = StatusDisconnected
	})
}

func (c *Client) tlsConfig() *tls.Config {
	if !c.cfg.UseTLS {
		return nil
	}
	return &tls.Config{
		ServerName:         c.cfg.JID.Domain(),
		InsecureSkipVerify: c.cfg.AcceptInvalidCerts,
	}
}

func (c *Client) archiveMessage(m *model.ChatMessage) {
	if _, err := c.repo.Messages().InsertMessage(context.Background(), m); err != nil {
		log.Errorf("failed to archive message: %v", err)
	}
}

func dialSocket(cfg *Config) (transport.Transport, error) {
	address := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
	return transport.Dial(address, cfg.ConnectTimeout, 0)
}

func generateMessageID() string {
	return "msg_" + uuid.New().String()
}

func generateIQID() string {
	return "iq_" + uuid.New().String()
}
