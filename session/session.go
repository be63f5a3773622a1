/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package session

import (
	stdxml "encoding/xml"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dialogo-im/dialogo/log"
	"github.com/dialogo-im/dialogo/streamerror"
	"github.com/dialogo-im/dialogo/transport"
	"github.com/dialogo-im/dialogo/xmpp"
	"github.com/dialogo-im/dialogo/xmpp/jid"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
)

const (
	jabberClientNamespace = "jabber:client"
	streamNamespace       = "http://etherx.jabber.org/streams"
	tlsNamespace          = "urn:ietf:params:xml:ns:xmpp-tls"
	saslNamespace         = "urn:ietf:params:xml:ns:xmpp-sasl"
	bindNamespace         = "urn:ietf:params:xml:ns:xmpp-bind"
)

type namespaceSettable interface {
	SetNamespace(string) *xmpp.Element
}

// Error represents a session error.
type Error struct {
	// Element returns the original incoming element that generated
	// the session error.
	Element xmpp.XElement

	// UnderlyingErr is the underlying session error.
	UnderlyingErr error
}

// A Config structure is used to configure an XMPP session.
type Config struct {
	// JID defines the session account JID.
	JID *jid.JID

	// Password defines the account password used during
	// stream authentication.
	Password string

	// Transport provides the underlying session transport
	// that will be used to send and received elements.
	Transport transport.Transport

	// MaxStanzaSize defines the maximum stanza size that
	// can be read from the session transport.
	MaxStanzaSize int
}

// Session represents an initiating entity XMPP session.
type Session struct {
	id            string
	tr            transport.Transport
	password      string
	maxStanzaSize int
	opened        uint32
	started       uint32

	mu       sync.RWMutex
	pr       *xmpp.Parser
	streamID string
	sJID     *jid.JID

	wrMu sync.Mutex
}

// New creates a new session instance.
func New(config *Config) *Session {
	s := &Session{
		id:            uuid.New(),
		tr:            config.Transport,
		password:      config.Password,
		maxStanzaSize: config.MaxStanzaSize,
		pr:            xmpp.NewParser(config.Transport, xmpp.SocketStream, config.MaxStanzaSize),
		sJID:          config.JID,
	}
	return s
}

// StreamID returns the stream identifier assigned by the receiving entity.
func (s *Session) StreamID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streamID
}

// JID returns current session JID.
func (s *Session) JID() *jid.JID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sJID
}

// SetJID updates current session JID.
func (s *Session) SetJID(sessionJID *jid.JID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sJID = sessionJID
}

// Open initializes the session sending the proper XMPP payload.
func (s *Session) Open() error {
	if !atomic.CompareAndSwapUint32(&s.opened, 0, 1) {
		return errors.New("session already opened")
	}
	ops := xmpp.NewElementName("stream:stream")
	ops.SetAttribute("xmlns", jabberClientNamespace)
	ops.SetAttribute("xmlns:stream", streamNamespace)
	ops.SetAttribute("to", s.JID().Domain())
	ops.SetAttribute("version", "1.0")

	buf := &strings.Builder{}
	buf.WriteString(`<?xml version="1.0"?>`)
	ops.ToXML(buf, false)

	openStr := buf.String()
	log.Debugf("SEND(%s): %s", s.id, openStr)

	return s.tr.WriteString(openStr)
}

// Close closes session sending the proper XMPP payload.
// Is responsability of the caller to close underlying transport.
func (s *Session) Close() error {
	if atomic.LoadUint32(&s.opened) == 0 {
		return errors.New("session already closed")
	}
	log.Debugf("SEND(%s): </stream:stream>", s.id)
	return s.tr.WriteString("</stream:stream>")
}

// Send writes an XML element to the underlying session transport.
// It is safe to call Send from multiple goroutines.
func (s *Session) Send(elem xmpp.XElement) error {
	// clear namespace if sending a stanza
	if e, ok := elem.(namespaceSettable); elem.IsStanza() && ok {
		e.SetNamespace("")
	}
	log.Debugf("SEND(%s): %v", s.id, elem)
	s.wrMu.Lock()
	defer s.wrMu.Unlock()
	return s.tr.WriteElement(elem, true)
}

// Receive returns next incoming session element.
func (s *Session) Receive() (xmpp.XElement, *Error) {
	s.mu.RLock()
	pr := s.pr
	s.mu.RUnlock()

	elem, err := pr.ParseElement()
	if err != nil {
		return nil, s.mapErrorToSessionError(err)
	} else if elem != nil {
		log.Debugf("RECV(%s): %v", s.id, elem)

		if atomic.LoadUint32(&s.started) == 0 {
			if err := s.validateStreamElement(elem); err != nil {
				return nil, err
			}
			s.mu.Lock()
			s.streamID = elem.ID()
			s.mu.Unlock()
			atomic.StoreUint32(&s.started, 1)

		} else if elem.IsStanza() {
			stanza, err := s.buildStanza(elem)
			if err != nil {
				return nil, err
			}
			return stanza, nil
		}
	}
	return elem, nil
}

// restart resets the session stream state so a new stream
// header can be exchanged over the same transport.
func (s *Session) restart() {
	s.mu.Lock()
	s.pr = xmpp.NewParser(s.tr, xmpp.SocketStream, s.maxStanzaSize)
	s.mu.Unlock()
	atomic.StoreUint32(&s.opened, 0)
	atomic.StoreUint32(&s.started, 0)
}

func (s *Session) buildStanza(elem xmpp.XElement) (xmpp.Stanza, *Error) {
	if err := s.validateNamespace(elem); err != nil {
		return nil, err
	}
	// the receiving entity may omit stanza addresses
	if el, ok := elem.(*xmpp.Element); ok {
		if len(elem.From()) == 0 {
			el.SetFrom(s.JID().Domain())
		}
		if len(elem.To()) == 0 {
			el.SetTo(s.JID().String())
		}
	}
	stanza, err := xmpp.NewStanzaFromElement(elem)
	if err != nil {
		log.Error(err)
		return nil, &Error{Element: elem, UnderlyingErr: xmpp.ErrBadRequest}
	}
	return stanza, nil
}

func (s *Session) validateStreamElement(elem xmpp.XElement) *Error {
	if elem.Name() != "stream:stream" {
		return &Error{UnderlyingErr: streamerror.ErrUnsupportedStanzaType}
	}
	if elem.Namespace() != jabberClientNamespace || elem.Attributes().Get("xmlns:stream") != streamNamespace {
		return &Error{UnderlyingErr: streamerror.ErrInvalidNamespace}
	}
	if elem.Version() != "1.0" {
		return &Error{UnderlyingErr: streamerror.ErrUnsupportedVersion}
	}
	return nil
}

func (s *Session) validateNamespace(elem xmpp.XElement) *Error {
	ns := elem.Namespace()
	if len(ns) == 0 || ns == jabberClientNamespace {
		return nil
	}
	return &Error{UnderlyingErr: streamerror.ErrInvalidNamespace}
}

func (s *Session) mapErrorToSessionError(err error) *Error {
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
		break

	case xmpp.ErrStreamClosedByPeer:
		s.Close()

	case xmpp.ErrTooLargeStanza:
		return &Error{UnderlyingErr: streamerror.ErrPolicyViolation}

	default:
		switch e := err.(type) {
		case net.Error:
			if e.Timeout() {
				return &Error{UnderlyingErr: streamerror.ErrConnectionTimeout}
			}
			return &Error{UnderlyingErr: err}

		case *stdxml.SyntaxError:
			return &Error{UnderlyingErr: streamerror.ErrInvalidXML}

		default:
			return &Error{UnderlyingErr: err}
		}
	}
	return &Error{}
}
