/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"strconv"
)

// StanzaError represents a stanza "error" element.
type StanzaError struct {
	code      int
	errorType string
	reason    string
}

func newStanzaError(code int, errorType string, reason string) *StanzaError {
	return &StanzaError{
		code:      code,
		errorType: errorType,
		reason:    reason,
	}
}

// Error satisfies error interface.
func (se *StanzaError) Error() string {
	return se.reason
}

// Element returns StanzaError equivalent XML element.
func (se *StanzaError) Element() *Element {
	err := &Element{}
	err.SetName("error")
	err.SetAttribute("code", strconv.Itoa(se.code))
	err.SetAttribute("type", se.errorType)
	err.AppendElement(NewElementNamespace(se.reason, "urn:ietf:params:xml:ns:xmpp-stanzas"))
	return err
}

const (
	authErrorType   = "auth"
	cancelErrorType = "cancel"
	modifyErrorType = "modify"
	waitErrorType   = "wait"
)

var (
	// ErrBadRequest is returned by the stream when the sender
	// has sent XML that is malformed or that cannot be processed.
	ErrBadRequest = newStanzaError(400, modifyErrorType, "bad-request")

	// ErrFeatureNotImplemented is returned by the stream when the feature
	// requested is not implemented by the recipient and therefore cannot be processed.
	ErrFeatureNotImplemented = newStanzaError(501, cancelErrorType, "feature-not-implemented")

	// ErrForbidden is returned by the stream when the requesting
	// entity does not possess the required permissions to perform the action.
	ErrForbidden = newStanzaError(403, authErrorType, "forbidden")

	// ErrItemNotFound is returned by the stream when the addressed
	// JID or item requested cannot be found.
	ErrItemNotFound = newStanzaError(404, cancelErrorType, "item-not-found")

	// ErrJidMalformed is returned by the stream when the sending entity
	// has provided an XMPP address that does not adhere to the
	// syntax defined in RFC 7622.
	ErrJidMalformed = newStanzaError(400, modifyErrorType, "jid-malformed")

	// ErrServiceUnavailable is returned by the stream when the recipient
	// does not provide the requested service.
	ErrServiceUnavailable = newStanzaError(503, cancelErrorType, "service-unavailable")

	// ErrRemoteServerTimeout is returned by the stream when a remote
	// server could not be contacted within a reasonable amount of time.
	ErrRemoteServerTimeout = newStanzaError(504, waitErrorType, "remote-server-timeout")

	// ErrInternalServerError is returned by the stream when the recipient
	// could not process the stanza because of an internal error.
	ErrInternalServerError = newStanzaError(500, waitErrorType, "internal-server-error")
)

// NewErrorStanzaFromStanza returns the error counterpart of a received stanza.
func NewErrorStanzaFromStanza(stanza Stanza, stanzaErr *StanzaError) Stanza {
	e := &stanzaElement{}
	e.copyFrom(stanza)
	e.SetType(ErrorType)
	e.SetFromJID(stanza.ToJID())
	e.SetToJID(stanza.FromJID())
	e.AppendElement(stanzaErr.Element())
	return e
}
