/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package session

import (
	"crypto/tls"
	"encoding/base64"

	"github.com/dialogo-im/dialogo/xmpp"
	"github.com/dialogo-im/dialogo/xmpp/jid"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"mellium.im/sasl"
)

// ErrNoSupportedMechanism is returned by Negotiate when the receiving
// entity does not advertise any authentication mechanism the session
// is able to perform.
var ErrNoSupportedMechanism = errors.New("session: no supported SASL mechanism found")

// AuthenticationError is returned by Negotiate when the receiving
// entity rejects the SASL exchange.
type AuthenticationError struct {
	Reason string
}

// Error satisfies error interface.
func (e *AuthenticationError) Error() string {
	return "session: authentication failed: " + e.Reason
}

// Negotiate drives stream negotiation until the session has been
// secured, authenticated and a resource has been bound, returning
// the full JID assigned by the receiving entity.
// A nil TLS configuration disables STARTTLS negotiation.
func (s *Session) Negotiate(tlsCfg *tls.Config) (*jid.JID, error) {
	if err := s.Open(); err != nil {
		return nil, err
	}
	features, err := s.receiveElement()
	if err != nil {
		return nil, err
	}
	if startTLS := features.Elements().ChildNamespace("starttls", tlsNamespace); startTLS != nil && tlsCfg != nil {
		features, err = s.secure(tlsCfg)
		if err != nil {
			return nil, err
		}
	}
	features, err = s.authenticate(features)
	if err != nil {
		return nil, err
	}
	if features.Elements().ChildNamespace("bind", bindNamespace) == nil {
		return nil, errors.New("session: resource binding not offered")
	}
	return s.bindResource()
}

func (s *Session) secure(tlsCfg *tls.Config) (xmpp.XElement, error) {
	if err := s.Send(xmpp.NewElementNamespace("starttls", tlsNamespace)); err != nil {
		return nil, err
	}
	elem, err := s.receiveElement()
	if err != nil {
		return nil, err
	}
	if elem.Name() != "proceed" || elem.Namespace() != tlsNamespace {
		return nil, errors.Errorf("session: unexpected STARTTLS response: %s", elem.Name())
	}
	s.tr.StartTLS(tlsCfg)

	return s.restartStream()
}

func (s *Session) authenticate(features xmpp.XElement) (xmpp.XElement, error) {
	mechanisms := features.Elements().ChildNamespace("mechanisms", saslNamespace)
	if mechanisms == nil {
		return nil, ErrNoSupportedMechanism
	}
	var offered []string
	for _, m := range mechanisms.Elements().Children("mechanism") {
		offered = append(offered, m.Text())
	}
	mechanism, err := selectMechanism(offered)
	if err != nil {
		return nil, err
	}
	client := sasl.NewClient(mechanism,
		sasl.Credentials(func() ([]byte, []byte, []byte) {
			return []byte(s.JID().Node()), []byte(s.password), nil
		}),
		sasl.RemoteMechanisms(offered...),
	)
	more, resp, err := client.Step(nil)
	if err != nil {
		return nil, err
	}
	auth := xmpp.NewElementNamespace("auth", saslNamespace)
	auth.SetAttribute("mechanism", mechanism.Name)
	auth.SetText(encodeResponse(resp))
	if err := s.Send(auth); err != nil {
		return nil, err
	}
	for {
		elem, err := s.receiveElement()
		if err != nil {
			return nil, err
		}
		if elem.Namespace() != saslNamespace {
			return nil, errors.Errorf("session: unexpected element during authentication: %s", elem.Name())
		}
		switch elem.Name() {
		case "challenge":
			challenge, err := base64.StdEncoding.DecodeString(elem.Text())
			if err != nil {
				return nil, err
			}
			more, resp, err = client.Step(challenge)
			if err != nil {
				return nil, err
			}
			response := xmpp.NewElementNamespace("response", saslNamespace)
			response.SetText(encodeResponse(resp))
			if err := s.Send(response); err != nil {
				return nil, err
			}

		case "success":
			if more {
				// verify the server final message
				data, err := base64.StdEncoding.DecodeString(elem.Text())
				if err != nil {
					return nil, err
				}
				if _, _, err := client.Step(data); err != nil {
					return nil, err
				}
			}
			return s.restartStream()

		case "failure":
			return nil, &AuthenticationError{Reason: failureReason(elem)}

		default:
			return nil, errors.Errorf("session: unexpected element during authentication: %s", elem.Name())
		}
	}
}

func (s *Session) bindResource() (*jid.JID, error) {
	iq := xmpp.NewIQType(uuid.New(), xmpp.SetType)
	bind := xmpp.NewElementNamespace("bind", bindNamespace)
	bind.AppendElement(xmpp.NewElementName("resource").SetText(s.JID().Resource()))
	iq.AppendElement(bind)

	if err := s.Send(iq); err != nil {
		return nil, err
	}
	elem, err := s.receiveElement()
	if err != nil {
		return nil, err
	}
	if elem.Name() != "iq" || elem.Type() != xmpp.ResultType {
		return nil, errors.Errorf("session: resource binding failed: %v", elem)
	}
	boundElem := elem.Elements().ChildNamespace("bind", bindNamespace)
	if boundElem == nil || boundElem.Elements().Child("jid") == nil {
		return nil, errors.New("session: malformed resource binding result")
	}
	boundJID, err := jid.NewWithString(boundElem.Elements().Child("jid").Text(), false)
	if err != nil {
		return nil, err
	}
	s.SetJID(boundJID)
	return boundJID, nil
}

// restartStream reopens the stream over the current transport
// and returns newly advertised stream features.
func (s *Session) restartStream() (xmpp.XElement, error) {
	s.restart()
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s.receiveElement()
}

func (s *Session) receiveElement() (xmpp.XElement, error) {
	for {
		elem, sErr := s.Receive()
		if sErr != nil {
			if sErr.UnderlyingErr != nil {
				return nil, sErr.UnderlyingErr
			}
			return nil, errors.New("session: stream closed")
		}
		if elem == nil || elem.Name() == "stream:stream" {
			continue
		}
		return elem, nil
	}
}

func selectMechanism(offered []string) (sasl.Mechanism, error) {
	preferred := []sasl.Mechanism{sasl.ScramSha256, sasl.ScramSha1, sasl.Plain}
	for _, m := range preferred {
		for _, name := range offered {
			if name == m.Name {
				return m, nil
			}
		}
	}
	return sasl.Mechanism{}, ErrNoSupportedMechanism
}

func encodeResponse(resp []byte) string {
	// a zero-length response is transmitted as a single
	// equals sign character
	if len(resp) == 0 {
		return "="
	}
	return base64.StdEncoding.EncodeToString(resp)
}

func failureReason(elem xmpp.XElement) string {
	if children := elem.Elements().All(); len(children) > 0 {
		return children[0].Name()
	}
	return "unknown"
}
