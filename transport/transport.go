/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package transport

import (
	"crypto/tls"
	"crypto/x509"
	"io"

	"github.com/dialogo-im/dialogo/xmpp"
)

// Transport represents a stream transport mechanism.
type Transport interface {
	io.ReadWriteCloser

	// WriteString writes a raw string to the transport.
	WriteString(s string) error

	// WriteElement writes an XML element to the transport
	// serializing its closing tag when includeClosing is true.
	WriteElement(elem xmpp.XElement, includeClosing bool) error

	// StartTLS secures the transport using SSL/TLS.
	StartTLS(cfg *tls.Config)

	// PeerCertificates returns the certificate chain
	// presented by remote peer.
	PeerCertificates() []*x509.Certificate
}
