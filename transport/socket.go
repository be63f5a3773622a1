/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package transport

import (
	"bufio"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"time"

	"github.com/dialogo-im/dialogo/xmpp"
)

const socketBuffSize = 4096

type socketTransport struct {
	conn      net.Conn
	rw        io.ReadWriter
	br        *bufio.Reader
	bw        *bufio.Writer
	keepAlive time.Duration
	secured   bool
}

// Dial opens a socket class stream transport against a remote address.
func Dial(address string, timeout, keepAlive time.Duration) (Transport, error) {
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, err
	}
	return NewSocketTransport(conn, keepAlive), nil
}

// NewSocketTransport creates a socket class stream transport.
func NewSocketTransport(conn net.Conn, keepAlive time.Duration) Transport {
	s := &socketTransport{
		conn:      conn,
		rw:        conn,
		br:        bufio.NewReaderSize(conn, socketBuffSize),
		bw:        bufio.NewWriterSize(conn, socketBuffSize),
		keepAlive: keepAlive,
	}
	return s
}

func (s *socketTransport) Read(p []byte) (n int, err error) {
	if s.keepAlive > 0 {
		s.conn.SetReadDeadline(time.Now().Add(s.keepAlive))
	}
	return s.br.Read(p)
}

// ReadByte makes the transport usable as an io.ByteReader, so XML
// decoding does not buffer ahead of the element being parsed and no
// input is lost when the stream is restarted.
func (s *socketTransport) ReadByte() (byte, error) {
	if s.keepAlive > 0 {
		s.conn.SetReadDeadline(time.Now().Add(s.keepAlive))
	}
	return s.br.ReadByte()
}

func (s *socketTransport) Write(p []byte) (n int, err error) {
	n, err = s.bw.Write(p)
	if err != nil {
		return n, err
	}
	return n, s.bw.Flush()
}

func (s *socketTransport) Close() error {
	return s.conn.Close()
}

func (s *socketTransport) WriteString(str string) error {
	if _, err := io.WriteString(s.bw, str); err != nil {
		return err
	}
	return s.bw.Flush()
}

func (s *socketTransport) WriteElement(elem xmpp.XElement, includeClosing bool) error {
	elem.ToXML(s.bw, includeClosing)
	return s.bw.Flush()
}

func (s *socketTransport) StartTLS(cfg *tls.Config) {
	if !s.secured {
		s.conn = tls.Client(s.conn, cfg)
		s.rw = s.conn
		s.bw.Reset(s.rw)
		s.br.Reset(s.rw)
		s.secured = true
	}
}

func (s *socketTransport) PeerCertificates() []*x509.Certificate {
	if tlsConn, ok := s.conn.(*tls.Conn); ok {
		st := tlsConn.ConnectionState()
		return st.PeerCertificates
	}
	return nil
}
