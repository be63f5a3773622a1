/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package client

import (
	"time"

	"github.com/dialogo-im/dialogo/xmpp/jid"
	"github.com/pkg/errors"
)

const (
	defaultResource             = "xmpp-client"
	defaultServerHost           = "localhost"
	defaultServerPort           = 5222
	defaultConnectTimeout       = time.Duration(10) * time.Second
	defaultMaxStanzaSize        = 131072
	defaultMaxReconnectAttempts = 5
	defaultReconnectDelay       = time.Duration(10) * time.Second
)

// Config represents an XMPP account configuration.
type Config struct {
	JID                  *jid.JID
	Password             string
	ServerHost           string
	ServerPort           int
	UseTLS               bool
	AcceptInvalidCerts   bool
	ConnectTimeout       time.Duration
	MaxStanzaSize        int
	AutoReconnect        bool
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
}

type configProxy struct {
	JID                  string        `yaml:"jid"`
	Password             string        `yaml:"password"`
	Resource             string        `yaml:"resource"`
	ServerHost           string        `yaml:"server_host"`
	ServerPort           int           `yaml:"server_port"`
	UseTLS               *bool         `yaml:"use_tls"`
	AcceptInvalidCerts   bool          `yaml:"accept_invalid_certs"`
	ConnectTimeout       time.Duration `yaml:"connect_timeout"`
	MaxStanzaSize        int           `yaml:"max_stanza_size"`
	AutoReconnect        *bool         `yaml:"auto_reconnect"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	ReconnectDelay       time.Duration `yaml:"reconnect_delay"`
}

// UnmarshalYAML satisfies Unmarshaler interface.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	p := configProxy{}
	if err := unmarshal(&p); err != nil {
		return err
	}
	if len(p.JID) == 0 {
		return errors.New("client.Config: jid value must be set")
	}
	accountJID, err := jid.NewWithString(p.JID, false)
	if err != nil {
		return err
	}
	if accountJID.IsFull() {
		return errors.New("client.Config: jid value must not include a resource")
	}
	resource := p.Resource
	if len(resource) == 0 {
		resource = defaultResource
	}
	c.JID, err = jid.New(accountJID.Node(), accountJID.Domain(), resource, false)
	if err != nil {
		return err
	}
	if len(p.Password) == 0 {
		return errors.New("client.Config: password value must be set")
	}
	c.Password = p.Password

	c.ServerHost = p.ServerHost
	if len(c.ServerHost) == 0 {
		c.ServerHost = defaultServerHost
	}
	c.ServerPort = p.ServerPort
	if c.ServerPort == 0 {
		c.ServerPort = defaultServerPort
	}
	c.UseTLS = p.UseTLS == nil || *p.UseTLS
	c.AcceptInvalidCerts = p.AcceptInvalidCerts

	c.ConnectTimeout = p.ConnectTimeout
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	c.MaxStanzaSize = p.MaxStanzaSize
	if c.MaxStanzaSize == 0 {
		c.MaxStanzaSize = defaultMaxStanzaSize
	}
	c.AutoReconnect = p.AutoReconnect == nil || *p.AutoReconnect
	c.MaxReconnectAttempts = p.MaxReconnectAttempts
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = defaultMaxReconnectAttempts
	}
	c.ReconnectDelay = p.ReconnectDelay
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = defaultReconnectDelay
	}
	return nil
}
