/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package client

import (
	"context"
	"time"

	"github.com/dialogo-im/dialogo/log"
)

// supervise re-establishes lost connections. It waits for a lost
// stream notification and retries until the connection succeeds or
// the maximum attempt count is exhausted. Streams closed by an
// explicit disconnect are never retried.
func (c *Client) supervise() {
	for {
		select {
		case <-c.lostCh:
			break
		case <-c.doneCh:
			return
		}
		c.reconnect()
	}
}

func (c *Client) reconnect() {
	for attempt := 1; attempt <= c.cfg.MaxReconnectAttempts; attempt++ {
		c.state.update(func(s *State) {
			s.Status = StatusReconnecting
		})
		log.Infof("reconnecting... attempt %d/%d", attempt, c.cfg.MaxReconnectAttempts)

		select {
		case <-time.After(c.cfg.ReconnectDelay):
			break
		case <-c.doneCh:
			return
		}
		err := c.Connect(context.Background())
		switch err {
		case nil, ErrAlreadyConnected:
			return
		case ErrClientClosed:
			return
		default:
			log.Warnf("reconnection failed: %v", err)
		}
	}
	log.Errorf("giving up reconnection after %d attempts", c.cfg.MaxReconnectAttempts)
	c.state.update(func(s *State) {
		s.Status = StatusDisconnected
	})
}
