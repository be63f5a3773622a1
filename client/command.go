/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package client

import (
	"context"

	"github.com/dialogo-im/dialogo/xmpp/jid"
)

// commandQueueSize is the maximum number of pending commands. Callers
// block once the queue fills up.
const commandQueueSize = 1000

type commandType int

const (
	cmdConnect commandType = iota
	cmdDisconnect
	cmdSendMessage
	cmdSendPresence
	cmdGetRoster
	cmdAddRosterItem
	cmdRemoveRosterItem
	cmdApproveSubscription
	cmdDeclineSubscription
	cmdJoinRoom
	cmdLeaveRoom
	cmdSendRoomMessage
	cmdSendFile
)

type command struct {
	typ       commandType
	to        *jid.JID
	body      string
	chatState ChatState
	show      string
	status    string
	name      string
	groups    []string
	nickname  string
	password  string
	filePath  string
	result    chan error
}

// submit enqueues cmd and blocks until it has been processed, the
// context is cancelled or the client shuts down.
func (c *Client) submit(ctx context.Context, cmd *command) error {
	cmd.result = make(chan error, 1)
	select {
	case c.cmdCh <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.doneCh:
		return ErrClientClosed
	}
	select {
	case err := <-cmd.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.doneCh:
		return ErrClientClosed
	}
}
