/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package client

import (
	"sync/atomic"
	"time"

	"github.com/dialogo-im/dialogo/model/rostermodel"
)

// ConnectionStatus represents the client connection status.
type ConnectionStatus int

const (
	// StatusDisconnected represents a disconnected client.
	StatusDisconnected ConnectionStatus = iota

	// StatusConnecting represents a client performing stream
	// negotiation.
	StatusConnecting

	// StatusConnected represents an authenticated client with a bound
	// resource.
	StatusConnected

	// StatusReconnecting represents a client waiting to retry a lost
	// connection.
	StatusReconnecting

	// StatusError represents a client whose connection attempt just
	// failed. The status settles back to StatusDisconnected once the
	// failure has been notified.
	StatusError
)

// String returns ConnectionStatus string representation.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusError:
		return "error"
	}
	return "disconnected"
}

// State represents an immutable snapshot of the client state.
type State struct {
	Status        ConnectionStatus
	LastError     string
	Authenticated bool
	Roster        []rostermodel.Item
	ConnectedAt   time.Time
}

type stateHolder struct {
	v atomic.Value
}

func newStateHolder() *stateHolder {
	h := &stateHolder{}
	h.v.Store(&State{})
	return h
}

func (h *stateHolder) get() *State {
	return h.v.Load().(*State)
}

// update stores a modified copy of the current state, leaving previous
// snapshots untouched for concurrent readers.
func (h *stateHolder) update(f func(s *State)) {
	cp := *h.get()
	cp.Roster = append([]rostermodel.Item(nil), cp.Roster...)
	f(&cp)
	h.v.Store(&cp)
}
