/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dialogo-im/dialogo/session"
	"github.com/dialogo-im/dialogo/storage/memstorage"
	"github.com/dialogo-im/dialogo/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// streamSequence hands a fresh stream to every connection attempt.
type streamSequence struct {
	mu      sync.Mutex
	streams []*fakeStream
	current *fakeStream
}

func (seq *streamSequence) next() (*fakeStream, error) {
	seq.mu.Lock()
	defer seq.mu.Unlock()
	if len(seq.streams) == 0 {
		return nil, errors.New("connection refused")
	}
	seq.current = seq.streams[0]
	seq.streams = seq.streams[1:]
	return seq.current, nil
}

func TestClientReconnectsAfterStreamLoss(t *testing.T) {
	cfg := testConfig()
	cfg.AutoReconnect = true

	seq := &streamSequence{streams: []*fakeStream{
		newFakeStream("alice@dialogo.im/desktop"),
		newFakeStream("alice@dialogo.im/desktop"),
	}}
	first := seq.streams[0]
	second := seq.streams[1]

	c := New(cfg, memstorage.New())
	defer c.Shutdown(context.Background())

	c.dial = func(_ *Config) (transport.Transport, error) {
		fs, err := seq.next()
		if err != nil {
			return nil, err
		}
		return &fakeStreamTransport{stream: fs}, nil
	}
	c.newStream = func(_ *session.Config) xmppStream {
		seq.mu.Lock()
		defer seq.mu.Unlock()
		return seq.current
	}
	events := c.SubscribeEvents()

	require.Nil(t, c.Connect(context.Background()))
	expectEvent(t, events, Connected)
	expectSent(t, first) // initial presence

	// drop the stream and wait for the supervisor to re-establish it
	first.terminate()

	expectEvent(t, events, Disconnected)
	expectEvent(t, events, Connected)
	expectSent(t, second) // initial presence after reconnection

	require.Equal(t, StatusConnected, c.State().Status)
}

func TestClientReconnectGivesUp(t *testing.T) {
	cfg := testConfig()
	cfg.AutoReconnect = true
	cfg.MaxReconnectAttempts = 2

	seq := &streamSequence{streams: []*fakeStream{
		newFakeStream("alice@dialogo.im/desktop"),
	}}
	first := seq.streams[0]

	c := New(cfg, memstorage.New())
	defer c.Shutdown(context.Background())

	c.dial = func(_ *Config) (transport.Transport, error) {
		fs, err := seq.next()
		if err != nil {
			return nil, err
		}
		return &fakeStreamTransport{stream: fs}, nil
	}
	c.newStream = func(_ *session.Config) xmppStream {
		seq.mu.Lock()
		defer seq.mu.Unlock()
		return seq.current
	}
	events := c.SubscribeEvents()

	require.Nil(t, c.Connect(context.Background()))
	expectEvent(t, events, Connected)

	first.terminate()
	expectEvent(t, events, Disconnected)

	// both attempts fail dialing
	expectEvent(t, events, ConnectionError)
	expectEvent(t, events, ConnectionError)

	select {
	case ev := <-events:
		require.NotEqual(t, Connected, ev.Type)
	case <-time.After(time.Millisecond * 100):
		break
	}
	require.NotEqual(t, StatusConnected, c.State().Status)
}

func TestClientNoReconnectOnUserDisconnect(t *testing.T) {
	cfg := testConfig()
	cfg.AutoReconnect = true
	env := newTestEnv(cfg)
	defer env.client.Shutdown(context.Background())

	require.Nil(t, env.client.Connect(context.Background()))
	expectEvent(t, env.events, Connected)

	require.Nil(t, env.client.Disconnect(context.Background()))
	ev := expectEvent(t, env.events, Disconnected)
	require.Equal(t, "disconnect requested", ev.Info.(*DisconnectedEventInfo).Reason)

	select {
	case <-env.client.lostCh:
		t.Fatal("unexpected reconnection signal")
	default:
	}
	require.Equal(t, StatusDisconnected, env.client.State().Status)
}
