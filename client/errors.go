/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package client

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotConnected is returned when an operation requiring an open
	// stream is submitted while the client is disconnected.
	ErrNotConnected = errors.New("client: not connected")

	// ErrAlreadyConnected is returned when a connect operation is
	// submitted while a connection is established or in progress.
	ErrAlreadyConnected = errors.New("client: already connected")

	// ErrClientClosed is returned when submitting an operation to a
	// client that has been shut down.
	ErrClientClosed = errors.New("client: client closed")
)
