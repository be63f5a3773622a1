/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package repository

import "context"

// Container interface brings together all repository instances.
type Container interface {
	// Accounts method returns repository.Accounts concrete implementation.
	Accounts() Accounts

	// Messages method returns repository.Messages concrete implementation.
	Messages() Messages

	// Roster method returns repository.Roster concrete implementation.
	Roster() Roster

	// Presences method returns repository.Presences concrete implementation.
	Presences() Presences

	// Close closes underlying storage resources, commonly shared across repositories.
	Close(ctx context.Context) error
}
