/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package model

import (
	"time"
)

// Account represents a configured account storage entity.
type Account struct {
	JID       string
	Name      string
	CreatedAt time.Time
}

// ChatMessage represents an archived chat message storage entity.
type ChatMessage struct {
	ID        string
	FromJID   string
	ToJID     string
	Body      string
	Type      string
	StanzaID  string
	CreatedAt time.Time
}

// Presence represents a contact last known presence storage entity.
type Presence struct {
	JID       string
	Show      string
	Status    string
	UpdatedAt time.Time
}
