/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package repository

import (
	"context"

	"github.com/dialogo-im/dialogo/model"
)

// Accounts defines storage operations for configured accounts.
type Accounts interface {
	// UpsertAccount inserts a new account entity into storage,
	// or updates it in case it's been previously inserted.
	UpsertAccount(ctx context.Context, a *model.Account) error

	// FetchAccounts retrieves from storage all account entities
	// ordered by creation time.
	FetchAccounts(ctx context.Context) ([]model.Account, error)
}
