/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package storage

import (
	"fmt"

	"github.com/dialogo-im/dialogo/storage/memstorage"
	"github.com/dialogo-im/dialogo/storage/repository"
	"github.com/dialogo-im/dialogo/storage/sql"
)

// New initializes a storage repository container
// according to a given configuration.
func New(config *Config) (repository.Container, error) {
	switch config.Type {
	case SQLite:
		return sql.NewSQLite(config.SQLite.File)
	case MySQL:
		return sql.NewMySQL(config.MySQL.Host, config.MySQL.User, config.MySQL.Password, config.MySQL.Database, config.MySQL.PoolSize)
	case PostgreSQL:
		return sql.NewPgSQL(config.PgSQL.Host, config.PgSQL.User, config.PgSQL.Password, config.PgSQL.Database, config.PgSQL.SSLMode, config.PgSQL.PoolSize)
	case Memory:
		return memstorage.New(), nil
	default:
		return nil, fmt.Errorf("storage: unrecognized storage type: %d", config.Type)
	}
}
