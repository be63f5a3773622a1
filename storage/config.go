/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package storage

import (
	"fmt"
)

const defaultSQLiteFile = "dialogo.db"

const defaultPoolSize = 16

// Type represents a storage manager type.
type Type int

const (
	// SQLite represents a SQLite storage type.
	SQLite Type = iota

	// MySQL represents a MySQL storage type.
	MySQL

	// PostgreSQL represents a PostgreSQL storage type.
	PostgreSQL

	// Memory represents a in-memory storage type.
	Memory
)

// String returns Type string representation.
func (t Type) String() string {
	switch t {
	case SQLite:
		return "sqlite3"
	case MySQL:
		return "mysql"
	case PostgreSQL:
		return "postgresql"
	case Memory:
		return "memory"
	}
	return ""
}

// Config represents a storage manager configuration.
type Config struct {
	Type   Type
	SQLite *SQLiteDb
	MySQL  *SQLDb
	PgSQL  *SQLDb
}

// SQLiteDb represents SQLite storage configuration.
type SQLiteDb struct {
	File string `yaml:"file"`
}

// SQLDb represents MySQL or PostgreSQL storage configuration.
type SQLDb struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	PoolSize int    `yaml:"pool_size"`
	SSLMode  string `yaml:"ssl_mode"`
}

type storageProxyType struct {
	Type   string    `yaml:"type"`
	SQLite *SQLiteDb `yaml:"sqlite3"`
	MySQL  *SQLDb    `yaml:"mysql"`
	PgSQL  *SQLDb    `yaml:"postgresql"`
}

// UnmarshalYAML satisfies Unmarshaler interface.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	p := storageProxyType{}
	if err := unmarshal(&p); err != nil {
		return err
	}
	switch p.Type {
	case "", "sqlite3":
		c.Type = SQLite
		c.SQLite = p.SQLite
		if c.SQLite == nil {
			c.SQLite = &SQLiteDb{File: defaultSQLiteFile}
		}
		if len(c.SQLite.File) == 0 {
			c.SQLite.File = defaultSQLiteFile
		}

	case "mysql":
		if p.MySQL == nil {
			return fmt.Errorf("storage: couldn't read MySQL configuration")
		}
		c.Type = MySQL
		c.MySQL = p.MySQL
		if c.MySQL.PoolSize == 0 {
			c.MySQL.PoolSize = defaultPoolSize
		}

	case "postgresql":
		if p.PgSQL == nil {
			return fmt.Errorf("storage: couldn't read PostgreSQL configuration")
		}
		c.Type = PostgreSQL
		c.PgSQL = p.PgSQL
		if c.PgSQL.PoolSize == 0 {
			c.PgSQL.PoolSize = defaultPoolSize
		}
		if len(c.PgSQL.SSLMode) == 0 {
			c.PgSQL.SSLMode = "disable"
		}

	case "memory":
		c.Type = Memory

	default:
		return fmt.Errorf("storage: unrecognized storage type: %s", p.Type)
	}
	return nil
}
