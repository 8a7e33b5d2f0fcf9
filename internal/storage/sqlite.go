package storage

import "premises-access-control/internal/config"

type SQLiteProvider struct {
	SQLProvider
}

func NewSQLiteProvider(config *config.Storage) *SQLiteProvider {
	sqlProvider := NewSQLProvider(config, "sqlite3", config.SQLite.Path)
	if sqlProvider == nil {
		return nil
	}

	// An in-memory database exists per connection; keep the pool on a
	// single connection so every query sees the same schema and data.
	if config.SQLite.Path == ":memory:" {
		sqlProvider.db.SetMaxOpenConns(1)
	}

	return &SQLiteProvider{SQLProvider: *sqlProvider}
}
