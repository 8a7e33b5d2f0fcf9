package config

// Storage selects the credential and access-event store. Only the embedded
// sqlite backend is implemented.
type Storage struct {
	SQLite *SQLiteStorage `mapstructure:"local,omitempty"`
}

type SQLiteStorage struct {
	Path string `mapstructure:"path,omitempty"`
}
