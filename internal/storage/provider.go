package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"premises-access-control/internal/access"
	"premises-access-control/internal/config"
	"premises-access-control/internal/credential"
	"premises-access-control/internal/person"
)

var ErrCorruptCredentialRow = errors.New("credential row has no owner")

// Provider is the storage surface of the system. It satisfies
// credential.Store, access.EventStore and person.Directory.
type Provider interface {
	Close() error

	// Credential methods
	InsertCredential(ctx context.Context, c *credential.Credential) error
	FindCredentialByCode(ctx context.Context, code string) (*credential.Credential, error)
	FindCredentialByID(ctx context.Context, id int64) (*credential.Credential, error)

	// Access event methods
	InsertAccessEvent(ctx context.Context, e *access.Event) error
	FindAccessEventsInRange(ctx context.Context, start, end time.Time) ([]access.Event, error)
	ListAccessEvents(ctx context.Context, workday string, limit, offset int) ([]access.Event, error)

	// Person directory methods
	PersonExists(ctx context.Context, ref person.Ref) (bool, error)
}

// Directory adapts a Provider to the person.Directory port.
func Directory(p Provider) person.Directory {
	return directory{p: p}
}

type directory struct {
	p Provider
}

func (d directory) Exists(ctx context.Context, ref person.Ref) (bool, error) {
	return d.p.PersonExists(ctx, ref)
}

func NewProvider(config *config.Storage) Provider {
	switch {
	case config.SQLite != nil:
		provider := NewSQLiteProvider(config)
		if provider == nil {
			slog.Error("Failed to open sqlite database", "path", config.SQLite.Path)
			return nil
		}
		if err := provider.runMigrations("sqlite3"); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			return nil
		}
		return provider

	default:
		slog.Error("Unsupported storage configuration", "config", config)
	}

	return nil
}
