// Embedded-file based schema migration system.
//
// Migration SQL files are embedded under "migrations" in a driver-specific
// subdirectory. Filenames must match NNNN_name.up.sql or NNNN_name.down.sql;
// Version is a four-digit integer and each file contains the raw SQL applied
// when that migration runs. Adding or removing migration files requires
// rebuilding the binary.
//
// Heavily influenced by Authelia's migration system
// https://github.com/authelia/authelia/blob/master/internal/storage/migrations.go

package storage

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
)

//go:embed migrations
var migrationsFS embed.FS

var reMigrationFilename = regexp.MustCompile(`^(?P<Version>\d{4})\_(?P<Name>[^.]+)\.(?P<Direction>(up|down))\.sql$`)

// SchemaMigration represents a single database migration
type SchemaMigration struct {
	Version int
	Name    string
	Up      bool
	SQL     string
}

// loadMigrations returns the up migrations above prior, sorted ascending.
func loadMigrations(driver string, prior int) ([]SchemaMigration, error) {
	dirPath, err := migrationsDir(driver)
	if err != nil {
		return nil, err
	}

	entries, err := migrationsFS.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var migrations []SchemaMigration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		migration, err := parseMigrationFile(path.Join(dirPath, entry.Name()))
		if err != nil {
			return nil, err
		}
		if !migration.Up || migration.Version <= prior {
			continue
		}
		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func migrationsDir(driver string) (string, error) {
	switch driver {
	case "sqlite3":
		return "migrations/sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

// parseMigrationFile parses a migration filename and reads its content.
func parseMigrationFile(filePath string) (SchemaMigration, error) {
	filename := path.Base(filePath)
	parts := reMigrationFilename.FindStringSubmatch(filename)
	if parts == nil {
		return SchemaMigration{}, fmt.Errorf("invalid migration filename: %s", filename)
	}

	sqlBytes, err := migrationsFS.ReadFile(filePath)
	if err != nil {
		return SchemaMigration{}, fmt.Errorf("failed to read migration file: %w", err)
	}

	version, _ := strconv.Atoi(parts[reMigrationFilename.SubexpIndex("Version")])
	return SchemaMigration{
		Version: version,
		Name:    parts[reMigrationFilename.SubexpIndex("Name")],
		Up:      parts[reMigrationFilename.SubexpIndex("Direction")] == "up",
		SQL:     string(sqlBytes),
	}, nil
}

// runMigrations brings the schema up to the latest embedded version, applying
// each pending migration in its own transaction and recording it in the
// schema_migrations table.
func (p *SQLProvider) runMigrations(driver string) error {
	if _, err := p.db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, name TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := p.db.Get(&current,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	migrations, err := loadMigrations(driver, current)
	if err != nil {
		return err
	}
	if len(migrations) == 0 {
		p.logger.Debug("Schema is up to date", "version", current)
		return nil
	}

	for _, migration := range migrations {
		tx, err := p.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %04d_%s: %w", migration.Version, migration.Name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`,
			migration.Version, migration.Name); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %04d: %w", migration.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		p.logger.Info("Applied migration", "version", migration.Version, "name", migration.Name)
	}

	return nil
}
