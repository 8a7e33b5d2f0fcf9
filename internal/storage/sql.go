package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"premises-access-control/internal/access"
	"premises-access-control/internal/config"
	"premises-access-control/internal/credential"
	"premises-access-control/internal/person"
)

type SQLProvider struct {
	db *sqlx.DB

	config *config.Storage
	logger *slog.Logger
}

func NewSQLProvider(config *config.Storage, driverName string, dataSource string) *SQLProvider {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		slog.Error("Failed to open database", "driver", driverName, "error", err)
		return nil
	}

	return &SQLProvider{
		db:     db,
		config: config,
		logger: slog.With("component", "storage"),
	}
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

const sqlInsertCredential = `
	INSERT INTO credentials (code, employee_id, visitor_id, is_active, created_at, expires_at)
	VALUES (:code, :employee_id, :visitor_id, :is_active, :created_at, :expires_at)`

func (p *SQLProvider) InsertCredential(ctx context.Context, c *credential.Credential) error {
	row := newCredentialRow(c)
	res, err := p.db.NamedExecContext(ctx, sqlInsertCredential, row)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", credential.ErrDuplicateCode, c.Code)
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (p *SQLProvider) FindCredentialByCode(ctx context.Context, code string) (*credential.Credential, error) {
	var row credentialRow
	err := p.db.GetContext(ctx, &row,
		`SELECT id, code, employee_id, visitor_id, is_active, created_at, expires_at
		 FROM credentials WHERE code = ?`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, credential.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (p *SQLProvider) FindCredentialByID(ctx context.Context, id int64) (*credential.Credential, error) {
	var row credentialRow
	err := p.db.GetContext(ctx, &row,
		`SELECT id, code, employee_id, visitor_id, is_active, created_at, expires_at
		 FROM credentials WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, credential.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

const sqlInsertAccessEvent = `
	INSERT INTO access_events (person_type, person_id, access_type, access_time, workday_date)
	VALUES (:person_type, :person_id, :access_type, :access_time, :workday_date)`

func (p *SQLProvider) InsertAccessEvent(ctx context.Context, e *access.Event) error {
	row := newAccessEventRow(e)
	res, err := p.db.NamedExecContext(ctx, sqlInsertAccessEvent, row)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// FindAccessEventsInRange returns events with start <= access_time <= end,
// both ends inclusive, ordered by time.
func (p *SQLProvider) FindAccessEventsInRange(ctx context.Context, start, end time.Time) ([]access.Event, error) {
	var rows []accessEventRow
	err := p.db.SelectContext(ctx, &rows,
		`SELECT id, person_type, person_id, access_type, access_time, workday_date
		 FROM access_events
		 WHERE access_time >= ? AND access_time <= ?
		 ORDER BY access_time, id`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return rowsToEvents(rows)
}

// ListAccessEvents returns recent events, optionally filtered to one workday.
func (p *SQLProvider) ListAccessEvents(ctx context.Context, workday string, limit, offset int) ([]access.Event, error) {
	query := `SELECT id, person_type, person_id, access_type, access_time, workday_date
		FROM access_events`
	args := []any{}
	if workday != "" {
		query += ` WHERE workday_date = ?`
		args = append(args, workday)
	}
	query += ` ORDER BY access_time DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var rows []accessEventRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rowsToEvents(rows)
}

func (p *SQLProvider) PersonExists(ctx context.Context, ref person.Ref) (bool, error) {
	var table string
	switch ref.Kind() {
	case person.KindEmployee:
		table = "employees"
	case person.KindVisitor:
		table = "visitors"
	default:
		return false, fmt.Errorf("%w: %q", person.ErrUnknownPersonKind, ref.Kind())
	}

	var exists bool
	err := p.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = ?)`, ref.ID())
	if err != nil {
		return false, err
	}
	return exists, nil
}

func rowsToEvents(rows []accessEventRow) ([]access.Event, error) {
	events := make([]access.Event, 0, len(rows))
	for _, row := range rows {
		e, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
