package storage

import (
	"database/sql"
	"time"

	"premises-access-control/internal/access"
	"premises-access-control/internal/credential"
	"premises-access-control/internal/person"
)

// credentialRow is the credentials table shape. The two nullable owner
// columns are the wire format; exactly one is set, enforced by a CHECK
// constraint and by the person.Ref conversion below.
type credentialRow struct {
	ID         int64         `db:"id"`
	Code       string        `db:"code"`
	EmployeeID sql.NullInt64 `db:"employee_id"`
	VisitorID  sql.NullInt64 `db:"visitor_id"`
	IsActive   bool          `db:"is_active"`
	CreatedAt  time.Time     `db:"created_at"`
	ExpiresAt  *time.Time    `db:"expires_at"`
}

func (r credentialRow) toDomain() (*credential.Credential, error) {
	var owner person.Ref
	switch {
	case r.EmployeeID.Valid:
		owner = person.Employee(r.EmployeeID.Int64)
	case r.VisitorID.Valid:
		owner = person.Visitor(r.VisitorID.Int64)
	default:
		return nil, ErrCorruptCredentialRow
	}

	c := &credential.Credential{
		ID:        r.ID,
		Code:      r.Code,
		Owner:     owner,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
	if r.ExpiresAt != nil {
		t := *r.ExpiresAt
		c.ExpiresAt = &t
	}
	return c, nil
}

func newCredentialRow(c *credential.Credential) credentialRow {
	r := credentialRow{
		ID:        c.ID,
		Code:      c.Code,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt.UTC(),
	}
	if c.ExpiresAt != nil {
		t := c.ExpiresAt.UTC()
		r.ExpiresAt = &t
	}
	switch c.Owner.Kind() {
	case person.KindEmployee:
		r.EmployeeID = sql.NullInt64{Int64: c.Owner.ID(), Valid: true}
	case person.KindVisitor:
		r.VisitorID = sql.NullInt64{Int64: c.Owner.ID(), Valid: true}
	}
	return r
}

type accessEventRow struct {
	ID          int64     `db:"id"`
	PersonType  string    `db:"person_type"`
	PersonID    int64     `db:"person_id"`
	AccessType  string    `db:"access_type"`
	AccessTime  time.Time `db:"access_time"`
	WorkdayDate string    `db:"workday_date"`
}

func (r accessEventRow) toDomain() (access.Event, error) {
	ref, err := person.NewRef(person.Kind(r.PersonType), r.PersonID)
	if err != nil {
		return access.Event{}, err
	}
	return access.Event{
		ID:          r.ID,
		Person:      ref,
		Type:        access.Type(r.AccessType),
		Time:        r.AccessTime,
		WorkdayDate: r.WorkdayDate,
	}, nil
}

func newAccessEventRow(e *access.Event) accessEventRow {
	return accessEventRow{
		ID:          e.ID,
		PersonType:  string(e.Person.Kind()),
		PersonID:    e.Person.ID(),
		AccessType:  string(e.Type),
		AccessTime:  e.Time.UTC(),
		WorkdayDate: e.WorkdayDate,
	}
}
