// Package credential implements the lifecycle of scannable access
// credentials: issuance of a unique random code bound to one person, and
// read-time validation against the activation flag and expiry.
package credential

import (
	"context"
	"errors"
	"time"

	"premises-access-control/internal/person"
)

var (
	ErrNotFound      = errors.New("credential not found")
	ErrInactive      = errors.New("credential is not active")
	ErrExpired       = errors.New("credential has expired")
	ErrDuplicateCode = errors.New("credential code already exists")
)

// Credential is one issued scannable credential. The code is the opaque
// value embedded in the QR artifact; the owner is immutable after creation.
type Credential struct {
	ID        int64
	Code      string
	Owner     person.Ref
	IsActive  bool
	CreatedAt time.Time
	// ExpiresAt nil means the credential never expires.
	ExpiresAt *time.Time
}

// Expired reports whether the credential is past its expiry at the given
// instant. A credential expiring at exactly now is already expired.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// Store is the persistence port for credentials. Implementations must
// enforce a unique index on Code and return ErrDuplicateCode when it is
// violated, and ErrNotFound from the finders.
type Store interface {
	InsertCredential(ctx context.Context, c *Credential) error
	FindCredentialByCode(ctx context.Context, code string) (*Credential, error)
	FindCredentialByID(ctx context.Context, id int64) (*Credential, error)
}
