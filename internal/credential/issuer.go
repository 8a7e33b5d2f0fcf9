package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"premises-access-control/internal/person"
)

// Collision on a 128-bit random code is not expected to happen in practice;
// the retry bound exists so a broken store cannot loop forever.
const maxCodeAttempts = 3

// Issuer creates credentials bound to exactly one person.
type Issuer struct {
	store     Store
	directory person.Directory
	logger    *slog.Logger
}

func NewIssuer(store Store, directory person.Directory) *Issuer {
	return &Issuer{
		store:     store,
		directory: directory,
		logger:    slog.With("component", "issuer"),
	}
}

// Issue persists a new active credential for owner. A validity of zero or
// less means the credential never expires. Prior credentials for the same
// owner are left untouched; multiple simultaneously active credentials per
// person are permitted.
func (i *Issuer) Issue(ctx context.Context, owner person.Ref, validity time.Duration) (*Credential, error) {
	exists, err := i.directory.Exists(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("directory lookup for %s: %w", owner, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", person.ErrPersonNotFound, owner)
	}

	now := time.Now().UTC()
	cred := &Credential{
		Owner:     owner,
		IsActive:  true,
		CreatedAt: now,
	}
	if validity > 0 {
		expiresAt := now.Add(validity)
		cred.ExpiresAt = &expiresAt
	}

	for attempt := 1; ; attempt++ {
		cred.Code = newCode()
		err = i.store.InsertCredential(ctx, cred)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateCode) || attempt >= maxCodeAttempts {
			return nil, fmt.Errorf("persist credential: %w", err)
		}
		i.logger.Warn("Credential code collision, regenerating", "attempt", attempt)
	}

	i.logger.Info("Issued credential", "owner", owner.String(), "credential_id", cred.ID)
	return cred, nil
}

// newCode returns a fresh 128-bit random token.
func newCode() string {
	return uuid.NewString()
}
