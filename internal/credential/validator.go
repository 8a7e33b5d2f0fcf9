package credential

import (
	"context"
	"fmt"
	"time"

	"premises-access-control/internal/person"
)

// Validator resolves a scanned code to its owner. Validation is pure: it
// performs no writes and is safe to call repeatedly. Expiry and activation
// are read-time computations, never mutations of the row.
type Validator struct {
	store Store
}

func NewValidator(store Store) *Validator {
	return &Validator{store: store}
}

// Validate returns the person bound to code, or ErrNotFound, ErrInactive or
// ErrExpired.
func (v *Validator) Validate(ctx context.Context, code string, now time.Time) (person.Ref, error) {
	cred, err := v.store.FindCredentialByCode(ctx, code)
	if err != nil {
		return person.Ref{}, err
	}

	if !cred.IsActive {
		return person.Ref{}, ErrInactive
	}
	if cred.Expired(now) {
		return person.Ref{}, fmt.Errorf("%w: expired at %s", ErrExpired, cred.ExpiresAt.Format(time.RFC3339))
	}

	return cred.Owner, nil
}
