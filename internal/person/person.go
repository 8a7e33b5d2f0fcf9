// Package person models the polymorphic owner of credentials and access
// events: a reference to either an employee or a visitor. The core never
// loads full person records; it only carries the (kind, id) pair through.
package person

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindEmployee Kind = "employee"
	KindVisitor  Kind = "visitor"
)

var (
	ErrPersonNotFound    = errors.New("person not found")
	ErrUnknownPersonKind = errors.New("unknown person kind")
)

// Ref is a tagged reference to exactly one employee or visitor. The fields
// are unexported so a Ref can only be built through the constructors, which
// makes the one-owner invariant impossible to violate.
type Ref struct {
	kind Kind
	id   int64
}

func Employee(id int64) Ref {
	return Ref{kind: KindEmployee, id: id}
}

func Visitor(id int64) Ref {
	return Ref{kind: KindVisitor, id: id}
}

// NewRef builds a Ref from untrusted input, e.g. an HTTP path or a DB row.
func NewRef(kind Kind, id int64) (Ref, error) {
	switch kind {
	case KindEmployee, KindVisitor:
		return Ref{kind: kind, id: id}, nil
	default:
		return Ref{}, fmt.Errorf("%w: %q", ErrUnknownPersonKind, kind)
	}
}

// ParseKind validates a person type string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindEmployee:
		return KindEmployee, nil
	case KindVisitor:
		return KindVisitor, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPersonKind, s)
	}
}

func (r Ref) Kind() Kind { return r.kind }

func (r Ref) ID() int64 { return r.id }

func (r Ref) IsZero() bool { return r.kind == "" }

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.kind, r.id)
}

// Directory resolves whether a referenced person exists. The employee and
// visitor records themselves are managed elsewhere; the core only ever asks
// this one question.
type Directory interface {
	Exists(ctx context.Context, ref Ref) (bool, error)
}
