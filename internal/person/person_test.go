package person

import (
	"errors"
	"testing"
)

func TestConstructorsCarryKindAndID(t *testing.T) {
	e := Employee(7)
	if e.Kind() != KindEmployee || e.ID() != 7 {
		t.Fatalf("unexpected employee ref: %v", e)
	}

	v := Visitor(12)
	if v.Kind() != KindVisitor || v.ID() != 12 {
		t.Fatalf("unexpected visitor ref: %v", v)
	}
}

func TestNewRefRejectsUnknownKind(t *testing.T) {
	if _, err := NewRef("contractor", 1); !errors.Is(err, ErrUnknownPersonKind) {
		t.Fatalf("expected ErrUnknownPersonKind, got %v", err)
	}

	ref, err := NewRef(KindVisitor, 3)
	if err != nil {
		t.Fatalf("NewRef failed: %v", err)
	}
	if ref != Visitor(3) {
		t.Fatalf("unexpected ref: %v", ref)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("employee"); err != nil || k != KindEmployee {
		t.Fatalf("ParseKind(employee) = %v, %v", k, err)
	}
	if _, err := ParseKind("robot"); !errors.Is(err, ErrUnknownPersonKind) {
		t.Fatalf("expected ErrUnknownPersonKind, got %v", err)
	}
}

func TestZeroRef(t *testing.T) {
	var r Ref
	if !r.IsZero() {
		t.Fatal("zero Ref should report IsZero")
	}
	if Employee(1).IsZero() {
		t.Fatal("constructed Ref should not be zero")
	}
}
