package access

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"premises-access-control/internal/person"
)

// Recorder appends access events for already-validated persons. It enforces
// no alternation between entries and exits: two consecutive entries for the
// same person are accepted, matching the permissive behavior of the existing
// deployments.
type Recorder struct {
	store  EventStore
	loc    *time.Location
	logger *slog.Logger
}

// NewRecorder returns a recorder deriving workday dates in loc, the
// service's reference timezone.
func NewRecorder(store EventStore, loc *time.Location) *Recorder {
	if loc == nil {
		loc = time.UTC
	}
	return &Recorder{
		store:  store,
		loc:    loc,
		logger: slog.With("component", "recorder"),
	}
}

// Record persists one access event at now.
func (r *Recorder) Record(ctx context.Context, owner person.Ref, typ Type, now time.Time) (*Event, error) {
	if _, err := ParseType(string(typ)); err != nil {
		return nil, err
	}
	if owner.IsZero() {
		return nil, fmt.Errorf("%w: empty person reference", person.ErrUnknownPersonKind)
	}

	event := &Event{
		Person:      owner,
		Type:        typ,
		Time:        now,
		WorkdayDate: now.In(r.loc).Format(WorkdayLayout),
	}
	if err := r.store.InsertAccessEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("persist access event: %w", err)
	}

	r.logger.Info("Recorded access", "person", owner.String(), "access_type", typ, "workday", event.WorkdayDate)
	return event, nil
}
