// Package access records entry/exit events for validated credentials and
// exposes the combined scan operation used by the HTTP layer.
package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"premises-access-control/internal/person"
)

type Type string

const (
	Entry Type = "entry"
	Exit  Type = "exit"
)

// WorkdayLayout is the calendar-date format stored alongside every event to
// support date-only queries.
const WorkdayLayout = "2006-01-02"

var ErrInvalidAccessType = errors.New("invalid access type")

// ParseType validates an access type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Entry:
		return Entry, nil
	case Exit:
		return Exit, nil
	default:
		return "", fmt.Errorf("%w: %q, must be 'entry' or 'exit'", ErrInvalidAccessType, s)
	}
}

// Event is one recorded access. Events are immutable once created.
type Event struct {
	ID     int64      `json:"id"`
	Person person.Ref `json:"-"`
	Type   Type       `json:"access_type"`
	Time   time.Time  `json:"access_time"`
	// WorkdayDate is the calendar date of Time in the service's reference
	// timezone, stored independently of Time.
	WorkdayDate string `json:"workday_date"`
}

// MarshalJSON flattens the person reference into person_type/person_id for
// API consumers.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return json.Marshal(struct {
		alias
		PersonType person.Kind `json:"person_type"`
		PersonID   int64       `json:"person_id"`
	}{
		alias:      alias(e),
		PersonType: e.Person.Kind(),
		PersonID:   e.Person.ID(),
	})
}

// EventStore is the persistence port for access events. FindAccessEventsInRange
// is inclusive of both window ends.
type EventStore interface {
	InsertAccessEvent(ctx context.Context, e *Event) error
	FindAccessEventsInRange(ctx context.Context, start, end time.Time) ([]Event, error)
}
