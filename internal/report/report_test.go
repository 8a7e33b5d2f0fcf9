package report

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"premises-access-control/internal/access"
	"premises-access-control/internal/person"
)

type staticEventStore []access.Event

func (s staticEventStore) InsertAccessEvent(ctx context.Context, e *access.Event) error {
	panic("aggregation must not write")
}

func (s staticEventStore) FindAccessEventsInRange(ctx context.Context, start, end time.Time) ([]access.Event, error) {
	var out []access.Event
	for _, e := range s {
		if !e.Time.Before(start) && !e.Time.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func event(id int64, p person.Ref, typ access.Type, at time.Time) access.Event {
	return access.Event{
		ID:          id,
		Person:      p,
		Type:        typ,
		Time:        at,
		WorkdayDate: at.UTC().Format(access.WorkdayLayout),
	}
}

func TestAggregateCountsAndBuckets(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	store := staticEventStore{
		event(1, person.Employee(3), access.Entry, time.Date(2025, 1, 6, 8, 1, 0, 0, time.UTC)),
		event(2, person.Employee(3), access.Exit, time.Date(2025, 1, 6, 17, 10, 0, 0, time.UTC)),
		event(3, person.Visitor(7), access.Entry, time.Date(2025, 1, 7, 10, 30, 0, 0, time.UTC)),
	}

	r, err := NewAggregator(store, time.UTC).Aggregate(context.Background(), now)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if r.Totals != (Counts{Entries: 2, Exits: 1, Total: 3}) {
		t.Fatalf("totals = %+v", r.Totals)
	}
	if got := r.ByPersonType[person.KindEmployee]; got != (Counts{Entries: 1, Exits: 1, Total: 2}) {
		t.Fatalf("employee counts = %+v", got)
	}
	if got := r.ByPersonType[person.KindVisitor]; got != (Counts{Entries: 1, Exits: 0, Total: 1}) {
		t.Fatalf("visitor counts = %+v", got)
	}
	if got := r.DailyStats["2025-01-06"]; got != (DayCounts{Entries: 1, Exits: 1}) {
		t.Fatalf("daily 2025-01-06 = %+v", got)
	}
	if got := r.DailyStats["2025-01-07"]; got != (DayCounts{Entries: 1, Exits: 0}) {
		t.Fatalf("daily 2025-01-07 = %+v", got)
	}
	if len(r.DailyStats) != 2 {
		t.Fatalf("expected 2 daily buckets, got %d", len(r.DailyStats))
	}
}

func TestAggregateWindowBoundaries(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	atBoundary := now.Add(-Window)
	store := staticEventStore{
		event(1, person.Employee(1), access.Entry, atBoundary),
		event(2, person.Employee(1), access.Entry, atBoundary.Add(-time.Second)),
		event(3, person.Employee(1), access.Exit, now),
		event(4, person.Employee(1), access.Exit, now.Add(time.Second)),
	}

	r, err := NewAggregator(store, time.UTC).Aggregate(context.Background(), now)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	// Both window ends are inclusive; one second outside either end is not.
	if r.Totals.Total != 2 {
		t.Fatalf("expected 2 in-window events, got %d", r.Totals.Total)
	}
	if r.Totals.Entries != 1 || r.Totals.Exits != 1 {
		t.Fatalf("unexpected totals: %+v", r.Totals)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	now := time.Date(2025, 5, 2, 7, 45, 0, 0, time.UTC)
	store := staticEventStore{
		event(1, person.Visitor(2), access.Entry, now.Add(-48*time.Hour)),
		event(2, person.Visitor(2), access.Exit, now.Add(-47*time.Hour)),
		event(3, person.Employee(5), access.Entry, now.Add(-time.Hour)),
	}
	agg := NewAggregator(store, time.UTC)
	ctx := context.Background()

	first, err := agg.Aggregate(ctx, now)
	if err != nil {
		t.Fatalf("first Aggregate failed: %v", err)
	}
	second, err := agg.Aggregate(ctx, now)
	if err != nil {
		t.Fatalf("second Aggregate failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestAggregateEmptyWindow(t *testing.T) {
	r, err := NewAggregator(staticEventStore{}, time.UTC).Aggregate(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if r.Totals.Total != 0 || len(r.DailyStats) != 0 {
		t.Fatalf("expected empty report, got %+v", r)
	}
	// Person type buckets are always present, even when empty.
	if _, ok := r.ByPersonType[person.KindEmployee]; !ok {
		t.Fatal("missing employee bucket")
	}
	if _, ok := r.ByPersonType[person.KindVisitor]; !ok {
		t.Fatal("missing visitor bucket")
	}
}

func TestRenderHTML(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	store := staticEventStore{
		event(1, person.Employee(3), access.Entry, time.Date(2025, 1, 6, 8, 1, 0, 0, time.UTC)),
		event(2, person.Employee(3), access.Exit, time.Date(2025, 1, 6, 17, 10, 0, 0, time.UTC)),
	}
	r, err := NewAggregator(store, time.UTC).Aggregate(context.Background(), now)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	html, err := RenderHTML(r)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	for _, want := range []string{"Weekly Access Report", "2025-01-06", "employee:3", "2025-01-03 to 2025-01-10"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered report missing %q", want)
		}
	}
}

func TestScheduleNext(t *testing.T) {
	sched := Schedule{Weekday: time.Monday, Hour: 8, Minute: 0, Location: time.UTC}

	// Wednesday -> following Monday.
	wed := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	if got := sched.Next(wed); !got.Equal(time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("Next(wed) = %v", got)
	}

	// Monday before 08:00 -> same day.
	monEarly := time.Date(2025, 1, 6, 7, 0, 0, 0, time.UTC)
	if got := sched.Next(monEarly); !got.Equal(time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("Next(mon 07:00) = %v", got)
	}

	// Exactly at the trigger instant -> one week later.
	monExact := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	if got := sched.Next(monExact); !got.Equal(time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("Next(mon 08:00) = %v", got)
	}
}

func TestParseWeekday(t *testing.T) {
	if d, err := ParseWeekday("Monday"); err != nil || d != time.Monday {
		t.Fatalf("ParseWeekday(Monday) = %v, %v", d, err)
	}
	if _, err := ParseWeekday("someday"); err == nil {
		t.Fatal("expected error for invalid weekday")
	}
}

func TestLoadRecipients(t *testing.T) {
	path := t.TempDir() + "/recipients.yaml"
	content := "recipients:\n  - a@example.com\n  - b@example.com\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := LoadRecipients(path)
	if err != nil {
		t.Fatalf("LoadRecipients failed: %v", err)
	}
	want := []string{"a@example.com", "b@example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("recipients = %v, want %v", got, want)
	}

	if _, err := LoadRecipients(path + ".missing"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRecipientsRejectsInvalidAddress(t *testing.T) {
	path := t.TempDir() + "/recipients.yaml"
	content := "recipients:\n  - not-an-address\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadRecipients(path); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("err = %v, want ErrInvalidEmail", err)
	}
}

func TestValidEmail(t *testing.T) {
	if err := ValidEmail("user@example.com"); err != nil {
		t.Errorf("valid address rejected: %v", err)
	}
	if err := ValidEmail(""); !errors.Is(err, ErrMissingEmail) {
		t.Errorf("err = %v, want ErrMissingEmail", err)
	}
	for _, addr := range []string{"@example.com", "user@", "plain"} {
		if err := ValidEmail(addr); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("ValidEmail(%q) = %v, want ErrInvalidEmail", addr, err)
		}
	}
}
