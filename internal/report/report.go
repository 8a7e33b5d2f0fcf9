// Package report turns raw access events into the weekly access report and
// runs the job that delivers it.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"premises-access-control/internal/access"
	"premises-access-control/internal/person"
)

// Window is the trailing report period, 7 days.
const Window = 7 * 24 * time.Hour

type Counts struct {
	Entries int `json:"entries"`
	Exits   int `json:"exits"`
	Total   int `json:"total"`
}

type DayCounts struct {
	Entries int `json:"entries"`
	Exits   int `json:"exits"`
}

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Weekly is the aggregated report. It is transient: recomputing it from the
// same stored events and the same instant yields an identical value.
type Weekly struct {
	Period       Period                 `json:"period"`
	Totals       Counts                 `json:"totals"`
	ByPersonType map[person.Kind]Counts `json:"by_person_type"`
	// DailyStats is keyed by the yyyy-mm-dd date of access_time in the
	// service's reference timezone.
	DailyStats map[string]DayCounts `json:"daily_stats"`

	// Events carries the raw window rows for the detail table of the
	// rendered report. Not part of the JSON summary.
	Events []access.Event `json:"-"`
}

// Aggregator computes weekly reports from the event store. It only issues
// reads and takes no locks of its own.
type Aggregator struct {
	store  access.EventStore
	loc    *time.Location
	logger *slog.Logger
}

func NewAggregator(store access.EventStore, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{
		store:  store,
		loc:    loc,
		logger: slog.With("component", "aggregator"),
	}
}

// Aggregate builds the report for the window [now-7d, now], inclusive of
// both ends, in a single pass over the fetched events.
func (a *Aggregator) Aggregate(ctx context.Context, now time.Time) (*Weekly, error) {
	start := now.Add(-Window)

	events, err := a.store.FindAccessEventsInRange(ctx, start, now)
	if err != nil {
		return nil, fmt.Errorf("fetch events in window: %w", err)
	}

	r := &Weekly{
		Period: Period{Start: start, End: now},
		ByPersonType: map[person.Kind]Counts{
			person.KindEmployee: {},
			person.KindVisitor:  {},
		},
		DailyStats: make(map[string]DayCounts),
		Events:     events,
	}

	for _, e := range events {
		day := e.Time.In(a.loc).Format(access.WorkdayLayout)
		daily := r.DailyStats[day]
		byKind := r.ByPersonType[e.Person.Kind()]

		switch e.Type {
		case access.Entry:
			r.Totals.Entries++
			byKind.Entries++
			daily.Entries++
		case access.Exit:
			r.Totals.Exits++
			byKind.Exits++
			daily.Exits++
		}
		r.Totals.Total++
		byKind.Total++

		r.DailyStats[day] = daily
		r.ByPersonType[e.Person.Kind()] = byKind
	}

	a.logger.Info("Aggregated weekly report",
		"start", start.Format(time.RFC3339),
		"end", now.Format(time.RFC3339),
		"events", r.Totals.Total,
	)
	return r, nil
}
