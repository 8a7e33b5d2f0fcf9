package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Schedule is a fixed weekly trigger, e.g. every Monday at 08:00 in the
// service's reference timezone.
type Schedule struct {
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Location *time.Location
}

// ParseWeekday maps a config string like "monday" to a weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
}

// Next returns the first trigger instant strictly after the given time.
func (s Schedule) Next(after time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	t := after.In(loc)

	next := time.Date(t.Year(), t.Month(), t.Day(), s.Hour, s.Minute, 0, 0, loc)
	days := (int(s.Weekday) - int(next.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(after) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Job runs a function on a weekly schedule. It has an explicit Start/Stop
// lifecycle instead of process-global scheduler state. A failed run is
// logged and dropped; the next run starts from scratch.
type Job struct {
	schedule Schedule
	run      func(ctx context.Context) error
	stop     chan struct{}
	logger   *slog.Logger
}

func NewJob(schedule Schedule, run func(ctx context.Context) error) *Job {
	return &Job{
		schedule: schedule,
		run:      run,
		stop:     make(chan struct{}),
		logger:   slog.With("component", "report-job"),
	}
}

// Start launches the job loop. Call Stop to end it.
func (j *Job) Start() {
	go j.loop()
	j.logger.Info("Weekly report job started",
		"weekday", j.schedule.Weekday.String(),
		"at", fmt.Sprintf("%02d:%02d", j.schedule.Hour, j.schedule.Minute),
	)
}

func (j *Job) loop() {
	for {
		next := j.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			if err := j.run(context.Background()); err != nil {
				j.logger.Error("Weekly report run failed", "error", err)
			}
		case <-j.stop:
			timer.Stop()
			return
		}
	}
}

// Stop ends the job loop. A run already in progress is not interrupted.
func (j *Job) Stop() {
	close(j.stop)
	j.logger.Info("Weekly report job stopped")
}
