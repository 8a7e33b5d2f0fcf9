package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"sort"
	"time"

	"premises-access-control/internal/access"
	"premises-access-control/internal/person"
)

//go:embed report.html.tmpl
var reportTemplate string

// Emails get unwieldy with the full window; cap the detail table.
const maxDetailRows = 50

var tmpl = template.Must(template.New("weekly-report").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format(access.WorkdayLayout) },
	"ts":   func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
}).Parse(reportTemplate))

type dayRow struct {
	Day string
	DayCounts
	Total int
}

type templateData struct {
	Report    *Weekly
	Employees Counts
	Visitors  Counts
	Days      []dayRow
	Detail    []access.Event
}

// RenderHTML renders the report as a standalone HTML document, used both for
// the emailed report and the report web page.
func RenderHTML(r *Weekly) (string, error) {
	data := templateData{
		Report:    r,
		Employees: r.ByPersonType[person.KindEmployee],
		Visitors:  r.ByPersonType[person.KindVisitor],
		Detail:    r.Events,
	}

	for _, day := range sortedDays(r.DailyStats) {
		counts := r.DailyStats[day]
		data.Days = append(data.Days, dayRow{
			Day:       day,
			DayCounts: counts,
			Total:     counts.Entries + counts.Exits,
		})
	}

	if len(data.Detail) > maxDetailRows {
		data.Detail = data.Detail[:maxDetailRows]
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// Subject returns the email subject line for the report period.
func Subject(r *Weekly) string {
	return fmt.Sprintf("Weekly access report (%s to %s)",
		r.Period.Start.Format(access.WorkdayLayout),
		r.Period.End.Format(access.WorkdayLayout))
}

func sortedDays(stats map[string]DayCounts) []string {
	days := make([]string, 0, len(stats))
	for day := range stats {
		days = append(days, day)
	}
	// yyyy-mm-dd sorts lexicographically.
	sort.Strings(days)
	return days
}
