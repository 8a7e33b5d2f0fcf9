package access

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{"id", "person_type", "person_id", "access_type", "access_time", "workday_date"}

// WriteCSV writes access events as CSV rows, header first. Times are
// formatted as RFC 3339.
func WriteCSV(w io.Writer, events []Event) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range events {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			string(e.Person.Kind()),
			strconv.FormatInt(e.Person.ID(), 10),
			string(e.Type),
			e.Time.Format(time.RFC3339),
			e.WorkdayDate,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
