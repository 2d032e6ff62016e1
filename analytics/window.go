package analytics

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned for windows with start after end or with
// unparseable date parameters. It always surfaces before any data access.
var ErrInvalidRange = errors.New("invalid date range")

const dateLayout = "2006-01-02"

// Window is an inclusive calendar-date range in UTC. End covers the whole
// end day, so a timestamp at 23:59:59 on the end date is in the window.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow builds a Window from ISO calendar dates.
func ParseWindow(startDate, endDate string) (Window, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, time.UTC)
	if err != nil {
		return Window{}, fmt.Errorf("%w: bad start_date %q", ErrInvalidRange, startDate)
	}
	end, err := time.ParseInLocation(dateLayout, endDate, time.UTC)
	if err != nil {
		return Window{}, fmt.Errorf("%w: bad end_date %q", ErrInvalidRange, endDate)
	}
	if start.After(end) {
		return Window{}, fmt.Errorf("%w: start_date %s after end_date %s", ErrInvalidRange, startDate, endDate)
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether t falls inside the window, end day inclusive.
func (w Window) Contains(t time.Time) bool {
	u := t.UTC()
	return !u.Before(w.Start) && u.Before(w.End.AddDate(0, 0, 1))
}

// Days is the number of calendar days the window spans.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// StartDate returns the start date in ISO form.
func (w Window) StartDate() string {
	return w.Start.Format(dateLayout)
}

// EndDate returns the end date in ISO form.
func (w Window) EndDate() string {
	return w.End.Format(dateLayout)
}
