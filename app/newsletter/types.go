package newsletter

import (
	"errors"
	"fmt"
	"time"
)

// FilmBlock is one film section of a newsletter: the heading text and the
// raw lines beneath it, in document order.
type FilmBlock struct {
	Title string
	Lines []string
}

// Segment is one parsed line of a film block. Lines matching the schedule
// grammar become Entry values, everything else passes through as Text.
type Segment interface {
	segment()
}

// Entry is a recognized schedule line. Month is zero when the line named
// no month; Weekday is kept as written for diagnostics only.
type Entry struct {
	Weekday string
	Day     int
	Month   time.Month
	Times   []Clock
	Details string
}

// Text is a line the grammar does not recognize, passed through untouched.
type Text struct {
	Value string
}

func (Entry) segment() {}
func (Text) segment()  {}

// Clock is a wall-clock showtime.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Showing is a fully resolved screening: one calendar date carrying one
// or two showtimes. Date is midnight in the venue timezone.
type Showing struct {
	Title   string
	Date    time.Time
	Times   []Clock
	Details string
}

// ErrNoEntries is returned when no line of a film block matches the
// schedule grammar.
var ErrNoEntries = errors.New("no schedule entries found in block")

// MalformedDateError reports an entry whose day does not exist in the
// resolved month.
type MalformedDateError struct {
	Day   int
	Month time.Month
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("day %d does not exist in %s", e.Day, MonthName(e.Month))
}
