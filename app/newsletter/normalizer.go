package newsletter

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// yearRolloverTolerance is how far in the past a resolved date may fall
// before the year rolls forward. Newsletters sent late in December list
// January dates; a week of slack covers editions describing the current
// week.
const yearRolloverTolerance = 7 * 24 * time.Hour

// Normalizer resolves parsed schedule entries into calendar showings.
// Dates are anchored to the venue timezone.
type Normalizer struct {
	location *time.Location
}

func NewNormalizer(location *time.Location) *Normalizer {
	if location == nil {
		location = time.UTC
	}
	return &Normalizer{location: location}
}

// Run resolves every Entry of a block into a Showing against the given
// reference time (when the newsletter was received).
//
// Month inheritance is a single left-to-right fold: an entry without an
// explicit month takes the last explicit month seen before it; entries
// preceding the first explicit month take that first explicit month; a
// block naming no month at all takes the reference month. Year is the
// reference year, rolled forward when the resolved date would fall more
// than a week before the reference day.
//
// Entries whose day does not exist in the resolved month yield a
// *MalformedDateError and are skipped; sibling entries are unaffected.
// Text segments carry no schedule data and are ignored.
func (n *Normalizer) Run(title string, segments []Segment, ref time.Time) ([]Showing, []error) {
	ref = ref.In(n.location)

	firstMonth := firstExplicitMonth(segments)
	if firstMonth == 0 {
		firstMonth = ref.Month()
	}

	var showings []Showing
	var errs []error

	lastMonth := time.Month(0)
	for _, segment := range segments {
		entry, ok := segment.(Entry)
		if !ok {
			continue
		}

		month := entry.Month
		if month == 0 {
			month = lastMonth
			if month == 0 {
				month = firstMonth
			}
		} else {
			lastMonth = month
		}

		date, err := n.resolveDate(entry.Day, month, ref)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		showings = append(showings, Showing{
			Title:   title,
			Date:    date,
			Times:   entry.Times,
			Details: entry.Details,
		})
	}

	return showings, errs
}

func (n *Normalizer) resolveDate(day int, month time.Month, ref time.Time) (time.Time, error) {
	date, err := n.makeDate(ref.Year(), month, day)
	if err != nil {
		return time.Time{}, err
	}

	if ref.Sub(date) > yearRolloverTolerance {
		date, err = n.makeDate(ref.Year()+1, month, day)
		if err != nil {
			return time.Time{}, err
		}
	}

	return date, nil
}

// makeDate builds midnight of the given day in the venue timezone,
// rejecting days the month does not have (time.Date would silently
// normalize them into the next month).
func (n *Normalizer) makeDate(year int, month time.Month, day int) (time.Time, error) {
	date := time.Date(year, month, day, 0, 0, 0, 0, n.location)
	if date.Day() != day || date.Month() != month {
		return time.Time{}, &MalformedDateError{Day: day, Month: month}
	}
	return date, nil
}

func firstExplicitMonth(segments []Segment) time.Month {
	for _, segment := range segments {
		if entry, ok := segment.(Entry); ok && entry.Month != 0 {
			return entry.Month
		}
	}
	return 0
}

var keyCaser = cases.Fold()

// Key is the dedup fingerprint of a showing: a SHA-256 over the
// canonical form of title, date, times and details. Case and whitespace
// jitter between newsletter sends produces the same key.
func (s Showing) Key() string {
	parts := []string{
		canonicalText(s.Title),
		s.Date.Format("2006-01-02"),
	}
	for _, t := range s.Times {
		parts = append(parts, t.String())
	}
	parts = append(parts, canonicalText(s.Details))

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

// canonicalText case-folds and collapses all whitespace runs to single
// spaces.
func canonicalText(s string) string {
	return strings.Join(strings.Fields(keyCaser.String(s)), " ")
}
