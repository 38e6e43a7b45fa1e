package newsletter

import (
	"errors"
	"testing"
	"time"
)

var rome = mustLoadLocation("Europe/Rome")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestNormalizeExplicitMonth(t *testing.T) {
	n := NewNormalizer(rome)
	ref := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

	segments := []Segment{
		Entry{Day: 15, Month: time.January, Times: []Clock{{20, 30}, {22, 45}}, Details: "dettagli"},
	}

	showings, errs := n.Run("Il Gattopardo", segments, ref)
	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got: %v", errs)
	}
	if len(showings) != 1 {
		t.Fatalf("Expected 1 showing, got %d", len(showings))
	}

	s := showings[0]
	if s.Title != "Il Gattopardo" {
		t.Errorf("Expected title to carry over, got '%s'", s.Title)
	}
	want := time.Date(2024, time.January, 15, 0, 0, 0, 0, rome)
	if !s.Date.Equal(want) {
		t.Errorf("Expected date %v, got %v", want, s.Date)
	}
	// A double showing stays one record with both times
	if len(s.Times) != 2 {
		t.Errorf("Expected 2 times on one showing, got %d", len(s.Times))
	}
}

func TestNormalizeMonthInheritance(t *testing.T) {
	n := NewNormalizer(rome)
	ref := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	segments := []Segment{
		Entry{Day: 5, Month: time.March, Times: []Clock{{20, 0}}},
		Entry{Day: 7, Times: []Clock{{20, 0}}},
		Entry{Day: 12, Month: time.April, Times: []Clock{{20, 0}}},
		Entry{Day: 14, Times: []Clock{{20, 0}}},
	}

	showings, errs := n.Run("Film", segments, ref)
	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got: %v", errs)
	}

	wantMonths := []time.Month{time.March, time.March, time.April, time.April}
	for i, want := range wantMonths {
		if showings[i].Date.Month() != want {
			t.Errorf("Entry %d: expected month %v, got %v", i, want, showings[i].Date.Month())
		}
	}
}

func TestNormalizeInheritFollowingMonth(t *testing.T) {
	n := NewNormalizer(rome)
	ref := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	// Entries before the first explicit month inherit it
	segments := []Segment{
		Entry{Day: 3, Times: []Clock{{20, 0}}},
		Entry{Day: 5, Month: time.April, Times: []Clock{{20, 0}}},
	}

	showings, errs := n.Run("Film", segments, ref)
	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got: %v", errs)
	}
	if showings[0].Date.Month() != time.April {
		t.Errorf("Expected leading entry to inherit April, got %v", showings[0].Date.Month())
	}
}

func TestNormalizeFallbackToReferenceMonth(t *testing.T) {
	n := NewNormalizer(rome)
	ref := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	segments := []Segment{
		Entry{Day: 20, Times: []Clock{{21, 0}}},
	}

	showings, errs := n.Run("Film", segments, ref)
	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got: %v", errs)
	}
	if showings[0].Date.Month() != time.June {
		t.Errorf("Expected reference month June, got %v", showings[0].Date.Month())
	}
}

func TestNormalizeYearRollover(t *testing.T) {
	n := NewNormalizer(rome)
	ref := time.Date(2023, time.December, 28, 12, 0, 0, 0, time.UTC)

	segments := []Segment{
		Entry{Day: 2, Month: time.January, Times: []Clock{{21, 0}}},
	}

	showings, errs := n.Run("Film", segments, ref)
	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got: %v", errs)
	}

	want := time.Date(2024, time.January, 2, 0, 0, 0, 0, rome)
	if !showings[0].Date.Equal(want) {
		t.Errorf("Expected January date to roll into 2024, got %v", showings[0].Date)
	}
}

func TestNormalizeRecentPastStaysInYear(t *testing.T) {
	n := NewNormalizer(rome)
	ref := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	// Within the tolerance window the date stays in the reference year
	segments := []Segment{
		Entry{Day: 7, Month: time.June, Times: []Clock{{21, 0}}},
	}

	showings, errs := n.Run("Film", segments, ref)
	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got: %v", errs)
	}
	if showings[0].Date.Year() != 2024 {
		t.Errorf("Expected date to stay in 2024, got %v", showings[0].Date)
	}
}

func TestNormalizeMalformedDate(t *testing.T) {
	n := NewNormalizer(rome)
	ref := time.Date(2024, time.November, 10, 12, 0, 0, 0, time.UTC)

	segments := []Segment{
		Entry{Day: 31, Month: time.November, Times: []Clock{{21, 0}}},
		Entry{Day: 30, Month: time.November, Times: []Clock{{21, 0}}},
	}

	showings, errs := n.Run("Film", segments, ref)
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got: %v", errs)
	}

	var malformed *MalformedDateError
	if !errors.As(errs[0], &malformed) {
		t.Fatalf("Expected *MalformedDateError, got %T", errs[0])
	}
	if malformed.Day != 31 || malformed.Month != time.November {
		t.Errorf("Expected error for 31 novembre, got %+v", malformed)
	}

	// The valid sibling entry still resolves
	if len(showings) != 1 || showings[0].Date.Day() != 30 {
		t.Errorf("Expected the valid entry to survive, got %+v", showings)
	}
}

func TestNormalizeIgnoresTextSegments(t *testing.T) {
	n := NewNormalizer(rome)
	ref := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

	segments := []Segment{
		Text{Value: "Versione restaurata"},
		Entry{Day: 10, Month: time.May, Times: []Clock{{20, 0}}},
		Text{Value: "Ingresso ridotto"},
	}

	showings, errs := n.Run("Film", segments, ref)
	if len(errs) != 0 {
		t.Fatalf("Expected no errors, got: %v", errs)
	}
	if len(showings) != 1 {
		t.Errorf("Expected 1 showing, got %d", len(showings))
	}
}

func TestShowingKeyStability(t *testing.T) {
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, rome)

	a := Showing{Title: "Il Gattopardo", Date: date, Times: []Clock{{20, 30}}, Details: "versione restaurata"}
	b := Showing{Title: "IL  GATTOPARDO", Date: date, Times: []Clock{{20, 30}}, Details: " Versione   Restaurata "}

	if a.Key() != b.Key() {
		t.Errorf("Expected case and whitespace jitter to produce the same key:\n%s\n%s", a.Key(), b.Key())
	}

	c := Showing{Title: "Il Gattopardo", Date: date, Times: []Clock{{22, 45}}, Details: "versione restaurata"}
	if a.Key() == c.Key() {
		t.Error("Expected different times to produce different keys")
	}

	d := Showing{Title: "Il Gattopardo", Date: date.AddDate(0, 0, 1), Times: []Clock{{20, 30}}, Details: "versione restaurata"}
	if a.Key() == d.Key() {
		t.Error("Expected different dates to produce different keys")
	}
}
