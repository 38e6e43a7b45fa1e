package newsletter

import (
	"strconv"
	"strings"
	"unicode"
)

// Glyphs the newsletters use between the date and time parts of a
// schedule line.
var separators = []string{"•", "–", "-"}

// ParseBlock runs the schedule grammar over every line of a film block.
// Recognition is per line and all-or-nothing: a line either parses as a
// complete schedule entry or passes through untouched as a Text segment.
// Returns ErrNoEntries when not a single line parses.
func ParseBlock(block FilmBlock) ([]Segment, error) {
	var segments []Segment
	entries := 0

	for _, raw := range block.Lines {
		line := strings.TrimSpace(normalizeSpaces(raw))
		if line == "" {
			continue
		}

		if entry, ok := parseEntry(line); ok {
			segments = append(segments, entry)
			entries++
		} else {
			segments = append(segments, Text{Value: line})
		}
	}

	if entries == 0 {
		return segments, ErrNoEntries
	}

	return segments, nil
}

// parseEntry matches one line against the schedule grammar:
//
//	[weekday] day [month] [separator] "ore" HH:MM ["e" "ore" HH:MM] [details]
//
// The weekday and month are matched case-insensitively. The second
// showtime may follow the first without an intervening space, as in
// "ore 20:30e ore 22:45".
func parseEntry(line string) (Entry, bool) {
	var entry Entry
	rest := line

	if word, tail, ok := takeWord(rest); ok && isWeekday(strings.ToLower(word)) {
		entry.Weekday = word
		rest = tail
	}

	day, tail, ok := takeDay(rest)
	if !ok {
		return Entry{}, false
	}
	entry.Day = day
	rest = tail

	if word, tail, ok := takeWord(rest); ok {
		if month, found := monthByName(strings.ToLower(word)); found {
			entry.Month = month
			rest = tail
		}
	}

	rest = skipSeparator(rest)

	first, tail, ok := takeShowtime(rest)
	if !ok {
		return Entry{}, false
	}
	entry.Times = []Clock{first}
	rest = tail

	if second, tail, ok := takeSecondShowtime(rest); ok {
		entry.Times = append(entry.Times, second)
		rest = tail
	}

	entry.Details = strings.TrimSpace(rest)

	return entry, true
}

// normalizeSpaces maps the non-breaking space variants found in mail
// HTML onto plain spaces.
func normalizeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ':
			return ' '
		}
		return r
	}, s)
}

// takeWord consumes the leading run of letters, skipping spaces first.
func takeWord(s string) (string, string, bool) {
	s = strings.TrimLeft(s, " ")
	end := len(s)
	for i, r := range s {
		if !unicode.IsLetter(r) {
			end = i
			break
		}
	}
	if end == 0 {
		return "", s, false
	}
	return s[:end], s[end:], true
}

// takeDay consumes a one or two digit day number.
func takeDay(s string) (int, string, bool) {
	s = strings.TrimLeft(s, " ")
	end := len(s)
	for i, r := range s {
		if r < '0' || r > '9' {
			end = i
			break
		}
	}
	if end == 0 || end > 2 {
		return 0, s, false
	}

	day, err := strconv.Atoi(s[:end])
	if err != nil || day < 1 || day > 31 {
		return 0, s, false
	}

	return day, s[end:], true
}

// skipSeparator drops one optional separator glyph.
func skipSeparator(s string) string {
	s = strings.TrimLeft(s, " ")
	for _, sep := range separators {
		if strings.HasPrefix(s, sep) {
			return s[len(sep):]
		}
	}
	return s
}

// takeShowtime consumes "ore HH:MM".
func takeShowtime(s string) (Clock, string, bool) {
	word, rest, ok := takeWord(s)
	if !ok || !strings.EqualFold(word, "ore") {
		return Clock{}, s, false
	}
	return takeClock(rest)
}

// takeSecondShowtime consumes the "e ore HH:MM" tail of a double showing.
func takeSecondShowtime(s string) (Clock, string, bool) {
	word, rest, ok := takeWord(s)
	if !ok || !strings.EqualFold(word, "e") {
		return Clock{}, s, false
	}

	clock, rest, ok := takeShowtime(rest)
	if !ok {
		return Clock{}, s, false
	}

	return clock, rest, true
}

// takeClock consumes HH:MM with a one or two digit hour and exactly two
// minute digits.
func takeClock(s string) (Clock, string, bool) {
	s = strings.TrimLeft(s, " ")

	end := len(s)
	for i, r := range s {
		if r < '0' || r > '9' {
			end = i
			break
		}
	}
	if end == 0 || end > 2 {
		return Clock{}, s, false
	}
	hour, _ := strconv.Atoi(s[:end])

	rest := s[end:]
	if !strings.HasPrefix(rest, ":") {
		return Clock{}, s, false
	}
	rest = rest[1:]

	if len(rest) < 2 {
		return Clock{}, s, false
	}
	for _, r := range rest[:2] {
		if r < '0' || r > '9' {
			return Clock{}, s, false
		}
	}
	minute, _ := strconv.Atoi(rest[:2])

	if hour > 23 || minute > 59 {
		return Clock{}, s, false
	}

	return Clock{Hour: hour, Minute: minute}, rest[2:], true
}
