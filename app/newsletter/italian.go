package newsletter

import "time"

// Italian calendar names as the newsletters write them. Matching is
// case-insensitive; the unaccented weekday spellings show up in older
// editions.

var monthsByName = map[string]time.Month{
	"gennaio":   time.January,
	"febbraio":  time.February,
	"marzo":     time.March,
	"aprile":    time.April,
	"maggio":    time.May,
	"giugno":    time.June,
	"luglio":    time.July,
	"agosto":    time.August,
	"settembre": time.September,
	"ottobre":   time.October,
	"novembre":  time.November,
	"dicembre":  time.December,
}

var weekdaysByName = map[string]bool{
	"lunedì":    true,
	"lunedi":    true,
	"martedì":   true,
	"martedi":   true,
	"mercoledì": true,
	"mercoledi": true,
	"giovedì":   true,
	"giovedi":   true,
	"venerdì":   true,
	"venerdi":   true,
	"sabato":    true,
	"domenica":  true,
}

var monthNames = [...]string{
	time.January:   "gennaio",
	time.February:  "febbraio",
	time.March:     "marzo",
	time.April:     "aprile",
	time.May:       "maggio",
	time.June:      "giugno",
	time.July:      "luglio",
	time.August:    "agosto",
	time.September: "settembre",
	time.October:   "ottobre",
	time.November:  "novembre",
	time.December:  "dicembre",
}

var weekdayNames = [...]string{
	time.Sunday:    "domenica",
	time.Monday:    "lunedì",
	time.Tuesday:   "martedì",
	time.Wednesday: "mercoledì",
	time.Thursday:  "giovedì",
	time.Friday:    "venerdì",
	time.Saturday:  "sabato",
}

// MonthName returns the Italian name of m, or an empty string for the
// zero month.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m]
}

// WeekdayName returns the Italian name of d.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

func monthByName(name string) (time.Month, bool) {
	m, ok := monthsByName[name]
	return m, ok
}

func isWeekday(name string) bool {
	return weekdaysByName[name]
}
