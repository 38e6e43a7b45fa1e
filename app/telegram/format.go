package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/giovanniberti/cartellone/app/newsletter"
)

// FormatShowing renders a showing as the announcement message posted to
// the venue channel, in Telegram HTML.
func FormatShowing(s newsletter.Showing) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(s.Title))
	fmt.Fprintf(&b, "%s %d %s\n",
		newsletter.WeekdayName(s.Date.Weekday()),
		s.Date.Day(),
		newsletter.MonthName(s.Date.Month()))

	times := make([]string, 0, len(s.Times))
	for _, t := range s.Times {
		times = append(times, "ore "+t.String())
	}
	b.WriteString(strings.Join(times, " e "))

	if s.Details != "" {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(s.Details))
	}

	return b.String()
}
