package tasks

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var relativeDays = map[string]int{
	"heute":    0,
	"today":    0,
	"morgen":   1,
	"tomorrow": 1,
}

var weekdayNames = map[string]time.Weekday{
	"montag":     time.Monday,
	"monday":     time.Monday,
	"dienstag":   time.Tuesday,
	"tuesday":    time.Tuesday,
	"mittwoch":   time.Wednesday,
	"wednesday":  time.Wednesday,
	"donnerstag": time.Thursday,
	"thursday":   time.Thursday,
	"freitag":    time.Friday,
	"friday":     time.Friday,
	"samstag":    time.Saturday,
	"saturday":   time.Saturday,
	"sonntag":    time.Sunday,
	"sunday":     time.Sunday,
}

var dateLayouts = []string{
	dateLayout,
	"02.01.2006",
	"2.1.2006",
	"01/02/2006",
}

// NormalizeWhen maps a natural-language date expression to YYYY-MM-DD.
// Weekday names resolve to the next occurrence strictly after now: asking for
// "Montag" on a Monday means next week, never today. Input that no rule and
// no layout understands is returned verbatim, never an error.
func NormalizeWhen(input string, now time.Time) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	key := strings.ToLower(trimmed)

	if days, ok := relativeDays[key]; ok {
		return now.AddDate(0, 0, days).Format(dateLayout)
	}

	if wd, ok := weekdayNames[key]; ok {
		delta := (int(wd) - int(now.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return now.AddDate(0, 0, delta).Format(dateLayout)
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format(dateLayout)
		}
	}

	// Day.month without a year is common in German chat ("am 24.12.").
	short := strings.TrimSuffix(trimmed, ".")
	if parsed, err := time.Parse("2.1.2006", fmt.Sprintf("%s.%d", short, now.Year())); err == nil {
		return parsed.Format(dateLayout)
	}

	return trimmed
}
