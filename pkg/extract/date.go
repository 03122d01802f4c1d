package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Review dates are rendered as "<day> <genitive month name> <year>" in
// either site locale.
var monthsByName = map[string]time.Month{
	// Ukrainian
	"січня": time.January, "лютого": time.February, "березня": time.March,
	"квітня": time.April, "травня": time.May, "червня": time.June,
	"липня": time.July, "серпня": time.August, "вересня": time.September,
	"жовтня": time.October, "листопада": time.November, "грудня": time.December,
	// Russian
	"января": time.January, "февраля": time.February, "марта": time.March,
	"апреля": time.April, "мая": time.May, "июня": time.June,
	"июля": time.July, "августа": time.August, "сентября": time.September,
	"октября": time.October, "ноября": time.November, "декабря": time.December,
}

var reviewDatePattern = regexp.MustCompile(`^(\d{1,2})\s+([^\d]+?)\s+(\d{4})`)

// ParseReviewDate parses a localized raw date string like "15 травня 2024".
// Returns false when the string does not match or names an unknown month.
func ParseReviewDate(raw string) (time.Time, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	m := reviewDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := monthsByName[strings.TrimSpace(m[2])]
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, false
	}
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}
