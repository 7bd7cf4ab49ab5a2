package series

import "time"

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday starting the timestamp's week, UTC midnight.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// MonthStart returns the first day of the timestamp's month, UTC midnight.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DayKey formats a day bucket key, YYYY-MM-DD.
func DayKey(t time.Time) string { return Day(t).Format("2006-01-02") }

// MonthKey formats a month bucket key, YYYY-MM. Zero-padded, so keys sort
// chronologically as strings.
func MonthKey(t time.Time) string { return t.UTC().Format("2006-01") }

// WeekdayIndex maps a timestamp to a Monday-first weekday index in [0, 6].
func WeekdayIndex(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}
