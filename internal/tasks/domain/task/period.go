package task

import "time"

// Window is a half-open time interval [Start, End) used for period
// membership checks.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// DayWindow returns the calendar day containing now.
func DayWindow(now time.Time) Window {
	start := startOfDay(now)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow returns the Sunday-aligned week containing now.
func WeekWindow(now time.Time) Window {
	start := startOfDay(now.AddDate(0, 0, -int(now.Weekday())))
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthWindow returns the calendar month containing now.
func MonthWindow(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// WindowFor returns the current period window for a category.
func WindowFor(category Category, now time.Time) Window {
	switch category {
	case CategoryWeekly:
		return WeekWindow(now)
	case CategoryMonthly:
		return MonthWindow(now)
	default:
		return DayWindow(now)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
