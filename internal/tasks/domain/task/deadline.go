package task

import "time"

// Deadline derives a task's deadline from its category and creation
// time, in the creation time's location.
//
//   - daily: end of the creation day
//   - weekly: end of the upcoming Sunday (a full week when created on
//     a Sunday)
//   - monthly: end of the last day of the creation month
func Deadline(category Category, createdAt time.Time) time.Time {
	switch category {
	case CategoryDaily:
		return endOfDay(createdAt)
	case CategoryWeekly:
		daysUntilSunday := 7 - int(createdAt.Weekday())
		return endOfDay(createdAt.AddDate(0, 0, daysUntilSunday))
	case CategoryMonthly:
		firstOfMonth := time.Date(createdAt.Year(), createdAt.Month(), 1, 0, 0, 0, 0, createdAt.Location())
		lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
		return endOfDay(lastOfMonth)
	default:
		return endOfDay(createdAt)
	}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
