package task

import (
	"errors"
	"strings"
)

var ErrInvalidCategory = errors.New("category must be daily, weekly or monthly")

// Category determines a task's deadline window, point value and
// overdue penalty.
type Category string

const (
	CategoryDaily   Category = "daily"
	CategoryWeekly  Category = "weekly"
	CategoryMonthly Category = "monthly"
)

// ParseCategory parses a user-supplied category string.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryDaily:
		return CategoryDaily, nil
	case CategoryWeekly:
		return CategoryWeekly, nil
	case CategoryMonthly:
		return CategoryMonthly, nil
	default:
		return "", ErrInvalidCategory
	}
}

func (c Category) String() string { return string(c) }

// IsValid reports whether the category is one of the known values.
func (c Category) IsValid() bool {
	return c == CategoryDaily || c == CategoryWeekly || c == CategoryMonthly
}
