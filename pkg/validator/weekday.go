package validator

import (
	"fmt"
	"strings"
)

// Weekdays are the days a menu covers, in offset order from week_start
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// ParseWeekday resolves a full or three-letter weekday name, in any case,
// to its canonical name and its offset from Monday
func ParseWeekday(s string) (string, int, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	if needle == "" {
		return "", 0, fmt.Errorf("day cannot be empty")
	}
	for i, day := range Weekdays {
		lower := strings.ToLower(day)
		if needle == lower || needle == lower[:3] {
			return day, i, nil
		}
	}
	return "", 0, fmt.Errorf("invalid day %q, expected Monday through Friday", s)
}
