package aurelius

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aurelius-bot/aurelius/internal/storage"
)

// Weekdays lists the schedule columns in Monday-first order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// WeekStart returns Monday 00:00 of the week containing t, in t's location.
// Sunday belongs to the week that started six days earlier.
func WeekStart(t time.Time) time.Time {
	offset := 1 - int(t.Weekday())
	if t.Weekday() == time.Sunday {
		offset = -6
	}
	d := t.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}

// WeekEnd returns Sunday 23:59:59.999 of the week starting at start.
func WeekEnd(start time.Time) time.Time {
	d := start.AddDate(0, 0, 6)
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), start.Location())
}

// ParseClock parses a 24-hour HH:MM time.
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(s, ":")
	if ok {
		hour, err = strconv.Atoi(strings.TrimSpace(h))
		if err == nil {
			minute, err = strconv.Atoi(strings.TrimSpace(m))
		}
	}
	if !ok || err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: time %q is not HH:MM", storage.ErrInvalidValue, s)
	}
	return hour, minute, nil
}

// NextOccurrence returns the next instant after now that falls on day at
// hour:minute. A time earlier today on the same weekday moves a week ahead.
func NextOccurrence(now time.Time, day string, hour, minute int) (time.Time, error) {
	target, ok := weekdayByName[strings.ToLower(day)]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: day %q", storage.ErrInvalidValue, day)
	}
	ahead := (int(target) - int(now.Weekday()) + 7) % 7
	d := now.AddDate(0, 0, ahead)
	next := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next, nil
}
