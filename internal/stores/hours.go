package stores

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
)

// HoursClosed marks a day with no open interval.
const HoursClosed = "closed"

// dayInterval is an open/close pair in minutes since midnight.
type dayInterval struct {
	open   int
	close  int
	closed bool
}

// ParseHours parses a day's hours string: either "closed" or "HH:MM-HH:MM".
// An interval whose close is earlier than its open spans midnight.
func ParseHours(value string) (dayInterval, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" || trimmed == HoursClosed {
		return dayInterval{closed: true}, nil
	}

	parts := strings.SplitN(trimmed, "-", 2)
	if len(parts) != 2 {
		return dayInterval{}, fmt.Errorf("invalid hours %q (expected HH:MM-HH:MM or closed)", value)
	}
	open, err := parseClock(parts[0])
	if err != nil {
		return dayInterval{}, fmt.Errorf("invalid hours %q: %w", value, err)
	}
	close, err := parseClock(parts[1])
	if err != nil {
		return dayInterval{}, fmt.Errorf("invalid hours %q: %w", value, err)
	}
	return dayInterval{open: open, close: close}, nil
}

// ValidateHours reports whether the hours string is well-formed.
func ValidateHours(value string) error {
	_, err := ParseHours(value)
	return err
}

// IsOpenAt reports whether the store is open at the given instant, using the
// hours string of that instant's weekday.
func IsOpenAt(store models.Store, at time.Time) bool {
	return OpenAt(store.HoursFor(at.Weekday()), at)
}

// OpenAt reports whether a single day's hours string covers the given
// instant. Overnight intervals such as "22:00-06:00" count the
// early-morning tail as part of the same weekday entry. Malformed hours
// read as closed.
func OpenAt(hours string, at time.Time) bool {
	interval, err := ParseHours(hours)
	if err != nil || interval.closed {
		return false
	}

	minutes := at.Hour()*60 + at.Minute()
	if interval.close < interval.open {
		return minutes >= interval.open || minutes < interval.close
	}
	return minutes >= interval.open && minutes < interval.close
}

func parseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad clock value %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("bad hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("bad minute in %q", value)
	}
	return hour*60 + minute, nil
}
