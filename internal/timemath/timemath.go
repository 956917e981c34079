// Package timemath does local wall-clock arithmetic for the sleep schedule:
// "today at 22:30", the next occurrence of the alarm, minutes elapsed since
// the last check-in. All calendar math happens in one configured location
// so the date and time of day always agree with each other.
package timemath

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata" // configured zones resolve on hosts without zoneinfo

	"github.com/sleepsheep/sheep/internal/clock"
	"github.com/sleepsheep/sheep/internal/domain"
)

// Layouts used across the engine.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
	ISOFormat  = "2006-01-02T15:04:05.000Z07:00"
)

var hhmmPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])(?::([0-5][0-9]))?$`)

// TimeMath computes local dates and times from an injected clock.
type TimeMath struct {
	clock clock.Clock
	loc   *time.Location
}

// New creates a TimeMath. A nil location means time.Local.
func New(c clock.Clock, loc *time.Location) *TimeMath {
	if loc == nil {
		loc = time.Local
	}
	return &TimeMath{clock: c, loc: loc}
}

// LoadLocation resolves an IANA zone name; "" and "Local" mean time.Local.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// Location returns the configured location.
func (m *TimeMath) Location() *time.Location { return m.loc }

// Now returns the clock's time in the configured location.
func (m *TimeMath) Now() time.Time {
	return m.clock.Now().In(m.loc)
}

// LocalISONow renders now with the local offset, so parsing it back yields
// the local wall-clock fields.
func (m *TimeMath) LocalISONow() string {
	return m.Now().Format(ISOFormat)
}

// LocalDateToday returns today's local date as YYYY-MM-DD.
func (m *TimeMath) LocalDateToday() string {
	return m.Now().Format(DateFormat)
}

// LocalTimeNow returns the local time of day as HH:MM.
func (m *TimeMath) LocalTimeNow() string {
	return m.Now().Format(TimeFormat)
}

// TodayAt returns today's local date at the given time of day.
func (m *TimeMath) TodayAt(hhmm string) (time.Time, error) {
	return At(m.Now(), hhmm)
}

// NextOccurrenceAt returns TodayAt(hhmm) if it is still in the future,
// otherwise the same time tomorrow.
func (m *TimeMath) NextOccurrenceAt(hhmm string) (time.Time, error) {
	t, err := m.TodayAt(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	if !t.After(m.Now()) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

// MinutesElapsedSince returns the minutes between a and now, or +Inf when a
// is nil so "has enough time passed" checks succeed for a never-set time.
func (m *TimeMath) MinutesElapsedSince(a *time.Time) float64 {
	if a == nil {
		return math.Inf(1)
	}
	return MinutesBetween(m.clock.Now(), *a)
}

// HasMinutesPassed reports whether at least minutes have elapsed since a.
func (m *TimeMath) HasMinutesPassed(a *time.Time, minutes float64) bool {
	return m.MinutesElapsedSince(a) >= minutes
}

// IsNearBedtime reports whether now is within tolerance of tonight's bedtime.
func (m *TimeMath) IsNearBedtime(bedtime string, tolerance time.Duration) (bool, error) {
	now := m.Now()
	target, err := NearestOccurrence(now, bedtime)
	if err != nil {
		return false, err
	}
	return absDuration(now.Sub(target)) <= tolerance, nil
}

// ─── Pure helpers ───────────────────────────────────────────────────────────

// MinutesBetween returns the absolute distance between a and b in minutes.
func MinutesBetween(a, b time.Time) float64 {
	return math.Abs(a.Sub(b).Minutes())
}

// ParseHHMM parses "H:MM", "HH:MM" or "HH:MM:SS" into hour and minute.
// Seconds are accepted for stored schedules and ignored.
func ParseHHMM(s string) (hour, minute int, err error) {
	parts := hhmmPattern.FindStringSubmatch(s)
	if parts == nil {
		return 0, 0, fmt.Errorf("%w: %q", domain.ErrInvalidTimeFormat, s)
	}
	hour, _ = strconv.Atoi(parts[1])
	minute, _ = strconv.Atoi(parts[2])
	return hour, minute, nil
}

// IsValidHHMM reports whether s is an accepted time of day.
func IsValidHHMM(s string) bool {
	return hhmmPattern.MatchString(s)
}

// At returns day's calendar date (in day's location) at the given time of day.
func At(day time.Time, hhmm string) (time.Time, error) {
	h, mm, err := ParseHHMM(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, h, mm, 0, 0, day.Location()), nil
}

// NearestOccurrence returns the occurrence of hhmm on ref's day, the day
// before or the day after, whichever is closest to ref. A bedtime of 00:10
// against a 23:30 target is therefore 40 minutes late, not 23 hours early.
func NearestOccurrence(ref time.Time, hhmm string) (time.Time, error) {
	base, err := At(ref, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	best := base
	for _, off := range []int{-1, 1} {
		cand := base.AddDate(0, 0, off)
		if absDuration(ref.Sub(cand)) < absDuration(ref.Sub(best)) {
			best = cand
		}
	}
	return best, nil
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDateFormat, s)
	}
	return t, nil
}

// FormatDate renders t's local calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// DaysBetween returns the number of calendar days from one date to another.
// Both are parsed in UTC so DST transitions cannot skew the count.
func DaysBetween(from, to string) (int, error) {
	a, err := ParseDate(from)
	if err != nil {
		return 0, err
	}
	b, err := ParseDate(to)
	if err != nil {
		return 0, err
	}
	return int(b.Sub(a).Hours() / 24), nil
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateFormat), nil
}

// SleepDurationHours returns the hours between bed and wake, assuming wake
// is the following morning when it falls before bed on the clock.
func SleepDurationHours(bed, wake time.Time) float64 {
	if wake.Before(bed) {
		wake = wake.AddDate(0, 0, 1)
	}
	return wake.Sub(bed).Hours()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
