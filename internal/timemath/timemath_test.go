package timemath_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sleepsheep/sheep/internal/clock"
	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/timemath"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("timezone %s unavailable: %v", name, err)
	}
	return loc
}

// ═══════════════════════════════════════════════════════════════════════════
// Local date and time
// ═══════════════════════════════════════════════════════════════════════════

func TestLocalDateToday_UsesConfiguredZone(t *testing.T) {
	tokyo := mustLoc(t, "Asia/Tokyo")
	// 20:00 UTC on July 1 is 05:00 on July 2 in Tokyo.
	c := clock.NewFixed(time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC))
	m := timemath.New(c, tokyo)

	if got := m.LocalDateToday(); got != "2025-07-02" {
		t.Errorf("expected 2025-07-02, got %s", got)
	}
	if got := m.LocalTimeNow(); got != "05:00" {
		t.Errorf("expected 05:00, got %s", got)
	}
}

func TestLocalISONow_RoundTripsWallClock(t *testing.T) {
	ny := mustLoc(t, "America/New_York")
	c := clock.NewFixed(time.Date(2025, 1, 15, 3, 30, 0, 0, time.UTC))
	m := timemath.New(c, ny)

	parsed, err := time.Parse(timemath.ISOFormat, m.LocalISONow())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Hour() != 22 || parsed.Day() != 14 {
		t.Errorf("expected local 22:30 on the 14th, got %v", parsed)
	}
}

func TestTodayAt(t *testing.T) {
	c := clock.NewFixed(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	m := timemath.New(c, time.UTC)

	got, err := m.TodayAt("22:30")
	if err != nil {
		t.Fatalf("TodayAt: %v", err)
	}
	want := time.Date(2025, 7, 1, 22, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := m.TodayAt("25:00"); !errors.Is(err, domain.ErrInvalidTimeFormat) {
		t.Errorf("expected ErrInvalidTimeFormat, got %v", err)
	}
}

func TestNextOccurrenceAt(t *testing.T) {
	c := clock.NewFixed(time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	m := timemath.New(c, time.UTC)

	later, _ := m.NextOccurrenceAt("22:00")
	if later.Day() != 1 {
		t.Errorf("future time today should stay today, got %v", later)
	}
	earlier, _ := m.NextOccurrenceAt("07:00")
	if earlier.Day() != 2 {
		t.Errorf("past time should roll to tomorrow, got %v", earlier)
	}
	exact, _ := m.NextOccurrenceAt("12:00")
	if exact.Day() != 2 {
		t.Errorf("current minute should roll to tomorrow, got %v", exact)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Minute arithmetic
// ═══════════════════════════════════════════════════════════════════════════

func TestMinutesBetween_IsAbsolute(t *testing.T) {
	a := time.Date(2025, 7, 1, 22, 0, 0, 0, time.UTC)
	b := a.Add(90 * time.Second)
	if got := timemath.MinutesBetween(a, b); got != 1.5 {
		t.Errorf("expected 1.5, got %v", got)
	}
	if got := timemath.MinutesBetween(b, a); got != 1.5 {
		t.Errorf("expected 1.5 reversed, got %v", got)
	}
}

func TestMinutesElapsedSince(t *testing.T) {
	now := time.Date(2025, 7, 1, 22, 0, 0, 0, time.UTC)
	m := timemath.New(clock.NewFixed(now), time.UTC)

	if got := m.MinutesElapsedSince(nil); !math.IsInf(got, 1) {
		t.Errorf("nil should be +Inf, got %v", got)
	}
	last := now.Add(-30 * time.Minute)
	if got := m.MinutesElapsedSince(&last); got != 30 {
		t.Errorf("expected 30, got %v", got)
	}
	if !m.HasMinutesPassed(nil, 30) {
		t.Error("nil should always count as passed")
	}
	if m.HasMinutesPassed(&last, 31) {
		t.Error("31 minutes have not passed")
	}
}

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{"22:00", 22, 0, false},
		{"7:05", 7, 5, false},
		{"07:00:00", 7, 0, false},
		{"23:59", 23, 59, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"noon", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, err := timemath.ParseHHMM(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidTimeFormat) {
					t.Errorf("expected ErrInvalidTimeFormat, got %v", err)
				}
				return
			}
			if err != nil || h != tt.h || m != tt.m {
				t.Errorf("ParseHHMM(%q) = %d, %d, %v; want %d, %d", tt.in, h, m, err, tt.h, tt.m)
			}
		})
	}
}

func TestNearestOccurrence_AcrossMidnight(t *testing.T) {
	ref := time.Date(2025, 7, 2, 0, 10, 0, 0, time.UTC)
	got, err := timemath.NearestOccurrence(ref, "23:30")
	if err != nil {
		t.Fatalf("NearestOccurrence: %v", err)
	}
	want := time.Date(2025, 7, 1, 23, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	ref = time.Date(2025, 7, 1, 23, 50, 0, 0, time.UTC)
	got, _ = timemath.NearestOccurrence(ref, "00:15")
	want = time.Date(2025, 7, 2, 0, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDaysBetween(t *testing.T) {
	n, err := timemath.DaysBetween("2025-02-28", "2025-03-01")
	if err != nil || n != 1 {
		t.Errorf("expected 1, got %d (%v)", n, err)
	}
	n, _ = timemath.DaysBetween("2025-03-08", "2025-03-10") // US DST weekend
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
	if _, err := timemath.DaysBetween("2025/03/08", "2025-03-10"); !errors.Is(err, domain.ErrInvalidDateFormat) {
		t.Errorf("expected ErrInvalidDateFormat, got %v", err)
	}
}

func TestSleepDurationHours(t *testing.T) {
	bed := time.Date(2025, 7, 1, 23, 0, 0, 0, time.UTC)
	wake := time.Date(2025, 7, 1, 7, 0, 0, 0, time.UTC)
	if got := timemath.SleepDurationHours(bed, wake); got != 8 {
		t.Errorf("expected 8h, got %v", got)
	}
}

func TestIsNearBedtime(t *testing.T) {
	c := clock.NewFixed(time.Date(2025, 7, 1, 21, 50, 0, 0, time.UTC))
	m := timemath.New(c, time.UTC)
	near, err := m.IsNearBedtime("22:00", 15*time.Minute)
	if err != nil || !near {
		t.Errorf("expected near bedtime, got %v (%v)", near, err)
	}
	near, _ = m.IsNearBedtime("23:00", 15*time.Minute)
	if near {
		t.Error("70 minutes early is not near bedtime")
	}
}
