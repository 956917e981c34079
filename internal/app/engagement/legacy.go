package engagement

import (
	"time"

	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/timemath"
)

// LegacyInput is the input of the first-generation scoring model.
type LegacyInput struct {
	BedtimeTarget  time.Time
	ActualBedtime  time.Time
	CheckInsMissed int
	SnoozeCount    int
	CurrentStreak  int
}

// LegacyBreakdown itemizes a first-generation score. Unlike
// domain.PointsBreakdown the total may be negative.
type LegacyBreakdown struct {
	TimeAdherence int `json:"time_adherence"`
	CheckIns      int `json:"check_ins"`
	Snoozes       int `json:"snoozes"`
	StreakBonus   int `json:"streak_bonus"`
	Total         int `json:"total"`
}

// LegacyPoints scores a night with the original penalty-heavy model:
// exact bedtime 10, within 15 minutes either way 5; six points per missed
// check-in; three for the first snooze and five for each one after.
func LegacyPoints(in LegacyInput) LegacyBreakdown {
	var b LegacyBreakdown

	diff := timemath.MinutesBetween(in.ActualBedtime, in.BedtimeTarget)
	switch {
	case diff*60 <= bedtimeSkewTolerance.Seconds():
		b.TimeAdherence = 10
	case diff <= 15:
		b.TimeAdherence = 5
	}

	b.CheckIns = -max(0, in.CheckInsMissed) * 6

	if n := in.SnoozeCount; n > 0 {
		b.Snoozes = -3 - (n-1)*5
	}

	b.StreakBonus = StreakBonusSimple(in.CurrentStreak)
	b.Total = b.TimeAdherence + b.CheckIns + b.Snoozes + b.StreakBonus
	return b
}

// StreakFromHistory counts consecutive days ending today on which a
// session earned positive points. Sessions may be in any order; one good
// night per date is enough.
func StreakFromHistory(sessions []domain.SleepSession, today string) int {
	good := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		if s.PointsEarned > 0 {
			good[s.SleepDate] = true
		}
	}

	streak := 0
	day := today
	for good[day] {
		streak++
		prev, err := timemath.AddDays(day, -1)
		if err != nil {
			break
		}
		day = prev
	}
	return streak
}
