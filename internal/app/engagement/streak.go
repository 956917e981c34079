package engagement

import (
	"fmt"

	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/timemath"
)

// StreakMilestones are the streak lengths worth celebrating, ascending.
var StreakMilestones = []int{3, 7, 14, 30, 60, 100}

// CalculateStreak advances a streak given the date of the last recorded
// sleep and the current date (both YYYY-MM-DD).
//
//   - last night was yesterday: the streak grows by one
//   - same day: nothing changes, so repeated calls are idempotent
//   - any other gap: the streak breaks silently
//
// LongestStreak here only reflects this transition; callers keep the
// running maximum.
func CalculateStreak(lastSleepDate, currentDate string, previousStreak int) (domain.StreakInfo, error) {
	gap, err := timemath.DaysBetween(lastSleepDate, currentDate)
	if err != nil {
		return domain.StreakInfo{}, fmt.Errorf("calculate streak: %w", err)
	}
	prev := max(0, previousStreak)

	switch gap {
	case 1:
		return domain.StreakInfo{
			CurrentStreak:   prev + 1,
			LongestStreak:   prev + 1,
			StreakStartDate: lastSleepDate,
			IsActive:        true,
		}, nil
	case 0:
		return domain.StreakInfo{
			CurrentStreak:   prev,
			LongestStreak:   prev,
			StreakStartDate: lastSleepDate,
			IsActive:        true,
		}, nil
	default:
		return domain.StreakInfo{
			CurrentStreak:   0,
			LongestStreak:   prev,
			StreakStartDate: currentDate,
			IsActive:        false,
		}, nil
	}
}

// CheckStreakMilestone returns the lowest milestone crossed when the streak
// moved from previous to current, if any.
func CheckStreakMilestone(current, previous int) (int, bool) {
	for _, m := range StreakMilestones {
		if current >= m && previous < m {
			return m, true
		}
	}
	return 0, false
}
