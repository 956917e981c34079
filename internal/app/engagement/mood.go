package engagement

import (
	"fmt"

	"github.com/sleepsheep/sheep/internal/domain"
)

// MoodFor derives the resting mood from an account's total and streak.
func MoodFor(points, streak int) domain.Mood {
	switch {
	case streak >= 7:
		return domain.MoodExcited
	case points < 10:
		return domain.MoodSad
	default:
		return domain.MoodHappy
	}
}

// SessionMood derives the mood shown right after a night, from the points
// that night earned.
func SessionMood(recentPoints, streak int, sleeping bool) domain.Mood {
	switch {
	case sleeping:
		return domain.MoodSleeping
	case streak >= 7:
		return domain.MoodExcited
	case recentPoints < 0:
		return domain.MoodSad
	default:
		return domain.MoodHappy
	}
}

// NightMessage encourages the user after a scored night.
func NightMessage(points, streak int) string {
	switch {
	case points >= 10:
		return "What a night! Your sheep is beaming. 🌟"
	case points >= 5:
		return "Solid night. Those habits are taking root. 💪"
	case points >= 0:
		return "Every night counts. See you at bedtime! 🌙"
	case streak >= 7:
		return "Rough night, but your streak is still going strong. 🔥"
	default:
		return "Tomorrow is a fresh start. 🌅"
	}
}

// StreakMessage describes the current streak.
func StreakMessage(streak int) string {
	switch {
	case streak <= 0:
		return "Start a streak tonight!"
	case streak == 1:
		return "Day one done!"
	case streak < 7:
		return fmt.Sprintf("%d nights in a row!", streak)
	case streak < 14:
		return fmt.Sprintf("%d-night streak. Impressive!", streak)
	default:
		return fmt.Sprintf("%d nights straight. Legendary dedication!", streak)
	}
}
