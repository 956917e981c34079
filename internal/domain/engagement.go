package domain

import "time"

// ─── Points ─────────────────────────────────────────────────────────────────

// PointsBreakdown itemizes how one completed sleep session was scored.
// Total never goes below zero; negatives only enter the account through
// the late-bedtime and late-wake penalties.
type PointsBreakdown struct {
	BedtimeAdherence int      `json:"bedtime_adherence"`
	CheckIns         int      `json:"check_ins"`
	StreakBonus      int      `json:"streak_bonus"`
	PhonePenalty     int      `json:"phone_penalty"`
	SnoozePenalty    int      `json:"snooze_penalty"`
	Total            int      `json:"total"`
	Anomalies        []string `json:"anomalies,omitempty"`
}

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreakInfo is the result of advancing a streak by one sleep date.
type StreakInfo struct {
	CurrentStreak   int    `json:"current_streak"`
	LongestStreak   int    `json:"longest_streak"`
	StreakStartDate string `json:"streak_start_date"`
	IsActive        bool   `json:"is_active"`
}

// StreakState is the streak as held by an account.
type StreakState struct {
	Current       int    `json:"current"`
	Longest       int    `json:"longest"`
	StartDate     string `json:"start_date,omitempty"`
	LastSleepDate string `json:"last_sleep_date,omitempty"`
	Active        bool   `json:"active"`
}

// ─── Achievements ───────────────────────────────────────────────────────────

// Achievement IDs.
const (
	AchFirstSleep   = "first_sleep"
	AchEarlyBird    = "early_bird"
	AchWeekWarrior  = "week_warrior"
	AchPerfectWeek  = "perfect_week"
	AchMonthMaster  = "month_master"
	AchSheepEvolver = "sheep_evolver"
)

// Achievement is a static catalog entry. Earning one is an Event.
type Achievement struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PointReward int    `json:"point_reward"`
	Icon        string `json:"icon"`
}

// UnlockedAchievement records when a user earned an achievement.
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// ─── Unlockables ────────────────────────────────────────────────────────────

// UnlockableKind groups cosmetic rewards.
type UnlockableKind string

const (
	UnlockAccessory UnlockableKind = "accessory"
	UnlockTheme     UnlockableKind = "theme"
	UnlockSound     UnlockableKind = "sound"
)

// Unlockable is a cosmetic reward gated on points or streak length.
type Unlockable struct {
	ID             string         `json:"id"`
	Kind           UnlockableKind `json:"kind"`
	RequiredPoints int            `json:"required_points,omitempty"`
	RequiredStreak int            `json:"required_streak,omitempty"`
}
