package engagement

import "github.com/sleepsheep/sheep/internal/domain"

// AchievementProgress is the before/after snapshot achievement rules see.
type AchievementProgress struct {
	TotalPoints       int
	CurrentStreak     int
	PreviousStreak    int
	SessionsCompleted int
	Stage             domain.Stage
	PreviousStage     domain.Stage
}

// achievementRule pairs a catalog entry with the predicate that awards it.
// Entries without a predicate are catalog-only.
type achievementRule struct {
	def       domain.Achievement
	predicate func(AchievementProgress) bool
}

var achievementRules = []achievementRule{
	{
		def: domain.Achievement{
			ID: domain.AchFirstSleep, Key: "FIRST_SLEEP", Name: "First Sleep",
			Description: "Complete your first sleep session", PointReward: 10, Icon: "🌙",
		},
		predicate: func(p AchievementProgress) bool { return p.SessionsCompleted == 1 },
	},
	{
		def: domain.Achievement{
			ID: domain.AchEarlyBird, Key: "EARLY_BIRD", Name: "Early Bird",
			Description: "Reach a 3-day sleep streak", PointReward: 25, Icon: "🐦",
		},
		predicate: crossedStreak(3),
	},
	{
		def: domain.Achievement{
			ID: domain.AchWeekWarrior, Key: "WEEK_WARRIOR", Name: "Week Warrior",
			Description: "Reach a 7-day sleep streak", PointReward: 50, Icon: "⚔️",
		},
		predicate: crossedStreak(7),
	},
	{
		def: domain.Achievement{
			ID: domain.AchPerfectWeek, Key: "PERFECT_WEEK", Name: "Perfect Week",
			Description: "Hit your bedtime target seven nights in a row", PointReward: 100, Icon: "⭐",
		},
	},
	{
		def: domain.Achievement{
			ID: domain.AchMonthMaster, Key: "MONTH_MASTER", Name: "Month Master",
			Description: "Reach a 30-day sleep streak", PointReward: 200, Icon: "👑",
		},
		predicate: crossedStreak(30),
	},
	{
		def: domain.Achievement{
			ID: domain.AchSheepEvolver, Key: "SHEEP_EVOLVER", Name: "Sheep Evolver",
			Description: "Watch your sheep change stage", PointReward: 75, Icon: "🐑",
		},
		predicate: func(p AchievementProgress) bool {
			return p.Stage != p.PreviousStage
		},
	},
}

func crossedStreak(n int) func(AchievementProgress) bool {
	return func(p AchievementProgress) bool {
		return p.CurrentStreak >= n && p.PreviousStreak < n
	}
}

// AllAchievements returns the full catalog in display order.
func AllAchievements() []domain.Achievement {
	out := make([]domain.Achievement, len(achievementRules))
	for i, r := range achievementRules {
		out[i] = r.def
	}
	return out
}

// AchievementByID looks up a catalog entry.
func AchievementByID(id string) (domain.Achievement, bool) {
	for _, r := range achievementRules {
		if r.def.ID == id {
			return r.def, true
		}
	}
	return domain.Achievement{}, false
}

// CheckAchievements returns the achievements earned by the transition in
// p, in catalog order. Rules are independent, so one session can earn
// several. Persistence and de-duplication are the caller's concern.
func CheckAchievements(p AchievementProgress) []domain.Achievement {
	var earned []domain.Achievement
	for _, r := range achievementRules {
		if r.predicate != nil && r.predicate(p) {
			earned = append(earned, r.def)
		}
	}
	return earned
}
