package engagement

import (
	"fmt"

	"github.com/sleepsheep/sheep/internal/domain"
)

// Death and revival.
const (
	// DeathThreshold: at or below this total the sheep dies.
	DeathThreshold = -200
	// RevivalPoints is the total a revived sheep restarts with.
	RevivalPoints = 10
)

// DeathMessage accompanies every death event.
const DeathMessage = "💀 Your sheep has died from poor sleep habits! Resurrected as a baby sheep."

// stageThresholds are the minimum totals of each stage, ascending.
var stageThresholds = []struct {
	stage domain.Stage
	min   int
}{
	{domain.StageBaby, 0},
	{domain.StageFluffy, 50},
	{domain.StageDreamy, 200},
	{domain.StageCloudGuardian, 500},
}

// StageFor returns the stage a point total earns. Totals below zero stay
// baby.
func StageFor(points int) domain.Stage {
	stage := domain.StageBaby
	for _, t := range stageThresholds {
		if points >= t.min {
			stage = t.stage
		}
	}
	return stage
}

// StageThreshold returns the minimum total of a stage.
func StageThreshold(stage domain.Stage) int {
	for _, t := range stageThresholds {
		if t.stage == stage {
			return t.min
		}
	}
	return 0
}

// ShouldEvolve reports whether points put the sheep in a different stage
// than current. It returns the new stage when it does.
func ShouldEvolve(current domain.Stage, points int) (domain.Stage, bool) {
	next := StageFor(points)
	return next, next != current
}

// PointsToNextStage returns how many points the sheep still needs to leave
// stage, or 0 at the top stage.
func PointsToNextStage(stage domain.Stage, points int) int {
	rank := stage.Rank()
	if rank < 0 || rank+1 >= len(stageThresholds) {
		return 0
	}
	return max(0, stageThresholds[rank+1].min-points)
}

// ProgressPct returns progress through the current stage as 0–100.
func ProgressPct(stage domain.Stage, points int) float64 {
	rank := stage.Rank()
	if rank < 0 {
		return 0
	}
	if rank+1 >= len(stageThresholds) {
		return 100.0
	}
	lo, hi := stageThresholds[rank].min, stageThresholds[rank+1].min
	pct := float64(points-lo) / float64(hi-lo) * 100.0
	return min(100.0, max(0, pct))
}

// LevelNumber maps stages to levels 1..4.
func LevelNumber(stage domain.Stage) int {
	if r := stage.Rank(); r >= 0 {
		return r + 1
	}
	return 1
}

// EvolutionMessage is shown when the sheep reaches stage.
func EvolutionMessage(stage domain.Stage) string {
	switch stage {
	case domain.StageFluffy:
		return "Your sheep evolved to Level 2! It's getting fluffier! 🐑✨"
	case domain.StageDreamy:
		return "Your sheep evolved to Level 3! Sweet dreams ahead! 🐑🌙"
	case domain.StageCloudGuardian:
		return "Your sheep evolved to Level 4! A true Cloud Guardian! 🐑👑"
	default:
		return "Your sheep is back to Level 1. Time to grow again! 🐑"
	}
}

// DevolutionMessage is shown when penalties drop the sheep back to stage.
func DevolutionMessage(stage domain.Stage) string {
	if stage == domain.StageBaby {
		return EvolutionMessage(stage)
	}
	return fmt.Sprintf("Your sheep slipped back to Level %d. A few good nights will fix it! 🐑", LevelNumber(stage))
}

// StageNameWithLevel renders e.g. "Fluffy Sheep (Level 2)".
func StageNameWithLevel(stage domain.Stage) string {
	return fmt.Sprintf("%s (Level %d)", stage.DisplayName(), LevelNumber(stage))
}

// HealthFor grades how close a total is to the death threshold.
func HealthFor(points int) domain.Health {
	switch {
	case points <= -150:
		return domain.HealthDying
	case points <= -100:
		return domain.HealthVerySick
	case points <= -50:
		return domain.HealthSick
	default:
		return domain.HealthOK
	}
}
