package api

import (
	"net/http"
	"time"

	"github.com/sleepsheep/sheep/internal/app/engagement"
	"github.com/sleepsheep/sheep/internal/domain"
)

type stageInfo struct {
	Stage     domain.Stage `json:"stage"`
	Name      string       `json:"name"`
	Level     int          `json:"level"`
	MinPoints int          `json:"min_points"`
}

// GET /api/v1/stages
func (s *Server) handleStages(w http.ResponseWriter, r *http.Request) {
	out := make([]stageInfo, 0, len(domain.Stages))
	for _, st := range domain.Stages {
		out = append(out, stageInfo{
			Stage:     st,
			Name:      st.DisplayName(),
			Level:     engagement.LevelNumber(st),
			MinPoints: engagement.StageThreshold(st),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stages":          out,
		"death_threshold": engagement.DeathThreshold,
		"revival_points":  engagement.RevivalPoints,
	})
}

// GET /api/v1/achievements
func (s *Server) handleAchievementCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"achievements": engagement.AllAchievements(),
		"unlockables":  engagement.AllUnlockables(),
	})
}

// scoreRequest previews how a night would score without touching any
// account.
type scoreRequest struct {
	Bedtime           time.Time `json:"bedtime" validate:"required"`
	BedtimeTarget     string    `json:"bedtime_target" validate:"required,hhmm"`
	CheckInsMissed    int       `json:"check_ins_missed" validate:"gte=0"`
	SnoozeCount       int       `json:"snooze_count" validate:"gte=0"`
	CurrentStreak     int       `json:"current_streak" validate:"gte=0"`
	PhoneUsageMinutes int       `json:"phone_usage_minutes" validate:"gte=0"`
	StreakBonus       string    `json:"streak_bonus" validate:"omitempty,oneof=tiered simple"`
}

// POST /api/v1/score
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	policy := s.policy
	if req.StreakBonus != "" {
		policy = engagement.PolicyFor(policy.ExpectedCheckIns, req.StreakBonus)
	}
	session := domain.SleepSession{
		Bedtime:        req.Bedtime.In(s.svc.Location()),
		CheckInsMissed: req.CheckInsMissed,
		SnoozeCount:    req.SnoozeCount,
	}
	settings := domain.UserSettings{BedtimeTarget: req.BedtimeTarget}

	b, err := policy.SessionPoints(session, settings, req.CurrentStreak, req.PhoneUsageMinutes)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
