package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sleepsheep/sheep/internal/app/account"
	"github.com/sleepsheep/sheep/internal/domain"
)

type accountResponse struct {
	Account  domain.AccountState `json:"account"`
	Progress domain.Progress     `json:"progress"`
}

type pointsRequest struct {
	Delta  int    `json:"delta" validate:"ne=0"`
	Source string `json:"source" validate:"omitempty,oneof=manual late_bedtime late_wake session"`
}

type endSleepRequest struct {
	PhoneUsageMinutes int        `json:"phone_usage_minutes" validate:"gte=0,lte=1440"`
	AlarmFiredAt      *time.Time `json:"alarm_fired_at"`
}

// GET /api/v1/users/{userID}
func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	state, progress, err := s.svc.Account(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{Account: state, Progress: progress})
}

// GET /api/v1/users/{userID}/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Settings(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PUT /api/v1/users/{userID}/settings
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.UserSettings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.UpdateSettings(r.Context(), chi.URLParam(r, "userID"), settings); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// POST /api/v1/users/{userID}/points
func (s *Server) handleAddPoints(w http.ResponseWriter, r *http.Request) {
	var req pointsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.AddPoints(r.Context(), chi.URLParam(r, "userID"), req.Delta, req.Source)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/v1/users/{userID}/sessions?limit=
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 365 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 365")
			return
		}
		limit = n
	}
	sessions, err := s.svc.History(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// GET /api/v1/users/{userID}/achievements
func (s *Server) handleUserAchievements(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Achievements(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"achievements": list})
}

// ─── Sleep lifecycle ────────────────────────────────────────────────────────

// POST /api/v1/users/{userID}/sleep/start
func (s *Server) handleSleepStart(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.StartSleep(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleSleepCheckIn(w http.ResponseWriter, r *http.Request) {
	s.sessionStep(w, r, s.svc.CheckIn)
}

func (s *Server) handleSleepMiss(w http.ResponseWriter, r *http.Request) {
	s.sessionStep(w, r, s.svc.MissCheckIn)
}

func (s *Server) handleSleepSnooze(w http.ResponseWriter, r *http.Request) {
	s.sessionStep(w, r, s.svc.Snooze)
}

func (s *Server) sessionStep(w http.ResponseWriter, r *http.Request, step func(context.Context, string) (domain.SleepSession, error)) {
	sess, err := step(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// POST /api/v1/users/{userID}/sleep/end
func (s *Server) handleSleepEnd(w http.ResponseWriter, r *http.Request) {
	var req endSleepRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.EndSleep(r.Context(), chi.URLParam(r, "userID"), account.EndSleepRequest{
		PhoneUsageMinutes: req.PhoneUsageMinutes,
		AlarmFiredAt:      req.AlarmFiredAt,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
