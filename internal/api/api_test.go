package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sleepsheep/sheep/internal/app/account"
	"github.com/sleepsheep/sheep/internal/clock"
	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/health"
	"github.com/sleepsheep/sheep/internal/infra/sqlite"
	"github.com/sleepsheep/sheep/internal/logging"
	"github.com/sleepsheep/sheep/internal/timemath"
)

type testServer struct {
	srv   *Server
	h     http.Handler
	clock *clock.ManualClock
	db    *sqlite.DB
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerIn(t, time.UTC)
}

func newTestServerIn(t *testing.T, loc *time.Location) *testServer {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c := clock.NewManual(time.Date(2025, 7, 1, 21, 50, 0, 0, loc))
	svc := account.NewService(db, timemath.New(c, loc), logging.Nop())
	srv := NewServer(svc, logging.Nop())
	return &testServer{srv: srv, h: srv.Handler(), clock: c, db: db}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ─── Basics ─────────────────────────────────────────────────────────────────

func TestHealth_NoChecker(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestHealth_WithChecker(t *testing.T) {
	ts := newTestServer(t)
	checker := health.NewChecker(logging.Nop(), 0, health.StorageCheck("storage", ts.db))
	checker.RunOnce(t.Context())
	ts.srv.SetHealth(checker)

	w := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage"`)
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Version, decode[map[string]string](t, w)["version"])
}

func TestMetrics_DisabledByDefault(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	ts.srv.EnableMetrics()
	w = httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.SetCORSOrigins([]string{"https://sheep.example"})
	h := ts.srv.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/stages", nil)
	req.Header.Set("Origin", "https://sheep.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://sheep.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/stages", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

// ─── Catalog ────────────────────────────────────────────────────────────────

func TestStages(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/v1/stages", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Stages []stageInfo `json:"stages"`
		Death  int         `json:"death_threshold"`
	}](t, w)
	require.Len(t, body.Stages, 4)
	assert.Equal(t, domain.StageCloudGuardian, body.Stages[3].Stage)
	assert.Equal(t, 500, body.Stages[3].MinPoints)
	assert.Equal(t, 4, body.Stages[3].Level)
	assert.Equal(t, -200, body.Death)
}

func TestAchievementCatalog(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/v1/achievements", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Achievements []domain.Achievement `json:"achievements"`
	}](t, w)
	assert.Len(t, body.Achievements, 6)
}

func TestScore(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/score",
		`{"bedtime":"2025-07-01T22:00:00Z","bedtime_target":"22:00"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	b := decode[domain.PointsBreakdown](t, w)
	assert.Equal(t, 15, b.Total)

	w = ts.do(t, http.MethodPost, "/api/v1/score",
		`{"bedtime":"2025-07-01T22:25:00Z","bedtime_target":"22:00","check_ins_missed":2,"snooze_count":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[domain.PointsBreakdown](t, w).Total)

	w = ts.do(t, http.MethodPost, "/api/v1/score",
		`{"bedtime":"2025-07-01T22:00:00Z","bedtime_target":"22:00","current_streak":10,"streak_bonus":"simple"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, decode[domain.PointsBreakdown](t, w).StreakBonus)
}

func TestScore_UsesConfiguredZone(t *testing.T) {
	ny, err := timemath.LoadLocation("America/New_York")
	require.NoError(t, err)
	ts := newTestServerIn(t, ny)

	// 22:00 in New York, sent as UTC.
	w := ts.do(t, http.MethodPost, "/api/v1/score",
		`{"bedtime":"2025-07-02T02:00:00Z","bedtime_target":"22:00"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	b := decode[domain.PointsBreakdown](t, w)
	assert.Equal(t, 10, b.BedtimeAdherence)
	assert.Equal(t, 15, b.Total)
}

func TestScore_Invalid(t *testing.T) {
	ts := newTestServer(t)
	cases := map[string]string{
		"bad target":      `{"bedtime":"2025-07-01T22:00:00Z","bedtime_target":"10pm"}`,
		"missing bedtime": `{"bedtime_target":"22:00"}`,
		"negative snooze": `{"bedtime":"2025-07-01T22:00:00Z","bedtime_target":"22:00","snooze_count":-1}`,
		"unknown field":   `{"bedtime":"2025-07-01T22:00:00Z","bedtime_target":"22:00","bonus":5}`,
		"not json":        `bedtime=now`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/score", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "error", decode[errorBody](t, w).Error.Type)
		})
	}
}

// ─── Users ──────────────────────────────────────────────────────────────────

func TestAccount_Fresh(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/v1/users/u1", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[accountResponse](t, w)
	assert.Equal(t, "u1", body.Account.UserID)
	assert.Equal(t, domain.StageBaby, body.Account.Stage)
	assert.Equal(t, 50, body.Progress.PointsToNextStage)
}

func TestSettings(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/users/u1/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.DefaultSettings(), decode[domain.UserSettings](t, w))

	w = ts.do(t, http.MethodPut, "/api/v1/users/u1/settings",
		`{"bedtime_target":"23:00","wake_time_target":"06:30","notification_enabled":true,"check_in_interval_minutes":45}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/v1/users/u1/settings", "")
	assert.Equal(t, "23:00", decode[domain.UserSettings](t, w).BedtimeTarget)

	w = ts.do(t, http.MethodPut, "/api/v1/users/u1/settings",
		`{"bedtime_target":"24:61","wake_time_target":"06:30","check_in_interval_minutes":45}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Error.Message, "BedtimeTarget")
}

func TestAddPoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/users/u1/points", `{"delta":45}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodPost, "/api/v1/users/u1/points", `{"delta":10,"source":"manual"}`)
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[domain.Result](t, w)
	assert.Equal(t, 55, res.TotalPoints)
	assert.Equal(t, domain.StageFluffy, res.Stage)
	require.Len(t, res.Events, 1)
	assert.Equal(t, domain.EventEvolution, res.Events[0].Type)

	w = ts.do(t, http.MethodPost, "/api/v1/users/u1/points", `{"delta":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodPost, "/api/v1/users/u1/points", `{"delta":5,"source":"bribe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddPoints_Death(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/users/u1/points", `{"delta":-190}`)

	w := ts.do(t, http.MethodPost, "/api/v1/users/u1/points", `{"delta":-15}`)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[domain.Result](t, w)
	assert.Equal(t, 10, res.TotalPoints)
	assert.Equal(t, domain.StageBaby, res.Stage)
	require.Len(t, res.Events, 1)
	assert.Equal(t, domain.EventDeath, res.Events[0].Type)
}

// ─── Sleep lifecycle ────────────────────────────────────────────────────────

func TestSleepLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/users/u1/sleep/start", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	start := decode[account.StartResult](t, w)
	assert.True(t, start.Session.IsOpen())

	w = ts.do(t, http.MethodPost, "/api/v1/users/u1/sleep/start", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/users/u1/sleep/miss", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[domain.SleepSession](t, w).CheckInsMissed)
	w = ts.do(t, http.MethodPost, "/api/v1/users/u1/sleep/checkin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[domain.SleepSession](t, w).CheckInsMissed)
	w = ts.do(t, http.MethodPost, "/api/v1/users/u1/sleep/snooze", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[domain.SleepSession](t, w).SnoozeCount)

	ts.clock.Set(time.Date(2025, 7, 2, 7, 0, 0, 0, time.UTC))
	w = ts.do(t, http.MethodPost, "/api/v1/users/u1/sleep/end", `{"phone_usage_minutes":5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[domain.SessionResult](t, w)
	// 10 bedtime + 5 check-ins - 1 phone - 3 snooze
	assert.Equal(t, 11, res.Breakdown.Total)
	assert.Equal(t, 11, res.TotalPoints)
	assert.Equal(t, 1, res.Streak.Current)
	assert.False(t, res.Session.IsOpen())

	w = ts.do(t, http.MethodPost, "/api/v1/users/u1/sleep/end", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/users/u1/sessions?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	sessions := decode[struct {
		Sessions []domain.SleepSession `json:"sessions"`
	}](t, w).Sessions
	require.Len(t, sessions, 1)
	assert.Equal(t, 11, sessions[0].PointsEarned)

	w = ts.do(t, http.MethodGet, "/api/v1/users/u1/achievements", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), domain.AchFirstSleep)
}

func TestSleepEnd_LateWake(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/users/u1/sleep/start", "")

	ts.clock.Set(time.Date(2025, 7, 2, 7, 2, 0, 0, time.UTC))
	w := ts.do(t, http.MethodPost, "/api/v1/users/u1/sleep/end", `{"alarm_fired_at":"2025-07-02T07:00:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[domain.SessionResult](t, w)
	assert.Equal(t, 15, res.Breakdown.Total)
	assert.Equal(t, 3, res.TotalPoints)
}

func TestSleepSteps_NoSession(t *testing.T) {
	ts := newTestServer(t)
	for _, step := range []string{"checkin", "miss", "snooze", "end"} {
		w := ts.do(t, http.MethodPost, "/api/v1/users/u1/sleep/"+step, "")
		assert.Equal(t, http.StatusNotFound, w.Code, step)
	}
}

func TestSessions_BadLimit(t *testing.T) {
	ts := newTestServer(t)
	for _, q := range []string{"abc", "0", "1000"} {
		w := ts.do(t, http.MethodGet, "/api/v1/users/u1/sessions?limit="+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}
