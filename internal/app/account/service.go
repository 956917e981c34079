package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sleepsheep/sheep/internal/app/engagement"
	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/infra/metrics"
	"github.com/sleepsheep/sheep/internal/logging"
	"github.com/sleepsheep/sheep/internal/timemath"
	"github.com/sleepsheep/sheep/internal/validation"
)

// Point sources, used as metric labels.
const (
	SourceSession     = "session"
	SourceLateBedtime = "late_bedtime"
	SourceLateWake    = "late_wake"
	SourceManual      = "manual"
)

// Service persists accounts and runs the sleep-session lifecycle. Calls
// for one user are serialized; different users proceed in parallel.
type Service struct {
	store    domain.Store
	tm       *timemath.TimeMath
	policy   engagement.Policy
	defaults domain.UserSettings
	log      logging.Logger
	newID    func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithScoringPolicy sets the policy used to score sessions.
func WithScoringPolicy(p engagement.Policy) ServiceOption {
	return func(s *Service) { s.policy = p }
}

// WithDefaultSettings sets the schedule users get before saving their own.
func WithDefaultSettings(d domain.UserSettings) ServiceOption {
	return func(s *Service) { s.defaults = d }
}

// WithIDFunc replaces the session ID generator.
func WithIDFunc(f func() string) ServiceOption {
	return func(s *Service) { s.newID = f }
}

// NewService creates an account service.
func NewService(store domain.Store, tm *timemath.TimeMath, log logging.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		tm:       tm,
		policy:   engagement.DefaultPolicy(),
		defaults: domain.DefaultSettings(),
		log:      log,
		newID:    func() string { return uuid.NewString() },
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EndSleepRequest carries what the client observed at wake-up.
type EndSleepRequest struct {
	PhoneUsageMinutes int
	AlarmFiredAt      *time.Time
}

// StartResult is returned when a night begins.
type StartResult struct {
	Session domain.SleepSession `json:"session"`
	Penalty domain.Result       `json:"penalty"`
}

// ─── Queries ────────────────────────────────────────────────────────────────

// Location is the zone bedtimes and sleep dates are evaluated in.
func (s *Service) Location() *time.Location {
	return s.tm.Location()
}

// Account returns the user's state. Unknown users get a fresh baby sheep,
// which is not saved until their first mutation.
func (s *Service) Account(ctx context.Context, userID string) (domain.AccountState, domain.Progress, error) {
	state, err := s.load(ctx, userID)
	if err != nil {
		return domain.AccountState{}, domain.Progress{}, err
	}
	a := New(state, s.tm, WithPolicy(s.policy))
	return a.Snapshot(), a.Progress(), nil
}

// Settings returns the user's schedule, or the defaults.
func (s *Service) Settings(ctx context.Context, userID string) (domain.UserSettings, error) {
	st, err := s.store.LoadSettings(ctx, userID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return domain.UserSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return st, nil
}

// UpdateSettings validates and stores a new schedule.
func (s *Service) UpdateSettings(ctx context.Context, userID string, settings domain.UserSettings) error {
	if err := validation.Struct(settings); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSettings, err)
	}
	if err := s.store.SaveSettings(ctx, userID, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// History returns the user's most recent sessions, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]domain.SleepSession, error) {
	if limit <= 0 {
		limit = 30
	}
	return s.store.ListSessions(ctx, userID, limit)
}

// Achievements returns the user's unlocked achievements.
func (s *Service) Achievements(ctx context.Context, userID string) ([]domain.UnlockedAchievement, error) {
	return s.store.ListAchievements(ctx, userID)
}

// CurrentSession returns the open session, or ErrNoOpenSession.
func (s *Service) CurrentSession(ctx context.Context, userID string) (domain.SleepSession, error) {
	return s.store.OpenSession(ctx, userID)
}

// ─── Mutations ──────────────────────────────────────────────────────────────

// AddPoints applies a manual adjustment.
func (s *Service) AddPoints(ctx context.Context, userID string, delta int, source string) (domain.Result, error) {
	if source == "" {
		source = SourceManual
	}
	var res domain.Result
	err := s.withAccount(ctx, userID, func(a *SessionAccount) error {
		res = a.AddPoints(delta)
		return nil
	})
	if err != nil {
		return domain.Result{}, err
	}
	metrics.RecordDelta(source, delta)
	s.recordEvents(userID, res.Events)
	return res, nil
}

// StartSleep opens tonight's session. Starting after the bedtime target
// costs points immediately.
func (s *Service) StartSleep(ctx context.Context, userID string) (StartResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	if _, err := s.store.OpenSession(ctx, userID); err == nil {
		return StartResult{}, domain.ErrSessionOpen
	} else if !errors.Is(err, domain.ErrNoOpenSession) {
		return StartResult{}, fmt.Errorf("check open session: %w", err)
	}

	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return StartResult{}, err
	}
	state, err := s.load(ctx, userID)
	if err != nil {
		return StartResult{}, err
	}
	a := New(state, s.tm, WithPolicy(s.policy))

	now := s.tm.Now()
	penalty, err := a.ApplyLateBedtimePenalty(now, settings.BedtimeTarget)
	if err != nil {
		return StartResult{}, err
	}

	session := domain.SleepSession{
		ID:        s.newID(),
		UserID:    userID,
		Bedtime:   now,
		SleepDate: s.tm.LocalDateToday(),
		CreatedAt: now,
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return StartResult{}, fmt.Errorf("save session: %w", err)
	}
	if err := s.store.SaveAccount(ctx, a.Snapshot()); err != nil {
		return StartResult{}, fmt.Errorf("save account: %w", err)
	}

	metrics.SessionsStarted.Inc()
	metrics.RecordDelta(SourceLateBedtime, penalty.Delta)
	s.recordEvents(userID, penalty.Events)
	if penalty.Delta < 0 {
		s.log.Infof("user %s started sleep late: %d points", userID, penalty.Delta)
	}
	return StartResult{Session: session, Penalty: penalty}, nil
}

// CheckIn records an answered check-in on the open session.
func (s *Service) CheckIn(ctx context.Context, userID string) (domain.SleepSession, error) {
	return s.withSession(ctx, userID, (*domain.SleepSession).CheckIn)
}

// MissCheckIn records an unanswered check-in on the open session.
func (s *Service) MissCheckIn(ctx context.Context, userID string) (domain.SleepSession, error) {
	return s.withSession(ctx, userID, (*domain.SleepSession).MissCheckIn)
}

// Snooze records an alarm snooze on the open session.
func (s *Service) Snooze(ctx context.Context, userID string) (domain.SleepSession, error) {
	return s.withSession(ctx, userID, (*domain.SleepSession).Snooze)
}

// EndSleep closes the open session: the late-wake penalty is applied
// first, then the night is scored. Only achievements the user did not
// already hold are reported.
func (s *Service) EndSleep(ctx context.Context, userID string, req EndSleepRequest) (domain.SessionResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	session, err := s.store.OpenSession(ctx, userID)
	if err != nil {
		return domain.SessionResult{}, err
	}
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return domain.SessionResult{}, err
	}
	state, err := s.load(ctx, userID)
	if err != nil {
		return domain.SessionResult{}, err
	}
	a := New(state, s.tm, WithPolicy(s.policy))

	var wake domain.Result
	if req.AlarmFiredAt != nil {
		wake = a.ApplyLateWakePenalty(*req.AlarmFiredAt, s.tm.Now())
	}

	res, err := a.CompleteSleepSession(session, settings, req.PhoneUsageMinutes)
	if err != nil {
		return domain.SessionResult{}, err
	}

	now := s.tm.Now()
	events := make([]domain.Event, 0, len(wake.Events)+len(res.Events))
	events = append(events, wake.Events...)
	for _, e := range res.Events {
		if e.Type == domain.EventAchievement {
			isNew, err := s.store.UnlockAchievement(ctx, userID, e.Achievement.ID, now)
			if err != nil {
				return domain.SessionResult{}, fmt.Errorf("unlock achievement: %w", err)
			}
			if !isNew {
				continue
			}
			metrics.AchievementsUnlocked.WithLabelValues(e.Achievement.ID).Inc()
		}
		events = append(events, e)
	}
	res.Events = events
	res.Delta += wake.Delta

	if err := s.store.SaveSession(ctx, res.Session); err != nil {
		return domain.SessionResult{}, fmt.Errorf("save session: %w", err)
	}
	if err := s.store.SaveAccount(ctx, a.Snapshot()); err != nil {
		return domain.SessionResult{}, fmt.Errorf("save account: %w", err)
	}

	metrics.SessionsCompleted.Inc()
	metrics.SessionPoints.Observe(float64(res.Breakdown.Total))
	metrics.RecordDelta(SourceLateWake, wake.Delta)
	metrics.RecordDelta(SourceSession, res.Breakdown.Total)
	s.recordEvents(userID, res.Events)
	if len(res.Breakdown.Anomalies) > 0 {
		s.log.Warnf("user %s session %s had out-of-range input: %v", userID, session.ID, res.Breakdown.Anomalies)
	}
	s.log.Infof("user %s completed session %s: +%d points, total %d", userID, session.ID, res.Breakdown.Total, res.TotalPoints)
	return res, nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (s *Service) lockUser(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) load(ctx context.Context, userID string) (domain.AccountState, error) {
	state, err := s.store.LoadAccount(ctx, userID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.NewAccountState(userID), nil
	}
	if err != nil {
		return domain.AccountState{}, fmt.Errorf("load account: %w", err)
	}
	return state, nil
}

func (s *Service) withAccount(ctx context.Context, userID string, fn func(a *SessionAccount) error) error {
	unlock := s.lockUser(userID)
	defer unlock()

	state, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	a := New(state, s.tm, WithPolicy(s.policy))
	if err := fn(a); err != nil {
		return err
	}
	if err := s.store.SaveAccount(ctx, a.Snapshot()); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *Service) withSession(ctx context.Context, userID string, fn func(*domain.SleepSession)) (domain.SleepSession, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	session, err := s.store.OpenSession(ctx, userID)
	if err != nil {
		return domain.SleepSession{}, err
	}
	fn(&session)
	if err := s.store.SaveSession(ctx, session); err != nil {
		return domain.SleepSession{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

func (s *Service) recordEvents(userID string, events []domain.Event) {
	metrics.RecordEvents(events)
	for _, e := range events {
		switch e.Type {
		case domain.EventDeath:
			s.log.Warnf("user %s: sheep died and was revived as a baby", userID)
		case domain.EventEvolution:
			s.log.Infof("user %s: sheep evolved %s -> %s", userID, e.FromStage, e.Stage)
		case domain.EventMilestone:
			s.log.Infof("user %s: %d-night streak", userID, e.Milestone)
		case domain.EventAchievement:
			s.log.Infof("user %s: achievement %s", userID, e.Achievement.ID)
		}
	}
}
