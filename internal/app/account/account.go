// Package account owns per-user sheep state. SessionAccount applies the
// engagement rules to one user's points, streak and stage; Service loads
// and saves accounts and drives the sleep-session lifecycle around it.
package account

import (
	"sync"
	"time"

	"github.com/sleepsheep/sheep/internal/app/engagement"
	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/timemath"
)

// SessionAccount is the single owner of one user's points, streak and
// stage. Every mutation goes through its methods and is serialized by mu.
type SessionAccount struct {
	mu     sync.Mutex
	state  domain.AccountState
	tm     *timemath.TimeMath
	policy engagement.Policy
}

// Option configures a SessionAccount.
type Option func(*SessionAccount)

// WithPolicy overrides the default scoring policy.
func WithPolicy(p engagement.Policy) Option {
	return func(a *SessionAccount) { a.policy = p }
}

// New wraps a loaded (or fresh) state. A missing stage or mood is derived
// from the point total.
func New(state domain.AccountState, tm *timemath.TimeMath, opts ...Option) *SessionAccount {
	if !state.Stage.Valid() {
		state.Stage = engagement.StageFor(state.TotalPoints)
	}
	if state.Mood == "" {
		state.Mood = engagement.MoodFor(state.TotalPoints, state.Streak.Current)
	}
	state.Alive = true

	a := &SessionAccount{state: state, tm: tm, policy: engagement.DefaultPolicy()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Snapshot returns a copy of the current state.
func (a *SessionAccount) Snapshot() domain.AccountState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Progress reports the account's standing against the next stage.
func (a *SessionAccount) Progress() domain.Progress {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ProgressOf(a.state)
}

// ProgressOf derives Progress from a state snapshot.
func ProgressOf(s domain.AccountState) domain.Progress {
	health := engagement.HealthFor(s.TotalPoints)
	return domain.Progress{
		Level:             engagement.LevelNumber(s.Stage),
		StageName:         engagement.StageNameWithLevel(s.Stage),
		PointsToNextStage: engagement.PointsToNextStage(s.Stage, s.TotalPoints),
		ProgressPct:       engagement.ProgressPct(s.Stage, s.TotalPoints),
		Health:            health,
		Warning:           health.Warning(),
		Unlocked:          engagement.UnlockableItems(s.TotalPoints, s.Streak.Current),
	}
}

// AddPoints applies a signed delta. Reaching the death threshold resets
// the sheep and reports a single death event; otherwise mood is recomputed
// and an evolution event is reported whenever the stage changes.
func (a *SessionAccount) AddPoints(delta int) domain.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addPoints(delta)
}

// ApplyLateBedtimePenalty deducts points for starting the night after
// today's bedtime target.
func (a *SessionAccount) ApplyLateBedtimePenalty(now time.Time, targetHHMM string) (domain.Result, error) {
	penalty, err := engagement.LateBedtimePenalty(now.In(a.tm.Location()), targetHHMM)
	if err != nil {
		return domain.Result{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addPoints(-penalty), nil
}

// ApplyLateWakePenalty deducts points for lingering after the alarm.
func (a *SessionAccount) ApplyLateWakePenalty(alarmFiredAt, now time.Time) domain.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addPoints(engagement.LateWakePenalty(alarmFiredAt, now))
}

// AdvanceStreak moves the streak forward for a night recorded on sleepDate.
func (a *SessionAccount) AdvanceStreak(sleepDate string) (domain.StreakInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	info, err := engagement.CalculateStreak(sleepDate, a.tm.LocalDateToday(), a.state.Streak.Current)
	if err != nil {
		return domain.StreakInfo{}, err
	}
	a.applyStreak(info, sleepDate)
	info.LongestStreak = a.state.Streak.Longest
	return info, nil
}

// CompleteSleepSession scores an open session, closes it, advances the
// streak and applies the points. A closed session is rejected with
// ErrSessionClosed before any state changes. Events come back in order:
// streak milestone, the point events, then achievements. If the points
// kill the sheep only the death event is reported.
func (a *SessionAccount) CompleteSleepSession(session domain.SleepSession, settings domain.UserSettings, phoneUsageMinutes int) (domain.SessionResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	prevStreak := a.state.Streak.Current
	prevStage := a.state.Stage

	// Bedtime is scored on the user's wall clock, whatever zone it was loaded in.
	session.Bedtime = session.Bedtime.In(a.tm.Location())

	breakdown, err := a.policy.SessionPoints(session, settings, prevStreak, phoneUsageMinutes)
	if err != nil {
		return domain.SessionResult{}, err
	}

	info, err := engagement.CalculateStreak(session.SleepDate, a.tm.LocalDateToday(), prevStreak)
	if err != nil {
		return domain.SessionResult{}, err
	}

	now := a.tm.Now()
	if err := session.Finalize(now, breakdown.Total); err != nil {
		return domain.SessionResult{}, err
	}

	a.applyStreak(info, session.SleepDate)
	a.state.SessionsCompleted++

	var events []domain.Event
	if m, ok := engagement.CheckStreakMilestone(info.CurrentStreak, prevStreak); ok {
		events = append(events, domain.Event{
			Type:      domain.EventMilestone,
			Milestone: m,
			Message:   engagement.StreakMessage(info.CurrentStreak),
			At:        now,
		})
	}

	res := a.addPoints(breakdown.Total)

	if res.Died() {
		return domain.SessionResult{Result: res, Breakdown: breakdown, Session: session}, nil
	}

	events = append(events, res.Events...)
	earned := engagement.CheckAchievements(engagement.AchievementProgress{
		TotalPoints:       a.state.TotalPoints,
		CurrentStreak:     info.CurrentStreak,
		PreviousStreak:    prevStreak,
		SessionsCompleted: a.state.SessionsCompleted,
		Stage:             a.state.Stage,
		PreviousStage:     prevStage,
	})
	for i := range earned {
		ach := earned[i]
		events = append(events, domain.Event{
			Type:        domain.EventAchievement,
			Achievement: &ach,
			Message:     ach.Icon + " Achievement unlocked: " + ach.Name,
			At:          now,
		})
	}
	res.Events = events

	return domain.SessionResult{Result: res, Breakdown: breakdown, Session: session}, nil
}

// ─── Internals (mu held) ────────────────────────────────────────────────────

func (a *SessionAccount) addPoints(delta int) domain.Result {
	now := a.tm.Now()
	s := &a.state
	s.TotalPoints += delta
	s.UpdatedAt = now

	if s.TotalPoints <= engagement.DeathThreshold {
		s.TotalPoints = engagement.RevivalPoints
		s.Stage = domain.StageBaby
		s.Mood = domain.MoodSad
		s.Streak.Current = 0
		s.Streak.Active = false
		s.Streak.StartDate = ""
		s.Revived = true
		s.Deaths++
		return a.result(delta, []domain.Event{{
			Type:    domain.EventDeath,
			Stage:   domain.StageBaby,
			Message: engagement.DeathMessage,
			At:      now,
		}})
	}

	s.Revived = false
	s.Mood = engagement.MoodFor(s.TotalPoints, s.Streak.Current)

	var events []domain.Event
	if next, changed := engagement.ShouldEvolve(s.Stage, s.TotalPoints); changed {
		from := s.Stage
		s.Stage = next
		msg := engagement.DevolutionMessage(next)
		if next.Rank() > from.Rank() {
			s.Mood = domain.MoodExcited
			msg = engagement.EvolutionMessage(next)
		}
		events = append(events, domain.Event{
			Type:      domain.EventEvolution,
			Stage:     next,
			FromStage: from,
			Message:   msg,
			At:        now,
		})
	}
	return a.result(delta, events)
}

func (a *SessionAccount) applyStreak(info domain.StreakInfo, sleepDate string) {
	st := &a.state.Streak
	prev := st.Current
	st.Current = info.CurrentStreak
	st.Longest = max(st.Longest, info.LongestStreak, info.CurrentStreak)
	st.Active = info.IsActive
	st.LastSleepDate = sleepDate
	switch {
	case st.Current == 0:
		st.StartDate = ""
	case prev == 0 || st.StartDate == "":
		st.StartDate = info.StreakStartDate
	}
}

func (a *SessionAccount) result(delta int, events []domain.Event) domain.Result {
	return domain.Result{
		TotalPoints: a.state.TotalPoints,
		Delta:       delta,
		Stage:       a.state.Stage,
		Mood:        a.state.Mood,
		Streak:      a.state.Streak,
		Events:      events,
	}
}
