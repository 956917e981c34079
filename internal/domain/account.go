package domain

import "time"

// ─── Account State ──────────────────────────────────────────────────────────

// AccountState is everything the engine tracks for one user.
type AccountState struct {
	UserID            string      `json:"user_id"`
	TotalPoints       int         `json:"total_points"`
	Streak            StreakState `json:"streak"`
	Stage             Stage       `json:"stage"`
	Mood              Mood        `json:"mood"`
	Alive             bool        `json:"alive"`
	Revived           bool        `json:"revived"`
	SessionsCompleted int         `json:"sessions_completed"`
	Deaths            int         `json:"deaths"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// NewAccountState returns the state of a brand-new user.
func NewAccountState(userID string) AccountState {
	return AccountState{
		UserID: userID,
		Stage:  StageBaby,
		Mood:   MoodHappy,
		Alive:  true,
	}
}

// ─── Events ─────────────────────────────────────────────────────────────────

// EventType classifies notable state transitions.
type EventType string

const (
	EventEvolution   EventType = "evolution"
	EventAchievement EventType = "achievement"
	EventDeath       EventType = "death"
	EventMilestone   EventType = "milestone"
)

// Event is a notable transition produced by an account mutation.
type Event struct {
	Type        EventType    `json:"type"`
	Message     string       `json:"message"`
	Stage       Stage        `json:"stage,omitempty"`
	FromStage   Stage        `json:"from_stage,omitempty"`
	Achievement *Achievement `json:"achievement,omitempty"`
	Milestone   int          `json:"milestone,omitempty"`
	At          time.Time    `json:"at"`
}

// Result is the outcome of one account mutation.
type Result struct {
	TotalPoints int         `json:"total_points"`
	Delta       int         `json:"delta"`
	Stage       Stage       `json:"stage"`
	Mood        Mood        `json:"mood"`
	Streak      StreakState `json:"streak"`
	Events      []Event     `json:"events,omitempty"`
}

// Died reports whether the mutation hit the death threshold.
func (r Result) Died() bool {
	for _, e := range r.Events {
		if e.Type == EventDeath {
			return true
		}
	}
	return false
}

// SessionResult is the outcome of completing a sleep session.
type SessionResult struct {
	Result
	Breakdown PointsBreakdown `json:"breakdown"`
	Session   SleepSession    `json:"session"`
}

// Progress summarizes where an account stands against the next goals.
type Progress struct {
	Level             int          `json:"level"`
	StageName         string       `json:"stage_name"`
	PointsToNextStage int          `json:"points_to_next_stage"`
	ProgressPct       float64      `json:"progress_pct"`
	Health            Health       `json:"health"`
	Warning           string       `json:"warning,omitempty"`
	Unlocked          []Unlockable `json:"unlocked"`
}
