package domain

import (
	"context"
	"time"
)

// ─── Storage Interfaces ─────────────────────────────────────────────────────
// Infrastructure implements these; the account service depends on them.

// AccountStore persists account snapshots and settings.
type AccountStore interface {
	// LoadAccount returns ErrAccountNotFound for an unknown user.
	LoadAccount(ctx context.Context, userID string) (AccountState, error)
	SaveAccount(ctx context.Context, state AccountState) error

	// LoadSettings returns ErrAccountNotFound when no settings were saved.
	LoadSettings(ctx context.Context, userID string) (UserSettings, error)
	SaveSettings(ctx context.Context, userID string, s UserSettings) error
}

// SessionStore persists sleep sessions.
type SessionStore interface {
	SaveSession(ctx context.Context, s SleepSession) error
	// OpenSession returns ErrNoOpenSession when the user is awake.
	OpenSession(ctx context.Context, userID string) (SleepSession, error)
	// ListSessions returns the newest sessions first.
	ListSessions(ctx context.Context, userID string, limit int) ([]SleepSession, error)
}

// AchievementStore records unlocked achievements.
type AchievementStore interface {
	// UnlockAchievement returns false if the achievement was already unlocked.
	UnlockAchievement(ctx context.Context, userID, id string, at time.Time) (bool, error)
	ListAchievements(ctx context.Context, userID string) ([]UnlockedAchievement, error)
}

// Store is the full persistence contract of the sheep service.
type Store interface {
	AccountStore
	SessionStore
	AchievementStore
	Ping(ctx context.Context) error
	Close() error
}
