package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sleepsheep/sheep/internal/domain"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

// LoadAccount returns the stored account or domain.ErrAccountNotFound.
func (d *DB) LoadAccount(ctx context.Context, userID string) (domain.AccountState, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT user_id, total_points, current_streak, longest_streak, streak_start_date,
		        last_sleep_date, streak_active, stage, mood, revived, sessions_completed,
		        deaths, updated_at
		 FROM accounts WHERE user_id = ?`, userID,
	)

	var s domain.AccountState
	var stage, mood string
	var updatedAt int64
	err := row.Scan(&s.UserID, &s.TotalPoints, &s.Streak.Current, &s.Streak.Longest,
		&s.Streak.StartDate, &s.Streak.LastSleepDate, &s.Streak.Active, &stage, &mood,
		&s.Revived, &s.SessionsCompleted, &s.Deaths, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AccountState{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.AccountState{}, err
	}

	if s.Stage, err = domain.ParseStage(stage); err != nil {
		return domain.AccountState{}, fmt.Errorf("account %s: %w", userID, err)
	}
	s.Mood = domain.ParseMood(mood)
	s.Alive = true
	s.UpdatedAt = time.UnixMilli(updatedAt)
	return s, nil
}

// SaveAccount inserts or replaces an account snapshot.
func (d *DB) SaveAccount(ctx context.Context, s domain.AccountState) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, total_points, current_streak, longest_streak,
		        streak_start_date, last_sleep_date, streak_active, stage, mood, revived,
		        sessions_completed, deaths, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			total_points=excluded.total_points,
			current_streak=excluded.current_streak,
			longest_streak=excluded.longest_streak,
			streak_start_date=excluded.streak_start_date,
			last_sleep_date=excluded.last_sleep_date,
			streak_active=excluded.streak_active,
			stage=excluded.stage,
			mood=excluded.mood,
			revived=excluded.revived,
			sessions_completed=excluded.sessions_completed,
			deaths=excluded.deaths,
			updated_at=excluded.updated_at`,
		s.UserID, s.TotalPoints, s.Streak.Current, s.Streak.Longest, s.Streak.StartDate,
		s.Streak.LastSleepDate, s.Streak.Active, string(s.Stage), string(s.Mood), s.Revived,
		s.SessionsCompleted, s.Deaths, s.UpdatedAt.UnixMilli(),
	)
	return err
}

// ─── Settings ───────────────────────────────────────────────────────────────

// LoadSettings returns saved settings or domain.ErrAccountNotFound.
func (d *DB) LoadSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	var s domain.UserSettings
	err := d.db.QueryRowContext(ctx,
		`SELECT bedtime_target, wake_time_target, notification_enabled, check_in_interval
		 FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&s.BedtimeTarget, &s.WakeTimeTarget, &s.NotificationEnabled, &s.CheckInIntervalMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserSettings{}, domain.ErrAccountNotFound
	}
	return s, err
}

// SaveSettings inserts or replaces a user's schedule.
func (d *DB) SaveSettings(ctx context.Context, userID string, s domain.UserSettings) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, bedtime_target, wake_time_target, notification_enabled, check_in_interval)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			bedtime_target=excluded.bedtime_target,
			wake_time_target=excluded.wake_time_target,
			notification_enabled=excluded.notification_enabled,
			check_in_interval=excluded.check_in_interval`,
		userID, s.BedtimeTarget, s.WakeTimeTarget, s.NotificationEnabled, s.CheckInIntervalMinutes,
	)
	return err
}

// ─── Achievements ───────────────────────────────────────────────────────────

// UnlockAchievement records an achievement as unlocked.
// Returns false if already unlocked (idempotent).
func (d *DB) UnlockAchievement(ctx context.Context, userID, id string, at time.Time) (bool, error) {
	result, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO achievements (user_id, id, unlocked_at) VALUES (?, ?, ?)`,
		userID, id, at.UnixMilli(),
	)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly unlocked
}

// ListAchievements returns a user's unlocked achievements, newest first.
func (d *DB) ListAchievements(ctx context.Context, userID string) ([]domain.UnlockedAchievement, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, unlocked_at FROM achievements WHERE user_id = ? ORDER BY unlocked_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	achievements := []domain.UnlockedAchievement{}
	for rows.Next() {
		a := domain.UnlockedAchievement{UserID: userID}
		var unlockedAt int64
		if err := rows.Scan(&a.ID, &unlockedAt); err != nil {
			return nil, err
		}
		a.UnlockedAt = time.UnixMilli(unlockedAt)
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}
