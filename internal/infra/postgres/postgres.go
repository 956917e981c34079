// Package postgres implements domain.Store on PostgreSQL via pgxpool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/logging"
)

var _ domain.Store = (*Store)(nil)

// Store keeps sheep state in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		user_id            TEXT PRIMARY KEY,
		total_points       INTEGER NOT NULL DEFAULT 0,
		streak_current     INTEGER NOT NULL DEFAULT 0,
		streak_longest     INTEGER NOT NULL DEFAULT 0,
		streak_start       TEXT NOT NULL DEFAULT '',
		last_sleep_date    TEXT NOT NULL DEFAULT '',
		streak_active      BOOLEAN NOT NULL DEFAULT FALSE,
		stage              TEXT NOT NULL DEFAULT 'baby',
		mood               TEXT NOT NULL DEFAULT 'happy',
		revived            BOOLEAN NOT NULL DEFAULT FALSE,
		sessions_completed INTEGER NOT NULL DEFAULT 0,
		deaths             INTEGER NOT NULL DEFAULT 0,
		updated_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id              TEXT PRIMARY KEY,
		bedtime_target       TEXT NOT NULL,
		wake_time_target     TEXT NOT NULL,
		notification_enabled BOOLEAN NOT NULL,
		check_in_interval    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sleep_sessions (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		bedtime          TIMESTAMPTZ NOT NULL,
		wake_time        TIMESTAMPTZ,
		sleep_date       TEXT NOT NULL,
		check_ins_missed INTEGER NOT NULL DEFAULT 0,
		snooze_count     INTEGER NOT NULL DEFAULT 0,
		points_earned    INTEGER NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user_bedtime ON sleep_sessions(user_id, bedtime DESC)`,
	`CREATE TABLE IF NOT EXISTS achievements (
		user_id     TEXT NOT NULL,
		id          TEXT NOT NULL,
		unlocked_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, id)
	)`,
}

// Open connects to dsn and applies migrations.
func Open(ctx context.Context, dsn string, logger logging.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	s := &Store{pool: pool, logger: logger}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for i, m := range migrations {
		if _, err := s.pool.Exec(ctx, m); err != nil {
			s.logger.Errorf("postgres migration %d failed: %v", i, err)
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Truncate empties every table. Used by tests.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE accounts, user_settings, sleep_sessions, achievements`)
	return err
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// --- Accounts ---

// LoadAccount returns the stored account or domain.ErrAccountNotFound.
func (s *Store) LoadAccount(ctx context.Context, userID string) (domain.AccountState, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT user_id, total_points, streak_current, streak_longest, streak_start,
			last_sleep_date, streak_active, stage, mood, revived, sessions_completed,
			deaths, updated_at
		 FROM accounts WHERE user_id = $1`, userID)

	var st domain.AccountState
	var stage, mood string
	err := row.Scan(&st.UserID, &st.TotalPoints, &st.Streak.Current, &st.Streak.Longest,
		&st.Streak.StartDate, &st.Streak.LastSleepDate, &st.Streak.Active, &stage, &mood,
		&st.Revived, &st.SessionsCompleted, &st.Deaths, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AccountState{}, domain.ErrAccountNotFound
	}
	if err != nil {
		s.logger.Errorf("failed to load account %s: %v", userID, err)
		return domain.AccountState{}, err
	}

	if st.Stage, err = domain.ParseStage(stage); err != nil {
		return domain.AccountState{}, fmt.Errorf("account %s: %w", userID, err)
	}
	st.Mood = domain.ParseMood(mood)
	st.Alive = true
	return st, nil
}

// SaveAccount upserts an account snapshot.
func (s *Store) SaveAccount(ctx context.Context, st domain.AccountState) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (user_id, total_points, streak_current, streak_longest,
			streak_start, last_sleep_date, streak_active, stage, mood, revived,
			sessions_completed, deaths, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (user_id) DO UPDATE SET
			total_points=EXCLUDED.total_points,
			streak_current=EXCLUDED.streak_current,
			streak_longest=EXCLUDED.streak_longest,
			streak_start=EXCLUDED.streak_start,
			last_sleep_date=EXCLUDED.last_sleep_date,
			streak_active=EXCLUDED.streak_active,
			stage=EXCLUDED.stage,
			mood=EXCLUDED.mood,
			revived=EXCLUDED.revived,
			sessions_completed=EXCLUDED.sessions_completed,
			deaths=EXCLUDED.deaths,
			updated_at=EXCLUDED.updated_at`,
		st.UserID, st.TotalPoints, st.Streak.Current, st.Streak.Longest, st.Streak.StartDate,
		st.Streak.LastSleepDate, st.Streak.Active, string(st.Stage), string(st.Mood), st.Revived,
		st.SessionsCompleted, st.Deaths, st.UpdatedAt,
	)
	if err != nil {
		s.logger.Errorf("failed to save account %s: %v", st.UserID, err)
	}
	return err
}

// LoadSettings returns saved settings or domain.ErrAccountNotFound.
func (s *Store) LoadSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	var us domain.UserSettings
	err := s.pool.QueryRow(ctx,
		`SELECT bedtime_target, wake_time_target, notification_enabled, check_in_interval
		 FROM user_settings WHERE user_id = $1`, userID,
	).Scan(&us.BedtimeTarget, &us.WakeTimeTarget, &us.NotificationEnabled, &us.CheckInIntervalMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserSettings{}, domain.ErrAccountNotFound
	}
	return us, err
}

// SaveSettings upserts a user's schedule.
func (s *Store) SaveSettings(ctx context.Context, userID string, us domain.UserSettings) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_settings (user_id, bedtime_target, wake_time_target, notification_enabled, check_in_interval)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
			bedtime_target=EXCLUDED.bedtime_target,
			wake_time_target=EXCLUDED.wake_time_target,
			notification_enabled=EXCLUDED.notification_enabled,
			check_in_interval=EXCLUDED.check_in_interval`,
		userID, us.BedtimeTarget, us.WakeTimeTarget, us.NotificationEnabled, us.CheckInIntervalMinutes,
	)
	if err != nil {
		s.logger.Errorf("failed to save settings for %s: %v", userID, err)
	}
	return err
}

// --- Sessions ---

const sessionColumns = `id, user_id, bedtime, wake_time, sleep_date, check_ins_missed,
	snooze_count, points_earned, created_at`

// SaveSession upserts a sleep session.
func (s *Store) SaveSession(ctx context.Context, sess domain.SleepSession) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sleep_sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
			wake_time=EXCLUDED.wake_time,
			check_ins_missed=EXCLUDED.check_ins_missed,
			snooze_count=EXCLUDED.snooze_count,
			points_earned=EXCLUDED.points_earned`,
		sess.ID, sess.UserID, sess.Bedtime, sess.WakeTime, sess.SleepDate,
		sess.CheckInsMissed, sess.SnoozeCount, sess.PointsEarned, sess.CreatedAt,
	)
	if err != nil {
		s.logger.Errorf("failed to save session %s: %v", sess.ID, err)
	}
	return err
}

// OpenSession returns the user's unfinished session or domain.ErrNoOpenSession.
func (s *Store) OpenSession(ctx context.Context, userID string) (domain.SleepSession, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sleep_sessions
		 WHERE user_id = $1 AND wake_time IS NULL
		 ORDER BY bedtime DESC LIMIT 1`, userID)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SleepSession{}, domain.ErrNoOpenSession
	}
	return sess, err
}

// ListSessions returns up to limit sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, userID string, limit int) ([]domain.SleepSession, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sleep_sessions
		 WHERE user_id = $1 ORDER BY bedtime DESC LIMIT $2`, userID, limit)
	if err != nil {
		s.logger.Errorf("failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.SleepSession{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			s.logger.Errorf("failed to scan session: %v", err)
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (domain.SleepSession, error) {
	var sess domain.SleepSession
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Bedtime, &sess.WakeTime, &sess.SleepDate,
		&sess.CheckInsMissed, &sess.SnoozeCount, &sess.PointsEarned, &sess.CreatedAt)
	return sess, err
}

// --- Achievements ---

// UnlockAchievement records an achievement once. Returns false if it was
// already unlocked.
func (s *Store) UnlockAchievement(ctx context.Context, userID, id string, at time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO achievements (user_id, id, unlocked_at) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`, userID, id, at)
	if err != nil {
		s.logger.Errorf("failed to unlock achievement %s: %v", id, err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListAchievements returns a user's unlocked achievements, newest first.
func (s *Store) ListAchievements(ctx context.Context, userID string) ([]domain.UnlockedAchievement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, unlocked_at FROM achievements
		 WHERE user_id = $1 ORDER BY unlocked_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.UnlockedAchievement{}
	for rows.Next() {
		var a domain.UnlockedAchievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.UnlockedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
