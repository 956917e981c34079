package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sleepsheep/sheep/internal/domain"
)

const sessionColumns = `id, user_id, bedtime, wake_time, sleep_date, check_ins_missed,
	snooze_count, points_earned, created_at`

// SaveSession inserts or updates a sleep session.
func (d *DB) SaveSession(ctx context.Context, s domain.SleepSession) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO sleep_sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			wake_time=excluded.wake_time,
			check_ins_missed=excluded.check_ins_missed,
			snooze_count=excluded.snooze_count,
			points_earned=excluded.points_earned`,
		s.ID, s.UserID, s.Bedtime.UnixMilli(), nullableMillis(s.WakeTime), s.SleepDate,
		s.CheckInsMissed, s.SnoozeCount, s.PointsEarned, s.CreatedAt.UnixMilli(),
	)
	return err
}

// OpenSession returns the user's unfinished session or domain.ErrNoOpenSession.
func (d *DB) OpenSession(ctx context.Context, userID string) (domain.SleepSession, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sleep_sessions
		 WHERE user_id = ? AND wake_time IS NULL
		 ORDER BY bedtime DESC LIMIT 1`, userID,
	)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SleepSession{}, domain.ErrNoOpenSession
	}
	return s, err
}

// ListSessions returns up to limit sessions, newest first.
func (d *DB) ListSessions(ctx context.Context, userID string, limit int) ([]domain.SleepSession, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sleep_sessions
		 WHERE user_id = ? ORDER BY bedtime DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.SleepSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(sc scanner) (domain.SleepSession, error) {
	var s domain.SleepSession
	var bedtime, createdAt int64
	var wake sql.NullInt64

	err := sc.Scan(&s.ID, &s.UserID, &bedtime, &wake, &s.SleepDate,
		&s.CheckInsMissed, &s.SnoozeCount, &s.PointsEarned, &createdAt)
	if err != nil {
		return domain.SleepSession{}, err
	}

	s.Bedtime = time.UnixMilli(bedtime)
	s.CreatedAt = time.UnixMilli(createdAt)
	if wake.Valid {
		w := time.UnixMilli(wake.Int64)
		s.WakeTime = &w
	}
	return s, nil
}
