package domain

import "time"

// ─── Sleep Sessions ─────────────────────────────────────────────────────────

// SleepSession is one night's sleep record. It is open until Finalize sets
// the wake time.
type SleepSession struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Bedtime        time.Time  `json:"bedtime"`
	WakeTime       *time.Time `json:"wake_time,omitempty"`
	SleepDate      string     `json:"sleep_date"` // YYYY-MM-DD, local
	CheckInsMissed int        `json:"check_ins_missed"`
	SnoozeCount    int        `json:"snooze_count"`
	PointsEarned   int        `json:"points_earned"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsOpen reports whether the session has not been finalized.
func (s *SleepSession) IsOpen() bool {
	return s.WakeTime == nil
}

// CheckIn records a successful check-in, forgiving one missed check-in.
func (s *SleepSession) CheckIn() {
	if s.CheckInsMissed > 0 {
		s.CheckInsMissed--
	}
}

// MissCheckIn records a check-in window that passed without response.
func (s *SleepSession) MissCheckIn() {
	s.CheckInsMissed++
}

// Snooze records one alarm snooze.
func (s *SleepSession) Snooze() {
	s.SnoozeCount++
}

// Finalize closes the session.
func (s *SleepSession) Finalize(wake time.Time, points int) error {
	if !s.IsOpen() {
		return ErrSessionClosed
	}
	s.WakeTime = &wake
	s.PointsEarned = points
	return nil
}

// ─── User Settings ──────────────────────────────────────────────────────────

// UserSettings is the user's sleep schedule.
type UserSettings struct {
	BedtimeTarget          string `json:"bedtime_target" validate:"required,hhmm"`
	WakeTimeTarget         string `json:"wake_time_target" validate:"required,hhmm"`
	NotificationEnabled    bool   `json:"notification_enabled"`
	CheckInIntervalMinutes int    `json:"check_in_interval_minutes" validate:"gte=1,lte=240"`
}

// DefaultSettings returns the schedule new users start with.
func DefaultSettings() UserSettings {
	return UserSettings{
		BedtimeTarget:          "22:00",
		WakeTimeTarget:         "07:00",
		NotificationEnabled:    true,
		CheckInIntervalMinutes: 30,
	}
}
