// Package engagement holds the sheep's stateless game rules: how a night is
// scored, how streaks advance, when the sheep evolves and which
// achievements a session earns. Nothing here touches storage or the clock;
// callers pass every instant in.
package engagement

import (
	"fmt"
	"time"

	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/timemath"
)

// DefaultExpectedCheckIns is the number of check-ins expected per night.
const DefaultExpectedCheckIns = 6

// Clock skew below this counts as going to bed exactly on target.
const bedtimeSkewTolerance = 5 * time.Second

// Grace period after the alarm before late-wake points are deducted.
const wakeGrace = 60 * time.Second

// ─── Bedtime ────────────────────────────────────────────────────────────────

// BedtimeAdherencePoints scores how close actual bedtime was to the target.
// Lateness is measured against the target occurrence nearest to actual, so
// a target of 23:30 and a bedtime of 00:10 is 40 minutes late. Going to bed
// early earns full points.
//
//	on time or early → 10, ≤15 min late → 5, ≤30 min late → 2, else 0
func BedtimeAdherencePoints(actual time.Time, targetHHMM string) (int, error) {
	target, err := timemath.NearestOccurrence(actual, targetHHMM)
	if err != nil {
		return 0, err
	}
	late := actual.Sub(target)
	switch {
	case late <= bedtimeSkewTolerance:
		return 10, nil
	case late <= 15*time.Minute:
		return 5, nil
	case late <= 30*time.Minute:
		return 2, nil
	default:
		return 0, nil
	}
}

// LateBedtimePenalty returns the points lost for starting the session after
// today's bedtime target: one point per two seconds late. The result is
// never negative; callers subtract it.
func LateBedtimePenalty(now time.Time, targetHHMM string) (int, error) {
	target, err := timemath.At(now, targetHHMM)
	if err != nil {
		return 0, err
	}
	late := int(now.Sub(target) / time.Second)
	if late <= 0 {
		return 0, nil
	}
	return late / 2, nil
}

// LateWakePenalty returns the (non-positive) adjustment for staying in bed
// after the alarm: after a 60 second grace, one point per five seconds.
func LateWakePenalty(alarmFiredAt, now time.Time) int {
	late := now.Sub(alarmFiredAt)
	if late <= wakeGrace {
		return 0
	}
	return -int((late - wakeGrace) / (5 * time.Second))
}

// ─── Check-ins, phone, snooze ───────────────────────────────────────────────

// CheckInPoints scores the share of check-ins answered.
func CheckInPoints(missed, expected int) int {
	if expected <= 0 {
		return 0
	}
	if missed < 0 {
		missed = 0
	}
	completed := max(0, expected-missed)
	rate := float64(completed) / float64(expected)
	switch {
	case rate >= 0.8:
		return 5
	case rate >= 0.6:
		return 3
	case rate >= 0.4:
		return 1
	default:
		return 0
	}
}

// PhoneUsagePenalty costs one point per full five minutes of phone use.
func PhoneUsagePenalty(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return minutes / 5
}

// SnoozePenalty grows with each snooze: 0, 3, 5, then three per snooze.
func SnoozePenalty(snoozes int) int {
	switch {
	case snoozes <= 0:
		return 0
	case snoozes == 1:
		return 3
	case snoozes == 2:
		return 5
	default:
		return snoozes * 3
	}
}

// ─── Streak bonus ───────────────────────────────────────────────────────────

// StreakBonusTiered rewards longer streaks in steps.
func StreakBonusTiered(streak int) int {
	switch {
	case streak >= 30:
		return 50
	case streak >= 14:
		return 30
	case streak >= 7:
		return 20
	case streak >= 3:
		return 10
	default:
		return 0
	}
}

// StreakBonusSimple pays a flat bonus once a week-long streak is reached.
func StreakBonusSimple(streak int) int {
	if streak >= 7 {
		return 20
	}
	return 0
}

// StreakBonus is the default, tiered streak bonus.
func StreakBonus(streak int) int { return StreakBonusTiered(streak) }

// ─── Session scoring ────────────────────────────────────────────────────────

// Policy carries the tunables of session scoring.
type Policy struct {
	ExpectedCheckIns int
	StreakBonus      func(streak int) int
}

// DefaultPolicy returns six expected check-ins and the tiered streak bonus.
func DefaultPolicy() Policy {
	return Policy{
		ExpectedCheckIns: DefaultExpectedCheckIns,
		StreakBonus:      StreakBonusTiered,
	}
}

// PolicyFor builds a policy from config values. variant is "tiered" or
// "simple"; anything else falls back to tiered.
func PolicyFor(expectedCheckIns int, variant string) Policy {
	p := DefaultPolicy()
	if expectedCheckIns > 0 {
		p.ExpectedCheckIns = expectedCheckIns
	}
	if variant == "simple" {
		p.StreakBonus = StreakBonusSimple
	}
	return p
}

// SessionPoints scores a session with the default policy.
func SessionPoints(session domain.SleepSession, settings domain.UserSettings, currentStreak, phoneUsageMinutes int) (domain.PointsBreakdown, error) {
	return DefaultPolicy().SessionPoints(session, settings, currentStreak, phoneUsageMinutes)
}

// SessionPoints scores one completed session. Negative counters are clamped
// to zero and reported in Anomalies. The total never goes below zero.
func (p Policy) SessionPoints(session domain.SleepSession, settings domain.UserSettings, currentStreak, phoneUsageMinutes int) (domain.PointsBreakdown, error) {
	var b domain.PointsBreakdown

	missed := clampAnomaly(&b, "check_ins_missed", session.CheckInsMissed)
	snoozes := clampAnomaly(&b, "snooze_count", session.SnoozeCount)
	phone := clampAnomaly(&b, "phone_usage_minutes", phoneUsageMinutes)
	streak := clampAnomaly(&b, "current_streak", currentStreak)

	adherence, err := BedtimeAdherencePoints(session.Bedtime, settings.BedtimeTarget)
	if err != nil {
		return domain.PointsBreakdown{}, fmt.Errorf("bedtime adherence: %w", err)
	}

	bonus := p.StreakBonus
	if bonus == nil {
		bonus = StreakBonusTiered
	}

	b.BedtimeAdherence = adherence
	b.CheckIns = CheckInPoints(missed, p.ExpectedCheckIns)
	b.StreakBonus = bonus(streak)
	b.PhonePenalty = PhoneUsagePenalty(phone)
	b.SnoozePenalty = SnoozePenalty(snoozes)
	b.Total = max(0, b.BedtimeAdherence+b.CheckIns+b.StreakBonus-b.PhonePenalty-b.SnoozePenalty)
	return b, nil
}

func clampAnomaly(b *domain.PointsBreakdown, field string, v int) int {
	if v < 0 {
		b.Anomalies = append(b.Anomalies, fmt.Sprintf("%s was %d, treated as 0", field, v))
		return 0
	}
	return v
}
