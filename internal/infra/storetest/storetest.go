// Package storetest is a shared contract suite for domain.Store
// implementations. Each backend's tests call Run with a constructor.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sleepsheep/sheep/internal/domain"
)

// Factory returns a fresh, empty store. It should register its own cleanup.
type Factory func(t *testing.T) domain.Store

// Run executes every contract test against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("AccountRoundTrip", func(t *testing.T) { testAccountRoundTrip(t, newStore(t)) })
	t.Run("AccountNotFound", func(t *testing.T) { testAccountNotFound(t, newStore(t)) })
	t.Run("AccountOverwrite", func(t *testing.T) { testAccountOverwrite(t, newStore(t)) })
	t.Run("Settings", func(t *testing.T) { testSettings(t, newStore(t)) })
	t.Run("SessionLifecycle", func(t *testing.T) { testSessionLifecycle(t, newStore(t)) })
	t.Run("ListSessionsOrder", func(t *testing.T) { testListSessionsOrder(t, newStore(t)) })
	t.Run("AchievementsIdempotent", func(t *testing.T) { testAchievements(t, newStore(t)) })
	t.Run("UsersIsolated", func(t *testing.T) { testUsersIsolated(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) {
		if err := newStore(t).Ping(context.Background()); err != nil {
			t.Errorf("Ping() error: %v", err)
		}
	})
}

var base = time.Date(2025, 7, 1, 22, 0, 0, 0, time.UTC)

func testAccountRoundTrip(t *testing.T, st domain.Store) {
	ctx := context.Background()
	in := domain.AccountState{
		UserID:      "u1",
		TotalPoints: -42,
		Streak: domain.StreakState{
			Current: 3, Longest: 9, StartDate: "2025-06-29", LastSleepDate: "2025-07-01", Active: true,
		},
		Stage:             domain.StageFluffy,
		Mood:              domain.MoodExcited,
		Revived:           true,
		SessionsCompleted: 12,
		Deaths:            1,
		UpdatedAt:         base,
	}
	if err := st.SaveAccount(ctx, in); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	out, err := st.LoadAccount(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadAccount: %v", err)
	}
	if out.TotalPoints != -42 || out.Stage != domain.StageFluffy || out.Mood != domain.MoodExcited {
		t.Errorf("points/stage/mood mismatch: %+v", out)
	}
	if out.Streak != in.Streak {
		t.Errorf("streak mismatch: got %+v, want %+v", out.Streak, in.Streak)
	}
	if !out.Revived || out.SessionsCompleted != 12 || out.Deaths != 1 {
		t.Errorf("counters mismatch: %+v", out)
	}
	if !out.UpdatedAt.Equal(base) {
		t.Errorf("updated_at = %v, want %v", out.UpdatedAt, base)
	}
}

func testAccountNotFound(t *testing.T, st domain.Store) {
	_, err := st.LoadAccount(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func testAccountOverwrite(t *testing.T, st domain.Store) {
	ctx := context.Background()
	s := domain.NewAccountState("u1")
	s.UpdatedAt = base
	_ = st.SaveAccount(ctx, s)

	s.TotalPoints = 210
	s.Stage = domain.StageDreamy
	if err := st.SaveAccount(ctx, s); err != nil {
		t.Fatalf("SaveAccount overwrite: %v", err)
	}
	out, _ := st.LoadAccount(ctx, "u1")
	if out.TotalPoints != 210 || out.Stage != domain.StageDreamy {
		t.Errorf("expected overwrite to stick, got %+v", out)
	}
}

func testSettings(t *testing.T, st domain.Store) {
	ctx := context.Background()
	if _, err := st.LoadSettings(ctx, "u1"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound before save, got %v", err)
	}

	in := domain.UserSettings{BedtimeTarget: "23:15", WakeTimeTarget: "06:45", NotificationEnabled: false, CheckInIntervalMinutes: 45}
	if err := st.SaveSettings(ctx, "u1", in); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	out, err := st.LoadSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if out != in {
		t.Errorf("settings mismatch: got %+v, want %+v", out, in)
	}
}

func testSessionLifecycle(t *testing.T, st domain.Store) {
	ctx := context.Background()
	if _, err := st.OpenSession(ctx, "u1"); !errors.Is(err, domain.ErrNoOpenSession) {
		t.Fatalf("expected ErrNoOpenSession, got %v", err)
	}

	s := domain.SleepSession{ID: "s1", UserID: "u1", Bedtime: base, SleepDate: "2025-07-01", CreatedAt: base}
	if err := st.SaveSession(ctx, s); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	open, err := st.OpenSession(ctx, "u1")
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if open.ID != "s1" || !open.Bedtime.Equal(base) || !open.IsOpen() {
		t.Errorf("unexpected open session: %+v", open)
	}

	open.MissCheckIn()
	open.Snooze()
	if err := open.Finalize(base.Add(9*time.Hour), 14); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := st.SaveSession(ctx, open); err != nil {
		t.Fatalf("SaveSession update: %v", err)
	}

	if _, err := st.OpenSession(ctx, "u1"); !errors.Is(err, domain.ErrNoOpenSession) {
		t.Errorf("finalized session should not be open, got %v", err)
	}
	list, err := st.ListSessions(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 session, got %d", len(list))
	}
	got := list[0]
	if got.CheckInsMissed != 1 || got.SnoozeCount != 1 || got.PointsEarned != 14 {
		t.Errorf("counters not persisted: %+v", got)
	}
	if got.WakeTime == nil || !got.WakeTime.Equal(base.Add(9*time.Hour)) {
		t.Errorf("wake time not persisted: %v", got.WakeTime)
	}
}

func testListSessionsOrder(t *testing.T, st domain.Store) {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		bed := base.AddDate(0, 0, i)
		wake := bed.Add(8 * time.Hour)
		s := domain.SleepSession{
			ID: "s" + string(rune('a'+i)), UserID: "u1", Bedtime: bed, WakeTime: &wake,
			SleepDate: bed.Format("2006-01-02"), PointsEarned: i, CreatedAt: bed,
		}
		if err := st.SaveSession(ctx, s); err != nil {
			t.Fatalf("SaveSession %d: %v", i, err)
		}
	}

	list, err := st.ListSessions(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(list))
	}
	if list[0].ID != "se" || list[2].ID != "sc" {
		t.Errorf("expected newest first (se..sc), got %s..%s", list[0].ID, list[2].ID)
	}
}

func testAchievements(t *testing.T, st domain.Store) {
	ctx := context.Background()
	isNew, err := st.UnlockAchievement(ctx, "u1", domain.AchFirstSleep, base)
	if err != nil {
		t.Fatalf("UnlockAchievement: %v", err)
	}
	if !isNew {
		t.Error("first unlock should be new")
	}
	isNew, _ = st.UnlockAchievement(ctx, "u1", domain.AchFirstSleep, base.Add(time.Hour))
	if isNew {
		t.Error("second unlock should not be new")
	}
	_, _ = st.UnlockAchievement(ctx, "u1", domain.AchEarlyBird, base.Add(48*time.Hour))

	list, err := st.ListAchievements(ctx, "u1")
	if err != nil {
		t.Fatalf("ListAchievements: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 achievements, got %d", len(list))
	}
	if list[0].ID != domain.AchEarlyBird {
		t.Errorf("expected newest first, got %s", list[0].ID)
	}
	if !list[1].UnlockedAt.Equal(base) {
		t.Errorf("first unlock time should be kept, got %v", list[1].UnlockedAt)
	}
}

func testUsersIsolated(t *testing.T, st domain.Store) {
	ctx := context.Background()
	_ = st.SaveSession(ctx, domain.SleepSession{ID: "a1", UserID: "alice", Bedtime: base, SleepDate: "2025-07-01", CreatedAt: base})
	_, _ = st.UnlockAchievement(ctx, "alice", domain.AchFirstSleep, base)

	if _, err := st.OpenSession(ctx, "bob"); !errors.Is(err, domain.ErrNoOpenSession) {
		t.Errorf("bob should have no open session, got %v", err)
	}
	list, _ := st.ListAchievements(ctx, "bob")
	if len(list) != 0 {
		t.Errorf("bob should have no achievements, got %v", list)
	}
	isNew, _ := st.UnlockAchievement(ctx, "bob", domain.AchFirstSleep, base)
	if !isNew {
		t.Error("bob's first unlock should be new even though alice holds it")
	}
}
