package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// ─── Stage Tests ────────────────────────────────────────────────────────────

func TestParseStage(t *testing.T) {
	tests := []struct {
		in      string
		want    Stage
		wantErr bool
	}{
		{"baby", StageBaby, false},
		{"fluffy", StageFluffy, false},
		{" Dreamy ", StageDreamy, false},
		{"cloud_guardian", StageCloudGuardian, false},
		{"legendary", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStage(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStage) {
					t.Errorf("ParseStage(%q) error = %v, want ErrUnknownStage", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStage(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseStage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStage_Rank(t *testing.T) {
	for i, st := range Stages {
		if st.Rank() != i {
			t.Errorf("%s.Rank() = %d, want %d", st, st.Rank(), i)
		}
	}
	if Stage("nope").Rank() != -1 {
		t.Error("unknown stage should rank -1")
	}
}

func TestStage_JSONRejectsUnknown(t *testing.T) {
	var v struct {
		Stage Stage `json:"stage"`
	}
	if err := json.Unmarshal([]byte(`{"stage":"fluffy"}`), &v); err != nil {
		t.Fatalf("unmarshal known stage: %v", err)
	}
	if v.Stage != StageFluffy {
		t.Errorf("expected fluffy, got %q", v.Stage)
	}

	err := json.Unmarshal([]byte(`{"stage":"golden"}`), &v)
	if !errors.Is(err, ErrUnknownStage) {
		t.Errorf("expected ErrUnknownStage, got %v", err)
	}
}

func TestParseMood_DefaultsToHappy(t *testing.T) {
	if ParseMood("excited") != MoodExcited {
		t.Error("expected excited")
	}
	if ParseMood("grumpy") != MoodHappy {
		t.Error("unknown mood should default to happy")
	}
}

// ─── Session Tests ──────────────────────────────────────────────────────────

func TestSleepSession_Lifecycle(t *testing.T) {
	s := SleepSession{ID: "s1", Bedtime: time.Date(2025, 7, 1, 22, 0, 0, 0, time.UTC)}

	s.CheckIn() // nothing to forgive yet
	if s.CheckInsMissed != 0 {
		t.Errorf("expected 0 missed, got %d", s.CheckInsMissed)
	}

	s.MissCheckIn()
	s.MissCheckIn()
	s.CheckIn()
	if s.CheckInsMissed != 1 {
		t.Errorf("expected 1 missed, got %d", s.CheckInsMissed)
	}

	s.Snooze()
	s.Snooze()
	if s.SnoozeCount != 2 {
		t.Errorf("expected 2 snoozes, got %d", s.SnoozeCount)
	}

	if !s.IsOpen() {
		t.Fatal("session should be open before Finalize")
	}
	wake := s.Bedtime.Add(9 * time.Hour)
	if err := s.Finalize(wake, 12); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if s.IsOpen() || s.PointsEarned != 12 {
		t.Errorf("expected closed session with 12 points, got open=%v points=%d", s.IsOpen(), s.PointsEarned)
	}
	if err := s.Finalize(wake, 1); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("second Finalize: expected ErrSessionClosed, got %v", err)
	}
}

func TestHealth_Warning(t *testing.T) {
	if HealthOK.Warning() != "" {
		t.Error("healthy sheep should have no warning")
	}
	for _, h := range []Health{HealthSick, HealthVerySick, HealthDying} {
		if h.Warning() == "" {
			t.Errorf("%s should have a warning", h)
		}
	}
}

func TestResult_Died(t *testing.T) {
	r := Result{Events: []Event{{Type: EventEvolution}, {Type: EventDeath}}}
	if !r.Died() {
		t.Error("expected Died() true")
	}
	if (Result{}).Died() {
		t.Error("empty result should not report death")
	}
}
