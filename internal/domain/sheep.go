// Package domain holds the sheep engine's value types, events and storage
// contracts. Nothing here performs I/O.
package domain

import (
	"fmt"
	"strings"
)

// ─── Evolution Stages ───────────────────────────────────────────────────────

// Stage is the sheep's evolution stage. The set is closed.
type Stage string

const (
	StageBaby          Stage = "baby"
	StageFluffy        Stage = "fluffy"
	StageDreamy        Stage = "dreamy"
	StageCloudGuardian Stage = "cloud_guardian"
)

// Stages lists every stage in ascending order.
var Stages = []Stage{StageBaby, StageFluffy, StageDreamy, StageCloudGuardian}

// ParseStage converts a stored or user-supplied label into a Stage.
func ParseStage(s string) (Stage, error) {
	st := Stage(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return st, nil
}

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageBaby, StageFluffy, StageDreamy, StageCloudGuardian:
		return true
	}
	return false
}

// Rank returns 0..3 in evolution order, or -1 for an unknown stage.
func (s Stage) Rank() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// DisplayName returns the human-facing stage name.
func (s Stage) DisplayName() string {
	switch s {
	case StageBaby:
		return "Baby Sheep"
	case StageFluffy:
		return "Fluffy Sheep"
	case StageDreamy:
		return "Dreamy Sheep"
	case StageCloudGuardian:
		return "Cloud Guardian"
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, string(s))
	}
	return []byte(s), nil
}

// UnmarshalText rejects labels outside the closed set.
func (s *Stage) UnmarshalText(b []byte) error {
	st, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ─── Mood ───────────────────────────────────────────────────────────────────

// Mood is the sheep's displayed emotional state.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodSleeping Mood = "sleeping"
	MoodSad      Mood = "sad"
	MoodExcited  Mood = "excited"
	MoodYawning  Mood = "yawning"
)

// ParseMood converts a stored label into a Mood, defaulting to happy.
func ParseMood(s string) Mood {
	switch m := Mood(s); m {
	case MoodHappy, MoodSleeping, MoodSad, MoodExcited, MoodYawning:
		return m
	}
	return MoodHappy
}

// ─── Health ─────────────────────────────────────────────────────────────────

// Health describes how close the sheep is to dying.
type Health string

const (
	HealthOK       Health = "healthy"
	HealthSick     Health = "sick"
	HealthVerySick Health = "very_sick"
	HealthDying    Health = "dying"
)

// Warning returns the user-facing warning for a health level, or "".
func (h Health) Warning() string {
	switch h {
	case HealthSick:
		return "Your sheep is getting sick! Improve your sleep habits."
	case HealthVerySick:
		return "Your sheep is very sick! Get back on track soon."
	case HealthDying:
		return "Your sheep is dying! It will not survive much longer."
	}
	return ""
}
