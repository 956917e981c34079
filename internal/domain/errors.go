package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Death, evolution and achievements are events, never errors.

var (
	// Input errors
	ErrInvalidTimeFormat = errors.New("invalid time of day, want HH:MM")
	ErrInvalidDateFormat = errors.New("invalid date, want YYYY-MM-DD")
	ErrUnknownStage      = errors.New("unknown sheep stage")
	ErrInvalidSettings   = errors.New("invalid user settings")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Session errors
	ErrNoOpenSession = errors.New("no sleep session in progress")
	ErrSessionOpen   = errors.New("a sleep session is already in progress")
	ErrSessionClosed = errors.New("sleep session already ended")
)
