package validation_test

import (
	"strings"
	"testing"

	"github.com/sleepsheep/sheep/internal/domain"
	"github.com/sleepsheep/sheep/internal/validation"
)

func TestStruct_DefaultSettingsValid(t *testing.T) {
	if err := validation.Struct(domain.DefaultSettings()); err != nil {
		t.Errorf("default settings should validate: %v", err)
	}
}

func TestStruct_RejectsBadSchedule(t *testing.T) {
	s := domain.DefaultSettings()
	s.BedtimeTarget = "25:00"
	s.CheckInIntervalMinutes = 0

	err := validation.Struct(s)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "BedtimeTarget must be HH:MM") {
		t.Errorf("missing bedtime message: %s", msg)
	}
	if !strings.Contains(msg, "CheckInIntervalMinutes must be at least 1") {
		t.Errorf("missing interval message: %s", msg)
	}
}

func TestStruct_DateTag(t *testing.T) {
	type req struct {
		Day string `validate:"required,date"`
	}
	if err := validation.Struct(req{Day: "2025-07-01"}); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}
	if err := validation.Struct(req{Day: "07/01/2025"}); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
