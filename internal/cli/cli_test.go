package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sleepsheep/sheep/internal/daemon"
	"github.com/sleepsheep/sheep/internal/domain"
)

// ═══════════════════════════════════════════════════════════════════════════
// Progress bar
// ═══════════════════════════════════════════════════════════════════════════

func TestRenderBar(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "[" + strings.Repeat(".", barWidth) + "]"},
		{-5, "[" + strings.Repeat(".", barWidth) + "]"},
		{50, "[" + strings.Repeat("=", 14) + ">" + strings.Repeat(".", 15) + "]"},
		{100, "[" + strings.Repeat("=", barWidth) + "]"},
		{250, "[" + strings.Repeat("=", barWidth) + "]"},
	}
	for _, tt := range tests {
		if got := renderBar(tt.pct); got != tt.want {
			t.Errorf("renderBar(%v) = %q, want %q", tt.pct, got, tt.want)
		}
		if n := len(renderBar(tt.pct)); n != barWidth+2 {
			t.Errorf("renderBar(%v) width = %d", tt.pct, n)
		}
	}
}

func TestStageLine(t *testing.T) {
	line := stageLine(domain.StageFluffy, domain.Progress{PointsToNextStage: 80, ProgressPct: 20})
	if !strings.Contains(line, "80 pts to Dreamy") {
		t.Errorf("stageLine = %q", line)
	}
	top := stageLine(domain.StageCloudGuardian, domain.Progress{ProgressPct: 100})
	if !strings.Contains(top, "fully grown") {
		t.Errorf("top stageLine = %q", top)
	}
}

// ─── Events ─────────────────────────────────────────────────────────────────

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, domain.Result{
		TotalPoints: 55,
		Delta:       10,
		Stage:       domain.StageFluffy,
		Mood:        domain.MoodHappy,
		Events: []domain.Event{
			{Type: domain.EventEvolution, Message: "Your sheep grew fluffy!"},
		},
	})
	out := buf.String()
	if !strings.Contains(out, "+10 points -> 55 total") {
		t.Errorf("missing summary line: %q", out)
	}
	if !strings.Contains(out, "[evolved] Your sheep grew fluffy!") {
		t.Errorf("missing event line: %q", out)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// sheep score
// ═══════════════════════════════════════════════════════════════════════════

func scoreAt(t *testing.T, opts scoreFlags) string {
	t.Helper()
	var buf bytes.Buffer
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	if err := runScore(&buf, daemon.DefaultConfig(), opts, now); err != nil {
		t.Fatalf("runScore: %v", err)
	}
	return buf.String()
}

func totalLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "TOTAL") {
			return strings.Join(strings.Fields(line), " ")
		}
	}
	return ""
}

func TestRunScore_PerfectNight(t *testing.T) {
	out := scoreAt(t, scoreFlags{bedtime: "22:00"})
	if got := totalLine(out); got != "TOTAL 15" {
		t.Errorf("total = %q, want TOTAL 15\n%s", got, out)
	}
}

func TestRunScore_AcrossMidnight(t *testing.T) {
	// 00:10 against 23:30 is 40 minutes late: no adherence points.
	out := scoreAt(t, scoreFlags{bedtime: "00:10", target: "23:30"})
	if got := totalLine(out); got != "TOTAL 5" {
		t.Errorf("total = %q, want TOTAL 5\n%s", got, out)
	}
}

func TestRunScore_Legacy(t *testing.T) {
	out := scoreAt(t, scoreFlags{bedtime: "22:10", missed: 1, snoozes: 2, legacy: true})
	// 5 adherence, -6 check-ins, -8 snoozes.
	if got := totalLine(out); got != "TOTAL -9" {
		t.Errorf("total = %q, want TOTAL -9\n%s", got, out)
	}
}

func TestRunScore_NegativeInputReported(t *testing.T) {
	out := scoreAt(t, scoreFlags{bedtime: "22:00", snoozes: -3})
	if !strings.Contains(out, "snooze_count was -3") {
		t.Errorf("anomaly not reported:\n%s", out)
	}
}

func TestRunScore_BadTime(t *testing.T) {
	var buf bytes.Buffer
	err := runScore(&buf, daemon.DefaultConfig(), scoreFlags{bedtime: "25:00"}, time.Now())
	if err == nil {
		t.Fatal("expected error for 25:00")
	}
}

// ─── Catalog ────────────────────────────────────────────────────────────────

func TestPrintStages(t *testing.T) {
	var buf bytes.Buffer
	printStages(&buf)
	for _, st := range domain.Stages {
		if !strings.Contains(buf.String(), st.DisplayName()) {
			t.Errorf("stage %s missing from output", st)
		}
	}
}

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	printCatalog(&buf)
	for _, id := range []string{domain.AchFirstSleep, domain.AchSheepEvolver, "hat_simple", "cloud_realm"} {
		if !strings.Contains(buf.String(), id) {
			t.Errorf("%s missing from catalog", id)
		}
	}
}
