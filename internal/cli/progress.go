package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sleepsheep/sheep/internal/domain"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Shows how far the sheep is through its current stage:
//   [=================>............]  60% | 80 pts to Adult Sheep

const barWidth = 30

// renderBar draws a fixed-width bar for pct in [0, 100].
func renderBar(pct float64) string {
	pct = min(max(pct, 0), 100)

	filled := min(int(pct/100*float64(barWidth)), barWidth)
	empty := barWidth - filled

	switch {
	case filled == barWidth:
		return "[" + strings.Repeat("=", filled) + "]"
	case filled > 0:
		return "[" + strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty) + "]"
	default:
		return "[" + strings.Repeat(".", barWidth) + "]"
	}
}

// stageLine renders the bar plus what the next stage needs.
func stageLine(stage domain.Stage, p domain.Progress) string {
	rank := stage.Rank()
	if rank < 0 || rank+1 >= len(domain.Stages) {
		return fmt.Sprintf("%s %3.0f%% | fully grown", renderBar(100), 100.0)
	}
	next := domain.Stages[rank+1]
	return fmt.Sprintf("%s %3.0f%% | %d pts to %s",
		renderBar(p.ProgressPct), p.ProgressPct, p.PointsToNextStage, next.DisplayName())
}

// printResult writes the outcome of one mutation followed by its events.
func printResult(w io.Writer, r domain.Result) {
	fmt.Fprintf(w, "%+d points -> %d total (%s, %s)\n", r.Delta, r.TotalPoints, r.Stage.DisplayName(), r.Mood)
	printEvents(w, r.Events)
}

func printEvents(w io.Writer, events []domain.Event) {
	for _, e := range events {
		switch e.Type {
		case domain.EventDeath:
			fmt.Fprintf(w, "  [death] %s\n", e.Message)
		case domain.EventEvolution:
			fmt.Fprintf(w, "  [evolved] %s\n", e.Message)
		case domain.EventMilestone:
			fmt.Fprintf(w, "  [streak] %s\n", e.Message)
		case domain.EventAchievement:
			fmt.Fprintf(w, "  [achievement] %s\n", e.Message)
		default:
			fmt.Fprintf(w, "  %s\n", e.Message)
		}
	}
}
