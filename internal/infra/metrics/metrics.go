// Package metrics exposes Prometheus metrics for the sheep service:
// points flow, sleep sessions, evolutions, deaths and achievements.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sleepsheep/sheep/internal/domain"
)

const namespace = "sheep"

// ─── Points ─────────────────────────────────────────────────────────────────

// PointsAwarded counts points added to accounts, by source.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "points_awarded_total",
	Help:      "Total points added to accounts.",
}, []string{"source"})

// PointsDeducted counts points removed from accounts, by source.
var PointsDeducted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "points_deducted_total",
	Help:      "Total points removed from accounts.",
}, []string{"source"})

// SessionPoints tracks the total awarded per completed session.
var SessionPoints = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "session_points",
	Help:      "Points awarded per completed sleep session.",
	Buckets:   []float64{0, 5, 10, 15, 20, 30, 45, 65},
})

// ─── Sessions ───────────────────────────────────────────────────────────────

// SessionsStarted counts sleep sessions opened.
var SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "sessions_started_total",
	Help:      "Total sleep sessions started.",
})

// SessionsCompleted counts sleep sessions scored.
var SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "sessions_completed_total",
	Help:      "Total sleep sessions completed.",
})

// ─── Sheep lifecycle ────────────────────────────────────────────────────────

// Evolutions counts stage transitions by destination stage.
var Evolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "evolutions_total",
	Help:      "Total stage transitions, by new stage.",
}, []string{"stage"})

// Deaths counts sheep deaths.
var Deaths = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "deaths_total",
	Help:      "Total sheep deaths.",
})

// AchievementsUnlocked counts newly persisted achievements.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked, by achievement.",
}, []string{"id"})

// StreakMilestones counts streak milestones reached.
var StreakMilestones = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "streak_milestones_total",
	Help:      "Total streak milestones reached, by length in days.",
}, []string{"days"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1 healthy, 0 unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "health_check_status",
	Help:      "Health check status (1=healthy, 0=unhealthy).",
}, []string{"check"})

// ─── Recording helpers ──────────────────────────────────────────────────────

// RecordDelta records a points change from source.
func RecordDelta(source string, delta int) {
	switch {
	case delta > 0:
		PointsAwarded.WithLabelValues(source).Add(float64(delta))
	case delta < 0:
		PointsDeducted.WithLabelValues(source).Add(float64(-delta))
	}
}

// RecordEvents records lifecycle events from one account mutation.
func RecordEvents(events []domain.Event) {
	for _, e := range events {
		switch e.Type {
		case domain.EventEvolution:
			Evolutions.WithLabelValues(string(e.Stage)).Inc()
		case domain.EventDeath:
			Deaths.Inc()
		case domain.EventMilestone:
			StreakMilestones.WithLabelValues(strconv.Itoa(e.Milestone)).Inc()
		}
	}
}
