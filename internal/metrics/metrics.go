package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arlo_messages_classified_total",
			Help: "Inbound messages by classification outcome and rule",
		},
		[]string{"category", "rule"},
	)

	WorkoutsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arlo_workouts_logged_total",
			Help: "Workout entries stored",
		},
		[]string{"category"},
	)

	KnowledgeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arlo_knowledge_lookups_total",
			Help: "Knowledge retrievals by outcome",
		},
		[]string{"outcome"},
	)

	WeeklyReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arlo_weekly_reports_total",
			Help: "Weekly report attempts by status",
		},
		[]string{"status"},
	)

	WeeklyRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "arlo_weekly_run_duration_seconds",
			Help: "Duration of a weekly report run in seconds",
		},
	)
)

// Knowledge lookup outcomes.
const (
	LookupMatch   = "match"
	LookupMiss    = "miss"
	LookupFailed  = "embed_failed"
	LookupSkipped = "skipped"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
