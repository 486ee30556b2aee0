package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the prometheus collectors updated by every run.
type Metrics struct {
	runs        *prometheus.CounterVec
	schedules   *prometheus.CounterVec
	subjects    prometheus.Counter
	lastRunTime prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resultsync",
			Name:      "runs_total",
			Help:      "Ingestion runs by result.",
		}, []string{"result"}),
		schedules: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resultsync",
			Name:      "schedules_total",
			Help:      "Processed exam schedules by outcome.",
		}, []string{"status"}),
		subjects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "resultsync",
			Name:      "subjects_committed_total",
			Help:      "Subject rows handed to the database in committed schedules.",
		}),
		lastRunTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "resultsync",
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent ingestion run.",
		}),
	}
}

func (m *Metrics) observeSchedule(outcome ScheduleOutcome) {
	if m == nil {
		return
	}
	m.schedules.WithLabelValues(string(outcome.Status)).Inc()
	if outcome.Status == StatusIngested {
		m.subjects.Add(float64(outcome.Subjects))
	}
}

func (m *Metrics) observeRun(duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.runs.WithLabelValues(result).Inc()
	m.lastRunTime.Set(duration.Seconds())
}
