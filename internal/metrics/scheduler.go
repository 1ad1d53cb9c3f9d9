package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(schedulerTicksTotal, schedulerFiresTotal, schedulerSkippedTotal, schedulerJobs) }

var (
	schedulerTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminder_scheduler_ticks_total",
		Help: "Scheduler evaluation points.",
	})

	schedulerFiresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_scheduler_fires_total",
			Help: "Job executions by job kind.",
		},
		[]string{"kind"}, // daily|hourly
	)

	schedulerSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminder_scheduler_skipped_total",
		Help: "Due jobs skipped because the previous execution was still running.",
	})

	schedulerJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reminder_scheduler_jobs",
		Help: "Live scheduled jobs.",
	})
)

func IncTick() { schedulerTicksTotal.Inc() }

func IncFire(kind string) { schedulerFiresTotal.WithLabelValues(norm(kind)).Inc() }

func IncSkipped() { schedulerSkippedTotal.Inc() }

func SetJobs(n int) { schedulerJobs.Set(float64(n)) }

// Skipped exposes the counter for tests.
func Skipped() prometheus.Counter { return schedulerSkippedTotal }
