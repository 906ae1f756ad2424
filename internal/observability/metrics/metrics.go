// Package metrics exposes Prometheus instruments for the scheduler and the
// message-dispatch pipeline.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries constant labels applied to every instrument.
type Config struct {
	ServiceName string
	Environment string
}

const (
	JobReasonDeadlineExceeded = "deadline_exceeded"
	JobReasonUniqueViolation  = "unique_violation"
	JobReasonUnknown          = "unknown"
)

// Metrics captures scheduler and dispatcher health signals.
type Metrics struct {
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobTimeouts *prometheus.CounterVec
	jobErrors   *prometheus.CounterVec
	runLoopLag  prometheus.Observer

	dispatchAttempts  *prometheus.CounterVec
	dispatchFallbacks *prometheus.CounterVec
	messagesRecorded  *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// Default returns the singleton metrics registry.
func Default() *Metrics {
	return WithConfig(Config{})
}

// WithConfig returns the singleton metrics registry using config labels.
func WithConfig(cfg Config) *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return metrics
}

// ResetForTest resets the metrics singleton for tests.
func ResetForTest() {
	metricsOnce = sync.Once{}
	metrics = nil
}

func newMetrics(registerer prometheus.Registerer, cfg Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "cobrato"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "cobrato_scheduler_job_runs_total",
		Help:        "Scheduler job runs by name.",
		ConstLabels: constLabels,
	}, []string{"job"})

	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "cobrato_scheduler_job_duration_seconds",
		Help:        "Scheduler job duration by name.",
		ConstLabels: constLabels,
		Buckets:     prometheus.DefBuckets,
	}, []string{"job"})

	jobTimeouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "cobrato_scheduler_job_timeouts_total",
		Help:        "Scheduler job timeouts by name.",
		ConstLabels: constLabels,
	}, []string{"job"})

	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "cobrato_scheduler_job_errors_total",
		Help:        "Scheduler job errors by name and reason.",
		ConstLabels: constLabels,
	}, []string{"job", "reason"})

	runLoopLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "cobrato_scheduler_run_loop_lag_seconds",
		Help:        "Delay between the scheduled and the actual run start.",
		ConstLabels: constLabels,
		Buckets:     []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	})

	dispatchAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "cobrato_dispatch_attempts_total",
		Help:        "Channel delivery attempts by channel and result.",
		ConstLabels: constLabels,
	}, []string{"channel", "result"})

	dispatchFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "cobrato_dispatch_fallbacks_total",
		Help:        "Times delivery fell through to a lower-priority channel.",
		ConstLabels: constLabels,
	}, []string{"channel"})

	messagesRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "cobrato_messages_recorded_total",
		Help:        "Message history records written by type and status.",
		ConstLabels: constLabels,
	}, []string{"type", "status"})

	registerer.MustRegister(
		jobRuns,
		jobDuration,
		jobTimeouts,
		jobErrors,
		runLoopLag,
		dispatchAttempts,
		dispatchFallbacks,
		messagesRecorded,
	)

	return &Metrics{
		jobRuns:           jobRuns,
		jobDuration:       jobDuration,
		jobTimeouts:       jobTimeouts,
		jobErrors:         jobErrors,
		runLoopLag:        runLoopLag,
		dispatchAttempts:  dispatchAttempts,
		dispatchFallbacks: dispatchFallbacks,
		messagesRecorded:  messagesRecorded,
	}
}

func (m *Metrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *Metrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *Metrics) IncJobTimeout(job string) {
	if m == nil {
		return
	}
	m.jobTimeouts.WithLabelValues(job).Inc()
}

func (m *Metrics) IncJobError(job, reason string) {
	if m == nil {
		return
	}
	if strings.TrimSpace(reason) == "" {
		reason = JobReasonUnknown
	}
	m.jobErrors.WithLabelValues(job, reason).Inc()
}

func (m *Metrics) ObserveRunLoopLag(lag time.Duration) {
	if m == nil {
		return
	}
	m.runLoopLag.Observe(lag.Seconds())
}

func (m *Metrics) IncDispatchAttempt(channel, result string) {
	if m == nil {
		return
	}
	m.dispatchAttempts.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) IncDispatchFallback(channel string) {
	if m == nil {
		return
	}
	m.dispatchFallbacks.WithLabelValues(channel).Inc()
}

func (m *Metrics) IncMessageRecorded(messageType, status string) {
	if m == nil {
		return
	}
	m.messagesRecorded.WithLabelValues(messageType, status).Inc()
}
