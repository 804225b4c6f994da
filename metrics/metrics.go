// Package metrics collects Prometheus metrics about account sign-in.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LoginMetrics is what the account selection screen reports.
type LoginMetrics interface {
	RecordLoginAttempt(kind string, strategy string)
	RecordLoginFailure(kind string)
	RecordLoginLatency(duration time.Duration)
	RecordSessionReuse(kind string)
	RecordSignOut(kind string)
}

type Collector struct {
	loginAttempts *prometheus.CounterVec
	loginFailures *prometheus.CounterVec
	loginLatency  prometheus.Histogram
	sessionReuses *prometheus.CounterVec
	signOuts      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "photobrowser_login_attempts_total",
			Help: "Sign-in attempts by account kind and strategy.",
		}, []string{"kind", "strategy"}),
		loginFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "photobrowser_login_failures_total",
			Help: "Failed sign-ins by account kind.",
		}, []string{"kind"}),
		loginLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "photobrowser_login_latency_seconds",
			Help:    "Time from account selection to a signed-in session.",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		sessionReuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "photobrowser_session_reuses_total",
			Help: "Selections served by an already live session.",
		}, []string{"kind"}),
		signOuts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "photobrowser_sign_outs_total",
			Help: "Sessions revoked when the account selection screen is shown.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.loginAttempts,
		c.loginFailures,
		c.loginLatency,
		c.sessionReuses,
		c.signOuts,
	)
	return c
}

func (c *Collector) RecordLoginAttempt(kind string, strategy string) {
	c.loginAttempts.WithLabelValues(kind, strategy).Inc()
}

func (c *Collector) RecordLoginFailure(kind string) {
	c.loginFailures.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordLoginLatency(duration time.Duration) {
	c.loginLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordSessionReuse(kind string) {
	c.sessionReuses.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordSignOut(kind string) {
	c.signOuts.WithLabelValues(kind).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordLoginAttempt(string, string) {}
func (Nop) RecordLoginFailure(string)         {}
func (Nop) RecordLoginLatency(time.Duration)  {}
func (Nop) RecordSessionReuse(string)         {}
func (Nop) RecordSignOut(string)              {}
