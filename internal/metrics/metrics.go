// Package metrics records deployment run metrics and pushes them to a
// Prometheus Pushgateway. A recorder without a gateway URL only keeps the
// values in memory.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "rwg"

type Recorder struct {
	registry *prometheus.Registry
	pusher   *push.Pusher
	logger   *slog.Logger

	stepDuration         *prometheus.GaugeVec
	gasUsed              prometheus.Gauge
	verificationAttempts prometheus.Gauge
	result               *prometheus.GaugeVec
	lastRun              prometheus.Gauge
}

func New(cfg configs.Metrics, network string) *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		logger:   logger.Named("metrics"),
		stepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of each deployment step in the last run",
		}, []string{"step"}),
		gasUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deploy_gas_used",
			Help:      "Gas used by the last deployment transaction",
		}),
		verificationAttempts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "verification_attempts",
			Help:      "Explorer requests made while verifying in the last run",
		}),
		result: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_result",
			Help:      "Result of the last run, 1 for the result that occurred",
		}, []string{"result"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	registry.MustRegister(r.stepDuration, r.gasUsed, r.verificationAttempts, r.result, r.lastRun)

	if cfg.PushgatewayURL != "" {
		job := cfg.Job
		if job == "" {
			job = namespace
		}
		r.pusher = push.New(cfg.PushgatewayURL, job).Gatherer(registry)
		if network != "" {
			r.pusher = r.pusher.Grouping("network", network)
		}
	}

	return r
}

func (r *Recorder) ObserveStep(step string, d time.Duration) {
	r.stepDuration.WithLabelValues(step).Set(d.Seconds())
}

func (r *Recorder) SetGasUsed(gas uint64) {
	r.gasUsed.Set(float64(gas))
}

func (r *Recorder) SetVerificationAttempts(attempts int) {
	r.verificationAttempts.Set(float64(attempts))
}

// SetResult marks result as the outcome of this run.
func (r *Recorder) SetResult(result string) {
	r.result.Reset()
	r.result.WithLabelValues(result).Set(1)
	r.lastRun.SetToCurrentTime()
}

// Push sends the collected metrics to the gateway. It is a no-op without one.
func (r *Recorder) Push(ctx context.Context) error {
	if r.pusher == nil {
		return nil
	}

	if err := r.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	r.logger.Debug("metrics pushed")

	return nil
}
