package handler

import (
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

var (
	invocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eks_manifest_resource",
		Subsystem: "handler",
		Name:      "invocations_total",
		Help:      "Total custom resource invocations by request type and status.",
	}, []string{"request_type", "status"})

	invocationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eks_manifest_resource",
		Subsystem: "handler",
		Name:      "invocation_duration_seconds",
		Help:      "Custom resource invocation duration in seconds.",
		Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	}, []string{"request_type"})

	stepFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eks_manifest_resource",
		Subsystem: "handler",
		Name:      "step_failures_total",
		Help:      "Total provisioning failures by step.",
	}, []string{"step"})

	stepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eks_manifest_resource",
		Subsystem: "handler",
		Name:      "step_duration_seconds",
		Help:      "Provisioning step duration in seconds.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"step"})
)

func init() {
	prometheus.MustRegister(invocationsTotal, invocationDuration, stepFailuresTotal, stepDuration)
}

func observeInvocation(rt cfn.RequestType, status string, start time.Time) {
	invocationsTotal.WithLabelValues(string(rt), status).Inc()
	invocationDuration.WithLabelValues(string(rt)).Observe(time.Since(start).Seconds())
}

// PushMetrics sends the default registry to a Prometheus Pushgateway. A Lambda
// environment is frozen between invocations, so nothing can scrape it.
func PushMetrics(url, job string) error {
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
