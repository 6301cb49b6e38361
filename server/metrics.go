package server

import (
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// context key under which Invoke records the event's request type
const requestTypeKey = "request_type"

// invoke outcomes
const (
	outcomeDelivered      = "delivered"
	outcomeCallbackFailed = "callback_failed"
	outcomeRejected       = "rejected"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eks_manifest_resource",
		Subsystem: "server",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by route, request type, and status code.",
	}, []string{"route", "request_type", "code"})

	// a replayed Create/Update includes the settle delay and the whole
	// provisioning sequence, so buckets reach up to the Lambda timeout range
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "eks_manifest_resource",
		Subsystem: "server",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{.01, .1, .5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"route", "request_type"})

	invokeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eks_manifest_resource",
		Subsystem: "server",
		Name:      "invokes_total",
		Help:      "Replayed events by request type and outcome (delivered, callback_failed, rejected).",
	}, []string{"request_type", "outcome"})
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, invokeTotal)
}

func observeInvoke(c *echo.Context, requestType cfn.RequestType, outcome string) {
	rt := string(requestType)
	if rt == "" {
		rt = "unknown"
	}
	c.Set(requestTypeKey, rt)
	invokeTotal.WithLabelValues(rt, outcome).Inc()
}

func MetricsHandler() echo.HandlerFunc {
	h := promhttp.Handler()
	return func(c *echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}

func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.RouteInfo().Path
			resp := c.Response().(*echo.Response)
			code := strconv.Itoa(resp.Status)
			requestType, _ := c.Get(requestTypeKey).(string)

			httpRequestsTotal.WithLabelValues(route, requestType, code).Inc()
			httpRequestDuration.WithLabelValues(route, requestType).Observe(time.Since(start).Seconds())

			ev := log.Debug()
			if requestType != "" {
				ev = log.Info().Str("request_type", requestType)
			}
			ev.Str("method", c.Request().Method).
				Str("route", route).
				Str("code", code).
				Dur("duration", time.Since(start)).
				Msg("request")

			return err
		}
	}
}
