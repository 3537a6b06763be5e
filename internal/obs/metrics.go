// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package obs holds the Prometheus metrics of the service.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances can coexist in tests.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	logins              *prometheus.CounterVec
	approvalTransitions *prometheus.CounterVec
	notificationsFailed *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillnaav_logins_total",
			Help: "Login attempts by role and outcome.",
		}, []string{"role", "outcome"}),
		approvalTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillnaav_approval_transitions_total",
			Help: "Approval decisions written, by subject and transition.",
		}, []string{"subject", "transition"}),
		notificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillnaav_notifications_failed_total",
			Help: "Notifications that could not be delivered.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight, m.httpRequestsTotal, m.httpRequestDuration,
		m.logins, m.approvalTransitions, m.notificationsFailed,
	)
	return m
}

// StreamCounter reports live event stream connections.
type StreamCounter interface {
	ClientCount() int
	TopicCount() int
	SubscriberCount() int
}

// TrackStreams exports the connection counts of streams as gauges.
func (m *Metrics) TrackStreams(streams StreamCounter) {
	if m == nil || streams == nil {
		return
	}
	gauge := func(name, help string, value func() int) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
			return float64(value())
		})
	}
	m.registry.MustRegister(
		gauge("skillnaav_stream_connections", "Open message stream connections.", streams.ClientCount),
		gauge("skillnaav_stream_threads", "Message threads with at least one open stream.", streams.TopicCount),
		gauge("skillnaav_stream_subscribers", "Distinct identities with an open stream.", streams.SubscriberCount),
	)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Login counts a login attempt.
func (m *Metrics) Login(role, outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(role, outcome).Inc()
}

// ApprovalTransition counts a written approval decision.
func (m *Metrics) ApprovalTransition(subject, transition string) {
	if m == nil {
		return
	}
	m.approvalTransitions.WithLabelValues(subject, transition).Inc()
}

// NotificationFailed counts an undeliverable notification.
func (m *Metrics) NotificationFailed(kind string) {
	if m == nil {
		return
	}
	m.notificationsFailed.WithLabelValues(kind).Inc()
}

// Middleware records request count and latency labelled by route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			m.httpInFlight.Inc()
			defer m.httpInFlight.Dec()

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			labels := []string{c.Request().Method, path, strconv.Itoa(status)}
			m.httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			m.httpRequestsTotal.WithLabelValues(labels...).Inc()
			return err
		}
	}
}
