// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Warden Contributors

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// kdfBuckets span light test parameters up to expensive production costs.
var kdfBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics holds the service counters. It satisfies the recorder interfaces
// of the account and httpapi packages.
type Metrics struct {
	Registrations *prometheus.CounterVec
	Logins        *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	KDFDuration   *prometheus.HistogramVec
}

// NewMetrics creates the service metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_registrations_total",
				Help: "Registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warden_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),
		KDFDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warden_kdf_duration_seconds",
				Help:    "Time spent deriving or verifying credentials",
				Buckets: kdfBuckets,
			},
			[]string{"operation"},
		),
	}

	reg.MustRegister(m.Registrations, m.Logins, m.HTTPRequests, m.KDFDuration)
	return m
}

// ObserveRegistration counts a registration attempt.
func (m *Metrics) ObserveRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

// ObserveLogin counts a login attempt.
func (m *Metrics) ObserveLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// ObserveKDF records one derivation or verification.
func (m *Metrics) ObserveKDF(operation string, seconds float64) {
	m.KDFDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveHTTPRequest counts a served request.
func (m *Metrics) ObserveHTTPRequest(route string, status int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
