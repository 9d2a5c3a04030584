// Copyright 2025 The A2AKit Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentmesh/a2akit"
)

// Metrics instruments the protocol surface. A nil *Metrics is a no-op, so
// instrumentation is optional.
type Metrics struct {
	requests      *prometheus.CounterVec
	activeStreams prometheus.Gauge
	executions    prometheus.Counter
}

// NewMetrics creates protocol metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "a2akit",
			Name:      "requests_total",
			Help:      "Protocol method invocations by method and outcome.",
		}, []string{"method", "outcome"}),
		activeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "a2akit",
			Name:      "active_streams",
			Help:      "Currently open streaming responses.",
		}),
		executions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "a2akit",
			Name:      "executions_total",
			Help:      "Task executions started.",
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.activeStreams, m.executions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordRequest(method a2akit.Method, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(string(method), outcome).Inc()
}

func (m *Metrics) recordExecution() {
	if m == nil {
		return
	}
	m.executions.Inc()
}

func (m *Metrics) streamOpened() {
	if m == nil {
		return
	}
	m.activeStreams.Inc()
}

func (m *Metrics) streamClosed() {
	if m == nil {
		return
	}
	m.activeStreams.Dec()
}
