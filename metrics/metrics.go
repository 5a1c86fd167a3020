// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics provides Prometheus collectors for query clients and servers.
//
// All methods are safe to call on a nil receiver, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusOk    = "ok"
	StatusError = "error"
)

// ClientMetrics tracks requests sent by a query client
type ClientMetrics struct {
	Requests      *prometheus.CounterVec
	Duration      prometheus.Histogram
	BytesSent     prometheus.Counter
	BytesReceived prometheus.Counter
}

// NewClientMetrics registers the client collectors with the specified registerer
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	factory := promauto.With(reg)
	return &ClientMetrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gocypher_client_requests_total",
				Help: "Total number of query requests by operation and status",
			},
			[]string{"op", "status"},
		),
		Duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gocypher_client_request_duration_seconds",
				Help:    "Round-trip latency of query requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
		),
		BytesSent: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gocypher_client_sent_bytes_total",
				Help: "Total request payload bytes sent",
			},
		),
		BytesReceived: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gocypher_client_received_bytes_total",
				Help: "Total reply payload bytes received, including discarded parts",
			},
		),
	}
}

// ObserveRequest records one completed request
func (m *ClientMetrics) ObserveRequest(
	op string,
	status string,
	duration time.Duration,
	sent int,
	received int,
) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(op, status).Inc()
	m.Duration.Observe(duration.Seconds())
	m.BytesSent.Add(float64(sent))
	m.BytesReceived.Add(float64(received))
}

// ServerMetrics tracks requests handled by a query server
type ServerMetrics struct {
	Requests *prometheus.CounterVec
	Duration prometheus.Histogram
	Parts    prometheus.Counter
}

// NewServerMetrics registers the server collectors with the specified registerer
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	factory := promauto.With(reg)
	return &ServerMetrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gocypher_server_requests_total",
				Help: "Total number of query requests handled by status",
			},
			[]string{"status"},
		),
		Duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gocypher_server_request_duration_seconds",
				Help:    "Time spent handling a query request in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
		),
		Parts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gocypher_server_reply_parts_total",
				Help: "Total reply parts sent",
			},
		),
	}
}

// ObserveRequest records one handled request
func (m *ServerMetrics) ObserveRequest(status string, duration time.Duration, parts int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(status).Inc()
	m.Duration.Observe(duration.Seconds())
	m.Parts.Add(float64(parts))
}
