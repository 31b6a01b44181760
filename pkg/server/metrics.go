// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricNamespace = "rangemerge"
	MetricSubsystem = "server"

	ResultOK            = "ok"
	ResultBadFormat     = "bad_format"
	ResultBadNumber     = "bad_number"
	ResultBadRequest    = "bad_request"
	ResultUnknownDomain = "unknown_domain"
	ResultNotNormalized = "not_normalized"
)

type Metrics struct {
	reg *prometheus.Registry

	Requests      *prometheus.CounterVec
	InputRanges   *prometheus.HistogramVec
	MergeDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	autoreg := promauto.With(reg)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		reg: reg,

		Requests: autoreg.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricNamespace,
			Subsystem: MetricSubsystem,
			Name:      "requests_total",
			Help:      "Number of merge requests by domain and result",
		}, []string{"domain", "result"}),
		InputRanges: autoreg.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricNamespace,
			Subsystem: MetricSubsystem,
			Name:      "input_ranges",
			Help:      "Number of ranges in the merge request input",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"domain"}),
		MergeDuration: autoreg.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: MetricNamespace,
			Subsystem: MetricSubsystem,
			Name:      "merge_duration_seconds",
			Help:      "Time spent parsing, merging and formatting the input",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"domain"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}
