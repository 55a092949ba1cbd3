// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainpulse",
		Subsystem: "notify",
		Name:      "dispatch_total",
		Help:      "Notification dispatches by channel and outcome.",
	}, []string{"channel", "outcome"})

	dispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainpulse",
		Subsystem: "notify",
		Name:      "dispatch_duration_seconds",
		Help:      "Wall-clock duration of notification dispatches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"channel"})
)
