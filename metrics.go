/*
 * Copyright 2024 The tsingest Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tsingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "tsingest"

var (
	batchesEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "batches_enqueued_total",
		Help:      "Batches handed to the insert worker.",
	}, []string{"database"})

	batchesInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "batches_inserted_total",
		Help:      "Batches accepted by the server.",
	}, []string{"database"})

	batchesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "batches_failed_total",
		Help:      "Batches whose insert failed, stopping the worker.",
	}, []string{"database"})

	rowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "rows_inserted_total",
		Help:      "Rows in batches accepted by the server.",
	}, []string{"database"})

	queueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "queue_depth",
		Help:      "Batches waiting for the insert worker.",
	}, []string{"database"})
)

type clientMetrics struct {
	enqueued prometheus.Counter
	inserted prometheus.Counter
	failed   prometheus.Counter
	rows     prometheus.Counter
	depth    prometheus.Gauge
}

func newClientMetrics(database string) *clientMetrics {
	return &clientMetrics{
		enqueued: batchesEnqueued.WithLabelValues(database),
		inserted: batchesInserted.WithLabelValues(database),
		failed:   batchesFailed.WithLabelValues(database),
		rows:     rowsInserted.WithLabelValues(database),
		depth:    queueDepth.WithLabelValues(database),
	}
}
