// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics holds the Prometheus counters and histograms shared by
// the ingestion pipeline, the incremental reindex engine, and the query
// endpoint layer. There is one process-wide registry, built lazily on
// first use so packages that never touch metrics never pay for it.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var durationBuckets = []float64{0.001, 0.005, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20}

type ingestionMetrics struct {
	once sync.Once

	filesWalked      prometheus.Counter
	filesParsed      prometheus.Counter
	parseErrors      prometheus.Counter
	entitiesInserted prometheus.Counter
	edgesInserted    prometheus.Counter
	testExcluded     prometheus.Counter
	runsTotal        prometheus.Counter
	runDuration      prometheus.Histogram
}

var ing ingestionMetrics

func (m *ingestionMetrics) init() {
	m.once.Do(func() {
		m.filesWalked = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_ing_files_walked_total", Help: "Files discovered by the directory walker across all ingestion runs"})
		m.filesParsed = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_ing_files_parsed_total", Help: "Files successfully read and parsed"})
		m.parseErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_ing_parse_errors_total", Help: "Per-file parse/extract/walk errors logged to ingestion-errors.txt"})
		m.entitiesInserted = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_ing_entities_inserted_total", Help: "CodeGraph rows inserted"})
		m.edgesInserted = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_ing_edges_inserted_total", Help: "DependencyEdges rows inserted"})
		m.testExcluded = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_ing_test_entities_excluded_total", Help: "Entities classified TestImplementation and diverted to TestEntitiesExcluded"})
		m.runsTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_ing_runs_total", Help: "Completed full ingestion runs"})
		m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "parseltongue_ing_run_seconds", Help: "Wall-clock duration of a full ingestion run", Buckets: durationBuckets})

		prometheus.MustRegister(
			m.filesWalked, m.filesParsed, m.parseErrors,
			m.entitiesInserted, m.edgesInserted, m.testExcluded,
			m.runsTotal, m.runDuration,
		)
	})
}

// RecordIngestion records one completed Pipeline.Run.
func RecordIngestion(filesWalked, filesParsed, parseErrors, entities, edges, testExcluded int, durationSeconds float64) {
	ing.init()
	ing.filesWalked.Add(float64(filesWalked))
	ing.filesParsed.Add(float64(filesParsed))
	ing.parseErrors.Add(float64(parseErrors))
	ing.entitiesInserted.Add(float64(entities))
	ing.edgesInserted.Add(float64(edges))
	ing.testExcluded.Add(float64(testExcluded))
	ing.runsTotal.Inc()
	ing.runDuration.Observe(durationSeconds)
}

type reindexMetrics struct {
	once sync.Once

	callsTotal      prometheus.Counter
	hashUnchanged   prometheus.Counter
	hashChanged     prometheus.Counter
	busyRejections  prometheus.Counter
	extractFailures prometheus.Counter
	duration        prometheus.Histogram
}

var rx reindexMetrics

func (m *reindexMetrics) init() {
	m.once.Do(func() {
		m.callsTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_reindex_calls_total", Help: "Reindex invocations, successful or not"})
		m.hashUnchanged = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_reindex_hash_unchanged_total", Help: "Reindex calls short-circuited on an unchanged content hash"})
		m.hashChanged = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_reindex_hash_changed_total", Help: "Reindex calls that ran a full delete+reparse+insert cycle"})
		m.busyRejections = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_reindex_busy_total", Help: "Reindex calls rejected because a reindex was already in flight for the path"})
		m.extractFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "parseltongue_reindex_extract_failures_total", Help: "Reindex cycles where the new content failed to parse/extract, leaving entities deleted"})
		m.duration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "parseltongue_reindex_seconds", Help: "Duration of one Reindex call", Buckets: durationBuckets})

		prometheus.MustRegister(
			m.callsTotal, m.hashUnchanged, m.hashChanged,
			m.busyRejections, m.extractFailures, m.duration,
		)
	})
}

// RecordReindex records one completed (non-Busy) Engine.Reindex call.
func RecordReindex(hashChanged, extractFailed bool, durationSeconds float64) {
	rx.init()
	rx.callsTotal.Inc()
	if hashChanged {
		rx.hashChanged.Inc()
	} else {
		rx.hashUnchanged.Inc()
	}
	if extractFailed {
		rx.extractFailures.Inc()
	}
	rx.duration.Observe(durationSeconds)
}

// RecordReindexBusy records a reindex call rejected because one was
// already in flight for the same path.
func RecordReindexBusy() {
	rx.init()
	rx.callsTotal.Inc()
	rx.busyRejections.Inc()
}

type queryMetrics struct {
	once sync.Once

	callsTotal  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	tokens      *prometheus.HistogramVec
}

var qm queryMetrics

func (m *queryMetrics) init() {
	m.once.Do(func() {
		m.callsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "parseltongue_query_calls_total", Help: "Query endpoint invocations by endpoint name"}, []string{"endpoint"})
		m.errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "parseltongue_query_errors_total", Help: "Query endpoint invocations that returned success=false, by endpoint and error category"}, []string{"endpoint", "category"})
		m.tokens = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "parseltongue_query_tokens_estimate", Help: "Estimated response token count per endpoint call", Buckets: []float64{16, 64, 256, 1024, 4096, 16384, 65536}}, []string{"endpoint"})

		prometheus.MustRegister(m.callsTotal, m.errorsTotal, m.tokens)
	})
}

// RecordQuerySuccess records one successful endpoint call and its
// estimated response size.
func RecordQuerySuccess(endpoint string, tokensEstimate int) {
	qm.init()
	qm.callsTotal.WithLabelValues(endpoint).Inc()
	qm.tokens.WithLabelValues(endpoint).Observe(float64(tokensEstimate))
}

// RecordQueryError records one failed endpoint call, tagged with its
// error category (empty string if the error carried none).
func RecordQueryError(endpoint, category string) {
	qm.init()
	qm.callsTotal.WithLabelValues(endpoint).Inc()
	qm.errorsTotal.WithLabelValues(endpoint, category).Inc()
}
