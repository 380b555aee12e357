// Copyright 2025 The Kube Resource Orchestrator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"). You may
// not use this file except in compliance with the License. A copy of the
// License is located at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// or in the "license" file accompanying this file. This file is distributed
// on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
// express or implied. See the License for the specific language governing
// permissions and limitations under the License.

package cache

import "github.com/prometheus/client_golang/prometheus"

// storeMetrics is the optional Prometheus instrumentation for one Store,
// registered against a caller-supplied registry rather than the global
// default one, so creating more than one Cache in the same process never
// panics on a duplicate registration.
type storeMetrics struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	evictions  prometheus.Counter
	entries    prometheus.Gauge
	usedMemory prometheus.Gauge
}

func newStoreMetrics(registry *prometheus.Registry, store string) *storeMetrics {
	m := &storeMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "celengine_cache_hits_total",
			Help:        "Total number of cache hits.",
			ConstLabels: prometheus.Labels{"store": store},
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "celengine_cache_misses_total",
			Help:        "Total number of cache misses.",
			ConstLabels: prometheus.Labels{"store": store},
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "celengine_cache_evictions_total",
			Help:        "Total number of cache entries evicted.",
			ConstLabels: prometheus.Labels{"store": store},
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "celengine_cache_entries",
			Help:        "Current number of entries held by the cache.",
			ConstLabels: prometheus.Labels{"store": store},
		}),
		usedMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "celengine_cache_used_memory_bytes",
			Help:        "Approximate memory used by cache entries, in bytes.",
			ConstLabels: prometheus.Labels{"store": store},
		}),
	}
	registry.MustRegister(m.hits, m.misses, m.evictions, m.entries, m.usedMemory)
	return m
}
