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

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kro-run/celengine/pkg/analyzer"
	"github.com/kro-run/celengine/pkg/expr/ast"
)

const (
	defaultMaxEntries = 10_000
	defaultTTL        = 10 * time.Minute
)

type config struct {
	maxEntries      int
	ttl             time.Duration
	maxMemoryBytes  int64
	cleanupInterval time.Duration
	registry        *prometheus.Registry
}

// Option configures a Cache.
type Option func(*config)

// WithMaxEntries bounds each store's entry count.
func WithMaxEntries(n int) Option { return func(c *config) { c.maxEntries = n } }

// WithTTL bounds each entry's time to live.
func WithTTL(d time.Duration) Option { return func(c *config) { c.ttl = d } }

// WithMaxMemoryMB bounds each store's approximate memory footprint.
func WithMaxMemoryMB(mb int) Option {
	return func(c *config) { c.maxMemoryBytes = int64(mb) * 1024 * 1024 }
}

// WithCleanupInterval enables periodic background eviction at d; zero
// (the default) disables background cleanup and relies solely on
// insert-time bound checks.
func WithCleanupInterval(d time.Duration) Option { return func(c *config) { c.cleanupInterval = d } }

// WithMetrics registers Prometheus counters/gauges for both stores against
// registry.
func WithMetrics(registry *prometheus.Registry) Option {
	return func(c *config) { c.registry = registry }
}

// Cache is the single keyed store for conversion results plus the parallel
// store for parsed ASTs (spec §4.8).
type Cache struct {
	Results *Store[analyzer.Result]
	ASTs    *Store[ast.Node]
}

// New constructs a Cache. Defaults: 10,000 max entries, 10 minute TTL, no
// memory bound, no background cleanup, no metrics.
func New(opts ...Option) *Cache {
	cfg := config{maxEntries: defaultMaxEntries, ttl: defaultTTL}
	for _, o := range opts {
		o(&cfg)
	}

	storeCfg := StoreConfig{
		MaxEntries:      cfg.maxEntries,
		TTL:             cfg.ttl,
		MaxMemoryBytes:  cfg.maxMemoryBytes,
		CleanupInterval: cfg.cleanupInterval,
	}

	var resultMetrics, astMetrics *storeMetrics
	if cfg.registry != nil {
		resultMetrics = newStoreMetrics(cfg.registry, "conversion")
		astMetrics = newStoreMetrics(cfg.registry, "ast")
	}

	return &Cache{
		Results: NewStore[analyzer.Result](storeCfg, sizeOfResult, resultMetrics),
		ASTs:    NewStore[ast.Node](storeCfg, sizeOfAST, astMetrics),
	}
}

// Destroy stops both stores' background cleanup and releases their
// entries. Callers must quiesce in-flight analyses against this Cache
// first (spec §5).
func (c *Cache) Destroy() {
	c.Results.Destroy()
	c.ASTs.Destroy()
}

func sizeOfResult(r analyzer.Result) int {
	size := 64 + len(r.Dependencies)*32
	if r.Cel != nil {
		size += len(r.Cel.Source())
	}
	if s, ok := r.Value.(string); ok {
		size += len(s)
	}
	return size
}

func sizeOfAST(n ast.Node) int {
	count := 0
	ast.Walk(n, func(ast.Node) bool {
		count++
		return true
	})
	return count * 48
}
