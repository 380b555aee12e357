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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kro-run/celengine/pkg/analyzer"
	"github.com/kro-run/celengine/pkg/expr/ast"
	"github.com/kro-run/celengine/pkg/reference"
)

func TestNewAppliesDefaults(t *testing.T) {
	c := New()
	defer c.Destroy()

	require.NotNil(t, c.Results)
	require.NotNil(t, c.ASTs)
}

func TestCacheStoresAndRetrievesAnalyzerResult(t *testing.T) {
	c := New(WithMaxEntries(10), WithTTL(time.Minute))
	defer c.Destroy()

	cel, err := reference.NewCelExpression("resources.deployment.status.readyReplicas", reference.TypeHint{})
	require.NoError(t, err)

	key := BuildKey("resources.deployment.status.readyReplicas", "status_builder", false, false, "")
	c.Results.Put(key, resultWithCel(cel))

	got, ok := c.Results.Get(key)
	require.True(t, ok)
	assert.Equal(t, cel.Source(), got.Cel.Source())
}

func TestCacheStoresAndRetrievesAST(t *testing.T) {
	c := New()
	defer c.Destroy()

	node := ast.NewIdentifier(ast.NewSpan(1, 1, 0, 6), "schema")
	key := BuildKey("schema", "status_builder", false, false, "")
	c.ASTs.Put(key, node)

	got, ok := c.ASTs.Get(key)
	require.True(t, ok)
	assert.Equal(t, node, got)
}

func TestCacheDestroyStopsBothStores(t *testing.T) {
	c := New(WithCleanupInterval(time.Millisecond))
	c.Results.Put("k", resultWithCel(mustCelExpr(t, "true")))

	assert.NotPanics(t, c.Destroy)
	assert.Equal(t, 0, c.Results.Len())
	assert.Equal(t, 0, c.ASTs.Len())
}

func TestWithMetricsRegistersDistinctSeriesPerStore(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := New(WithMetrics(registry))
	defer c.Destroy()

	c.Results.Put("k1", resultWithCel(mustCelExpr(t, "true")))
	c.ASTs.Put("k2", ast.NewIdentifier(ast.NewSpan(1, 1, 0, 6), "schema"))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestTwoCachesWithMetricsDoNotPanicOnDistinctRegistries(t *testing.T) {
	c1 := New(WithMetrics(prometheus.NewRegistry()))
	defer c1.Destroy()

	assert.NotPanics(t, func() {
		c2 := New(WithMetrics(prometheus.NewRegistry()))
		c2.Destroy()
	})
}

func TestSizeOfResultGrowsWithDependenciesAndCelLength(t *testing.T) {
	short := resultWithCel(mustCelExpr(t, "x"))
	long := resultWithCel(mustCelExpr(t, "resources.deployment.status.readyReplicas > 0"))

	assert.Less(t, sizeOfResult(short), sizeOfResult(long))
}

func TestSizeOfASTCountsNodes(t *testing.T) {
	leaf := ast.NewIdentifier(ast.NewSpan(1, 1, 0, 6), "schema")
	binary := ast.NewBinary(ast.NewSpan(1, 1, 0, 20), ast.OpGt,
		ast.NewMember(ast.NewSpan(1, 1, 0, 10), leaf, "spec", false),
		ast.NewLiteral(ast.NewSpan(1, 1, 13, 14), ast.LiteralNumber, float64(1)),
	)

	assert.Less(t, sizeOfAST(leaf), sizeOfAST(binary))
}

// TestCacheHitRatioAfterRepeatedIdenticalLookups exercises the caching
// caller's contract directly: the first lookup for a key misses and
// populates the store, every identical lookup after that hits.
func TestCacheHitRatioAfterRepeatedIdenticalLookups(t *testing.T) {
	c := New()
	defer c.Destroy()

	key := BuildKey("resources.deployment.status.readyReplicas", "status_builder", false, false, "")
	cel := mustCelExpr(t, "resources.deployment.status.readyReplicas")

	for i := 0; i < 3; i++ {
		if _, ok := c.Results.Get(key); !ok {
			c.Results.Put(key, resultWithCel(cel))
		}
	}

	stats := c.Results.Stats()
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 2, stats.Hits)
	assert.InDelta(t, 2.0/3.0, stats.HitRatio(), 1e-9)
}

func resultWithCel(cel reference.CelExpression) analyzer.Result {
	return analyzer.Result{Valid: true, Cel: &cel, Value: cel.Source()}
}

func mustCelExpr(t *testing.T, source string) reference.CelExpression {
	t.Helper()
	cel, err := reference.NewCelExpression(source, reference.TypeHint{})
	require.NoError(t, err)
	return cel
}
