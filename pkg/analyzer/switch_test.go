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

package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctxpkg "github.com/kro-run/celengine/pkg/context"
	"github.com/kro-run/celengine/pkg/expr/parser"
	"github.com/kro-run/celengine/pkg/reference"
)

func TestSwitchNoDisagreementProducesNoPoints(t *testing.T) {
	node, err := parser.Parse("schema.spec.name")
	require.NoError(t, err)

	ctx := withResources(ctxpkg.StatusBuilder)
	res := Switch(node, ctx, 10)
	assert.Empty(t, res.Points)
	assert.Equal(t, 0, res.Metrics.SwitchCount)
}

func TestSwitchMetricsTracksDepth(t *testing.T) {
	node, err := parser.Parse("schema.spec.name")
	require.NoError(t, err)

	ctx := withResources(ctxpkg.StatusBuilder)
	res := Switch(node, ctx, 10)
	assert.GreaterOrEqual(t, res.Metrics.MaxDepthReached, 1)
	assert.GreaterOrEqual(t, res.Metrics.TotalDuration.Nanoseconds(), int64(0))
}

func TestSwitchRespectsMaxDepth(t *testing.T) {
	node, err := parser.Parse("schema.spec.name")
	require.NoError(t, err)

	ctx := withResources(ctxpkg.StatusBuilder)
	res := Switch(node, ctx, 0)
	assert.Equal(t, 0, res.Metrics.MaxDepthReached)
}

func TestGroupByDialectDedupesReferencesWithinAGroup(t *testing.T) {
	r1, err := reference.New("deployment", "status.phase", reference.TypeHint{})
	require.NoError(t, err)
	r2, err := reference.New("deployment", "status.phase", reference.TypeHint{})
	require.NoError(t, err)
	r3, err := reference.New("deployment", "status.readyReplicas", reference.TypeHint{})
	require.NoError(t, err)

	points := []SwitchPoint{
		{ToDialect: ctxpkg.Readiness, References: []reference.Reference{r1}},
		{ToDialect: ctxpkg.Readiness, References: []reference.Reference{r2, r3}},
	}
	groups := groupByDialect(points)
	require.Len(t, groups[ctxpkg.Readiness], 2)
}

func TestTemplateLiteralDialectExpectsStringResult(t *testing.T) {
	assert.Equal(t, ctxpkg.ResultString, ctxpkg.ExpectedResultType(ctxpkg.TemplateLiteral))
}
