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
	"github.com/kro-run/celengine/pkg/reference"
)

func withResources(dialect ctxpkg.Dialect, ids ...string) ctxpkg.Context {
	avail := make(map[string]interface{}, len(ids))
	for _, id := range ids {
		avail[id] = struct{}{}
	}
	return ctxpkg.Context{Dialect: dialect, AvailableRefs: avail}
}

func TestAnalyzePrimitivePassthrough(t *testing.T) {
	ctx := withResources(ctxpkg.StatusBuilder)
	for _, v := range []interface{}{"plain text", float64(3), true, nil} {
		res := Analyze(v, ctx)
		assert.True(t, res.Valid)
		assert.Equal(t, v, res.Value)
		assert.False(t, res.RequiresConversion)
	}
}

func TestAnalyzeReference(t *testing.T) {
	r, err := reference.New(reference.SchemaResourceID, "spec.name", reference.TypeHint{Name: "string"})
	require.NoError(t, err)

	res := Analyze(r, withResources(ctxpkg.StatusBuilder))
	require.True(t, res.Valid)
	assert.Equal(t, "schema.spec.name", res.Value)
	assert.True(t, res.RequiresConversion)
	require.Len(t, res.Dependencies, 1)
	assert.Equal(t, r, res.Dependencies[0])
}

func TestAnalyzeReferenceResourceBuilderUnavailableIsInvalid(t *testing.T) {
	r, err := reference.New("deployment", "metadata.name", reference.TypeHint{})
	require.NoError(t, err)

	res := Analyze(r, withResources(ctxpkg.ResourceBuilder))
	require.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, r, res.Value)
}

func TestAnalyzeExpressionStringWithDialectPinned(t *testing.T) {
	ctx := withResources(ctxpkg.Conditional, "deployment")
	res := Analyze("resources.deployment.status.readyReplicas > 0", ctx)
	require.True(t, res.Valid)
	assert.Equal(t, "resources.deployment.status.readyReplicas > 0", res.Value)
	require.Len(t, res.Dependencies, 1)
	assert.Equal(t, "deployment", res.Dependencies[0].ResourceID())
}

func TestAnalyzeExpressionStringClassifiesWhenDialectUnset(t *testing.T) {
	ctx := withResources("", "deployment")
	res := Analyze("resources.deployment.status.readyReplicas > 0", ctx)
	require.True(t, res.Valid)
	assert.NotEmpty(t, res.Value)
}

func TestAnalyzeTemplateLiteralString(t *testing.T) {
	ctx := withResources(ctxpkg.TemplateLiteral, "deployment")
	res := Analyze("`svc-${schema.spec.name}`", ctx)
	require.True(t, res.Valid)
	assert.Equal(t, `"svc-" + string(schema.spec.name)`, res.Value)
}

func TestAnalyzeParseErrorIsInvalidNotPanic(t *testing.T) {
	ctx := withResources(ctxpkg.StatusBuilder)
	res := Analyze("resources.", ctx)
	assert.False(t, res.Valid)
	assert.Equal(t, "resources.", res.Value)
	require.NotEmpty(t, res.Errors)
}

func TestAnalyzeFunctionExpression(t *testing.T) {
	ctx := withResources(ctxpkg.Conditional, "deployment")
	res := Analyze(FunctionExpression{Source: "resources.deployment.status.ready"}, ctx)
	require.True(t, res.Valid)
	assert.Equal(t, "resources.deployment.status.ready", res.Value)
}

func TestAnalyzeKindClassification(t *testing.T) {
	ctx := withResources(ctxpkg.Conditional, "deployment")

	staticRes := Analyze("schema.spec.replicas > 1", ctx)
	require.True(t, staticRes.Valid)
	assert.Equal(t, KindStatic, staticRes.Kind)

	dynamicRes := Analyze("resources.deployment.status.readyReplicas > 0", ctx)
	require.True(t, dynamicRes.Valid)
	assert.Equal(t, KindDynamic, dynamicRes.Kind)

	noneRes := Analyze("literal text", ctx)
	require.True(t, noneRes.Valid)
	assert.Equal(t, KindNone, noneRes.Kind)
}

func TestIsExpressionString(t *testing.T) {
	ctx := withResources(ctxpkg.StatusBuilder, "deployment")
	assert.True(t, isExpressionString("schema.spec.name", ctx))
	assert.True(t, isExpressionString("resources.deployment.status.ready", ctx))
	assert.True(t, isExpressionString("deployment.status.ready", ctx))
	assert.True(t, isExpressionString("`${schema.spec.name}`", ctx))
	assert.False(t, isExpressionString("just a plain string", ctx))
	assert.False(t, isExpressionString("", ctx))
}
