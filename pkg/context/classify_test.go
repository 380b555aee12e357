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

package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kro-run/celengine/pkg/expr/parser"
	"github.com/kro-run/celengine/pkg/reference"
)

func mustRef(t *testing.T, resourceID, path string, hint reference.TypeHint) reference.Reference {
	t.Helper()
	r, err := reference.New(resourceID, path, hint)
	require.NoError(t, err)
	return r
}

func TestClassifySchemaRefOnly(t *testing.T) {
	// A schema ref to a path that is neither spec.* nor status.* ties
	// status-builder and resource-builder on raw score; the documented
	// priority order (status-builder > resource-builder) breaks the tie.
	refs := []reference.Reference{
		mustRef(t, reference.SchemaResourceID, "metadata.name", reference.TypeHint{Name: "string"}),
	}
	c := Classify(Signals{References: refs})
	assert.Equal(t, StatusBuilder, c.Dialect)
}

func TestClassifyReadinessFromFieldPath(t *testing.T) {
	refs := []reference.Reference{
		mustRef(t, "deployment", "status.readyReplicas", reference.TypeHint{Name: "number"}),
	}
	c := Classify(Signals{References: refs})
	assert.Equal(t, Readiness, c.Dialect)
}

func TestClassifyTemplateLiteral(t *testing.T) {
	node, err := parser.Parse("`${schema.spec.name}-svc`")
	require.NoError(t, err)
	c := Classify(Signals{Node: node})
	assert.Equal(t, TemplateLiteral, c.Dialect)
}

func TestClassifyConditionalOrReadinessFromComparison(t *testing.T) {
	node, err := parser.Parse("deployment.status.readyReplicas > 0")
	require.NoError(t, err)
	c := Classify(Signals{Node: node})
	assert.Contains(t, []Dialect{Conditional, Readiness}, c.Dialect)
}

func TestClassifyFunctionNameHint(t *testing.T) {
	c := Classify(Signals{Hint: Context{FunctionNameHint: "statusBuilder"}})
	assert.Equal(t, StatusBuilder, c.Dialect)
}

func TestClassifyNoSignalsIsUnknown(t *testing.T) {
	c := Classify(Signals{})
	assert.Equal(t, Unknown, c.Dialect)
	assert.Equal(t, float64(0), c.Confidence)
}

func TestClassifyMonotonicity(t *testing.T) {
	refs := []reference.Reference{
		mustRef(t, "deployment", "status.phase", reference.TypeHint{Name: "string"}),
	}
	base := Classify(Signals{References: refs})

	refs = append(refs, mustRef(t, "deployment", "status.conditions", reference.TypeHint{}))
	more := Classify(Signals{References: refs})

	assert.GreaterOrEqual(t, more.Scores[StatusBuilder], base.Scores[StatusBuilder])
}

func TestExpectedResultType(t *testing.T) {
	assert.Equal(t, ResultBoolean, ExpectedResultType(Conditional))
	assert.Equal(t, ResultBoolean, ExpectedResultType(Readiness))
	assert.Equal(t, ResultString, ExpectedResultType(TemplateLiteral))
	assert.Equal(t, ResultComposite, ExpectedResultType(ResourceBuilder))
	assert.Equal(t, ResultAny, ExpectedResultType(StatusBuilder))
}

func TestContextValidateReferenceResourceBuilder(t *testing.T) {
	ctx := Context{
		Dialect:       ResourceBuilder,
		AvailableRefs: map[string]interface{}{"deployment": struct{}{}},
	}
	ok := mustRef(t, "deployment", "spec.replicas", reference.TypeHint{})
	require.NoError(t, ctx.ValidateReference(ok))

	bad := mustRef(t, "service", "spec.ports", reference.TypeHint{})
	err := ctx.ValidateReference(bad)
	require.Error(t, err)
	var unavail *UnavailableResourceError
	require.ErrorAs(t, err, &unavail)
	assert.Equal(t, "service", unavail.ResourceID)
}

func TestContextValidateReferenceSchemaAlwaysLegal(t *testing.T) {
	ctx := Context{Dialect: ResourceBuilder}
	ref := mustRef(t, reference.SchemaResourceID, "spec.name", reference.TypeHint{})
	assert.NoError(t, ctx.ValidateReference(ref))
}

func TestContextRequiresBoolean(t *testing.T) {
	assert.True(t, Context{Dialect: Conditional}.RequiresBoolean())
	assert.True(t, Context{Dialect: Readiness}.RequiresBoolean())
	assert.False(t, Context{Dialect: StatusBuilder}.RequiresBoolean())
}
