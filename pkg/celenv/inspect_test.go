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

package celenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectResourceDependency(t *testing.T) {
	insp, err := NewInspector([]string{"deployment"})
	require.NoError(t, err)

	refs, err := insp.Inspect(`deployment.status.readyReplicas > 0`)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "deployment", refs[0].ResourceID())
	assert.Equal(t, "status.readyReplicas", refs[0].FieldPath())
}

func TestInspectUnknownResourceYieldsNoDependency(t *testing.T) {
	insp, err := NewInspector([]string{"deployment"})
	require.NoError(t, err)

	refs, err := insp.Inspect(`service.status.phase == "Running"`)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestInspectLoopVariableNotTreatedAsResource(t *testing.T) {
	insp, err := NewInspector([]string{"deployment"})
	require.NoError(t, err)

	refs, err := insp.Inspect(`deployment.metadata.labels.filter(i, i == "x")`)
	require.NoError(t, err)
	for _, r := range refs {
		assert.NotEqual(t, "i", r.ResourceID())
	}
}

func TestInspectMultipleDependenciesAcrossABinaryExpression(t *testing.T) {
	insp, err := NewInspector([]string{"deployment", "service"})
	require.NoError(t, err)

	refs, err := insp.Inspect(`deployment.status.readyReplicas > 0 && service.status.phase == "Running"`)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	ids := map[string]bool{}
	for _, r := range refs {
		ids[r.ResourceID()] = true
	}
	assert.True(t, ids["deployment"])
	assert.True(t, ids["service"])
}
