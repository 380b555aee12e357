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
)

func TestHarvestReferencesSchemaRooted(t *testing.T) {
	node, err := parser.Parse("schema.spec.replicas")
	require.NoError(t, err)

	refs := harvestReferences(node, withResources(ctxpkg.StatusBuilder))
	require.Len(t, refs, 1)
	assert.True(t, refs[0].IsSchemaRooted())
	assert.Equal(t, "spec.replicas", refs[0].FieldPath())
}

func TestHarvestReferencesResourcesRooted(t *testing.T) {
	node, err := parser.Parse("resources.deployment.status.readyReplicas")
	require.NoError(t, err)

	refs := harvestReferences(node, withResources(ctxpkg.StatusBuilder, "deployment"))
	require.Len(t, refs, 1)
	assert.Equal(t, "deployment", refs[0].ResourceID())
	assert.Equal(t, "status.readyReplicas", refs[0].FieldPath())
}

func TestHarvestReferencesBareKnownResourceID(t *testing.T) {
	node, err := parser.Parse("deployment.status.readyReplicas")
	require.NoError(t, err)

	refs := harvestReferences(node, withResources(ctxpkg.StatusBuilder, "deployment"))
	require.Len(t, refs, 1)
	assert.Equal(t, "deployment", refs[0].ResourceID())
	assert.Equal(t, "status.readyReplicas", refs[0].FieldPath())
}

func TestHarvestReferencesUnknownBareIdentifierIsIgnored(t *testing.T) {
	node, err := parser.Parse("unknownThing.status.ready")
	require.NoError(t, err)

	refs := harvestReferences(node, withResources(ctxpkg.StatusBuilder, "deployment"))
	assert.Empty(t, refs)
}

func TestHarvestReferencesDedupesRepeatedPath(t *testing.T) {
	node, err := parser.Parse("schema.spec.name == schema.spec.name")
	require.NoError(t, err)

	refs := harvestReferences(node, withResources(ctxpkg.StatusBuilder))
	require.Len(t, refs, 1)
}

func TestHarvestReferencesMultipleDistinctPaths(t *testing.T) {
	node, err := parser.Parse("resources.deployment.status.readyReplicas > 0 && resources.service.status.ready")
	require.NoError(t, err)

	refs := harvestReferences(node, withResources(ctxpkg.StatusBuilder, "deployment", "service"))
	require.Len(t, refs, 2)
	ids := []string{refs[0].ResourceID(), refs[1].ResourceID()}
	assert.Contains(t, ids, "deployment")
	assert.Contains(t, ids, "service")
}

func TestFlattenPathRejectsNonIdentifierRoot(t *testing.T) {
	node, err := parser.Parse("foo().status")
	require.NoError(t, err)

	refs := harvestReferences(node, withResources(ctxpkg.StatusBuilder, "foo"))
	assert.Empty(t, refs)
}
