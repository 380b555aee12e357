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

package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderRecordAndLookup(t *testing.T) {
	var b Builder
	b.Record(Entry{
		OriginalExpression: "schema.spec.name",
		CelExpression:      "schema.spec.name",
		SourceLocation:     Location{Line: 1, Column: 0, Length: 16},
		Context:            "status-builder",
		Metadata:           Metadata{ExpressionType: "reference", Dependencies: []string{"__schema__"}},
	})

	entry, ok := b.Lookup("schema.spec.name")
	require.True(t, ok)
	assert.Equal(t, "schema.spec.name", entry.OriginalExpression)
	assert.Equal(t, "status-builder", entry.Context)
}

func TestBuilderLookupMiss(t *testing.T) {
	var b Builder
	_, ok := b.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestBuilderAppendOnly(t *testing.T) {
	var b Builder
	b.Record(Entry{OriginalExpression: "a", CelExpression: "a"})
	b.Record(Entry{OriginalExpression: "b", CelExpression: "b"})
	require.Equal(t, 2, b.Len())

	entries := b.Entries()
	assert.Equal(t, "a", entries[0].OriginalExpression)
	assert.Equal(t, "b", entries[1].OriginalExpression)
}

func TestBuilderRoundTrip(t *testing.T) {
	var b Builder
	cases := []Entry{
		{OriginalExpression: "deployment.status.readyReplicas > 0", CelExpression: "resources.deployment.status.readyReplicas > 0"},
		{OriginalExpression: "`${schema.spec.name}-svc`", CelExpression: `schema.spec.name + "-svc"`},
	}
	for _, c := range cases {
		b.Record(c)
	}
	for _, c := range cases {
		got, ok := b.Lookup(c.CelExpression)
		require.True(t, ok)
		assert.Equal(t, c.OriginalExpression, got.OriginalExpression)
	}
}

func TestBuilderZeroValueUsable(t *testing.T) {
	var b Builder
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Entries())
}
