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
	"strings"

	ctxpkg "github.com/kro-run/celengine/pkg/context"
	"github.com/kro-run/celengine/pkg/expr/ast"
	"github.com/kro-run/celengine/pkg/reference"
)

// harvestReferences finds every maximal schema/resource field-path chain in
// a parsed host-language expression and returns it as a Reference, so the
// classifier and the dependency set have something to work from even
// though the input was a plain string rather than an already-embedded
// Reference value.
func harvestReferences(n ast.Node, ctx ctxpkg.Context) []reference.Reference {
	var refs []reference.Reference
	seen := make(map[string]bool)

	ast.Walk(n, func(node ast.Node) bool {
		m, ok := node.(*ast.Member)
		if !ok {
			return true
		}
		r, ok := chainToReference(m, ctx)
		if !ok {
			return true
		}
		if seen[r.Key()] {
			return false
		}
		seen[r.Key()] = true
		refs = append(refs, r)
		// The whole chain is captured as one reference; descending further
		// would only rediscover shorter prefixes of the same path.
		return false
	})

	return refs
}

// flattenPath walks a chain of *ast.Member nodes down to its root
// identifier, returning the root's name and the property names in source
// order. It reports false for any chain that bottoms out in something other
// than a bare identifier (e.g. a call or index expression), since those are
// not representable as a single field path.
func flattenPath(n ast.Node) (string, []string, bool) {
	var segments []string
	cur := n
	for {
		switch v := cur.(type) {
		case *ast.Member:
			segments = append([]string{v.Property}, segments...)
			cur = v.Object
		case *ast.Identifier:
			return v.Name, segments, true
		default:
			return "", nil, false
		}
	}
}

// chainToReference resolves a Member chain to a Reference when its root is
// "schema" (schema-rooted), "resources.<id>" (the first segment names the
// resource id), or a bare identifier that ctx already knows as a resource.
func chainToReference(m *ast.Member, ctx ctxpkg.Context) (reference.Reference, bool) {
	root, segments, ok := flattenPath(m)
	if !ok || len(segments) == 0 {
		return reference.Reference{}, false
	}

	switch {
	case root == "schema":
		r, err := reference.New(reference.SchemaResourceID, strings.Join(segments, "."), reference.TypeHint{})
		return r, err == nil
	case root == "resources":
		if len(segments) < 2 {
			return reference.Reference{}, false
		}
		r, err := reference.New(segments[0], strings.Join(segments[1:], "."), reference.TypeHint{})
		return r, err == nil
	case ctx.HasResource(root):
		r, err := reference.New(root, strings.Join(segments, "."), reference.TypeHint{})
		return r, err == nil
	default:
		return reference.Reference{}, false
	}
}
