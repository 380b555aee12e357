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

package emit

import (
	"sort"

	"github.com/kro-run/celengine/pkg/celenv"
	ctxpkg "github.com/kro-run/celengine/pkg/context"
	"github.com/kro-run/celengine/pkg/expr/ast"
	"github.com/kro-run/celengine/pkg/reference"
	"github.com/kro-run/celengine/pkg/sourcemap"
)

// Request carries the per-call detail Emit needs beyond what ctxpkg.Context
// already threads through: the original source text and span for the
// source map, and whether the emitted text should be validated.
type Request struct {
	// Original is the host-language expression text this call is converting,
	// used only for the source map entry.
	Original string
	Location sourcemap.Location

	// ExpressionType and ConversionNotes populate the source map entry's
	// metadata; both are optional.
	ExpressionType  string
	ConversionNotes []string

	// SkipValidation bypasses the celenv.Parse check, for callers (such as
	// this package's own tests) that want the raw emitted text even when no
	// environment can be constructed for it.
	SkipValidation bool
}

// FromReferences emits CEL for a flat reference list (spec §4.4's table of
// per-dialect rules) and, when ctx.SourceMap is set, records the mapping.
func FromReferences(ctx ctxpkg.Context, refs []reference.Reference, req Request) (string, error) {
	celText, err := References(ctx, refs)
	if err != nil {
		return "", err
	}
	return finalize(ctx, celText, refs, req)
}

// FromNode emits CEL by lowering a parsed host-language AST (spec §4.4's
// "walk the AST" path) and, when ctx.SourceMap is set, records the mapping.
func FromNode(ctx ctxpkg.Context, node ast.Node, req Request) (string, error) {
	celText, err := Lower(node, ctx)
	if err != nil {
		return "", err
	}
	return finalize(ctx, celText, nil, req)
}

func finalize(ctx ctxpkg.Context, celText string, refs []reference.Reference, req Request) (string, error) {
	if !req.SkipValidation {
		if err := validate(ctx, celText); err != nil {
			return "", err
		}
	}
	if ctx.SourceMap != nil {
		ctx.SourceMap.Record(sourcemap.Entry{
			OriginalExpression: req.Original,
			CelExpression:      celText,
			SourceLocation:     req.Location,
			Context:            string(ctx.Dialect),
			Metadata: sourcemap.Metadata{
				ExpressionType:  req.ExpressionType,
				KubernetesRefs:  refStrings(refs),
				Dependencies:    dependencyIDs(refs),
				ConversionNotes: req.ConversionNotes,
			},
		})
	}
	return celText, nil
}

// validate builds a CEL environment declaring every resource id the context
// knows about and parses celText against it, never evaluating. Parsing does
// not resolve names, so roots such as "schema" and "resources" need no
// declaration.
func validate(ctx ctxpkg.Context, celText string) error {
	env, err := celenv.DefaultEnvironment(celenv.WithResourceIDs(resourceIDs(ctx)))
	if err != nil {
		return err
	}
	return celenv.Parse(env, celText)
}

// resourceIDs returns ctx.AvailableRefs's keys in sorted order, for
// deterministic environment construction.
func resourceIDs(ctx ctxpkg.Context) []string {
	ids := make([]string, 0, len(ctx.AvailableRefs))
	for id := range ctx.AvailableRefs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func refStrings(refs []reference.Reference) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

func dependencyIDs(refs []reference.Reference) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range refs {
		id := r.ResourceID()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
