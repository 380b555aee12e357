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
	"fmt"
	"strings"
	"time"

	ctxpkg "github.com/kro-run/celengine/pkg/context"
	"github.com/kro-run/celengine/pkg/emit"
	"github.com/kro-run/celengine/pkg/expr/ast"
	"github.com/kro-run/celengine/pkg/reference"
)

// dialectPriority mirrors the tie-break order documented for
// ctxpkg.Classify, used here only to make group iteration deterministic.
var dialectPriority = []ctxpkg.Dialect{
	ctxpkg.StatusBuilder, ctxpkg.ResourceBuilder, ctxpkg.Conditional,
	ctxpkg.Readiness, ctxpkg.TemplateLiteral, ctxpkg.FieldHydration, ctxpkg.Unknown,
}

// SwitchPoint records one place a nested subtree's auto-detected dialect
// disagreed with the enclosing context (spec §4.6).
type SwitchPoint struct {
	Path        string
	FromDialect ctxpkg.Dialect
	ToDialect   ctxpkg.Dialect
	Depth       int
	References  []reference.Reference
}

// SwitchMetrics reports the performance counters spec §4.6 asks for.
type SwitchMetrics struct {
	TotalDuration   time.Duration
	SwitchCount     int
	MaxDepthReached int
}

// SwitchResult is the outcome of a context-switch walk: the combined CEL
// and the switch points/metrics that produced it.
type SwitchResult struct {
	Cel     string
	Points  []SwitchPoint
	Metrics SwitchMetrics
}

// Switch walks node looking for subtrees whose independently classified
// dialect disagrees with ctx.Dialect above ctxpkg.SwitchThreshold, groups
// the disagreements by target dialect, emits each group under §4.4, and
// combines the pieces into one expression: by "+" concatenation when the
// enclosing dialect expects a string result, otherwise as a comma-separated
// list annotated with "/* switch: <dialect> */" markers. maxDepth bounds
// the walk; subtrees beyond it are ignored.
func Switch(node ast.Node, ctx ctxpkg.Context, maxDepth int) SwitchResult {
	start := time.Now()

	var points []SwitchPoint
	maxReached := 0

	var walk func(n ast.Node, depth int, path string)
	walk = func(n ast.Node, depth int, path string) {
		if depth > maxDepth {
			return
		}
		if depth > maxReached {
			maxReached = depth
		}
		refs := harvestReferences(n, ctx)
		if len(refs) > 0 {
			classification := ctxpkg.Classify(ctxpkg.Signals{Node: n, References: refs, Hint: ctx})
			if classification.Confidence > ctxpkg.SwitchThreshold && classification.Dialect != ctx.Dialect {
				points = append(points, SwitchPoint{
					Path:        path,
					FromDialect: ctx.Dialect,
					ToDialect:   classification.Dialect,
					Depth:       depth,
					References:  refs,
				})
			}
		}
		for i, c := range ast.Children(n) {
			walk(c, depth+1, fmt.Sprintf("%s[%d]", path, i))
		}
	}
	walk(node, 0, "$")

	groups := groupByDialect(points)
	var pieces []string
	for _, d := range dialectPriority {
		refs, ok := groups[d]
		if !ok {
			continue
		}
		cel, err := emit.References(ctx.WithDialect(d), refs)
		if err != nil {
			continue
		}
		pieces = append(pieces, fmt.Sprintf("/* switch: %s */ %s", d, cel))
	}

	sep := ", "
	if ctxpkg.ExpectedResultType(ctx.Dialect) == ctxpkg.ResultString {
		sep = " + "
	}

	return SwitchResult{
		Cel:    strings.Join(pieces, sep),
		Points: points,
		Metrics: SwitchMetrics{
			TotalDuration:   time.Since(start),
			SwitchCount:     len(points),
			MaxDepthReached: maxReached,
		},
	}
}

// groupByDialect collects the deduplicated references of every switch point
// targeting the same dialect.
func groupByDialect(points []SwitchPoint) map[ctxpkg.Dialect][]reference.Reference {
	groups := make(map[ctxpkg.Dialect][]reference.Reference)
	seen := make(map[ctxpkg.Dialect]map[string]bool)
	for _, p := range points {
		if seen[p.ToDialect] == nil {
			seen[p.ToDialect] = make(map[string]bool)
		}
		for _, r := range p.References {
			if seen[p.ToDialect][r.Key()] {
				continue
			}
			seen[p.ToDialect][r.Key()] = true
			groups[p.ToDialect] = append(groups[p.ToDialect], r)
		}
	}
	return groups
}
