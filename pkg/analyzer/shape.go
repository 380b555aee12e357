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
	"sort"
	"strconv"

	ctxpkg "github.com/kro-run/celengine/pkg/context"
	"github.com/kro-run/celengine/pkg/reference"
)

// AnalyzeShape walks a record-shaped value -- nested maps and slices whose
// leaves may be primitives, references, or host-language expression
// strings -- and converts every leaf (spec §4.5). It returns a parallel
// structure with each leaf replaced by its conversion output, plus the
// aggregated dependencies/errors/warnings/source-map entries across the
// whole walk. A sub-structure containing no convertible leaf anywhere
// within it is passed through unchanged without being copied leaf-by-leaf.
func AnalyzeShape(value interface{}, ctx ctxpkg.Context) Result {
	switch v := value.(type) {
	case map[string]interface{}:
		return analyzeMap(v, ctx)
	case []interface{}:
		return analyzeSlice(v, ctx)
	default:
		return Analyze(value, ctx)
	}
}

func analyzeMap(m map[string]interface{}, ctx ctxpkg.Context) Result {
	if res, ok := analyzeTernary(m, ctx); ok {
		return res
	}
	if !containsConvertible(m, ctx) {
		return Result{Valid: true, Value: m}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]interface{}, len(m))
	agg := Result{Valid: true}
	for _, k := range keys {
		child := AnalyzeShape(m[k], ctx)
		out[k] = child.Value
		mergeInto(&agg, child)
	}
	agg.Value = out
	agg.RequiresConversion = len(agg.Dependencies) > 0
	agg.Kind = kindOf(agg.Dependencies)
	return agg
}

// ternaryKind is the __kind discriminator a record uses to tag itself as a
// ternary rather than a plain record (spec §6's "c ? t : e" construct,
// applied to an already-decomposed map instead of parsed source text).
const ternaryKind = "ternary"

// analyzeTernary recognizes a {__kind: "ternary", cond, then, else} record
// and synthesizes it into a single CEL conditional, instead of converting
// cond/then/else as three independent leaves the way analyzeMap otherwise
// would. It reports ok=false for any map that isn't tagged this way, so
// analyzeMap falls through to its ordinary leaf-by-leaf walk.
func analyzeTernary(m map[string]interface{}, ctx ctxpkg.Context) (Result, bool) {
	kind, ok := m["__kind"].(string)
	if !ok || kind != ternaryKind {
		return Result{}, false
	}
	cond, hasCond := m["cond"]
	then, hasThen := m["then"]
	els, hasElse := m["else"]
	if !hasCond || !hasThen || !hasElse {
		return Result{}, false
	}

	condCel, condRes := ternaryBranch(cond, ctx.WithDialect(ctxpkg.Conditional))
	thenCel, thenRes := ternaryBranch(then, ctx)
	elseCel, elseRes := ternaryBranch(els, ctx)

	agg := Result{Valid: true}
	mergeInto(&agg, condRes)
	mergeInto(&agg, thenRes)
	mergeInto(&agg, elseRes)
	agg.Value = condCel + " ? " + thenCel + " : " + elseCel
	agg.RequiresConversion = true
	agg.Kind = kindOf(agg.Dependencies)
	return agg, true
}

// ternaryBranch renders one arm of a ternary as CEL text: a reference or
// recognized expression string converts the way Analyze would; any other
// primitive renders as the CEL literal it already is (a string arm quotes,
// since an unconverted string here is data, not an expression to embed
// unquoted).
func ternaryBranch(v interface{}, ctx ctxpkg.Context) (string, Result) {
	switch val := v.(type) {
	case reference.Reference:
		res := Analyze(val, ctx)
		return res.Value.(string), res
	case string:
		if isExpressionString(val, ctx) {
			res := Analyze(val, ctx)
			if cel, ok := res.Value.(string); ok {
				return cel, res
			}
		}
		return strconv.Quote(val), Result{Valid: true, Value: val}
	case bool:
		return strconv.FormatBool(val), Result{Valid: true, Value: val}
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), Result{Valid: true, Value: val}
	case nil:
		return "null", Result{Valid: true, Value: nil}
	default:
		// A nested record/array arm isn't itself CEL text; best-effort
		// display rather than a construct spec §6 doesn't define CEL for.
		res := AnalyzeShape(val, ctx)
		return strconv.Quote(fmt.Sprintf("%v", res.Value)), res
	}
}

func analyzeSlice(s []interface{}, ctx ctxpkg.Context) Result {
	if !containsConvertible(s, ctx) {
		return Result{Valid: true, Value: s}
	}

	out := make([]interface{}, len(s))
	agg := Result{Valid: true}
	for i, v := range s {
		child := AnalyzeShape(v, ctx)
		out[i] = child.Value
		mergeInto(&agg, child)
	}
	agg.Value = out
	agg.RequiresConversion = len(agg.Dependencies) > 0
	agg.Kind = kindOf(agg.Dependencies)
	return agg
}

// containsConvertible reports whether v contains, anywhere in its nested
// map/slice structure, a leaf that conversion would actually touch: an
// embedded Reference or a string the §4.3 expression test accepts. Plain
// reference.ContainsAny only catches the former, which would let a
// sub-structure built entirely from expression strings (the common case
// once a value has round-tripped through a host-language template) pass
// through unconverted.
func containsConvertible(v interface{}, ctx ctxpkg.Context) bool {
	switch val := v.(type) {
	case reference.Reference:
		return true
	case string:
		return isExpressionString(val, ctx)
	case map[string]interface{}:
		for _, child := range val {
			if containsConvertible(child, ctx) {
				return true
			}
		}
		return false
	case []interface{}:
		for _, child := range val {
			if containsConvertible(child, ctx) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// mergeInto folds a leaf/sub-structure's Result into the accumulating
// parent Result. A failing leaf is isolated per spec §4.5: its error is
// recorded but does not flip the parent invalid, and siblings still
// process; the leaf's own Value (already its original, unconverted value
// per Analyze's failure path) is what analyzeMap/analyzeSlice already wrote
// into the rebuilt structure.
func mergeInto(agg *Result, child Result) {
	agg.Dependencies = append(agg.Dependencies, child.Dependencies...)
	agg.SourceMapEntries = append(agg.SourceMapEntries, child.SourceMapEntries...)
	agg.Warnings = append(agg.Warnings, child.Warnings...)
	agg.Errors = append(agg.Errors, child.Errors...)
}
