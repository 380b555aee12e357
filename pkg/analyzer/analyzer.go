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

// Package analyzer is the facade that turns a value of unknown shape -- a
// bare reference, a host-language expression string, or a composite data
// structure embedding either -- into CEL (spec §4.3). It never evaluates
// CEL; it only harvests references, classifies a dialect when the caller
// hasn't pinned one, and delegates to pkg/emit.
package analyzer

import (
	"strings"

	"github.com/kro-run/celengine/pkg/compileerr"
	ctxpkg "github.com/kro-run/celengine/pkg/context"
	"github.com/kro-run/celengine/pkg/emit"
	"github.com/kro-run/celengine/pkg/expr/parser"
	"github.com/kro-run/celengine/pkg/reference"
	"github.com/kro-run/celengine/pkg/sourcemap"
)

// FunctionExpression is the Go-side stand-in for the "function-shaped"
// input §4.3 dispatches on: a host-language function value whose body is
// itself an expression. Go cannot recover a function literal's source at
// runtime the way the surrounding factory layer's host language can, so the
// caller supplies the source text explicitly.
type FunctionExpression struct {
	Source string
}

// Kind classifies a conversion result by the resource-variable kind its
// harvested dependencies fall into (teacher: variable.ResourceVariableKind,
// minus the readyWhen/includeWhen members pkg/conditional owns instead).
type Kind string

const (
	// KindStatic means every dependency is schema-rooted -- the value is
	// known once the instance spec is known.
	KindStatic Kind = "static"
	// KindDynamic means at least one dependency is resource-rooted -- the
	// value can only be known once another resource exists.
	KindDynamic Kind = "dynamic"
	// KindNone means the value carried no dependency at all.
	KindNone Kind = "none"
)

func kindOf(refs []reference.Reference) Kind {
	if len(refs) == 0 {
		return KindNone
	}
	if len(reference.Categorize(refs).Resources) > 0 {
		return KindDynamic
	}
	return KindStatic
}

// Result is a conversion result (spec §3 "Conversion result").
type Result struct {
	Valid bool

	// Cel is the emitted expression, nil when Valid is false.
	Cel *reference.CelExpression

	// Value is what the caller substitutes at this position: the original
	// value unchanged for a passthrough or a failed leaf, or the emitted CEL
	// source text for a converted reference/expression/composite.
	Value interface{}

	Dependencies     []reference.Reference
	SourceMapEntries []sourcemap.Entry
	Errors           []error
	Warnings         []compileerr.CompileTimeWarning

	// RequiresConversion is true iff at least one reference was found.
	RequiresConversion bool

	// Kind is KindStatic/KindDynamic/KindNone per the harvested dependencies.
	Kind Kind
}

// Analyze dispatches on value's shape and converts it to CEL under ctx
// (spec §4.3). It never panics or returns an error for an input-level
// problem: failures are carried in Result.Errors with Result.Valid false.
func Analyze(value interface{}, ctx ctxpkg.Context) Result {
	switch v := value.(type) {
	case reference.Reference:
		return analyzeReference(v, ctx)
	case FunctionExpression:
		return analyzeExpressionString(v.Source, v.Source, ctx)
	case string:
		if !isExpressionString(v, ctx) {
			return passthrough(v)
		}
		return analyzeExpressionString(v, v, ctx)
	case map[string]interface{}, []interface{}:
		return AnalyzeShape(value, ctx)
	case nil:
		return passthrough(value)
	default:
		return passthrough(value)
	}
}

func passthrough(v interface{}) Result {
	return Result{Valid: true, Value: v, Kind: KindNone}
}

func analyzeReference(r reference.Reference, ctx ctxpkg.Context) Result {
	if err := ctx.ValidateReference(r); err != nil {
		return Result{Valid: false, Value: r, Errors: []error{err}}
	}
	celText, err := emit.FromReferences(ctx, []reference.Reference{r}, emit.Request{
		Original:       r.String(),
		ExpressionType: "reference",
	})
	if err != nil {
		return Result{Valid: false, Value: r, Errors: []error{err}}
	}
	celExpr, err := reference.NewCelExpression(celText, r.TypeHint())
	if err != nil {
		return Result{Valid: false, Value: r, Errors: []error{err}}
	}
	return Result{
		Valid:              true,
		Cel:                &celExpr,
		Value:              celText,
		Dependencies:       []reference.Reference{r},
		RequiresConversion: true,
		Kind:               kindOf([]reference.Reference{r}),
	}
}

// analyzeExpressionString parses a host-language expression, harvests its
// references, classifies a dialect when ctx didn't already pin one, and
// emits CEL for it. original is what failures and the source map report
// back, distinct from s only when s has already been unwrapped from a
// FunctionExpression.
func analyzeExpressionString(s, original string, ctx ctxpkg.Context) Result {
	node, err := parser.Parse(s)
	if err != nil {
		return Result{Valid: false, Value: original, Errors: []error{err}}
	}

	refs := harvestReferences(node, ctx)

	runCtx := ctx
	if runCtx.Dialect == "" {
		classification := ctxpkg.Classify(ctxpkg.Signals{Node: node, References: refs, Hint: ctx})
		runCtx = ctx.WithDialect(classification.Dialect)
	}

	celText, err := emit.FromNode(runCtx, node, emit.Request{Original: original, ExpressionType: "expression"})
	if err != nil {
		return Result{Valid: false, Value: original, Dependencies: refs, Errors: []error{err}}
	}
	celExpr, err := reference.NewCelExpression(celText, runCtx.ExpectedType)
	if err != nil {
		return Result{Valid: false, Value: original, Dependencies: refs, Errors: []error{err}}
	}
	return Result{
		Valid:              true,
		Cel:                &celExpr,
		Value:              celText,
		Dependencies:       refs,
		RequiresConversion: len(refs) > 0,
		Kind:               kindOf(refs),
	}
}

// operatorTokens are substrings whose presence marks a string as an
// expression to parse rather than a primitive to pass through, beyond the
// template-literal "${" marker (spec §4.3).
var operatorTokens = []string{"${", "?.", "??", "&&", "||", "==", "!=", "<=", ">="}

// isExpressionString implements the §4.3 "primitive vs. expression" shape
// test for a bare string: it must contain "${", one of the other operator
// tokens, or be a dotted path rooted at schema/resources/a known resource
// id.
func isExpressionString(s string, ctx ctxpkg.Context) bool {
	if s == "" {
		return false
	}
	for _, tok := range operatorTokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	head := s
	if i := strings.IndexAny(s, ".[("); i >= 0 {
		head = s[:i]
	}
	if head == "schema" || head == "resources" {
		return true
	}
	return ctx.HasResource(head)
}
