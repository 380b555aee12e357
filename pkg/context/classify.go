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
	"strings"

	"github.com/gobuffalo/flect"

	"github.com/kro-run/celengine/pkg/expr/ast"
	"github.com/kro-run/celengine/pkg/reference"
)

// signal weights (spec §4.2 "each signal adds a fixed weight to one or more
// candidate dialects"). Values are arbitrary but ordered so that no single
// content signal can outscore two structural signals combined, matching the
// "adding a signal never decreases a dialect's score" monotonicity property
// (spec §8 property 7 — Classify only ever adds to a score, never subtracts).
const (
	weightTernary          = 0.35
	weightLogical          = 0.2
	weightComparison       = 0.25
	weightTemplateSyntax   = 0.6
	weightFunctionShaped   = 0.3
	weightSchemaRef        = 0.15
	weightResourceRef      = 0.1
	weightStatusPath       = 0.3
	weightSpecPath         = 0.25
	weightReadyPath        = 0.4
	weightAvailablePath    = 0.3
	weightKeyword          = 0.3
	weightFunctionNameHint = 0.5
	weightFactoryKind      = 0.1
)

var readinessKeywords = []string{"ready", "available", "healthy", "condition"}
var conditionalKeywords = []string{"enable", "include", "when", "if"}
var statusKeywords = []string{"status", "phase", "state"}

// Signals is the evidence Classify scores: the parsed AST (nil if the input
// isn't an expression string), the references it harvests, and whatever
// contextual hints the caller already knows.
type Signals struct {
	Node       ast.Node
	References []reference.Reference
	Hint       Context
}

// Scores maps each dialect to its accumulated raw score.
type Scores map[Dialect]float64

func (s Scores) add(d Dialect, w float64) { s[d] += w }

// Classification is Classify's result: the winning dialect and its
// confidence, plus the full score breakdown for diagnostics.
type Classification struct {
	Dialect    Dialect
	Confidence float64
	Scores     Scores
}

// Classify scores structural, content and contextual signals and returns
// the winning dialect (spec §4.2).
func Classify(sig Signals) Classification {
	scores := Scores{}

	scoreStructural(sig.Node, scores)
	scoreContent(sig.References, scores)
	scoreContextual(sig.Hint, scores)

	best, bestScore := pickBest(scores)
	confidence := bestScore
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return Classification{Dialect: best, Confidence: confidence, Scores: scores}
}

// pickBest returns the highest-scoring dialect, breaking ties by
// priorityOrder. A dialect with a zero score never displaces Unknown: the
// tie-break only arbitrates among dialects signals actually voted for.
func pickBest(scores Scores) (Dialect, float64) {
	best := Unknown
	bestScore := scores[Unknown]
	for _, d := range priorityOrder {
		if d == Unknown {
			continue
		}
		s := scores[d]
		if s <= 0 {
			continue
		}
		if s > bestScore || (s == bestScore && priorityIndex(d) < priorityIndex(best)) {
			best = d
			bestScore = s
		}
	}
	return best, bestScore
}

func scoreStructural(n ast.Node, scores Scores) {
	if n == nil {
		return
	}
	ast.Walk(n, func(node ast.Node) bool {
		switch v := node.(type) {
		case *ast.Conditional:
			scores.add(Conditional, weightTernary)
		case *ast.Logical:
			scores.add(Conditional, weightLogical)
			scores.add(Readiness, weightLogical/2)
		case *ast.Binary:
			if isComparisonOp(v.Op) {
				scores.add(Conditional, weightComparison)
				scores.add(Readiness, weightComparison)
			}
		case *ast.TemplateLiteral:
			scores.add(TemplateLiteral, weightTemplateSyntax)
		case *ast.Call:
			scores.add(FieldHydration, weightFunctionShaped)
		}
		return true
	})
}

func isComparisonOp(op ast.BinaryOp) bool {
	switch op {
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return true
	}
	return false
}

func scoreContent(refs []reference.Reference, scores Scores) {
	for _, r := range refs {
		if r.IsSchemaRooted() {
			scores.add(StatusBuilder, weightSchemaRef)
			scores.add(ResourceBuilder, weightSchemaRef)
		} else {
			scores.add(ResourceBuilder, weightResourceRef)
			scores.add(StatusBuilder, weightResourceRef/2)
		}

		path := normalizeFieldPath(r.FieldPath())
		switch {
		case containsSegment(path, "status"):
			scores.add(StatusBuilder, weightStatusPath)
			scores.add(Readiness, weightStatusPath/2)
		case containsSegment(path, "spec"):
			scores.add(ResourceBuilder, weightSpecPath)
		}
		if hasAnyPrefix(path, "ready") {
			scores.add(Readiness, weightReadyPath)
		}
		if hasAnyPrefix(path, "available") {
			scores.add(Readiness, weightAvailablePath)
			scores.add(Conditional, weightAvailablePath/2)
		}
		for _, kw := range readinessKeywords {
			if strings.Contains(path, kw) {
				scores.add(Readiness, weightKeyword)
				break
			}
		}
		for _, kw := range conditionalKeywords {
			if strings.Contains(path, kw) {
				scores.add(Conditional, weightKeyword)
				break
			}
		}
		for _, kw := range statusKeywords {
			if strings.Contains(path, kw) {
				scores.add(StatusBuilder, weightKeyword)
				break
			}
		}
	}
}

// normalizeFieldPath lowercases and singularizes each dotted segment with
// flect, the same field-name normalization kro's CRD generation applies, so
// "statuses.readyReplicas" and "status.readyReplica" score identically.
func normalizeFieldPath(path string) string {
	segs := strings.Split(path, ".")
	for i, s := range segs {
		s = strings.ToLower(s)
		segs[i] = flect.Singularize(s)
	}
	return strings.Join(segs, ".")
}

func containsSegment(path, seg string) bool {
	for _, s := range strings.Split(path, ".") {
		if s == seg {
			return true
		}
	}
	return false
}

func hasAnyPrefix(path, prefix string) bool {
	for _, s := range strings.Split(path, ".") {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func scoreContextual(hint Context, scores Scores) {
	switch normalizeFunctionName(hint.FunctionNameHint) {
	case "statusbuilder":
		scores.add(StatusBuilder, weightFunctionNameHint)
	case "resourcebuilder", "simpleresourcebuilder":
		scores.add(ResourceBuilder, weightFunctionNameHint)
	case "conditionbuilder", "includewhen":
		scores.add(Conditional, weightFunctionNameHint)
	case "readywhen", "readinessbuilder":
		scores.add(Readiness, weightFunctionNameHint)
	}

	if hint.FactoryKind == FactoryDirect {
		scores.add(ResourceBuilder, weightFactoryKind)
	}
	if hint.FactoryKind == FactoryKro {
		scores.add(StatusBuilder, weightFactoryKind)
	}

	if hint.Dialect != "" && hint.Dialect != Unknown {
		scores.add(hint.Dialect, weightFunctionNameHint)
	}
}

func normalizeFunctionName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}
