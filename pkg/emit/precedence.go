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

// Package emit lowers a harvested reference set or a parsed AST to CEL text,
// one rule set per dialect (spec §4.4). It never evaluates the CEL it
// produces; pkg/celenv.Parse is the only check applied to emitted text.
package emit

import "github.com/kro-run/celengine/pkg/expr/ast"

// precedence mirrors standard C-family binding strength, pinned by this
// module's decision on spec §9's "precedence for mixed arithmetic/comparison"
// open question (see DESIGN.md): higher binds tighter.
func precedence(n ast.Node) int {
	switch v := n.(type) {
	case *ast.Conditional, *ast.Nullish:
		return 1
	case *ast.Logical:
		if v.Op == ast.OpOr {
			return 2
		}
		return 3
	case *ast.Binary:
		switch v.Op {
		case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
			return 4
		case ast.OpAdd, ast.OpSub:
			return 5
		case ast.OpMul, ast.OpDiv, ast.OpMod:
			return 6
		}
	case *ast.Unary:
		return 7
	}
	// Member, Index, Call, Identifier, Literal, ArrayLiteral, ObjectLiteral,
	// TemplateLiteral: atoms, never need parenthesizing as a child.
	return 8
}

// wrapIfLooser renders child's CEL text, parenthesizing it when its
// operator binds looser than parent's, the standard "wrap if child op
// binds looser" precedence-printing rule.
func wrapIfLooser(parent, child ast.Node, childCel string) string {
	if precedence(child) < precedence(parent) {
		return "(" + childCel + ")"
	}
	return childCel
}
