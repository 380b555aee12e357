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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kro-run/celengine/pkg/expr/ast"
)

func TestPrecedenceOrdering(t *testing.T) {
	mul := ast.NewBinary(ast.Span{}, ast.OpMul, nil, nil)
	add := ast.NewBinary(ast.Span{}, ast.OpAdd, nil, nil)
	cmp := ast.NewBinary(ast.Span{}, ast.OpEq, nil, nil)
	logAnd := ast.NewLogical(ast.Span{}, ast.OpAnd, nil, nil)
	logOr := ast.NewLogical(ast.Span{}, ast.OpOr, nil, nil)
	cond := ast.NewConditional(ast.Span{}, nil, nil, nil)

	assert.Greater(t, precedence(mul), precedence(add))
	assert.Greater(t, precedence(add), precedence(cmp))
	assert.Greater(t, precedence(cmp), precedence(logAnd))
	assert.Greater(t, precedence(logAnd), precedence(logOr))
	assert.Greater(t, precedence(logOr), precedence(cond))
}

func TestWrapIfLooser(t *testing.T) {
	parent := ast.NewBinary(ast.Span{}, ast.OpMul, nil, nil)
	looserChild := ast.NewBinary(ast.Span{}, ast.OpAdd, nil, nil)
	tighterChild := ast.NewUnary(ast.Span{}, ast.UnaryNeg, nil)

	assert.Equal(t, "(a + b)", wrapIfLooser(parent, looserChild, "a + b"))
	assert.Equal(t, "-a", wrapIfLooser(parent, tighterChild, "-a"))
}
