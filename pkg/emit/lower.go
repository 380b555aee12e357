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
	"fmt"
	"strconv"
	"strings"

	"github.com/kro-run/celengine/pkg/compileerr"
	ctxpkg "github.com/kro-run/celengine/pkg/context"
	"github.com/kro-run/celengine/pkg/expr/ast"
)

// comprehensionMacros names the CEL macro-backed methods whose first
// argument binds a loop variable rather than naming a resource or schema
// identifier, mirroring celenv.Inspect's loopVars tracking for the same
// macros over already-emitted CEL text.
var comprehensionMacros = map[string]bool{
	"filter": true, "map": true, "exists": true, "existsOne": true, "all": true,
}

// state threads the analysis context plus the set of names currently bound
// by an enclosing comprehension macro, so lowerIdentifier does not reject a
// macro's own loop variable as an unknown identifier.
type state struct {
	ctx      ctxpkg.Context
	loopVars map[string]bool
}

func (s state) withLoopVar(name string) state {
	next := make(map[string]bool, len(s.loopVars)+1)
	for k := range s.loopVars {
		next[k] = true
	}
	next[name] = true
	return state{ctx: s.ctx, loopVars: next}
}

// Lower walks a parsed host-language AST and renders it as CEL text (spec
// §4.4's "walk the AST" path, used when the analyzer is converting a string
// value rather than a bare Reference). Every operator in §6's supported
// subset maps onto its CEL equivalent; the three constructs CEL has no
// direct equivalent for (optional chaining, logical-OR fallback, nullish
// coalescing) are rewritten per the emitter rules rather than passed
// through.
func Lower(n ast.Node, ctx ctxpkg.Context) (string, error) {
	return lower(n, state{ctx: ctx})
}

func lower(n ast.Node, s state) (string, error) {
	switch v := n.(type) {
	case *ast.Identifier:
		return lowerIdentifier(v, s)
	case *ast.Literal:
		return lowerLiteral(v)
	case *ast.Member:
		return lowerMember(v, s)
	case *ast.Index:
		return lowerIndex(v, s)
	case *ast.Call:
		return lowerCall(v, s)
	case *ast.Unary:
		return lowerUnary(v, s)
	case *ast.Binary:
		return lowerBinary(v, s)
	case *ast.Logical:
		return lowerLogical(v, s)
	case *ast.Conditional:
		return lowerConditional(v, s)
	case *ast.Nullish:
		return lowerNullish(v, s)
	case *ast.TemplateLiteral:
		return lowerTemplateLiteral(v, s)
	case *ast.ArrayLiteral:
		return lowerArrayLiteral(v, s)
	case *ast.ObjectLiteral:
		return lowerObjectLiteral(v, s)
	default:
		return "", &compileerr.ConversionError{
			Category: compileerr.CategoryUnknown,
			Reason:   fmt.Sprintf("no lowering rule for node type %T", n),
		}
	}
}

// lowerChild renders child and parenthesizes it if needed relative to
// parent's operator precedence (spec §4.4: "attaches parentheses whenever
// the child's CEL precedence is lower than the parent's").
func lowerChild(parent, child ast.Node, s state) (string, error) {
	cel, err := lower(child, s)
	if err != nil {
		return "", err
	}
	return wrapIfLooser(parent, child, cel), nil
}

func lowerIdentifier(v *ast.Identifier, s state) (string, error) {
	if s.loopVars[v.Name] {
		return v.Name, nil
	}
	if v.Name == "schema" || v.Name == "resources" {
		return v.Name, nil
	}
	if s.ctx.HasResource(v.Name) {
		return v.Name, nil
	}
	return "", &compileerr.ConversionError{
		Expression: v.Name,
		Category:   compileerr.CategoryMemberAccess,
		Pos:        &compileerr.Position{Line: v.Span.Line, Column: v.Span.Column, Offset: v.Span.Start},
		Reason:     fmt.Sprintf("identifier %q is not schema, resources, or a known resource id", v.Name),
	}
}

func lowerLiteral(v *ast.Literal) (string, error) {
	switch v.Kind {
	case ast.LiteralString:
		s, _ := v.Value.(string)
		return strconv.Quote(s), nil
	case ast.LiteralNumber:
		n, _ := v.Value.(float64)
		return strconv.FormatFloat(n, 'g', -1, 64), nil
	case ast.LiteralBool:
		b, _ := v.Value.(bool)
		return strconv.FormatBool(b), nil
	case ast.LiteralNull:
		return "null", nil
	default:
		return "", &compileerr.ConversionError{Category: compileerr.CategoryUnknown, Reason: "unrecognized literal kind"}
	}
}

// lowerMember renders "a.b", or, for optional chaining, the
// has(a) ? a.b : null guard the emitter rules specify.
func lowerMember(v *ast.Member, s state) (string, error) {
	obj, err := lowerChild(v, v.Object, s)
	if err != nil {
		return "", err
	}
	plain := obj + "." + v.Property
	if !v.Optional {
		return plain, nil
	}
	return fmt.Sprintf("has(%s) ? %s : null", obj, plain), nil
}

func lowerIndex(v *ast.Index, s state) (string, error) {
	obj, err := lowerChild(v, v.Object, s)
	if err != nil {
		return "", err
	}
	idx, err := lower(v.Index, s)
	if err != nil {
		return "", err
	}
	return obj + "[" + idx + "]", nil
}

// lowerCall renders "callee(args...)", or, for an optional call
// ("object?.method(...)"), a has(...) guard on the callee's own object the
// same way optional member access is guarded. When callee is one of the
// comprehension macros (filter/map/exists/existsOne/all), the first
// argument is a bound loop variable rather than an identifier to resolve.
func lowerCall(v *ast.Call, s state) (string, error) {
	callee, err := lower(v.Callee, s)
	if err != nil {
		return "", err
	}

	argState := s
	loopVar, isComprehension := comprehensionLoopVar(v)
	if isComprehension {
		argState = s.withLoopVar(loopVar)
	}

	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		if isComprehension && i == 0 {
			args[i] = loopVar
			continue
		}
		arg, err := lower(a, argState)
		if err != nil {
			return "", err
		}
		args[i] = arg
	}
	plain := fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
	if !v.Optional {
		return plain, nil
	}
	guard := calleeObject(v.Callee, s)
	if guard == "" {
		return plain, nil
	}
	return fmt.Sprintf("has(%s) ? %s : null", guard, plain), nil
}

// comprehensionLoopVar reports whether call is a "<object>.<macro>(var, ...)"
// invocation and, if so, returns var's name.
func comprehensionLoopVar(v *ast.Call) (string, bool) {
	m, ok := v.Callee.(*ast.Member)
	if !ok || !comprehensionMacros[m.Property] {
		return "", false
	}
	if len(v.Args) == 0 {
		return "", false
	}
	id, ok := v.Args[0].(*ast.Identifier)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// calleeObject returns the receiver text of an optional method call's
// callee (the "object" in "object?.method(...)"), or "" when the callee is
// not itself a member access (a bare optional function call has no receiver
// to guard on).
func calleeObject(callee ast.Node, s state) string {
	m, ok := callee.(*ast.Member)
	if !ok {
		return ""
	}
	obj, err := lower(m.Object, s)
	if err != nil {
		return ""
	}
	return obj
}

func lowerUnary(v *ast.Unary, s state) (string, error) {
	operand, err := lowerChild(v, v.Operand, s)
	if err != nil {
		return "", err
	}
	switch v.Op {
	case ast.UnaryPos:
		// CEL has no unary "+"; it is a numeric no-op in the source subset,
		// so it is dropped rather than emitted.
		return operand, nil
	case ast.UnaryNot, ast.UnaryNeg:
		return string(v.Op) + operand, nil
	default:
		return "", &compileerr.ConversionError{Category: compileerr.CategoryUnknown, Reason: "unrecognized unary operator"}
	}
}

func lowerBinary(v *ast.Binary, s state) (string, error) {
	left, err := lowerChild(v, v.Left, s)
	if err != nil {
		return "", err
	}
	right, err := lowerChild(v, v.Right, s)
	if err != nil {
		return "", err
	}
	return left + " " + string(v.Op) + " " + right, nil
}

// lowerLogical implements "&&" directly and rewrites "||" into the
// type-appropriate fallback form (spec §4.4): "a != null ? a : b", with an
// additional emptiness check on the left operand when its declared type
// implies one. Decision for the open question of what counts as
// "type-appropriate": the context's ExpectedType hint (for the whole
// expression, not per operand), when present, selects the extra check;
// with no hint only the null check applies.
func lowerLogical(v *ast.Logical, s state) (string, error) {
	left, err := lower(v.Left, s)
	if err != nil {
		return "", err
	}
	right, err := lowerChild(v, v.Right, s)
	if err != nil {
		return "", err
	}
	if v.Op == ast.OpAnd {
		leftWrapped := wrapIfLooser(v, v.Left, left)
		return leftWrapped + " && " + right, nil
	}
	return fallbackExpr(left, right, s.ctx), nil
}

func fallbackExpr(left, right string, ctx ctxpkg.Context) string {
	cond := left + " != null"
	switch {
	case ctx.ExpectedType.IsString():
		cond += fmt.Sprintf(` && %s != ""`, left)
	case ctx.ExpectedType.IsBoolean(), ctx.ExpectedType.IsNumber():
		// No further emptiness check: zero/false are legitimate values.
	}
	return fmt.Sprintf("%s ? %s : %s", cond, left, right)
}

// lowerConditional renders the ternary directly: CEL supports "?:" natively.
func lowerConditional(v *ast.Conditional, s state) (string, error) {
	cond, err := lower(v.Cond, s)
	if err != nil {
		return "", err
	}
	then, err := lowerChild(v, v.Then, s)
	if err != nil {
		return "", err
	}
	els, err := lowerChild(v, v.Else, s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s ? %s : %s", cond, then, els), nil
}

// lowerNullish implements "a ?? b" as "a != null ? a : b" with no additional
// emptiness check, distinguishing it from "||"'s fallback.
func lowerNullish(v *ast.Nullish, s state) (string, error) {
	left, err := lower(v.Left, s)
	if err != nil {
		return "", err
	}
	right, err := lower(v.Right, s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s != null ? %s : %s", left, left, right), nil
}

// lowerTemplateLiteral renders a template as a CEL "+" chain: every
// non-empty literal part becomes a quoted string, every interpolation is
// coerced to string unless it is already known to produce one.
func lowerTemplateLiteral(v *ast.TemplateLiteral, s state) (string, error) {
	var segments []string
	for i, part := range v.Parts {
		if part != "" {
			segments = append(segments, strconv.Quote(part))
		}
		if i < len(v.Exprs) {
			cel, err := lower(v.Exprs[i], s)
			if err != nil {
				return "", err
			}
			segments = append(segments, coerceToString(v.Exprs[i], cel))
		}
	}
	if len(segments) == 0 {
		return `""`, nil
	}
	return strings.Join(segments, " + "), nil
}

// coerceToString wraps cel in string(...) unless n is already
// string-producing by construction (a string literal or a nested template).
func coerceToString(n ast.Node, cel string) string {
	switch v := n.(type) {
	case *ast.TemplateLiteral:
		return cel
	case *ast.Literal:
		if v.Kind == ast.LiteralString {
			return cel
		}
	}
	return "string(" + cel + ")"
}

func lowerArrayLiteral(v *ast.ArrayLiteral, s state) (string, error) {
	elems := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		cel, err := lower(e, s)
		if err != nil {
			return "", err
		}
		elems[i] = cel
	}
	return "[" + strings.Join(elems, ", ") + "]", nil
}

func lowerObjectLiteral(v *ast.ObjectLiteral, s state) (string, error) {
	entries := make([]string, len(v.Properties))
	for i, p := range v.Properties {
		val, err := lower(p.Value, s)
		if err != nil {
			return "", err
		}
		entries[i] = strconv.Quote(p.Key) + ": " + val
	}
	return "{" + strings.Join(entries, ", ") + "}", nil
}
