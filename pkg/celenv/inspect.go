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

package celenv

import (
	"fmt"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/kro-run/celengine/pkg/reference"
)

// Inspector walks an already-emitted CEL string to recover the
// reference.Reference values embedded in it, used by pkg/runtimeerror as a
// fallback when a CEL string has no source map entry to look up directly
// (e.g. it was hand-written rather than produced by pkg/analyzer).
type Inspector struct {
	env       *cel.Env
	resources map[string]struct{}
	loopVars  map[string]struct{}
}

// NewInspector builds an Inspector that recognizes resources as known
// identifier roots; a select chain rooted at anything else is not reported.
func NewInspector(resources []string, opts ...EnvOption) (*Inspector, error) {
	env, err := DefaultEnvironment(append(opts, WithResourceIDs(resources))...)
	if err != nil {
		return nil, fmt.Errorf("building inspection environment: %w", err)
	}
	return NewInspectorWithEnv(env, resources), nil
}

// NewInspectorWithEnv builds an Inspector around an already-constructed
// environment (e.g. one pkg/emit already built for the same analysis).
func NewInspectorWithEnv(env *cel.Env, resources []string) *Inspector {
	out := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		out[r] = struct{}{}
	}
	return &Inspector{env: env, resources: out, loopVars: map[string]struct{}{}}
}

// Inspect parses expression and recovers the reference.Reference values its
// select chains resolve to. The Inspector may be reused across calls with
// different expressions.
func (a *Inspector) Inspect(expression string) ([]reference.Reference, error) {
	ast, iss := a.env.Parse(expression)
	if iss.Err() != nil {
		return nil, fmt.Errorf("parsing expression: %w", iss.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("converting parsed expression: %w", err)
	}
	return a.walk(parsed.GetExpr(), ""), nil
}

// walk descends expr accumulating the dotted field path seen so far above
// it (currentPath), resolving one reference.Reference per select chain
// rooted at a declared resource. A chain rooted at anything else (an
// unknown identifier, a loop variable, a literal) yields nothing: unlike
// the teacher's inspector, this one only ever needs to recover dependencies
// pkg/runtimeerror can act on, not a full accounting of every identifier and
// call in the expression.
func (a *Inspector) walk(expr *exprpb.Expr, currentPath string) []reference.Reference {
	switch e := expr.GetExprKind().(type) {
	case *exprpb.Expr_SelectExpr:
		field := e.SelectExpr.GetField()
		if currentPath != "" {
			field = field + "." + currentPath
		}
		return a.walk(e.SelectExpr.GetOperand(), field)
	case *exprpb.Expr_IdentExpr:
		return a.identRefs(e.IdentExpr.GetName(), currentPath)
	case *exprpb.Expr_CallExpr:
		return a.callRefs(e.CallExpr)
	case *exprpb.Expr_ComprehensionExpr:
		return a.comprehensionRefs(e.ComprehensionExpr)
	default:
		return nil
	}
}

func (a *Inspector) identRefs(name, fieldPath string) []reference.Reference {
	if _, isLoopVar := a.loopVars[name]; isLoopVar {
		return nil
	}
	if _, known := a.resources[name]; !known || fieldPath == "" {
		return nil
	}
	r, err := reference.New(name, fieldPath, reference.TypeHint{})
	if err != nil {
		return nil
	}
	return []reference.Reference{r}
}

func (a *Inspector) callRefs(call *exprpb.Expr_Call) []reference.Reference {
	var out []reference.Reference
	for _, arg := range call.GetArgs() {
		out = append(out, a.walk(arg, "")...)
	}
	if call.GetTarget() != nil {
		out = append(out, a.walk(call.GetTarget(), "")...)
	}
	return out
}

func (a *Inspector) comprehensionRefs(comp *exprpb.Expr_Comprehension) []reference.Reference {
	a.loopVars[comp.GetIterVar()] = struct{}{}
	defer delete(a.loopVars, comp.GetIterVar())

	var out []reference.Reference
	out = append(out, a.walk(comp.GetIterRange(), "")...)
	if comp.GetLoopCondition() != nil {
		out = append(out, a.walk(comp.GetLoopCondition(), "")...)
	}
	if comp.GetLoopStep() != nil {
		out = append(out, a.walk(comp.GetLoopStep(), "")...)
	}
	out = append(out, a.walk(comp.GetResult(), "")...)
	return out
}
