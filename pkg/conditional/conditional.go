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

// Package conditional attaches include-when, ready-when, and named custom
// predicates to a resource handle, as a standalone binder rather than a
// value embedded in a graph parser's variable discovery pass.
package conditional

import (
	"fmt"

	"github.com/kro-run/celengine/pkg/analyzer"
	"github.com/kro-run/celengine/pkg/compileerr"
	ctxpkg "github.com/kro-run/celengine/pkg/context"
	"github.com/kro-run/celengine/pkg/hoststring"
)

// Mode selects how Bind treats a predicate value.
type Mode string

const (
	// AutoProcess runs each predicate through the analyzer in its matching
	// dialect before storing it.
	AutoProcess Mode = "auto-process"
	// Passthrough stores a predicate's value without converting it, after
	// validating it is a standalone expression; the stored text is the
	// expression with its "${" and "}" delimiters removed (teacher:
	// parser.ParseConditionExpressions).
	Passthrough Mode = "passthrough"
)

// Input is the raw predicate values a caller wants attached to a resource
// handle, before Bind processes them.
type Input struct {
	IncludeWhen interface{}
	ReadyWhen   interface{}
	Custom      map[string]interface{}
}

// predicates is the bound, post-processing form. Its fields are unexported
// so a Handle never enumerates them through normal struct field access or
// JSON marshaling -- a caller must go through ExtractPredicates -- matching
// the "non-enumerable on the handle" requirement.
type predicates struct {
	includeWhen analyzer.Result
	readyWhen   analyzer.Result
	custom      map[string]analyzer.Result
}

// Handle is a resource handle carrying bound predicates plus whatever other
// fields a caller attaches via Extra. Only the predicate fields are
// extracted for serialization; Extra enumerates normally.
type Handle struct {
	Extra map[string]interface{}

	bound predicates
}

// ErrFunctionPredicateInKro is returned when kind is FactoryKro and a
// predicate is a function-shaped value, which the kro factory path
// disallows outright (spec §4.7).
var ErrFunctionPredicateInKro = fmt.Errorf("kro factory kind: predicates must not be functions")

// Bind attaches in's predicates to a new Handle under mode and kind,
// returning any non-fatal warnings alongside a hard error when a predicate
// is invalid for its mode/kind combination.
func Bind(mode Mode, kind ctxpkg.FactoryKind, ctx ctxpkg.Context, in Input) (*Handle, []compileerr.CompileTimeWarning, error) {
	var warnings []compileerr.CompileTimeWarning

	if kind == ctxpkg.FactoryDirect && (in.IncludeWhen != nil || in.ReadyWhen != nil) {
		warnings = append(warnings, compileerr.CompileTimeWarning{
			Category: compileerr.LimitedExpressiveness,
			Message:  "direct factory kind supports include-when/ready-when, but its expressiveness is limited compared to the kro factory kind",
		})
	}

	if kind == ctxpkg.FactoryKro {
		if _, ok := in.IncludeWhen.(analyzer.FunctionExpression); ok {
			return nil, warnings, ErrFunctionPredicateInKro
		}
		if _, ok := in.ReadyWhen.(analyzer.FunctionExpression); ok {
			return nil, warnings, ErrFunctionPredicateInKro
		}
		for name, v := range in.Custom {
			if _, ok := v.(analyzer.FunctionExpression); ok {
				return nil, warnings, fmt.Errorf("custom predicate %q: %w", name, ErrFunctionPredicateInKro)
			}
		}
	}

	bound := predicates{custom: make(map[string]analyzer.Result, len(in.Custom))}

	if in.IncludeWhen != nil {
		res, err := bindOne(in.IncludeWhen, mode, ctx.WithDialect(ctxpkg.Conditional))
		if err != nil {
			return nil, warnings, fmt.Errorf("include-when: %w", err)
		}
		bound.includeWhen = res
	}
	if in.ReadyWhen != nil {
		res, err := bindOne(in.ReadyWhen, mode, ctx.WithDialect(ctxpkg.Readiness))
		if err != nil {
			return nil, warnings, fmt.Errorf("ready-when: %w", err)
		}
		bound.readyWhen = res
	}
	for name, v := range in.Custom {
		res, err := bindOne(v, mode, ctx.WithDialect(ctxpkg.Conditional))
		if err != nil {
			return nil, warnings, fmt.Errorf("custom predicate %q: %w", name, err)
		}
		bound.custom[name] = res
	}

	return &Handle{bound: bound}, warnings, nil
}

// bindOne processes a single predicate value under mode.
func bindOne(v interface{}, mode Mode, ctx ctxpkg.Context) (analyzer.Result, error) {
	if mode == AutoProcess {
		return analyzer.Analyze(v, ctx), nil
	}

	s, ok := v.(string)
	if !ok {
		return analyzer.Result{}, fmt.Errorf("passthrough mode requires a string value, got %T", v)
	}
	standalone, err := hoststring.IsStandalone(s)
	if err != nil {
		return analyzer.Result{}, err
	}
	if !standalone {
		return analyzer.Result{}, fmt.Errorf("only standalone expressions are allowed in passthrough mode")
	}
	exprs, err := hoststring.Extract(s)
	if err != nil {
		return analyzer.Result{}, err
	}
	return analyzer.Result{Valid: true, Value: exprs[0].Source, Kind: analyzer.KindNone}, nil
}

// Predicates is the serializable snapshot ExtractPredicates returns.
type Predicates struct {
	IncludeWhen *analyzer.Result
	ReadyWhen   *analyzer.Result
	Custom      map[string]analyzer.Result
}

// ExtractPredicates is the only way to read h's predicate fields back out;
// they are not part of h's normal (JSON or reflective) field enumeration.
func (h *Handle) ExtractPredicates() Predicates {
	out := Predicates{Custom: make(map[string]analyzer.Result, len(h.bound.custom))}
	if h.bound.includeWhen.Valid || h.bound.includeWhen.Value != nil {
		r := h.bound.includeWhen
		out.IncludeWhen = &r
	}
	if h.bound.readyWhen.Valid || h.bound.readyWhen.Value != nil {
		r := h.bound.readyWhen
		out.ReadyWhen = &r
	}
	for k, v := range h.bound.custom {
		out.Custom[k] = v
	}
	return out
}
