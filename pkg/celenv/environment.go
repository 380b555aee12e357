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

// Package celenv builds the CEL environment emitted expressions are parsed
// against (spec §4.4's "validate emitted text"), and inspects already-emitted
// CEL text to recover resource/function dependencies when the source map has
// no entry for it (spec §4.9). This package never evaluates CEL: cel.Env is
// used only for cel.Env.Parse, never cel.Program.Eval.
package celenv

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"github.com/kro-run/celengine/pkg/celenv/library"
)

// EnvOption configures a DefaultEnvironment build.
type EnvOption func(*envOptions)

type envOptions struct {
	resourceIDs        []string
	customDeclarations []cel.EnvOption
}

// WithResourceIDs declares each of the given ids as a CEL variable of type
// any. Nothing else (not even "schema") is declared implicitly.
func WithResourceIDs(ids []string) EnvOption {
	return func(opts *envOptions) {
		opts.resourceIDs = append(opts.resourceIDs, ids...)
	}
}

// WithCustomDeclarations adds raw cel.EnvOption declarations, e.g. extra
// function overloads a caller's dialect needs.
func WithCustomDeclarations(declarations []cel.EnvOption) EnvOption {
	return func(opts *envOptions) {
		opts.customDeclarations = append(opts.customDeclarations, declarations...)
	}
}

// WithRandomStringFunction adds the random.seededString(length, seed) function (spec
// DOMAIN STACK: the generated-name conventions kro resource manifests use).
func WithRandomStringFunction() EnvOption {
	return func(opts *envOptions) {
		opts.customDeclarations = append(opts.customDeclarations, library.Random())
	}
}

// DefaultEnvironment returns the CEL environment emitted expressions are
// parsed (never executed) against.
func DefaultEnvironment(options ...EnvOption) (*cel.Env, error) {
	declarations := []cel.EnvOption{
		ext.Lists(),
		ext.Strings(),
	}

	opts := &envOptions{}
	for _, opt := range options {
		opt(opts)
	}

	declarations = append(declarations, opts.customDeclarations...)

	for _, name := range opts.resourceIDs {
		declarations = append(declarations, cel.Variable(name, cel.AnyType))
	}

	return cel.NewEnv(declarations...)
}

// Parse validates src against env without evaluating it, returning the parse
// issues' combined error if parsing fails. Used by pkg/emit to confirm an
// emitted expression is syntactically valid CEL before handing it back to
// the caller. It does not type-check or resolve names, so a reference to an
// undeclared identifier is accepted.
func Parse(env *cel.Env, src string) error {
	_, iss := env.Parse(src)
	return iss.Err()
}
