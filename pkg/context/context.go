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

// Package context assigns one of six emission dialects to an expression
// (spec §4.2) and carries the analysis context the analyzer and emitter
// consult while converting it.
package context

import (
	"github.com/kro-run/celengine/pkg/reference"
	"github.com/kro-run/celengine/pkg/sourcemap"
)

// Dialect is one of the six emission modes. It controls how references and
// AST fragments become CEL (pkg/emit).
type Dialect string

const (
	StatusBuilder   Dialect = "status-builder"
	ResourceBuilder Dialect = "resource-builder"
	Conditional     Dialect = "conditional"
	Readiness       Dialect = "readiness"
	TemplateLiteral Dialect = "template-literal"
	FieldHydration  Dialect = "field-hydration"
	Unknown         Dialect = "unknown"
)

// priorityOrder is the tie-break order when two dialects score equally
// (spec §4.2).
var priorityOrder = []Dialect{
	StatusBuilder, ResourceBuilder, Conditional, Readiness, TemplateLiteral, FieldHydration, Unknown,
}

func priorityIndex(d Dialect) int {
	for i, p := range priorityOrder {
		if p == d {
			return i
		}
	}
	return len(priorityOrder)
}

// SwitchThreshold is the confidence above which a nested subtree's
// auto-detected dialect is allowed to override the enclosing one (spec
// §4.2, §4.6).
const SwitchThreshold = 0.7

// FactoryKind distinguishes the two ways a resource graph can be assembled.
type FactoryKind string

const (
	FactoryDirect FactoryKind = "direct"
	FactoryKro    FactoryKind = "kro"
)

// ResultType names the CEL result type an emission dialect must produce.
type ResultType string

const (
	ResultAny      ResultType = "any"
	ResultBoolean  ResultType = "boolean"
	ResultString   ResultType = "string"
	ResultScalar   ResultType = "scalar"
	ResultComposite ResultType = "composite"
)

// ExpectedResultType returns the CEL result type a dialect must produce
// (spec §4.2 table).
func ExpectedResultType(d Dialect) ResultType {
	switch d {
	case StatusBuilder:
		return ResultAny
	case ResourceBuilder:
		return ResultComposite
	case Conditional, Readiness:
		return ResultBoolean
	case TemplateLiteral:
		return ResultString
	default:
		return ResultAny
	}
}

// Context is the analysis context threaded through the analyzer and emitter
// (spec §3 "Analysis context").
type Context struct {
	Dialect Dialect

	// AvailableRefs maps a resource id to an opaque handle the caller
	// supplies; its presence is what the classifier and analyzer check
	// membership against, not its value. The schema sentinel
	// (reference.SchemaResourceID) is checked against SchemaProxy instead.
	AvailableRefs map[string]interface{}

	// SchemaProxy is an optional handle for the declared input schema; nil
	// when the caller did not supply one.
	SchemaProxy interface{}

	FactoryKind FactoryKind

	// SourceMap accumulates entries as the analyzer/emitter run; nil if the
	// caller does not want one built.
	SourceMap *sourcemap.Builder

	StrictMode       bool
	StrictNullChecks bool

	// ExpectedType is an optional hint for the result's scalar kind, used to
	// disambiguate coercions (e.g. conditional-check on a typed field).
	ExpectedType reference.TypeHint

	// FunctionNameHint is a declared function-name hint from the caller,
	// e.g. "statusBuilder" or a resource builder name (spec §4.2 "Contextual"
	// signal).
	FunctionNameHint string
}

// WithDialect returns a copy of c with its dialect replaced, used by the
// context switcher (pkg/analyzer) when promoting a nested subtree.
func (c Context) WithDialect(d Dialect) Context {
	c.Dialect = d
	return c
}

// RequiresBoolean reports whether c's dialect requires a boolean CEL result.
func (c Context) RequiresBoolean() bool {
	return c.Dialect == Conditional || c.Dialect == Readiness
}

// HasResource reports whether resourceID is among the context's available
// references (or is the schema sentinel and a schema proxy is present).
func (c Context) HasResource(resourceID string) bool {
	if resourceID == reference.SchemaResourceID {
		return c.SchemaProxy != nil
	}
	if c.AvailableRefs == nil {
		return false
	}
	_, ok := c.AvailableRefs[resourceID]
	return ok
}

// ValidateReference checks the §3 invariant that, in resource-builder
// dialect, only schema references or references to co-present resources are
// legal.
func (c Context) ValidateReference(r reference.Reference) error {
	if c.Dialect != ResourceBuilder {
		return nil
	}
	if r.IsSchemaRooted() {
		return nil
	}
	if !c.HasResource(r.ResourceID()) {
		return &UnavailableResourceError{ResourceID: r.ResourceID(), FieldPath: r.FieldPath()}
	}
	return nil
}

// UnavailableResourceError is returned by ValidateReference when a
// resource-builder expression references a resource not declared available
// to it.
type UnavailableResourceError struct {
	ResourceID string
	FieldPath  string
}

func (e *UnavailableResourceError) Error() string {
	return "resource-builder dialect: resource " + e.ResourceID + " (field " + e.FieldPath + ") is not available in this context"
}
