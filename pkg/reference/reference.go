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

// Package reference defines the lazy field handle ("magic proxy" target)
// that the analyzer detects and converts into CEL, and the detector that
// finds these handles inside arbitrary host values.
package reference

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/kube-openapi/pkg/validation/spec"
)

// SchemaResourceID is the sentinel resource id denoting the graph's declared
// input schema, as opposed to a concrete resource in the graph.
const SchemaResourceID = "__schema__"

// ErrInvalidReference is returned when a Reference fails its value invariants.
var ErrInvalidReference = errors.New("invalid reference")

// brand is an unexported marker type. Its zero value is the only value that
// exists, so a Reference or CelExpression can only be constructed through
// this package's constructors -- the brand can never be faked by shape
// (a plain string or struct literal from another package will never satisfy
// it), matching the "branded opaque values" design note.
type brand struct{}

// TypeHint carries an optional type annotation for a Reference. It is
// metadata only: it never changes identity or equality.
type TypeHint struct {
	// Name is the declared scalar kind, e.g. "string", "number", "boolean".
	// Empty means unknown/any.
	Name string
	// Schema is the expected OpenAPI schema for composite fields.
	Schema *spec.Schema
}

// IsBoolean reports whether the hint names the boolean scalar kind.
func (t TypeHint) IsBoolean() bool { return t.Name == "boolean" || t.Name == "bool" }

// IsNumber reports whether the hint names the number/integer scalar kind.
func (t TypeHint) IsNumber() bool {
	return t.Name == "number" || t.Name == "integer" || t.Name == "int"
}

// IsString reports whether the hint names the string scalar kind.
func (t TypeHint) IsString() bool { return t.Name == "string" }

// Reference is an opaque, tagged handle standing in for a field whose value
// is known only once the downstream orchestrator evaluates CEL against a
// live resource graph. Reference is a value type: free to copy, compare and
// share, and never mutated after construction.
type Reference struct {
	_ brand

	resourceID string
	fieldPath  string
	typeHint   TypeHint
}

// New constructs a Reference, validating the (resourceID, fieldPath)
// invariants from spec §3: both non-empty, no leading/trailing dot, no
// consecutive dots in fieldPath.
func New(resourceID, fieldPath string, hint TypeHint) (Reference, error) {
	if resourceID == "" {
		return Reference{}, fmt.Errorf("%w: resource id is empty", ErrInvalidReference)
	}
	if fieldPath == "" {
		return Reference{}, fmt.Errorf("%w: field path is empty", ErrInvalidReference)
	}
	if strings.HasPrefix(fieldPath, ".") || strings.HasSuffix(fieldPath, ".") {
		return Reference{}, fmt.Errorf("%w: field path %q has a leading or trailing dot", ErrInvalidReference, fieldPath)
	}
	if strings.Contains(fieldPath, "..") {
		return Reference{}, fmt.Errorf("%w: field path %q has consecutive dots", ErrInvalidReference, fieldPath)
	}
	return Reference{resourceID: resourceID, fieldPath: fieldPath, typeHint: hint}, nil
}

// MustNew is New, panicking on invariant violations. Intended for tests and
// call sites that build References from already-validated paths.
func MustNew(resourceID, fieldPath string, hint TypeHint) Reference {
	r, err := New(resourceID, fieldPath, hint)
	if err != nil {
		panic(err)
	}
	return r
}

// ResourceID returns the referenced resource id, or SchemaResourceID.
func (r Reference) ResourceID() string { return r.resourceID }

// FieldPath returns the dotted (plus bracket-indexed) field path.
func (r Reference) FieldPath() string { return r.fieldPath }

// TypeHint returns the optional type annotation.
func (r Reference) TypeHint() TypeHint { return r.typeHint }

// IsSchemaRooted reports whether this reference targets the declared input
// schema rather than a concrete resource.
func (r Reference) IsSchemaRooted() bool { return r.resourceID == SchemaResourceID }

// Key returns the (resourceID, fieldPath) identity pair as a single string,
// suitable for use as a map key or in a visited/dedup set.
func (r Reference) Key() string { return r.resourceID + "#" + r.fieldPath }

// String renders the reference using the host-language dotted form, e.g.
// "deployment.status.readyReplicas" or "schema.spec.name".
func (r Reference) String() string {
	if r.IsSchemaRooted() {
		return "schema." + r.fieldPath
	}
	return r.resourceID + "." + r.fieldPath
}

// IsZero reports whether r is the zero Reference (never produced by New).
func (r Reference) IsZero() bool { return r.resourceID == "" && r.fieldPath == "" }

// CelExpression is a CEL source string, distinguished from a plain string by
// the same brand mechanism as Reference so the two are never conflated by
// shape.
type CelExpression struct {
	_ brand

	source   string
	typeHint TypeHint
}

// ErrEmptyCelExpression is returned when constructing a CelExpression with an
// empty source string.
var ErrEmptyCelExpression = errors.New("cel expression source is empty")

// NewCelExpression constructs a CelExpression, validating that source is
// non-empty.
func NewCelExpression(source string, hint TypeHint) (CelExpression, error) {
	if source == "" {
		return CelExpression{}, ErrEmptyCelExpression
	}
	return CelExpression{source: source, typeHint: hint}, nil
}

// Source returns the CEL source text.
func (c CelExpression) Source() string { return c.source }

// TypeHint returns the optional type annotation.
func (c CelExpression) TypeHint() TypeHint { return c.typeHint }

// IsZero reports whether c is the zero CelExpression (never produced by
// NewCelExpression).
func (c CelExpression) IsZero() bool { return c.source == "" }
