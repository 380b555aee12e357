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

// Package runtimeerror maps a failing CEL evaluation back to the original
// expression a caller wrote, recovering as much context as the message and
// the source map allow (spec §3 "Runtime error record", §4.9). It never
// fabricates a mapping: when nothing can be recovered, Map returns nil.
package runtimeerror

import "github.com/kro-run/celengine/pkg/compileerr"

// Category classifies why a CEL evaluation failed, recovered by keyword
// scan of the raw error message.
type Category string

const (
	CategoryNullReference Category = "null-reference"
	CategoryFieldNotFound Category = "field-not-found"
	CategoryTypeMismatch  Category = "type-mismatch"
	CategoryEvaluation    Category = "evaluation"
	CategorySyntax        Category = "syntax"
	CategoryUnknown       Category = "unknown"
)

// Record is one mapped runtime failure: the failing CEL text, the raw
// message, its category, and whatever auxiliary context could be recovered
// from the source map, the CEL text itself, and the message.
type Record struct {
	CelExpression string
	Message       string
	Category      Category

	// OriginalExpression and Position come from the source map when the CEL
	// text was found there; Position falls back to a message-derived offset
	// otherwise.
	OriginalExpression string
	Position           *compileerr.Position

	// ResourceID and FieldPath are recovered from a leading
	// "resources.<id>." prefix on the CEL text, whether or not the source map
	// had an entry, or, failing that, from an inspector walk of the parsed CEL.
	ResourceID string
	FieldPath  string

	// ExpectedType and ActualType come from an "expected X, got Y" message
	// pattern; empty when the message doesn't match it.
	ExpectedType string
	ActualType   string

	Suggestions []string
}
