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

// Package compileerr defines the error taxonomy shared by the parser,
// analyzer and emitter (spec §7). None of these types are ever thrown across
// a package boundary as a panic for input-level problems; they are returned
// values with ordinary Error() methods.
package compileerr

import "fmt"

// Position locates an error inside expression source.
type Position struct {
	Line   int
	Column int
	Offset int
}

// ConversionErrorCategory enumerates why the analyzer could not lower an
// input expression to CEL.
type ConversionErrorCategory string

const (
	CategoryJavaScript        ConversionErrorCategory = "javascript"
	CategoryTemplateLiteral   ConversionErrorCategory = "template-literal"
	CategoryFunctionCall      ConversionErrorCategory = "function-call"
	CategoryMemberAccess      ConversionErrorCategory = "member-access"
	CategoryBinaryOperation   ConversionErrorCategory = "binary-operation"
	CategoryConditional       ConversionErrorCategory = "conditional"
	CategoryOptionalChaining  ConversionErrorCategory = "optional-chaining"
	CategoryNullishCoalescing ConversionErrorCategory = "nullish-coalescing"
	CategoryUnknown           ConversionErrorCategory = "unknown"
)

// ConversionError is returned when the analyzer cannot lower an expression
// to CEL. It carries enough context for a caller (or the runtime error
// mapper) to point a user back at the offending source.
type ConversionError struct {
	Expression string
	Category   ConversionErrorCategory
	Pos        *Position
	Context    map[string]string
	Suggestions []string
	Reason      string
}

func (e *ConversionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot convert expression %q (%s)", e.Expression, e.Category)
	}
	return fmt.Sprintf("cannot convert expression %q (%s): %s", e.Expression, e.Category, e.Reason)
}

// CompileTimeErrorCategory enumerates compile-time compatibility failures.
type CompileTimeErrorCategory string

const (
	TypeIncompatibility        CompileTimeErrorCategory = "TYPE_INCOMPATIBILITY"
	UnsupportedSyntax          CompileTimeErrorCategory = "UNSUPPORTED_SYNTAX"
	GenericConstraintViolation CompileTimeErrorCategory = "GENERIC_CONSTRAINT_VIOLATION"
	CircularTypeReference      CompileTimeErrorCategory = "CIRCULAR_TYPE_REFERENCE"
	MissingTypeInformation     CompileTimeErrorCategory = "MISSING_TYPE_INFORMATION"
)

// CompileTimeError is a fatal compile-time compatibility failure.
type CompileTimeError struct {
	Category CompileTimeErrorCategory
	Message  string
	Pos      *Position
}

func (e *CompileTimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// CompileTimeWarningCategory enumerates non-fatal compile-time warnings.
type CompileTimeWarningCategory string

const (
	PotentialRuntimeError CompileTimeWarningCategory = "POTENTIAL_RUNTIME_ERROR"
	PerformanceImpact     CompileTimeWarningCategory = "PERFORMANCE_IMPACT"
	DeprecatedFeature     CompileTimeWarningCategory = "DEPRECATED_FEATURE"
	TypeAssertionUsed     CompileTimeWarningCategory = "TYPE_ASSERTION_USED"
	ImplicitAny           CompileTimeWarningCategory = "IMPLICIT_ANY"
	LimitedExpressiveness CompileTimeWarningCategory = "LIMITED_EXPRESSIVENESS"
)

// CompileTimeWarning is a non-fatal compile-time observation.
type CompileTimeWarning struct {
	Category CompileTimeWarningCategory
	Message  string
}

func (w CompileTimeWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Category, w.Message)
}
