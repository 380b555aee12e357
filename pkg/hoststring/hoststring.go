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

// Package hoststring scans a host-language string for embedded expressions
// delimited by "${" and "}", the same delimiter convention the downstream
// orchestrator's resource manifests use. It distinguishes a standalone
// expression (the entire string is one expression) from one or more
// expressions embedded in a larger literal string.
package hoststring

import (
	"errors"
	"strings"
)

const (
	exprStart = "${"
	exprEnd   = "}"
)

// ErrNestedExpression is returned when a "${" is found before its enclosing
// expression has been closed. Nesting is disallowed: an expression like
// "${{"key": 1}}" is a single expression whose body happens to build a map
// literal, not two nested expressions, and the scanner's bracket counter
// handles that case without raising ErrNestedExpression.
var ErrNestedExpression = errors.New("nested expressions are not allowed")

// Span locates one extracted expression within the original string, in byte
// offsets, including the "${" and "}" delimiters.
type Span struct {
	// Start is the byte offset of the opening "${".
	Start int
	// End is the byte offset just past the closing "}".
	End int
}

// Expression is one embedded expression found by Extract: its source (with
// delimiters stripped) and its location in the original string.
type Expression struct {
	Source string
	Span   Span
}

// Extract returns every non-nested expression embedded in s, in left-to-
// right order. It returns ErrNestedExpression if a "${" appears before the
// currently open expression's matching "}".
func Extract(s string) ([]Expression, error) {
	var out []Expression

	start := 0
	for start < len(s) {
		startIdx := strings.Index(s[start:], exprStart)
		if startIdx == -1 {
			break
		}
		startIdx += start

		bracketCount := 1
		endIdx := startIdx + len(exprStart)
		for endIdx < len(s) {
			switch {
			case s[endIdx] == '{':
				bracketCount++
			case s[endIdx] == '}':
				bracketCount--
				if bracketCount == 0 {
					goto closed
				}
			case endIdx+1 < len(s) && s[endIdx:endIdx+2] == exprStart:
				return nil, ErrNestedExpression
			}
			endIdx++
		}
	closed:
		if bracketCount != 0 {
			// Unterminated: treat "${" as a literal and keep scanning past it.
			start = startIdx + len(exprStart)
			continue
		}

		out = append(out, Expression{
			Source: s[startIdx+len(exprStart) : endIdx],
			Span:   Span{Start: startIdx, End: endIdx + 1},
		})
		start = endIdx + 1
	}
	return out, nil
}

// IsStandalone reports whether s is exactly one complete, non-nested
// expression with no surrounding literal text, e.g. "${schema.spec.name}".
// A string like "prefix-${x}" or "${x}${y}" is not standalone.
func IsStandalone(s string) (bool, error) {
	expressions, err := Extract(s)
	if err != nil {
		return false, err
	}
	return len(expressions) == 1 && s == exprStart+expressions[0].Source+exprEnd, nil
}

// Literals returns the literal text segments surrounding each extracted
// expression, such that interleaving Literals and the extracted expressions'
// original "${...}" forms reconstructs s. len(Literals) == len(expressions)+1.
func Literals(s string, expressions []Expression) []string {
	out := make([]string, 0, len(expressions)+1)
	cursor := 0
	for _, e := range expressions {
		out = append(out, s[cursor:e.Span.Start])
		cursor = e.Span.End
	}
	out = append(out, s[cursor:])
	return out
}
