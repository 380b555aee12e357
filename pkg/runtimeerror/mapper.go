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

package runtimeerror

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kro-run/celengine/pkg/celenv"
	"github.com/kro-run/celengine/pkg/compileerr"
	"github.com/kro-run/celengine/pkg/sourcemap"
)

var (
	resourcePrefixRe = regexp.MustCompile(`^resources\.([A-Za-z_][A-Za-z0-9_]*)\.(.+)$`)
	expectedGotRe    = regexp.MustCompile(`(?i)expected\s+(\S+?),?\s+got\s+(\S+)`)
	atPositionRe     = regexp.MustCompile(`(?i)at position\s+(\d+)`)
)

// categoryKeywords is checked in order; the first match wins, mirroring the
// spec's listed precedence (null/undefined before type/expected before
// field/not-found before syntax/parse before evaluation/runtime).
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryNullReference, []string{"null", "undefined"}},
	{CategoryTypeMismatch, []string{"type", "expected"}},
	{CategoryFieldNotFound, []string{"field", "not found"}},
	{CategorySyntax, []string{"syntax", "parse"}},
	{CategoryEvaluation, []string{"evaluation", "runtime"}},
}

func categorize(message string) Category {
	lower := strings.ToLower(message)
	for _, ck := range categoryKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(lower, kw) {
				return ck.category
			}
		}
	}
	return CategoryUnknown
}

// Map recovers a Record for one failing (celExpression, message) pair.
// sourceMap is the builder produced by the analysis call that emitted
// celExpression; inspector is an optional fallback used to recover
// dependency context when celExpression has no source map entry (e.g. it
// was hand-written rather than converted). Either may be nil.
//
// Map returns nil when no context at all could be recovered beyond the
// category: callers must never receive a fabricated mapping.
func Map(celExpression, message string, sourceMap *sourcemap.Builder, inspector *celenv.Inspector) *Record {
	rec := &Record{
		CelExpression: celExpression,
		Message:       message,
		Category:      categorize(message),
	}

	foundContext := false

	if sourceMap != nil {
		if entry, ok := sourceMap.Lookup(celExpression); ok {
			rec.OriginalExpression = entry.OriginalExpression
			rec.Position = &compileerr.Position{
				Line:   entry.SourceLocation.Line,
				Column: entry.SourceLocation.Column,
			}
			foundContext = true
		}
	}

	if m := resourcePrefixRe.FindStringSubmatch(celExpression); m != nil {
		rec.ResourceID = m[1]
		rec.FieldPath = m[2]
		foundContext = true
	} else if inspector != nil {
		if refs, err := inspector.Inspect(celExpression); err == nil && len(refs) > 0 {
			rec.ResourceID = refs[0].ResourceID()
			rec.FieldPath = refs[0].FieldPath()
			foundContext = true
		}
	}

	if m := expectedGotRe.FindStringSubmatch(message); m != nil {
		rec.ExpectedType = m[1]
		rec.ActualType = m[2]
		foundContext = true
	}

	if m := atPositionRe.FindStringSubmatch(message); m != nil {
		offset, err := strconv.Atoi(m[1])
		if err == nil {
			if rec.Position == nil {
				rec.Position = &compileerr.Position{}
			}
			rec.Position.Offset = offset
			foundContext = true
		}
	}

	if !foundContext {
		return nil
	}

	rec.Suggestions = suggest(rec.Category, rec.FieldPath)
	return rec
}

func suggest(category Category, fieldPath string) []string {
	switch category {
	case CategoryNullReference:
		s := "use optional chaining (?.) or the ?? operator to guard against a missing value"
		if fieldPath != "" {
			s = "guard \"" + fieldPath + "\" with ?. or ?? before accessing it further"
		}
		return []string{s}
	case CategoryFieldNotFound:
		s := "check the resource's schema for the correct field name"
		if fieldPath != "" {
			s = "\"" + fieldPath + "\" was not found; check the resource's schema for the correct field name"
		}
		return []string{s}
	case CategoryTypeMismatch:
		return []string{"the field's actual type does not match what the expression expects; add an explicit conversion or adjust the expression"}
	case CategorySyntax:
		return []string{"re-check the expression's syntax against the supported subset"}
	case CategoryEvaluation:
		return []string{"the expression failed during evaluation; check upstream resource state"}
	default:
		return nil
	}
}
