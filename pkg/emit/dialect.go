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
	"strings"

	"github.com/kro-run/celengine/pkg/compileerr"
	ctxpkg "github.com/kro-run/celengine/pkg/context"
	"github.com/kro-run/celengine/pkg/reference"
)

// ErrNoReferences is returned by References when called with an empty ref
// list: every dialect rule below is defined in terms of "the" single or
// "the" multiple reference(s), so a caller must not invoke it otherwise.
var ErrNoReferences = fmt.Errorf("emit: no references to emit")

// References lowers a flat reference list to CEL text under the rules for
// ctx.Dialect, following the per-dialect table (status-expression,
// resource-reference, conditional-check, readiness-check,
// template-interpolation, direct-evaluation). This is the path the analyzer
// facade takes for a bare Reference or a reference-only composite leaf; a
// parsed host-language expression goes through Lower instead. Each
// reference is checked against ctx.ValidateReference first, so a
// resource-builder expression pointing at an unavailable resource is
// rejected before any text is produced.
func References(ctx ctxpkg.Context, refs []reference.Reference) (string, error) {
	if len(refs) == 0 {
		return "", ErrNoReferences
	}
	for _, r := range refs {
		if err := ctx.ValidateReference(r); err != nil {
			return "", &compileerr.ConversionError{
				Expression: r.String(),
				Category:   compileerr.CategoryMemberAccess,
				Reason:     err.Error(),
			}
		}
	}
	switch ctx.Dialect {
	case ctxpkg.StatusBuilder, ctxpkg.ResourceBuilder:
		return emitStatusOrResource(refs), nil
	case ctxpkg.Conditional:
		return emitConditional(refs), nil
	case ctxpkg.Readiness:
		return emitReadiness(refs), nil
	case ctxpkg.TemplateLiteral:
		return emitTemplateRefs(refs), nil
	default:
		return emitDirect(refs), nil
	}
}

// emitStatusOrResource implements status-expression and resource-reference:
// a single ref emits as ref(r); multiple refs are string-concatenated.
func emitStatusOrResource(refs []reference.Reference) string {
	if len(refs) == 1 {
		return renderRef(refs[0])
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = renderRef(r)
	}
	return strings.Join(parts, " + ")
}

// emitConditional implements conditional-check: each ref is boolean-coerced
// by its type hint, then joined with &&.
func emitConditional(refs []reference.Reference) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = coerceBoolean(r)
	}
	return strings.Join(parts, " && ")
}

func coerceBoolean(r reference.Reference) string {
	ref := renderRef(r)
	hint := r.TypeHint()
	switch {
	case hint.IsBoolean():
		return ref
	case hint.IsNumber():
		return ref + " > 0"
	case hint.IsString():
		return ref + ` != ""`
	default:
		return "has(" + ref + ")"
	}
}

// emitReadiness implements readiness-check: each ref is lowered by
// field-path heuristic priority, then joined with &&.
func emitReadiness(refs []reference.Reference) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = coerceReadiness(r)
	}
	return strings.Join(parts, " && ")
}

func coerceReadiness(r reference.Reference) string {
	ref := renderRef(r)
	path := r.FieldPath()
	switch {
	case strings.Contains(path, "readyReplicas"):
		return ref + " > 0"
	case strings.HasSuffix(path, "ready"):
		return ref
	// conditions is checked before status so that "status.conditions" gets
	// the find() form rather than the == "Ready" comparison.
	case strings.Contains(path, "conditions"):
		return ref + `.find(c, c.type == "Ready").status == "True"`
	case strings.Contains(path, "status"):
		return ref + ` == "Ready"`
	default:
		return "has(" + ref + `) && ` + ref + ` != ""`
	}
}

// emitTemplateRefs implements the flat-reference shape of
// template-interpolation: each ref coerced to string, joined with +. The
// AST-driven form (literal parts interleaved with expressions) is
// lowerTemplateLiteral in lower.go; this variant covers a template whose only
// content is references with no surrounding literal text.
func emitTemplateRefs(refs []reference.Reference) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = stringCoerce(r)
	}
	return strings.Join(parts, " + ")
}

func stringCoerce(r reference.Reference) string {
	ref := renderRef(r)
	if r.TypeHint().IsString() {
		return ref
	}
	return "string(" + ref + ")"
}

// emitDirect implements direct-evaluation: identity for a single ref, a CEL
// list literal for multiple.
func emitDirect(refs []reference.Reference) string {
	if len(refs) == 1 {
		return renderRef(refs[0])
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = renderRef(r)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
