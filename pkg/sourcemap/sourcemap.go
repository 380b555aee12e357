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

// Package sourcemap records the bidirectional mapping from an original
// host-language expression span to the CEL text the analyzer emitted for it
// (spec §3 "Source map entry", §4.9). A Builder is owned by a single
// analysis call and must not be shared across concurrent calls.
package sourcemap

// Location is a span in the original expression source.
type Location struct {
	Line   int
	Column int
	Length int
}

// Metadata is the freeform per-entry detail the wire shape (spec §7) carries
// alongside the span.
type Metadata struct {
	ExpressionType  string
	KubernetesRefs  []string
	Dependencies    []string
	ConversionNotes []string
}

// Entry is one recorded original-expression-to-CEL mapping.
type Entry struct {
	OriginalExpression string
	CelExpression      string
	SourceLocation     Location
	Context            string
	Metadata           Metadata
}

// Builder accumulates Entry values append-only over one analysis call. The
// zero value is ready to use.
type Builder struct {
	entries []Entry
	byCel   map[string]int
}

// Record appends e to the builder. If e.CelExpression has already been
// recorded, the new entry still appends (spec: "append-only"), but the
// lookup index keeps the most recent entry for that CEL text.
func (b *Builder) Record(e Entry) {
	if b.byCel == nil {
		b.byCel = make(map[string]int)
	}
	b.entries = append(b.entries, e)
	b.byCel[e.CelExpression] = len(b.entries) - 1
}

// Entries returns every recorded entry, in recording order.
func (b *Builder) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Lookup returns the entry recorded for celExpression and true, or the zero
// Entry and false if no entry maps from that exact CEL text (spec testable
// property 8: "looking up the CEL string returns the original expression
// text and its span").
func (b *Builder) Lookup(celExpression string) (Entry, bool) {
	idx, ok := b.byCel[celExpression]
	if !ok {
		return Entry{}, false
	}
	return b.entries[idx], true
}

// Len returns the number of recorded entries.
func (b *Builder) Len() int { return len(b.entries) }
