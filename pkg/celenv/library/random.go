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

// Package library provides custom CEL function libraries for names that
// generated resource manifests commonly need (spec DOMAIN STACK).
package library

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

const alphanumericChars = "0123456789abcdefghijklmnopqrstuvwxyz"

// Random returns a CEL library declaring random.seededString(length, seed):
// a deterministic, seed-derived alphanumeric string. Outside this package's
// tests the module never calls cel.Program.Eval, so the binding does not run
// there; pkg/celenv.Parse only parses, so the declaration is not consulted
// by it either.
//
// Example emitted text: random.seededString(10, schema.metadata.uid)
func Random() cel.EnvOption {
	return cel.Lib(&randomLibrary{})
}

type randomLibrary struct{}

func (l *randomLibrary) LibraryName() string { return "random" }

func (l *randomLibrary) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("random.seededString",
			cel.Overload("random.seededString_int_string",
				[]*cel.Type{cel.IntType, cel.StringType},
				cel.StringType,
				cel.BinaryBinding(generateDeterministicString),
			),
		),
	}
}

func (l *randomLibrary) ProgramOptions() []cel.ProgramOption { return nil }

// generateDeterministicString derives each output character from its own
// hash of seed+position, rather than slicing a single shared digest: one
// sha256 call per character keeps every position independent of how many
// characters precede it, at the cost of more hashing than a chunked
// approach would need.
func generateDeterministicString(length ref.Val, seed ref.Val) ref.Val {
	lengthInt, ok := length.(types.Int)
	if !ok {
		return types.NewErr("random.seededString length must be an integer")
	}
	if lengthInt <= 0 {
		return types.NewErr("random.seededString length must be positive")
	}
	seedStr, ok := seed.(types.String)
	if !ok {
		return types.NewErr("random.seededString seed must be a string")
	}

	n := int(lengthInt.Value().(int64))
	base := seedStr.Value().(string)
	charsLen := len(alphanumericChars)

	result := make([]byte, n)
	for i := 0; i < n; i++ {
		digest := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", base, i)))
		idx := binary.BigEndian.Uint32(digest[:4]) % uint32(charsLen)
		result[i] = alphanumericChars[idx]
	}
	return types.String(string(result))
}
