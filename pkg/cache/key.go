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

package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key is a stable cache key: equal inputs to BuildKey always produce equal
// Keys, and the store never has to compare the underlying expression text
// itself.
type Key string

// BuildKey computes the cache key for a conversion over
// (expression, dialect, strict_mode, strict_null_checks, expected_type_name)
// (spec §4.8). Two calls with the same five inputs always return the same
// Key regardless of process or machine.
func BuildKey(expression, dialect string, strictMode, strictNullChecks bool, expectedTypeName string) Key {
	h := sha256.New()
	h.Write([]byte(expression))
	h.Write([]byte{0})
	h.Write([]byte(dialect))
	h.Write([]byte{0})
	h.Write([]byte{boolByte(strictMode)})
	h.Write([]byte{boolByte(strictNullChecks)})
	h.Write([]byte{0})
	h.Write([]byte(expectedTypeName))
	return Key(hex.EncodeToString(h.Sum(nil)))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
