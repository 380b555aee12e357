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

package reference

import "reflect"

// mapIdentity and sliceIdentity return the backing-array/bucket pointer of a
// map or slice, used as the by-identity visited-set key in Detect. Two
// different Go values that happen to share the same underlying map or
// backing array compare equal here, which is exactly the aliasing the
// visited set is meant to catch.
func mapIdentity(m map[string]interface{}) uintptr {
	return reflect.ValueOf(m).Pointer()
}

func sliceIdentity(s []interface{}) uintptr {
	return reflect.ValueOf(s).Pointer()
}
