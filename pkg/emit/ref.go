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

import "github.com/kro-run/celengine/pkg/reference"

// renderRef is the ref(r) helper from the emitter rules: "schema.<path>" for
// a schema-rooted reference, "resources.<id>.<path>" otherwise.
func renderRef(r reference.Reference) string {
	if r.IsSchemaRooted() {
		return "schema." + r.FieldPath()
	}
	return "resources." + r.ResourceID() + "." + r.FieldPath()
}
