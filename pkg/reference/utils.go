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

// ContainsAny reports whether v embeds at least one Reference, short-
// circuiting on the first find. This is the fast path AnalyzeShape (pkg
// analyzer) uses to pass expression-free subtrees through unchanged.
func ContainsAny(v interface{}) bool {
	visited := make(map[uintptr]bool)
	return containsAny(v, visited)
}

func containsAny(v interface{}, visited map[uintptr]bool) bool {
	switch val := v.(type) {
	case Reference:
		return true
	case map[string]interface{}:
		if val == nil {
			return false
		}
		id := mapIdentity(val)
		if visited[id] {
			return false
		}
		visited[id] = true
		for _, child := range val {
			if containsAny(child, visited) {
				return true
			}
		}
		return false
	case []interface{}:
		if val == nil {
			return false
		}
		id := sliceIdentity(val)
		if visited[id] {
			return false
		}
		visited[id] = true
		for _, child := range val {
			if containsAny(child, visited) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Is reports whether v is itself a Reference.
func Is(v interface{}) bool {
	_, ok := v.(Reference)
	return ok
}

// Categorized splits a reference list into schema-rooted and resource-rooted
// groups, per spec §4.1's "categorize references" utility.
type Categorized struct {
	Schema    []Reference
	Resources []Reference
}

// Categorize partitions refs by whether they target the schema sentinel or a
// concrete resource.
func Categorize(refs []Reference) Categorized {
	var c Categorized
	for _, r := range refs {
		if r.IsSchemaRooted() {
			c.Schema = append(c.Schema, r)
		} else {
			c.Resources = append(c.Resources, r)
		}
	}
	return c
}
