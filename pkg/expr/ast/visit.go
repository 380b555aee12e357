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

package ast

// Children returns the immediate child nodes of n, in evaluation order. Leaf
// nodes (Identifier, Literal) return nil. This is the same explicit
// switch-per-kind dispatch style used elsewhere in this module for walking
// a sum-type tree.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Identifier, *Literal, nil:
		return nil
	case *Member:
		return []Node{v.Object}
	case *Index:
		return []Node{v.Object, v.Index}
	case *Call:
		out := make([]Node, 0, len(v.Args)+1)
		out = append(out, v.Callee)
		out = append(out, v.Args...)
		return out
	case *Unary:
		return []Node{v.Operand}
	case *Binary:
		return []Node{v.Left, v.Right}
	case *Logical:
		return []Node{v.Left, v.Right}
	case *Conditional:
		return []Node{v.Cond, v.Then, v.Else}
	case *Nullish:
		return []Node{v.Left, v.Right}
	case *TemplateLiteral:
		return append([]Node(nil), v.Exprs...)
	case *ArrayLiteral:
		return append([]Node(nil), v.Elements...)
	case *ObjectLiteral:
		out := make([]Node, 0, len(v.Properties))
		for _, p := range v.Properties {
			out = append(out, p.Value)
		}
		return out
	default:
		return nil
	}
}

// Walk calls visit for n and, if visit returns true, recursively for every
// child of n (pre-order, left to right).
func Walk(n Node, visit func(Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, visit)
	}
}
