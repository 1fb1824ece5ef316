/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package component models the nested UI blocks that can be dropped onto the
// board: a tree of typed nodes, the JSON payload that carries it, and the
// rasterizer that turns it into a preview image.
package component

// Kind is the primitive family of a node.
type Kind string

const (
	KindContainer Kind = "container"
	KindContent   Kind = "content"
	KindInput     Kind = "input"
	KindNav       Kind = "nav"
	KindFeedback  Kind = "feedback"
	KindData      Kind = "data"
)

// Kinds lists every valid node kind.
var Kinds = []Kind{KindContainer, KindContent, KindInput, KindNav, KindFeedback, KindData}

// Node is one element of a component tree.
type Node struct {
	ID       string            `json:"id,omitempty"`
	Kind     Kind              `json:"kind"`
	Type     string            `json:"type,omitempty"`
	Label    string            `json:"label,omitempty"`
	Props    map[string]string `json:"props,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// Clone deep-copies the tree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Props != nil {
		c.Props = make(map[string]string, len(n.Props))
		for k, v := range n.Props {
			c.Props[k] = v
		}
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of that node.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, ch := range n.Children {
		ch.walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the tree.
func (n *Node) Count() int {
	c := 0
	n.Walk(func(*Node, int) bool { c++; return true })
	return c
}

// Find returns the node with the given id.
func (n *Node) Find(id string) *Node {
	var hit *Node
	n.Walk(func(x *Node, _ int) bool {
		if hit != nil {
			return false
		}
		if x.ID == id {
			hit = x
			return false
		}
		return true
	})
	return hit
}
