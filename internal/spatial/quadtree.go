/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package spatial indexes object envelopes in a quadtree for picking and
// region queries.
package spatial

import (
	"sort"

	"inkboard/internal/object"
	"inkboard/internal/vector"
)

// Defaults for node capacity and depth.
const (
	DefaultMaxItems = 8
	DefaultMaxDepth = 10
)

type entry struct {
	id  string
	box vector.Rect
}

type node struct {
	bounds vector.Rect
	depth  int
	items  []entry
	kids   *[4]*node
}

// Index is a quadtree over object ids keyed by their rotated envelopes.
// Entries that straddle a split line stay in the parent node.
type Index struct {
	MaxItems int
	MaxDepth int

	root    *node
	version uint64
	built   bool
	size    int
}

// New returns an empty index.
func New() *Index { return &Index{MaxItems: DefaultMaxItems, MaxDepth: DefaultMaxDepth} }

// Len is the number of indexed entries.
func (ix *Index) Len() int { return ix.size }

// Sync rebuilds the index if the store changed since the last build and
// reports whether it did.
func (ix *Index) Sync(st *object.Store) bool {
	if ix.built && ix.version == st.Version() {
		return false
	}
	ix.Build(st.Objects())
	ix.version = st.Version()
	ix.built = true
	return true
}

// Invalidate forces the next Sync to rebuild.
func (ix *Index) Invalidate() { ix.built = false }

// Build indexes objs from scratch.
func (ix *Index) Build(objs []object.Object) {
	if ix.MaxItems <= 0 {
		ix.MaxItems = DefaultMaxItems
	}
	if ix.MaxDepth <= 0 {
		ix.MaxDepth = DefaultMaxDepth
	}
	ix.size = len(objs)
	if len(objs) == 0 {
		ix.root = nil
		return
	}
	entries := make([]entry, len(objs))
	world := object.Envelope(objs[0])
	for i, o := range objs {
		entries[i] = entry{id: o.ID, box: object.Envelope(o)}
		world = world.Union(entries[i].box)
	}
	// square root cell so quadrants stay square
	side := max(world.W, world.H, 1)
	ix.root = &node{bounds: vector.R(world.X-1, world.Y-1, side+2, side+2)}
	for _, e := range entries {
		ix.insert(ix.root, e)
	}
}

func (ix *Index) insert(n *node, e entry) {
	for {
		if n.kids != nil {
			if k := childFor(n, e.box); k != nil {
				n = k
				continue
			}
			n.items = append(n.items, e)
			return
		}
		n.items = append(n.items, e)
		if len(n.items) > ix.MaxItems && n.depth < ix.MaxDepth {
			ix.split(n)
		}
		return
	}
}

func (ix *Index) split(n *node) {
	b := n.bounds
	hw, hh := b.W/2, b.H/2
	n.kids = &[4]*node{
		{bounds: vector.R(b.X, b.Y, hw, hh), depth: n.depth + 1},
		{bounds: vector.R(b.X+hw, b.Y, hw, hh), depth: n.depth + 1},
		{bounds: vector.R(b.X, b.Y+hh, hw, hh), depth: n.depth + 1},
		{bounds: vector.R(b.X+hw, b.Y+hh, hw, hh), depth: n.depth + 1},
	}
	items := n.items
	n.items = nil
	for _, e := range items {
		ix.insert(n, e)
	}
}

func childFor(n *node, box vector.Rect) *node {
	for _, k := range n.kids {
		if k.bounds.ContainsRect(box) {
			return k
		}
	}
	return nil
}

// QueryRect returns ids whose envelopes overlap r.
func (ix *Index) QueryRect(r vector.Rect) []string {
	var out []string
	ix.visit(r, func(e entry) {
		if e.box.Intersects(r) {
			out = append(out, e.id)
		}
	})
	return out
}

// QueryPoint returns ids whose envelopes, grown by margin, contain p.
func (ix *Index) QueryPoint(p vector.Pt, margin float64) []string {
	probe := vector.R(p.X-margin, p.Y-margin, 2*margin, 2*margin)
	var out []string
	ix.visit(probe, func(e entry) {
		if e.box.Inset(-margin, -margin).Contains(p) {
			out = append(out, e.id)
		}
	})
	return out
}

func (ix *Index) visit(r vector.Rect, fn func(entry)) {
	if ix.root == nil {
		return
	}
	stack := []*node{ix.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range n.items {
			fn(e)
		}
		if n.kids == nil {
			continue
		}
		for _, k := range n.kids {
			if k.bounds.Intersects(r) {
				stack = append(stack, k)
			}
		}
	}
}

// HitTest returns the topmost visible, unlocked object whose rotated bounds,
// grown by tolerance, contain p.
func (ix *Index) HitTest(st *object.Store, p vector.Pt, tolerance float64) (string, bool) {
	ix.Sync(st)
	cands := make(map[string]struct{})
	for _, id := range ix.QueryPoint(p, 0) {
		cands[id] = struct{}{}
	}
	for _, id := range ix.QueryRect(vector.R(p.X-tolerance, p.Y-tolerance, 2*tolerance, 2*tolerance)) {
		cands[id] = struct{}{}
	}
	best, bestIdx := "", -1
	objs := st.Objects()
	for id := range cands {
		i := st.IndexOf(id)
		if i <= bestIdx {
			continue
		}
		o := objs[i]
		if o.Locked || !o.Visible {
			continue
		}
		if object.Contains(o, p, tolerance) {
			best, bestIdx = id, i
		}
	}
	return best, bestIdx >= 0
}

// Intersecting returns visible, unlocked objects whose rotated envelopes
// overlap r, in paint order.
func (ix *Index) Intersecting(st *object.Store, r vector.Rect) []string {
	ix.Sync(st)
	r = r.Normalize()
	ids := ix.QueryRect(r)
	out := ids[:0]
	for _, id := range ids {
		i := st.IndexOf(id)
		if i < 0 {
			continue
		}
		if o := st.At(i); o.Visible && !o.Locked {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(a, b int) bool { return st.IndexOf(out[a]) < st.IndexOf(out[b]) })
	return out
}
