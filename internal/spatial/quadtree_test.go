/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package spatial

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"inkboard/internal/object"
	"inkboard/internal/vector"
)

var style = object.Style{Stroke: "#000", StrokeWidth: 1}

func storeWith(t *testing.T, objs ...object.Object) *object.Store {
	t.Helper()
	st := object.NewStore()
	for _, o := range objs {
		if err := st.Add(o); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return st
}

func TestHitTestRectangle(t *testing.T) {
	r := object.NewRectangle(10, 10, 50, 50, style)
	st := storeWith(t, r)
	ix := New()
	if id, ok := ix.HitTest(st, vector.Pt{X: 30, Y: 30}, 6); !ok || id != r.ID {
		t.Fatalf("inside point: %q %v", id, ok)
	}
	if _, ok := ix.HitTest(st, vector.Pt{X: 200, Y: 200}, 6); ok {
		t.Fatalf("far point hit")
	}
	if id, ok := ix.HitTest(st, vector.Pt{X: 9, Y: 30}, 6); !ok || id != r.ID {
		t.Fatalf("point in tolerance margin missed")
	}
	if _, ok := ix.HitTest(st, vector.Pt{X: 3, Y: 30}, 6); ok {
		t.Fatalf("point beyond tolerance hit")
	}
}

func TestHitTestRotatedSquare(t *testing.T) {
	sq := object.NewRectangle(0, 0, 100, 100, style)
	sq.Rotation = 45
	st := storeWith(t, sq)
	ix := New()
	c := vector.Pt{X: 50, Y: 50}
	reach := 50*math.Sqrt2 - 2
	for _, dir := range []vector.Pt{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}} {
		p := c.Add(dir.Scale(reach))
		if _, ok := ix.HitTest(st, p, 0); !ok {
			t.Fatalf("rotated corner %+v missed", p)
		}
	}
	for _, p := range []vector.Pt{{X: 1, Y: 1}, {X: 99, Y: 1}, {X: 99, Y: 99}, {X: 1, Y: 99}} {
		if _, ok := ix.HitTest(st, p, 0); ok {
			t.Fatalf("unrotated corner %+v hit", p)
		}
	}
}

func TestHitTestTopmostAndFilters(t *testing.T) {
	bottom := object.NewRectangle(0, 0, 100, 100, style)
	top := object.NewRectangle(20, 20, 100, 100, style)
	locked := object.NewRectangle(40, 40, 100, 100, style)
	locked.Locked = true
	hidden := object.NewRectangle(40, 40, 100, 100, style)
	hidden.Visible = false
	st := storeWith(t, bottom, top, locked, hidden)
	ix := New()
	if id, _ := ix.HitTest(st, vector.Pt{X: 50, Y: 50}, 6); id != top.ID {
		t.Fatalf("expected topmost pickable object, got %q", id)
	}
	if id, _ := ix.HitTest(st, vector.Pt{X: 10, Y: 10}, 6); id != bottom.ID {
		t.Fatalf("expected bottom object, got %q", id)
	}
}

func TestSyncRebuildsOnlyOnChange(t *testing.T) {
	st := storeWith(t, object.NewRectangle(0, 0, 10, 10, style))
	ix := New()
	if !ix.Sync(st) {
		t.Fatalf("first sync should build")
	}
	if ix.Sync(st) {
		t.Fatalf("unchanged store rebuilt")
	}
	r := object.NewRectangle(500, 500, 10, 10, style)
	if err := st.Add(r); err != nil {
		t.Fatal(err)
	}
	if !ix.Sync(st) || ix.Len() != 2 {
		t.Fatalf("change not picked up")
	}
	if id, ok := ix.HitTest(st, vector.Pt{X: 505, Y: 505}, 0); !ok || id != r.ID {
		t.Fatalf("new object not hittable")
	}
}

func TestQueriesMatchBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var objs []object.Object
	for i := 0; i < 400; i++ {
		o := object.NewRectangle(rng.Float64()*2000-1000, rng.Float64()*2000-1000, 5+rng.Float64()*80, 5+rng.Float64()*80, style)
		o.Rotation = float64(rng.Intn(4)) * 30
		objs = append(objs, o)
	}
	st := storeWith(t, objs...)
	ix := New()
	ix.Sync(st)

	for q := 0; q < 50; q++ {
		r := vector.R(rng.Float64()*2000-1000, rng.Float64()*2000-1000, rng.Float64()*300, rng.Float64()*300)
		got := ix.QueryRect(r)
		var want []string
		for _, o := range objs {
			if object.Envelope(o).Intersects(r) {
				want = append(want, o.ID)
			}
		}
		sort.Strings(got)
		sort.Strings(want)
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("query %d: got %d ids, want %d", q, len(got), len(want))
		}
		p := vector.Pt{X: r.X, Y: r.Y}
		gotP := ix.QueryPoint(p, 3)
		var wantP []string
		for _, o := range objs {
			if object.Envelope(o).Inset(-3, -3).Contains(p) {
				wantP = append(wantP, o.ID)
			}
		}
		sort.Strings(gotP)
		sort.Strings(wantP)
		if fmt.Sprint(gotP) != fmt.Sprint(wantP) {
			t.Fatalf("point query %d mismatch", q)
		}
	}
}

func TestIntersectingPaintOrder(t *testing.T) {
	a := object.NewRectangle(0, 0, 10, 10, style)
	b := object.NewRectangle(5, 5, 10, 10, style)
	c := object.NewRectangle(100, 100, 10, 10, style)
	d := object.NewRectangle(2, 2, 3, 3, style)
	d.Locked = true
	st := storeWith(t, a, b, c, d)
	got := New().Intersecting(st, vector.R(20, 20, -20, -20))
	if fmt.Sprint(got) != fmt.Sprint([]string{a.ID, b.ID}) {
		t.Fatalf("Intersecting = %v", got)
	}
}

func TestEmptyIndex(t *testing.T) {
	st := object.NewStore()
	ix := New()
	if _, ok := ix.HitTest(st, vector.Pt{}, 6); ok {
		t.Fatalf("hit on empty store")
	}
	if len(ix.QueryRect(vector.R(-1e6, -1e6, 2e6, 2e6))) != 0 {
		t.Fatalf("results from empty index")
	}
}
