/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"math"
	"math/rand"
	"testing"

	"inkboard/internal/vector"
)

func TestSnapToGridIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 5000; i++ {
		v := (rng.Float64() - 0.5) * 1e5
		g := 0.1 + rng.Float64()*100
		once := SnapToGrid(v, g)
		if twice := SnapToGrid(once, g); twice != once {
			t.Fatalf("snap(snap(%v,%v)) = %v, snap = %v", v, g, twice, once)
		}
	}
	if SnapToGrid(13, 0) != 13 {
		t.Fatalf("zero grid should not snap")
	}
	if SnapToGrid(29, 20) != 20 || SnapToGrid(31, 20) != 40 || SnapToGrid(-29, 20) != -20 {
		t.Fatalf("nearest multiple wrong")
	}
}

func TestGridStepBoundsDotCount(t *testing.T) {
	if s := GridStep(20, 1000, 100); s != 20 {
		t.Fatalf("step at normal zoom = %v", s)
	}
	for _, extent := range []float64{5e3, 1e5, 3.3e6} {
		s := GridStep(20, extent, 100)
		if extent/s > 100 {
			t.Fatalf("extent %v: %v dots per axis", extent, extent/s)
		}
		if math.Mod(s, 20) != 0 {
			t.Fatalf("step %v is not a multiple of the grid size", s)
		}
	}
}

func TestGridDotsCapped(t *testing.T) {
	view := vector.R(-20000, -15000, 40000, 30000)
	dots := GridDots(view, 20, 100, Magnet{})
	if len(dots) > 102*102 {
		t.Fatalf("%d dots for a zoomed-out view", len(dots))
	}
	if len(dots) == 0 {
		t.Fatalf("no dots")
	}
	for _, d := range dots {
		if d.Scale != 1 || d.Opacity != BaseDotOpacity {
			t.Fatalf("magnet disabled but dot altered: %+v", d)
		}
	}
}

func TestMagnetEffect(t *testing.T) {
	view := vector.R(0, 0, 400, 400)
	p := vector.Pt{X: 200, Y: 200}
	dots := GridDots(view, 20, 100, Magnet{Active: true, Pointer: p})
	var near, far *Dot
	for i := range dots {
		d := &dots[i]
		if d.X == 200 && d.Y == 200 {
			near = d
		}
		if d.X == 0 && d.Y == 0 {
			far = d
		}
	}
	if near == nil || far == nil {
		t.Fatalf("expected dots at pointer and origin")
	}
	if math.Abs(near.Scale-MaxDotScale) > 1e-9 || math.Abs(near.Opacity-MaxDotOpacity) > 1e-9 {
		t.Fatalf("dot under pointer: %+v", near)
	}
	if far.Scale != 1 || far.Opacity != BaseDotOpacity {
		t.Fatalf("dot outside radius changed: %+v", far)
	}
	for _, d := range dots {
		if d.Scale < 1 || d.Scale > MaxDotScale+1e-9 || d.Opacity < BaseDotOpacity || d.Opacity > MaxDotOpacity+1e-12 {
			t.Fatalf("dot out of range: %+v", d)
		}
	}
}

func TestMagnetActive(t *testing.T) {
	if !MagnetActive(true, 0) {
		t.Fatalf("empty board with nav tool should be magnetic")
	}
	if MagnetActive(true, 1) || MagnetActive(false, 0) {
		t.Fatalf("magnet must be suppressed with objects or drawing tools")
	}
}

func TestSmoothstep(t *testing.T) {
	if Smoothstep(0) != 0 || Smoothstep(1) != 1 || Smoothstep(0.5) != 0.5 || Smoothstep(2) != 1 {
		t.Fatalf("smoothstep endpoints")
	}
}

func TestGuidesAlignOrFallBackToGrid(t *testing.T) {
	others := []vector.Rect{vector.R(100, 0, 50, 50)}
	// left edge 2 units from the anchor's left edge; y far from anything
	res := Guides(vector.R(98, 233, 20, 20), others, GuideOptions{Tolerance: 5, GridSize: 20, SnapToGrid: true})
	if res.DX != 2 {
		t.Fatalf("DX = %v, want 2 (edge alignment)", res.DX)
	}
	if res.DY != 7 {
		t.Fatalf("DY = %v, want 7 (grid fallback to 240)", res.DY)
	}
	if len(res.Lines) != 1 || res.Lines[0].Orientation != vector.Vertical {
		t.Fatalf("lines = %+v", res.Lines)
	}

	res = Guides(vector.R(98, 233, 20, 20), others, GuideOptions{Tolerance: 5})
	if res.DY != 0 {
		t.Fatalf("grid fallback applied while snapping disabled")
	}
}
