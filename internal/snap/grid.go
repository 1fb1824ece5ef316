/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package snap holds the grid lattice, its decorative cursor magnetism and
// the alignment guides used while dragging.
package snap

import (
	"math"

	"inkboard/internal/vector"
)

// Magnet tuning.
const (
	MagnetCells    = 5
	MagnetPull     = 0.3
	MaxDotScale    = 2.2
	BaseDotOpacity = 0.15
	MaxDotOpacity  = 0.55
	DefaultDotsCap = 120
)

// SnapToGrid rounds v to the nearest multiple of g. Non-positive g disables snapping.
func SnapToGrid(v, g float64) float64 {
	if g <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v/g) * g
}

// SnapPoint snaps both coordinates of p.
func SnapPoint(p vector.Pt, g float64) vector.Pt {
	return vector.Pt{X: SnapToGrid(p.X, g), Y: SnapToGrid(p.Y, g)}
}

// GridStep returns the lattice spacing for a view spanning extent world units,
// coarsened in whole multiples of gridSize so at most maxPerAxis dots fit on
// an axis. Coarsened dots stay on the snap lattice.
func GridStep(gridSize, extent float64, maxPerAxis int) float64 {
	if gridSize <= 0 {
		return 0
	}
	if maxPerAxis <= 0 {
		maxPerAxis = DefaultDotsCap
	}
	if extent/gridSize <= float64(maxPerAxis) {
		return gridSize
	}
	return gridSize * math.Ceil(extent/(float64(maxPerAxis)*gridSize))
}

// Dot is one grid mark in world space. Scale multiplies the base radius.
type Dot struct {
	X, Y    float64
	Scale   float64
	Opacity float64
}

// Magnet describes the pointer for the magnetic effect.
type Magnet struct {
	Active  bool
	Pointer vector.Pt
}

// MagnetActive reports whether the magnetic effect may run: only with a
// navigation tool (select or pan) on an empty board.
func MagnetActive(navTool bool, objectCount int) bool {
	return navTool && objectCount == 0
}

// Smoothstep is t²(3−2t) on t clamped to [0,1].
func Smoothstep(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return t * t * (3 - 2*t)
}

// GridDots lays out the dots covering view.
func GridDots(view vector.Rect, gridSize float64, maxPerAxis int, m Magnet) []Dot {
	step := GridStep(gridSize, math.Max(view.W, view.H), maxPerAxis)
	if step <= 0 || view.W <= 0 || view.H <= 0 {
		return nil
	}
	x0 := math.Floor(view.X/step) * step
	y0 := math.Floor(view.Y/step) * step
	nx := int(math.Ceil((view.X+view.W-x0)/step)) + 1
	ny := int(math.Ceil((view.Y+view.H-y0)/step)) + 1
	dots := make([]Dot, 0, nx*ny)
	radius := MagnetCells * step
	for j := 0; j < ny; j++ {
		y := y0 + float64(j)*step
		for i := 0; i < nx; i++ {
			d := Dot{X: x0 + float64(i)*step, Y: y, Scale: 1, Opacity: BaseDotOpacity}
			if m.Active {
				applyMagnet(&d, m.Pointer, radius)
			}
			dots = append(dots, d)
		}
	}
	return dots
}

func applyMagnet(d *Dot, p vector.Pt, radius float64) {
	dist := math.Hypot(p.X-d.X, p.Y-d.Y)
	if dist >= radius {
		return
	}
	t := Smoothstep(1 - dist/radius)
	d.X += (p.X - d.X) * MagnetPull * t
	d.Y += (p.Y - d.Y) * MagnetPull * t
	d.Scale = 1 + (MaxDotScale-1)*t
	d.Opacity = BaseDotOpacity + (MaxDotOpacity-BaseDotOpacity)*t
}
