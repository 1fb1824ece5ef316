/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport maps between screen pixels and world units.
package viewport

import (
	"math"

	"inkboard/internal/vector"
)

// Zoom limits. Every mutator clamps to them.
const (
	MinZoom = 0.05
	MaxZoom = 20.0
)

// WheelFactor is the zoom multiplier per wheel notch.
const WheelFactor = 1.1

// Viewport is the (zoom, pan) pair. Screen = world*zoom + pan.
type Viewport struct {
	Zoom float64 `json:"zoom" yaml:"zoom"`
	PanX float64 `json:"panX" yaml:"pan_x"`
	PanY float64 `json:"panY" yaml:"pan_y"`
}

// New returns the identity viewport.
func New() Viewport { return Viewport{Zoom: 1} }

// Clamp limits z to [MinZoom, MaxZoom]; NaN and non-positive values map to MinZoom.
func Clamp(z float64) float64 {
	if math.IsNaN(z) || z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// ScreenToWorld converts a surface pixel to world coordinates.
func (v Viewport) ScreenToWorld(sx, sy float64) vector.Pt {
	z := Clamp(v.Zoom)
	return vector.Pt{X: (sx - v.PanX) / z, Y: (sy - v.PanY) / z}
}

// WorldToScreen is the inverse of ScreenToWorld.
func (v Viewport) WorldToScreen(p vector.Pt) (sx, sy float64) {
	z := Clamp(v.Zoom)
	return p.X*z + v.PanX, p.Y*z + v.PanY
}

// Matrix is the world-to-screen transform.
func (v Viewport) Matrix() vector.Affine2D {
	z := Clamp(v.Zoom)
	return vector.Translate(v.PanX, v.PanY).Mul(vector.Scale(z, z))
}

// ZoomAt sets the zoom while keeping the world point under cursor fixed.
func (v *Viewport) ZoomAt(cursor vector.Pt, zoom float64) {
	old := Clamp(v.Zoom)
	nz := Clamp(zoom)
	ratio := nz / old
	v.PanX = cursor.X - (cursor.X-v.PanX)*ratio
	v.PanY = cursor.Y - (cursor.Y-v.PanY)*ratio
	v.Zoom = nz
}

// Wheel zooms by WheelFactor per notch around cursor. Negative deltaY
// (wheel up) zooms in.
func (v *Viewport) Wheel(cursor vector.Pt, deltaY float64) {
	if deltaY == 0 {
		return
	}
	notches := -deltaY
	v.ZoomAt(cursor, Clamp(v.Zoom)*math.Pow(WheelFactor, notches))
}

// SetZoom changes the zoom about the screen origin, leaving pan as is.
func (v *Viewport) SetZoom(z float64) { v.Zoom = Clamp(z) }

// SetPan places the world origin at screen x,y.
func (v *Viewport) SetPan(x, y float64) { v.PanX, v.PanY = x, y }

// PanBy shifts the view by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// VisibleWorld is the world rectangle shown on a w×h surface.
func (v Viewport) VisibleWorld(w, h float64) vector.Rect {
	a := v.ScreenToWorld(0, 0)
	b := v.ScreenToWorld(w, h)
	return vector.RectFromPoints(a, b)
}

// Fit sets zoom and pan so r fills a w×h surface with margin pixels around it.
func (v *Viewport) Fit(r vector.Rect, w, h, margin float64) {
	if r.W <= 0 || r.H <= 0 || w <= 2*margin || h <= 2*margin {
		return
	}
	z := Clamp(math.Min((w-2*margin)/r.W, (h-2*margin)/r.H))
	c := r.Center()
	v.Zoom = z
	v.PanX = w/2 - c.X*z
	v.PanY = h/2 - c.Y*z
}
