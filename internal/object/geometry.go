/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package object

import (
	"math"

	"inkboard/internal/textlayout"
	"inkboard/internal/vector"
)

// MinDim is the smallest width or height resize math works with.
const MinDim = 10

// Bounds returns the unrotated world-space box of o. It depends only on o's
// fields and is shared by hit-testing, indexing, selection chrome and resizing.
func Bounds(o Object) vector.Rect {
	switch o.Kind {
	case KindStroke:
		return strokeBounds(o.Points)
	case KindRectangle, KindComponent:
		return vector.R(o.X, o.Y, o.Width, o.Height).Normalize()
	case KindEllipse:
		rx, ry := math.Abs(o.RadiusX), math.Abs(o.RadiusY)
		return vector.R(o.X-rx, o.Y-ry, 2*rx, 2*ry)
	case KindLine:
		return vector.RectFromPoints(vector.Pt{X: o.X, Y: o.Y}, vector.Pt{X: o.X2, Y: o.Y2})
	case KindImage:
		w, h := math.Abs(o.Width), math.Abs(o.Height)
		return vector.R(o.X-w/2, o.Y-h/2, w, h)
	case KindText:
		b := textlayout.Measure(o.Text, o.FontFamily, o.FontSize, o.Width)
		return vector.R(o.X, o.Y, b.Width, b.Height)
	}
	return vector.R(o.X, o.Y, 0, 0)
}

func strokeBounds(pts []StrokePoint) vector.Rect {
	if len(pts) == 0 {
		return vector.Rect{}
	}
	minX, minY, maxX, maxY := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return vector.R(minX, minY, maxX-minX, maxY-minY)
}

func syncStrokeOrigin(o *Object) {
	if o.Kind != KindStroke || len(o.Points) == 0 {
		return
	}
	b := strokeBounds(o.Points)
	o.X, o.Y = b.X, b.Y
}

// Envelope is the axis-aligned box around the rotated bounds.
func Envelope(o Object) vector.Rect {
	return vector.RotatedEnvelope(Bounds(o), o.Rotation)
}

// Pivot is the rotation center of o.
func Pivot(o Object) vector.Pt { return Bounds(o).Center() }

// ToLocal un-rotates a world point into o's unrotated frame.
func ToLocal(o Object, p vector.Pt) vector.Pt {
	if o.Rotation == 0 {
		return p
	}
	return vector.RotateAround(p, Pivot(o), -o.Rotation)
}

// ToWorld rotates a point of o's unrotated frame into world space.
func ToWorld(o Object, p vector.Pt) vector.Pt {
	if o.Rotation == 0 {
		return p
	}
	return vector.RotateAround(p, Pivot(o), o.Rotation)
}

// Contains reports whether world point p falls inside o's rotated bounds grown
// by tolerance on every side.
func Contains(o Object, p vector.Pt, tolerance float64) bool {
	return Bounds(o).Inset(-tolerance, -tolerance).Contains(ToLocal(o, p))
}

// Translate moves every positional field of o by dx,dy.
func Translate(o *Object, dx, dy float64) {
	o.X += dx
	o.Y += dy
	switch o.Kind {
	case KindStroke:
		for i := range o.Points {
			o.Points[i].X += dx
			o.Points[i].Y += dy
		}
	case KindLine:
		o.X2 += dx
		o.Y2 += dy
	}
}

// ClampDims grows r to at least MinDim on each axis, keeping its min corner.
func ClampDims(r vector.Rect) vector.Rect {
	r = r.Normalize()
	r.W = math.Max(r.W, MinDim)
	r.H = math.Max(r.H, MinDim)
	return r
}

// ResizeTo remaps o from its current bounds onto to. Both boxes are clamped
// to MinDim first so proportional remaps never divide by zero.
func ResizeTo(o *Object, to vector.Rect) {
	from := ClampDims(Bounds(*o))
	to = ClampDims(to)
	sx, sy := to.W/from.W, to.H/from.H
	remap := func(x, y float64) (float64, float64) {
		return to.X + (x-from.X)*sx, to.Y + (y-from.Y)*sy
	}

	switch o.Kind {
	case KindStroke:
		for i := range o.Points {
			o.Points[i].X, o.Points[i].Y = remap(o.Points[i].X, o.Points[i].Y)
		}
		syncStrokeOrigin(o)
	case KindLine:
		o.X, o.Y = remap(o.X, o.Y)
		o.X2, o.Y2 = remap(o.X2, o.Y2)
	case KindRectangle, KindComponent:
		o.X, o.Y, o.Width, o.Height = to.X, to.Y, to.W, to.H
	case KindText:
		o.X, o.Y, o.Width = to.X, to.Y, to.W
	case KindEllipse:
		c := to.Center()
		o.X, o.Y, o.RadiusX, o.RadiusY = c.X, c.Y, to.W/2, to.H/2
	case KindImage:
		c := to.Center()
		o.X, o.Y, o.Width, o.Height = c.X, c.Y, to.W, to.H
	}
}
