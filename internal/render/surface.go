/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render paints a board scene onto a drawing surface. Painting is
// driven by a frame coalescer; input handling only ever requests frames.
package render

import (
	"image"

	"inkboard/internal/vector"
)

// Surface is the drawing API the renderer needs. Coordinates, line widths
// and dash lengths are in the current user space; implementations account
// for the accumulated transform.
type Surface interface {
	Size() (w, h float64)
	Clear(c vector.Color)

	Push()
	Pop()
	Translate(x, y float64)
	Scale(sx, sy float64)
	// RotateAbout rotates by deg degrees (clockwise on screen) around x,y.
	RotateAbout(deg, x, y float64)

	SetColor(c vector.Color)
	SetLineWidth(w float64)
	SetDash(lengths ...float64)

	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	Rect(x, y, w, h float64)
	RoundedRect(x, y, w, h, r float64)
	Ellipse(cx, cy, rx, ry float64)
	// Arc adds a circular arc between angles a0 and a1 (radians).
	Arc(cx, cy, r, a0, a1 float64)
	Fill()
	Stroke()

	DrawImage(img image.Image, x, y, w, h float64)
	SetFont(family string, size float64)
	// Text draws s with its top-left corner at x,y.
	Text(s string, x, y float64)
}
