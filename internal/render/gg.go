/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"inkboard/internal/textlayout"
	"inkboard/internal/vector"
)

// GGSurface draws through fogleman/gg. gg strokes in device pixels, so the
// surface tracks the uniform scale of the current transform and applies it
// to widths and dashes itself.
type GGSurface struct {
	dc     *gg.Context
	fonts  *textlayout.FontLibrary
	scale  float64
	stack  []float64
	lw     float64
	dashes []float64
	ascent float64
}

// NewGGSurface creates a w x h RGBA surface.
func NewGGSurface(w, h int, fonts *textlayout.FontLibrary) *GGSurface {
	return wrapContext(gg.NewContext(w, h), fonts)
}

// NewGGSurfaceFor draws into an existing RGBA image.
func NewGGSurfaceFor(im *image.RGBA, fonts *textlayout.FontLibrary) *GGSurface {
	return wrapContext(gg.NewContextForRGBA(im), fonts)
}

func wrapContext(dc *gg.Context, fonts *textlayout.FontLibrary) *GGSurface {
	if fonts == nil {
		fonts = textlayout.Default()
	}
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	return &GGSurface{dc: dc, fonts: fonts, scale: 1, lw: 1}
}

// Image returns the backing image.
func (s *GGSurface) Image() image.Image { return s.dc.Image() }

// Context exposes the gg context for callers that need raw access.
func (s *GGSurface) Context() *gg.Context { return s.dc }

func (s *GGSurface) Size() (float64, float64) {
	return float64(s.dc.Width()), float64(s.dc.Height())
}

func (s *GGSurface) Clear(c vector.Color) {
	s.dc.SetColor(c)
	s.dc.Clear()
}

func (s *GGSurface) Push() {
	s.dc.Push()
	s.stack = append(s.stack, s.scale)
}

func (s *GGSurface) Pop() {
	s.dc.Pop()
	if n := len(s.stack); n > 0 {
		s.scale = s.stack[n-1]
		s.stack = s.stack[:n-1]
	}
	s.applyStroke()
}

func (s *GGSurface) Translate(x, y float64) { s.dc.Translate(x, y) }

func (s *GGSurface) Scale(sx, sy float64) {
	s.dc.Scale(sx, sy)
	s.scale *= math.Sqrt(math.Abs(sx * sy))
	s.applyStroke()
}

func (s *GGSurface) RotateAbout(deg, x, y float64) {
	s.dc.RotateAbout(vector.Radians(deg), x, y)
}

func (s *GGSurface) SetColor(c vector.Color) { s.dc.SetColor(c) }

func (s *GGSurface) SetLineWidth(w float64) {
	s.lw = w
	s.applyStroke()
}

func (s *GGSurface) SetDash(lengths ...float64) {
	s.dashes = append(s.dashes[:0], lengths...)
	s.applyStroke()
}

func (s *GGSurface) applyStroke() {
	s.dc.SetLineWidth(s.lw * s.scale)
	if len(s.dashes) == 0 {
		s.dc.SetDash()
		return
	}
	d := make([]float64, len(s.dashes))
	for i, v := range s.dashes {
		d[i] = v * s.scale
	}
	s.dc.SetDash(d...)
}

func (s *GGSurface) MoveTo(x, y float64) { s.dc.MoveTo(x, y) }
func (s *GGSurface) LineTo(x, y float64) { s.dc.LineTo(x, y) }
func (s *GGSurface) ClosePath()          { s.dc.ClosePath() }

func (s *GGSurface) Rect(x, y, w, h float64) { s.dc.DrawRectangle(x, y, w, h) }

func (s *GGSurface) RoundedRect(x, y, w, h, r float64) {
	if r <= 0 {
		s.dc.DrawRectangle(x, y, w, h)
		return
	}
	s.dc.DrawRoundedRectangle(x, y, w, h, r)
}

func (s *GGSurface) Ellipse(cx, cy, rx, ry float64) { s.dc.DrawEllipse(cx, cy, rx, ry) }

func (s *GGSurface) Arc(cx, cy, r, a0, a1 float64) {
	s.dc.NewSubPath()
	s.dc.DrawArc(cx, cy, r, a0, a1)
}

func (s *GGSurface) Fill()   { s.dc.Fill() }
func (s *GGSurface) Stroke() { s.dc.Stroke() }

func (s *GGSurface) DrawImage(img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	s.dc.Push()
	s.dc.Translate(x, y)
	s.dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	s.dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	s.dc.Pop()
}

// SetFont selects a face at size user units; gg scales glyphs with the
// current transform.
func (s *GGSurface) SetFont(family string, size float64) {
	face := s.fonts.NewFace(family, size)
	s.dc.SetFontFace(face)
	s.ascent = float64(face.Metrics().Ascent) / 64
}

func (s *GGSurface) Text(str string, x, y float64) {
	s.dc.DrawString(str, x, y+s.ascent)
}
