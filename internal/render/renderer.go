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

	"inkboard/internal/object"
	"inkboard/internal/snap"
	"inkboard/internal/textlayout"
	"inkboard/internal/vector"
	"inkboard/internal/viewport"
)

// Handle geometry in screen pixels. Interaction hit zones use the same
// numbers so that what is drawn is what can be grabbed.
const (
	HandleSize    = 8
	ResizeZone    = 10
	RotateZone    = 28
	SelectionPad  = 4
	dotRadius     = 1.2
	strokeSpacing = 2
)

// ImageSource resolves asset refs to decoded pixels. A miss paints a
// placeholder for this frame.
type ImageSource interface {
	Image(ref string) (image.Image, bool)
}

// Grid describes the dot lattice.
type Grid struct {
	Show   bool
	Size   float64
	Cap    int
	Magnet snap.Magnet
}

// Scene is everything one frame needs. It is assembled by the engine and
// treated as read-only here.
type Scene struct {
	View       viewport.Viewport
	Background vector.Color
	Grid       Grid
	Objects    []object.Object
	// Editing is the id of a text object hidden under the edit overlay.
	Editing   string
	Preview   *object.Object
	Guides    []vector.GuideLine
	Marquee   *vector.Rect
	Selection []string
}

// Theme holds chrome colors.
type Theme struct {
	Dot         vector.Color
	Selection   vector.Color
	HandleFill  vector.Color
	Rotate      vector.Color
	Guide       vector.Color
	Marquee     vector.Color
	MarqueeFill vector.Color
	Placeholder vector.Color
	Text        vector.Color
}

func DefaultTheme() Theme {
	return Theme{
		Dot:         vector.Color{R: 120, G: 120, B: 130, A: 255},
		Selection:   vector.Color{R: 30, G: 136, B: 229, A: 255},
		HandleFill:  vector.White,
		Rotate:      vector.Color{R: 30, G: 136, B: 229, A: 70},
		Guide:       vector.Color{R: 236, G: 64, B: 122, A: 255},
		Marquee:     vector.Color{R: 30, G: 136, B: 229, A: 200},
		MarqueeFill: vector.Color{R: 30, G: 136, B: 229, A: 30},
		Placeholder: vector.Color{R: 224, G: 224, B: 224, A: 255},
		Text:        vector.Color{R: 30, G: 30, B: 30, A: 255},
	}
}

// Stats describes the last frame.
type Stats struct {
	Dots    int
	Drawn   int
	Culled  int
	Pending int
}

// Renderer paints scenes.
type Renderer struct {
	Images ImageSource
	Fonts  *textlayout.FontLibrary
	Theme  Theme
}

func New(images ImageSource) *Renderer {
	return &Renderer{Images: images, Fonts: textlayout.Default(), Theme: DefaultTheme()}
}

// Frame paints sc: clear, viewport transform, grid, objects in paint order,
// live preview, guides, marquee and selection chrome.
func (r *Renderer) Frame(s Surface, sc Scene) Stats {
	var st Stats
	w, h := s.Size()
	zoom := sc.View.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	s.Clear(sc.Background)
	s.Push()
	defer s.Pop()
	s.Translate(sc.View.PanX, sc.View.PanY)
	s.Scale(zoom, zoom)

	view := sc.View.VisibleWorld(w, h)
	if sc.Grid.Show && sc.Grid.Size > 0 {
		st.Dots = r.drawGrid(s, sc.Grid, view, zoom)
	}

	for i := range sc.Objects {
		o := &sc.Objects[i]
		if !o.Visible || o.ID == sc.Editing {
			continue
		}
		if !object.Envelope(*o).Inset(-o.LineWidth-o.StrokeWidth, -o.LineWidth-o.StrokeWidth).Intersects(view) {
			st.Culled++
			continue
		}
		if !r.drawObject(s, *o, zoom) {
			st.Pending++
		}
		st.Drawn++
	}
	if sc.Preview != nil {
		r.drawObject(s, *sc.Preview, zoom)
	}
	r.drawGuides(s, sc.Guides, zoom)
	if sc.Marquee != nil {
		r.drawMarquee(s, *sc.Marquee, zoom)
	}
	if len(sc.Selection) > 0 {
		idx := make(map[string]int, len(sc.Objects))
		for i := range sc.Objects {
			idx[sc.Objects[i].ID] = i
		}
		for _, id := range sc.Selection {
			if i, ok := idx[id]; ok {
				r.drawSelection(s, sc.Objects[i], zoom)
			}
		}
	}
	return st
}

func (r *Renderer) drawGrid(s Surface, g Grid, view vector.Rect, zoom float64) int {
	dots := snap.GridDots(view, g.Size, g.Cap, g.Magnet)
	rad := dotRadius / zoom
	for _, d := range dots {
		s.SetColor(r.Theme.Dot.WithAlpha(d.Opacity))
		s.Ellipse(d.X, d.Y, rad*d.Scale, rad*d.Scale)
		s.Fill()
	}
	return len(dots)
}

// drawObject paints one object and reports false when it painted a
// placeholder because pixel data is still loading.
func (r *Renderer) drawObject(s Surface, o object.Object, zoom float64) bool {
	ready := true
	op := o.Opacity
	s.Push()
	defer s.Pop()
	if o.Rotation != 0 {
		c := object.Pivot(o)
		s.RotateAbout(o.Rotation, c.X, c.Y)
	}
	switch o.Kind {
	case object.KindStroke:
		r.drawStroke(s, o, zoom)
	case object.KindRectangle:
		b := object.Bounds(o)
		r.fillAndStroke(s, o, op, func() { s.RoundedRect(b.X, b.Y, b.W, b.H, o.CornerRadius) })
	case object.KindEllipse:
		rx, ry := math.Abs(o.RadiusX), math.Abs(o.RadiusY)
		r.fillAndStroke(s, o, op, func() { s.Ellipse(o.X, o.Y, rx, ry) })
	case object.KindLine:
		s.SetColor(vector.ColorOr(o.Color, r.Theme.Text).WithAlpha(op))
		s.SetLineWidth(math.Max(o.LineWidth, 1))
		s.SetDash()
		s.MoveTo(o.X, o.Y)
		s.LineTo(o.X2, o.Y2)
		s.Stroke()
	case object.KindImage:
		ready = r.drawPixels(s, o.ImageRef, object.Bounds(o), zoom)
	case object.KindText:
		r.drawText(s, o, op)
	case object.KindComponent:
		b := object.Bounds(o)
		if o.PreviewRef != "" {
			ready = r.drawPixels(s, o.PreviewRef, b, zoom)
		} else {
			r.drawComponentBox(s, o, b, zoom)
		}
	}
	return ready
}

func (r *Renderer) drawStroke(s Surface, o object.Object, zoom float64) {
	if len(o.Points) == 0 {
		return
	}
	col := vector.ColorOr(o.Color, r.Theme.Text).WithAlpha(o.Opacity)
	lw := math.Max(o.LineWidth, 0.5)
	s.SetColor(col)
	if len(o.Points) == 1 {
		p := o.Points[0]
		s.Ellipse(p.X, p.Y, lw/2, lw/2)
		s.Fill()
		return
	}
	raw := make([]vector.Pt, len(o.Points))
	for i, p := range o.Points {
		raw[i] = vector.Pt{X: p.X, Y: p.Y}
	}
	pts := Smooth(raw, strokeSpacing/zoom)
	s.SetLineWidth(lw)
	s.SetDash()
	s.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.LineTo(p.X, p.Y)
	}
	s.Stroke()
}

func (r *Renderer) fillAndStroke(s Surface, o object.Object, op float64, path func()) {
	if fill := vector.ColorOr(o.Fill, vector.Transparent); fill.A > 0 {
		path()
		s.SetColor(fill.WithAlpha(op))
		s.Fill()
	}
	stroke := vector.ColorOr(o.Stroke, vector.Transparent)
	if o.StrokeWidth > 0 && stroke.A > 0 {
		path()
		s.SetColor(stroke.WithAlpha(op))
		s.SetLineWidth(o.StrokeWidth)
		s.SetDash()
		s.Stroke()
	}
}

func (r *Renderer) drawPixels(s Surface, ref string, b vector.Rect, zoom float64) bool {
	if r.Images != nil {
		if img, ok := r.Images.Image(ref); ok {
			s.DrawImage(img, b.X, b.Y, b.W, b.H)
			return true
		}
	}
	s.SetColor(r.Theme.Placeholder)
	s.Rect(b.X, b.Y, b.W, b.H)
	s.Fill()
	s.SetColor(r.Theme.Dot)
	s.SetLineWidth(1 / zoom)
	s.SetDash(4/zoom, 4/zoom)
	s.Rect(b.X, b.Y, b.W, b.H)
	s.Stroke()
	s.SetDash()
	return false
}

func (r *Renderer) drawText(s Surface, o object.Object, op float64) {
	if o.Text == "" {
		return
	}
	blk := r.Fonts.Layout(o.Text, o.FontFamily, o.FontSize, o.Width)
	s.SetColor(vector.ColorOr(o.Color, r.Theme.Text).WithAlpha(op))
	s.SetFont(o.FontFamily, o.FontSize)
	for i, line := range blk.Lines {
		if line == "" {
			continue
		}
		s.Text(line, o.X, o.Y+float64(i)*blk.LineHeight)
	}
}

func (r *Renderer) drawComponentBox(s Surface, o object.Object, b vector.Rect, zoom float64) {
	s.SetColor(r.Theme.HandleFill.WithAlpha(o.Opacity))
	s.RoundedRect(b.X, b.Y, b.W, b.H, 6)
	s.Fill()
	s.SetColor(r.Theme.Dot.WithAlpha(o.Opacity))
	s.SetLineWidth(1 / zoom)
	s.SetDash()
	s.RoundedRect(b.X, b.Y, b.W, b.H, 6)
	s.Stroke()
	label := o.Name
	if o.Component != nil && o.Component.Label != "" {
		label = o.Component.Label
	}
	if label != "" {
		s.SetColor(r.Theme.Text.WithAlpha(o.Opacity))
		s.SetFont(textlayout.DefaultFamily, 13)
		s.Text(label, b.X+8, b.Y+8)
	}
}

func (r *Renderer) drawGuides(s Surface, guides []vector.GuideLine, zoom float64) {
	if len(guides) == 0 {
		return
	}
	s.SetColor(r.Theme.Guide)
	s.SetLineWidth(1 / zoom)
	for _, g := range guides {
		if g.Kind == "center" {
			s.SetDash(4/zoom, 3/zoom)
		} else {
			s.SetDash()
		}
		s.MoveTo(g.From.X, g.From.Y)
		s.LineTo(g.To.X, g.To.Y)
		s.Stroke()
	}
	s.SetDash()
}

func (r *Renderer) drawMarquee(s Surface, m vector.Rect, zoom float64) {
	m = m.Normalize()
	s.SetColor(r.Theme.MarqueeFill)
	s.Rect(m.X, m.Y, m.W, m.H)
	s.Fill()
	s.SetColor(r.Theme.Marquee)
	s.SetLineWidth(1 / zoom)
	s.SetDash(3/zoom, 3/zoom)
	s.Rect(m.X, m.Y, m.W, m.H)
	s.Stroke()
	s.SetDash()
}

// rotateArcs are the outward quarter circles per corner in Corners() order
// (top-left, top-right, bottom-right, bottom-left).
var rotateArcs = [4][2]float64{
	{math.Pi, 1.5 * math.Pi},
	{1.5 * math.Pi, 2 * math.Pi},
	{0, 0.5 * math.Pi},
	{0.5 * math.Pi, math.Pi},
}

func (r *Renderer) drawSelection(s Surface, o object.Object, zoom float64) {
	b := object.Bounds(o).Inset(-SelectionPad/zoom, -SelectionPad/zoom)
	s.Push()
	defer s.Pop()
	if o.Rotation != 0 {
		c := object.Pivot(o)
		s.RotateAbout(o.Rotation, c.X, c.Y)
	}
	s.SetDash()
	s.SetColor(r.Theme.Selection)
	s.SetLineWidth(1.5 / zoom)
	s.Rect(b.X, b.Y, b.W, b.H)
	s.Stroke()

	hs := HandleSize / zoom
	arcR := (ResizeZone + RotateZone) / 2 / zoom
	for i, c := range b.Corners() {
		s.SetColor(r.Theme.Rotate)
		s.SetLineWidth(2 / zoom)
		s.Arc(c.X, c.Y, arcR, rotateArcs[i][0], rotateArcs[i][1])
		s.Stroke()

		s.SetColor(r.Theme.HandleFill)
		s.Rect(c.X-hs/2, c.Y-hs/2, hs, hs)
		s.Fill()
		s.SetColor(r.Theme.Selection)
		s.SetLineWidth(1 / zoom)
		s.Rect(c.X-hs/2, c.Y-hs/2, hs, hs)
		s.Stroke()
	}
}
