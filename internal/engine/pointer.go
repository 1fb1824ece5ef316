/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"log/slog"
	"math"
	"time"

	"inkboard/internal/object"
	"inkboard/internal/render"
	"inkboard/internal/snap"
	"inkboard/internal/vector"
)

// gesture is the scratch state of the live pointer gesture. It never reaches
// the store or history and is dropped on pointer-up.
type gesture struct {
	start      vector.Pt
	lastScreen vector.Pt

	// dragging
	origins []object.Object
	anchors []vector.Rect
	guides  []vector.GuideLine
	txOpen  bool

	// drawing and drafting
	points []object.StrokePoint
	anchor vector.Pt
	draft  *object.Object

	// resizing and rotating
	target     object.Object
	pivot      vector.Pt
	corner     int
	grab       vector.Pt
	startAngle float64

	// marquee
	marquee vector.Rect
	base    []string

	erased int
}

type handleKind int

const (
	handleNone handleKind = iota
	handleResize
	handleRotate
)

func vec(x, y float64) vector.Pt { return vector.Pt{X: x, Y: y} }

func (e *Engine) enter(m Mode) {
	e.mode = m
	e.log.Debug("gesture start", slog.String("mode", m.String()), slog.String("tool", string(e.tool)))
}

func (e *Engine) leave() {
	if e.mode != ModeIdle {
		e.log.Debug("gesture end", slog.String("mode", e.mode.String()), slog.Int("erased", e.g.erased))
	}
	e.mode = ModeIdle
	e.g = gesture{}
	e.RequestFrame()
}

// PointerDown starts a gesture. It is the sole arbiter of mode entry: while
// a gesture is live further presses are ignored. An open text edit is
// committed first, as a loss of focus.
func (e *Engine) PointerDown(ev Pointer) {
	if e.mode == ModeTextEditing {
		e.CommitText()
	}
	if e.mode != ModeIdle {
		return
	}
	sp := vec(ev.X, ev.Y)
	w := e.view.ScreenToWorld(ev.X, ev.Y)
	e.pointer, e.hasPointer = sp, true
	e.g = gesture{start: w, lastScreen: sp}

	switch {
	case ev.Button == ButtonMiddle || e.spaceHeld || e.tool == ToolPan:
		e.enter(ModePanning)
	case ev.Button != ButtonPrimary:
		return
	case e.tool == ToolPen:
		e.g.points = []object.StrokePoint{e.sample(w, ev.Time)}
		e.enter(ModeDrawing)
	case e.tool.shape():
		e.g.anchor = e.snapPt(w)
		e.g.draft = e.newDraft()
		e.shapeTo(e.g.anchor, ev.Mods.Shift)
		e.enter(ModeDrafting)
	case e.tool == ToolEraser:
		e.enter(ModeErasing)
		e.eraseAt(w)
	case e.tool == ToolText:
		e.placeText(e.snapPt(w))
	default:
		e.selectDown(w, ev.Mods.Shift)
	}
	e.RequestFrame()
}

// PointerMove advances the live gesture.
func (e *Engine) PointerMove(ev Pointer) {
	sp := vec(ev.X, ev.Y)
	w := e.view.ScreenToWorld(ev.X, ev.Y)
	e.pointer, e.hasPointer = sp, true
	switch e.mode {
	case ModeIdle:
		if snap.MagnetActive(e.tool.navigates(), e.store.Len()) && e.opts.Canvas.ShowGrid {
			e.RequestFrame()
		}
		return
	case ModeTextEditing:
		return
	case ModePanning:
		e.view.PanBy(sp.X-e.g.lastScreen.X, sp.Y-e.g.lastScreen.Y)
	case ModeDrawing:
		if last := e.g.points[len(e.g.points)-1]; last.X != w.X || last.Y != w.Y {
			e.g.points = append(e.g.points, e.sample(w, ev.Time))
		}
	case ModeDrafting:
		e.shapeTo(e.snapPt(w), ev.Mods.Shift)
	case ModeDragging:
		e.dragTo(w)
	case ModeResizing:
		e.resizeTo(w, ev.Mods.Shift)
	case ModeRotating:
		e.rotateTo(w, ev.Mods.Shift)
	case ModeErasing:
		e.eraseAt(w)
	case ModeMarquee:
		e.g.marquee = vector.RectFromPoints(e.g.start, w)
	}
	e.g.lastScreen = sp
	e.RequestFrame()
}

// PointerUp ends the live gesture uniformly and closes its transaction.
func (e *Engine) PointerUp(ev Pointer) {
	w := e.view.ScreenToWorld(ev.X, ev.Y)
	switch e.mode {
	case ModeIdle, ModeTextEditing:
		return
	case ModeDrawing:
		e.finishStroke(w, ev.Time)
	case ModeDrafting:
		e.finishShape()
	case ModeDragging, ModeResizing, ModeRotating:
		if e.g.txOpen {
			e.hist.Commit(e.store.Version())
		}
	case ModeMarquee:
		e.finishMarquee()
	}
	e.leave()
}

// PointerLeave forgets the pointer position used by the grid effect.
func (e *Engine) PointerLeave() {
	e.hasPointer = false
	e.RequestFrame()
}

// Cancel aborts the live gesture: transforms revert, drafts are discarded and
// text editing is cancelled. With no gesture it clears the selection.
func (e *Engine) Cancel() {
	if e.mode == ModeIdle {
		e.SetSelection()
		return
	}
	e.cancelGesture()
}

func (e *Engine) cancelGesture() {
	switch e.mode {
	case ModeIdle:
		return
	case ModeTextEditing:
		e.CancelText()
		return
	case ModeDragging, ModeResizing, ModeRotating:
		if before, ok := e.hist.Cancel(); ok {
			e.store.Restore(before.Objects)
			e.selection = before.Selection
		}
	case ModeMarquee:
		e.selection = e.g.base
	}
	e.leave()
	e.pruneSelection()
}

func (e *Engine) sample(w vector.Pt, t time.Time) object.StrokePoint {
	if t.IsZero() {
		t = e.opts.Now()
	}
	return object.StrokePoint{X: w.X, Y: w.Y, T: t.UnixMilli()}
}

func (e *Engine) snapPt(w vector.Pt) vector.Pt {
	if !e.opts.Canvas.Snap {
		return w
	}
	return snap.SnapPoint(w, e.opts.Canvas.GridSize)
}

// hitTolerance is measured in world units, independent of zoom.
func (e *Engine) hitTolerance() float64 {
	return e.opts.Canvas.HitTolerance
}

func (e *Engine) hit(w vector.Pt) (string, bool) {
	e.index.Sync(e.store)
	return e.index.HitTest(e.store, w, e.hitTolerance())
}

func (e *Engine) penStyle() object.Style {
	return object.Style{Color: e.opts.Tools.PenColor, LineWidth: e.opts.Tools.PenWidth}
}

func (e *Engine) finishStroke(w vector.Pt, t time.Time) {
	if last := e.g.points[len(e.g.points)-1]; last.X != w.X || last.Y != w.Y {
		e.g.points = append(e.g.points, e.sample(w, t))
	}
	o := object.NewStroke(e.g.points, e.penStyle())
	if _, err := e.AddObject(o); err != nil {
		e.log.Warn("stroke rejected", slog.Any("err", err))
	}
}

func (e *Engine) livePreviewStroke() *object.Object {
	if len(e.g.points) == 0 {
		return nil
	}
	st := e.penStyle()
	return &object.Object{
		Kind:      object.KindStroke,
		Points:    e.g.points,
		Color:     st.Color,
		LineWidth: st.LineWidth,
		Opacity:   1,
		Visible:   true,
	}
}

// newDraft creates the shape once per gesture so ids and default names are
// not consumed by every pointer move.
func (e *Engine) newDraft() *object.Object {
	t := e.opts.Tools
	var o object.Object
	switch e.tool {
	case ToolRectangle:
		o = object.NewRectangle(0, 0, 0, 0, object.Style{Fill: t.ShapeFill, Stroke: t.ShapeStroke, StrokeWidth: t.ShapeStrokeWidth})
	case ToolEllipse:
		o = object.NewEllipse(0, 0, 0, 0, object.Style{Fill: t.ShapeFill, Stroke: t.ShapeStroke, StrokeWidth: t.ShapeStrokeWidth})
	default:
		o = object.NewLine(0, 0, 0, 0, object.Style{Color: t.ShapeStroke, LineWidth: t.ShapeStrokeWidth})
	}
	return &o
}

// shapeTo spans the draft from the anchor to b. square forces equal sides
// for rectangles and circles for ellipses.
func (e *Engine) shapeTo(b vector.Pt, square bool) {
	a := e.g.anchor
	d := e.g.draft
	if square && d.Kind != object.KindLine {
		side := math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))
		b = vector.Pt{X: a.X + math.Copysign(side, b.X-a.X), Y: a.Y + math.Copysign(side, b.Y-a.Y)}
	}
	r := vector.RectFromPoints(a, b)
	switch d.Kind {
	case object.KindRectangle:
		d.X, d.Y, d.Width, d.Height = r.X, r.Y, r.W, r.H
	case object.KindEllipse:
		c := r.Center()
		d.X, d.Y, d.RadiusX, d.RadiusY = c.X, c.Y, r.W/2, r.H/2
	case object.KindLine:
		d.X, d.Y, d.X2, d.Y2 = a.X, a.Y, b.X, b.Y
	}
}

func (e *Engine) finishShape() {
	d := e.g.draft
	if d == nil {
		return
	}
	if b := object.Bounds(*d); b.W == 0 && b.H == 0 {
		// a click without a drag creates nothing
		return
	}
	if _, err := e.AddObject(*d); err != nil {
		e.log.Warn("shape rejected", slog.Any("err", err))
	}
}

func (e *Engine) eraseAt(w vector.Pt) {
	id, ok := e.hit(w)
	if !ok {
		return
	}
	before := e.snapshot("")
	if e.store.Delete(id) == 0 {
		return
	}
	e.hist.Push(before)
	e.g.erased++
	e.afterMutation()
}

func (e *Engine) selectDown(w vector.Pt, shift bool) {
	if len(e.selection) == 1 && !shift {
		if o, ok := e.store.Get(e.selection[0]); ok && !o.Locked {
			switch kind, corner := e.handleAt(o, w); kind {
			case handleResize:
				e.beginTransform(o)
				e.g.corner = corner
				// the handle sits outside the bounds; keep the offset so the
				// corner does not jump to the pointer
				e.g.grab = object.Bounds(o).Corners()[corner].Sub(object.ToLocal(o, w))
				e.enter(ModeResizing)
				return
			case handleRotate:
				e.beginTransform(o)
				e.g.startAngle = math.Atan2(w.Y-e.g.pivot.Y, w.X-e.g.pivot.X)
				e.enter(ModeRotating)
				return
			}
		}
	}

	id, hit := e.hit(w)
	if !hit {
		if !shift {
			e.selection = nil
		}
		e.g.base = append([]string(nil), e.selection...)
		e.g.marquee = vector.Rect{X: w.X, Y: w.Y}
		e.enter(ModeMarquee)
		return
	}
	if shift {
		if i := indexOf(e.selection, id); i >= 0 {
			e.selection = append(e.selection[:i], e.selection[i+1:]...)
		} else {
			e.selection = append(e.selection, id)
		}
	} else if !e.IsSelected(id) {
		e.selection = []string{id}
	}
	e.beginDrag()
}

func (e *Engine) beginTransform(o object.Object) {
	e.hist.Begin(e.snapshot(""))
	e.g.txOpen = true
	e.g.target = o
	e.g.pivot = object.Pivot(o)
}

func (e *Engine) beginDrag() {
	e.hist.Begin(e.snapshot(""))
	e.g.txOpen = true
	for _, o := range e.selectedObjects() {
		if !o.Locked {
			e.g.origins = append(e.g.origins, o)
		}
	}
	for _, o := range e.store.Objects() {
		if o.Visible && !e.IsSelected(o.ID) {
			e.g.anchors = append(e.g.anchors, object.Envelope(o))
		}
	}
	e.enter(ModeDragging)
}

// handleAt finds a resize corner or rotation zone of o under world point w.
// Zones are measured in screen pixels around the drawn selection corners.
func (e *Engine) handleAt(o object.Object, w vector.Pt) (handleKind, int) {
	z := e.view.Zoom
	b := object.Bounds(o).Inset(-render.SelectionPad/z, -render.SelectionPad/z)
	lp := object.ToLocal(o, w)
	best, bestD := -1, math.Inf(1)
	for i, c := range b.Corners() {
		if d := lp.Dist(c) * z; d < bestD {
			best, bestD = i, d
		}
	}
	switch {
	case bestD <= render.ResizeZone:
		return handleResize, best
	case bestD <= render.RotateZone && !b.Contains(lp):
		return handleRotate, best
	}
	return handleNone, -1
}

func (e *Engine) dragTo(w vector.Pt) {
	if len(e.g.origins) == 0 {
		return
	}
	dx, dy := w.X-e.g.start.X, w.Y-e.g.start.Y
	moving := object.Envelope(e.g.origins[0])
	for _, o := range e.g.origins[1:] {
		moving = moving.Union(object.Envelope(o))
	}
	res := snap.Guides(moving.Translate(dx, dy), e.g.anchors, snap.GuideOptions{
		Tolerance:  e.opts.Canvas.GuideTolerance / e.view.Zoom,
		GridSize:   e.opts.Canvas.GridSize,
		SnapToGrid: e.opts.Canvas.Snap,
	})
	dx += res.DX
	dy += res.DY
	e.g.guides = res.Lines
	for _, o := range e.g.origins {
		m := object.Clone(o)
		object.Translate(&m, dx, dy)
		if err := e.store.Replace(m); err != nil {
			e.log.Warn("drag write-back failed", slog.String("id", o.ID), slog.Any("err", err))
		}
	}
}

// resizeTo moves the grabbed corner to w and holds the opposite corner fixed
// in world space, also for rotated objects.
func (e *Engine) resizeTo(w vector.Pt, keepAspect bool) {
	o0 := e.g.target
	b0 := object.Bounds(o0)
	opp := b0.Corners()[(e.g.corner+2)%4]
	lp := vector.RotateAround(w, e.g.pivot, -o0.Rotation).Add(e.g.grab)
	if keepAspect && b0.W > 0 && b0.H > 0 {
		s := math.Max(math.Abs(lp.X-opp.X)/b0.W, math.Abs(lp.Y-opp.Y)/b0.H)
		lp = vector.Pt{X: opp.X + math.Copysign(b0.W*s, lp.X-opp.X), Y: opp.Y + math.Copysign(b0.H*s, lp.Y-opp.Y)}
	}
	o := object.Clone(o0)
	object.ResizeTo(&o, vector.RectFromPoints(opp, lp))
	if o0.Rotation != 0 {
		was := vector.RotateAround(opp, e.g.pivot, o0.Rotation)
		now := vector.RotateAround(opp, object.Pivot(o), o0.Rotation)
		object.Translate(&o, was.X-now.X, was.Y-now.Y)
	}
	if err := e.store.Replace(o); err != nil {
		e.log.Warn("resize write-back failed", slog.String("id", o.ID), slog.Any("err", err))
	}
}

func (e *Engine) rotateTo(w vector.Pt, snapAngle bool) {
	c := e.g.pivot
	a := math.Atan2(w.Y-c.Y, w.X-c.X)
	rot := e.g.target.Rotation + vector.Degrees(a-e.g.startAngle)
	if snapAngle {
		step := e.opts.Canvas.RotationSnapDeg
		rot = math.Round(rot/step) * step
	}
	o := object.Clone(e.g.target)
	o.Rotation = vector.NormalizeDeg(rot)
	if err := e.store.Replace(o); err != nil {
		e.log.Warn("rotate write-back failed", slog.String("id", o.ID), slog.Any("err", err))
	}
}

func (e *Engine) finishMarquee() {
	r := e.g.marquee.Normalize()
	if r.W == 0 && r.H == 0 {
		return
	}
	e.index.Sync(e.store)
	sel := append([]string(nil), e.g.base...)
	for _, id := range e.index.Intersecting(e.store, r) {
		if indexOf(sel, id) < 0 {
			sel = append(sel, id)
		}
	}
	e.selection = sel
}
