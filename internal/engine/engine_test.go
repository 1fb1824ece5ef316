/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"math"
	"reflect"
	"testing"
	"time"

	"inkboard/internal/config"
	"inkboard/internal/object"
	"inkboard/internal/render"
	"inkboard/internal/vector"
)

func newTestEngine(t *testing.T, tweak func(*Options)) *Engine {
	t.Helper()
	cfg := config.Defaults()
	cfg.Canvas.Snap = false
	opts := OptionsFromConfig(cfg)
	if tweak != nil {
		tweak(&opts)
	}
	e := New(opts)
	e.Resize(800, 600)
	return e
}

func press(e *Engine, x, y float64, mods Modifiers) {
	e.PointerDown(Pointer{X: x, Y: y, Button: ButtonPrimary, Mods: mods})
}

func move(e *Engine, x, y float64, mods Modifiers) {
	e.PointerMove(Pointer{X: x, Y: y, Mods: mods})
}

func release(e *Engine, x, y float64) {
	e.PointerUp(Pointer{X: x, Y: y})
}

func click(e *Engine, x, y float64, mods Modifiers) {
	press(e, x, y, mods)
	release(e, x, y)
}

// drag presses at x0,y0, moves in n steps and releases at x1,y1.
func drag(e *Engine, x0, y0, x1, y1 float64, n int, mods Modifiers) {
	press(e, x0, y0, mods)
	for i := 1; i <= n; i++ {
		f := float64(i) / float64(n)
		move(e, x0+(x1-x0)*f, y0+(y1-y0)*f, mods)
	}
	release(e, x1, y1)
}

func addRect(t *testing.T, e *Engine, x, y, w, h float64) string {
	t.Helper()
	id, err := e.AddObject(object.NewRectangle(x, y, w, h, object.Style{Stroke: "#000000", StrokeWidth: 1}))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	return id
}

func mustGet(t *testing.T, e *Engine, id string) object.Object {
	t.Helper()
	o, ok := e.Object(id)
	if !ok {
		t.Fatalf("object %s missing", id)
	}
	return o
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func undoDepth(e *Engine) int {
	u, _ := e.History()
	return u
}

func TestDrawSelectDragUndoDelete(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Canvas.Snap = true })
	e.SetTool(ToolPen)
	press(e, 0, 0, Modifiers{})
	move(e, 50, 0, Modifiers{})
	move(e, 100, 0, Modifiers{})
	release(e, 100, 0)
	if e.Len() != 1 {
		t.Fatalf("expected one stroke, got %d", e.Len())
	}
	s := e.Objects()[0]
	if s.Kind != object.KindStroke || len(s.Points) < 2 {
		t.Fatalf("bad stroke: %+v", s)
	}
	d := config.Defaults().Tools
	if s.Color != d.PenColor || s.LineWidth != d.PenWidth {
		t.Fatalf("stroke style %s/%g", s.Color, s.LineWidth)
	}

	e.SetTool(ToolSelect)
	click(e, 50, 0, Modifiers{})
	if !e.IsSelected(s.ID) {
		t.Fatalf("click did not select the stroke")
	}
	before := object.Bounds(mustGet(t, e, s.ID))
	depth := undoDepth(e)
	drag(e, 50, 0, 70, 0, 40, Modifiers{})
	after := object.Bounds(mustGet(t, e, s.ID))
	if !near(after.X, before.X+20) || !near(after.Y, before.Y) {
		t.Fatalf("drag moved to %+v from %+v", after, before)
	}
	if undoDepth(e) != depth+1 {
		t.Fatalf("drag should add exactly one step: %d -> %d", depth, undoDepth(e))
	}
	if !e.Undo() {
		t.Fatalf("undo refused")
	}
	if got := object.Bounds(mustGet(t, e, s.ID)); got != before {
		t.Fatalf("undo left %+v, want %+v", got, before)
	}
	if !e.KeyDown(KeyDelete, Modifiers{}) || e.Len() != 0 {
		t.Fatalf("delete key left %d objects", e.Len())
	}
}

func TestUndoRedoRestoresExactLists(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addRect(t, e, 0, 0, 50, 50)
	addRect(t, e, 200, 200, 50, 50)
	e.SetSelection(id)
	a := e.Objects()
	drag(e, 25, 25, 85, 45, 5, Modifiers{})
	b := e.Objects()
	if reflect.DeepEqual(a, b) {
		t.Fatalf("drag changed nothing")
	}
	if !e.Undo() || !reflect.DeepEqual(e.Objects(), a) {
		t.Fatalf("undo did not restore A")
	}
	if !e.Redo() || !reflect.DeepEqual(e.Objects(), b) {
		t.Fatalf("redo did not restore B")
	}
	if e.Redo() {
		t.Fatalf("redo past the end")
	}
}

func TestHistoryIsBounded(t *testing.T) {
	e := newTestEngine(t, nil)
	for i := 0; i < 60; i++ {
		addRect(t, e, float64(i)*5, 0, 4, 4)
	}
	if undoDepth(e) != 50 {
		t.Fatalf("undo depth %d, want 50", undoDepth(e))
	}
	n := 0
	for e.Undo() {
		n++
	}
	if n != 50 || e.Len() != 10 {
		t.Fatalf("undid %d steps leaving %d objects", n, e.Len())
	}
}

func TestShapeDrafting(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetTool(ToolRectangle)
	press(e, 10, 10, Modifiers{})
	move(e, 50, 30, Modifiers{Shift: true})
	if e.Mode() != ModeDrafting || e.Scene().Preview == nil {
		t.Fatalf("no draft preview while drafting")
	}
	if e.Len() != 0 {
		t.Fatalf("draft must not reach the store")
	}
	release(e, 50, 30)
	r := e.Objects()[0]
	if r.X != 10 || r.Y != 10 || r.Width != 40 || r.Height != 40 {
		t.Fatalf("shift rectangle %+v", r)
	}

	e.SetTool(ToolEllipse)
	drag(e, 0, 0, 40, 20, 3, Modifiers{})
	el := e.Objects()[1]
	if el.X != 20 || el.Y != 10 || el.RadiusX != 20 || el.RadiusY != 10 {
		t.Fatalf("ellipse %+v", el)
	}

	e.SetTool(ToolLine)
	click(e, 300, 300, Modifiers{})
	if e.Len() != 2 {
		t.Fatalf("click without drag created a shape")
	}
}

func TestShapeSnapsToGrid(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Canvas.Snap = true })
	e.SetTool(ToolRectangle)
	drag(e, 13, 8, 58, 41, 2, Modifiers{})
	r := e.Objects()[0]
	if r.X != 20 || r.Y != 0 || r.Width != 40 || r.Height != 40 {
		t.Fatalf("snapped rectangle %+v", r)
	}
}

func TestResizeFromCorner(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addRect(t, e, 100, 100, 100, 50)
	e.SetSelection(id)
	// the bottom-right handle is drawn SelectionPad outside the corner
	drag(e, 204, 154, 254, 204, 5, Modifiers{})
	o := mustGet(t, e, id)
	if !near(o.X, 100) || !near(o.Y, 100) || !near(o.Width, 150) || !near(o.Height, 100) {
		t.Fatalf("resized to %g,%g %gx%g", o.X, o.Y, o.Width, o.Height)
	}
	if undoDepth(e) != 2 {
		t.Fatalf("resize steps %d", undoDepth(e))
	}

	e.Undo()
	drag(e, 204, 154, 304, 164, 4, Modifiers{Shift: true})
	o = mustGet(t, e, id)
	if !near(o.Width, 200) || !near(o.Height, 100) {
		t.Fatalf("aspect resize %gx%g", o.Width, o.Height)
	}
}

func TestResizeRotatedKeepsOppositeCorner(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addRect(t, e, 0, 0, 100, 100)
	if err := e.UpdateObject(id, object.Patch{Rotation: object.F(90)}); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	e.SetSelection(id)
	o := mustGet(t, e, id)
	opp := vector.RotateAround(object.Bounds(o).Min(), object.Pivot(o), o.Rotation)

	// local bottom-right handle (104,104) sits at world (-4,104)
	drag(e, -4, 104, -4, 154, 5, Modifiers{})
	o = mustGet(t, e, id)
	b := object.Bounds(o)
	if !near(b.W, 150) || !near(b.H, 100) {
		t.Fatalf("rotated resize gave %+v", b)
	}
	got := vector.RotateAround(b.Min(), object.Pivot(o), o.Rotation)
	if math.Abs(got.X-opp.X) > 1e-6 || math.Abs(got.Y-opp.Y) > 1e-6 {
		t.Fatalf("opposite corner moved from %+v to %+v", opp, got)
	}
}

func TestRotateHandle(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addRect(t, e, 100, 100, 100, 100)
	e.SetSelection(id)
	press(e, 220, 80, Modifiers{})
	if e.Mode() != ModeRotating {
		t.Fatalf("mode %s, want rotating", e.Mode())
	}
	move(e, 220, 220, Modifiers{})
	release(e, 220, 220)
	if r := mustGet(t, e, id).Rotation; !near(r, 90) {
		t.Fatalf("rotation %g", r)
	}

	e.Undo()
	press(e, 220, 80, Modifiers{})
	move(e, 220, 215, Modifiers{Shift: true})
	release(e, 220, 215)
	if r := mustGet(t, e, id).Rotation; !near(r, 90) {
		t.Fatalf("snapped rotation %g", r)
	}
}

func TestSelectionClicksAndMarquee(t *testing.T) {
	e := newTestEngine(t, nil)
	a := addRect(t, e, 0, 0, 50, 50)
	b := addRect(t, e, 100, 0, 50, 50)

	click(e, 25, 25, Modifiers{})
	click(e, 125, 25, Modifiers{Shift: true})
	if got := e.Selection(); len(got) != 2 {
		t.Fatalf("shift click selection %v", got)
	}
	click(e, 25, 25, Modifiers{Shift: true})
	if got := e.Selection(); len(got) != 1 || got[0] != b {
		t.Fatalf("shift toggle left %v", got)
	}
	click(e, 400, 400, Modifiers{})
	if len(e.Selection()) != 0 {
		t.Fatalf("empty click kept %v", e.Selection())
	}

	drag(e, -10, -10, 160, 60, 4, Modifiers{})
	if got := e.Selection(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("marquee selected %v", got)
	}
	if undoDepth(e) != 2 {
		t.Fatalf("selection changes must not touch history")
	}
}

func TestShiftDeselectOpensDrag(t *testing.T) {
	e := newTestEngine(t, nil)
	a := addRect(t, e, 0, 0, 50, 50)
	b := addRect(t, e, 100, 0, 50, 50)
	e.SetSelection(a, b)
	depth := undoDepth(e)

	press(e, 25, 25, Modifiers{Shift: true})
	if e.Mode() != ModeDragging {
		t.Fatalf("shift click on a selected object should start a drag, mode %s", e.Mode())
	}
	if got := e.Selection(); len(got) != 1 || got[0] != b {
		t.Fatalf("selection after toggle %v", got)
	}
	release(e, 25, 25)
	if undoDepth(e) != depth {
		t.Fatalf("unmoved toggle recorded history")
	}

	e.SetSelection(a, b)
	drag(e, 25, 25, 35, 25, 2, Modifiers{Shift: true})
	if mustGet(t, e, b).X != 110 || mustGet(t, e, a).X != 0 {
		t.Fatalf("remaining selection should follow the pointer, a=%g b=%g", mustGet(t, e, a).X, mustGet(t, e, b).X)
	}
	if undoDepth(e) != depth+1 {
		t.Fatalf("drag after toggle recorded %d steps", undoDepth(e)-depth)
	}
}

func TestHitToleranceInWorldUnits(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addRect(t, e, 10, 10, 50, 50)
	e.SetZoom(4)
	e.SetPan(0, 0)
	// world (5,30) is 5 units left of the edge
	click(e, 20, 120, Modifiers{})
	if !e.IsSelected(id) {
		t.Fatalf("point within 6 world units missed at zoom 4")
	}
	// world (3,30) is 7 units away
	click(e, 12, 120, Modifiers{})
	if e.IsSelected(id) {
		t.Fatalf("point beyond the tolerance hit at zoom 4")
	}
}

func TestLockedObjectsAreNotHit(t *testing.T) {
	e := newTestEngine(t, nil)
	o := object.NewRectangle(0, 0, 50, 50, object.Style{})
	o.Locked = true
	if _, err := e.AddObject(o); err != nil {
		t.Fatal(err)
	}
	press(e, 25, 25, Modifiers{})
	if e.Mode() != ModeMarquee || len(e.Selection()) != 0 {
		t.Fatalf("locked object hit: mode %s sel %v", e.Mode(), e.Selection())
	}
	release(e, 25, 25)
}

func TestEraserRecordsEachObject(t *testing.T) {
	e := newTestEngine(t, nil)
	addRect(t, e, 0, 0, 50, 50)
	addRect(t, e, 100, 0, 50, 50)
	e.SetTool(ToolEraser)
	press(e, 25, 25, Modifiers{})
	move(e, 125, 25, Modifiers{})
	release(e, 125, 25)
	if e.Len() != 0 {
		t.Fatalf("eraser left %d", e.Len())
	}
	if undoDepth(e) != 4 {
		t.Fatalf("eraser steps %d, want 4", undoDepth(e))
	}
	e.Undo()
	if e.Len() != 1 {
		t.Fatalf("one undo should restore one object, have %d", e.Len())
	}
}

func TestTextPlaceTypeCommit(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetTool(ToolText)
	click(e, 100, 100, Modifiers{})
	if e.Mode() != ModeTextEditing {
		t.Fatalf("mode %s", e.Mode())
	}
	e.TypeText("hi")
	e.KeyDown(KeyEnter, Modifiers{})
	e.TypeText("there!")
	e.KeyDown(KeyBackspace, Modifiers{})
	e.CommitText()
	if e.Len() != 1 || e.Objects()[0].Text != "hi\nthere" {
		t.Fatalf("text %q", e.Objects()[0].Text)
	}
	if undoDepth(e) != 1 {
		t.Fatalf("text entry steps %d", undoDepth(e))
	}
	e.Undo()
	if e.Len() != 0 {
		t.Fatalf("undo kept the text")
	}
}

func TestEmptyTextLeavesNoTrace(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetTool(ToolText)
	click(e, 10, 10, Modifiers{})
	e.CommitText()
	if e.Len() != 0 || e.CanUndo() {
		t.Fatalf("empty text left len=%d undo=%v", e.Len(), e.CanUndo())
	}

	click(e, 10, 10, Modifiers{})
	e.TypeText("a")
	// a new press commits as a loss of focus and places the next object
	click(e, 200, 200, Modifiers{})
	if e.Len() != 2 || e.Mode() != ModeTextEditing {
		t.Fatalf("focus loss: len=%d mode=%s", e.Len(), e.Mode())
	}
	e.KeyDown(KeyEscape, Modifiers{})
	if e.Len() != 1 || e.Mode() != ModeIdle {
		t.Fatalf("escape: len=%d mode=%s", e.Len(), e.Mode())
	}
}

func TestTextOverlayFollowsViewport(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetZoom(2)
	e.SetPan(10, 20)
	e.SetTool(ToolText)
	click(e, 210, 220, Modifiers{})
	ov, ok := e.TextOverlay()
	if !ok {
		t.Fatalf("no overlay while editing")
	}
	o := mustGet(t, e, ov.ID)
	if o.X != 100 || o.Y != 100 {
		t.Fatalf("text placed at %g,%g", o.X, o.Y)
	}
	if ov.X != 210 || ov.Y != 220 || ov.FontSize != 2*config.Defaults().Tools.TextSize {
		t.Fatalf("overlay %+v", ov)
	}
	if e.Scene().Editing != ov.ID {
		t.Fatalf("renderer must skip the edited object")
	}
}

func TestDoubleClickEditToEmptyDeletes(t *testing.T) {
	e := newTestEngine(t, nil)
	id, _ := e.AddObject(object.NewText(100, 100, "hello", object.Style{FontSize: 20, FontFamily: "Go", Color: "#000000"}))
	if !e.DoubleClick(Pointer{X: 105, Y: 110}) {
		t.Fatalf("double click did not open the editor")
	}
	if got, _ := e.Editing(); got != id {
		t.Fatalf("editing %q", got)
	}
	e.SetEditText("")
	e.CommitText()
	if e.Len() != 0 {
		t.Fatalf("emptied text survived")
	}
	e.Undo()
	if o := mustGet(t, e, id); o.Text != "hello" {
		t.Fatalf("undo restored %q", o.Text)
	}
}

func TestEscapeRevertsDrag(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addRect(t, e, 0, 0, 50, 50)
	press(e, 25, 25, Modifiers{})
	move(e, 75, 25, Modifiers{})
	if mustGet(t, e, id).X != 50 {
		t.Fatalf("drag did not write through")
	}
	e.KeyDown(KeyEscape, Modifiers{})
	release(e, 75, 25)
	if o := mustGet(t, e, id); o.X != 0 || e.Mode() != ModeIdle {
		t.Fatalf("escape left x=%g mode=%s", o.X, e.Mode())
	}
	if undoDepth(e) != 1 {
		t.Fatalf("cancelled drag recorded history")
	}
}

func TestKeyboardNudgeCoalesces(t *testing.T) {
	now := time.Unix(1000, 0)
	e := newTestEngine(t, func(o *Options) { o.Now = func() time.Time { return now } })
	id := addRect(t, e, 0, 0, 10, 10)
	e.SetSelection(id)
	for i := 0; i < 3; i++ {
		e.KeyDown(KeyRight, Modifiers{})
	}
	if o := mustGet(t, e, id); o.X != 3 {
		t.Fatalf("nudged to %g", o.X)
	}
	if undoDepth(e) != 2 {
		t.Fatalf("nudges recorded %d steps", undoDepth(e)-1)
	}
	now = now.Add(2 * time.Second)
	e.KeyDown(KeyDown, Modifiers{Shift: true})
	if o := mustGet(t, e, id); o.Y != 10 || undoDepth(e) != 3 {
		t.Fatalf("shift nudge y=%g depth=%d", o.Y, undoDepth(e))
	}
	e.Undo()
	e.Undo()
	if o := mustGet(t, e, id); o.X != 0 || o.Y != 0 {
		t.Fatalf("undo nudges left %g,%g", o.X, o.Y)
	}
}

func TestPanAndZoom(t *testing.T) {
	e := newTestEngine(t, nil)
	e.KeyDown(KeySpace, Modifiers{})
	drag(e, 100, 100, 110, 105, 2, Modifiers{})
	e.KeyUp(KeySpace)
	if v := e.Viewport(); v.PanX != 10 || v.PanY != 5 {
		t.Fatalf("space pan %g,%g", v.PanX, v.PanY)
	}
	e.PointerDown(Pointer{X: 0, Y: 0, Button: ButtonMiddle})
	move(e, 10, 0, Modifiers{})
	release(e, 10, 0)
	if v := e.Viewport(); v.PanX != 20 {
		t.Fatalf("middle pan %g", v.PanX)
	}

	before := e.Viewport().ScreenToWorld(200, 150)
	e.Scroll(200, 150, -1)
	v := e.Viewport()
	if v.Zoom <= 1 {
		t.Fatalf("wheel up should zoom in, zoom %g", v.Zoom)
	}
	after := v.ScreenToWorld(200, 150)
	if math.Abs(after.X-before.X) > 1e-9 || math.Abs(after.Y-before.Y) > 1e-9 {
		t.Fatalf("cursor anchor drifted %+v -> %+v", before, after)
	}

	e.SetZoom(1000)
	if z := e.Viewport().Zoom; z != 20 {
		t.Fatalf("max zoom %g", z)
	}
	e.SetZoom(0.0001)
	if z := e.Viewport().Zoom; z != 0.05 {
		t.Fatalf("min zoom %g", z)
	}
	if e.CanUndo() {
		t.Fatalf("navigation must not touch history")
	}
}

func TestCopyPasteOffsets(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addRect(t, e, 0, 0, 50, 50)
	e.SetSelection(id)
	if err := e.Copy(); err != nil {
		t.Fatal(err)
	}
	first, err := e.Paste()
	if err != nil || len(first) != 1 {
		t.Fatalf("paste: %v %v", first, err)
	}
	second, _ := e.Paste()
	if o := mustGet(t, e, first[0]); o.X != 20 || o.Y != 20 || o.ID == id {
		t.Fatalf("first paste %+v", o)
	}
	if o := mustGet(t, e, second[0]); o.X != 40 {
		t.Fatalf("second paste x=%g", o.X)
	}
	if got := e.Selection(); len(got) != 1 || got[0] != second[0] {
		t.Fatalf("paste selection %v", got)
	}
	e.Undo()
	if e.Len() != 2 {
		t.Fatalf("undo paste left %d", e.Len())
	}

	e.SetSelection(id)
	if err := e.Cut(); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Object(id); ok {
		t.Fatalf("cut kept the original")
	}
	ids, _ := e.Paste()
	if o := mustGet(t, e, ids[0]); o.X != 20 {
		t.Fatalf("paste after cut x=%g", o.X)
	}
}

func TestZOrder(t *testing.T) {
	e := newTestEngine(t, nil)
	a := addRect(t, e, 0, 0, 10, 10)
	b := addRect(t, e, 0, 0, 10, 10)
	c := addRect(t, e, 0, 0, 10, 10)
	order := func() []string {
		var ids []string
		for _, o := range e.Objects() {
			ids = append(ids, o.ID)
		}
		return ids
	}
	if err := e.BringToFront(a); err != nil {
		t.Fatal(err)
	}
	if got := order(); !reflect.DeepEqual(got, []string{b, c, a}) {
		t.Fatalf("bring to front %v", got)
	}
	if err := e.SendToBack(c); err != nil {
		t.Fatal(err)
	}
	if got := order(); !reflect.DeepEqual(got, []string{c, b, a}) {
		t.Fatalf("send to back %v", got)
	}
	click(e, 5, 5, Modifiers{})
	if got := e.Selection(); len(got) != 1 || got[0] != a {
		t.Fatalf("topmost hit %v", got)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDropImage(t *testing.T) {
	e := newTestEngine(t, nil)
	ctx := context.Background()
	id, ok := e.DropFile(ctx, 100, 100, pngBytes(t, 30, 20))
	if !ok {
		t.Fatalf("png drop rejected")
	}
	o := mustGet(t, e, id)
	if o.Kind != object.KindImage || o.X != 100 || o.Y != 100 || o.Width != 30 || o.Height != 20 {
		t.Fatalf("image object %+v", o)
	}
	if got := e.Selection(); len(got) != 1 || got[0] != id {
		t.Fatalf("drop selection %v", got)
	}
	e.Assets().Image(o.ImageRef)
	e.Assets().Wait()
	if _, ok := e.Assets().Image(o.ImageRef); !ok {
		t.Fatalf("asset not loaded")
	}

	depth := undoDepth(e)
	if _, ok := e.DropFile(ctx, 0, 0, []byte("not an image")); ok {
		t.Fatalf("garbage drop accepted")
	}
	if e.Len() != 1 || undoDepth(e) != depth {
		t.Fatalf("garbage drop changed the board")
	}
}

func TestDropComponent(t *testing.T) {
	e := newTestEngine(t, nil)
	payload := []byte(`{"type":"component","name":"Login","width":200,"height":120,
		"root":{"kind":"container","label":"Login","children":[{"kind":"input","label":"Email"}]}}`)
	id, ok := e.DropFile(context.Background(), 100, 100, payload)
	if !ok {
		t.Fatalf("component drop rejected")
	}
	o := mustGet(t, e, id)
	if o.Kind != object.KindComponent || o.Name != "Login" || o.PreviewRef == "" {
		t.Fatalf("component %+v", o)
	}
	if o.X != 0 || o.Y != 40 || o.Width != 200 || o.Height != 120 {
		t.Fatalf("component placed at %g,%g %gx%g", o.X, o.Y, o.Width, o.Height)
	}
	if _, ok := e.Assets().Image(o.PreviewRef); !ok {
		t.Fatalf("preview not cached")
	}
	if _, ok := e.DropFile(context.Background(), 0, 0, []byte(`{"type":"component","root":{"kind":"bogus"}}`)); ok {
		t.Fatalf("invalid component accepted")
	}
}

func TestSelectionPrunedOnUndoAndDelete(t *testing.T) {
	e := newTestEngine(t, nil)
	a := addRect(t, e, 0, 0, 10, 10)
	e.SetSelection(a)
	e.Undo()
	if e.Len() != 0 || len(e.Selection()) != 0 {
		t.Fatalf("selection %v after undoing the add", e.Selection())
	}
	e.Redo()
	b := addRect(t, e, 50, 50, 10, 10)
	e.SetSelection(a, b, "missing", a)
	if got := e.Selection(); len(got) != 2 {
		t.Fatalf("selection not deduplicated %v", got)
	}
	e.DeleteObjects(a)
	if got := e.Selection(); len(got) != 1 || got[0] != b {
		t.Fatalf("delete kept %v", got)
	}
}

func TestFramesCoalesce(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Tick()
	start := e.Frames()
	e.SetTool(ToolPen)
	press(e, 0, 0, Modifiers{})
	for i := 1; i <= 30; i++ {
		move(e, float64(i), 0, Modifiers{})
	}
	if n := e.Tick(); n != 1 {
		t.Fatalf("ran %d frames, want 1", n)
	}
	release(e, 30, 0)
	e.Tick()
	if got := e.Frames() - start; got != 2 {
		t.Fatalf("frames %d", got)
	}
	if e.Tick() != 0 {
		t.Fatalf("idle tick painted")
	}
}

func TestMagnetOnlyOnEmptyBoard(t *testing.T) {
	e := newTestEngine(t, nil)
	move(e, 100, 100, Modifiers{})
	if !e.Scene().Grid.Magnet.Active {
		t.Fatalf("magnet off on an empty board")
	}
	e.SetTool(ToolPen)
	if e.Scene().Grid.Magnet.Active {
		t.Fatalf("magnet on with the pen")
	}
	e.SetTool(ToolSelect)
	addRect(t, e, 0, 0, 10, 10)
	if e.Scene().Grid.Magnet.Active {
		t.Fatalf("magnet on with content")
	}
	e.PointerLeave()
	if e.Scene().Grid.Magnet.Active {
		t.Fatalf("magnet on without a pointer")
	}
}

func TestGestureIsExclusive(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetTool(ToolPen)
	press(e, 0, 0, Modifiers{})
	e.PointerDown(Pointer{X: 5, Y: 5, Button: ButtonMiddle})
	if e.Mode() != ModeDrawing {
		t.Fatalf("second press changed mode to %s", e.Mode())
	}
	if e.SetTool(ToolSelect) {
		t.Fatalf("tool switch allowed mid-gesture")
	}
	move(e, 20, 0, Modifiers{})
	release(e, 20, 0)
	if e.Len() != 1 || e.Viewport().PanX != 0 {
		t.Fatalf("len=%d pan=%g", e.Len(), e.Viewport().PanX)
	}
}

func TestUndoRefusedMidGesture(t *testing.T) {
	e := newTestEngine(t, nil)
	addRect(t, e, 0, 0, 50, 50)
	press(e, 25, 25, Modifiers{})
	move(e, 30, 25, Modifiers{})
	if e.Undo() {
		t.Fatalf("undo ran during a drag")
	}
	release(e, 30, 25)
	if !e.Undo() || mustGet(t, e, e.Objects()[0].ID).X != 0 {
		t.Fatalf("undo after drag failed")
	}
}

func TestExternalTransaction(t *testing.T) {
	e := newTestEngine(t, nil)
	e.BeginTransaction()
	addRect(t, e, 0, 0, 10, 10)
	addRect(t, e, 20, 0, 10, 10)
	if e.Undo() {
		t.Fatalf("undo inside a transaction")
	}
	if !e.EndTransaction() || undoDepth(e) != 1 {
		t.Fatalf("transaction recorded %d steps", undoDepth(e))
	}
	e.Undo()
	if e.Len() != 0 {
		t.Fatalf("one undo should drop both objects")
	}
}

func TestEscapeInsideExternalTransaction(t *testing.T) {
	e := newTestEngine(t, nil)
	e.BeginTransaction()
	id := addRect(t, e, 0, 0, 50, 50)
	e.SetSelection(id)
	press(e, 25, 25, Modifiers{})
	move(e, 75, 25, Modifiers{})
	e.KeyDown(KeyEscape, Modifiers{})
	release(e, 75, 25)
	if o := mustGet(t, e, id); o.X != 0 {
		t.Fatalf("escape should revert only the drag, x=%g", o.X)
	}
	if !e.IsSelected(id) {
		t.Fatalf("selection before the drag should be restored")
	}

	e.SetTool(ToolText)
	click(e, 300, 300, Modifiers{})
	e.TypeText("gone")
	e.KeyDown(KeyEscape, Modifiers{})
	if e.Len() != 1 {
		t.Fatalf("cancelled text should leave only the rectangle, len=%d", e.Len())
	}

	if !e.EndTransaction() || undoDepth(e) != 1 {
		t.Fatalf("host transaction lost, undo depth %d", undoDepth(e))
	}
	e.Undo()
	if e.Len() != 0 {
		t.Fatalf("undo should drop the host's rectangle")
	}
}

func TestRenderIntoGG(t *testing.T) {
	e := newTestEngine(t, nil)
	addRect(t, e, 10, 10, 50, 50)
	addRect(t, e, 5000, 5000, 10, 10)
	s := render.NewGGSurface(200, 200, nil)
	st := e.Render(s)
	if st.Drawn != 1 || st.Culled != 1 {
		t.Fatalf("stats %+v", st)
	}
	if s.Image() == nil {
		t.Fatalf("no image")
	}
}

func TestDumpAndLoad(t *testing.T) {
	e := newTestEngine(t, nil)
	id := addRect(t, e, 0, 0, 10, 10)
	e.SetSelection(id)
	var buf bytes.Buffer
	if err := e.DumpScene(&buf); err != nil {
		t.Fatal(err)
	}
	var d struct {
		Tool      string          `json:"tool"`
		Selection []string        `json:"selection"`
		Objects   []object.Object `json:"objects"`
	}
	if err := json.Unmarshal(buf.Bytes(), &d); err != nil {
		t.Fatalf("dump is not json: %v", err)
	}
	if d.Tool != "select" || len(d.Objects) != 1 || d.Selection[0] != id {
		t.Fatalf("dump %+v", d)
	}

	f := newTestEngine(t, nil)
	if err := f.LoadObjects([]object.Object{d.Objects[0], d.Objects[0]}); err == nil {
		t.Fatalf("duplicate ids accepted")
	}
	if err := f.LoadObjects(d.Objects); err != nil || f.Len() != 1 || f.CanUndo() {
		t.Fatalf("load: %v len=%d", err, f.Len())
	}
}

func TestUpdateUnknown(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.UpdateObject("obj_missing", object.Patch{X: object.F(1)}); err == nil {
		t.Fatalf("update of a missing object succeeded")
	}
}

func TestUpdateRejectsEmptyStroke(t *testing.T) {
	e := newTestEngine(t, nil)
	id, err := e.AddObject(object.NewStroke([]object.StrokePoint{{X: 0, Y: 0}, {X: 40, Y: 0}}, object.Style{Color: "#000000", LineWidth: 2}))
	if err != nil {
		t.Fatal(err)
	}
	depth := undoDepth(e)
	if err := e.UpdateObject(id, object.Patch{Points: []object.StrokePoint{}}); !errors.Is(err, object.ErrInvalid) {
		t.Fatalf("emptying a stroke err = %v", err)
	}
	if len(mustGet(t, e, id).Points) != 2 || undoDepth(e) != depth {
		t.Fatalf("rejected update reached the store or history")
	}
	e.SetSelection(id)
	e.Nudge(10, 0)
	if mustGet(t, e, id).Points[0].X != 10 {
		t.Fatalf("stroke no longer movable")
	}
}
