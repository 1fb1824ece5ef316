//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"inkboard/internal/engine"
	applog "inkboard/internal/log"
	"inkboard/internal/render"
)

// BoardCanvas hosts an engine: it forwards pointer, wheel, key and drop
// events and paints engine frames into a raster. Frames are coalesced by the
// engine and posted back onto the fyne thread.
type BoardCanvas struct {
	widget.BaseWidget

	eng    *engine.Engine
	raster *canvas.Raster
	entry  *overlayEntry
	layer  *fyne.Container
	log    *slog.Logger

	shift   bool
	last    fyne.Position
	editing string
	syncing bool

	// OnFrame runs on the fyne thread after each painted frame.
	OnFrame func()
}

// NewBoardCanvas builds the widget and its engine. The scheduler and frame
// hook in opts are replaced.
func NewBoardCanvas(opts engine.Options) *BoardCanvas {
	b := &BoardCanvas{log: applog.WithComponent("ui")}
	opts.Scheduler = render.TimerScheduler{Interval: render.FrameInterval}
	opts.OnFrame = func() { fyne.Do(b.frame) }
	b.eng = engine.New(opts)

	b.raster = canvas.NewRaster(b.draw)
	b.entry = newOverlayEntry()
	b.entry.OnChanged = func(s string) {
		if !b.syncing {
			b.eng.SetEditText(s)
		}
	}
	b.entry.onEscape = b.eng.CancelText
	b.entry.onCommit = b.eng.CommitText
	b.entry.Hide()
	b.layer = container.NewWithoutLayout(b.entry)
	b.ExtendBaseWidget(b)
	return b
}

// Engine exposes the board's engine to menus and crash reporting.
func (b *BoardCanvas) Engine() *engine.Engine { return b.eng }

func (b *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(b.raster, b.layer))
}

func (b *BoardCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (b *BoardCanvas) Resize(s fyne.Size) {
	b.BaseWidget.Resize(s)
	b.eng.Resize(float64(s.Width), float64(s.Height))
}

// draw renders one engine frame at device resolution. Engine coordinates
// stay in fyne's logical units.
func (b *BoardCanvas) draw(w, h int) image.Image {
	im := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	size := b.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return im
	}
	s := render.NewGGSurfaceFor(im, nil)
	s.Scale(float64(w)/float64(size.Width), float64(h)/float64(size.Height))
	b.eng.Render(s)
	return im
}

func (b *BoardCanvas) frame() {
	b.raster.Refresh()
	b.syncOverlay()
	if b.OnFrame != nil {
		b.OnFrame()
	}
}

// syncOverlay places the text entry over the object being edited.
func (b *BoardCanvas) syncOverlay() {
	ov, ok := b.eng.TextOverlay()
	if !ok {
		if b.editing != "" {
			b.editing = ""
			b.entry.Hide()
			b.focus(b)
		}
		return
	}
	pad := theme.InnerPadding()
	lines := strings.Count(ov.Text, "\n") + 1
	w := float32(math.Max(ov.Width, 12*ov.FontSize))
	h := float32(float64(lines)*ov.FontSize*1.4) + 2*pad
	b.entry.Move(fyne.NewPos(float32(ov.X)-pad, float32(ov.Y)-pad))
	b.entry.Resize(fyne.NewSize(w, h))
	if b.editing == ov.ID {
		return
	}
	b.editing = ov.ID
	b.syncing = true
	b.entry.SetText(ov.Text)
	b.syncing = false
	b.entry.Show()
	b.focus(b.entry)
}

func (b *BoardCanvas) focus(obj fyne.Focusable) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(b); c != nil {
		c.Focus(obj)
	}
}

func (b *BoardCanvas) pointer(pos fyne.Position, btn desktop.MouseButton, mods fyne.KeyModifier) engine.Pointer {
	eb, _ := buttonFrom(btn)
	return engine.Pointer{X: float64(pos.X), Y: float64(pos.Y), Button: eb, Mods: modsFrom(mods)}
}

func (b *BoardCanvas) MouseDown(ev *desktop.MouseEvent) {
	b.focus(b)
	if _, ok := buttonFrom(ev.Button); !ok {
		return
	}
	b.last = ev.Position
	b.eng.PointerDown(b.pointer(ev.Position, ev.Button, ev.Modifier))
}

func (b *BoardCanvas) MouseUp(ev *desktop.MouseEvent) {
	b.last = ev.Position
	b.eng.PointerUp(b.pointer(ev.Position, ev.Button, ev.Modifier))
}

func (b *BoardCanvas) MouseIn(ev *desktop.MouseEvent) { b.MouseMoved(ev) }

func (b *BoardCanvas) MouseMoved(ev *desktop.MouseEvent) {
	b.last = ev.Position
	b.eng.PointerMove(b.pointer(ev.Position, ev.Button, ev.Modifier))
}

func (b *BoardCanvas) MouseOut() { b.eng.PointerLeave() }

// Dragged keeps gestures alive on drivers that stop hover events while a
// button is held.
func (b *BoardCanvas) Dragged(ev *fyne.DragEvent) {
	if ev.Position == b.last {
		return
	}
	b.last = ev.Position
	var mods fyne.KeyModifier
	if b.shift {
		mods = fyne.KeyModifierShift
	}
	b.eng.PointerMove(b.pointer(ev.Position, desktop.MouseButtonPrimary, mods))
}

// DragEnd closes a gesture whose mouse-up was not delivered to the board.
func (b *BoardCanvas) DragEnd() {
	if b.eng.Mode() != engine.ModeIdle && b.eng.Mode() != engine.ModeTextEditing {
		b.eng.PointerUp(b.pointer(b.last, desktop.MouseButtonPrimary, 0))
	}
}

func (b *BoardCanvas) Scrolled(ev *fyne.ScrollEvent) {
	// fyne reports wheel-up as positive; the engine zooms in on negative
	b.eng.Scroll(float64(ev.Position.X), float64(ev.Position.Y), -float64(ev.Scrolled.DY))
}

func (b *BoardCanvas) DoubleTapped(ev *fyne.PointEvent) {
	b.eng.DoubleClick(engine.Pointer{X: float64(ev.Position.X), Y: float64(ev.Position.Y)})
}

func (b *BoardCanvas) Cursor() desktop.Cursor {
	switch b.eng.Tool() {
	case engine.ToolPen, engine.ToolRectangle, engine.ToolEllipse, engine.ToolLine, engine.ToolEraser:
		return desktop.CrosshairCursor
	case engine.ToolText:
		return desktop.TextCursor
	}
	return desktop.DefaultCursor
}

func (b *BoardCanvas) FocusGained() {}

func (b *BoardCanvas) FocusLost() {
	b.shift = false
	b.eng.KeyUp(engine.KeySpace)
}

func (b *BoardCanvas) TypedRune(r rune) {
	if b.eng.Mode() != engine.ModeIdle {
		return
	}
	if t, ok := toolForRune(r); ok {
		b.eng.SetTool(t)
		b.Refresh()
	}
}

// TypedKey carries repeatable keys: delete, escape and arrow nudges.
func (b *BoardCanvas) TypedKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeySpace {
		return
	}
	if k, ok := keyFrom(ev.Name); ok {
		b.eng.KeyDown(k, engine.Modifiers{Shift: b.shift})
	}
}

// KeyDown and KeyUp track held keys: shift and space-to-pan.
func (b *BoardCanvas) KeyDown(ev *fyne.KeyEvent) {
	switch {
	case isShiftKey(ev.Name):
		b.shift = true
	case ev.Name == fyne.KeySpace:
		b.eng.KeyDown(engine.KeySpace, engine.Modifiers{})
	}
}

func (b *BoardCanvas) KeyUp(ev *fyne.KeyEvent) {
	switch {
	case isShiftKey(ev.Name):
		b.shift = false
	case ev.Name == fyne.KeySpace:
		b.eng.KeyUp(engine.KeySpace)
	}
}

func (b *BoardCanvas) TypedShortcut(s fyne.Shortcut) {
	b.Do(actionFor(s))
}

// Do runs a host command and reports failures in the log.
func (b *BoardCanvas) Do(a action) {
	if err := apply(b.eng, a); err != nil {
		b.log.Warn("command failed", slog.Int("action", int(a)), slog.Any("err", err))
	}
}

// Drop inserts dropped files at a window position. Files are read off the
// fyne thread; insertion hops back onto it.
func (b *BoardCanvas) Drop(pos fyne.Position, uris []fyne.URI) {
	origin := fyne.CurrentApp().Driver().AbsolutePositionForObject(b)
	x, y := float64(pos.X-origin.X), float64(pos.Y-origin.Y)
	go func() {
		for i, u := range uris {
			data, err := readURI(u)
			if err != nil {
				b.log.Debug("drop ignored", slog.String("uri", u.String()), slog.Any("err", err))
				continue
			}
			off := float64(i * engine.PasteOffset)
			fyne.Do(func() {
				b.eng.DropFile(context.Background(), x+off, y+off, data)
			})
		}
	}()
}

func readURI(u fyne.URI) ([]byte, error) {
	r, err := fstorage.Reader(u)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", u.Name(), err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u.Name(), err)
	}
	return data, nil
}

// overlayEntry is the text editor shown over a text object. Escape cancels
// and Ctrl/Cmd+Enter or a loss of focus commits.
type overlayEntry struct {
	widget.Entry
	onEscape func()
	onCommit func()
}

func newOverlayEntry() *overlayEntry {
	e := &overlayEntry{}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapWord
	e.ExtendBaseWidget(e)
	return e
}

func (e *overlayEntry) TypedKey(k *fyne.KeyEvent) {
	if k.Name == fyne.KeyEscape && e.onEscape != nil {
		e.onEscape()
		return
	}
	e.Entry.TypedKey(k)
}

func (e *overlayEntry) TypedShortcut(s fyne.Shortcut) {
	if cs, ok := s.(*desktop.CustomShortcut); ok && cs.KeyName == fyne.KeyReturn && e.onCommit != nil {
		e.onCommit()
		return
	}
	e.Entry.TypedShortcut(s)
}

func (e *overlayEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.Visible() && e.onCommit != nil {
		e.onCommit()
	}
}
