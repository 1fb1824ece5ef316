//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests need the fyne build tag and cgo:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"inkboard/internal/engine"
)

func newTestBoard(t *testing.T) *BoardCanvas {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	b := NewBoardCanvas(engine.Options{})
	b.Resize(fyne.NewSize(400, 300))
	return b
}

func TestBoardCanvas_ResizeReachesEngine(t *testing.T) {
	b := newTestBoard(t)
	if w, h := b.Engine().Size(); w != 400 || h != 300 {
		t.Fatalf("engine size %vx%v", w, h)
	}
	if sz := b.MinSize(); sz.Width != 320 || sz.Height != 240 {
		t.Fatalf("unexpected MinSize: %v", sz)
	}
}

func TestBoardCanvas_PenStrokeFromMouse(t *testing.T) {
	b := newTestBoard(t)
	b.Engine().SetTool(engine.ToolPen)
	ev := func(x, y float32) *desktop.MouseEvent {
		return &desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: desktop.MouseButtonPrimary}
	}
	b.MouseDown(ev(10, 10))
	b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(60, 10)}})
	b.MouseUp(ev(60, 10))
	b.DragEnd()
	if b.Engine().Len() != 1 {
		t.Fatalf("expected one stroke, got %d", b.Engine().Len())
	}
}

func TestBoardCanvas_DrawScalesToDevicePixels(t *testing.T) {
	b := newTestBoard(t)
	im, ok := b.draw(800, 600).(*image.RGBA)
	if !ok {
		t.Fatalf("raster returned %T", b.draw(800, 600))
	}
	if im.Bounds().Dx() != 800 || im.Bounds().Dy() != 600 {
		t.Fatalf("raster size %v", im.Bounds())
	}
	if c := im.RGBAAt(799, 1); c.R < 200 || c.A != 255 {
		t.Fatalf("background not painted: %v", c)
	}
}

func TestBoardCanvas_WheelZoomsIn(t *testing.T) {
	b := newTestBoard(t)
	b.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(200, 150)}, Scrolled: fyne.Delta{DY: 10}})
	if z := b.Engine().Viewport().Zoom; z <= 1 {
		t.Fatalf("wheel up should zoom in, zoom %v", z)
	}
}
