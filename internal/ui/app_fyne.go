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
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"inkboard/internal/assets"
	"inkboard/internal/clipboard"
	"inkboard/internal/config"
	"inkboard/internal/crash"
	"inkboard/internal/engine"
	applog "inkboard/internal/log"
	"inkboard/internal/version"
)

// zoomStep is the factor applied by the zoom menu entries.
const zoomStep = 1.25

// Run opens the board window and blocks until it closes.
func Run(cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	loader, err := assets.Open(context.Background(), cfg.Assets.CachePath, cfg.Assets.MaxBytes, cfg.Assets.MemoryEntries)
	if err != nil {
		return fmt.Errorf("open asset cache: %w", err)
	}
	defer func() {
		if cerr := loader.Close(); cerr != nil {
			l.Warn("close asset cache", slog.Any("err", cerr))
		}
	}()

	opts := engine.OptionsFromConfig(cfg)
	opts.Assets = loader
	opts.Clipboard = clipboard.Default()
	board := NewBoardCanvas(opts)
	eng := board.Engine()
	defer crash.Recover("", eng)

	fyneApp := app.NewWithID("dev.inkboard")
	w := fyneApp.NewWindow("Inkboard")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	w.Resize(fyne.NewSize(float32(max(winW, 640)), float32(max(winH, 480))))

	status := widget.NewLabel("")
	tools := widget.NewRadioGroup(toolNames(), func(s string) {
		if s != "" && !eng.SetTool(engine.Tool(s)) {
			l.Debug("tool switch refused", slog.String("tool", s))
		}
		board.Refresh()
	})
	tools.Horizontal = true
	tools.Required = true
	tools.SetSelected(string(eng.Tool()))

	board.OnFrame = func() {
		if cur := string(eng.Tool()); tools.Selected != cur {
			tools.SetSelected(cur)
		}
		status.SetText(statusLine(eng))
	}

	w.SetMainMenu(buildMenu(board))
	w.SetOnDropped(board.Drop)

	for _, sc := range []*desktop.CustomShortcut{
		{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault},
	} {
		w.Canvas().AddShortcut(sc, func(s fyne.Shortcut) { board.Do(actionFor(s)) })
	}

	w.SetContent(container.NewBorder(tools, status, nil, nil, board))
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})
	w.Canvas().Focus(board)
	w.ShowAndRun()
	l.Info("UI closed", slog.Int("objects", eng.Len()))
	return nil
}

func toolNames() []string {
	out := make([]string, len(engine.Tools))
	for i, t := range engine.Tools {
		out[i] = string(t)
	}
	return out
}

func statusLine(e *engine.Engine) string {
	u, r := e.History()
	return fmt.Sprintf("%s | %d objects | %d selected | zoom %.0f%% | undo %d redo %d",
		e.Mode(), e.Len(), len(e.Selection()), e.Viewport().Zoom*100, u, r)
}

func buildMenu(b *BoardCanvas) *fyne.MainMenu {
	eng := b.Engine()
	item := func(label string, a action) *fyne.MenuItem {
		return fyne.NewMenuItem(label, func() { b.Do(a) })
	}
	undo := item("Undo", actionUndo)
	undo.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redo := item("Redo", actionRedo)
	redo.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}
	del := fyne.NewMenuItem("Delete", func() { eng.DeleteObjects(eng.Selection()...) })
	front := fyne.NewMenuItem("Bring to Front", func() { _ = eng.BringToFront(eng.Selection()...) })
	back := fyne.NewMenuItem("Send to Back", func() { _ = eng.SendToBack(eng.Selection()...) })
	edit := fyne.NewMenu("Edit",
		undo, redo,
		fyne.NewMenuItemSeparator(),
		item("Cut", actionCut), item("Copy", actionCopy), item("Paste", actionPaste),
		item("Select All", actionSelectAll), del,
		fyne.NewMenuItemSeparator(),
		front, back,
	)

	center := func() (float64, float64) {
		w, h := eng.Size()
		return w / 2, h / 2
	}
	zoomIn := fyne.NewMenuItem("Zoom In", func() {
		x, y := center()
		eng.ZoomAt(x, y, eng.Viewport().Zoom*zoomStep)
	})
	zoomOut := fyne.NewMenuItem("Zoom Out", func() {
		x, y := center()
		eng.ZoomAt(x, y, eng.Viewport().Zoom/zoomStep)
	})
	reset := fyne.NewMenuItem("Actual Size", func() {
		x, y := center()
		eng.ZoomAt(x, y, 1)
	})
	fit := fyne.NewMenuItem("Fit Content", func() { eng.FitContent(40) })
	view := fyne.NewMenu("View", zoomIn, zoomOut, reset, fit)

	return fyne.NewMainMenu(edit, view)
}
