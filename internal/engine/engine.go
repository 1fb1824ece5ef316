/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package engine owns the board: object store, selection, viewport, spatial
// index and history. Input handlers and the mutation surface below are the
// only ways state changes; every change ends with a frame request, never a
// paint.
//
// An Engine is not safe for concurrent use. Hosts call it from their UI
// goroutine; the only cross-goroutine entry point is RequestFrame.
package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"inkboard/internal/assets"
	"inkboard/internal/clipboard"
	"inkboard/internal/component"
	"inkboard/internal/config"
	applog "inkboard/internal/log"
	"inkboard/internal/object"
	"inkboard/internal/render"
	"inkboard/internal/snap"
	"inkboard/internal/spatial"
	"inkboard/internal/undo"
	"inkboard/internal/vector"
	"inkboard/internal/viewport"
)

// NudgeCoalesce merges arrow-key nudges repeated within this window into one
// history step.
const NudgeCoalesce = 750 * time.Millisecond

// PasteOffset shifts each successive paste of the same clipboard content.
const PasteOffset = 20

// Options wires an Engine.
type Options struct {
	Canvas config.CanvasConfig
	Tools  config.ToolsConfig

	Assets     *assets.Loader
	Rasterizer component.Rasterizer
	Clipboard  clipboard.Clipboard
	// Scheduler drives frame coalescing; nil uses a ManualScheduler.
	Scheduler render.Scheduler
	// OnFrame is called once per coalesced frame.
	OnFrame func()
	Now     func() time.Time
}

// OptionsFromConfig fills the canvas and tool settings from cfg.
func OptionsFromConfig(cfg config.AppConfig) Options {
	return Options{Canvas: cfg.Canvas, Tools: cfg.Tools}
}

// Engine is the interaction and rendering core of one board.
type Engine struct {
	opts Options
	log  *slog.Logger

	store    *object.Store
	index    *spatial.Index
	hist     *undo.Manager
	view     viewport.Viewport
	assets   *assets.Loader
	renderer *render.Renderer
	frames   *render.Coalescer
	manual   *render.ManualScheduler

	selection []string
	tool      Tool
	mode      Mode
	g         gesture
	edit      *textEdit

	spaceHeld  bool
	pointer    vector.Pt
	hasPointer bool
	width      float64
	height     float64
	pastes     int
}

// New builds an engine. Zero-valued canvas settings fall back to the
// configuration defaults.
func New(opts Options) *Engine {
	d := config.Defaults()
	if opts.Canvas == (config.CanvasConfig{}) {
		opts.Canvas = d.Canvas
	}
	if opts.Tools == (config.ToolsConfig{}) {
		opts.Tools = d.Tools
	}
	if opts.Canvas.GridSize <= 0 {
		opts.Canvas.GridSize = d.Canvas.GridSize
	}
	if opts.Canvas.HistoryDepth <= 0 {
		opts.Canvas.HistoryDepth = d.Canvas.HistoryDepth
	}
	if opts.Canvas.RotationSnapDeg <= 0 {
		opts.Canvas.RotationSnapDeg = d.Canvas.RotationSnapDeg
	}
	if opts.Canvas.MinZoom <= 0 || opts.Canvas.MaxZoom < opts.Canvas.MinZoom {
		opts.Canvas.MinZoom, opts.Canvas.MaxZoom = viewport.MinZoom, viewport.MaxZoom
	}
	if opts.Assets == nil {
		opts.Assets = assets.NewLoader(nil, nil)
	}
	if opts.Rasterizer == nil {
		opts.Rasterizer = component.NewBoxRasterizer()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = &clipboard.Memory{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{
		opts:   opts,
		log:    applog.WithComponent("engine"),
		store:  object.NewStore(),
		index:  spatial.New(),
		hist:   undo.NewManager(undo.Config{MaxDepth: opts.Canvas.HistoryDepth, CoalesceWindow: NudgeCoalesce}),
		view:   viewport.New(),
		assets: opts.Assets,
		tool:   ToolSelect,
		width:  800,
		height: 600,
	}
	e.renderer = render.New(opts.Assets)
	sched := opts.Scheduler
	if sched == nil {
		e.manual = &render.ManualScheduler{}
		sched = e.manual
	}
	e.frames = render.NewCoalescer(sched, func() {
		if e.opts.OnFrame != nil {
			e.opts.OnFrame()
		}
	})
	opts.Assets.OnLoad(func(string) { e.RequestFrame() })
	return e
}

// RequestFrame schedules a repaint. Safe from any goroutine.
func (e *Engine) RequestFrame() { e.frames.Request() }

// Tick runs pending frames when the engine owns its scheduler (headless
// use). It reports how many frames ran.
func (e *Engine) Tick() int {
	if e.manual == nil {
		return 0
	}
	return e.manual.Tick()
}

// Frames counts coalesced frames so far.
func (e *Engine) Frames() uint64 { return e.frames.Frames() }

// Render paints the current scene onto s.
func (e *Engine) Render(s render.Surface) render.Stats {
	return e.renderer.Frame(s, e.Scene())
}

// Resize records the drawing surface size in pixels.
func (e *Engine) Resize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	e.width, e.height = w, h
	e.RequestFrame()
}

func (e *Engine) Size() (w, h float64) { return e.width, e.height }

// Scene assembles what the renderer needs for one frame.
func (e *Engine) Scene() render.Scene {
	sc := render.Scene{
		View:       e.view,
		Background: vector.ColorOr(e.opts.Canvas.Background, vector.White),
		Grid: render.Grid{
			Show: e.opts.Canvas.ShowGrid,
			Size: e.opts.Canvas.GridSize,
			Cap:  e.opts.Canvas.GridDotCap,
		},
		Objects:   e.store.Objects(),
		Selection: e.selection,
		Guides:    e.g.guides,
	}
	if e.hasPointer && e.mode == ModeIdle {
		sc.Grid.Magnet.Active = snap.MagnetActive(e.tool.navigates(), e.store.Len())
		sc.Grid.Magnet.Pointer = e.view.ScreenToWorld(e.pointer.X, e.pointer.Y)
	}
	switch e.mode {
	case ModeDrawing:
		if p := e.livePreviewStroke(); p != nil {
			sc.Preview = p
		}
	case ModeDrafting:
		if e.g.draft != nil {
			d := *e.g.draft
			sc.Preview = &d
		}
	case ModeMarquee:
		m := e.g.marquee
		sc.Marquee = &m
	}
	if e.edit != nil {
		sc.Editing = e.edit.id
	}
	return sc
}

// Tool returns the active tool.
func (e *Engine) Tool() Tool { return e.tool }

// SetTool switches tools, committing any text edit first. Unknown tools are
// ignored. Switching during a pointer gesture is refused.
func (e *Engine) SetTool(t Tool) bool {
	if !t.Valid() {
		return false
	}
	if e.mode == ModeTextEditing {
		e.CommitText()
	}
	if e.mode != ModeIdle {
		return false
	}
	e.tool = t
	e.RequestFrame()
	return true
}

// Mode returns the live interaction state.
func (e *Engine) Mode() Mode { return e.mode }

// Viewport returns the current view transform.
func (e *Engine) Viewport() viewport.Viewport { return e.view }

// Len is the number of objects.
func (e *Engine) Len() int { return e.store.Len() }

// Objects returns a deep copy of the objects in paint order.
func (e *Engine) Objects() []object.Object { return e.store.Snapshot() }

// Object returns a copy of one object.
func (e *Engine) Object(id string) (object.Object, bool) { return e.store.Get(id) }

// Selection returns the selected ids.
func (e *Engine) Selection() []string { return append([]string(nil), e.selection...) }

// IsSelected reports whether id is selected.
func (e *Engine) IsSelected(id string) bool { return indexOf(e.selection, id) >= 0 }

func (e *Engine) CanUndo() bool { return e.hist.CanUndo() }
func (e *Engine) CanRedo() bool { return e.hist.CanRedo() }

// History reports the undo and redo depths.
func (e *Engine) History() (undoDepth, redoDepth int) { return e.hist.Stats() }

// Version changes whenever the object list changes.
func (e *Engine) Version() uint64 { return e.store.Version() }

// Assets exposes the asset loader for hosts that preload refs.
func (e *Engine) Assets() *assets.Loader { return e.assets }

// sceneDump is the crash-report form of the board.
type sceneDump struct {
	Tool      Tool              `json:"tool"`
	Mode      string            `json:"mode"`
	Zoom      float64           `json:"zoom"`
	PanX      float64           `json:"panX"`
	PanY      float64           `json:"panY"`
	Selection []string          `json:"selection"`
	Objects   []object.Object   `json:"objects"`
	History   map[string]int    `json:"history"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// DumpScene writes the board as JSON. Crash reports use it.
func (e *Engine) DumpScene(w io.Writer) error {
	u, r := e.hist.Stats()
	d := sceneDump{
		Tool:      e.tool,
		Mode:      e.mode.String(),
		Zoom:      e.view.Zoom,
		PanX:      e.view.PanX,
		PanY:      e.view.PanY,
		Selection: e.Selection(),
		Objects:   e.store.Objects(),
		History:   map[string]int{"undo": u, "redo": r},
	}
	if e.edit != nil {
		d.Extra = map[string]string{"editing": e.edit.id}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("dump scene: %w", err)
	}
	return nil
}

// LoadObjects replaces the board with list, clearing history. Persistence
// collaborators use it to open a document.
func (e *Engine) LoadObjects(list []object.Object) error {
	seen := make(map[string]bool, len(list))
	for _, o := range list {
		if err := object.Validate(o); err != nil {
			return err
		}
		if seen[o.ID] {
			return fmt.Errorf("%w: %s", object.ErrDuplicateID, o.ID)
		}
		seen[o.ID] = true
	}
	e.cancelGesture()
	e.store.Restore(list)
	e.hist.Clear()
	e.selection = nil
	e.RequestFrame()
	return nil
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}
