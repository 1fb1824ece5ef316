/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package replay

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"inkboard/internal/engine"
	applog "inkboard/internal/log"
	"inkboard/internal/render"
)

// DefaultDragSteps is how many moves a drag step is split into.
const DefaultDragSteps = 10

// Result summarizes a replay.
type Result struct {
	Steps   int
	Frames  int
	Objects int
	Undo    int
	Redo    int
}

// Player feeds a script into an engine. Relative drop paths resolve against
// Dir. Step times advance by Interval from Start so strokes carry stable
// timestamps.
type Player struct {
	Engine   *engine.Engine
	Dir      string
	Start    time.Time
	Interval time.Duration

	log   *slog.Logger
	clock time.Time
}

// NewPlayer returns a player with a fixed clock.
func NewPlayer(e *engine.Engine, dir string) *Player {
	return &Player{
		Engine:   e,
		Dir:      dir,
		Start:    time.Unix(0, 0).UTC(),
		Interval: 8 * time.Millisecond,
		log:      applog.WithComponent("replay"),
	}
}

// Run plays every step, ticking the engine's frame scheduler after each
// one. It stops at the first step that cannot be applied.
func (p *Player) Run(ctx context.Context, s Script) (Result, error) {
	e := p.Engine
	if s.Width > 0 && s.Height > 0 {
		e.Resize(s.Width, s.Height)
	}
	p.clock = p.Start
	var res Result
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := p.step(ctx, st); err != nil {
			return res, Error{Line: st.Line, Message: fmt.Sprintf("step %d (%s): %v", i+1, st.Op, err)}
		}
		res.Steps++
		res.Frames += e.Tick()
	}
	res.Objects = e.Len()
	res.Undo, res.Redo = e.History()
	p.log.Info("replay finished",
		slog.Int("steps", res.Steps),
		slog.Int("frames", res.Frames),
		slog.Int("objects", res.Objects))
	return res, nil
}

func (p *Player) now() time.Time {
	p.clock = p.clock.Add(p.Interval)
	return p.clock
}

func (p *Player) pointer(x, y float64, st Step) engine.Pointer {
	b, _ := buttonByName(st.Button)
	m, _ := modifiers(st.Mods)
	return engine.Pointer{X: x, Y: y, Button: b, Mods: m, Time: p.now()}
}

func (p *Player) step(ctx context.Context, st Step) error {
	e := p.Engine
	switch st.Op {
	case OpDown:
		e.PointerDown(p.pointer(st.X, st.Y, st))
	case OpMove:
		e.PointerMove(p.pointer(st.X, st.Y, st))
	case OpUp:
		e.PointerUp(p.pointer(st.X, st.Y, st))
	case OpClick:
		e.PointerDown(p.pointer(st.X, st.Y, st))
		e.PointerUp(p.pointer(st.X, st.Y, st))
	case OpDrag:
		n := st.N
		if n <= 0 {
			n = DefaultDragSteps
		}
		e.PointerDown(p.pointer(st.X, st.Y, st))
		for i := 1; i <= n; i++ {
			f := float64(i) / float64(n)
			e.PointerMove(p.pointer(st.X+(st.To.X-st.X)*f, st.Y+(st.To.Y-st.Y)*f, st))
		}
		e.PointerUp(p.pointer(st.To.X, st.To.Y, st))
	case OpDoubleClick:
		e.DoubleClick(p.pointer(st.X, st.Y, st))
	case OpLeave:
		e.PointerLeave()
	case OpKey:
		k, _ := KeyByName(st.Key)
		m, _ := modifiers(st.Mods)
		e.KeyDown(k, m)
	case OpKeyUp:
		k, _ := KeyByName(st.Key)
		e.KeyUp(k)
	case OpWheel:
		e.Scroll(st.X, st.Y, st.DY)
	case OpTool:
		if !e.SetTool(engine.Tool(st.Tool)) {
			return fmt.Errorf("tool %q refused in mode %s", st.Tool, e.Mode())
		}
	case OpType:
		e.TypeText(st.Text)
	case OpCommit:
		e.CommitText()
	case OpUndo:
		e.Undo()
	case OpRedo:
		e.Redo()
	case OpCopy:
		return e.Copy()
	case OpCut:
		return e.Cut()
	case OpPaste:
		_, err := e.Paste()
		return err
	case OpSelectAll:
		e.SelectAll()
	case OpDrop:
		data := []byte(st.Text)
		if st.File != "" {
			path := st.File
			if !filepath.IsAbs(path) {
				path = filepath.Join(p.Dir, path)
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read drop: %w", err)
			}
			data = b
		}
		// rejected payloads are ignored, as for a real drop
		e.DropFile(ctx, st.X, st.Y, data)
	case OpZoom:
		e.ZoomAt(st.X, st.Y, st.Zoom)
	case OpPan:
		e.SetPan(st.X, st.Y)
	case OpFit:
		e.FitContent(st.X)
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

// Snapshot renders the board at its current size. Images still loading are
// awaited so the result has no placeholders.
func Snapshot(e *engine.Engine) image.Image {
	w, h := e.Size()
	s := render.NewGGSurface(int(w), int(h), nil)
	if st := e.Render(s); st.Pending > 0 {
		e.Assets().Wait()
		e.Render(s)
	}
	return s.Image()
}

// WritePNG renders the board into a PNG file, creating parent folders.
func WritePNG(e *engine.Engine, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure out dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, Snapshot(e)); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}
