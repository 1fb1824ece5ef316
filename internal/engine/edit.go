/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"fmt"
	"log/slog"

	"inkboard/internal/clipboard"
	"inkboard/internal/object"
	"inkboard/internal/undo"
	"inkboard/internal/viewport"
)

func (e *Engine) snapshot(label string) undo.Snapshot {
	return undo.Snapshot{
		Objects:   e.store.Snapshot(),
		Selection: append([]string(nil), e.selection...),
		Version:   e.store.Version(),
		Label:     label,
		TS:        e.opts.Now(),
	}
}

// step runs one discrete mutation and records a single history entry for it
// when it changed the store. Inside an open transaction the entry is
// absorbed by the transaction. Consecutive steps sharing a non-empty
// coalesce key within NudgeCoalesce merge into one entry.
func (e *Engine) step(coalesce string, fn func() error) error {
	before := e.snapshot(coalesce)
	if err := fn(); err != nil {
		return err
	}
	if e.store.Version() != before.Version {
		e.hist.Push(before)
	}
	e.afterMutation()
	return nil
}

// afterMutation keeps the selection a subset of live ids and asks for a frame.
func (e *Engine) afterMutation() {
	e.pruneSelection()
	e.RequestFrame()
}

func (e *Engine) pruneSelection() {
	kept := e.selection[:0]
	for _, id := range e.selection {
		if e.store.Has(id) {
			kept = append(kept, id)
		}
	}
	e.selection = kept
}

// AddObject inserts o on top of the paint order as one history step. An empty
// id is assigned.
func (e *Engine) AddObject(o object.Object) (string, error) {
	if o.ID == "" {
		o.ID = object.NewID()
	}
	err := e.step("", func() error { return e.store.Add(o) })
	if err != nil {
		return "", err
	}
	return o.ID, nil
}

// UpdateObject applies a partial change as one history step.
func (e *Engine) UpdateObject(id string, p object.Patch) error {
	if !e.store.Has(id) {
		return fmt.Errorf("%w: %s", object.ErrNotFound, id)
	}
	return e.step("", func() error { return e.store.Update(id, p) })
}

// DeleteObjects removes ids as one history step and returns how many existed.
func (e *Engine) DeleteObjects(ids ...string) int {
	n := 0
	_ = e.step("", func() error {
		n = e.store.Delete(ids...)
		return nil
	})
	if n > 0 {
		e.log.Debug("deleted objects", slog.Int("count", n))
	}
	return n
}

// SetSelection replaces the selection with the live, unique ids given.
func (e *Engine) SetSelection(ids ...string) {
	sel := make([]string, 0, len(ids))
	for _, id := range ids {
		if e.store.Has(id) && indexOf(sel, id) < 0 {
			sel = append(sel, id)
		}
	}
	e.selection = sel
	e.RequestFrame()
}

// SelectAll selects every visible, unlocked object.
func (e *Engine) SelectAll() {
	var ids []string
	for _, o := range e.store.Objects() {
		if o.Visible && !o.Locked {
			ids = append(ids, o.ID)
		}
	}
	e.SetSelection(ids...)
}

// SetZoom sets the zoom within the configured bounds, keeping pan.
func (e *Engine) SetZoom(z float64) {
	e.view.SetZoom(e.clampZoom(z))
	e.RequestFrame()
}

// SetPan places the world origin at screen x,y.
func (e *Engine) SetPan(x, y float64) {
	e.view.SetPan(x, y)
	e.RequestFrame()
}

// ZoomAt zooms keeping the world point under the screen cursor fixed.
func (e *Engine) ZoomAt(sx, sy, z float64) {
	e.view.ZoomAt(vec(sx, sy), e.clampZoom(z))
	e.RequestFrame()
}

// Scroll handles a wheel event at a screen position. Negative dy zooms in.
func (e *Engine) Scroll(sx, sy, dy float64) {
	if dy == 0 {
		return
	}
	v := e.view
	v.Wheel(vec(sx, sy), dy)
	e.ZoomAt(sx, sy, v.Zoom)
}

// FitContent zooms to show every object.
func (e *Engine) FitContent(margin float64) {
	objs := e.store.Objects()
	if len(objs) == 0 {
		return
	}
	r := object.Envelope(objs[0])
	for _, o := range objs[1:] {
		r = r.Union(object.Envelope(o))
	}
	e.view.Fit(r, e.width, e.height, margin)
	e.view.ZoomAt(vec(e.width/2, e.height/2), e.clampZoom(e.view.Zoom))
	e.RequestFrame()
}

func (e *Engine) clampZoom(z float64) float64 {
	z = max(e.opts.Canvas.MinZoom, min(e.opts.Canvas.MaxZoom, z))
	return viewport.Clamp(z)
}

// BeginTransaction opens a history transaction; nested calls are counted.
func (e *Engine) BeginTransaction() {
	e.hist.Begin(e.snapshot("transaction"))
}

// EndTransaction closes one transaction level. The outermost close records
// one history entry if anything changed. It reports whether it did.
func (e *Engine) EndTransaction() bool {
	return e.hist.Commit(e.store.Version())
}

// Undo restores the previous state. It is refused while a gesture or
// transaction is live and returns false when there is nothing to undo.
func (e *Engine) Undo() bool {
	if !e.historyReady() {
		return false
	}
	s, ok := e.hist.Undo(e.snapshot(""))
	if !ok {
		return false
	}
	e.restore(s)
	return true
}

// Redo re-applies the last undone state.
func (e *Engine) Redo() bool {
	if !e.historyReady() {
		return false
	}
	s, ok := e.hist.Redo(e.snapshot(""))
	if !ok {
		return false
	}
	e.restore(s)
	return true
}

func (e *Engine) historyReady() bool {
	if e.mode == ModeTextEditing {
		e.CommitText()
	}
	return e.mode == ModeIdle && !e.hist.InTransaction()
}

func (e *Engine) restore(s undo.Snapshot) {
	e.store.Restore(s.Objects)
	e.selection = append([]string(nil), s.Selection...)
	e.afterMutation()
}

// selectedObjects returns the selected objects in paint order.
func (e *Engine) selectedObjects() []object.Object {
	var out []object.Object
	for _, o := range e.store.Objects() {
		if e.IsSelected(o.ID) {
			out = append(out, object.Clone(o))
		}
	}
	return out
}

// Copy puts the selection on the clipboard.
func (e *Engine) Copy() error {
	objs := e.selectedObjects()
	if len(objs) == 0 {
		return nil
	}
	if err := clipboard.Copy(e.opts.Clipboard, objs); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	e.pastes = 0
	return nil
}

// Cut copies then deletes the selection.
func (e *Engine) Cut() error {
	if err := e.Copy(); err != nil {
		return err
	}
	e.DeleteObjects(e.selection...)
	return nil
}

// Paste inserts clipboard objects under fresh ids, offset from the copied
// position, as one history step, and selects them.
func (e *Engine) Paste() ([]string, error) {
	objs, err := clipboard.Paste(e.opts.Clipboard)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, nil
	}
	e.pastes++
	off := float64(PasteOffset * e.pastes)
	ids := make([]string, 0, len(objs))
	err = e.step("", func() error {
		for _, o := range objs {
			o.ID = object.NewID()
			o.Locked = false
			object.Translate(&o, off, off)
			if err := e.store.Add(o); err != nil {
				return err
			}
			ids = append(ids, o.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.SetSelection(ids...)
	return ids, nil
}

// BringToFront moves ids to the top of the paint order, keeping their
// relative order.
func (e *Engine) BringToFront(ids ...string) error {
	return e.step("", func() error {
		for _, o := range e.orderedSubset(ids) {
			if err := e.store.MoveTo(o, e.store.Len()-1); err != nil {
				return err
			}
		}
		return nil
	})
}

// SendToBack moves ids to the bottom of the paint order, keeping their
// relative order.
func (e *Engine) SendToBack(ids ...string) error {
	return e.step("", func() error {
		sub := e.orderedSubset(ids)
		for i := len(sub) - 1; i >= 0; i-- {
			if err := e.store.MoveTo(sub[i], 0); err != nil {
				return err
			}
		}
		return nil
	})
}

// orderedSubset returns the live ids among ids in paint order.
func (e *Engine) orderedSubset(ids []string) []string {
	var out []string
	for _, id := range e.store.IDs() {
		if indexOf(ids, id) >= 0 {
			out = append(out, id)
		}
	}
	return out
}

// Nudge moves the selection by dx,dy world units. Repeated nudges within
// NudgeCoalesce form one history step.
func (e *Engine) Nudge(dx, dy float64) {
	if len(e.selection) == 0 || e.mode != ModeIdle {
		return
	}
	_ = e.step("nudge", func() error {
		for _, o := range e.selectedObjects() {
			if o.Locked {
				continue
			}
			object.Translate(&o, dx, dy)
			if err := e.store.Replace(o); err != nil {
				return err
			}
		}
		return nil
	})
}
