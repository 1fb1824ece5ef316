/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"strings"
	"unicode/utf8"

	"inkboard/internal/object"
	"inkboard/internal/vector"
)

type textEdit struct {
	id      string
	created bool
	draft   string
}

// TextOverlay places the host's text input over the object being edited.
// Positions and sizes are in screen pixels.
type TextOverlay struct {
	ID         string
	X, Y       float64
	Width      float64
	FontSize   float64
	FontFamily string
	Color      string
	Rotation   float64
	Text       string
}

// placeText creates an empty text object at w and starts editing it. The
// creation and the typed text become one history entry on commit.
func (e *Engine) placeText(w vector.Pt) {
	t := e.opts.Tools
	o := object.NewText(w.X, w.Y, "", object.Style{Color: t.TextColor, FontSize: t.TextSize, FontFamily: t.TextFont})
	e.hist.Begin(e.snapshot(""))
	if err := e.store.Add(o); err != nil {
		e.hist.Cancel()
		return
	}
	e.edit = &textEdit{id: o.ID, created: true}
	e.selection = nil
	e.enter(ModeTextEditing)
}

// EditText opens an existing, unlocked text object for editing.
func (e *Engine) EditText(id string) bool {
	if e.mode == ModeTextEditing {
		e.CommitText()
	}
	if e.mode != ModeIdle {
		return false
	}
	o, ok := e.store.Get(id)
	if !ok || o.Kind != object.KindText || o.Locked {
		return false
	}
	e.hist.Begin(e.snapshot(""))
	e.edit = &textEdit{id: id, draft: o.Text}
	e.enter(ModeTextEditing)
	e.RequestFrame()
	return true
}

// DoubleClick opens the text object under the pointer for editing.
func (e *Engine) DoubleClick(ev Pointer) bool {
	if e.mode != ModeIdle && e.mode != ModeTextEditing {
		return false
	}
	id, ok := e.hit(e.view.ScreenToWorld(ev.X, ev.Y))
	if !ok {
		return false
	}
	return e.EditText(id)
}

// Editing reports the id under edit.
func (e *Engine) Editing() (string, bool) {
	if e.edit == nil {
		return "", false
	}
	return e.edit.id, true
}

// SetEditText replaces the draft text; hosts call it as their input changes.
func (e *Engine) SetEditText(s string) {
	if e.edit == nil {
		return
	}
	e.edit.draft = s
	e.RequestFrame()
}

// TypeText appends to the draft.
func (e *Engine) TypeText(s string) {
	if e.edit == nil {
		return
	}
	e.edit.draft += s
	e.RequestFrame()
}

func (e *Engine) editKey(k Key, mods Modifiers) bool {
	switch k {
	case KeyEscape:
		e.CancelText()
	case KeyBackspace:
		if d := e.edit.draft; d != "" {
			_, n := utf8.DecodeLastRuneInString(d)
			e.edit.draft = d[:len(d)-n]
			e.RequestFrame()
		}
	case KeyEnter:
		if mods.Ctrl || mods.Meta {
			e.CommitText()
		} else {
			e.TypeText("\n")
		}
	default:
		return false
	}
	return true
}

// CommitText writes the draft back. An empty draft deletes the object; a new
// object left empty leaves no trace in history.
func (e *Engine) CommitText() {
	ed := e.edit
	if ed == nil {
		return
	}
	e.edit = nil
	empty := strings.TrimSpace(ed.draft) == ""
	switch {
	case empty && ed.created:
		e.store.Delete(ed.id)
		e.hist.Cancel()
	case empty:
		e.store.Delete(ed.id)
		e.hist.Commit(e.store.Version())
	default:
		if o, ok := e.store.Get(ed.id); ok && o.Text != ed.draft {
			o.Text = ed.draft
			_ = e.store.Replace(o)
		}
		e.hist.Commit(e.store.Version())
	}
	e.leave()
	e.afterMutation()
}

// CancelText abandons the edit; a freshly placed object is removed.
func (e *Engine) CancelText() {
	ed := e.edit
	if ed == nil {
		return
	}
	e.edit = nil
	if ed.created {
		e.store.Delete(ed.id)
	}
	e.hist.Cancel()
	e.leave()
	e.afterMutation()
}

// TextOverlay describes where the host should show its input.
func (e *Engine) TextOverlay() (TextOverlay, bool) {
	if e.edit == nil {
		return TextOverlay{}, false
	}
	o, ok := e.store.Get(e.edit.id)
	if !ok {
		return TextOverlay{}, false
	}
	sx, sy := e.view.WorldToScreen(vector.Pt{X: o.X, Y: o.Y})
	z := e.view.Zoom
	return TextOverlay{
		ID:         o.ID,
		X:          sx,
		Y:          sy,
		Width:      o.Width * z,
		FontSize:   o.FontSize * z,
		FontFamily: o.FontFamily,
		Color:      o.Color,
		Rotation:   o.Rotation,
		Text:       e.edit.draft,
	}, true
}
