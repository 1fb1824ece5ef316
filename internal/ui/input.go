/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"inkboard/internal/engine"
)

// action is a host-owned command reached through a shortcut or menu.
type action int

const (
	actionNone action = iota
	actionUndo
	actionRedo
	actionCopy
	actionCut
	actionPaste
	actionSelectAll
)

func modsFrom(m fyne.KeyModifier) engine.Modifiers {
	return engine.Modifiers{
		Shift: m&fyne.KeyModifierShift != 0,
		Ctrl:  m&fyne.KeyModifierControl != 0,
		Alt:   m&fyne.KeyModifierAlt != 0,
		Meta:  m&fyne.KeyModifierSuper != 0,
	}
}

func buttonFrom(b desktop.MouseButton) (engine.Button, bool) {
	switch {
	case b&desktop.MouseButtonPrimary != 0:
		return engine.ButtonPrimary, true
	case b&desktop.MouseButtonTertiary != 0:
		return engine.ButtonMiddle, true
	case b&desktop.MouseButtonSecondary != 0:
		return engine.ButtonSecondary, true
	}
	return 0, false
}

// keyFrom maps the keys the engine reacts to; engine key names follow fyne's.
func keyFrom(name fyne.KeyName) (engine.Key, bool) {
	switch name {
	case fyne.KeyDelete, fyne.KeyBackspace, fyne.KeySpace, fyne.KeyEscape,
		fyne.KeyReturn, fyne.KeyLeft, fyne.KeyRight, fyne.KeyUp, fyne.KeyDown:
		return engine.Key(name), true
	case fyne.KeyEnter:
		return engine.KeyEnter, true
	}
	return "", false
}

func isShiftKey(name fyne.KeyName) bool {
	return name == desktop.KeyShiftLeft || name == desktop.KeyShiftRight
}

var toolKeys = map[rune]engine.Tool{
	'v': engine.ToolSelect,
	'h': engine.ToolPan,
	'p': engine.ToolPen,
	'r': engine.ToolRectangle,
	'o': engine.ToolEllipse,
	'l': engine.ToolLine,
	'e': engine.ToolEraser,
	't': engine.ToolText,
}

// toolForRune resolves single-letter tool hotkeys.
func toolForRune(r rune) (engine.Tool, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	t, ok := toolKeys[r]
	return t, ok
}

func actionFor(s fyne.Shortcut) action {
	switch sc := s.(type) {
	case *fyne.ShortcutUndo:
		return actionUndo
	case *fyne.ShortcutRedo:
		return actionRedo
	case *fyne.ShortcutCopy:
		return actionCopy
	case *fyne.ShortcutCut:
		return actionCut
	case *fyne.ShortcutPaste:
		return actionPaste
	case *fyne.ShortcutSelectAll:
		return actionSelectAll
	case *desktop.CustomShortcut:
		if sc.Modifier&(fyne.KeyModifierControl|fyne.KeyModifierSuper) == 0 {
			return actionNone
		}
		switch sc.KeyName {
		case fyne.KeyZ:
			if sc.Modifier&fyne.KeyModifierShift != 0 {
				return actionRedo
			}
			return actionUndo
		case fyne.KeyY:
			return actionRedo
		}
	}
	return actionNone
}

// apply runs a host command against the engine.
func apply(e *engine.Engine, a action) error {
	switch a {
	case actionUndo:
		e.Undo()
	case actionRedo:
		e.Redo()
	case actionCopy:
		return e.Copy()
	case actionCut:
		return e.Cut()
	case actionPaste:
		_, err := e.Paste()
		return err
	case actionSelectAll:
		e.SelectAll()
	}
	return nil
}
