/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

// KeyDown handles a key press and reports whether the engine consumed it.
// Undo/redo and clipboard shortcuts belong to the host.
func (e *Engine) KeyDown(k Key, mods Modifiers) bool {
	if e.mode == ModeTextEditing {
		return e.editKey(k, mods)
	}
	switch k {
	case KeySpace:
		if !e.spaceHeld {
			e.spaceHeld = true
			e.RequestFrame()
		}
		return true
	case KeyEscape:
		e.Cancel()
		return true
	case KeyDelete, KeyBackspace:
		if e.mode != ModeIdle || len(e.selection) == 0 {
			return false
		}
		e.DeleteObjects(e.selection...)
		return true
	case KeyLeft, KeyRight, KeyUp, KeyDown:
		if len(e.selection) == 0 {
			return false
		}
		step := 1.0
		if mods.Shift {
			step = 10
		}
		dx, dy := 0.0, 0.0
		switch k {
		case KeyLeft:
			dx = -step
		case KeyRight:
			dx = step
		case KeyUp:
			dy = -step
		case KeyDown:
			dy = step
		}
		e.Nudge(dx, dy)
		return true
	}
	return false
}

// KeyUp ends transient space panning.
func (e *Engine) KeyUp(k Key) {
	if k == KeySpace && e.spaceHeld {
		e.spaceHeld = false
		e.RequestFrame()
	}
}

// SpaceHeld reports whether transient pan is armed.
func (e *Engine) SpaceHeld() bool { return e.spaceHeld }
