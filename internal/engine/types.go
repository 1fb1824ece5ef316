/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import "time"

// Tool is the active drawing tool.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolPan       Tool = "pan"
	ToolPen       Tool = "pen"
	ToolRectangle Tool = "rectangle"
	ToolEllipse   Tool = "ellipse"
	ToolLine      Tool = "line"
	ToolEraser    Tool = "eraser"
	ToolText      Tool = "text"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolSelect, ToolPan, ToolPen, ToolRectangle, ToolEllipse, ToolLine, ToolEraser, ToolText}

func (t Tool) Valid() bool {
	for _, k := range Tools {
		if k == t {
			return true
		}
	}
	return false
}

// navigation tools never create objects
func (t Tool) navigates() bool { return t == ToolSelect || t == ToolPan }

func (t Tool) shape() bool { return t == ToolRectangle || t == ToolEllipse || t == ToolLine }

// Mode is the live interaction state. Exactly one is active at a time.
type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeDrawing
	ModeDrafting
	ModeDragging
	ModeMarquee
	ModeResizing
	ModeRotating
	ModeErasing
	ModeTextEditing
)

var modeNames = [...]string{"idle", "panning", "drawing", "drafting", "dragging", "marquee", "resizing", "rotating", "erasing", "textEditing"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers are the keyboard modifiers held during an event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
}

// Pointer is a pointer event in screen pixels.
type Pointer struct {
	X, Y   float64
	Button Button
	Mods   Modifiers
	// Time stamps stroke samples; zero means now.
	Time time.Time
}

// Key names the keys the engine reacts to.
type Key string

const (
	KeyDelete    Key = "Delete"
	KeyBackspace Key = "BackSpace"
	KeySpace     Key = "Space"
	KeyEscape    Key = "Escape"
	KeyEnter     Key = "Return"
	KeyLeft      Key = "Left"
	KeyRight     Key = "Right"
	KeyUp        Key = "Up"
	KeyDown      Key = "Down"
)
