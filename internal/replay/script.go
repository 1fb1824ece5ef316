/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package replay drives an engine from a recorded YAML script of input
// events. It backs the replay command and end-to-end tests.
package replay

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"inkboard/internal/engine"
)

// Op names one scripted input.
type Op string

const (
	OpDown        Op = "down"
	OpMove        Op = "move"
	OpUp          Op = "up"
	OpClick       Op = "click"
	OpDrag        Op = "drag"
	OpDoubleClick Op = "dblclick"
	OpLeave       Op = "leave"
	OpKey         Op = "key"
	OpKeyUp       Op = "keyup"
	OpWheel       Op = "wheel"
	OpTool        Op = "tool"
	OpType        Op = "type"
	OpCommit      Op = "commit"
	OpUndo        Op = "undo"
	OpRedo        Op = "redo"
	OpCopy        Op = "copy"
	OpCut         Op = "cut"
	OpPaste       Op = "paste"
	OpSelectAll   Op = "select_all"
	OpDrop        Op = "drop"
	OpZoom        Op = "zoom"
	OpPan         Op = "pan"
	OpFit         Op = "fit"
)

var knownOps = map[Op]bool{
	OpDown: true, OpMove: true, OpUp: true, OpClick: true, OpDrag: true,
	OpDoubleClick: true, OpLeave: true, OpKey: true, OpKeyUp: true,
	OpWheel: true, OpTool: true, OpType: true, OpCommit: true, OpUndo: true,
	OpRedo: true, OpCopy: true, OpCut: true, OpPaste: true, OpSelectAll: true,
	OpDrop: true, OpZoom: true, OpPan: true, OpFit: true,
}

// Script is a board size plus the steps to play on it.
type Script struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Steps  []Step  `yaml:"steps"`
}

// Step is one input. Coordinates are screen pixels.
type Step struct {
	Op     Op       `yaml:"op"`
	X      float64  `yaml:"x"`
	Y      float64  `yaml:"y"`
	To     *Point   `yaml:"to,omitempty"`
	N      int      `yaml:"n,omitempty"`
	Button string   `yaml:"button,omitempty"`
	Mods   []string `yaml:"mods,omitempty"`
	Key    string   `yaml:"key,omitempty"`
	DY     float64  `yaml:"dy,omitempty"`
	Tool   string   `yaml:"tool,omitempty"`
	Text   string   `yaml:"text,omitempty"`
	File   string   `yaml:"file,omitempty"`
	Zoom   float64  `yaml:"zoom,omitempty"`

	// Line is the 1-based source line of the step.
	Line int `yaml:"-"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Error is a script problem with its source line.
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

var keyAliases = map[string]engine.Key{
	"delete":    engine.KeyDelete,
	"backspace": engine.KeyBackspace,
	"space":     engine.KeySpace,
	"escape":    engine.KeyEscape,
	"esc":       engine.KeyEscape,
	"enter":     engine.KeyEnter,
	"return":    engine.KeyEnter,
	"left":      engine.KeyLeft,
	"right":     engine.KeyRight,
	"up":        engine.KeyUp,
	"down":      engine.KeyDown,
}

// KeyByName resolves a key name case-insensitively.
func KeyByName(name string) (engine.Key, bool) {
	k, ok := keyAliases[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

func buttonByName(name string) (engine.Button, bool) {
	switch strings.ToLower(name) {
	case "", "left", "primary":
		return engine.ButtonPrimary, true
	case "middle":
		return engine.ButtonMiddle, true
	case "right", "secondary":
		return engine.ButtonSecondary, true
	}
	return 0, false
}

func modifiers(names []string) (engine.Modifiers, error) {
	var m engine.Modifiers
	for _, n := range names {
		switch strings.ToLower(n) {
		case "shift":
			m.Shift = true
		case "ctrl", "control":
			m.Ctrl = true
		case "alt", "option":
			m.Alt = true
		case "meta", "cmd", "super":
			m.Meta = true
		default:
			return m, fmt.Errorf("unknown modifier %q", n)
		}
	}
	return m, nil
}

// Parse decodes a script and checks every step. All problems are reported,
// each with the line it was found on.
func Parse(data []byte) (Script, []Error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Script{}, []Error{{Message: err.Error()}}
	}
	var s Script
	if err := root.Decode(&s); err != nil {
		return Script{}, []Error{{Message: err.Error()}}
	}
	if items := stepNodes(&root); len(items) == len(s.Steps) {
		for i, n := range items {
			s.Steps[i].Line = n.Line
		}
	}
	var errs []Error
	if s.Width < 0 || s.Height < 0 {
		errs = append(errs, Error{Message: "negative board size"})
	}
	for _, st := range s.Steps {
		if err := validate(st); err != nil {
			errs = append(errs, Error{Line: st.Line, Message: err.Error()})
		}
	}
	return s, errs
}

func stepNodes(root *yaml.Node) []*yaml.Node {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "steps" && doc.Content[i+1].Kind == yaml.SequenceNode {
			return doc.Content[i+1].Content
		}
	}
	return nil
}

func validate(st Step) error {
	if !knownOps[st.Op] {
		return fmt.Errorf("unknown op %q", st.Op)
	}
	if _, ok := buttonByName(st.Button); !ok {
		return fmt.Errorf("unknown button %q", st.Button)
	}
	if _, err := modifiers(st.Mods); err != nil {
		return err
	}
	switch st.Op {
	case OpKey, OpKeyUp:
		if _, ok := KeyByName(st.Key); !ok {
			return fmt.Errorf("unknown key %q", st.Key)
		}
	case OpTool:
		if !engine.Tool(st.Tool).Valid() {
			return fmt.Errorf("unknown tool %q", st.Tool)
		}
	case OpDrag:
		if st.To == nil {
			return errors.New("drag needs a 'to' point")
		}
	case OpDrop:
		if st.File == "" && st.Text == "" {
			return errors.New("drop needs a file or inline text")
		}
	case OpZoom:
		if st.Zoom <= 0 {
			return errors.New("zoom must be positive")
		}
	case OpWheel:
		if st.DY == 0 {
			return errors.New("wheel needs a non-zero dy")
		}
	}
	return nil
}

// Load reads and parses a script file.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	s, errs := Parse(data)
	if len(errs) > 0 {
		all := make([]error, len(errs))
		for i := range errs {
			all[i] = errs[i]
		}
		return Script{}, fmt.Errorf("%s: %w", path, errors.Join(all...))
	}
	return s, nil
}
