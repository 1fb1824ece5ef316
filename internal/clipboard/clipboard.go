/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package clipboard moves copied board objects through a text clipboard as a
// versioned JSON envelope.
package clipboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"inkboard/internal/object"
)

const (
	Format  = "inkboard/objects"
	Version = 1
)

var (
	// ErrEmpty is returned when the clipboard holds nothing.
	ErrEmpty = errors.New("clipboard is empty")
	// ErrForeign is returned for clipboard text that is not an object envelope.
	ErrForeign = errors.New("clipboard does not hold board objects")
)

// Clipboard is a plain text clipboard.
type Clipboard interface {
	WriteText(s string) error
	ReadText() (string, error)
}

// Envelope is the serialized form of a copy.
type Envelope struct {
	Format  string          `json:"format"`
	Version int             `json:"version"`
	Objects []object.Object `json:"objects"`
}

// Encode serializes objs.
func Encode(objs []object.Object) (string, error) {
	b, err := json.Marshal(Envelope{Format: Format, Version: Version, Objects: objs})
	if err != nil {
		return "", fmt.Errorf("encode clipboard: %w", err)
	}
	return string(b), nil
}

// Decode parses an envelope and validates every object in it.
func Decode(s string) ([]object.Object, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmpty
	}
	if !strings.HasPrefix(s, "{") {
		return nil, ErrForeign
	}
	var env Envelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForeign, err)
	}
	if env.Format != Format {
		return nil, ErrForeign
	}
	if env.Version > Version {
		return nil, fmt.Errorf("clipboard envelope version %d is newer than %d", env.Version, Version)
	}
	for _, o := range env.Objects {
		if err := object.Validate(o); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrForeign, err)
		}
	}
	return env.Objects, nil
}

// Copy writes objs to c.
func Copy(c Clipboard, objs []object.Object) error {
	s, err := Encode(objs)
	if err != nil {
		return err
	}
	return c.WriteText(s)
}

// Paste reads objects from c.
func Paste(c Clipboard) ([]object.Object, error) {
	s, err := c.ReadText()
	if err != nil {
		return nil, err
	}
	return Decode(s)
}

// System is the OS clipboard.
type System struct{}

// Available reports whether the platform has a usable clipboard tool.
func (System) Available() bool { return !clipboard.Unsupported }

func (System) WriteText(s string) error { return clipboard.WriteAll(s) }

func (System) ReadText() (string, error) { return clipboard.ReadAll() }

// Memory is a process-local clipboard for headless runs and tests.
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) WriteText(s string) error {
	m.mu.Lock()
	m.text = s
	m.mu.Unlock()
	return nil
}

func (m *Memory) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.text == "" {
		return "", ErrEmpty
	}
	return m.text, nil
}

// Default picks the system clipboard when available, else a Memory one.
func Default() Clipboard {
	if (System{}).Available() {
		return System{}
	}
	return &Memory{}
}
