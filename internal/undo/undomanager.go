/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps linear undo/redo history over whole-board snapshots.
// Multi-step gestures are wrapped in transactions so that each gesture
// yields one history entry no matter how many intermediate mutations it made.
package undo

import (
	"sync"
	"time"

	"inkboard/internal/object"
)

// DefaultMaxDepth is the number of undo steps kept when Config leaves it unset.
const DefaultMaxDepth = 50

// Snapshot is the object list plus selection at a history boundary.
// Version is the store version the snapshot was taken at.
type Snapshot struct {
	Objects   []object.Object
	Selection []string
	Version   uint64
	Label     string
	TS        time.Time
}

// Config controls depth and coalescing.
type Config struct {
	// MaxDepth bounds the undo stack; the oldest entries are evicted first.
	MaxDepth int
	// CoalesceWindow merges consecutive pushes carrying the same non-empty
	// label within the window (arrow-key nudges, for example). Zero disables it.
	CoalesceWindow time.Duration
}

// Manager holds the undo and redo stacks. It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex

	undo []Snapshot
	redo []Snapshot

	// tx holds one before snapshot per open transaction level, outermost first.
	tx []Snapshot
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return &Manager{cfg: cfg}
}

// Push records before as the state to return to on the next undo and clears
// redo. Pushes while a transaction is open are absorbed by it.
func (m *Manager) Push(before Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tx) > 0 {
		return
	}
	m.pushLocked(before)
}

func (m *Manager) pushLocked(s Snapshot) {
	if s.TS.IsZero() {
		s.TS = time.Now()
	}
	m.redo = nil
	if n := len(m.undo); n > 0 && m.cfg.CoalesceWindow > 0 && s.Label != "" {
		last := m.undo[n-1]
		if last.Label == s.Label && s.TS.Sub(last.TS) < m.cfg.CoalesceWindow {
			// keep the older "before" state; only refresh the timestamp
			m.undo[n-1].TS = s.TS
			return
		}
	}
	m.undo = append(m.undo, s)
	if over := len(m.undo) - m.cfg.MaxDepth; over > 0 {
		m.undo = append([]Snapshot(nil), m.undo[over:]...)
	}
}

// Begin opens a transaction level whose undo target is before. Levels nest;
// the outermost before is what a final Commit records.
func (m *Manager) Begin(before Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tx = append(m.tx, before)
}

// Commit closes one transaction level. When the outermost level closes and
// the store version moved since Begin, exactly one entry is pushed. It
// reports whether an entry was pushed.
func (m *Manager) Commit(version uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.tx)
	if n == 0 {
		return false
	}
	before := m.tx[n-1]
	m.tx = m.tx[:n-1]
	if n > 1 || before.Version == version {
		return false
	}
	m.pushLocked(before)
	return true
}

// Cancel discards the innermost transaction level and returns its before
// snapshot so the caller can restore it. Outer levels stay open.
func (m *Manager) Cancel() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.tx)
	if n == 0 {
		return Snapshot{}, false
	}
	before := m.tx[n-1]
	m.tx = m.tx[:n-1]
	return before, true
}

// InTransaction reports whether a transaction is open.
func (m *Manager) InTransaction() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tx) > 0
}

// Undo returns the previous state and moves current onto the redo stack.
// It is a no-op returning false when there is nothing to undo.
func (m *Manager) Undo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.undo)
	if n == 0 {
		return Snapshot{}, false
	}
	s := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.redo = append(m.redo, current)
	return s, true
}

// Redo is the mirror of Undo.
func (m *Manager) Redo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.redo)
	if n == 0 {
		return Snapshot{}, false
	}
	s := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, current)
	if over := len(m.undo) - m.cfg.MaxDepth; over > 0 {
		m.undo = append([]Snapshot(nil), m.undo[over:]...)
	}
	return s, true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Clear drops all history and any open transaction.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo = nil, nil
	m.tx = nil
}

// Stats returns stack depths for diagnostics.
func (m *Manager) Stats() (undoDepth, redoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}
