/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package object

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for ids that are not in the store.
var ErrNotFound = errors.New("object not found")

// ErrDuplicateID is returned when adding an id that already exists.
var ErrDuplicateID = errors.New("duplicate object id")

// ErrInvalid is returned for objects that fail Validate.
var ErrInvalid = errors.New("invalid object")

// Store is the ordered object list plus an id index. It is owned by a single
// engine goroutine and does no locking.
//
// Version increases on every change, so derived structures such as the
// spatial index can tell cheaply whether they are stale.
type Store struct {
	list    []Object
	index   map[string]int
	version uint64
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{index: make(map[string]int)} }

func (s *Store) touch() { s.version++ }

func (s *Store) reindex(from int) {
	for i := from; i < len(s.list); i++ {
		s.index[s.list[i].ID] = i
	}
}

// Version identifies the current contents.
func (s *Store) Version() uint64 { return s.version }

// Len is the number of objects.
func (s *Store) Len() int { return len(s.list) }

// Objects exposes the list in paint order. Callers must not modify it.
func (s *Store) Objects() []Object { return s.list }

// At returns the object at paint index i.
func (s *Store) At(i int) Object { return s.list[i] }

// IndexOf returns the paint index of id, or -1.
func (s *Store) IndexOf(id string) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	return -1
}

// Has reports whether id is live.
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Get returns a deep copy of the object with the given id.
func (s *Store) Get(id string) (Object, bool) {
	i, ok := s.index[id]
	if !ok {
		return Object{}, false
	}
	return Clone(s.list[i]), true
}

// Add appends o on top of the paint order.
func (s *Store) Add(o Object) error {
	if err := Validate(o); err != nil {
		return err
	}
	if _, dup := s.index[o.ID]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
	}
	s.list = append(s.list, Clone(o))
	s.index[o.ID] = len(s.list) - 1
	s.touch()
	return nil
}

// Update applies p to the object with the given id. A patch that would leave
// the object invalid is rejected and the store is left untouched.
func (s *Store) Update(id string, p Patch) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if p.Empty() {
		return nil
	}
	o := Clone(s.list[i])
	p.Apply(&o)
	if err := Validate(o); err != nil {
		return err
	}
	s.list[i] = o
	s.touch()
	return nil
}

// Replace swaps in o for the object with the same id, keeping its paint index.
func (s *Store) Replace(o Object) error {
	i, ok := s.index[o.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, o.ID)
	}
	if err := Validate(o); err != nil {
		return err
	}
	s.list[i] = Clone(o)
	s.touch()
	return nil
}

// Delete removes the given ids and returns how many were live.
func (s *Store) Delete(ids ...string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}
	kept := s.list[:0]
	for _, o := range s.list {
		if _, gone := drop[o.ID]; gone {
			delete(s.index, o.ID)
			continue
		}
		kept = append(kept, o)
	}
	// clear the tail so dropped objects can be collected
	for i := len(kept); i < len(s.list); i++ {
		s.list[i] = Object{}
	}
	s.list = kept
	s.reindex(0)
	s.touch()
	return len(drop)
}

// MoveTo changes the paint index of id, clamping to the list bounds.
func (s *Store) MoveTo(id string, to int) error {
	from, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	to = max(0, min(to, len(s.list)-1))
	if from == to {
		return nil
	}
	o := s.list[from]
	if from < to {
		copy(s.list[from:to], s.list[from+1:to+1])
	} else {
		copy(s.list[to+1:from+1], s.list[to:from])
	}
	s.list[to] = o
	s.reindex(min(from, to))
	s.touch()
	return nil
}

// Snapshot deep-copies the list.
func (s *Store) Snapshot() []Object { return CloneAll(s.list) }

// Restore replaces the contents with a deep copy of list.
func (s *Store) Restore(list []Object) {
	s.list = CloneAll(list)
	if s.list == nil {
		s.list = []Object{}
	}
	s.index = make(map[string]int, len(s.list))
	s.reindex(0)
	s.touch()
}

// IDs returns all ids in paint order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.list))
	for i, o := range s.list {
		out[i] = o.ID
	}
	return out
}
