/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package assets

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownAsset is returned for refs the store has never seen.
var ErrUnknownAsset = errors.New("unknown asset")

// Blob is an encoded asset as stored.
type Blob struct {
	Ref    string
	Mime   string
	Width  int
	Height int
	Data   []byte
}

// BlobStore persists encoded assets by ref.
type BlobStore interface {
	Put(ctx context.Context, b Blob) error
	Get(ctx context.Context, ref string) (Blob, error)
	Delete(ctx context.Context, ref string) error
	Close() error
}

// NewRef returns a fresh asset ref.
func NewRef() string { return "asset-" + uuid.NewString() }

// MemoryStore keeps blobs in a map. It is the store used when no cache path
// is configured and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]Blob)}
}

func (m *MemoryStore) Put(_ context.Context, b Blob) error {
	if b.Ref == "" {
		return errors.New("blob without ref")
	}
	b.Data = append([]byte(nil), b.Data...)
	m.mu.Lock()
	m.blobs[b.Ref] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, ref string) (Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[ref]
	if !ok {
		return Blob{}, ErrUnknownAsset
	}
	return b, nil
}

func (m *MemoryStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	delete(m.blobs, ref)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
