/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"

	applog "inkboard/internal/log"
)

// Loader resolves asset refs to decoded images. Misses are decoded on a
// background goroutine; callers paint a placeholder until the completion
// hook fires and they repaint.
type Loader struct {
	store BlobStore
	cache *Cache
	log   *slog.Logger

	mu       sync.Mutex
	onLoad   func(ref string)
	inflight map[string]bool
	failed   map[string]error
	wg       sync.WaitGroup
}

func NewLoader(store BlobStore, cache *Cache) *Loader {
	if store == nil {
		store = NewMemoryStore()
	}
	if cache == nil {
		cache = NewCache(0)
	}
	return &Loader{
		store:    store,
		cache:    cache,
		log:      applog.WithComponent("assets"),
		inflight: make(map[string]bool),
		failed:   make(map[string]error),
	}
}

// OnLoad sets the hook called (from a worker goroutine) after a ref decodes.
func (l *Loader) OnLoad(fn func(ref string)) {
	l.mu.Lock()
	l.onLoad = fn
	l.mu.Unlock()
}

func (l *Loader) Store() BlobStore { return l.store }

// Image returns the decoded image for ref if it is cached. On a miss it
// starts a background load and reports false.
func (l *Loader) Image(ref string) (image.Image, bool) {
	if ref == "" {
		return nil, false
	}
	if img, ok := l.cache.Get(ref); ok {
		return img, true
	}
	l.Load(ref)
	return nil, false
}

// Load schedules a background decode of ref unless one is running or the ref
// already failed.
func (l *Loader) Load(ref string) {
	l.mu.Lock()
	if l.inflight[ref] || l.failed[ref] != nil {
		l.mu.Unlock()
		return
	}
	l.inflight[ref] = true
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		err := l.load(context.Background(), ref)
		l.mu.Lock()
		delete(l.inflight, ref)
		if err != nil {
			l.failed[ref] = err
		}
		hook := l.onLoad
		l.mu.Unlock()
		if err != nil {
			l.log.Debug("asset load failed", slog.String("ref", ref), slog.Any("err", err))
			return
		}
		if hook != nil {
			hook(ref)
		}
	}()
}

func (l *Loader) load(ctx context.Context, ref string) error {
	b, err := l.store.Get(ctx, ref)
	if err != nil {
		return err
	}
	img, _, err := Decode(b.Data)
	if err != nil {
		return err
	}
	l.cache.Put(ref, img)
	return nil
}

// Import stores encoded image bytes under a new ref and starts decoding them.
// Only the header is read synchronously so the caller can size the object.
func (l *Loader) Import(ctx context.Context, data []byte) (Blob, error) {
	info, err := DecodeConfig(data)
	if err != nil {
		return Blob{}, err
	}
	b := Blob{
		Ref:    NewRef(),
		Mime:   MimeType(info.Format, data),
		Width:  info.Width,
		Height: info.Height,
		Data:   data,
	}
	if err := l.store.Put(ctx, b); err != nil {
		return Blob{}, fmt.Errorf("store asset: %w", err)
	}
	l.Load(b.Ref)
	return b, nil
}

// ImportImage stores an already decoded image (a rasterized preview, for
// example) as PNG and caches it immediately.
func (l *Loader) ImportImage(ctx context.Context, img image.Image) (Blob, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Blob{}, fmt.Errorf("encode png: %w", err)
	}
	r := img.Bounds()
	b := Blob{Ref: NewRef(), Mime: "image/png", Width: r.Dx(), Height: r.Dy(), Data: buf.Bytes()}
	if err := l.store.Put(ctx, b); err != nil {
		return Blob{}, fmt.Errorf("store asset: %w", err)
	}
	l.cache.Put(b.Ref, img)
	return b, nil
}

// Wait blocks until every scheduled load has finished.
func (l *Loader) Wait() { l.wg.Wait() }

// Close waits for pending loads and closes the store.
func (l *Loader) Close() error {
	l.wg.Wait()
	return l.store.Close()
}

// Open builds a loader over the SQLite blob cache at path, or over memory
// when path is empty. entries bounds the decoded-image cache.
func Open(ctx context.Context, path string, maxBytes int64, entries int) (*Loader, error) {
	var store BlobStore = NewMemoryStore()
	if path != "" {
		s, err := OpenSQLite(ctx, path, maxBytes)
		if err != nil {
			return nil, err
		}
		store = s
	}
	return NewLoader(store, NewCache(entries)), nil
}
