/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"context"
	"log/slog"

	"inkboard/internal/component"
	"inkboard/internal/object"
)

// DropFile inserts dropped bytes at a screen position. Component payloads
// are routed to DropComponent; anything else must decode as an image.
// Malformed payloads are logged and ignored.
func (e *Engine) DropFile(ctx context.Context, sx, sy float64, data []byte) (string, bool) {
	if component.LooksLikePayload(data) {
		return e.DropComponent(ctx, sx, sy, data)
	}
	blob, err := e.assets.Import(ctx, data)
	if err != nil {
		e.log.Debug("drop ignored", slog.String("kind", "file"), slog.Int("bytes", len(data)), slog.Any("err", err))
		return "", false
	}
	c := e.snapPt(e.view.ScreenToWorld(sx, sy))
	o := object.NewImage(blob.Ref, c.X, c.Y, float64(blob.Width), float64(blob.Height))
	id, err := e.AddObject(o)
	if err != nil {
		e.log.Warn("image drop rejected", slog.Any("err", err))
		return "", false
	}
	e.SetSelection(id)
	e.log.Debug("image dropped", slog.String("id", id), slog.String("ref", blob.Ref), slog.String("mime", blob.Mime))
	return id, true
}

// DropComponent validates a structured component payload, rasterizes it
// and inserts a component object centered on the drop point, sized to the
// payload or, failing that, to the render result.
func (e *Engine) DropComponent(ctx context.Context, sx, sy float64, data []byte) (string, bool) {
	p, err := component.ParsePayload(data)
	if err != nil {
		e.log.Debug("drop ignored", slog.String("kind", "component"), slog.Any("err", err))
		return "", false
	}
	img, err := e.opts.Rasterizer.Rasterize(ctx, p)
	if err != nil {
		e.log.Debug("component render failed", slog.String("name", p.Name), slog.Any("err", err))
		return "", false
	}
	blob, err := e.assets.ImportImage(ctx, img)
	if err != nil {
		e.log.Warn("component preview not stored", slog.Any("err", err))
		return "", false
	}
	w, h := p.Width, p.Height
	if w <= 0 || h <= 0 {
		w, h = float64(blob.Width), float64(blob.Height)
	}
	c := e.view.ScreenToWorld(sx, sy)
	tl := e.snapPt(c.Sub(vec(w/2, h/2)))
	o := object.NewComponent(p.Root, tl.X, tl.Y, w, h, blob.Ref)
	if p.Name != "" {
		o.Name = p.Name
	}
	id, err := e.AddObject(o)
	if err != nil {
		e.log.Warn("component drop rejected", slog.Any("err", err))
		return "", false
	}
	e.SetSelection(id)
	e.log.Debug("component dropped", slog.String("id", id), slog.Int("nodes", p.Root.Count()))
	return id, true
}
