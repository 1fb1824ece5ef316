/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package component

import (
	"context"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"inkboard/internal/textlayout"
)

// Rasterizer renders a payload into a preview image. Hosts may plug in an
// external renderer; BoxRasterizer is the built-in fallback.
type Rasterizer interface {
	Rasterize(ctx context.Context, p Payload) (image.Image, error)
}

// BoxRasterizer draws each node as a labelled box with its children stacked
// vertically inside it.
type BoxRasterizer struct {
	Fonts    *textlayout.FontLibrary
	Width    float64 // used when the payload has none
	Padding  float64
	RowH     float64
	FontSize float64
}

// NewBoxRasterizer returns a rasterizer with the default metrics.
func NewBoxRasterizer() *BoxRasterizer {
	return &BoxRasterizer{Fonts: textlayout.Default(), Width: 240, Padding: 8, RowH: 28, FontSize: 13}
}

type palette struct{ fill, border color.RGBA }

var kindColors = map[Kind]palette{
	KindContainer: {color.RGBA{250, 250, 250, 255}, color.RGBA{158, 158, 158, 255}},
	KindContent:   {color.RGBA{238, 238, 238, 255}, color.RGBA{189, 189, 189, 255}},
	KindInput:     {color.RGBA{255, 255, 255, 255}, color.RGBA{97, 97, 97, 255}},
	KindNav:       {color.RGBA{227, 242, 253, 255}, color.RGBA{30, 136, 229, 255}},
	KindFeedback:  {color.RGBA{255, 248, 225, 255}, color.RGBA{251, 140, 0, 255}},
	KindData:      {color.RGBA{232, 245, 233, 255}, color.RGBA{67, 160, 71, 255}},
}

// Size computes the preview dimensions for p without drawing.
func (r *BoxRasterizer) Size(p Payload) (w, h float64) {
	w = p.Width
	if w <= 0 {
		w = r.Width
	}
	h = r.nodeHeight(p.Root)
	if p.Height > h {
		h = p.Height
	}
	return w, h
}

func (r *BoxRasterizer) nodeHeight(n *Node) float64 {
	if n == nil {
		return r.RowH
	}
	h := r.RowH
	for _, ch := range n.Children {
		h += r.nodeHeight(ch) + r.Padding
	}
	if len(n.Children) > 0 {
		h += r.Padding
	}
	return h
}

// Rasterize implements Rasterizer.
func (r *BoxRasterizer) Rasterize(ctx context.Context, p Payload) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, h := r.Size(p)
	dc := gg.NewContext(int(w+0.5), int(h+0.5))
	fonts := r.Fonts
	if fonts == nil {
		fonts = textlayout.Default()
	}
	dc.SetFontFace(fonts.NewFace(textlayout.DefaultFamily, r.FontSize))
	r.drawNode(dc, p.Root, 0.5, 0.5, w-1)
	return dc.Image(), nil
}

func (r *BoxRasterizer) drawNode(dc *gg.Context, n *Node, x, y, w float64) float64 {
	if n == nil {
		return 0
	}
	h := r.nodeHeight(n)
	pal, ok := kindColors[n.Kind]
	if !ok {
		pal = kindColors[KindContainer]
	}
	dc.DrawRoundedRectangle(x, y, w, h-1, 4)
	dc.SetColor(pal.fill)
	dc.FillPreserve()
	dc.SetColor(pal.border)
	dc.SetLineWidth(1)
	dc.Stroke()

	label := n.Label
	if label == "" {
		label = n.Type
	}
	if label == "" {
		label = string(n.Kind)
	}
	dc.SetColor(color.RGBA{33, 33, 33, 255})
	dc.DrawStringAnchored(label, x+r.Padding, y+r.RowH/2, 0, 0.35)

	cy := y + r.RowH
	for _, ch := range n.Children {
		cy += r.drawNode(dc, ch, x+r.Padding, cy, w-2*r.Padding) + r.Padding
	}
	return h
}
