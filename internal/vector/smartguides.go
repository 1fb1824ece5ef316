/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Alignment guides for dragging: the moving box is compared against anchor
// boxes and nudged so edges or centers line up. X and Y are solved
// independently.

import "math"

// Orientation of a guide line.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// SnapOptions selects guide candidates and the capture distance.
type SnapOptions struct {
	// Threshold is the capture distance in world units.
	Threshold     float64
	SnapToEdges   bool
	SnapToCenters bool
}

// Anchor is a static reference box. Higher Weight wins near-ties.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// GuideLine is a segment to draw while a drag is aligned.
// Kind is "edge" or "center".
type GuideLine struct {
	Orientation Orientation
	Kind        string
	Position    float64
	From, To    Pt
}

// Alignment is the outcome of ComputeSmartGuides.
type Alignment struct {
	DX, DY   float64
	SnappedX bool
	SnappedY bool
	Guides   []GuideLine
}

type axisBest struct {
	delta float64
	score float64
	ok    bool
	guide GuideLine
}

func (b *axisBest) consider(delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / math.Max(1, weight)
	if !b.ok || score < b.score {
		*b = axisBest{delta: delta, score: score, ok: true, guide: g}
	}
}

// ComputeSmartGuides returns the correction to add to moving so that it aligns
// with the closest anchor feature on each axis, plus the guides to render.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) Alignment {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	var bx, by axisBest
	mxs := [3]float64{moving.X, moving.X + moving.W/2, moving.X + moving.W}
	mys := [3]float64{moving.Y, moving.Y + moving.H/2, moving.Y + moving.H}

	for _, a := range anchors {
		r := a.Rect
		axs := [3]float64{r.X, r.X + r.W/2, r.X + r.W}
		ays := [3]float64{r.Y, r.Y + r.H/2, r.Y + r.H}
		for i, mx := range mxs {
			for j, ax := range axs {
				if kind, ok := pairKind(i, j, opts); ok {
					bx.consider(ax-mx, opts.Threshold, a.Weight, verticalGuide(ax, moving, r, kind))
				}
			}
		}
		for i, my := range mys {
			for j, ay := range ays {
				if kind, ok := pairKind(i, j, opts); ok {
					by.consider(ay-my, opts.Threshold, a.Weight, horizontalGuide(ay, moving, r, kind))
				}
			}
		}
	}

	var out Alignment
	if bx.ok {
		out.DX, out.SnappedX = RoundTo(bx.delta, 6), true
		out.Guides = append(out.Guides, bx.guide)
	}
	if by.ok {
		out.DY, out.SnappedY = RoundTo(by.delta, 6), true
		out.Guides = append(out.Guides, by.guide)
	}
	return out
}

// pairKind decides whether feature i of the moving box may align with feature
// j of an anchor. Index 1 is the center; 0 and 2 are the edges, which may also
// abut the opposite edge.
func pairKind(i, j int, opts SnapOptions) (string, bool) {
	switch {
	case i == 1 && j == 1:
		return "center", opts.SnapToCenters
	case i != 1 && j != 1:
		return "edge", opts.SnapToEdges
	}
	return "", false
}

func verticalGuide(x float64, a, b Rect, kind string) GuideLine {
	y0 := math.Min(a.Y, b.Y)
	y1 := math.Max(a.Y+a.H, b.Y+b.H)
	return GuideLine{Orientation: Vertical, Kind: kind, Position: x, From: Pt{x, y0}, To: Pt{x, y1}}
}

func horizontalGuide(y float64, a, b Rect, kind string) GuideLine {
	x0 := math.Min(a.X, b.X)
	x1 := math.Max(a.X+a.W, b.X+b.W)
	return GuideLine{Orientation: Horizontal, Kind: kind, Position: y, From: Pt{x0, y}, To: Pt{x1, y}}
}
