/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import "inkboard/internal/vector"

// GuideOptions configures Guides.
type GuideOptions struct {
	Tolerance  float64
	GridSize   float64
	SnapToGrid bool
}

// Result is the correction to add to a dragged selection and the guide lines
// to draw for it. Guides are transient and never stored on objects.
type Result struct {
	DX, DY float64
	Lines  []vector.GuideLine
}

// Guides aligns moving against others on edges and centers. An axis with no
// alignment within tolerance falls back to grid snapping of the moving box's
// min corner when enabled.
func Guides(moving vector.Rect, others []vector.Rect, opts GuideOptions) Result {
	anchors := make([]vector.Anchor, len(others))
	for i, r := range others {
		anchors[i] = vector.Anchor{Rect: r, Weight: 1}
	}
	a := vector.ComputeSmartGuides(moving, anchors, vector.SnapOptions{
		Threshold:     opts.Tolerance,
		SnapToEdges:   true,
		SnapToCenters: true,
	})
	res := Result{DX: a.DX, DY: a.DY, Lines: a.Guides}
	if opts.SnapToGrid && opts.GridSize > 0 {
		if !a.SnappedX {
			res.DX = SnapToGrid(moving.X, opts.GridSize) - moving.X
		}
		if !a.SnappedY {
			res.DY = SnapToGrid(moving.Y, opts.GridSize) - moving.Y
		}
	}
	return res
}
