/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"math"

	"inkboard/internal/vector"
)

// maxSegmentSteps bounds the subdivision of one raw segment.
const maxSegmentSteps = 32

// Smooth interpolates a uniform Catmull-Rom spline through pts. Each raw
// segment is subdivided in proportion to its length so that sparse samples
// from fast pen movement still render as a continuous curve. spacing is the
// target distance between emitted points; the raw points are always kept.
func Smooth(pts []vector.Pt, spacing float64) []vector.Pt {
	if len(pts) < 3 || spacing <= 0 {
		return append([]vector.Pt(nil), pts...)
	}
	out := make([]vector.Pt, 0, len(pts)*4)
	out = append(out, pts[0])
	last := len(pts) - 1
	for i := 0; i < last; i++ {
		p0 := pts[max(i-1, 0)]
		p1 := pts[i]
		p2 := pts[i+1]
		p3 := pts[min(i+2, last)]
		steps := int(math.Ceil(p1.Dist(p2) / spacing))
		steps = max(1, min(steps, maxSegmentSteps))
		for s := 1; s < steps; s++ {
			out = append(out, catmullRom(p0, p1, p2, p3, float64(s)/float64(steps)))
		}
		out = append(out, p2)
	}
	return out
}

func catmullRom(p0, p1, p2, p3 vector.Pt, t float64) vector.Pt {
	t2 := t * t
	t3 := t2 * t
	f := func(a, b, c, d float64) float64 {
		return 0.5 * (2*b + (-a+c)*t + (2*a-5*b+4*c-d)*t2 + (-a+3*b-3*c+d)*t3)
	}
	return vector.Pt{X: f(p0.X, p1.X, p2.X, p3.X), Y: f(p0.Y, p1.Y, p2.Y, p3.Y)}
}
