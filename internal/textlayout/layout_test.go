/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "testing"

func TestLayoutWraps(t *testing.T) {
	b := Measure("Hello world from the board", "", 20, 80)
	if len(b.Lines) < 2 {
		t.Fatalf("expected wrapping, got %q", b.Lines)
	}
	if b.Width != 80 {
		t.Fatalf("wrapped block width = %v, want 80", b.Width)
	}
	if b.Height != float64(len(b.Lines))*25 {
		t.Fatalf("height = %v for %d lines", b.Height, len(b.Lines))
	}
}

func TestLayoutNoWrapUsesWidestLine(t *testing.T) {
	b := Measure("a\nwide line", "Go", 16, 0)
	if len(b.Lines) != 2 {
		t.Fatalf("lines: %q", b.Lines)
	}
	if b.Width != b.LineWidths[1] || b.LineWidths[1] <= b.LineWidths[0] {
		t.Fatalf("width %v widths %v", b.Width, b.LineWidths)
	}
}

func TestLayoutEmptyTextHasOneLine(t *testing.T) {
	b := Measure("", "", 10, 0)
	if len(b.Lines) != 1 || b.Height != 12.5 || b.Width != 0 {
		t.Fatalf("empty block: %+v", b)
	}
}

func TestMeasureDeterministic(t *testing.T) {
	a := Measure("ABC def", "Go", 18, 0)
	b := Measure("ABC def", "go", 18, 0)
	if a.Width != b.Width || a.Height != b.Height {
		t.Fatalf("family lookup should be case-insensitive: %v vs %v", a.Width, b.Width)
	}
	c := Measure("ABC def", "No Such Family", 18, 0)
	if c.Width != a.Width {
		t.Fatalf("unknown family should fall back to Go: %v vs %v", c.Width, a.Width)
	}
}

func TestLongWordStaysOnOwnLine(t *testing.T) {
	b := Measure("x supercalifragilistic y", "", 20, 30)
	found := false
	for _, l := range b.Lines {
		if l == "supercalifragilistic" {
			found = true
		}
	}
	if !found {
		t.Fatalf("long word split or merged: %q", b.Lines)
	}
}

func TestNewFaceNonNil(t *testing.T) {
	if f := Default().NewFace("Go Mono", 14); f == nil {
		t.Fatalf("nil face")
	}
}
