/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and wraps the plain text carried by text
// objects. Results are deterministic for a given library, so the same numbers
// feed hit-testing, selection chrome and painting.
package textlayout

import "strings"

// LineHeightFactor is the line advance as a multiple of the font size.
const LineHeightFactor = 1.25

// Block is laid out text.
type Block struct {
	Lines      []string
	LineWidths []float64
	Width      float64
	Height     float64
	LineHeight float64
}

// Measure lays out text with the default library. See FontLibrary.Layout.
func Measure(text, family string, fontSize, wrapWidth float64) Block {
	return Default().Layout(text, family, fontSize, wrapWidth)
}

// Layout breaks text on newlines and, when wrapWidth > 0, greedily on spaces.
// A single word wider than wrapWidth stays on its own line. The block width is
// wrapWidth when wrapping, otherwise the widest line. Empty text still
// occupies one line.
func (fl *FontLibrary) Layout(text, family string, fontSize, wrapWidth float64) Block {
	if fontSize <= 0 {
		fontSize = 12
	}
	b := Block{LineHeight: fontSize * LineHeightFactor}
	push := func(line string) {
		w := fl.measure(family, fontSize, line)
		b.Lines = append(b.Lines, line)
		b.LineWidths = append(b.LineWidths, w)
		if w > b.Width {
			b.Width = w
		}
	}
	for _, para := range strings.Split(text, "\n") {
		if wrapWidth <= 0 {
			push(para)
			continue
		}
		words := strings.Fields(para)
		if len(words) == 0 {
			push("")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if fl.measure(family, fontSize, next) > wrapWidth {
				push(cur)
				cur = w
				continue
			}
			cur = next
		}
		push(cur)
	}
	if wrapWidth > 0 {
		b.Width = wrapWidth
	}
	b.Height = float64(len(b.Lines)) * b.LineHeight
	return b
}
