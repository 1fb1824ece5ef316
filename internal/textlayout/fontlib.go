/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontLibrary maps family names to parsed OpenType fonts. The Go font
// family is always available; other families are added with LoadTTF.
// Unknown families resolve to Go regular.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	family string
	size   float64
}

// DefaultFamily is used for empty or unknown family names.
const DefaultFamily = "Go"

var builtin = map[string][]byte{
	"go":        goregular.TTF,
	"go bold":   gobold.TTF,
	"go italic": goitalic.TTF,
	"go mono":   gomono.TTF,
	"monospace": gomono.TTF,
	"sans":      goregular.TTF,
}

// NewFontLibrary parses the built-in Go fonts.
func NewFontLibrary() *FontLibrary {
	fl := &FontLibrary{fonts: make(map[string]*opentype.Font), faces: make(map[faceKey]font.Face)}
	for name, data := range builtin {
		if f, err := opentype.Parse(data); err == nil {
			fl.fonts[name] = f
		}
	}
	return fl
}

var (
	defaultLibOnce sync.Once
	defaultLib     *FontLibrary
)

// Default returns the process-wide library.
func Default() *FontLibrary {
	defaultLibOnce.Do(func() { defaultLib = NewFontLibrary() })
	return defaultLib
}

// LoadTTF registers the font file at path under family.
func (fl *FontLibrary) LoadTTF(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	key := normFamily(family)
	fl.fonts[key] = f
	for k := range fl.faces {
		if k.family == key {
			delete(fl.faces, k)
		}
	}
	return nil
}

func normFamily(family string) string {
	f := strings.ToLower(strings.TrimSpace(family))
	if f == "" {
		return strings.ToLower(DefaultFamily)
	}
	return f
}

func (fl *FontLibrary) lookup(family string) *opentype.Font {
	if f, ok := fl.fonts[normFamily(family)]; ok {
		return f
	}
	return fl.fonts[strings.ToLower(DefaultFamily)]
}

// NewFace returns a fresh face owned by the caller. Faces are not safe for
// concurrent use, so painters keep their own.
func (fl *FontLibrary) NewFace(family string, size float64) font.Face {
	if size <= 0 {
		size = 12
	}
	fl.mu.Lock()
	f := fl.lookup(family)
	fl.mu.Unlock()
	if f == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// measure returns the advance of s in pixels using a cached face.
func (fl *FontLibrary) measure(family string, size float64, s string) float64 {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	key := faceKey{family: normFamily(family), size: math.Round(size*4) / 4}
	face, ok := fl.faces[key]
	if !ok {
		f := fl.lookup(family)
		if f != nil {
			face, _ = opentype.NewFace(f, &opentype.FaceOptions{Size: key.size, DPI: 72, Hinting: font.HintingNone})
		}
		if face == nil {
			// basicfont is 13px tall; scale its advances to the requested size.
			adv := font.MeasureString(basicfont.Face7x13, s)
			return float64(adv) / 64 * size / 13
		}
		fl.faces[key] = face
	}
	return float64(font.MeasureString(face, s)) / 64
}
