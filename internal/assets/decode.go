/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package assets decodes, caches and persists the pixel data behind image
// and component objects. Objects only carry an asset ref; everything heavy
// lives here.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/http"

	// registered decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned for payloads no registered decoder accepts.
var ErrNotImage = errors.New("not an image")

// Info is the cheap header data of an encoded image.
type Info struct {
	Format string
	Width  int
	Height int
}

// DecodeConfig reads only the image header.
func DecodeConfig(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrNotImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("%w: empty %s", ErrNotImage, format)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Decode fully decodes data.
func Decode(data []byte) (image.Image, Info, error) {
	info, err := DecodeConfig(data)
	if err != nil {
		return nil, Info{}, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, info, nil
}

// MimeType maps a decoder format name to a mime type, sniffing when unknown.
func MimeType(format string, data []byte) string {
	switch format {
	case "png", "jpeg", "gif", "webp", "bmp":
		return "image/" + format
	}
	return http.DetectContentType(data)
}
