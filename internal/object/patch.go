/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package object

import (
	"reflect"

	"inkboard/internal/component"
	"inkboard/internal/vector"
)

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	Locked   *bool    `json:"locked,omitempty"`
	Visible  *bool    `json:"visible,omitempty"`
	Name     *string  `json:"name,omitempty"`

	Points    []StrokePoint `json:"points,omitempty"`
	Color     *string       `json:"color,omitempty"`
	LineWidth *float64      `json:"lineWidth,omitempty"`

	Width        *float64 `json:"width,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	Fill         *string  `json:"fill,omitempty"`
	Stroke       *string  `json:"stroke,omitempty"`
	StrokeWidth  *float64 `json:"strokeWidth,omitempty"`
	CornerRadius *float64 `json:"cornerRadius,omitempty"`
	RadiusX      *float64 `json:"radiusX,omitempty"`
	RadiusY      *float64 `json:"radiusY,omitempty"`
	X2           *float64 `json:"x2,omitempty"`
	Y2           *float64 `json:"y2,omitempty"`

	ImageRef   *string  `json:"imageRef,omitempty"`
	Text       *string  `json:"text,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`

	Component  *component.Node `json:"component,omitempty"`
	PreviewRef *string         `json:"previewRef,omitempty"`
}

// F, S and B take the address of a literal for building patches.
func F(v float64) *float64 { return &v }
func S(v string) *string   { return &v }
func B(v bool) *bool       { return &v }

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	v := reflect.ValueOf(p)
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).IsNil() {
			return false
		}
	}
	return true
}

// Apply writes p into o. Moving a stroke through X or Y shifts its points;
// moving a line through X or Y shifts both endpoints. Opacity is clamped to
// [0,1] and rotation normalized to [0,360).
func (p Patch) Apply(o *Object) {
	if p.Points != nil {
		o.Points = append([]StrokePoint(nil), p.Points...)
		syncStrokeOrigin(o)
	}
	if p.X != nil || p.Y != nil {
		dx, dy := 0.0, 0.0
		if p.X != nil {
			dx = *p.X - o.X
		}
		if p.Y != nil {
			dy = *p.Y - o.Y
		}
		switch o.Kind {
		case KindStroke, KindLine:
			Translate(o, dx, dy)
		default:
			o.X += dx
			o.Y += dy
		}
	}
	if p.Rotation != nil {
		o.Rotation = normalizeRotation(*p.Rotation)
	}
	if p.Opacity != nil {
		o.Opacity = clamp01(*p.Opacity)
	}
	setB(&o.Locked, p.Locked)
	setB(&o.Visible, p.Visible)
	setS(&o.Name, p.Name)
	setS(&o.Color, p.Color)
	setF(&o.LineWidth, p.LineWidth)
	setF(&o.Width, p.Width)
	setF(&o.Height, p.Height)
	setS(&o.Fill, p.Fill)
	setS(&o.Stroke, p.Stroke)
	setF(&o.StrokeWidth, p.StrokeWidth)
	setF(&o.CornerRadius, p.CornerRadius)
	setF(&o.RadiusX, p.RadiusX)
	setF(&o.RadiusY, p.RadiusY)
	setF(&o.X2, p.X2)
	setF(&o.Y2, p.Y2)
	setS(&o.ImageRef, p.ImageRef)
	setS(&o.Text, p.Text)
	setF(&o.FontSize, p.FontSize)
	setS(&o.FontFamily, p.FontFamily)
	setS(&o.PreviewRef, p.PreviewRef)
	if p.Component != nil {
		o.Component = p.Component.Clone()
	}
}

func setF(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setS(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setB(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func normalizeRotation(deg float64) float64 { return vector.NormalizeDeg(deg) }
