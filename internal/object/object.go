/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package object defines the board's object model: one flat record per
// object, discriminated by Kind, plus the ordered store that owns them.
// List order is paint order; later objects are drawn on top.
package object

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.jetify.com/typeid/v2"

	"inkboard/internal/component"
)

// Kind selects the variant of an Object.
type Kind string

const (
	KindStroke    Kind = "stroke"
	KindRectangle Kind = "rectangle"
	KindEllipse   Kind = "ellipse"
	KindLine      Kind = "line"
	KindImage     Kind = "image"
	KindText      Kind = "text"
	KindComponent Kind = "component"
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{KindStroke, KindRectangle, KindEllipse, KindLine, KindImage, KindText, KindComponent}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, x := range Kinds {
		if x == k {
			return true
		}
	}
	return false
}

// IDPrefix is the typeid prefix of object ids.
const IDPrefix = "obj"

// NewID returns a fresh, sortable object id such as obj_01h455vb4pex5vsknk084sn02q.
func NewID() string { return typeid.MustGenerate(IDPrefix).String() }

// ValidID reports whether id is a well-formed object typeid.
func ValidID(id string) bool {
	tid, err := typeid.Parse(id)
	return err == nil && tid.Prefix() == IDPrefix
}

// StrokePoint is one sampled pen position; T is milliseconds since the epoch.
type StrokePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	T int64   `json:"t,omitempty"`
}

// Object is a board item. Common fields come first; the remaining fields are
// only meaningful for the kinds noted beside them.
//
// Position semantics per kind:
//   - rectangle, text, component: X,Y is the top-left corner
//   - ellipse, image: X,Y is the center
//   - line: X,Y is the first endpoint, X2,Y2 the second
//   - stroke: X,Y mirrors the top-left of the points' bounds
type Object struct {
	ID        string  `json:"id"`
	Kind      Kind    `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Rotation  float64 `json:"rotation"`
	Opacity   float64 `json:"opacity"`
	Locked    bool    `json:"locked"`
	Visible   bool    `json:"visible"`
	Name      string  `json:"name,omitempty"`
	Timestamp int64   `json:"timestamp"`

	// stroke
	Points []StrokePoint `json:"points,omitempty"`
	// stroke, line, text
	Color     string  `json:"color,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`

	// rectangle, image, component; Width is also the text wrap width (0 = no wrap)
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// rectangle, ellipse
	Fill         string  `json:"fill,omitempty"`
	Stroke       string  `json:"stroke,omitempty"`
	StrokeWidth  float64 `json:"strokeWidth,omitempty"`
	CornerRadius float64 `json:"cornerRadius,omitempty"`
	RadiusX      float64 `json:"radiusX,omitempty"`
	RadiusY      float64 `json:"radiusY,omitempty"`

	// line
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	// image
	ImageRef string `json:"imageRef,omitempty"`

	// text
	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`

	// component
	Component  *component.Node `json:"component,omitempty"`
	PreviewRef string          `json:"previewRef,omitempty"`
}

// Style bundles the paint settings new objects are created with.
type Style struct {
	Color       string
	LineWidth   float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	FontSize    float64
	FontFamily  string
}

var (
	nameMu  sync.Mutex
	nameSeq = map[Kind]int{}
)

func base(k Kind) Object {
	nameMu.Lock()
	nameSeq[k]++
	n := nameSeq[k]
	nameMu.Unlock()
	return Object{
		ID:        NewID(),
		Kind:      k,
		Opacity:   1,
		Visible:   true,
		Name:      defaultName(k, n),
		Timestamp: time.Now().UnixMilli(),
	}
}

func defaultName(k Kind, n int) string {
	label := map[Kind]string{
		KindStroke:    "Stroke",
		KindRectangle: "Rectangle",
		KindEllipse:   "Ellipse",
		KindLine:      "Line",
		KindImage:     "Image",
		KindText:      "Text",
		KindComponent: "Component",
	}[k]
	return label + " " + strconv.Itoa(n)
}

// NewStroke builds a stroke from absolute world points.
func NewStroke(pts []StrokePoint, st Style) Object {
	o := base(KindStroke)
	o.Points = append([]StrokePoint(nil), pts...)
	o.Color = st.Color
	o.LineWidth = st.LineWidth
	syncStrokeOrigin(&o)
	return o
}

// NewRectangle builds a rectangle with top-left x,y.
func NewRectangle(x, y, w, h float64, st Style) Object {
	o := base(KindRectangle)
	o.X, o.Y, o.Width, o.Height = x, y, w, h
	o.Fill, o.Stroke, o.StrokeWidth = st.Fill, st.Stroke, st.StrokeWidth
	return o
}

// NewEllipse builds an ellipse centered on cx,cy.
func NewEllipse(cx, cy, rx, ry float64, st Style) Object {
	o := base(KindEllipse)
	o.X, o.Y, o.RadiusX, o.RadiusY = cx, cy, rx, ry
	o.Fill, o.Stroke, o.StrokeWidth = st.Fill, st.Stroke, st.StrokeWidth
	return o
}

// NewLine builds a segment from x1,y1 to x2,y2.
func NewLine(x1, y1, x2, y2 float64, st Style) Object {
	o := base(KindLine)
	o.X, o.Y, o.X2, o.Y2 = x1, y1, x2, y2
	o.Color, o.LineWidth = st.Color, st.LineWidth
	return o
}

// NewImage builds an image centered on cx,cy referencing an asset.
func NewImage(ref string, cx, cy, w, h float64) Object {
	o := base(KindImage)
	o.ImageRef = ref
	o.X, o.Y, o.Width, o.Height = cx, cy, w, h
	return o
}

// NewText builds a text object anchored at its top-left.
func NewText(x, y float64, text string, st Style) Object {
	o := base(KindText)
	o.X, o.Y = x, y
	o.Text = text
	o.Color = st.Color
	o.FontSize = st.FontSize
	o.FontFamily = st.FontFamily
	return o
}

// NewComponent builds a component object with top-left x,y.
func NewComponent(root *component.Node, x, y, w, h float64, previewRef string) Object {
	o := base(KindComponent)
	o.Component = root.Clone()
	o.X, o.Y, o.Width, o.Height = x, y, w, h
	o.PreviewRef = previewRef
	return o
}

// Clone deep-copies o.
func Clone(o Object) Object {
	if o.Points != nil {
		o.Points = append([]StrokePoint(nil), o.Points...)
	}
	o.Component = o.Component.Clone()
	return o
}

// CloneAll deep-copies a list.
func CloneAll(list []Object) []Object {
	if list == nil {
		return nil
	}
	out := make([]Object, len(list))
	for i := range list {
		out[i] = Clone(list[i])
	}
	return out
}

// Validate checks the fields every object must carry.
func Validate(o Object) error {
	if o.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if !o.Kind.Valid() {
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalid, o.ID, o.Kind)
	}
	if o.Kind == KindStroke && len(o.Points) == 0 {
		return fmt.Errorf("%w: %s: stroke without points", ErrInvalid, o.ID)
	}
	return nil
}
