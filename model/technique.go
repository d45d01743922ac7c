// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

//go:generate stringer -type=TechniqueKind

import (
	"github.com/paulmach/orb/geojson"
)

// TechniqueKind is the closed set of rendering methods a technique selects.
type TechniqueKind uint8

const (
	// KindNone is the zero value; it matches nothing.
	KindNone TechniqueKind = iota

	// KindFill renders polygon interiors.
	KindFill

	// KindSolidLine renders tessellated lines.
	KindSolidLine

	// KindCircles renders point markers as circles.
	KindCircles

	// KindSquares renders point markers as squares.
	KindSquares

	// KindText renders text labels.
	KindText

	// KindPOI renders icon plus optional text labels.
	KindPOI
)

// UnassignedTechnique marks a technique that was never registered with a
// table.  Matching such a technique is a style configuration error.
const UnassignedTechnique = -1

// Technique is a style-resolved rendering method with its attributes.  It is
// produced by the style matcher and read-only to the decoder.
type Technique struct {
	Kind  TechniqueKind
	Index int

	// LineWidth is the stroke width for solid-line techniques, in world units.
	LineWidth float64

	// Size is the marker size for circles/squares, in pixels.
	Size float64

	// Color is a CSS-style color string passed through to the renderer.
	Color string

	// LabelProperty names the feature property holding the label text for
	// text and poi techniques.
	LabelProperty string

	// ImageTexture names the icon for poi techniques.
	ImageTexture string

	Priority float64

	MinZoom uint32
	MaxZoom uint32
}

// AppliesTo reports whether the technique kind can consume a geometry class.
// Text applies to points (placed labels) and to lines (path labels).
func (t Technique) AppliesTo(class GeometryClass) bool {
	switch t.Kind {
	case KindFill:
		return class == PolygonClass
	case KindSolidLine:
		return class == LineClass
	case KindCircles, KindSquares, KindPOI:
		return class == PointClass
	case KindText:
		return class == PointClass || class == LineClass
	default:
		return false
	}
}

// Env is the matching environment handed to the style matcher for one
// feature and geometry class.
type Env struct {
	Class      GeometryClass
	Level      uint32
	Properties geojson.Properties
}

// StyleMatcher is the external style evaluation oracle: given a matching
// environment it returns zero or more techniques.  Implementations must be
// safe for concurrent use; a matcher is shared across parallel tile decodes.
type StyleMatcher interface {
	MatchingTechniques(env *Env) []Technique
}

// TechniqueTable assigns stable indices at registration time.
type TechniqueTable struct {
	techniques []Technique
}

// Add registers the technique and returns it with its assigned index.
func (t *TechniqueTable) Add(technique Technique) Technique {
	technique.Index = len(t.techniques)
	t.techniques = append(t.techniques, technique)

	return technique
}

// Len returns the number of registered techniques.
func (t *TechniqueTable) Len() int { return len(t.techniques) }

// Technique returns the technique registered under index.
func (t *TechniqueTable) Technique(index int) (Technique, bool) {
	if index < 0 || index >= len(t.techniques) {
		return Technique{}, false
	}

	return t.techniques[index], true
}

// ClassMatcher is a minimal StyleMatcher that applies every registered
// technique whose kind accepts the feature's geometry class.  It stands in
// for the full style evaluation language in tools and tests.
type ClassMatcher struct {
	Table *TechniqueTable
}

var _ StyleMatcher = ClassMatcher{}

// MatchingTechniques implements StyleMatcher.
func (m ClassMatcher) MatchingTechniques(env *Env) []Technique {
	var matched []Technique

	for _, t := range m.Table.techniques {
		if t.AppliesTo(env.Class) {
			matched = append(matched, t)
		}
	}

	return matched
}
