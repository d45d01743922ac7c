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

package placement

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// HorizontalPlacement positions text horizontally relative to its reference
// point.
type HorizontalPlacement int8

const (
	// HLeft places the text to the left of the point.
	HLeft HorizontalPlacement = -1

	// HCenter centers the text on the point.
	HCenter HorizontalPlacement = 0

	// HRight places the text to the right of the point.
	HRight HorizontalPlacement = 1
)

// VerticalPlacement positions text vertically relative to its reference
// point.  Screen y grows downwards, so VTop means above the point.
type VerticalPlacement int8

const (
	// VTop places the text above the point.
	VTop VerticalPlacement = -1

	// VCenter centers the text on the point.
	VCenter VerticalPlacement = 0

	// VBottom places the text below the point.
	VBottom VerticalPlacement = 1
)

// AnchorPlacement is a (horizontal, vertical) alignment pair defining where
// text sits relative to its reference point.
type AnchorPlacement struct {
	H HorizontalPlacement
	V VerticalPlacement
}

// IsCentered reports whether both axes are centered.  Fully centered
// layouts leave no room for alternative anchors and are excluded from the
// multi-anchor search.
func (a AnchorPlacement) IsCentered() bool {
	return a.H == HCenter && a.V == VCenter
}

// IsCornered reports whether neither axis is centered.
func (a AnchorPlacement) IsCornered() bool {
	return a.H != HCenter && a.V != VCenter
}

// IconInfo describes the icon part of a label.
type IconInfo struct {
	// Width and Height are the rendered icon size in pixels before
	// distance scaling.
	Width  float64
	Height float64

	// XOffset and YOffset displace the icon from the anchor, in pixels.
	XOffset float64
	YOffset float64

	// ImageTexture names the icon image in the external lookup table.
	ImageTexture string

	MayOverlap    bool
	ReservesSpace bool
}

// TextElement is a text or icon label candidate.  It is created when a
// tile's decoded content becomes visible and persists across frames wrapped
// in a TextElementState.
type TextElement struct {
	Text string

	// Position is the anchor point in world space.
	Position r3.Vector

	// Layout is the theme-declared anchor placement.
	Layout AnchorPlacement

	// XOffset and YOffset displace the text from the anchor, in pixels.
	XOffset float64
	YOffset float64

	MinZoom float64
	MaxZoom float64

	Priority float64

	// MayOverlap permits the text to overlap previously placed elements.
	MayOverlap bool

	// ReservesSpace makes a successful placement claim collision space.
	ReservesSpace bool

	// Hidden marks the element as not to be placed at all.
	Hidden bool

	// Icon is the optional icon part.
	Icon *IconInfo
}

// HasIcon reports whether the label carries an icon part.
func (e *TextElement) HasIcon() bool { return e.Icon != nil }

// TextElementState is the persistent per-label wrapper tracking the current
// anchor, the bounds cache and the fade states across frames.  It never
// holds two simultaneously active anchor placements.
type TextElementState struct {
	Element *TextElement

	textRenderState *RenderState
	iconRenderState *RenderState

	placement    AnchorPlacement
	hasPlacement bool

	bounds    r2.Rect
	hasBounds bool
}

// NewTextElementState wraps element for frame-to-frame tracking.
func NewTextElementState(element *TextElement, fadeTime float64) *TextElementState {
	s := &TextElementState{
		Element:         element,
		textRenderState: NewRenderState(fadeTime),
	}

	if element.HasIcon() {
		s.iconRenderState = NewRenderState(fadeTime)
	}

	return s
}

// TextRenderState returns the fade state of the text part.
func (s *TextElementState) TextRenderState() *RenderState { return s.textRenderState }

// IconRenderState returns the fade state of the icon part, nil without icon.
func (s *TextElementState) IconRenderState() *RenderState { return s.iconRenderState }

// IsVisible reports whether any part of the label is currently visible.
func (s *TextElementState) IsVisible() bool {
	if s.textRenderState.IsVisible() {
		return true
	}

	return s.iconRenderState != nil && s.iconRenderState.IsVisible()
}

// TextPlacement returns the anchor the label last placed with, falling back
// to the theme-declared layout.
func (s *TextElementState) TextPlacement() AnchorPlacement {
	if s.hasPlacement {
		return s.placement
	}

	return s.Element.Layout
}

// SetTextPlacement records the winning anchor so the next frame's search
// starts from a stable point.
func (s *TextElementState) SetTextPlacement(p AnchorPlacement) {
	s.placement = p
	s.hasPlacement = true
}

// Bounds returns the cached screen bounds of the last successful placement.
func (s *TextElementState) Bounds() (r2.Rect, bool) {
	return s.bounds, s.hasBounds
}

// SetBounds caches screen bounds.  Only successful placements may call
// this; failed attempts must not corrupt the cache used by the next frame's
// keep-current-placement fast path.
func (s *TextElementState) SetBounds(b r2.Rect) {
	s.bounds = b
	s.hasBounds = true
}

// UpdateFading advances both fade machines.
func (s *TextElementState) UpdateFading(time float64, disableFading bool) {
	s.textRenderState.UpdateFading(time, disableFading)

	if s.iconRenderState != nil {
		s.iconRenderState.UpdateFading(time, disableFading)
	}
}

// PathMeasurement is the result of measuring text along an explicit path.
type PathMeasurement struct {
	// Bounds is the coarse box around the whole laid-out text.
	Bounds r2.Rect

	// GlyphBoxes holds one box per glyph, for fine-grained collision.
	GlyphBoxes []r2.Rect
}

// TextMeasurer is the external font/glyph oracle.  Implementations measure
// already-shaped text; rasterization and font loading live outside this
// package.
type TextMeasurer interface {
	// MeasureText returns the width and height in pixels of the text at
	// the given scale.
	MeasureText(text string, scale float64) (width, height float64)

	// MeasurePath lays the text along a screen-space path.  ok is false
	// when the text cannot fit the path geometry.
	MeasurePath(text string, path []r2.Point, scale float64) (m PathMeasurement, ok bool)
}

// ResourceChecker reports whether external data a label depends on, such as
// an icon lookup table, finished loading.  A nil checker means always ready.
type ResourceChecker interface {
	Ready(element *TextElement) bool
}
