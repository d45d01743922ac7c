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

//go:generate stringer -type=Result

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/tilecut/tilecut/model"
)

// Result is the tri-state outcome of a placement attempt, plus NotReady for
// the pre-placement dependency check.  Results are not errors; the caller
// consumes them to drive fading and retry-next-frame logic.
type Result int

const (
	// Ok means the element was placed.
	Ok Result = iota

	// Rejected means the element collided; an already-visible element
	// should fade out.
	Rejected

	// Invisible means the element cannot be seen at all; a new element
	// must not flash in before vanishing.
	Invisible

	// NotReady means dependent data is still loading; retry next frame.
	NotReady
)

// ViewState is the per-frame camera and timing context.
type ViewState struct {
	// Time is the frame timestamp in seconds.
	Time float64

	Zoom float64

	CameraPosition r3.Vector

	// ViewDirection is the unit vector the camera looks along.
	ViewDirection r3.Vector

	// MaxViewDistance hides candidates farther away; zero disables the check.
	MaxViewDistance float64

	Projection model.ProjectionKind

	DisableFading bool
}

// Engine runs collision-aware label placement.  It must be driven from a
// single frame loop: each label's collision test depends on the cumulative
// allocation state of all previously placed labels, so labels are processed
// in one fixed priority order per frame.
type Engine struct {
	cfg        Config
	collisions *ScreenCollisions
	measurer   TextMeasurer
	resources  ResourceChecker
}

// NewEngine wires the engine.  resources may be nil, meaning all dependent
// data is always ready.
func NewEngine(cfg Config, collisions *ScreenCollisions, measurer TextMeasurer, resources ResourceChecker) *Engine {
	return &Engine{
		cfg:        cfg,
		collisions: collisions,
		measurer:   measurer,
		resources:  resources,
	}
}

// Collisions exposes the shared collision structure.
func (e *Engine) Collisions() *ScreenCollisions { return e.collisions }

// NewState wraps an element with the engine's fade configuration.
func (e *Engine) NewState(element *TextElement) *TextElementState {
	return NewTextElementState(element, e.cfg.FadeTime)
}

// SortByPriority orders states by descending priority, the fixed order the
// frame loop must feed them to the placement calls.
func SortByPriority(states []*TextElementState) {
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].Element.Priority > states[j].Element.Priority
	})
}

// CheckReadyForPlacement rejects a candidate before any geometric work: the
// element is hidden, its dependent data has not loaded yet (NotReady, retry
// next frame), it is outside the active zoom range, it exceeds the maximum
// view distance, or — on spherical projections — it sits beyond the horizon
// angle, wrapped around the globe's far side.
func (e *Engine) CheckReadyForPlacement(state *TextElementState, view *ViewState) Result {
	element := state.Element

	if element.Hidden {
		return Invisible
	}

	if e.resources != nil && !e.resources.Ready(element) {
		return NotReady
	}

	if view.Zoom < element.MinZoom || (element.MaxZoom > 0 && view.Zoom > element.MaxZoom) {
		return Invisible
	}

	toElement := element.Position.Sub(view.CameraPosition)
	dist := toElement.Norm()

	if view.MaxViewDistance > 0 && dist > view.MaxViewDistance {
		return Invisible
	}

	if view.Projection == model.Spherical && dist > 0 {
		cos := toElement.Normalize().Dot(view.ViewDirection)
		if math.Acos(clampCos(cos)) > e.cfg.HorizonAngle {
			return Invisible
		}
	}

	return Ok
}

// PlaceIcon places the icon part of a label.  The icon's screen box derives
// from its rendered size and offset at the given scale.  Off-viewport icons
// are Invisible.  A colliding icon that does not permit overlap is Rejected
// when it was already visible, so it can fade out, and Invisible when new.
func (e *Engine) PlaceIcon(state *TextElementState, pos r2.Point, scale float64) Result {
	icon := state.Element.Icon
	if icon == nil {
		return Invisible
	}

	center := r2.Point{X: pos.X + icon.XOffset*scale, Y: pos.Y + icon.YOffset*scale}
	halfW := icon.Width * scale / 2
	halfH := icon.Height * scale / 2
	box := r2.RectFromPoints(
		r2.Point{X: center.X - halfW, Y: center.Y - halfH},
		r2.Point{X: center.X + halfW, Y: center.Y + halfH},
	)

	if !e.collisions.IsVisible(box) {
		return Invisible
	}

	persistent := state.IconRenderState() != nil && state.IconRenderState().IsVisible()

	if !icon.MayOverlap && e.collisions.IsAllocated(box) {
		if persistent {
			return Rejected
		}

		return Invisible
	}

	if icon.ReservesSpace {
		e.collisions.Allocate(CollisionBox{Rect: box})
	}

	return Ok
}

// PlacePointLabel places the text part of a point label, optionally running
// the multi-anchor fallback search.  pos is the label's anchor projected to
// screen space.  iconRejected propagates the outcome of a preceding
// PlaceIcon call for the same label.
//
// On success the winning anchor is recorded into the persistent state so
// the next frame's search starts from a stable point; this biases toward
// stability over optimality and prevents anchor oscillation near collision
// boundaries.  Bounds are only mutated when an attempt succeeds.
func (e *Engine) PlacePointLabel(state *TextElementState, pos r2.Point, scale float64, multiAnchor, iconRejected bool) Result {
	element := state.Element
	persistent := state.IsVisible()

	// A new label whose icon was already rejected would show orphaned
	// floating text.
	if !persistent && iconRejected {
		return Invisible
	}

	current := state.TextPlacement()

	if !multiAnchor || iconRejected || element.Layout.IsCentered() {
		result := e.placeAtAnchor(state, current, pos, scale, persistent, iconRejected)
		if result == Ok {
			state.SetTextPlacement(current)
		}

		return result
	}

	family := e.cfg.anchorFamily(current)
	if len(family) == 0 {
		return e.placeAtAnchor(state, current, pos, scale, persistent, iconRejected)
	}

	start := anchorStartIndex(family, current)
	anyRejected := false

	for i := range family {
		candidate := family[(start+i)%len(family)]

		switch e.placeAtAnchor(state, candidate, pos, scale, persistent, iconRejected) {
		case Ok:
			state.SetTextPlacement(candidate)

			return Ok
		case Rejected:
			anyRejected = true
		}
	}

	// All candidates off-viewport means the label is simply not on screen.
	if !anyRejected {
		return Invisible
	}

	if persistent {
		return Rejected
	}

	return Invisible
}

// placeAtAnchor is the per-anchor placement test shared by the single- and
// multi-anchor paths.
func (e *Engine) placeAtAnchor(state *TextElementState, anchor AnchorPlacement, pos r2.Point, scale float64, persistent, iconRejected bool) Result {
	element := state.Element

	offset := computeTextOffset(element, anchor, scale)
	w, h := e.measurer.MeasureText(element.Text, scale)
	box := boxForPlacement(r2.Point{X: pos.X + offset.X, Y: pos.Y + offset.Y}, w, h, anchor)

	// The margin is constant screen pixels, added after distance scaling.
	testBox := box.ExpandedByMargin(e.cfg.CollisionMargin)

	if !e.collisions.IsVisible(testBox) {
		return Invisible
	}

	if iconRejected {
		if persistent {
			return Rejected
		}

		return Invisible
	}

	if !element.MayOverlap && e.collisions.IsAllocated(testBox) {
		if persistent {
			return Rejected
		}

		return Invisible
	}

	// Skipping allocation for rejected labels lets a lower-priority label
	// claim freed space within the same frame sequence instead of waiting
	// out a full fade cycle.
	if element.ReservesSpace {
		e.collisions.Allocate(CollisionBox{Rect: testBox})
	}

	state.SetBounds(box)

	return Ok
}

// PlacePathLabel places a label whose text follows an explicit screen-space
// path.  Measurement failure, meaning the text cannot fit the path
// geometry, is an immediate Rejected.  A coarse bounding-box check runs
// first; the per-glyph fine-grained test runs only when the coarse search
// found candidate overlaps, and only for glyphs not already fully visible
// and unobstructed.
func (e *Engine) PlacePathLabel(state *TextElementState, path []r2.Point, scale float64) Result {
	element := state.Element
	persistent := state.IsVisible()

	measurement, ok := e.measurer.MeasurePath(element.Text, path, scale)
	if !ok {
		return Rejected
	}

	testBox := measurement.Bounds.ExpandedByMargin(e.cfg.CollisionMargin)

	if !e.collisions.IsVisible(testBox) {
		return Invisible
	}

	if !element.MayOverlap {
		candidates := e.collisions.Search(testBox)
		if len(candidates) > 0 {
			for _, glyph := range measurement.GlyphBoxes {
				glyphBox := glyph.ExpandedByMargin(e.cfg.CollisionMargin)

				if e.collisions.IntersectsDetails(glyphBox, candidates) {
					if persistent {
						return Rejected
					}

					return Invisible
				}
			}
		}
	}

	if element.ReservesSpace {
		e.collisions.Allocate(CollisionBox{Rect: testBox, Details: measurement.GlyphBoxes})
	}

	state.SetBounds(measurement.Bounds)

	return Ok
}

// IsPathLabelTooSmall is a cheap conservative filter applied before any
// font measurement: the screen-space diagonal between the path's endpoints
// must fit at least an average-width glyph per character.
func (e *Engine) IsPathLabelTooSmall(text string, start, end r2.Point) bool {
	diagonal := end.Sub(start).Norm()

	return diagonal < float64(len([]rune(text)))*e.cfg.MinAverageCharWidth
}

func clampCos(v float64) float64 {
	if v < -1 {
		return -1
	}

	if v > 1 {
		return 1
	}

	return v
}
