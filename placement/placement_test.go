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
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"

	"github.com/tilecut/tilecut/model"
)

// fixedMeasurer reports a constant text size regardless of content.
type fixedMeasurer struct {
	w, h float64

	path   PathMeasurement
	pathOK bool
}

func (m fixedMeasurer) MeasureText(string, float64) (float64, float64) {
	return m.w, m.h
}

func (m fixedMeasurer) MeasurePath(string, []r2.Point, float64) (PathMeasurement, bool) {
	return m.path, m.pathOK
}

type neverReady struct{}

func (neverReady) Ready(*TextElement) bool { return false }

func newTestEngine(m TextMeasurer) *Engine {
	return NewEngine(DefaultConfig(), NewScreenCollisions(200, 200), m, nil)
}

// fadeToVisible drives the text part visible so the state counts as
// persistent in subsequent placement calls.
func fadeToVisible(s *TextElementState) {
	s.TextRenderState().StartFadeIn(0, false)
	s.TextRenderState().UpdateFading(0.4, false)
}

func TestCheckReadyForPlacement(t *testing.T) {
	e := newTestEngine(fixedMeasurer{w: 30, h: 10})

	view := &ViewState{
		Zoom:          10,
		ViewDirection: r3.Vector{Z: -1},
	}

	tests := []struct {
		name     string
		element  TextElement
		view     ViewState
		engine   *Engine
		expected Result
	}{
		{
			"ready",
			TextElement{MinZoom: 5, MaxZoom: 15},
			*view,
			e,
			Ok,
		},
		{
			"hidden",
			TextElement{Hidden: true},
			*view,
			e,
			Invisible,
		},
		{
			"below zoom range",
			TextElement{MinZoom: 12},
			*view,
			e,
			Invisible,
		},
		{
			"above zoom range",
			TextElement{MaxZoom: 8},
			*view,
			e,
			Invisible,
		},
		{
			"beyond max view distance",
			TextElement{Position: r3.Vector{X: 2000}},
			ViewState{Zoom: 10, MaxViewDistance: 1000, ViewDirection: r3.Vector{Z: -1}},
			e,
			Invisible,
		},
		{
			"behind the horizon on a sphere",
			TextElement{Position: r3.Vector{X: 100}},
			ViewState{Zoom: 10, Projection: model.Spherical, ViewDirection: r3.Vector{Z: -1}},
			e,
			Invisible,
		},
		{
			"resources pending",
			TextElement{},
			*view,
			NewEngine(DefaultConfig(), NewScreenCollisions(200, 200), fixedMeasurer{}, neverReady{}),
			NotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.engine.NewState(&tt.element)
			assert.Equal(t, tt.expected, tt.engine.CheckReadyForPlacement(state, &tt.view))
		})
	}
}

func TestPlacePointLabelOnEmptyScreen(t *testing.T) {
	e := newTestEngine(fixedMeasurer{w: 30, h: 10})

	element := &TextElement{Text: "Oslo", ReservesSpace: true}
	state := e.NewState(element)

	assert.Equal(t, Ok, e.PlacePointLabel(state, r2.Point{}, 1, false, false))

	bounds, ok := state.Bounds()
	assert.True(t, ok)
	assert.Equal(t, rect(-15, -5, 15, 5), bounds)
}

func TestNearbyLabelsCollide(t *testing.T) {
	e := newTestEngine(fixedMeasurer{w: 30, h: 10})

	first := e.NewState(&TextElement{Text: "Bergen", ReservesSpace: true})
	assert.Equal(t, Ok, e.PlacePointLabel(first, r2.Point{}, 1, false, false))

	// 10px apart with 10px tall boxes and a 4px margin: overlap.
	second := e.NewState(&TextElement{Text: "Asker", ReservesSpace: true})
	assert.Equal(t, Invisible, e.PlacePointLabel(second, r2.Point{Y: 10}, 1, false, false))

	// The same collision on an already-visible label fades it out instead.
	third := e.NewState(&TextElement{Text: "Lier", ReservesSpace: true})
	fadeToVisible(third)
	assert.Equal(t, Rejected, e.PlacePointLabel(third, r2.Point{Y: 10}, 1, false, false))

	// Far enough away to clear both boxes and margins.
	fourth := e.NewState(&TextElement{Text: "Moss", ReservesSpace: true})
	assert.Equal(t, Ok, e.PlacePointLabel(fourth, r2.Point{Y: 40}, 1, false, false))
}

func TestPlacePointLabelRepeatable(t *testing.T) {
	e := newTestEngine(fixedMeasurer{w: 30, h: 10})

	// A non-reserving label leaves the collision state untouched, so a
	// repeated placement in the same frame lands on the same bounds.
	state := e.NewState(&TextElement{Text: "Halden"})

	assert.Equal(t, Ok, e.PlacePointLabel(state, r2.Point{X: 5, Y: 5}, 1, false, false))
	first, ok := state.Bounds()
	assert.True(t, ok)

	assert.Equal(t, Ok, e.PlacePointLabel(state, r2.Point{X: 5, Y: 5}, 1, false, false))
	second, ok := state.Bounds()
	assert.True(t, ok)

	assert.Equal(t, first, second)
}

func TestMayOverlapSkipsCollision(t *testing.T) {
	e := newTestEngine(fixedMeasurer{w: 30, h: 10})

	first := e.NewState(&TextElement{Text: "a", ReservesSpace: true})
	assert.Equal(t, Ok, e.PlacePointLabel(first, r2.Point{}, 1, false, false))

	second := e.NewState(&TextElement{Text: "b", MayOverlap: true})
	assert.Equal(t, Ok, e.PlacePointLabel(second, r2.Point{}, 1, false, false))
}

func TestOffscreenLabelIsInvisible(t *testing.T) {
	e := newTestEngine(fixedMeasurer{w: 30, h: 10})

	state := e.NewState(&TextElement{Text: "far away"})
	fadeToVisible(state)

	// Off-viewport is Invisible even for persistent labels.
	assert.Equal(t, Invisible, e.PlacePointLabel(state, r2.Point{X: 500}, 1, false, false))
}

func TestMultiAnchorFallback(t *testing.T) {
	e := newTestEngine(fixedMeasurer{w: 30, h: 10})

	// Blocks only the right-of-point anchor.
	e.Collisions().Allocate(CollisionBox{Rect: rect(25, -1, 30, 1)})

	element := &TextElement{
		Text:          "Drammen",
		Layout:        AnchorPlacement{H: HRight, V: VCenter},
		ReservesSpace: true,
	}
	state := e.NewState(element)

	assert.Equal(t, Ok, e.PlacePointLabel(state, r2.Point{}, 1, true, false))
	assert.Equal(t, AnchorPlacement{H: HCenter, V: VBottom}, state.TextPlacement())

	// The winning anchor sticks for the next frame.
	e.Collisions().Reset()
	e.Collisions().Allocate(CollisionBox{Rect: rect(25, -1, 30, 1)})

	assert.Equal(t, Ok, e.PlacePointLabel(state, r2.Point{}, 1, true, false))
	assert.Equal(t, AnchorPlacement{H: HCenter, V: VBottom}, state.TextPlacement())
}

func TestCenteredLayoutSkipsAnchorSearch(t *testing.T) {
	e := newTestEngine(fixedMeasurer{w: 30, h: 10})

	e.Collisions().Allocate(CollisionBox{Rect: rect(-2, -2, 2, 2)})

	element := &TextElement{Text: "Halden"}
	state := e.NewState(element)

	// Fully centered layouts get no fallback anchors.
	assert.Equal(t, Invisible, e.PlacePointLabel(state, r2.Point{}, 1, true, false))
}

func TestAllAnchorsBlocked(t *testing.T) {
	e := newTestEngine(fixedMeasurer{w: 30, h: 10})

	e.Collisions().Allocate(CollisionBox{Rect: rect(-60, -60, 60, 60)})

	element := &TextElement{
		Text:   "Fredrikstad",
		Layout: AnchorPlacement{H: HRight, V: VTop},
	}

	fresh := e.NewState(element)
	assert.Equal(t, Invisible, e.PlacePointLabel(fresh, r2.Point{}, 1, true, false))

	visible := e.NewState(element)
	fadeToVisible(visible)
	assert.Equal(t, Rejected, e.PlacePointLabel(visible, r2.Point{}, 1, true, false))
}

func TestIconRejectedSuppressesNewText(t *testing.T) {
	e := newTestEngine(fixedMeasurer{w: 30, h: 10})

	element := &TextElement{Text: "Sandvika"}

	fresh := e.NewState(element)
	assert.Equal(t, Invisible, e.PlacePointLabel(fresh, r2.Point{}, 1, true, true))

	visible := e.NewState(element)
	fadeToVisible(visible)
	assert.Equal(t, Rejected, e.PlacePointLabel(visible, r2.Point{}, 1, true, true))
}

func TestPlaceIcon(t *testing.T) {
	e := newTestEngine(fixedMeasurer{})

	icon := &IconInfo{Width: 16, Height: 16, ReservesSpace: true}

	first := e.NewState(&TextElement{Icon: icon})
	assert.Equal(t, Ok, e.PlaceIcon(first, r2.Point{}, 1))

	// Same spot, new icon: suppressed without fading.
	second := e.NewState(&TextElement{Icon: icon})
	assert.Equal(t, Invisible, e.PlaceIcon(second, r2.Point{X: 4}, 1))

	// Same spot, already-visible icon: fades out.
	third := e.NewState(&TextElement{Icon: icon})
	third.IconRenderState().StartFadeIn(0, false)
	third.IconRenderState().UpdateFading(0.4, false)
	assert.Equal(t, Rejected, e.PlaceIcon(third, r2.Point{X: 4}, 1))

	// Overlap permitted.
	overlapping := &IconInfo{Width: 16, Height: 16, MayOverlap: true}
	fourth := e.NewState(&TextElement{Icon: overlapping})
	assert.Equal(t, Ok, e.PlaceIcon(fourth, r2.Point{X: 4}, 1))

	// Off the viewport.
	fifth := e.NewState(&TextElement{Icon: icon})
	assert.Equal(t, Invisible, e.PlaceIcon(fifth, r2.Point{X: 300}, 1))

	// No icon part at all.
	sixth := e.NewState(&TextElement{})
	assert.Equal(t, Invisible, e.PlaceIcon(sixth, r2.Point{}, 1))
}

func TestPlacePathLabel(t *testing.T) {
	measurement := PathMeasurement{
		Bounds: rect(0, 0, 40, 10),
		GlyphBoxes: []r2.Rect{
			rect(0, 0, 10, 10),
			rect(15, 0, 25, 10),
			rect(30, 0, 40, 10),
		},
	}

	path := []r2.Point{{X: 0, Y: 5}, {X: 40, Y: 5}}

	t.Run("empty screen", func(t *testing.T) {
		e := newTestEngine(fixedMeasurer{path: measurement, pathOK: true})
		state := e.NewState(&TextElement{Text: "Ringveien", ReservesSpace: true})

		assert.Equal(t, Ok, e.PlacePathLabel(state, path, 1))

		bounds, ok := state.Bounds()
		assert.True(t, ok)
		assert.Equal(t, measurement.Bounds, bounds)
	})

	t.Run("measurement failure rejects", func(t *testing.T) {
		e := newTestEngine(fixedMeasurer{pathOK: false})
		state := e.NewState(&TextElement{Text: "Ringveien"})

		assert.Equal(t, Rejected, e.PlacePathLabel(state, path, 1))
	})

	t.Run("glyph collision suppresses new label", func(t *testing.T) {
		e := newTestEngine(fixedMeasurer{path: measurement, pathOK: true})
		e.Collisions().Allocate(CollisionBox{Rect: rect(18, 2, 22, 8)})

		state := e.NewState(&TextElement{Text: "Ringveien"})
		assert.Equal(t, Invisible, e.PlacePathLabel(state, path, 1))
	})

	t.Run("glyph collision fades out visible label", func(t *testing.T) {
		e := newTestEngine(fixedMeasurer{path: measurement, pathOK: true})
		e.Collisions().Allocate(CollisionBox{Rect: rect(18, 2, 22, 8)})

		state := e.NewState(&TextElement{Text: "Ringveien"})
		fadeToVisible(state)
		assert.Equal(t, Rejected, e.PlacePathLabel(state, path, 1))
	})

	t.Run("two path labels with interleaved glyphs coexist", func(t *testing.T) {
		e := newTestEngine(fixedMeasurer{path: measurement, pathOK: true})

		first := e.NewState(&TextElement{Text: "Ringveien", ReservesSpace: true})
		assert.Equal(t, Ok, e.PlacePathLabel(first, path, 1))

		// The second label's coarse box overlaps the first, but every one
		// of its glyphs lands in the gaps between the first's glyphs.
		interleaved := PathMeasurement{
			Bounds:     rect(10.5, 0, 29.5, 10),
			GlyphBoxes: []r2.Rect{rect(11, 4, 14, 6)},
		}

		// Margins still apply per glyph, so shrink them into the gap.
		e2 := NewEngine(Config{
			CenteredAnchors:     DefaultConfig().CenteredAnchors,
			CorneredAnchors:     DefaultConfig().CorneredAnchors,
			CollisionMargin:     0,
			MinAverageCharWidth: DefaultMinAverageCharWidth,
			HorizonAngle:        DefaultHorizonAngle,
			FadeTime:            DefaultFadeTime,
		}, e.Collisions(), fixedMeasurer{path: interleaved, pathOK: true}, nil)

		second := e2.NewState(&TextElement{Text: "~"})
		assert.Equal(t, Ok, e2.PlacePathLabel(second, path, 1))
	})
}

func TestIsPathLabelTooSmall(t *testing.T) {
	e := newTestEngine(fixedMeasurer{})

	// Three runes need at least 15px of diagonal at the default average
	// char width.
	assert.True(t, e.IsPathLabelTooSmall("abc", r2.Point{}, r2.Point{X: 10}))
	assert.False(t, e.IsPathLabelTooSmall("abc", r2.Point{}, r2.Point{X: 20}))

	assert.False(t, e.IsPathLabelTooSmall("", r2.Point{}, r2.Point{}))
}

func TestSortByPriority(t *testing.T) {
	low := &TextElementState{Element: &TextElement{Text: "low", Priority: 1}}
	mid1 := &TextElementState{Element: &TextElement{Text: "mid1", Priority: 5}}
	mid2 := &TextElementState{Element: &TextElement{Text: "mid2", Priority: 5}}
	high := &TextElementState{Element: &TextElement{Text: "high", Priority: 9}}

	states := []*TextElementState{mid1, low, mid2, high}
	SortByPriority(states)

	assert.Equal(t, []*TextElementState{high, mid1, mid2, low}, states)
}