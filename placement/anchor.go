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
	"math"

	"github.com/golang/geo/r2"
)

// Config carries the tunables of the placement engine.  Anchor families are
// configuration data, not compiled-in constants, so the algorithm stays
// parametric and testable independent of style data.
type Config struct {
	// CenteredAnchors is the clockwise candidate list for layouts with
	// exactly one centered axis.
	CenteredAnchors []AnchorPlacement

	// CorneredAnchors is the clockwise candidate list for layouts with no
	// centered axis.  Disjoint from CenteredAnchors; a label only searches
	// within its own family.
	CorneredAnchors []AnchorPlacement

	// CollisionMargin is the fixed screen-space margin in pixels added
	// around measured boxes before collision testing.  Applied after
	// distance scaling, so the visual margin is constant across zoom.
	CollisionMargin float64

	// MinAverageCharWidth drives the path-label-too-small heuristic.
	MinAverageCharWidth float64

	// HorizonAngle is the maximum angle in radians between the view
	// direction and a candidate direction on spherical projections;
	// beyond it the label hides regardless of distance.
	HorizonAngle float64

	// FadeTime is the fade duration in seconds for new element states.
	FadeTime float64
}

// Default placement tunables.
const (
	DefaultCollisionMargin     = 4.0
	DefaultMinAverageCharWidth = 5.0
	DefaultHorizonAngle        = math.Pi / 4
)

// DefaultConfig returns the stock anchor families and tunables.
func DefaultConfig() Config {
	return Config{
		CenteredAnchors: []AnchorPlacement{
			{H: HCenter, V: VTop},
			{H: HRight, V: VCenter},
			{H: HCenter, V: VBottom},
			{H: HLeft, V: VCenter},
		},
		CorneredAnchors: []AnchorPlacement{
			{H: HRight, V: VTop},
			{H: HRight, V: VBottom},
			{H: HLeft, V: VBottom},
			{H: HLeft, V: VTop},
		},
		CollisionMargin:     DefaultCollisionMargin,
		MinAverageCharWidth: DefaultMinAverageCharWidth,
		HorizonAngle:        DefaultHorizonAngle,
		FadeTime:            DefaultFadeTime,
	}
}

// anchorFamily returns the candidate list the placement belongs to.
func (c *Config) anchorFamily(p AnchorPlacement) []AnchorPlacement {
	if p.IsCornered() {
		return c.CorneredAnchors
	}

	return c.CenteredAnchors
}

// anchorStartIndex locates p in its family.  When the styled layout is not
// an exact member of the predefined clockwise list, the nearest member by
// Manhattan distance over the axis signs wins; ties resolve to the lowest
// index.
func anchorStartIndex(family []AnchorPlacement, p AnchorPlacement) int {
	best := 0
	bestDist := math.MaxInt

	for i, cand := range family {
		if cand == p {
			return i
		}

		dist := absInt(int(cand.H)-int(p.H)) + absInt(int(cand.V)-int(p.V))
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}

	return best
}

// computeTextOffset yields the displacement of the text box reference point
// from the label's screen anchor for the given placement.  It accounts for
// the explicit offsets, mirrored so that switching anchors preserves the
// text's Manhattan distance from the icon, and pushes the text outside the
// icon's footprint on the anchor side.
func computeTextOffset(element *TextElement, placement AnchorPlacement, scale float64) r2.Point {
	offset := r2.Point{X: element.XOffset * scale, Y: element.YOffset * scale}
	offset = mirrorOffset(offset, element.Layout, placement)

	if !element.HasIcon() {
		return offset
	}

	halfW := element.Icon.Width * scale / 2
	halfH := element.Icon.Height * scale / 2

	switch placement.H {
	case HLeft:
		offset.X -= halfW
	case HRight:
		offset.X += halfW
	}

	switch placement.V {
	case VTop:
		offset.Y -= halfH
	case VBottom:
		offset.Y += halfH
	}

	return offset
}

// mirrorOffset flips the explicit offset per axis when the placement moved
// to the opposite side of the declared layout.  Center-based anchors mirror
// across both axes; cornered anchors mirror only the flipped axis, with the
// magnitude never growing, so a partial anchor change cannot overshoot.
func mirrorOffset(offset r2.Point, layout, placement AnchorPlacement) r2.Point {
	if layout == placement {
		return offset
	}

	if !layout.IsCornered() {
		if placement.H != layout.H {
			offset.X = -offset.X
		}

		if placement.V != layout.V {
			offset.Y = -offset.Y
		}

		return offset
	}

	if int(placement.H)*int(layout.H) < 0 {
		offset.X = -offset.X
	}

	if int(placement.V)*int(layout.V) < 0 {
		offset.Y = -offset.Y
	}

	return offset
}

// boxForPlacement positions a w*h box relative to pos according to the
// placement, in screen coordinates with y growing downwards.
func boxForPlacement(pos r2.Point, w, h float64, placement AnchorPlacement) r2.Rect {
	var x0 float64

	switch placement.H {
	case HLeft:
		x0 = pos.X - w
	case HCenter:
		x0 = pos.X - w/2
	case HRight:
		x0 = pos.X
	}

	var y0 float64

	switch placement.V {
	case VTop:
		y0 = pos.Y - h
	case VCenter:
		y0 = pos.Y - h/2
	case VBottom:
		y0 = pos.Y
	}

	return r2.RectFromPoints(r2.Point{X: x0, Y: y0}, r2.Point{X: x0 + w, Y: y0 + h})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
