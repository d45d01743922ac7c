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

// Package placement places and manages on-screen text and icon labels with
// collision avoidance and temporal fading.  Screen space is centered at the
// origin with y growing downwards.
package placement

import (
	"github.com/golang/geo/r2"
	"github.com/tidwall/rtree"
)

// CollisionBox is an axis-aligned screen-space rectangle, optionally with
// per-glyph sub-boxes for fine-grained path-label collision.
type CollisionBox struct {
	Rect r2.Rect

	// Details holds per-glyph boxes.  A nil Details means the coarse
	// rectangle is authoritative.
	Details []r2.Rect
}

// IntersectsRect reports whether the box overlaps r, consulting the
// per-glyph detail boxes when present.
func (b *CollisionBox) IntersectsRect(r r2.Rect) bool {
	if !b.Rect.Intersects(r) {
		return false
	}

	if b.Details == nil {
		return true
	}

	for _, d := range b.Details {
		if d.Intersects(r) {
			return true
		}
	}

	return false
}

// ScreenCollisions tracks which screen regions are already claimed by placed
// labels and icons during one frame.  Allocation is append-only per frame;
// Reset clears everything.  Not safe for concurrent use: placement within a
// frame is inherently sequential.
type ScreenCollisions struct {
	viewport r2.Rect
	tree     rtree.RTreeG[CollisionBox]
}

// NewScreenCollisions returns an empty structure for the given viewport in
// pixels.
func NewScreenCollisions(width, height float64) *ScreenCollisions {
	sc := &ScreenCollisions{}
	sc.Update(width, height)

	return sc
}

// Update resets the allocation state to an empty viewport of the given pixel
// dimensions, centered at the origin.
func (sc *ScreenCollisions) Update(width, height float64) {
	sc.viewport = r2.RectFromPoints(
		r2.Point{X: -width / 2, Y: -height / 2},
		r2.Point{X: width / 2, Y: height / 2},
	)
	sc.Reset()
}

// Reset drops all allocations, keeping the viewport.
func (sc *ScreenCollisions) Reset() {
	sc.tree = rtree.RTreeG[CollisionBox]{}
}

// Viewport returns the current screen bounds.
func (sc *ScreenCollisions) Viewport() r2.Rect { return sc.viewport }

// IsVisible is true if box intersects the viewport at all.
func (sc *ScreenCollisions) IsVisible(box r2.Rect) bool {
	return sc.viewport.Intersects(box)
}

// IsFullyVisible is true if the viewport contains the whole box.
func (sc *ScreenCollisions) IsFullyVisible(box r2.Rect) bool {
	return sc.viewport.Contains(box)
}

// Allocate records the box as occupied for the rest of the frame.
func (sc *ScreenCollisions) Allocate(box CollisionBox) {
	lo, hi := corners(box.Rect)
	sc.tree.Insert(lo, hi, box)
}

// IsAllocated is true if box overlaps any previously allocated box,
// consulting per-glyph details of the allocated boxes.
func (sc *ScreenCollisions) IsAllocated(box r2.Rect) bool {
	var hit bool

	lo, hi := corners(box)
	sc.tree.Search(lo, hi, func(_, _ [2]float64, data CollisionBox) bool {
		if data.IntersectsRect(box) {
			hit = true

			return false
		}

		return true
	})

	return hit
}

// Search returns the previously allocated boxes overlapping box.  This is
// the broad phase for path labels; run IntersectsDetails on the result.
func (sc *ScreenCollisions) Search(box r2.Rect) []CollisionBox {
	var candidates []CollisionBox

	lo, hi := corners(box)
	sc.tree.Search(lo, hi, func(_, _ [2]float64, data CollisionBox) bool {
		candidates = append(candidates, data)

		return true
	})

	return candidates
}

// IntersectsDetails runs the fine-grained overlap test of box against the
// candidates' per-glyph sub-boxes.
func (sc *ScreenCollisions) IntersectsDetails(box r2.Rect, candidates []CollisionBox) bool {
	for i := range candidates {
		if candidates[i].IntersectsRect(box) {
			return true
		}
	}

	return false
}

func corners(r r2.Rect) (lo, hi [2]float64) {
	return [2]float64{r.X.Lo, r.Y.Lo}, [2]float64{r.X.Hi, r.Y.Hi}
}
