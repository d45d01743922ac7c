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

package decoder

import (
	"math"
)

// Ear-clipping triangulation over a doubly linked vertex ring.  Holes are
// eliminated up front by bridging each hole's leftmost vertex to a visible
// outer vertex, reducing the polygon to a single ring.

type earNode struct {
	i    int
	x, y float64

	prev, next *earNode

	steiner bool
}

// Triangulate converts a polygon into triangles.  data is a flat array of
// x,y pairs: the outer ring followed by the holes.  holeIndices holds the
// first vertex index of each hole.  The returned triangle list references
// vertex indices into data.
func Triangulate(data []float64, holeIndices []int) []uint32 {
	hasHoles := len(holeIndices) > 0

	outerLen := len(data)
	if hasHoles {
		outerLen = holeIndices[0] * 2
	}

	outerNode := linkedRing(data, 0, outerLen, true)

	var triangles []uint32

	if outerNode == nil || outerNode.next == outerNode.prev {
		return triangles
	}

	if hasHoles {
		outerNode = eliminateHoles(data, holeIndices, outerNode)
	}

	earcutLinked(outerNode, &triangles, 0)

	return triangles
}

// linkedRing creates a circular doubly linked list from a ring of polygon
// vertices in the given winding order.
func linkedRing(data []float64, start, end int, clockwise bool) *earNode {
	var last *earNode

	if clockwise == (signedRingArea(data, start, end) > 0) {
		for i := start; i < end; i += 2 {
			last = insertNode(i/2, data[i], data[i+1], last)
		}
	} else {
		for i := end - 2; i >= start; i -= 2 {
			last = insertNode(i/2, data[i], data[i+1], last)
		}
	}

	if last != nil && equalPoints(last, last.next) {
		removeNode(last)
		last = last.next
	}

	return last
}

func signedRingArea(data []float64, start, end int) float64 {
	var sum float64

	for i, j := start, end-2; i < end; i += 2 {
		sum += (data[j] - data[i]) * (data[i+1] + data[j+1])
		j = i
	}

	return sum
}

// filterPoints eliminates collinear or duplicate points.
func filterPoints(start, end *earNode) *earNode {
	if start == nil {
		return nil
	}

	if end == nil {
		end = start
	}

	p := start

	for {
		again := false

		if !p.steiner && (equalPoints(p, p.next) || area(p.prev, p, p.next) == 0) {
			removeNode(p)
			p = p.prev
			end = p.prev

			if p == p.next {
				break
			}

			again = true
		} else {
			p = p.next
		}

		if !again && p == end {
			break
		}
	}

	return end
}

// earcutLinked is the main loop: look for an ear, slice it off, repeat until
// the ring degenerates.  pass>0 selects the increasingly drastic fallbacks.
func earcutLinked(ear *earNode, triangles *[]uint32, pass int) {
	if ear == nil {
		return
	}

	stop := ear

	for ear.prev != ear.next {
		prev := ear.prev
		next := ear.next

		if isEar(ear) {
			*triangles = append(*triangles, uint32(prev.i), uint32(ear.i), uint32(next.i))

			removeNode(ear)

			// Skipping one vertex produces fewer sliver triangles.
			ear = next.next
			stop = next.next

			continue
		}

		ear = next

		if ear == stop {
			switch pass {
			case 0:
				earcutLinked(filterPoints(ear, nil), triangles, 1)
			case 1:
				ear = cureLocalIntersections(filterPoints(ear, nil), triangles)
				earcutLinked(ear, triangles, 2)
			case 2:
				splitEarcut(ear, triangles)
			}

			break
		}
	}
}

// isEar checks whether the ear formed around the node contains no other
// polygon vertex.
func isEar(ear *earNode) bool {
	a, b, c := ear.prev, ear, ear.next

	if area(a, b, c) >= 0 {
		return false // reflex, can't be an ear
	}

	p := ear.next.next

	for p != ear.prev {
		if pointInTriangle(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) &&
			area(p.prev, p, p.next) >= 0 {
			return false
		}

		p = p.next
	}

	return true
}

// cureLocalIntersections resolves small self-intersections by slicing the
// crossing triangle off.
func cureLocalIntersections(start *earNode, triangles *[]uint32) *earNode {
	p := start

	for {
		a, b := p.prev, p.next.next

		if !equalPoints(a, b) && intersects(a, p, p.next, b) &&
			locallyInside(a, b) && locallyInside(b, a) {
			*triangles = append(*triangles, uint32(a.i), uint32(p.i), uint32(b.i))

			removeNode(p)
			removeNode(p.next)

			p = b
			start = b
		}

		p = p.next

		if p == start {
			break
		}
	}

	return filterPoints(p, nil)
}

// splitEarcut splits the remaining polygon along a valid diagonal and
// triangulates the halves independently.
func splitEarcut(start *earNode, triangles *[]uint32) {
	a := start

	for {
		b := a.next.next

		for b != a.prev {
			if a.i != b.i && isValidDiagonal(a, b) {
				c := splitPolygon(a, b)

				a = filterPoints(a, a.next)
				c = filterPoints(c, c.next)

				earcutLinked(a, triangles, 0)
				earcutLinked(c, triangles, 0)

				return
			}

			b = b.next
		}

		a = a.next

		if a == start {
			break
		}
	}
}

// eliminateHoles links every hole into the outer ring, producing a single
// bridged ring.
func eliminateHoles(data []float64, holeIndices []int, outerNode *earNode) *earNode {
	queue := make([]*earNode, 0, len(holeIndices))

	for i, holeIdx := range holeIndices {
		start := holeIdx * 2

		end := len(data)
		if i < len(holeIndices)-1 {
			end = holeIndices[i+1] * 2
		}

		list := linkedRing(data, start, end, false)
		if list == nil {
			continue
		}

		if list == list.next {
			list.steiner = true
		}

		queue = append(queue, getLeftmost(list))
	}

	// process holes from left to right
	for i := 1; i < len(queue); i++ {
		for j := i; j > 0 && queue[j-1].x > queue[j].x; j-- {
			queue[j-1], queue[j] = queue[j], queue[j-1]
		}
	}

	for _, hole := range queue {
		outerNode = eliminateHole(hole, outerNode)
	}

	return outerNode
}

func eliminateHole(hole, outerNode *earNode) *earNode {
	bridge := findHoleBridge(hole, outerNode)
	if bridge == nil {
		return outerNode
	}

	bridgeReverse := splitPolygon(bridge, hole)

	filterPoints(bridgeReverse, bridgeReverse.next)

	return filterPoints(bridge, bridge.next)
}

// findHoleBridge uses David Eberly's algorithm for finding a bridge between
// the hole and the outer polygon.
func findHoleBridge(hole, outerNode *earNode) *earNode {
	p := outerNode
	hx := hole.x
	hy := hole.y
	qx := math.Inf(-1)

	var m *earNode

	if equalPoints(hole, p) {
		return p
	}

	// find a segment intersected by a ray from the hole's leftmost point to
	// the left; the segment's endpoint with lesser x is a potential bridge
	for {
		if equalPoints(hole, p.next) {
			return p.next
		}

		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)

			if x <= hx && x > qx {
				qx = x

				m = p
				if p.next.x < p.x {
					m = p.next
				}

				if x == hx {
					// the hole touches the outer segment; pick the endpoint
					return m
				}
			}
		}

		p = p.next

		if p == outerNode {
			break
		}
	}

	if m == nil {
		return nil
	}

	// look for points inside the triangle of the hole point, segment
	// intersection and segment endpoint; if none, the connection is valid;
	// otherwise pick the point with the minimum angle to the ray
	stop := m
	mx := m.x
	my := m.y
	tanMin := math.Inf(1)

	p = m

	for {
		if hx >= p.x && p.x >= mx && hx != p.x {
			ax, cx := qx, hx
			if hy < my {
				ax, cx = hx, qx
			}

			if pointInTriangle(ax, hy, mx, my, cx, hy, p.x, p.y) {
				tan := math.Abs(hy-p.y) / (hx - p.x)

				if locallyInside(p, hole) &&
					(tan < tanMin || (tan == tanMin && (p.x > m.x || (p.x == m.x && sectorContainsSector(m, p))))) {
					m = p
					tanMin = tan
				}
			}
		}

		p = p.next

		if p == stop {
			break
		}
	}

	return m
}

// sectorContainsSector checks whether m's internal angle sector contains
// p's sector when both share a vertex position.
func sectorContainsSector(m, p *earNode) bool {
	return area(m.prev, m, p.prev) < 0 && area(p.next, m, m.next) < 0
}

func getLeftmost(start *earNode) *earNode {
	p := start
	leftmost := start

	for {
		if p.x < leftmost.x || (p.x == leftmost.x && p.y < leftmost.y) {
			leftmost = p
		}

		p = p.next

		if p == start {
			break
		}
	}

	return leftmost
}

func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return (cx-px)*(ay-py)-(ax-px)*(cy-py) >= 0 &&
		(ax-px)*(by-py)-(bx-px)*(ay-py) >= 0 &&
		(bx-px)*(cy-py)-(cx-px)*(by-py) >= 0
}

// isValidDiagonal checks that a diagonal lies within the polygon and does
// not cross any edge.
func isValidDiagonal(a, b *earNode) bool {
	return a.next.i != b.i && a.prev.i != b.i && !intersectsPolygon(a, b) &&
		(locallyInside(a, b) && locallyInside(b, a) && middleInside(a, b) &&
			(area(a.prev, a, b.prev) != 0 || area(a, b.prev, b) != 0) ||
			equalPoints(a, b) && area(a.prev, a, a.next) > 0 && area(b.prev, b, b.next) > 0)
}

func area(p, q, r *earNode) float64 {
	return (q.y-p.y)*(r.x-q.x) - (q.x-p.x)*(r.y-q.y)
}

func equalPoints(p1, p2 *earNode) bool {
	return p1.x == p2.x && p1.y == p2.y
}

// intersects checks whether the segments p1q1 and p2q2 cross.
func intersects(p1, q1, p2, q2 *earNode) bool {
	o1 := sign(area(p1, q1, p2))
	o2 := sign(area(p1, q1, q2))
	o3 := sign(area(p2, q2, p1))
	o4 := sign(area(p2, q2, q1))

	if o1 != o2 && o3 != o4 {
		return true
	}

	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}

	if o2 == 0 && onSegment(p1, q2, q1) {
		return true
	}

	if o3 == 0 && onSegment(p2, p1, q2) {
		return true
	}

	if o4 == 0 && onSegment(p2, q1, q2) {
		return true
	}

	return false
}

// onSegment checks whether q sits on the segment pr, assuming collinearity.
func onSegment(p, q, r *earNode) bool {
	return q.x <= maxf(p.x, r.x) && q.x >= minf(p.x, r.x) &&
		q.y <= maxf(p.y, r.y) && q.y >= minf(p.y, r.y)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// intersectsPolygon checks whether the diagonal crosses any polygon edge.
func intersectsPolygon(a, b *earNode) bool {
	p := a

	for {
		if p.i != a.i && p.next.i != a.i && p.i != b.i && p.next.i != b.i &&
			intersects(p, p.next, a, b) {
			return true
		}

		p = p.next

		if p == a {
			break
		}
	}

	return false
}

// locallyInside checks whether the diagonal is locally inside the polygon
// at its a end.
func locallyInside(a, b *earNode) bool {
	if area(a.prev, a, a.next) < 0 {
		return area(a, b, a.next) >= 0 && area(a, a.prev, b) >= 0
	}

	return area(a, b, a.prev) < 0 || area(a, a.next, b) < 0
}

// middleInside checks whether the diagonal's midpoint lies inside the
// polygon.
func middleInside(a, b *earNode) bool {
	p := a
	inside := false
	px := (a.x + b.x) / 2
	py := (a.y + b.y) / 2

	for {
		if ((p.y > py) != (p.next.y > py)) && p.next.y != p.y &&
			(px < (p.next.x-p.x)*(py-p.y)/(p.next.y-p.y)+p.x) {
			inside = !inside
		}

		p = p.next

		if p == a {
			break
		}
	}

	return inside
}

// splitPolygon links two polygon vertices with a bridge, splitting the ring
// into two; when a and b belong to separate rings, it joins them into one.
func splitPolygon(a, b *earNode) *earNode {
	a2 := &earNode{i: a.i, x: a.x, y: a.y}
	b2 := &earNode{i: b.i, x: b.x, y: b.y}
	an := a.next
	bp := b.prev

	a.next = b
	b.prev = a

	a2.next = an
	an.prev = a2

	b2.next = a2
	a2.prev = b2

	bp.next = b2
	b2.prev = bp

	return b2
}

func insertNode(i int, x, y float64, last *earNode) *earNode {
	p := &earNode{i: i, x: x, y: y}

	if last == nil {
		p.prev = p
		p.next = p
	} else {
		p.next = last.next
		p.prev = last
		last.next.prev = p
		last.next = p
	}

	return p
}

func removeNode(p *earNode) {
	p.next.prev = p.prev
	p.prev.next = p.next
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}

	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}

	return b
}
