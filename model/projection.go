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

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// EquatorialRadius is the WGS84 equatorial radius in meters.
const EquatorialRadius = 6378137.0

// ProjectionKind discriminates between flat and globe world spaces.
type ProjectionKind int

const (
	// Planar denotes a flat world space, e.g. web mercator.
	Planar ProjectionKind = iota

	// Spherical denotes a globe world space where far-side geometry can
	// wrap behind the horizon.
	Spherical
)

// WorldBox is an axis-aligned box in world space.
type WorldBox struct {
	Min r3.Vector
	Max r3.Vector
}

// ExpandWithPoint grows the box to include v.
func (b *WorldBox) ExpandWithPoint(v r3.Vector) {
	b.Min.X = min(b.Min.X, v.X)
	b.Min.Y = min(b.Min.Y, v.Y)
	b.Min.Z = min(b.Min.Z, v.Z)
	b.Max.X = max(b.Max.X, v.X)
	b.Max.Y = max(b.Max.Y, v.Y)
	b.Max.Z = max(b.Max.Z, v.Z)
}

// Projection converts geographic coordinates into world space.  Implementations
// must be immutable; a projection is shared by concurrent tile decodes.
type Projection interface {
	Kind() ProjectionKind

	// ProjectPoint converts a geographic coordinate into world space.
	ProjectPoint(p GeoPoint) r3.Vector

	// ProjectBox converts a geographic bounding box into a world-space box.
	ProjectBox(b *BoundingBox) WorldBox
}

// MercatorProjection projects onto the EPSG:3857 plane, in meters.
type MercatorProjection struct{}

var _ Projection = MercatorProjection{}

func (MercatorProjection) Kind() ProjectionKind { return Planar }

func (MercatorProjection) ProjectPoint(p GeoPoint) r3.Vector {
	mp := project.WGS84.ToMercator(orb.Point{float64(p.Lon), float64(p.Lat)})

	return r3.Vector{X: mp[0], Y: mp[1], Z: p.Alt}
}

func (m MercatorProjection) ProjectBox(b *BoundingBox) WorldBox {
	lo := m.ProjectPoint(GeoPoint{Lon: b.Left, Lat: b.Bottom})
	hi := m.ProjectPoint(GeoPoint{Lon: b.Right, Lat: b.Top})

	return WorldBox{Min: lo, Max: hi}
}

// SphereProjection projects onto a globe of equatorial radius, centered at
// the origin.  Altitude displaces along the surface normal.
type SphereProjection struct{}

var _ Projection = SphereProjection{}

func (SphereProjection) Kind() ProjectionKind { return Spherical }

func (SphereProjection) ProjectPoint(p GeoPoint) r3.Vector {
	unit := s2.PointFromLatLng(s2.LatLngFromDegrees(float64(p.Lat), float64(p.Lon)))

	return unit.Mul(EquatorialRadius + p.Alt)
}

func (s SphereProjection) ProjectBox(b *BoundingBox) WorldBox {
	corners := []GeoPoint{
		{Lon: b.Left, Lat: b.Bottom},
		{Lon: b.Left, Lat: b.Top},
		{Lon: b.Right, Lat: b.Bottom},
		{Lon: b.Right, Lat: b.Top},
		b.Center(),
	}

	box := WorldBox{Min: s.ProjectPoint(corners[0]), Max: s.ProjectPoint(corners[0])}
	for _, c := range corners[1:] {
		box.ExpandWithPoint(s.ProjectPoint(c))
	}

	return box
}
