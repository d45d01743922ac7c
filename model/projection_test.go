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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMercatorProjection(t *testing.T) {
	p := MercatorProjection{}

	assert.Equal(t, Planar, p.Kind())

	origin := p.ProjectPoint(GeoPoint{})
	assert.InDelta(t, 0, origin.X, 1e-6)
	assert.InDelta(t, 0, origin.Y, 1e-6)

	// One quarter of the equator east of Greenwich.
	east := p.ProjectPoint(GeoPoint{Lon: 90})
	assert.InDelta(t, math.Pi/2*EquatorialRadius, east.X, 1)

	// Altitude passes through as z.
	alt := p.ProjectPoint(GeoPoint{Alt: 100})
	assert.InDelta(t, 100, alt.Z, 1e-9)
}

func TestMercatorProjectBox(t *testing.T) {
	p := MercatorProjection{}

	box := p.ProjectBox(&BoundingBox{Top: 1, Left: -1, Bottom: -1, Right: 1})

	assert.Less(t, box.Min.X, 0.0)
	assert.Greater(t, box.Max.X, 0.0)
	assert.InDelta(t, -box.Min.X, box.Max.X, 1e-6)
	assert.InDelta(t, -box.Min.Y, box.Max.Y, 1e-3)
}

func TestSphereProjection(t *testing.T) {
	p := SphereProjection{}

	assert.Equal(t, Spherical, p.Kind())

	origin := p.ProjectPoint(GeoPoint{})
	assert.InDelta(t, EquatorialRadius, origin.Norm(), 1e-6)

	pole := p.ProjectPoint(GeoPoint{Lat: 90})
	assert.InDelta(t, EquatorialRadius, pole.Z, 1e-6)
	assert.InDelta(t, 0, pole.X, 1e-6)

	// Antipodal points land on opposite sides of the globe.
	front := p.ProjectPoint(GeoPoint{Lon: 0})
	back := p.ProjectPoint(GeoPoint{Lon: 180})
	assert.InDelta(t, -front.X, back.X, 1e-6)

	// Altitude extends along the surface normal.
	raised := p.ProjectPoint(GeoPoint{Alt: 1000})
	assert.InDelta(t, EquatorialRadius+1000, raised.Norm(), 1e-6)
}