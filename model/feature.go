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

//go:generate stringer -type=GeometryClass

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeometryClass partitions geometry types into the three classes the style
// matcher distinguishes.
type GeometryClass int

const (
	// PointClass covers Point and MultiPoint geometries.
	PointClass GeometryClass = iota

	// LineClass covers LineString and MultiLineString geometries.
	LineClass

	// PolygonClass covers Polygon and MultiPolygon geometries.
	PolygonClass
)

// Feature is a single input feature: a geometry plus a property bag and an
// optional id.  Features are immutable and consumed once per decode pass.
type Feature struct {
	ID         int64
	Geometry   orb.Geometry
	Properties geojson.Properties
}

// Property returns the named property, if present.
func (f *Feature) Property(key string) (any, bool) {
	if f.Properties == nil {
		return nil, false
	}

	v, ok := f.Properties[key]

	return v, ok
}

// StringProperty returns the named property as a string.
func (f *Feature) StringProperty(key string) (string, bool) {
	v, ok := f.Property(key)
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// ClassOf maps a geometry onto its class.  The second return is false for
// GeometryCollection and unknown types, which have no class of their own.
func ClassOf(g orb.Geometry) (GeometryClass, bool) {
	switch g.(type) {
	case orb.Point, orb.MultiPoint:
		return PointClass, true
	case orb.LineString, orb.MultiLineString:
		return LineClass, true
	case orb.Polygon, orb.MultiPolygon:
		return PolygonClass, true
	default:
		return 0, false
	}
}
