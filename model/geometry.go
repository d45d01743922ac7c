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
	"github.com/paulmach/orb/geojson"
)

// VertexStride is the number of floats per vertex in decoded buffers.
const VertexStride = 3

// Group is a draw-range descriptor into a geometry's index or vertex buffer.
type Group struct {
	Start     int
	Count     int
	Technique int
}

// Geometry is one batched draw target: all features of one tile sharing one
// technique, merged.  Vertices are tile-local world coordinates, x/y/z
// interleaved.  The parallel arrays FeatureIDs, FeatureStarts and
// FeatureProperties have equal length so picked geometry can be attributed
// back to its source feature.
type Geometry struct {
	Technique int

	Vertices []float32

	// Indices is a uint32 triangle list for fill techniques; empty for others.
	Indices []uint32

	// LineStarts holds the start vertex of each polyline for solid-line
	// techniques; empty for others.
	LineStarts []int

	Groups []Group

	FeatureIDs        []int64
	FeatureStarts     []int
	FeatureProperties []geojson.Properties
}

// VertexCount returns the number of vertices in the buffer.
func (g *Geometry) VertexCount() int { return len(g.Vertices) / VertexStride }

// TextGeometry holds the point labels of one technique.  Positions are
// tile-local; TextIndices references StringCatalog in parallel.
type TextGeometry struct {
	Technique int

	Positions     []float32
	TextIndices   []int
	StringCatalog []string
	Properties    []geojson.Properties
}

// TextPath is one path label: a polyline with the text laid along it.
type TextPath struct {
	Path       []float32
	Text       string
	Properties geojson.Properties
}

// TextPathGeometry holds the path labels of one technique.
type TextPathGeometry struct {
	Technique int

	Paths []TextPath
}

// PoiGeometry holds the icon labels of one technique.  ImageTextures indexes
// StringCatalog for the icon name of each position, -1 when absent.
type PoiGeometry struct {
	Technique int

	Positions     []float32
	TextIndices   []int
	ImageTextures []int
	StringCatalog []string
	Properties    []geojson.Properties
}

// DecodedTile is the result of one tile decode pass: per-technique geometry
// batches plus the world-space center subtracted from every vertex.
type DecodedTile struct {
	Key    TileKey
	Center r3.Vector

	Geometries         []Geometry
	TextGeometries     []TextGeometry
	TextPathGeometries []TextPathGeometry
	PoiGeometries      []PoiGeometry
}

// FeatureCount tallies attributable features across all geometry batches.
func (t *DecodedTile) FeatureCount() int {
	var n int

	for i := range t.Geometries {
		n += len(t.Geometries[i].FeatureIDs)
	}

	for i := range t.TextGeometries {
		n += len(t.TextGeometries[i].TextIndices)
	}

	for i := range t.PoiGeometries {
		n += len(t.PoiGeometries[i].TextIndices)
	}

	for i := range t.TextPathGeometries {
		n += len(t.TextPathGeometries[i].Paths)
	}

	return n
}
