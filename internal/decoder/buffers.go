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
	"log/slog"
	"sort"

	"github.com/paulmach/orb/geojson"

	"github.com/tilecut/tilecut/model"
)

// geometryBuffer accumulates the vertices of all features sharing one fill,
// solid-line, circles or squares technique within a tile decode pass.  It is
// created on the first matching feature, mutated by subsequent ones, and
// consumed exactly once when finalized.
type geometryBuffer struct {
	technique model.Technique

	vertices   []float32
	indices    []uint32
	lineStarts []int

	featureIDs    []int64
	featureStarts []int
	featureProps  []geojson.Properties
}

func (b *geometryBuffer) vertexCount() int {
	return len(b.vertices) / model.VertexStride
}

func (b *geometryBuffer) addFeatureRecord(id int64, start int, props geojson.Properties) {
	b.featureIDs = append(b.featureIDs, id)
	b.featureStarts = append(b.featureStarts, start)
	b.featureProps = append(b.featureProps, props)
}

// consistent verifies the parallel-array invariant before finalization.
func (b *geometryBuffer) consistent() bool {
	return len(b.featureIDs) == len(b.featureStarts) &&
		len(b.featureIDs) == len(b.featureProps)
}

// textBuffer accumulates point labels of one text technique, interning the
// label strings into a catalog.
type textBuffer struct {
	technique model.Technique

	positions    []float32
	textIndices  []int
	catalog      []string
	catalogIndex map[string]int
	props        []geojson.Properties
}

func (b *textBuffer) intern(s string) int {
	if b.catalogIndex == nil {
		b.catalogIndex = make(map[string]int)
	}

	if i, ok := b.catalogIndex[s]; ok {
		return i
	}

	i := len(b.catalog)
	b.catalog = append(b.catalog, s)
	b.catalogIndex[s] = i

	return i
}

// poiBuffer accumulates icon labels of one poi technique.
type poiBuffer struct {
	textBuffer

	imageTextures []int
}

// textPathBuffer accumulates path labels of one text technique.
type textPathBuffer struct {
	technique model.Technique

	paths []model.TextPath
}

// tileBuffers is the full set of technique-keyed accumulators of one decode
// pass.
type tileBuffers struct {
	geometry map[int]*geometryBuffer
	text     map[int]*textBuffer
	poi      map[int]*poiBuffer
	textPath map[int]*textPathBuffer
}

func newTileBuffers() *tileBuffers {
	return &tileBuffers{
		geometry: make(map[int]*geometryBuffer),
		text:     make(map[int]*textBuffer),
		poi:      make(map[int]*poiBuffer),
		textPath: make(map[int]*textPathBuffer),
	}
}

func (t *tileBuffers) geometryBuffer(technique model.Technique) *geometryBuffer {
	if b, ok := t.geometry[technique.Index]; ok {
		return b
	}

	b := &geometryBuffer{technique: technique}
	t.geometry[technique.Index] = b

	return b
}

func (t *tileBuffers) textBuffer(technique model.Technique) *textBuffer {
	if b, ok := t.text[technique.Index]; ok {
		return b
	}

	b := &textBuffer{technique: technique}
	t.text[technique.Index] = b

	return b
}

func (t *tileBuffers) poiBuffer(technique model.Technique) *poiBuffer {
	if b, ok := t.poi[technique.Index]; ok {
		return b
	}

	b := &poiBuffer{textBuffer: textBuffer{technique: technique}}
	t.poi[technique.Index] = b

	return b
}

func (t *tileBuffers) textPathBuffer(technique model.Technique) *textPathBuffer {
	if b, ok := t.textPath[technique.Index]; ok {
		return b
	}

	b := &textPathBuffer{technique: technique}
	t.textPath[technique.Index] = b

	return b
}

// createGeometries converts every buffer into exactly one output geometry
// per technique.  Buffers violating the parallel-array invariant are logged
// and dropped rather than corrupting the output.
func (t *tileBuffers) createGeometries(tile *model.DecodedTile) {
	for _, index := range sortedKeys(t.geometry) {
		b := t.geometry[index]

		if !b.consistent() {
			slog.Error("dropping geometry with mismatched feature metadata",
				"technique", b.technique.Index,
				"ids", len(b.featureIDs),
				"starts", len(b.featureStarts),
				"properties", len(b.featureProps))

			continue
		}

		count := len(b.indices)
		if count == 0 {
			count = b.vertexCount()
		}

		tile.Geometries = append(tile.Geometries, model.Geometry{
			Technique:         b.technique.Index,
			Vertices:          b.vertices,
			Indices:           b.indices,
			LineStarts:        b.lineStarts,
			Groups:            []model.Group{{Start: 0, Count: count, Technique: b.technique.Index}},
			FeatureIDs:        b.featureIDs,
			FeatureStarts:     b.featureStarts,
			FeatureProperties: b.featureProps,
		})
	}

	for _, index := range sortedKeys(t.text) {
		b := t.text[index]

		tile.TextGeometries = append(tile.TextGeometries, model.TextGeometry{
			Technique:     b.technique.Index,
			Positions:     b.positions,
			TextIndices:   b.textIndices,
			StringCatalog: b.catalog,
			Properties:    b.props,
		})
	}

	for _, index := range sortedKeys(t.poi) {
		b := t.poi[index]

		tile.PoiGeometries = append(tile.PoiGeometries, model.PoiGeometry{
			Technique:     b.technique.Index,
			Positions:     b.positions,
			TextIndices:   b.textIndices,
			ImageTextures: b.imageTextures,
			StringCatalog: b.catalog,
			Properties:    b.props,
		})
	}

	for _, index := range sortedKeys(t.textPath) {
		b := t.textPath[index]

		tile.TextPathGeometries = append(tile.TextPathGeometries, model.TextPathGeometry{
			Technique: b.technique.Index,
			Paths:     b.paths,
		})
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Ints(keys)

	return keys
}
