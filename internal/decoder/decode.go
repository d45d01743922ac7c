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

// Package decoder turns raw tile payloads into batched, technique-keyed
// geometry buffers in tile-local world coordinates.
package decoder

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"

	"github.com/tilecut/tilecut/model"
)

var (
	// ErrNoLabelProperty is returned when a text or poi technique declares no
	// label property.  This is a style configuration error, not a data error.
	ErrNoLabelProperty = errors.New("technique declares no label property")

	// ErrUnassignedTechnique is returned when the style matcher yields a
	// technique that was never registered with a table.
	ErrUnassignedTechnique = errors.New("matched technique has no assigned index")
)

// DecodeTile runs one decode pass: match every feature against the style,
// project coordinates into the tile-local frame, and batch the results per
// technique.  Exactly one output geometry is produced per technique that
// matched at least one feature.
func DecodeTile(key model.TileKey, features []model.Feature, matcher model.StyleMatcher, proj model.Projection) (*model.DecodedTile, error) {
	d := &tileDecoder{
		key:     key,
		matcher: matcher,
		proj:    proj,
		center:  proj.ProjectPoint(key.Center()),
		buffers: newTileBuffers(),
	}

	for i := range features {
		if err := d.addGeometry(&features[i], features[i].Geometry); err != nil {
			return nil, err
		}
	}

	tile := &model.DecodedTile{Key: key, Center: d.center}
	d.buffers.createGeometries(tile)

	return tile, nil
}

type tileDecoder struct {
	key     model.TileKey
	matcher model.StyleMatcher
	proj    model.Projection
	center  r3.Vector
	buffers *tileBuffers

	// triangulation scratch, reused across polygons of one pass
	ringScratch []float64
	holeScratch []int
}

// addGeometry dispatches one geometry of a feature, recursing into
// collections so that each member is processed as if it were a feature of its
// own inheriting the parent's properties.
func (d *tileDecoder) addGeometry(f *model.Feature, g orb.Geometry) error {
	switch g := g.(type) {
	case orb.Point:
		return d.processPoints(f, orb.MultiPoint{g})
	case orb.MultiPoint:
		return d.processPoints(f, g)
	case orb.LineString:
		return d.processLines(f, orb.MultiLineString{g})
	case orb.MultiLineString:
		return d.processLines(f, g)
	case orb.Polygon:
		return d.processPolygons(f, orb.MultiPolygon{g})
	case orb.MultiPolygon:
		return d.processPolygons(f, g)
	case orb.Collection:
		for _, member := range g {
			if err := d.addGeometry(f, member); err != nil {
				return err
			}
		}

		return nil
	default:
		slog.Warn("skipping feature with unsupported geometry",
			"type", g.GeoJSONType(), "tile", d.key)

		return nil
	}
}

// matchingTechniques evaluates the style for one feature and class, keeping
// only techniques whose kind accepts the class.
func (d *tileDecoder) matchingTechniques(f *model.Feature, class model.GeometryClass) ([]model.Technique, error) {
	env := model.Env{Class: class, Level: d.key.Level, Properties: f.Properties}

	var matched []model.Technique

	for _, t := range d.matcher.MatchingTechniques(&env) {
		if !t.AppliesTo(class) {
			continue
		}

		if t.Index == model.UnassignedTechnique {
			return nil, fmt.Errorf("%w: kind %v", ErrUnassignedTechnique, t.Kind)
		}

		matched = append(matched, t)
	}

	return matched, nil
}

// projectPoint maps a longitude/latitude pair into the tile-local frame.
// Longitudes at or beyond the antimeridian are mirrored so that geometry
// crossing it stays contiguous with the tile on the western side.
func (d *tileDecoder) projectPoint(p orb.Point) r3.Vector {
	gp := model.GeoPoint{Lon: model.Degrees(p[0]), Lat: model.Degrees(p[1])}

	world := d.proj.ProjectPoint(gp)
	if gp.Lon >= 180 {
		world.X = -world.X
	}

	return world.Sub(d.center)
}

func finitePoint(p orb.Point) bool {
	return model.GeoPoint{Lon: model.Degrees(p[0]), Lat: model.Degrees(p[1])}.IsFinite()
}

func appendVertex(dst []float32, v r3.Vector) []float32 {
	return append(dst, float32(v.X), float32(v.Y), float32(v.Z))
}

// label resolves the label property of a text or poi technique against a
// feature.  A technique without a label property is a configuration error; a
// feature without the labeled value is silently skipped.
func label(f *model.Feature, t model.Technique) (string, bool, error) {
	if t.LabelProperty == "" {
		return "", false, fmt.Errorf("%w: kind %v", ErrNoLabelProperty, t.Kind)
	}

	s, ok := f.StringProperty(t.LabelProperty)

	return s, ok, nil
}

func (d *tileDecoder) processPoints(f *model.Feature, points orb.MultiPoint) error {
	techniques, err := d.matchingTechniques(f, model.PointClass)
	if err != nil {
		return err
	}

	for _, t := range techniques {
		switch t.Kind {
		case model.KindText:
			text, ok, err := label(f, t)
			if err != nil {
				return err
			}

			if !ok {
				continue
			}

			buf := d.buffers.textBuffer(t)
			index := buf.intern(text)

			for _, p := range points {
				if !finitePoint(p) {
					continue
				}

				buf.positions = appendVertex(buf.positions, d.projectPoint(p))
				buf.textIndices = append(buf.textIndices, index)
				buf.props = append(buf.props, f.Properties)
			}

		case model.KindPOI:
			text, ok, err := label(f, t)
			if err != nil {
				return err
			}

			if !ok {
				continue
			}

			buf := d.buffers.poiBuffer(t)
			index := buf.intern(text)

			image := -1
			if t.ImageTexture != "" {
				image = buf.intern(t.ImageTexture)
			}

			for _, p := range points {
				if !finitePoint(p) {
					continue
				}

				buf.positions = appendVertex(buf.positions, d.projectPoint(p))
				buf.textIndices = append(buf.textIndices, index)
				buf.imageTextures = append(buf.imageTextures, image)
				buf.props = append(buf.props, f.Properties)
			}

		case model.KindCircles, model.KindSquares:
			buf := d.buffers.geometryBuffer(t)

			start := buf.vertexCount()

			for _, p := range points {
				if !finitePoint(p) {
					continue
				}

				buf.vertices = appendVertex(buf.vertices, d.projectPoint(p))
			}

			if buf.vertexCount() > start {
				buf.addFeatureRecord(f.ID, start, f.Properties)
			}
		}
	}

	return nil
}

func (d *tileDecoder) processLines(f *model.Feature, lines orb.MultiLineString) error {
	techniques, err := d.matchingTechniques(f, model.LineClass)
	if err != nil {
		return err
	}

	for _, t := range techniques {
		switch t.Kind {
		case model.KindSolidLine:
			buf := d.buffers.geometryBuffer(t)

			featureStart := buf.vertexCount()

			for _, line := range lines {
				start := buf.vertexCount()

				for _, p := range line {
					if !finitePoint(p) {
						continue
					}

					buf.vertices = appendVertex(buf.vertices, d.projectPoint(p))
				}

				if buf.vertexCount() > start {
					buf.lineStarts = append(buf.lineStarts, start)
				}
			}

			if buf.vertexCount() > featureStart {
				buf.addFeatureRecord(f.ID, featureStart, f.Properties)
			}

		case model.KindText:
			text, ok, err := label(f, t)
			if err != nil {
				return err
			}

			if !ok {
				continue
			}

			buf := d.buffers.textPathBuffer(t)

			for _, line := range lines {
				var path []float32

				for _, p := range line {
					if !finitePoint(p) {
						continue
					}

					path = appendVertex(path, d.projectPoint(p))
				}

				if len(path) < 2*model.VertexStride {
					continue
				}

				buf.paths = append(buf.paths, model.TextPath{
					Path:       path,
					Text:       text,
					Properties: f.Properties,
				})
			}
		}
	}

	return nil
}

func (d *tileDecoder) processPolygons(f *model.Feature, polygons orb.MultiPolygon) error {
	techniques, err := d.matchingTechniques(f, model.PolygonClass)
	if err != nil {
		return err
	}

	for _, t := range techniques {
		if t.Kind != model.KindFill {
			continue
		}

		buf := d.buffers.geometryBuffer(t)

		for _, polygon := range polygons {
			d.addPolygon(buf, f, polygon)
		}
	}

	return nil
}

// addPolygon triangulates one polygon and appends vertices plus offset
// indices.  Feature ids are not stable across tile generations for area
// features, so the record carries a zero id.
func (d *tileDecoder) addPolygon(buf *geometryBuffer, f *model.Feature, polygon orb.Polygon) {
	if len(polygon) == 0 || len(polygon[0]) < 3 {
		return
	}

	base := buf.vertexCount()

	flat := d.ringScratch[:0]
	holes := d.holeScratch[:0]

	for i, ring := range polygon {
		points := ring
		if len(points) > 1 && points[0] == points[len(points)-1] {
			points = points[:len(points)-1]
		}

		if len(points) < 3 {
			continue
		}

		if i > 0 {
			holes = append(holes, len(flat)/2)
		}

		for _, p := range points {
			if !finitePoint(p) {
				continue
			}

			local := d.projectPoint(p)
			flat = append(flat, local.X, local.Y)
			buf.vertices = appendVertex(buf.vertices, local)
		}
	}

	d.ringScratch = flat
	d.holeScratch = holes

	if len(flat) < 6 {
		return
	}

	for _, index := range Triangulate(flat, holes) {
		buf.indices = append(buf.indices, uint32(base)+index)
	}

	buf.addFeatureRecord(0, base, f.Properties)
}