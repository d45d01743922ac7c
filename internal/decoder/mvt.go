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
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/tilecut/tilecut/model"
)

// LayerProperty is the synthetic property carrying the source layer name of
// every feature parsed from a vector tile.
const LayerProperty = "$layer"

const defaultExtent = 4096

var errTruncatedGeometry = errors.New("truncated geometry command stream")

// ParseMVT extracts features from a Mapbox Vector Tile payload.  Tile-grid
// coordinates are mapped back to longitude/latitude through the web mercator
// extent of the tile, so the downstream projection pass stays format
// agnostic.
func ParseMVT(payload []byte, key model.TileKey) ([]model.Feature, error) {
	tf := newTileTransform(key)

	var features []model.Feature

	for len(payload) > 0 {
		num, typ, n := protowire.ConsumeTag(payload)
		if n < 0 {
			return nil, fmt.Errorf("unable to parse tile: %w", protowire.ParseError(n))
		}

		payload = payload[n:]

		if num != 3 || typ != protowire.BytesType {
			if n = protowire.ConsumeFieldValue(num, typ, payload); n < 0 {
				return nil, fmt.Errorf("unable to parse tile: %w", protowire.ParseError(n))
			}

			payload = payload[n:]

			continue
		}

		raw, n := protowire.ConsumeBytes(payload)
		if n < 0 {
			return nil, fmt.Errorf("unable to parse tile: %w", protowire.ParseError(n))
		}

		payload = payload[n:]

		layerFeatures, err := parseLayer(raw, tf)
		if err != nil {
			return nil, err
		}

		features = append(features, layerFeatures...)
	}

	return features, nil
}

// tileTransform maps tile-grid coordinates onto longitude/latitude by linear
// interpolation across the tile's web mercator extent.
type tileTransform struct {
	minX, minY float64
	maxX, maxY float64
	extent     float64
}

func newTileTransform(key model.TileKey) tileTransform {
	bound := key.MapTile().Bound()

	minP := project.WGS84.ToMercator(bound.Min)
	maxP := project.WGS84.ToMercator(bound.Max)

	return tileTransform{
		minX:   minP[0],
		minY:   minP[1],
		maxX:   maxP[0],
		maxY:   maxP[1],
		extent: defaultExtent,
	}
}

// toLonLat converts one grid coordinate.  Grid y grows downward while
// mercator y grows upward.
func (t tileTransform) toLonLat(x, y int32) orb.Point {
	mx := t.minX + float64(x)/t.extent*(t.maxX-t.minX)
	my := t.maxY - float64(y)/t.extent*(t.maxY-t.minY)

	return project.Mercator.ToWGS84(orb.Point{mx, my})
}

type mvtLayer struct {
	name     string
	extent   uint64
	keys     []string
	values   []any
	features [][]byte
}

func parseLayer(raw []byte, tf tileTransform) ([]model.Feature, error) {
	layer := mvtLayer{extent: defaultExtent}

	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return nil, fmt.Errorf("unable to parse layer: %w", protowire.ParseError(n))
		}

		raw = raw[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			name, n := protowire.ConsumeString(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse layer name: %w", protowire.ParseError(n))
			}

			layer.name = name
			raw = raw[n:]

		case num == 2 && typ == protowire.BytesType:
			feature, n := protowire.ConsumeBytes(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse feature: %w", protowire.ParseError(n))
			}

			layer.features = append(layer.features, feature)
			raw = raw[n:]

		case num == 3 && typ == protowire.BytesType:
			key, n := protowire.ConsumeString(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse layer key: %w", protowire.ParseError(n))
			}

			layer.keys = append(layer.keys, key)
			raw = raw[n:]

		case num == 4 && typ == protowire.BytesType:
			value, n := protowire.ConsumeBytes(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse layer value: %w", protowire.ParseError(n))
			}

			parsed, err := parseValue(value)
			if err != nil {
				return nil, err
			}

			layer.values = append(layer.values, parsed)
			raw = raw[n:]

		case num == 5 && typ == protowire.VarintType:
			extent, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse layer extent: %w", protowire.ParseError(n))
			}

			layer.extent = extent
			raw = raw[n:]

		default:
			if n = protowire.ConsumeFieldValue(num, typ, raw); n < 0 {
				return nil, fmt.Errorf("unable to parse layer: %w", protowire.ParseError(n))
			}

			raw = raw[n:]
		}
	}

	if layer.extent != 0 {
		tf.extent = float64(layer.extent)
	}

	features := make([]model.Feature, 0, len(layer.features))

	for _, raw := range layer.features {
		feature, ok, err := layer.decodeFeature(raw, tf)
		if err != nil {
			return nil, err
		}

		if ok {
			features = append(features, feature)
		}
	}

	return features, nil
}

func parseValue(raw []byte) (any, error) {
	var value any

	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return nil, fmt.Errorf("unable to parse value: %w", protowire.ParseError(n))
		}

		raw = raw[n:]

		switch num {
		case 1:
			s, n := protowire.ConsumeString(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse string value: %w", protowire.ParseError(n))
			}

			value = s
			raw = raw[n:]

		case 2:
			v, n := protowire.ConsumeFixed32(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse float value: %w", protowire.ParseError(n))
			}

			value = float64(math.Float32frombits(v))
			raw = raw[n:]

		case 3:
			v, n := protowire.ConsumeFixed64(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse double value: %w", protowire.ParseError(n))
			}

			value = math.Float64frombits(v)
			raw = raw[n:]

		case 4:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse int value: %w", protowire.ParseError(n))
			}

			value = float64(int64(v))
			raw = raw[n:]

		case 5:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse uint value: %w", protowire.ParseError(n))
			}

			value = float64(v)
			raw = raw[n:]

		case 6:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse sint value: %w", protowire.ParseError(n))
			}

			value = float64(protowire.DecodeZigZag(v))
			raw = raw[n:]

		case 7:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return nil, fmt.Errorf("unable to parse bool value: %w", protowire.ParseError(n))
			}

			value = v != 0
			raw = raw[n:]

		default:
			if n = protowire.ConsumeFieldValue(num, typ, raw); n < 0 {
				return nil, fmt.Errorf("unable to parse value: %w", protowire.ParseError(n))
			}

			raw = raw[n:]
		}
	}

	return value, nil
}

const (
	geomPoint      = 1
	geomLineString = 2
	geomPolygon    = 3
)

func (l *mvtLayer) decodeFeature(raw []byte, tf tileTransform) (model.Feature, bool, error) {
	var (
		id       uint64
		geomType uint64
		tags     []uint64
		commands []uint32
	)

	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return model.Feature{}, false, fmt.Errorf("unable to parse feature: %w", protowire.ParseError(n))
		}

		raw = raw[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			id, n = protowire.ConsumeVarint(raw)
			if n < 0 {
				return model.Feature{}, false, fmt.Errorf("unable to parse feature id: %w", protowire.ParseError(n))
			}

			raw = raw[n:]

		case num == 2 && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(raw)
			if n < 0 {
				return model.Feature{}, false, fmt.Errorf("unable to parse feature tags: %w", protowire.ParseError(n))
			}

			raw = raw[n:]

			for len(packed) > 0 {
				v, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return model.Feature{}, false, fmt.Errorf("unable to parse feature tags: %w", protowire.ParseError(n))
				}

				tags = append(tags, v)
				packed = packed[n:]
			}

		case num == 3 && typ == protowire.VarintType:
			geomType, n = protowire.ConsumeVarint(raw)
			if n < 0 {
				return model.Feature{}, false, fmt.Errorf("unable to parse geometry type: %w", protowire.ParseError(n))
			}

			raw = raw[n:]

		case num == 4 && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(raw)
			if n < 0 {
				return model.Feature{}, false, fmt.Errorf("unable to parse geometry: %w", protowire.ParseError(n))
			}

			raw = raw[n:]

			for len(packed) > 0 {
				v, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return model.Feature{}, false, fmt.Errorf("unable to parse geometry: %w", protowire.ParseError(n))
				}

				commands = append(commands, uint32(v))
				packed = packed[n:]
			}

		default:
			if n = protowire.ConsumeFieldValue(num, typ, raw); n < 0 {
				return model.Feature{}, false, fmt.Errorf("unable to parse feature: %w", protowire.ParseError(n))
			}

			raw = raw[n:]
		}
	}

	geometry, err := decodeGeometry(geomType, commands, tf)
	if err != nil {
		return model.Feature{}, false, err
	}

	if geometry == nil {
		return model.Feature{}, false, nil
	}

	properties := geojson.Properties{LayerProperty: l.name}

	for i := 0; i+1 < len(tags); i += 2 {
		k, v := tags[i], tags[i+1]
		if k >= uint64(len(l.keys)) || v >= uint64(len(l.values)) {
			return model.Feature{}, false, fmt.Errorf("feature tag out of range: %d/%d", k, v)
		}

		properties[l.keys[k]] = l.values[v]
	}

	return model.Feature{
		ID:         int64(id),
		Geometry:   geometry,
		Properties: properties,
	}, true, nil
}

const (
	cmdMoveTo    = 1
	cmdLineTo    = 2
	cmdClosePath = 7
)

// decodeGeometry walks the command stream of one feature.  Coordinates are
// cursor relative and zigzag encoded; rings of polygon features are grouped
// by winding, a positive shoelace area in grid coordinates marking an
// exterior ring.
func decodeGeometry(geomType uint64, commands []uint32, tf tileTransform) (orb.Geometry, error) {
	switch geomType {
	case geomPoint:
		return decodePoints(commands, tf)
	case geomLineString:
		return decodeLines(commands, tf)
	case geomPolygon:
		return decodePolygons(commands, tf)
	default:
		return nil, nil
	}
}

// cursor decodes the zigzag deltas of the command stream.
type cursor struct {
	commands []uint32
	pos      int
	x, y     int32
}

func (c *cursor) next() (uint32, uint32, bool) {
	if c.pos >= len(c.commands) {
		return 0, 0, false
	}

	cmd := c.commands[c.pos]
	c.pos++

	return cmd & 0x7, cmd >> 3, true
}

func (c *cursor) advance() error {
	if c.pos+1 >= len(c.commands) {
		return errTruncatedGeometry
	}

	c.x += unzig(c.commands[c.pos])
	c.y += unzig(c.commands[c.pos+1])
	c.pos += 2

	return nil
}

func unzig(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

func decodePoints(commands []uint32, tf tileTransform) (orb.Geometry, error) {
	c := cursor{commands: commands}

	var points orb.MultiPoint

	for {
		id, count, ok := c.next()
		if !ok {
			break
		}

		if id != cmdMoveTo {
			return nil, fmt.Errorf("unexpected command %d in point geometry", id)
		}

		for i := uint32(0); i < count; i++ {
			if err := c.advance(); err != nil {
				return nil, err
			}

			points = append(points, tf.toLonLat(c.x, c.y))
		}
	}

	switch len(points) {
	case 0:
		return nil, nil
	case 1:
		return points[0], nil
	default:
		return points, nil
	}
}

func decodeLines(commands []uint32, tf tileTransform) (orb.Geometry, error) {
	c := cursor{commands: commands}

	var (
		lines orb.MultiLineString
		cur   orb.LineString
	)

	for {
		id, count, ok := c.next()
		if !ok {
			break
		}

		switch id {
		case cmdMoveTo:
			if len(cur) > 1 {
				lines = append(lines, cur)
			}

			if err := c.advance(); err != nil {
				return nil, err
			}

			cur = orb.LineString{tf.toLonLat(c.x, c.y)}

		case cmdLineTo:
			for i := uint32(0); i < count; i++ {
				if err := c.advance(); err != nil {
					return nil, err
				}

				cur = append(cur, tf.toLonLat(c.x, c.y))
			}

		default:
			return nil, fmt.Errorf("unexpected command %d in line geometry", id)
		}
	}

	if len(cur) > 1 {
		lines = append(lines, cur)
	}

	switch len(lines) {
	case 0:
		return nil, nil
	case 1:
		return lines[0], nil
	default:
		return lines, nil
	}
}

func decodePolygons(commands []uint32, tf tileTransform) (orb.Geometry, error) {
	c := cursor{commands: commands}

	var (
		polygons orb.MultiPolygon
		ring     orb.Ring
		area     int64
		startX   int32
		startY   int32
		prevX    int32
		prevY    int32
	)

	for {
		id, count, ok := c.next()
		if !ok {
			break
		}

		switch id {
		case cmdMoveTo:
			if err := c.advance(); err != nil {
				return nil, err
			}

			ring = orb.Ring{tf.toLonLat(c.x, c.y)}
			area = 0
			startX, startY = c.x, c.y
			prevX, prevY = c.x, c.y

		case cmdLineTo:
			for i := uint32(0); i < count; i++ {
				if err := c.advance(); err != nil {
					return nil, err
				}

				ring = append(ring, tf.toLonLat(c.x, c.y))
				area += int64(prevX)*int64(c.y) - int64(c.x)*int64(prevY)
				prevX, prevY = c.x, c.y
			}

		case cmdClosePath:
			if len(ring) < 3 {
				ring = nil

				continue
			}

			area += int64(prevX)*int64(startY) - int64(startX)*int64(prevY)

			ring = append(ring, ring[0])

			if area > 0 {
				polygons = append(polygons, orb.Polygon{ring})
			} else if len(polygons) > 0 {
				polygons[len(polygons)-1] = append(polygons[len(polygons)-1], ring)
			}

			ring = nil

		default:
			return nil, fmt.Errorf("unexpected command %d in polygon geometry", id)
		}
	}

	switch len(polygons) {
	case 0:
		return nil, nil
	case 1:
		return polygons[0], nil
	default:
		return polygons, nil
	}
}