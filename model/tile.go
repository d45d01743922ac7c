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
	"fmt"

	"github.com/paulmach/orb/maptile"
)

// TileKey addresses a tile in the quadtree tiling scheme by row, column and
// level.  Row 0 is the northernmost row, matching the XYZ web map scheme.
type TileKey struct {
	Row    uint32
	Column uint32
	Level  uint32
}

// NewTileKey returns the key for the given row, column and level.
func NewTileKey(row, column, level uint32) TileKey {
	return TileKey{Row: row, Column: column, Level: level}
}

// Valid reports whether row and column fit the level.
func (k TileKey) Valid() bool {
	return k.Level < 32 && k.Row < (1<<k.Level) && k.Column < (1<<k.Level)
}

// MapTile converts the key into an orb maptile.Tile.
func (k TileKey) MapTile() maptile.Tile {
	return maptile.New(k.Column, k.Row, maptile.Zoom(k.Level))
}

// GeoBox returns the geographic bounds of the tile.
func (k TileKey) GeoBox() BoundingBox {
	bound := k.MapTile().Bound()

	return BoundingBox{
		Top:    Degrees(bound.Max[1]),
		Left:   Degrees(bound.Min[0]),
		Bottom: Degrees(bound.Min[1]),
		Right:  Degrees(bound.Max[0]),
	}
}

// Center returns the geographic center of the tile.  The decoder projects
// it once per tile and subtracts it from every vertex so coordinates stay
// small in magnitude regardless of the tile's absolute position.
func (k TileKey) Center() GeoPoint {
	box := k.GeoBox()

	return box.Center()
}

func (k TileKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Level, k.Column, k.Row)
}
