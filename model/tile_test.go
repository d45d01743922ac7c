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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileKeyValid(t *testing.T) {
	tests := []struct {
		name  string
		key   TileKey
		valid bool
	}{
		{"root", NewTileKey(0, 0, 0), true},
		{"level one corner", NewTileKey(1, 1, 1), true},
		{"row out of range", NewTileKey(2, 0, 1), false},
		{"column out of range", NewTileKey(0, 4, 2), false},
		{"level out of range", NewTileKey(0, 0, 32), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.key.Valid())
		})
	}
}

func TestTileKeyGeoBox(t *testing.T) {
	box := NewTileKey(0, 0, 0).GeoBox()

	assert.True(t, box.Left.EqualWithin(-180, E5))
	assert.True(t, box.Right.EqualWithin(180, E5))
	assert.InDelta(t, 85.0511, float64(box.Top), 1e-3)
	assert.InDelta(t, -85.0511, float64(box.Bottom), 1e-3)

	// The north-west quadrant at level 1.
	box = NewTileKey(0, 0, 1).GeoBox()

	assert.True(t, box.Left.EqualWithin(-180, E5))
	assert.True(t, box.Right.EqualWithin(0, E5))
	assert.True(t, box.Bottom.EqualWithin(0, E5))
}

func TestTileKeyCenter(t *testing.T) {
	center := NewTileKey(0, 0, 0).Center()

	assert.True(t, center.Lon.EqualWithin(0, E5))
	assert.True(t, center.Lat.EqualWithin(0, E5))
}

func TestTileKeyString(t *testing.T) {
	assert.Equal(t, "14/8192/5448", NewTileKey(5448, 8192, 14).String())
}