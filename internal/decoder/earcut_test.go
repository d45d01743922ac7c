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
	"testing"

	"github.com/stretchr/testify/assert"
)

// triangulatedArea sums the unsigned area of every emitted triangle.  For a
// valid triangulation this equals the area of the input polygon.
func triangulatedArea(data []float64, indices []uint32) float64 {
	var total float64

	for i := 0; i+2 < len(indices); i += 3 {
		ax, ay := data[2*indices[i]], data[2*indices[i]+1]
		bx, by := data[2*indices[i+1]], data[2*indices[i+1]+1]
		cx, cy := data[2*indices[i+2]], data[2*indices[i+2]+1]

		total += math.Abs((bx-ax)*(cy-ay)-(cx-ax)*(by-ay)) / 2
	}

	return total
}

func TestTriangulateSquare(t *testing.T) {
	data := []float64{0, 0, 1, 0, 1, 1, 0, 1}

	indices := Triangulate(data, nil)

	assert.Len(t, indices, 6)
	for _, idx := range indices {
		assert.Less(t, idx, uint32(4))
	}
	assert.InDelta(t, 1.0, triangulatedArea(data, indices), 1e-9)
}

func TestTriangulateSquareWithHole(t *testing.T) {
	data := []float64{
		0, 0, 4, 0, 4, 4, 0, 4, // outer
		1, 1, 3, 1, 3, 3, 1, 3, // hole
	}

	indices := Triangulate(data, []int{4})

	assert.Zero(t, len(indices)%3)
	for _, idx := range indices {
		assert.Less(t, idx, uint32(8))
	}
	assert.InDelta(t, 12.0, triangulatedArea(data, indices), 1e-9)
}

func TestTriangulateConcave(t *testing.T) {
	data := []float64{0, 0, 2, 0, 2, 1, 1, 1, 1, 2, 0, 2}

	indices := Triangulate(data, nil)

	assert.Len(t, indices, 12)
	assert.InDelta(t, 3.0, triangulatedArea(data, indices), 1e-9)
}

func TestTriangulateDegenerate(t *testing.T) {
	tests := []struct {
		name string
		data []float64
	}{
		{name: "empty", data: nil},
		{name: "single point", data: []float64{1, 1}},
		{name: "two points", data: []float64{0, 0, 1, 1}},
		{name: "collinear", data: []float64{0, 0, 1, 1, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Triangulate(tt.data, nil))
		})
	}
}

func TestTriangulateClockwiseInput(t *testing.T) {
	data := []float64{0, 0, 0, 1, 1, 1, 1, 0}

	indices := Triangulate(data, nil)

	assert.Len(t, indices, 6)
	assert.InDelta(t, 1.0, triangulatedArea(data, indices), 1e-9)
}
