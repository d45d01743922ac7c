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

package tilecut

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilecut/tilecut/model"
)

func testMatcher() model.ClassMatcher {
	table := &model.TechniqueTable{}
	table.Add(model.Technique{Kind: model.KindText, LabelProperty: "name"})
	table.Add(model.Technique{Kind: model.KindSolidLine})
	table.Add(model.Technique{Kind: model.KindFill})

	return model.ClassMatcher{Table: table}
}

func pointPayload(name string) []byte {
	return []byte(fmt.Sprintf(`{
		"type": "Feature",
		"geometry": {"type": "Point", "coordinates": [13.4, 52.5]},
		"properties": {"name": %q}
	}`, name))
}

func TestDecoderOrderedResults(t *testing.T) {
	const n = 8

	requests := make(chan TileRequest, n)
	for i := 0; i < n; i++ {
		requests <- TileRequest{
			Key:     model.NewTileKey(0, 0, 0),
			Payload: pointPayload(fmt.Sprintf("label-%d", i)),
		}
	}
	close(requests)

	d, err := NewDecoder(context.Background(), requests, testMatcher(), model.MercatorProjection{})
	require.NoError(t, err)
	defer d.Close()

	for i := 0; i < n; i++ {
		tile, err := d.Decode()
		require.NoError(t, err)
		require.Len(t, tile.TextGeometries, 1)
		assert.Equal(t, []string{fmt.Sprintf("label-%d", i)}, tile.TextGeometries[0].StringCatalog)
	}

	_, err = d.Decode()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderNilDependency(t *testing.T) {
	requests := make(chan TileRequest)
	close(requests)

	_, err := NewDecoder(context.Background(), requests, nil, model.MercatorProjection{})
	assert.ErrorIs(t, err, ErrNilDependency)

	_, err = NewDecoder(context.Background(), requests, testMatcher(), nil)
	assert.ErrorIs(t, err, ErrNilDependency)
}

func TestDecoderBadPayload(t *testing.T) {
	requests := make(chan TileRequest, 1)
	requests <- TileRequest{
		Key:     model.NewTileKey(0, 0, 0),
		Payload: []byte(`{"type": "Banana"}`),
		Format:  FormatGeoJSON,
	}
	close(requests)

	d, err := NewDecoder(context.Background(), requests, testMatcher(), model.MercatorProjection{}, WithNCpus(1))
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Decode()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestDecoderCloseDiscardsResults(t *testing.T) {
	requests := make(chan TileRequest, 4)
	for i := 0; i < 4; i++ {
		requests <- TileRequest{Key: model.NewTileKey(0, 0, 0), Payload: pointPayload("x")}
	}
	close(requests)

	d, err := NewDecoder(context.Background(), requests, testMatcher(), model.MercatorProjection{})
	require.NoError(t, err)

	// Close twice; the second call must be a no-op.
	d.Close()
	d.Close()
}

func TestDecodeTileCompressedPayload(t *testing.T) {
	var packed bytes.Buffer
	w := gzip.NewWriter(&packed)
	_, err := w.Write(pointPayload("Berlin"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	tile, err := DecodeTile(model.NewTileKey(0, 0, 0), packed.Bytes(), FormatAuto, testMatcher(), model.MercatorProjection{})

	require.NoError(t, err)
	require.Len(t, tile.TextGeometries, 1)
	assert.Equal(t, []string{"Berlin"}, tile.TextGeometries[0].StringCatalog)
}

func TestDecodeTileNilDependency(t *testing.T) {
	_, err := DecodeTile(model.NewTileKey(0, 0, 0), nil, FormatAuto, nil, nil)

	assert.ErrorIs(t, err, ErrNilDependency)
}

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		expected PayloadFormat
	}{
		{name: "object", payload: []byte(`{"type":"Feature"}`), expected: FormatGeoJSON},
		{name: "array", payload: []byte(`[1, 2]`), expected: FormatGeoJSON},
		{name: "leading space", payload: []byte("\n\t {}"), expected: FormatGeoJSON},
		{name: "protobuf", payload: []byte{0x1a, 0x02, 0x0a, 0x00}, expected: FormatMVT},
		{name: "empty", payload: nil, expected: FormatMVT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sniffFormat(tt.payload))
		})
	}
}
