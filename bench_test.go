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
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/tilecut/tilecut/model"
)

// syntheticTile builds a FeatureCollection with n point labels and n small
// polygons spread across the tile.
func syntheticTile(n int) []byte {
	var sb strings.Builder

	sb.WriteString(`{"type":"FeatureCollection","features":[`)

	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}

		lon := float64(i%360) - 180
		lat := float64(i%150) - 75

		fmt.Fprintf(&sb, `{"type":"Feature","geometry":{"type":"Point","coordinates":[%g,%g]},"properties":{"name":"label-%d"}},`, lon, lat, i)
		fmt.Fprintf(&sb, `{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]},"properties":{}}`,
			lon, lat, lon+0.1, lat, lon+0.1, lat+0.1, lon, lat)
	}

	sb.WriteString(`]}`)

	return []byte(sb.String())
}

func BenchmarkDecoder(b *testing.B) {
	const tiles = 64

	payload := syntheticTile(256)
	matcher := testMatcher()

	ncpu, _ := strconv.Atoi(os.Getenv("TILECUT_NCPU"))

	b.SetBytes(int64(len(payload) * tiles))
	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		requests := make(chan TileRequest, tiles)
		for i := 0; i < tiles; i++ {
			requests <- TileRequest{Key: model.NewTileKey(0, 0, 0), Payload: payload}
		}
		close(requests)

		decoder, err := NewDecoder(context.Background(), requests, matcher, model.MercatorProjection{},
			WithNCpus(uint16(ncpu)))
		if err != nil {
			b.Fatal(err)
		}

		for {
			if _, err := decoder.Decode(); err == io.EOF {
				break
			} else if err != nil {
				b.Fatal(err)
			}
		}
	}
}
