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

package tilecut_test

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/tilecut/tilecut"
	"github.com/tilecut/tilecut/model"
)

func Example() {
	table := &model.TechniqueTable{}
	table.Add(model.Technique{Kind: model.KindFill})
	table.Add(model.Technique{Kind: model.KindText, LabelProperty: "name"})
	matcher := model.ClassMatcher{Table: table}

	payloads := [][]byte{
		[]byte(`{"type":"Feature","geometry":{"type":"Point","coordinates":[13.4,52.5]},"properties":{"name":"Berlin"}}`),
		[]byte(`{"type":"Feature","geometry":{"type":"Point","coordinates":[2.35,48.85]},"properties":{"name":"Paris"}}`),
	}

	requests := make(chan tilecut.TileRequest, len(payloads))
	for _, payload := range payloads {
		requests <- tilecut.TileRequest{Key: model.NewTileKey(0, 0, 0), Payload: payload}
	}
	close(requests)

	d, err := tilecut.NewDecoder(context.Background(), requests, matcher, model.MercatorProjection{},
		tilecut.WithNCpus(2))
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	var labels int
	for {
		if tile, err := d.Decode(); err == io.EOF {
			break
		} else if err != nil {
			log.Fatal(err)
		} else {
			for _, text := range tile.TextGeometries {
				labels += len(text.TextIndices)
			}
		}
	}

	fmt.Printf("Labels: %d\n", labels)
	// Output:
	// Labels: 2
}
