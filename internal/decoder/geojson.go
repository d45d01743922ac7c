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
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/tilecut/tilecut/model"
)

// ParseGeoJSON extracts features from a GeoJSON payload.  FeatureCollection,
// single Feature and bare Geometry documents are all accepted.  GeoJSON
// features do not carry stable integer ids in this pipeline, so every
// returned feature has id zero.
func ParseGeoJSON(payload []byte) ([]model.Feature, error) {
	var probe struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("unable to parse geojson payload: %w", err)
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(payload)
		if err != nil {
			return nil, fmt.Errorf("unable to parse feature collection: %w", err)
		}

		features := make([]model.Feature, 0, len(fc.Features))
		for _, f := range fc.Features {
			features = append(features, fromGeoJSON(f))
		}

		return features, nil

	case "Feature":
		f, err := geojson.UnmarshalFeature(payload)
		if err != nil {
			return nil, fmt.Errorf("unable to parse feature: %w", err)
		}

		return []model.Feature{fromGeoJSON(f)}, nil

	default:
		g, err := geojson.UnmarshalGeometry(payload)
		if err != nil {
			return nil, fmt.Errorf("unable to parse geometry: %w", err)
		}

		return []model.Feature{{Geometry: g.Geometry()}}, nil
	}
}

func fromGeoJSON(f *geojson.Feature) model.Feature {
	return model.Feature{
		Geometry:   f.Geometry,
		Properties: f.Properties,
	}
}