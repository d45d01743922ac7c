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

package info

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tilecut/tilecut/model"
)

// styleRule is one technique definition in a style file.
type styleRule struct {
	Kind          string  `json:"kind"`
	LabelProperty string  `json:"labelProperty"`
	ImageTexture  string  `json:"imageTexture"`
	Color         string  `json:"color"`
	LineWidth     float64 `json:"lineWidth"`
	Size          float64 `json:"size"`
	Priority      float64 `json:"priority"`
	MinZoom       uint32  `json:"minZoom"`
	MaxZoom       uint32  `json:"maxZoom"`
}

// resolveStyle loads the style file when one was given, falling back to a
// minimal built-in style labeling features by the given property.
func resolveStyle(f *os.File, labelProperty string) (model.StyleMatcher, error) {
	if f == nil {
		return defaultStyle(labelProperty), nil
	}

	defer f.Close()

	return loadStyle(f)
}

func loadStyle(r io.Reader) (model.StyleMatcher, error) {
	var rules []styleRule

	if err := json.NewDecoder(r).Decode(&rules); err != nil {
		return nil, fmt.Errorf("unable to parse style: %w", err)
	}

	table := &model.TechniqueTable{}

	for _, rule := range rules {
		kind, err := parseKind(rule.Kind)
		if err != nil {
			return nil, err
		}

		table.Add(model.Technique{
			Kind:          kind,
			LabelProperty: rule.LabelProperty,
			ImageTexture:  rule.ImageTexture,
			Color:         rule.Color,
			LineWidth:     rule.LineWidth,
			Size:          rule.Size,
			Priority:      rule.Priority,
			MinZoom:       rule.MinZoom,
			MaxZoom:       rule.MaxZoom,
		})
	}

	return model.ClassMatcher{Table: table}, nil
}

func defaultStyle(labelProperty string) model.StyleMatcher {
	table := &model.TechniqueTable{}

	table.Add(model.Technique{Kind: model.KindFill})
	table.Add(model.Technique{Kind: model.KindSolidLine, LineWidth: 1})
	table.Add(model.Technique{Kind: model.KindText, LabelProperty: labelProperty})

	return model.ClassMatcher{Table: table}
}

func parseKind(s string) (model.TechniqueKind, error) {
	switch s {
	case "fill":
		return model.KindFill, nil
	case "solid-line":
		return model.KindSolidLine, nil
	case "circles":
		return model.KindCircles, nil
	case "squares":
		return model.KindSquares, nil
	case "text":
		return model.KindText, nil
	case "poi":
		return model.KindPOI, nil
	default:
		return model.KindNone, fmt.Errorf("unknown technique kind %q", s)
	}
}