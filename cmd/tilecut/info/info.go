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

// Package info implements the info subcommand, which decodes a single tile
// payload and prints summary statistics.
package info

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tilecut/tilecut"
	"github.com/tilecut/tilecut/cmd/tilecut/cli"
	"github.com/tilecut/tilecut/model"
)

var (
	out io.Writer = os.Stdout

	styleFile *os.File
)

type tileInfo struct {
	Tile       string
	Features   int
	Batches    int
	Vertices   int64
	Triangles  int64
	Lines      int64
	Labels     int64
	PathLabels int64
	Icons      int64
	Strings    int64
}

func init() {
	cli.RootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.StringP("tile", "t", "0/0/0", "tile key as level/column/row")
	flags.StringP("format", "f", "auto", "payload format: auto, geojson or mvt")
	flags.StringP("projection", "p", "mercator", "projection: mercator or sphere")
	flags.StringP("label", "l", "name", "feature property holding label text")
	flags.BoolP("json", "j", false, "format information in JSON")
	flags.VarP(cli.NewReaderValue(nil, &styleFile, "file"), "style", "s", "style definition file")
}

var infoCmd = &cobra.Command{
	Use:   "info [<tile file>]",
	Short: "Print information about a tile payload",
	Long:  "Print information about a tile payload",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var f *os.File

		var err error

		if len(args) == 1 {
			f, err = os.Open(args[0])
			if err != nil {
				log.Fatal(err)
			}
		} else {
			f = os.Stdin
		}

		in, err := cli.WrapInputFile(f)
		if err != nil {
			log.Fatal(err)
		}

		flags := cmd.Flags()

		key, err := parseTileKey(mustString(flags.GetString("tile")))
		if err != nil {
			log.Fatal(err)
		}

		format, err := parseFormat(mustString(flags.GetString("format")))
		if err != nil {
			log.Fatal(err)
		}

		proj, err := parseProjection(mustString(flags.GetString("projection")))
		if err != nil {
			log.Fatal(err)
		}

		matcher, err := resolveStyle(styleFile, mustString(flags.GetString("label")))
		if err != nil {
			log.Fatal(err)
		}

		info := runInfo(in, key, format, matcher, proj)

		if err := in.Close(); err != nil {
			log.Fatal(err)
		}

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			log.Fatal(err)
		}

		if jsonfmt {
			renderJSON(info)
		} else {
			renderTxt(info)
		}
	},
}

func runInfo(in io.Reader, key model.TileKey, format tilecut.PayloadFormat, matcher model.StyleMatcher, proj model.Projection) *tileInfo {
	payload, err := io.ReadAll(in)
	if err != nil {
		log.Fatal(err)
	}

	tile, err := tilecut.DecodeTile(key, payload, format, matcher, proj)
	if err != nil {
		log.Fatal(err)
	}

	return summarize(tile)
}

func summarize(tile *model.DecodedTile) *tileInfo {
	info := &tileInfo{
		Tile:     tile.Key.String(),
		Features: tile.FeatureCount(),
		Batches: len(tile.Geometries) + len(tile.TextGeometries) +
			len(tile.TextPathGeometries) + len(tile.PoiGeometries),
	}

	for i := range tile.Geometries {
		g := &tile.Geometries[i]

		info.Vertices += int64(g.VertexCount())
		info.Triangles += int64(len(g.Indices) / 3)
		info.Lines += int64(len(g.LineStarts))
	}

	for i := range tile.TextGeometries {
		info.Labels += int64(len(tile.TextGeometries[i].TextIndices))
		info.Strings += int64(len(tile.TextGeometries[i].StringCatalog))
	}

	for i := range tile.TextPathGeometries {
		info.PathLabels += int64(len(tile.TextPathGeometries[i].Paths))
	}

	for i := range tile.PoiGeometries {
		info.Icons += int64(len(tile.PoiGeometries[i].TextIndices))
		info.Strings += int64(len(tile.PoiGeometries[i].StringCatalog))
	}

	return info
}

func renderJSON(info *tileInfo) {
	b, err := json.Marshal(info)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Fprint(out, string(b))
}

func renderTxt(info *tileInfo) {
	fmt.Fprintf(out, "Tile: %s\n", info.Tile)
	fmt.Fprintf(out, "Features: %s\n", humanize.Comma(int64(info.Features)))
	fmt.Fprintf(out, "Batches: %s\n", humanize.Comma(int64(info.Batches)))
	fmt.Fprintf(out, "Vertices: %s\n", humanize.Comma(info.Vertices))
	fmt.Fprintf(out, "Triangles: %s\n", humanize.Comma(info.Triangles))
	fmt.Fprintf(out, "Lines: %s\n", humanize.Comma(info.Lines))
	fmt.Fprintf(out, "Labels: %s\n", humanize.Comma(info.Labels))
	fmt.Fprintf(out, "PathLabels: %s\n", humanize.Comma(info.PathLabels))
	fmt.Fprintf(out, "Icons: %s\n", humanize.Comma(info.Icons))
	fmt.Fprintf(out, "Strings: %s\n", humanize.Comma(info.Strings))
}

func mustString(s string, err error) string {
	if err != nil {
		log.Fatal(err)
	}

	return s
}

func parseTileKey(s string) (model.TileKey, error) {
	var level, column, row uint32

	if _, err := fmt.Sscanf(s, "%d/%d/%d", &level, &column, &row); err != nil {
		return model.TileKey{}, fmt.Errorf("invalid tile key %q: %w", s, err)
	}

	key := model.NewTileKey(row, column, level)
	if !key.Valid() {
		return model.TileKey{}, fmt.Errorf("invalid tile key %q", s)
	}

	return key, nil
}

func parseFormat(s string) (tilecut.PayloadFormat, error) {
	switch s {
	case "auto":
		return tilecut.FormatAuto, nil
	case "geojson":
		return tilecut.FormatGeoJSON, nil
	case "mvt":
		return tilecut.FormatMVT, nil
	default:
		return 0, fmt.Errorf("unknown payload format %q", s)
	}
}

func parseProjection(s string) (model.Projection, error) {
	switch s {
	case "mercator":
		return model.MercatorProjection{}, nil
	case "sphere":
		return model.SphereProjection{}, nil
	default:
		return nil, fmt.Errorf("unknown projection %q", s)
	}
}