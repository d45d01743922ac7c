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

// Package tilecut decodes vector map tiles into renderable geometry batches.
// Tile payloads, GeoJSON or Mapbox Vector Tile encoded and optionally
// compressed, are matched against a style, projected into a tile-local
// coordinate frame and merged per technique.  The placement package consumes
// the decoded labels for collision handling and fading.
package tilecut

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"unicode"

	"github.com/destel/rill"

	"github.com/tilecut/tilecut/internal/core"
	"github.com/tilecut/tilecut/internal/decoder"
	"github.com/tilecut/tilecut/model"
)

//go:generate stringer -type=PayloadFormat

// PayloadFormat selects the encoding of a tile payload.
type PayloadFormat uint8

const (
	// FormatAuto sniffs the payload after decompression; JSON documents are
	// parsed as GeoJSON, everything else as a Mapbox Vector Tile.
	FormatAuto PayloadFormat = iota

	// FormatGeoJSON forces GeoJSON parsing.
	FormatGeoJSON

	// FormatMVT forces Mapbox Vector Tile parsing.
	FormatMVT
)

// ErrNilDependency is returned when a decoder is constructed without a style
// matcher or projection.
var ErrNilDependency = errors.New("matcher and projection must not be nil")

// TileRequest is one unit of work for the decoder: a tile key plus its raw,
// possibly compressed payload.
type TileRequest struct {
	Key     model.TileKey
	Payload []byte
	Format  PayloadFormat
}

// Decoder decodes tile payloads in the background across multiple CPUs,
// preserving request order.
type Decoder struct {
	cfg     decoderOptions
	matcher model.StyleMatcher
	proj    model.Projection

	decoded <-chan rill.Try[*model.DecodedTile]
	stop    sync.Once
}

// NewDecoder returns a new decoder, configured with options, that consumes
// tile requests from the requests channel.  Decoding begins immediately;
// results are read back with Decode in request order.
func NewDecoder(ctx context.Context, requests <-chan TileRequest, matcher model.StyleMatcher, proj model.Projection, opts ...DecoderOption) (*Decoder, error) {
	if matcher == nil || proj == nil {
		return nil, ErrNilDependency
	}

	cfg := defaultDecoderConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Decoder{
		cfg:     cfg,
		matcher: matcher,
		proj:    proj,
	}

	tiles := rill.FromChan(requests, nil)

	d.decoded = rill.OrderedMap(tiles, int(cfg.nCPU), func(req TileRequest) (*model.DecodedTile, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		return d.decodeRequest(req)
	})

	return d, nil
}

// Decode returns the next decoded tile, or the error its decoding produced.
// The end of the request stream is reported by an io.EOF error.
func (d *Decoder) Decode() (*model.DecodedTile, error) {
	decoded, more := <-d.decoded

	if !more {
		return nil, io.EOF
	}

	return decoded.Value, decoded.Error
}

// Close discards any undelivered results so the background pipeline can shut
// down.  The requests channel must be closed by the caller.
func (d *Decoder) Close() {
	d.stop.Do(func() {
		rill.DrainNB(d.decoded)
	})
}

func (d *Decoder) decodeRequest(req TileRequest) (*model.DecodedTile, error) {
	buffer := core.NewPooledBuffer()
	defer buffer.Close()

	buffer.Grow(d.cfg.payloadBufferSize)

	payload, err := decoder.Unpack(buffer, req.Payload)
	if err != nil {
		slog.Error("unable to unpack payload", "tile", req.Key, "error", err)

		return nil, err
	}

	features, err := parseFeatures(payload, req.Key, req.Format)
	if err != nil {
		slog.Error("unable to parse payload", "tile", req.Key, "error", err)

		return nil, err
	}

	return decoder.DecodeTile(req.Key, features, d.matcher, d.proj)
}

// DecodeTile decodes a single tile payload synchronously.
func DecodeTile(key model.TileKey, payload []byte, format PayloadFormat, matcher model.StyleMatcher, proj model.Projection) (*model.DecodedTile, error) {
	if matcher == nil || proj == nil {
		return nil, ErrNilDependency
	}

	buffer := core.NewPooledBuffer()
	defer buffer.Close()

	unpacked, err := decoder.Unpack(buffer, payload)
	if err != nil {
		return nil, err
	}

	features, err := parseFeatures(unpacked, key, format)
	if err != nil {
		return nil, err
	}

	return decoder.DecodeTile(key, features, matcher, proj)
}

func parseFeatures(payload []byte, key model.TileKey, format PayloadFormat) ([]model.Feature, error) {
	if format == FormatAuto {
		format = sniffFormat(payload)
	}

	if format == FormatGeoJSON {
		return decoder.ParseGeoJSON(payload)
	}

	return decoder.ParseMVT(payload, key)
}

func sniffFormat(payload []byte) PayloadFormat {
	for _, b := range payload {
		if unicode.IsSpace(rune(b)) {
			continue
		}

		if b == '{' || b == '[' {
			return FormatGeoJSON
		}

		break
	}

	return FormatMVT
}