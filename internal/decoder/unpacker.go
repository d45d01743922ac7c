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
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"

	"github.com/tilecut/tilecut/internal/core"
)

// ErrUnknownCompressionType is kept for callers that care; in practice an
// unrecognized payload is passed through raw, since uncompressed GeoJSON and
// MVT have no magic of their own.
var ErrUnknownCompressionType = errors.New("unknown payload compression type")

// Compression identifies how a tile payload is packed on the wire.
type Compression int

const (
	Raw Compression = iota
	Gzip
	Zlib
	Zstd
	Lz4
	Xz
)

// SniffCompression inspects the payload's magic bytes.  Payloads that match
// none of the known signatures are treated as raw.
func SniffCompression(payload []byte) Compression {
	switch {
	case len(payload) >= 2 && payload[0] == 0x1f && payload[1] == 0x8b:
		return Gzip
	case len(payload) >= 2 && payload[0] == 0x78 &&
		(payload[1] == 0x01 || payload[1] == 0x9c || payload[1] == 0xda):
		return Zlib
	case len(payload) >= 4 && payload[0] == 0x28 && payload[1] == 0xb5 &&
		payload[2] == 0x2f && payload[3] == 0xfd:
		return Zstd
	case len(payload) >= 4 && payload[0] == 0x04 && payload[1] == 0x22 &&
		payload[2] == 0x4d && payload[3] == 0x18:
		return Lz4
	case len(payload) >= 6 && payload[0] == 0xfd && payload[1] == '7' &&
		payload[2] == 'z' && payload[3] == 'X' && payload[4] == 'Z' && payload[5] == 0x00:
		return Xz
	default:
		return Raw
	}
}

// Unpack uncompresses a tile payload into buf and returns the raw bytes.
// Raw payloads are returned as-is without copying.
//
// This is kept separate from the per-tile decode so that decompression of
// payloads can be performed concurrently.
func Unpack(buf *core.PooledBuffer, payload []byte) ([]byte, error) {
	var factory func(payload []byte) (io.Reader, error)

	switch SniffCompression(payload) {
	case Raw:
		return payload, nil
	case Gzip:
		factory = func(p []byte) (io.Reader, error) {
			return gzip.NewReader(bytes.NewReader(p))
		}
	case Zlib:
		factory = func(p []byte) (io.Reader, error) {
			return zlib.NewReader(bytes.NewReader(p))
		}
	case Zstd:
		factory = func(p []byte) (io.Reader, error) {
			return zstd.NewReader(bytes.NewReader(p))
		}
	case Lz4:
		factory = func(p []byte) (io.Reader, error) {
			return lz4.NewReader(bytes.NewReader(p)), nil
		}
	case Xz:
		factory = func(p []byte) (io.Reader, error) {
			return xz.NewReader(bytes.NewReader(p))
		}
	default:
		return nil, ErrUnknownCompressionType
	}

	rdr, err := factory(payload)
	if err != nil {
		return nil, fmt.Errorf("unpacker factory error: %w", err)
	}

	if _, err := buf.ReadFrom(rdr); err != nil {
		return nil, fmt.Errorf("unpacker read error: %w", err)
	}

	return buf.Bytes(), nil
}
