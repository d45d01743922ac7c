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

// Package core holds pooled buffers and small numeric helpers shared by the
// decode and placement passes.
package core

import (
	"bytes"
	"sync"
)

const initialBufferSize = 256 * 1024

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, initialBufferSize))
	},
}

// PooledBuffer is a bytes.Buffer drawn from a process-wide pool.  Close
// returns the buffer to the pool; the buffer must not be used afterwards.
type PooledBuffer struct {
	*bytes.Buffer
}

// NewPooledBuffer obtains a reset buffer from the pool.
func NewPooledBuffer() *PooledBuffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	return &PooledBuffer{Buffer: buf}
}

// Close releases the underlying buffer back to the pool.
func (b *PooledBuffer) Close() {
	if b.Buffer == nil {
		return
	}

	bufferPool.Put(b.Buffer)
	b.Buffer = nil
}
