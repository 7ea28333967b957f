// Package entropy calculates Shannon entropy of byte data.
package entropy

/*
Packed or encrypted payloads look very random compared to ordinary media content. Measuring the
Shannon entropy of a file's byte distribution is a cheap way to surface them.

MIT License

Copyright (c) 2019-2022 Sandfly Security Ltd.
https://www.sandflysecurity.com

Permission is hereby granted, free of charge, to any person obtaining a copy of this software and associated
documentation files (the "Software"), to deal in the Software without restriction, including without limitation the
rights to use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of the Software, and to
permit persons to whom the Software is furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all copies or substantial portions of
the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO
THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

import (
	"io"
	"math"
	"sync"
)

const (
	// Max is the highest possible entropy for an 8-bit alphabet, log2(256).
	Max = 8.0
	// Chunk of data size to read in for streaming entropy calc
	constMaxEntropyChunk = 256000
)

var chunkPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, constMaxEntropyChunk)
		return &b
	},
}

// Histogram counts occurrences of each byte value. It implements [io.Writer] so data can be
// streamed into it.
type Histogram struct {
	counts [256]uint64
	total  uint64
}

// Write adds every byte of p to the histogram. It never fails.
func (h *Histogram) Write(p []byte) (int, error) {
	for _, b := range p {
		h.counts[b]++
	}
	h.total += uint64(len(p))
	return len(p), nil
}

// Len returns the number of bytes counted so far.
func (h *Histogram) Len() uint64 {
	return h.total
}

// Entropy returns the Shannon entropy (log base 2) of the counted bytes, in the range [0, 8].
// An empty histogram has an entropy of 0.
func (h *Histogram) Entropy() float64 {
	if h.total == 0 {
		return 0
	}
	size := float64(h.total)
	var entropy float64
	for i := 0; i < 256; i++ {
		px := float64(h.counts[i]) / size
		if px > 0 {
			entropy += -px * math.Log2(px)
		}
	}
	return entropy
}

// Shannon returns the Shannon entropy of data.
func Shannon(data []byte) float64 {
	h := new(Histogram)
	_, _ = h.Write(data)
	return h.Entropy()
}

// FromReader calculates the entropy of everything read from r until EOF.
func FromReader(r io.Reader) (entropy float64, n int64, err error) {
	dataBytes := chunkPool.Get().(*[]byte)
	defer chunkPool.Put(dataBytes)

	h := new(Histogram)
	if n, err = io.CopyBuffer(h, r, *dataBytes); err != nil {
		return 0, n, err
	}

	return h.Entropy(), n, nil
}

// Round returns e rounded to two decimals for display.
func Round(e float64) float64 {
	return math.Round(e*100) / 100
}
