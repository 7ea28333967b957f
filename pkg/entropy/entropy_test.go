package entropy

import (
	"bytes"
	"io"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	rng := rand.New(rand.NewPCG(0x5eed, 0xf00d))
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(rng.UintN(256))
	}
	return buf
}

func TestShannonDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, Shannon(nil))
	assert.Equal(t, 0.0, Shannon([]byte{}))
	assert.Equal(t, 0.0, Shannon([]byte{0x41}))
	assert.Equal(t, 0.0, Shannon(bytes.Repeat([]byte{0xff}, 4096)))
}

func TestShannonKnownDistributions(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want float64
	}{
		{"two symbols", []byte("abababab"), 1},
		{"four symbols", []byte("abcdabcdabcd"), 2},
		{"every byte once", func() []byte {
			b := make([]byte, 256)
			for i := range b {
				b[i] = byte(i)
			}
			return b
		}(), Max},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Shannon(tt.data), 1e-9)
		})
	}
}

func TestShannonRandomApproachesMax(t *testing.T) {
	small := Shannon(randomBytes(t, 512))
	large := Shannon(randomBytes(t, 1<<20))

	assert.Less(t, small, large)
	assert.Greater(t, large, 7.99)
	assert.LessOrEqual(t, large, Max)
}

func TestShannonPermutationInvariant(t *testing.T) {
	data := []byte(strings.Repeat("media pipeline payload ", 64))
	shuffled := bytes.Clone(data)
	rng := rand.New(rand.NewPCG(1, 2))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	reversed := bytes.Clone(data)
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	want := Shannon(data)
	assert.InDelta(t, want, Shannon(shuffled), 1e-12)
	assert.InDelta(t, want, Shannon(reversed), 1e-12)
}

func TestHistogramStreaming(t *testing.T) {
	data := randomBytes(t, 100_000)

	h := new(Histogram)
	for i := 0; i < len(data); i += 777 {
		end := min(i+777, len(data))
		n, err := h.Write(data[i:end])
		require.NoError(t, err)
		require.Equal(t, end-i, n)
	}

	assert.Equal(t, uint64(len(data)), h.Len())
	assert.InDelta(t, Shannon(data), h.Entropy(), 1e-12)
}

func TestFromReader(t *testing.T) {
	data := randomBytes(t, 3*constMaxEntropyChunk+17)

	e, n, err := FromReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)
	assert.InDelta(t, Shannon(data), e, 1e-12)

	e, n, err = FromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, e)
}

func TestFromReaderPooledBuffer(t *testing.T) {
	buf, ok := chunkPool.Get().(*[]byte)
	require.True(t, ok, "pool holds *[]byte")
	assert.Len(t, *buf, constMaxEntropyChunk)
	chunkPool.Put(buf)

	data := randomBytes(t, constMaxEntropyChunk+5)
	for i := 0; i < 3; i++ {
		// hide WriterTo so the pooled buffer is actually used
		e, n, err := FromReader(struct{ io.Reader }{bytes.NewReader(data)})
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), n)
		assert.InDelta(t, Shannon(data), e, 1e-12)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 7.99, Round(7.9912))
	assert.Equal(t, 8.0, Round(7.9951))
}
