package signature

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPositions(t *testing.T) {
	sig := []byte("<script")
	set := NewSet(sig)
	filler := bytes.Repeat([]byte{0x00, 0x7f, 0x13}, 100)

	tests := []struct {
		name string
		data []byte
	}{
		{"start", append(bytes.Clone(sig), filler...)},
		{"middle", bytes.Join([][]byte{filler, sig, filler}, nil)},
		{"end", append(bytes.Clone(filler), sig...)},
		{"unaligned", bytes.Join([][]byte{{0x01}, sig, {0x02, 0x03}}, nil)},
		{"exact", bytes.Clone(sig)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := set.Match(tt.data)
			require.True(t, ok)
			assert.Equal(t, sig, got)
			assert.True(t, set.Contains(tt.data))
		})
	}
}

func TestMatchNoHit(t *testing.T) {
	set := NewSet([]byte("<script"), []byte("<?php"))
	_, ok := set.Match([]byte("<scrip <?ph script php"))
	assert.False(t, ok)
	assert.False(t, set.Contains(nil))
}

func TestMatchCatalogOrder(t *testing.T) {
	set := NewSet([]byte("second"), []byte("first"))
	data := []byte("first ... second")

	got, ok := set.Match(data)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got, "catalog order wins over buffer position")
}

func TestMatchReturnsCopy(t *testing.T) {
	set := NewSet([]byte("<?php"))

	got, ok := set.Match([]byte("xx<?phpxx"))
	require.True(t, ok)
	got[0] = 'X'

	again, ok := set.Match([]byte("xx<?phpxx"))
	require.True(t, ok)
	assert.Equal(t, []byte("<?php"), again)
	assert.Equal(t, [][]byte{[]byte("<?php")}, set.Signatures())

	fromReader, ok, err := set.MatchReader(bytes.NewReader([]byte("<?php")))
	require.NoError(t, err)
	require.True(t, ok)
	fromReader[1] = 'X'
	assert.True(t, set.Contains([]byte("<?php")))
}

func TestNewSetDropsEmptyAndCopies(t *testing.T) {
	sig := []byte("eval(")
	set := NewSet(nil, sig, []byte{})
	sig[0] = 'X'

	require.Equal(t, 1, set.Len())
	assert.Equal(t, [][]byte{[]byte("eval(")}, set.Signatures())
	assert.False(t, NewSet().Contains([]byte("anything")))
}

func TestParse(t *testing.T) {
	got, err := Parse("hex:4d 5a 90 00")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4d, 0x5a, 0x90, 0x00}, got)

	got, err = Parse("<?php")
	require.NoError(t, err)
	assert.Equal(t, []byte("<?php"), got)

	_, err = Parse("hex:zz")
	assert.Error(t, err)

	_, err = Parse("")
	assert.True(t, errors.Is(err, ErrEmptySignature))

	_, err = ParseSet([]string{"ok", "hex:", "hex:0"})
	assert.Error(t, err)
}

func TestDefaultCatalog(t *testing.T) {
	set := Default()
	assert.Equal(t, len(DefaultCatalog), set.Len())
	for _, sig := range set.Signatures() {
		assert.GreaterOrEqual(t, len(sig), 5, "signature %q is too short", sig)
	}
}

func TestMatchReaderAcrossChunkBoundaries(t *testing.T) {
	sig := []byte("document.write(")
	set := NewSet([]byte("<?php"), sig)
	set.chunk = 16

	// place the signature at every offset around several chunk boundaries
	for offset := 0; offset < 3*set.chunk; offset++ {
		data := bytes.Join([][]byte{bytes.Repeat([]byte{'.'}, offset), sig, bytes.Repeat([]byte{'~'}, 9)}, nil)

		got, ok, err := set.MatchReader(bytes.NewReader(data))
		require.NoError(t, err)
		require.True(t, ok, "offset %d", offset)
		assert.Equal(t, sig, got)

		// one byte at a time exercises short reads
		_, ok, err = set.MatchReader(iotest.OneByteReader(bytes.NewReader(data)))
		require.NoError(t, err)
		require.True(t, ok, "one byte reader, offset %d", offset)
	}
}

func TestMatchReaderMiss(t *testing.T) {
	set := NewSet([]byte("<iframe"))
	set.chunk = 8
	_, ok, err := set.MatchReader(bytes.NewReader(bytes.Repeat([]byte("<ifram"), 50)))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = NewSet().MatchReader(bytes.NewReader([]byte("<iframe")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchReaderError(t *testing.T) {
	boom := errors.New("boom")
	set := NewSet([]byte("<iframe"))
	_, ok, err := set.MatchReader(iotest.ErrReader(boom))
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)

	_, _, err = set.MatchReader(io.MultiReader(bytes.NewReader([]byte("abc")), iotest.ErrReader(boom)))
	assert.ErrorIs(t, err, boom)
}
