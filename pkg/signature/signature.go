// Package signature searches byte buffers and streams for known malicious byte sequences.
package signature

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// constChunkSize is the read size used by [Set.MatchReader].
const constChunkSize = 64 * 1024

// HexPrefix marks a catalog entry written as hex encoded bytes instead of literal text.
const HexPrefix = "hex:"

// ErrEmptySignature is returned when a catalog entry decodes to zero bytes.
var ErrEmptySignature = errors.New("empty signature")

// Set is an ordered, immutable collection of byte signatures. It is safe for concurrent use.
type Set struct {
	sigs    [][]byte
	longest int
	chunk   int
}

// NewSet creates a [Set] from sigs, in the given order. Signatures are copied; empty ones are dropped
// since they would match every buffer.
func NewSet(sigs ...[]byte) *Set {
	s := &Set{sigs: make([][]byte, 0, len(sigs)), chunk: constChunkSize}
	for _, sig := range sigs {
		if len(sig) == 0 {
			continue
		}
		s.sigs = append(s.sigs, bytes.Clone(sig))
		s.longest = max(s.longest, len(sig))
	}
	return s
}

// Parse decodes a single catalog entry. Entries starting with [HexPrefix] are hex decoded,
// anything else is taken literally.
func Parse(entry string) ([]byte, error) {
	var sig []byte
	if rest, ok := strings.CutPrefix(entry, HexPrefix); ok {
		var err error
		if sig, err = hex.DecodeString(strings.ReplaceAll(rest, " ", "")); err != nil {
			return nil, fmt.Errorf("bad hex signature %q: %w", entry, err)
		}
	} else {
		sig = []byte(entry)
	}
	if len(sig) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySignature, entry)
	}
	return sig, nil
}

// ParseSet decodes every entry with [Parse] and builds a [Set] from them.
func ParseSet(entries []string) (*Set, error) {
	sigs := make([][]byte, 0, len(entries))
	var errs []error
	for _, e := range entries {
		sig, err := Parse(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sigs = append(sigs, sig)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return NewSet(sigs...), nil
}

// Len returns the number of signatures in the set.
func (s *Set) Len() int {
	return len(s.sigs)
}

// Signatures returns a copy of the signatures in catalog order.
func (s *Set) Signatures() [][]byte {
	out := make([][]byte, len(s.sigs))
	for i, sig := range s.sigs {
		out[i] = bytes.Clone(sig)
	}
	return out
}

// Match reports whether any signature occurs anywhere in data. Signatures are tried in catalog
// order and a copy of the first one found is returned.
func (s *Set) Match(data []byte) (sig []byte, found bool) {
	for _, sig = range s.sigs {
		if bytes.Contains(data, sig) {
			return bytes.Clone(sig), true
		}
	}
	return nil, false
}

// Contains is [Set.Match] without the matched signature.
func (s *Set) Contains(data []byte) bool {
	_, found := s.Match(data)
	return found
}

// MatchReader scans r in chunks until a signature is found or r is exhausted. Consecutive
// chunks overlap by one byte less than the longest signature, so a match that straddles a
// chunk boundary is still reported. When several signatures occur, the one reported is the
// first in catalog order within the earliest chunk that contains any of them.
func (s *Set) MatchReader(r io.Reader) (sig []byte, found bool, err error) {
	if len(s.sigs) == 0 {
		return nil, false, nil
	}

	overlap := s.longest - 1
	buf := make([]byte, overlap+max(s.chunk, s.longest))
	keep := 0

	for {
		n, rerr := io.ReadFull(r, buf[keep:])
		window := buf[:keep+n]
		if sig, found = s.Match(window); found {
			return sig, true, nil
		}
		switch {
		case errors.Is(rerr, io.EOF), errors.Is(rerr, io.ErrUnexpectedEOF):
			return nil, false, nil
		case rerr != nil:
			return nil, false, rerr
		}
		keep = min(overlap, len(window))
		copy(buf, window[len(window)-keep:])
	}
}
