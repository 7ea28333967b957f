package main

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/scan"
)

type HashType uint8

const (
	HashNull HashType = iota
	HashTypeMD5
	HashTypeSHA1
	HashTypeSHA256
	HashTypeSHA512
)

var hashNames = map[HashType]string{
	HashNull:       "null",
	HashTypeMD5:    "md5",
	HashTypeSHA1:   "sha1",
	HashTypeSHA256: "sha256",
	HashTypeSHA512: "sha512",
}

func (ht HashType) String() string {
	if name, ok := hashNames[ht]; ok {
		return name
	}
	return fmt.Sprintf("HashType(%d)", uint8(ht))
}

var HashFuncs = map[HashType]func() hash.Hash{
	HashTypeMD5:    md5.New,
	HashTypeSHA1:   sha1.New,
	HashTypeSHA256: sha256.New,
	HashTypeSHA512: sha512.New,
}

// ErrNoHashTypes is returned by [MultiHasher.Hash] when no [HashType] was requested.
var ErrNoHashTypes = errors.New("no hash types specified")

var hashBufs = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 32*1024)
		return &b
	},
}

// MultiHasher computes several checksums of one stream in a single pass.
type MultiHasher struct {
	todo []HashType
}

func NewMultiHasher(types ...HashType) *MultiHasher {
	return &MultiHasher{todo: types}
}

func (m *MultiHasher) Hash(r io.Reader) (map[HashType]string, error) {
	if len(m.todo) == 0 {
		return nil, ErrNoHashTypes
	}

	hashers := make(map[HashType]hash.Hash, len(m.todo))
	writers := make([]io.Writer, 0, len(m.todo))
	for _, v := range m.todo {
		f, ok := HashFuncs[v]
		if !ok {
			return nil, fmt.Errorf("hash type (%d) not supported", v)
		}
		if _, dup := hashers[v]; dup {
			continue
		}
		h := f()
		hashers[v] = h
		writers = append(writers, h)
	}

	buf := hashBufs.Get().(*[]byte)
	defer hashBufs.Put(buf)

	if _, err := io.CopyBuffer(io.MultiWriter(writers...), r, *buf); err != nil {
		return nil, err
	}

	res := make(map[HashType]string, len(hashers))
	for ht, h := range hashers {
		res[ht] = hex.EncodeToString(h.Sum(nil))
	}

	return res, nil
}

// hashFile reads path from src once and stores every enabled checksum on file.
func (cfg *config) hashFile(src scan.Source, file *File) error {
	rc, err := src.Open(file.Path)
	if err != nil {
		return fmt.Errorf("error calculating checksum for file (%s): %w", file.Path, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	sums, err := NewMultiHasher(cfg.hashers...).Hash(rc)
	if err != nil {
		return fmt.Errorf("error calculating checksum for file (%s): %w", file.Path, err)
	}

	if file.Checksums == nil {
		file.Checksums = new(Checksums)
	}
	file.Checksums.Merge(sums)

	return nil
}

// runEnabledHashers checksums every flagged file in the results, at most cfg.threads at a time.
// A file that can not be hashed is logged and skipped, the failures are returned joined.
func (cfg *config) runEnabledHashers(src scan.Source, files Files, log *slog.Logger) error {
	if len(cfg.hashers) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(max(cfg.threads, 1))

	for _, file := range files {
		if file.Verdict != scan.Flagged.String() {
			continue
		}
		g.Go(func() error {
			if err := cfg.hashFile(src, file); err != nil {
				log.Warn("checksum failed", "path", file.Path, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()

	return errors.Join(errs...)
}
