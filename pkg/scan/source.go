package scan

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// ErrNoPath is returned when an empty path is opened.
var ErrNoPath = errors.New("no path provided")

// ErrNotRegularFile is returned when opening something that is not a regular file.
type ErrNotRegularFile struct {
	Path string
}

func (e *ErrNotRegularFile) Error() string {
	return fmt.Sprintf("file '%s' is not a regular file", e.Path)
}

// NewErrNotRegularFile returns an [ErrNotRegularFile] for path.
func NewErrNotRegularFile(path string) *ErrNotRegularFile {
	return &ErrNotRegularFile{Path: path}
}

// Source is where files to scan come from.
type Source interface {
	// Enumerate lists every regular file under the source's root. Entries that cannot be
	// traversed are left out rather than reported.
	Enumerate() ([]string, error)
	// Open opens one of the enumerated files for reading.
	Open(path string) (io.ReadCloser, error)
}

// FSSource is a [Source] backed by a go-billy filesystem.
type FSSource struct {
	fs   billy.Filesystem
	root string
}

// NewFSSource returns a [Source] that walks root on fs.
func NewFSSource(fs billy.Filesystem, root string) *FSSource {
	return &FSSource{fs: fs, root: root}
}

// nativeFS is a billy.Filesystem that acts like the native filesystem, so enumerated paths are
// the real paths rather than chroot-relative ones.
type nativeFS struct {
	osfs.ChrootOS
}

func (n *nativeFS) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

func (n *nativeFS) Root() string {
	return "/"
}

// NewOSSource returns a [Source] that walks root on the local filesystem.
func NewOSSource(root string) *FSSource {
	return NewFSSource(&nativeFS{}, root)
}

// Root returns the directory the source walks.
func (s *FSSource) Root() string {
	return s.root
}

// Enumerate implements [Source]. Symlinks, devices and other non-regular entries are ignored,
// as are directories that cannot be read. The root itself is followed when it is a symlink, so
// a linked folder is walked like the directory it points to.
func (s *FSSource) Enumerate() ([]string, error) {
	entries := make([]string, 0, 64)
	walk := func(path string, info os.FileInfo, err error) error {
		// If info comes back as nil we don't want to read it or we panic.
		if err != nil || info == nil {
			return nil
		}
		if info.Mode().IsRegular() {
			entries = append(entries, path)
		}
		return nil
	}

	info, err := s.fs.Stat(s.root)
	if err != nil || !info.IsDir() {
		return entries, walk(s.root, info, err)
	}

	children, err := s.fs.ReadDir(s.root)
	if err != nil {
		return entries, nil
	}
	for _, child := range children {
		path := s.fs.Join(s.root, child.Name())
		if err = util.Walk(s.fs, path, walk); err != nil {
			return entries, fmt.Errorf("error walking directory (%s): %w", path, err)
		}
	}
	return entries, nil
}

// Open implements [Source].
func (s *FSSource) Open(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, ErrNoPath
	}
	fStat, err := s.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't stat '%s': %w", path, err)
	}
	if !fStat.Mode().IsRegular() {
		return nil, NewErrNotRegularFile(path)
	}
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open '%s': %w", path, err)
	}
	return f, nil
}
