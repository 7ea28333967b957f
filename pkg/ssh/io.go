package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/ssh"
)

// run executes cmd in a fresh session and returns its standard output.
func (s *SSH) run(cmd string) ([]byte, error) {
	if s.Closed() {
		s.verbLn("[exec] parent is closed")
		return nil, io.ErrClosedPipe
	}

	if err := s.sessions.Acquire(context.Background(), 1); err != nil {
		return nil, err
	}
	defer s.sessions.Release(1)

	sesh, err := s.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	defer func() {
		_ = sesh.Close()
	}()

	s.traceLn("[exec] %s", cmd)

	return sesh.Output(cmd)
}

// ListFiles lists every regular file below root on the remote host. Directories find cannot
// read are left out; only transport failures are returned.
func (s *SSH) ListFiles(root string) ([]string, error) {
	out, err := s.run("find " + shellQuote(root) + " -type f -print0")

	var exitErr *ssh.ExitError
	switch {
	case errors.As(err, &exitErr):
		s.verbLn("[io] find exited with status %d, keeping partial listing", exitErr.ExitStatus())
	case err != nil:
		return nil, fmt.Errorf("error listing remote directory (%s): %w", root, err)
	}

	files := make([]string, 0, bytes.Count(out, []byte{0}))
	for _, name := range bytes.Split(out, []byte{0}) {
		if len(name) > 0 {
			files = append(files, string(name))
		}
	}

	return files, nil
}

// ReadFile reads a whole file from the remote host.
func (s *SSH) ReadFile(path string) ([]byte, error) {
	s.traceLn("[io] reading %s", path)
	data, err := s.run("cat -- " + shellQuote(path))
	if err != nil {
		return nil, fmt.Errorf("error reading remote file (%s): %w", path, err)
	}
	return data, nil
}

// Source walks root on the remote host. It satisfies the scanner's file source interface.
type Source struct {
	conn *SSH
	root string
}

// Source returns a [Source] for root on the connected host.
func (s *SSH) Source(root string) *Source {
	return &Source{conn: s, root: root}
}

// Enumerate lists the regular files below the source root.
func (src *Source) Enumerate() ([]string, error) {
	return src.conn.ListFiles(src.root)
}

// Open reads path from the remote host.
func (src *Source) Open(path string) (io.ReadCloser, error) {
	data, err := src.conn.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// shellQuote wraps s in single quotes for a POSIX shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
