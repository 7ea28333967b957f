package scan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/entropy"
	"github.com/sandflysecurity/sandfly-mediascan/pkg/media"
)

// ErrUnrecognized is the skip cause for files that are not a recognized media type.
var ErrUnrecognized = errors.New("not a recognized media type")

// ErrFileTooLarge is the skip cause for files over the configured size limit.
type ErrFileTooLarge struct {
	Path string
	Max  int64
}

func (e *ErrFileTooLarge) Error() string {
	return fmt.Sprintf("file '%s' is larger than the %d bytes allowed", e.Path, e.Max)
}

// NewErrFileTooLarge returns an [ErrFileTooLarge] for path.
func NewErrFileTooLarge(path string, max int64) *ErrFileTooLarge {
	return &ErrFileTooLarge{Path: path, Max: max}
}

// Matcher finds signatures in a buffer. [*signature.Set] is the usual implementation.
type Matcher interface {
	Match(data []byte) (sig []byte, found bool)
}

// Pipeline classifies a single file, then looks for signatures and finally measures its entropy.
type Pipeline struct {
	source    Source
	matcher   Matcher
	threshold float64
	maxSize   int64
	detect    func(head []byte) media.Kind
	entropy   func(data []byte) float64
	reporter  Reporter
	log       *slog.Logger
}

// NewPipeline creates a [Pipeline] reading files from src. Files whose entropy is above threshold
// are flagged.
func NewPipeline(src Source, matcher Matcher, threshold float64) *Pipeline {
	return &Pipeline{
		source:    src,
		matcher:   matcher,
		threshold: threshold,
		detect:    media.Detect,
		entropy:   entropy.Shannon,
		reporter:  Discard,
		log:       slog.Default(),
	}
}

// WithReporter sets where status records go.
func (p *Pipeline) WithReporter(r Reporter) *Pipeline {
	if r != nil {
		p.reporter = r
	}
	return p
}

// WithLogger sets the logger used for skipped files.
func (p *Pipeline) WithLogger(l *slog.Logger) *Pipeline {
	if l != nil {
		p.log = l
	}
	return p
}

// WithMaxSize skips files larger than n bytes. Zero means no limit.
func (p *Pipeline) WithMaxSize(n int64) *Pipeline {
	p.maxSize = n
	return p
}

// WithEntropyFunc replaces the entropy calculation.
func (p *Pipeline) WithEntropyFunc(f func([]byte) float64) *Pipeline {
	if f != nil {
		p.entropy = f
	}
	return p
}

// WithDetector replaces the type classifier.
func (p *Pipeline) WithDetector(f func([]byte) media.Kind) *Pipeline {
	if f != nil {
		p.detect = f
	}
	return p
}

// Inspect runs the pipeline over path and returns its verdict. Every verdict except Skipped is
// passed to the reporter exactly once. I/O failures are never returned, they make the file Skipped.
func (p *Pipeline) Inspect(path string) Verdict {
	v := Verdict{Path: path}

	f, err := p.source.Open(path)
	if err != nil {
		return p.skip(v, err)
	}
	defer func() {
		_ = f.Close()
	}()

	head, err := media.ReadHead(f)
	if err != nil {
		return p.skip(v, fmt.Errorf("read failure during type check: %w", err))
	}

	if v.Kind = p.detect(head); !v.Kind.Category.Recognized() {
		return p.skip(v, ErrUnrecognized)
	}

	data, err := p.readAll(path, head, f)
	if err != nil {
		return p.skip(v, err)
	}
	v.Size = int64(len(data))

	if sig, found := p.matcher.Match(data); found {
		v.Outcome, v.Reason, v.Signature = Flagged, ReasonSignature, sig
		p.reporter.Status(v)
		return v
	}

	v.Entropy = p.entropy(data)
	switch {
	case v.Entropy > p.threshold:
		v.Outcome, v.Reason = Flagged, ReasonHighEntropy
	default:
		v.Outcome = Clean
	}

	p.reporter.Status(v)
	return v
}

// readAll returns head followed by the rest of r.
func (p *Pipeline) readAll(path string, head []byte, r io.Reader) ([]byte, error) {
	if p.maxSize > 0 {
		r = io.LimitReader(r, p.maxSize-int64(len(head))+1)
	}

	buf := bytes.NewBuffer(head)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("couldn't read '%s': %w", path, err)
	}

	if p.maxSize > 0 && int64(buf.Len()) > p.maxSize {
		return nil, NewErrFileTooLarge(path, p.maxSize)
	}

	return buf.Bytes(), nil
}

func (p *Pipeline) skip(v Verdict, cause error) Verdict {
	v.Outcome, v.Err = Skipped, cause
	p.log.Debug("skipped", "path", v.Path, "reason", cause)
	return v
}
