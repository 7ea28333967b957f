// Package scan runs the media inspection pipeline over a directory tree with a bounded worker pool.
package scan

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/entropy"
)

var (
	// ErrInvalidWorkers is returned when the worker count is not a positive integer.
	ErrInvalidWorkers = errors.New("worker count must be at least 1")
	// ErrInvalidThreshold is returned when the entropy threshold is outside (0, 8].
	ErrInvalidThreshold = errors.New("entropy threshold must be greater than 0.0 and at most 8.0")
	// ErrNoRoot is returned when no root path was configured.
	ErrNoRoot = errors.New("no root path provided")
	// ErrWorkerPool wraps failures to set up or feed the worker pool.
	ErrWorkerPool = errors.New("worker pool failure")
)

// Config is the immutable configuration of one scan.
type Config struct {
	Root             string
	EntropyThreshold float64
	Workers          int
}

// Validate checks that c can be used for a scan.
func (c Config) Validate() error {
	var errs []error
	if c.Root == "" {
		errs = append(errs, ErrNoRoot)
	}
	if !(c.EntropyThreshold > 0 && c.EntropyThreshold <= entropy.Max) {
		errs = append(errs, fmt.Errorf("%w: got %.2f", ErrInvalidThreshold, c.EntropyThreshold))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers))
	}
	return errors.Join(errs...)
}

// Scanner enumerates a [Source] and runs a [Pipeline] on every file it finds.
type Scanner struct {
	cfg      Config
	matcher  Matcher
	source   Source
	reporter Reporter
	log      *slog.Logger
	maxSize  int64
	entropy  func([]byte) float64
}

// NewScanner creates a [Scanner] for cfg that looks for the signatures in matcher. Unless another
// source is set with [Scanner.WithSource], cfg.Root is walked on the local filesystem.
func NewScanner(cfg Config, matcher Matcher) *Scanner {
	return &Scanner{
		cfg:      cfg,
		matcher:  matcher,
		source:   NewOSSource(cfg.Root),
		reporter: Discard,
		log:      slog.Default(),
	}
}

// WithSource sets where files are enumerated and read from.
func (s *Scanner) WithSource(src Source) *Scanner {
	if src != nil {
		s.source = src
	}
	return s
}

// WithReporter sets where status records and the summary go.
func (s *Scanner) WithReporter(r Reporter) *Scanner {
	if r != nil {
		s.reporter = r
	}
	return s
}

// WithLogger sets the logger for progress and diagnostics.
func (s *Scanner) WithLogger(l *slog.Logger) *Scanner {
	if l != nil {
		s.log = l
	}
	return s
}

// WithMaxSize skips files larger than n bytes. Zero means no limit.
func (s *Scanner) WithMaxSize(n int64) *Scanner {
	s.maxSize = n
	return s
}

// WithEntropyFunc replaces the entropy calculation used by every pipeline.
func (s *Scanner) WithEntropyFunc(f func([]byte) float64) *Scanner {
	s.entropy = f
	return s
}

// Config returns the scan configuration.
func (s *Scanner) Config() Config {
	return s.cfg
}

// Pipeline returns a [Pipeline] wired like the ones the workers run.
func (s *Scanner) Pipeline() *Pipeline {
	return NewPipeline(s.source, s.matcher, s.cfg.EntropyThreshold).
		WithReporter(s.reporter).
		WithLogger(s.log).
		WithMaxSize(s.maxSize).
		WithEntropyFunc(s.entropy)
}

// Enumerate lists the files the scan will inspect.
func (s *Scanner) Enumerate() ([]string, error) {
	return s.source.Enumerate()
}

// Run validates the configuration, enumerates the source and inspects every file, blocking until
// all of them reached a verdict. Only setup failures are returned; per file problems just skip
// that file.
func (s *Scanner) Run() (Summary, error) {
	if err := s.cfg.Validate(); err != nil {
		return Summary{Root: s.cfg.Root}, err
	}

	s.log.Info("scanning directory",
		"root", s.cfg.Root,
		"threshold", fmt.Sprintf("%.2f", s.cfg.EntropyThreshold),
		"workers", s.cfg.Workers,
	)

	entries, err := s.Enumerate()
	if err != nil {
		return Summary{Root: s.cfg.Root}, err
	}

	s.log.Debug("enumeration complete", "files", len(entries))

	return s.ScanEntries(entries)
}

// ScanEntries inspects a pre-enumerated list of files with a pool of cfg.Workers workers.
func (s *Scanner) ScanEntries(entries []string) (Summary, error) {
	start := time.Now()
	summary := Summary{Root: s.cfg.Root, Files: len(entries)}

	if s.cfg.Workers < 1 {
		return summary, fmt.Errorf("%w: got %d", ErrInvalidWorkers, s.cfg.Workers)
	}

	workers, err := ants.NewPool(s.cfg.Workers, ants.WithPanicHandler(func(p interface{}) {
		s.log.Error("worker panic", "panic", p)
	}))
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrWorkerPool, err)
	}
	defer workers.Release()

	detections := new(Counter)
	pipeline := s.Pipeline()
	wg := new(sync.WaitGroup)

	var submitErr error
	for _, path := range entries {
		wg.Add(1)
		if err = workers.Submit(func() {
			defer wg.Done()
			inspect(pipeline, path, detections)
		}); err != nil {
			wg.Done()
			submitErr = fmt.Errorf("%w: %w", ErrWorkerPool, err)
			break
		}
	}

	wg.Wait()

	summary.Flagged = detections.Load()
	summary.Duration = time.Since(start)

	if submitErr != nil {
		return summary, submitErr
	}

	s.reporter.Summary(summary)

	return summary, nil
}

func inspect(p *Pipeline, path string, detections Incrementer) {
	if v := p.Inspect(path); v.Flagged() {
		detections.Inc()
	}
}
