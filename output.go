package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/scan"
)

const (
	formatText     = "text"
	formatJSON     = "json"
	formatCSV      = "csv"
	formatMarkdown = "markdown"
)

func newLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if format == formatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// statusReporter logs one line per clean or flagged file and the final detection count.
type statusReporter struct {
	log     *slog.Logger
	flagged string
	clean   string
}

func newStatusReporter(log *slog.Logger, emoji bool) *statusReporter {
	if emoji {
		return &statusReporter{log: log, flagged: "❌   ", clean: "✔️   "}
	}
	return &statusReporter{log: log, flagged: "FLAGGED ", clean: "CLEAN "}
}

// Status implements [scan.Reporter].
func (r *statusReporter) Status(v scan.Verdict) {
	switch v.Outcome {
	case scan.Flagged:
		attrs := []any{"path", v.Path, "category", v.Kind.Category.String()}
		switch v.Reason {
		case scan.ReasonSignature:
			attrs = append(attrs, "signature", displaySignature(v.Signature))
		case scan.ReasonHighEntropy:
			attrs = append(attrs, "entropy", fmt.Sprintf("%.2f", v.Entropy))
		default:
		}
		r.log.Error(r.flagged+capitalize(v.Reason.String())+": "+v.Name(), attrs...)
	case scan.Clean:
		r.log.Info(r.clean+v.Name(), "path", v.Path)
	default:
	}
}

// Summary implements [scan.Reporter].
func (r *statusReporter) Summary(s scan.Summary) {
	r.log.Info(fmt.Sprintf("Scan completed. Detections found: %d", s.Flagged),
		"root", s.Root, "files", s.Files, "duration", s.Duration)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// marshal renders the results in the configured format.
func (cfg *config) marshal(res *Results) ([]byte, error) {
	switch cfg.outCfg.format {
	case formatCSV:
		return res.MarshalCSV()
	case formatJSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case formatMarkdown:
		return res.MarshalMarkdown()
	default:
		return nil, nil
	}
}

// output writes the results to the output file, or stdout when none is set.
func (cfg *config) output(stdout io.Writer, res *Results) error {
	data, err := cfg.marshal(res)
	if err != nil {
		return fmt.Errorf("error marshalling %s results: %w", cfg.outCfg.format, err)
	}
	if len(data) == 0 {
		return nil
	}

	if cfg.outCfg.outputFile != "" {
		if err = os.WriteFile(cfg.outCfg.outputFile, data, 0o644); err != nil {
			return fmt.Errorf("error writing results: %w", err)
		}
		return nil
	}

	_, err = stdout.Write(data)
	return err
}
