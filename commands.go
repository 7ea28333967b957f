package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/entropy"
	"github.com/sandflysecurity/sandfly-mediascan/pkg/media"
	"github.com/sandflysecurity/sandfly-mediascan/pkg/scan"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"sandfly-mediascan Version %s\nCopyright (c) 2019-2024 Sandfly Security - www.sandflysecurity.com\n",
				constVersion)
		},
	}
}

func newSignaturesCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "signatures",
		Short: "List the signatures files are matched against, in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.load(cmd); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, sig := range cfg.signatures.Signatures() {
				if _, err := fmt.Fprintln(w, displaySignature(sig)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newInspectCmd(cfg *config) *cobra.Command {
	var stream bool

	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Run the media checks on single files and print every detail of the verdict",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.load(cmd); err != nil {
				return err
			}

			log := newLogger(cmd.ErrOrStderr(), cfg.logFormat, cfg.verbose)
			pipeline := scan.NewPipeline(scan.NewOSSource("."), cfg.signatures, cfg.entropyThreshold).
				WithLogger(log).
				WithMaxSize(cfg.maxSize)

			w := cmd.OutOrStdout()
			for _, path := range args {
				var v scan.Verdict
				if stream {
					v = cfg.inspectStream(path)
				} else {
					v = pipeline.Inspect(path)
				}
				if err := printVerdict(w, v); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false,
		"read files in chunks instead of loading them into memory, for media larger than RAM")

	return cmd
}

// inspectStream gives the same verdict as [scan.Pipeline.Inspect] without holding the file in
// memory. The file is read twice when no signature matches.
func (cfg *config) inspectStream(path string) scan.Verdict {
	v := scan.Verdict{Path: path}
	skip := func(err error) scan.Verdict {
		v.Outcome, v.Err = scan.Skipped, err
		return v
	}

	f, err := os.Open(path)
	if err != nil {
		return skip(err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return skip(err)
	}
	if !info.Mode().IsRegular() {
		return skip(scan.NewErrNotRegularFile(path))
	}
	if cfg.maxSize > 0 && info.Size() > cfg.maxSize {
		return skip(scan.NewErrFileTooLarge(path, cfg.maxSize))
	}
	v.Size = info.Size()

	head, err := media.ReadHead(f)
	if err != nil {
		return skip(fmt.Errorf("read failure during type check: %w", err))
	}
	if v.Kind = media.Detect(head); !v.Kind.Category.Recognized() {
		return skip(scan.ErrUnrecognized)
	}

	sig, found, err := cfg.signatures.MatchReader(io.MultiReader(bytes.NewReader(head), f))
	if err != nil {
		return skip(fmt.Errorf("couldn't read '%s': %w", path, err))
	}
	if found {
		v.Outcome, v.Reason, v.Signature = scan.Flagged, scan.ReasonSignature, sig
		return v
	}

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return skip(err)
	}
	if v.Entropy, _, err = entropy.FromReader(f); err != nil {
		return skip(fmt.Errorf("couldn't read '%s': %w", path, err))
	}

	v.Outcome = scan.Clean
	if v.Entropy > cfg.entropyThreshold {
		v.Outcome, v.Reason = scan.Flagged, scan.ReasonHighEntropy
	}

	return v
}

func printVerdict(w io.Writer, v scan.Verdict) error {
	buf := new(bytes.Buffer)
	_, _ = fmt.Fprintf(buf, "filename: %s\npath: %s\n", v.Name(), v.Path)
	if v.Kind.Category.Recognized() {
		_, _ = fmt.Fprintf(buf, "category: %s\nmime: %s\n", v.Kind.Category, v.Kind.MIME)
	}
	_, _ = fmt.Fprintf(buf, "verdict: %s\n", v.Outcome)
	switch v.Outcome {
	case scan.Flagged:
		_, _ = fmt.Fprintf(buf, "reason: %s\n", v.Reason)
		if v.Reason == scan.ReasonSignature {
			_, _ = fmt.Fprintf(buf, "signature: %s\n", displaySignature(v.Signature))
		} else {
			_, _ = fmt.Fprintf(buf, "entropy: %.2f\n", v.Entropy)
		}
	case scan.Clean:
		_, _ = fmt.Fprintf(buf, "entropy: %.2f\n", v.Entropy)
	default:
		_, _ = fmt.Fprintf(buf, "error: %v\n", v.Err)
	}
	_, _ = buf.WriteString("\n")

	_, err := w.Write(buf.Bytes())
	return err
}
