// Sandfly Security Media Malware Scanning Utility
package main

/*
This utility will help find media files that carry something other than media. Images, audio, video, documents,
ebooks and fonts are identified by their magic bytes and then checked for embedded script fragments such as
"<script" or "<?php". Files without a known signature are flagged when their Shannon entropy is above a threshold,
which points at encrypted or compressed payloads hidden behind a valid media header.

Only files that are actually media are inspected. Everything else is skipped, regardless of its file name.

Sandfly Security produces an agentless endpoint detection and incident response platform (EDR) for Linux. You can
find out more about how it works at: https://www.sandflysecurity.com

MIT License

Copyright (c) 2019-2024 Sandfly Security Ltd.
https://www.sandflysecurity.com

Permission is hereby granted, free of charge, to any person obtaining a copy of this software and associated
documentation files (the "Software"), to deal in the Software without restriction, including without limitation the
rights to use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of the Software, and to
permit persons to whom the Software is furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all copies or substantial portions of
the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO
THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

Version: 1.0.0
Author: @SandflySecurity
*/

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/l0nax/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/scan"
)

const (
	// constVersion Version
	constVersion = "1.0.0"
	// constDelimeterDefault default delimiter for CSV output.
	constDelimeterDefault = ","
	// constDefaultThreshold default entropy threshold. Nothing reaches it in practice, so by default
	// only signature hits are flagged.
	constDefaultThreshold = 8.0
	// constDefaultThreads default number of scan workers.
	constDefaultThreads = 2
	// constConfigRelPath is where the configuration file is looked up below the XDG config dirs.
	constConfigRelPath = "sandfly-mediascan/config.yaml"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitDetections = 3
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

func newRootCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandfly-mediascan",
		Short: "Scan media files for embedded scripts and high entropy payloads",
		Long: `sandfly-mediascan walks a directory, identifies media files by their content and flags the
ones that contain a known script signature or whose entropy is above the threshold.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.runScan(cmd)
		},
	}

	cfg.bindPersistentFlags(cmd)
	cfg.bindScanFlags(cmd)

	cmd.AddCommand(
		newInspectCmd(cfg),
		newSignaturesCmd(cfg),
		newVersionCmd(),
	)

	return cmd
}

func (cfg *config) runScan(cmd *cobra.Command) error {
	if err := cfg.load(cmd); err != nil {
		return err
	}
	if err := cfg.validateScan(); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	log := newLogger(stderr, cfg.logFormat, cfg.verbose)

	if cfg.debug {
		_, _ = fmt.Fprint(stderr, spew.Sdump(cfg.scanConfig(), cfg.outCfg, cfg.hashers, cfg.signatures.Len()))
	}

	src, closeSrc, err := cfg.source(log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSrc(); cerr != nil {
			log.Warn("error closing source", "error", cerr)
		}
	}()

	reporters := scan.Reporters{
		newStatusReporter(log, cfg.logFormat == formatText && isTerminal(stderr)),
	}
	if cfg.outCfg.format != formatText {
		cfg.results = NewResults().WithDelimiter(cfg.outCfg.delimChar).WithAll(cfg.outCfg.all)
		reporters = append(reporters, cfg.results)
	}

	summary, err := scan.NewScanner(cfg.scanConfig(), cfg.signatures).
		WithSource(src).
		WithReporter(reporters).
		WithLogger(log).
		WithMaxSize(cfg.maxSize).
		Run()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if cfg.results != nil {
		cfg.results.Sort()
		if err = cfg.runEnabledHashers(src, cfg.results.Files, log); err != nil {
			log.Warn("some checksums could not be calculated", "error", err)
		}
		if err = cfg.output(cmd.OutOrStdout(), cfg.results); err != nil {
			return err
		}
	}

	if cfg.failOnDetect && summary.Flagged > 0 {
		return &exitError{code: exitDetections, msg: fmt.Sprintf("%d detections found", summary.Flagged)}
	}

	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(new(config))
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
	return exitFailure
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
