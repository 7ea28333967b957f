package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/nao1215/markdown"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/scan"
)

// Results collects the records of a scan. It is a [scan.Reporter], so workers add to it concurrently.
type Results struct {
	Files
	summary   scan.Summary
	all       bool
	csvSchema csvSchema
	mu        sync.Mutex
}

// NewResults creates an empty [Results] with the default [csvSchema].
func NewResults() *Results {
	return &Results{Files: make(Files, 0), csvSchema: defCSVHeader}
}

// WithDelimiter sets the delimiter for the [Results] struct for purposes of CSV marshalling.
func (r *Results) WithDelimiter(delim string) *Results {
	r.csvSchema.delim = delim
	return r
}

// WithAll makes [Results.Status] keep clean files too.
func (r *Results) WithAll(all bool) *Results {
	r.all = all
	return r
}

// Add adds a [File] to the [Results] struct.
func (r *Results) Add(f *File) {
	r.mu.Lock()
	r.Files = append(r.Files, f)
	r.mu.Unlock()
}

// Status implements [scan.Reporter].
func (r *Results) Status(v scan.Verdict) {
	if !v.Flagged() && !r.all {
		return
	}
	r.Add(newFile(v))
}

// Summary implements [scan.Reporter].
func (r *Results) Summary(s scan.Summary) {
	r.mu.Lock()
	r.summary = s
	r.mu.Unlock()
}

// Sort orders the files by path. Workers finish in any order.
func (r *Results) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	slices.SortFunc(r.Files, func(a, b *File) int {
		return strings.Compare(a.Path, b.Path)
	})
}

// MarshalCSV marshals the [Results] struct to CSV format using the [r.csvSchema].
func (r *Results) MarshalCSV() ([]byte, error) {
	buf := new(bytes.Buffer)
	write := func(data []byte) { _, _ = buf.Write(data) }
	write(r.csvSchema.header())
	write([]byte("\n"))
	for _, file := range r.Files {
		entry, err := r.csvSchema.parse(file)
		if err != nil {
			return nil, err
		}
		write(entry)
	}
	return buf.Bytes(), nil
}

type jsonResults struct {
	Summary scan.Summary `json:"summary"`
	Files   Files        `json:"files"`
}

// MarshalJSON implements [json.Marshaler].
func (r *Results) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonResults{Summary: r.summary, Files: r.Files})
}

// MarshalMarkdown renders the summary and a table of files as a markdown report.
func (r *Results) MarshalMarkdown() ([]byte, error) {
	buf := new(bytes.Buffer)
	md := markdown.NewMarkdown(buf)

	md.H1("Media Scan Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root", code(r.summary.Root)},
			{"Files Scanned", strconv.Itoa(r.summary.Files)},
			{"Detections Found", strconv.FormatUint(r.summary.Flagged, 10)},
			{"Duration", r.summary.Duration.String()},
		},
	})
	md.PlainText("")

	md.H2("Files")
	md.PlainText("")
	if len(r.Files) == 0 {
		md.PlainText("No detections.")
	} else {
		rows := make([][]string, 0, len(r.Files))
		for _, f := range r.Files {
			rows = append(rows, []string{
				code(f.Path),
				f.Category,
				f.Verdict,
				f.Reason,
				fmt.Sprintf("%.2f", f.Entropy),
				code(f.Signature),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Path", "Category", "Verdict", "Reason", "Entropy", "Signature"},
			Rows:   rows,
		})
	}

	if err := md.Build(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func code(s string) string {
	if s == "" {
		return ""
	}
	return "`" + strings.ReplaceAll(s, "`", "'") + "`"
}
