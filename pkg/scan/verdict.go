package scan

import (
	"path/filepath"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/media"
)

// Outcome is the terminal state of a file's pipeline.
type Outcome uint8

const (
	// Skipped files were unreadable or not a recognized media type. They are never reported.
	Skipped Outcome = iota
	Clean
	Flagged
)

func (o Outcome) String() string {
	switch o {
	case Clean:
		return "clean"
	case Flagged:
		return "flagged"
	default:
		return "skipped"
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Reason explains why a file was flagged.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonSignature
	ReasonHighEntropy
)

// String returns the human readable reason tag used in status lines.
func (r Reason) String() string {
	switch r {
	case ReasonSignature:
		return "script/signature found"
	case ReasonHighEntropy:
		return "high entropy"
	default:
		return ""
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (r Reason) MarshalText() ([]byte, error) {
	switch r {
	case ReasonSignature:
		return []byte("signature"), nil
	case ReasonHighEntropy:
		return []byte("high_entropy"), nil
	default:
		return []byte{}, nil
	}
}

// Verdict is the outcome of running the pipeline over one file.
type Verdict struct {
	Path    string     `json:"path"`
	Kind    media.Kind `json:"kind"`
	Outcome Outcome    `json:"outcome"`
	Reason  Reason     `json:"reason,omitempty"`
	Size    int64      `json:"size"`
	// Entropy is only calculated when no signature matched.
	Entropy float64 `json:"entropy"`
	// Signature is the catalog entry that matched, if any.
	Signature []byte `json:"-"`
	// Err is the cause of a Skipped outcome.
	Err error `json:"-"`
}

// Name returns the base name of the file.
func (v Verdict) Name() string {
	return filepath.Base(v.Path)
}

// Flagged reports whether the file was flagged for any reason.
func (v Verdict) Flagged() bool {
	return v.Outcome == Flagged
}
