package main

import (
	"encoding/hex"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/entropy"
	"github.com/sandflysecurity/sandfly-mediascan/pkg/scan"
	"github.com/sandflysecurity/sandfly-mediascan/pkg/signature"
)

// Files is a slice of [File] pointers.
type Files []*File

// File is the result record of one scanned media file: its type, verdict, entropy and checksums.
type File struct {
	Path      string     `json:"path"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	MIME      string     `json:"mime"`
	Size      int64      `json:"size"`
	Verdict   string     `json:"verdict"`
	Reason    string     `json:"reason,omitempty"`
	Entropy   float64    `json:"entropy"`
	Signature string     `json:"signature,omitempty"`
	Checksums *Checksums `json:"checksums,omitempty"`
}

// newFile builds the record of a clean or flagged [scan.Verdict].
func newFile(v scan.Verdict) *File {
	f := &File{
		Path:      v.Path,
		Name:      v.Name(),
		Category:  v.Kind.Category.String(),
		MIME:      v.Kind.MIME,
		Size:      v.Size,
		Verdict:   v.Outcome.String(),
		Entropy:   entropy.Round(v.Entropy),
		Signature: displaySignature(v.Signature),
	}
	if v.Reason != scan.ReasonNone {
		text, _ := v.Reason.MarshalText()
		f.Reason = string(text)
	}
	return f
}

// displaySignature renders printable signatures as is, anything else in the hex: catalog form.
func displaySignature(sig []byte) string {
	if len(sig) == 0 {
		return ""
	}
	for _, c := range sig {
		if c < 0x20 || c > 0x7e {
			return signature.HexPrefix + hex.EncodeToString(sig)
		}
	}
	return string(sig)
}
