// Package media sniffs the leading bytes of a file to decide which media family it belongs to.
package media

import (
	"bytes"
	"errors"
	"io"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
)

// HeadSize is how many leading bytes are inspected to classify a file.
const HeadSize = 8192

// Category is a coarse media type family.
type Category uint8

const (
	// Other covers anything that is not a recognized media container, including empty files.
	Other Category = iota
	Audio
	Video
	Document
	Ebook
	Font
	Image
)

var categoryNames = map[Category]string{
	Other:    "other",
	Audio:    "audio",
	Video:    "video",
	Document: "document",
	Ebook:    "ebook",
	Font:     "font",
	Image:    "image",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// Recognized reports whether files of this category should be inspected further.
func (c Category) Recognized() bool {
	return c != Other && c <= Image
}

// MarshalText implements [encoding.TextMarshaler].
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

var (
	// TypeMobi is the Mobipocket e-book format, which filetype does not know about out of the box.
	TypeMobi = filetype.NewType("mobi", "application/x-mobipocket-ebook")
	// TypeEpub replaces filetype's own EPUB matcher, which expects the mimetype content right
	// after the ZIP signature instead of behind the local file header.
	TypeEpub = filetype.NewType("epub", "application/epub+zip")
)

func init() {
	filetype.AddMatcher(TypeMobi, isMobi)
	filetype.AddMatcher(TypeEpub, isEpub)
}

var (
	zipLocalHeader = []byte("PK\x03\x04")
	epubMimeName   = []byte("mimetype")
	epubMimeType   = []byte("application/epub+zip")
)

// An EPUB is a ZIP archive whose first entry is an uncompressed file named "mimetype". The
// local file header is 30 bytes, so the name sits at offset 30 and its content at 38.
func isEpub(head []byte) bool {
	const nameAt, dataAt = 30, 38
	return len(head) >= dataAt+len(epubMimeType) &&
		bytes.HasPrefix(head, zipLocalHeader) &&
		bytes.Equal(head[nameAt:dataAt], epubMimeName) &&
		bytes.Equal(head[dataAt:dataAt+len(epubMimeType)], epubMimeType)
}

// Mobipocket files are Palm databases with a BOOKMOBI type/creator at offset 60.
func isMobi(head []byte) bool {
	return len(head) >= 68 && bytes.Equal(head[60:68], []byte("BOOKMOBI"))
}

type group struct {
	category Category
	types    []types.Type
	maps     []matchers.Map
}

// groups are checked in order; e-books come first because EPUB, like DOCX, is a ZIP container.
var groups = []group{
	{category: Ebook, types: []types.Type{TypeEpub, TypeMobi}},
	{category: Document, types: []types.Type{matchers.TypePdf, matchers.TypeRtf}, maps: []matchers.Map{matchers.Document}},
	{category: Image, maps: []matchers.Map{matchers.Image}},
	{category: Audio, maps: []matchers.Map{matchers.Audio}},
	{category: Video, maps: []matchers.Map{matchers.Video}},
	{category: Font, maps: []matchers.Map{matchers.Font}},
}

// Kind is the result of sniffing a file head.
type Kind struct {
	Category  Category `json:"category"`
	Extension string   `json:"extension,omitempty"`
	MIME      string   `json:"mime,omitempty"`
}

// Detect classifies head, the first bytes of a file. Only the first [HeadSize] bytes are looked at.
// Heads that are empty, too short or of an unknown format yield [Other].
func Detect(head []byte) Kind {
	if len(head) == 0 {
		return Kind{Category: Other}
	}
	if len(head) > HeadSize {
		head = head[:HeadSize]
	}

	for _, g := range groups {
		for _, t := range g.types {
			if filetype.IsType(head, t) {
				return Kind{Category: g.category, Extension: t.Extension, MIME: t.MIME.Value}
			}
		}
		for _, m := range g.maps {
			if t := filetype.MatchMap(head, m); t != types.Unknown {
				return Kind{Category: g.category, Extension: t.Extension, MIME: t.MIME.Value}
			}
		}
	}

	return Kind{Category: Other}
}

// Classify returns only the category of head. See [Detect].
func Classify(head []byte) Category {
	return Detect(head).Category
}

// ReadHead reads up to [HeadSize] bytes from r. Files shorter than that are not an error.
func ReadHead(r io.Reader) ([]byte, error) {
	head := make([]byte, HeadSize)
	n, err := io.ReadFull(r, head)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	return head[:n], err
}
