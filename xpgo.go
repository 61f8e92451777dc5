// Package xpgo composites layered ASCII-art documents in the XP format onto
// a single character grid.
//
// A Document is an ordered stack of equally sized layers; every cell holds a
// glyph code point and independent foreground and background colors. Flatten
// merges the stack, bottom layer first, into any Surface. Two rule sets are
// available: ModeMasked (the default) flips the vertical axis and treats
// colors whose value & 0xFE is zero as "no paint", and ModeLegacy overwrites
// unconditionally with identity coordinates.
package xpgo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/ryanlewis/xpgo/internal/compositor"
	"github.com/ryanlewis/xpgo/internal/parser"
)

// ParseDocument decodes an uncompressed XP payload from r.
// Only WithDebug is meaningful among the options.
//
// The payload must already be decompressed; files saved by the editor are
// gzip streams and should be wrapped with gzip.NewReader first.
//
// Example:
//
//	file, err := os.Open("title.xp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	zr, err := gzip.NewReader(file)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, err := xpgo.ParseDocument(zr)
func ParseDocument(r io.Reader, opts ...Option) (*Document, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	pd, err := parser.ParseWithDebug(r, options.debug)
	if err != nil {
		return nil, err
	}
	return convertParserDocument(pd)
}

// ParseDocumentBytes decodes an uncompressed XP payload held in memory.
func ParseDocumentBytes(data []byte, opts ...Option) (*Document, error) {
	return ParseDocument(bytes.NewReader(data), opts...)
}

// LoadDocument reads and decodes an uncompressed XP payload from a file.
func LoadDocument(filePath string) (*Document, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()

	doc, err := ParseDocument(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", filePath, err)
	}
	return doc, nil
}

// cleanFSPath validates and cleans a path for use with fs.FS.
// It ensures the path is valid according to fs.ValidPath rules and
// prevents directory traversal attacks.
func cleanFSPath(p string) (string, error) {
	if p == "" {
		return "", errors.New("path cannot be empty")
	}
	// fs.FS disallows leading slash and uses '/' only
	if strings.HasPrefix(p, "/") {
		return "", errors.New("absolute paths not allowed")
	}
	if strings.ContainsRune(p, '\\') {
		return "", errors.New("backslashes not allowed in fs paths")
	}
	if !fs.ValidPath(p) {
		// rejects ".", ".." segments, empty elements, etc.
		return "", fmt.Errorf("invalid fs path: %s", p)
	}
	clean := path.Clean(p)
	if clean == "." || strings.HasPrefix(clean, "../") {
		return "", errors.New("path traversal not allowed")
	}
	return clean, nil
}

// LoadDocumentFS loads an uncompressed XP payload from a filesystem.
//
// Example with embed.FS:
//
//	//go:embed art/*.xpp
//	var art embed.FS
//
//	doc, err := xpgo.LoadDocumentFS(art, "art/title.xpp")
func LoadDocumentFS(fsys fs.FS, docPath string) (*Document, error) {
	if fsys == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}

	clean, err := cleanFSPath(docPath)
	if err != nil {
		return nil, err
	}

	file, err := fsys.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()

	doc, err := ParseDocument(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", clean, err)
	}
	return doc, nil
}

// EncodeDocument writes doc as an uncompressed XP payload. Alpha bytes are
// dropped and transparent backgrounds are written as the editor's magenta
// key, so ParseDocument returns them as Color(0).
func EncodeDocument(w io.Writer, doc *Document) error {
	if doc == nil {
		return ErrNilDocument
	}
	return parser.Encode(w, convertToParserDocument(doc))
}

// convertParserDocument builds a validated Document from decoded layers.
func convertParserDocument(pd *parser.Document) (*Document, error) {
	if pd == nil {
		return nil, ErrNilDocument
	}

	layers := make([]*Layer, 0, len(pd.Layers))
	for _, pl := range pd.Layers {
		cells := make([]Cell, len(pl.Cells))
		for i, c := range pl.Cells {
			cells[i] = Cell{
				CodePoint:  c.CodePoint,
				Foreground: Color(c.Foreground),
				Background: Color(c.Background),
			}
		}
		layers = append(layers, &Layer{width: pl.Width, height: pl.Height, cells: cells})
	}

	return NewDocument(pd.Version, pd.LayerCount, layers)
}

// convertToParserDocument converts a Document for encoding.
func convertToParserDocument(d *Document) *parser.Document {
	pd := &parser.Document{
		Version:    d.version,
		LayerCount: len(d.layers),
		Layers:     make([]*parser.Layer, 0, len(d.layers)),
	}
	for _, l := range d.layers {
		pl := &parser.Layer{Width: l.width, Height: l.height, Cells: make([]parser.Cell, len(l.cells))}
		for i, c := range l.cells {
			pl.Cells[i] = parser.Cell{
				CodePoint:  c.CodePoint,
				Foreground: uint32(c.Foreground),
				Background: uint32(c.Background),
			}
		}
		pd.Layers = append(pd.Layers, pl)
	}
	return pd
}

// Flatten composites every layer of doc onto dst, bottom layer first.
//
// With no layers Flatten returns immediately without touching dst.
// Otherwise it calls dst.EnsureBackgroundCapacity with the layer size and
// then writes glyphs and backgrounds according to the selected Mode. dst must
// cover at least doc.Size(); writes are plain assignments, so higher layers
// replace whatever lower layers put in the same destination cell.
//
// Flatten only fails for nil arguments or an unknown Mode. A typed nil
// surface such as (*Grid)(nil) is not a nil argument: Flatten calls its
// methods, and a nil *Grid ignores every write.
func Flatten(doc *Document, dst Surface, opts ...Option) error {
	if doc == nil {
		return ErrNilDocument
	}
	if dst == nil {
		return ErrNilSurface
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	_, err := compositor.Flatten(docSource{doc: doc}, surfaceTarget{s: dst}, options.toInternal(doc.version))
	return err
}

// FlattenGrid composites doc onto a fresh Grid of the document's size.
func FlattenGrid(doc *Document, opts ...Option) (*Grid, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	g := NewGrid(doc.Size())
	if err := Flatten(doc, g, opts...); err != nil {
		return nil, err
	}
	return g, nil
}
