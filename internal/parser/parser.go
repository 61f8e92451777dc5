// Package parser implements decoding of the uncompressed XP layer payload.
//
// Payload layout (all integers little-endian):
//
//	int32 version
//	int32 layer count
//	per layer:
//	    int32 width
//	    int32 height
//	    width*height cells, column-major (x outer, y inner):
//	        uint32 code point
//	        uint8  fg red, green, blue
//	        uint8  bg red, green, blue
package parser

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ryanlewis/xpgo/internal/common"
	"github.com/ryanlewis/xpgo/internal/debug"
)

const (
	// cellRecordSize is the encoded size of one cell
	cellRecordSize = 10
	// headerSize is version + layer count
	headerSize = 8
	// layerHeaderSize is width + height
	layerHeaderSize = 8
	// cellChunk caps the cell capacity reserved before any record is read
	cellChunk = 4096
)

// Editor transparency key: backgrounds painted in pure magenta are "no paint".
const (
	keyRed   = 0xFF
	keyGreen = 0x00
	keyBlue  = 0xFF
)

// ErrTruncated is returned when the payload ends inside a record.
var ErrTruncated = errors.New("truncated payload")

// Cell is one decoded cell with colors packed as RGBA8888.
type Cell struct {
	CodePoint  rune
	Foreground uint32
	Background uint32
}

// Layer is one decoded layer. Cells are stored column-major, the same order
// as the payload: index x*Height + y.
type Layer struct {
	Width  int
	Height int
	Cells  []Cell
}

// At returns the cell at (x, y).
func (l *Layer) At(x, y int) Cell {
	return l.Cells[x*l.Height+y]
}

// Document is the decoded payload.
type Document struct {
	// Version is the format version tag exactly as stored
	Version int

	// LayerCount is the layer count declared in the header
	LayerCount int

	// Layers holds the decoded layers, bottommost first
	Layers []*Layer
}

// Parse decodes an uncompressed XP payload.
func Parse(r io.Reader) (*Document, error) {
	return ParseWithDebug(r, nil)
}

// ParseWithDebug decodes an uncompressed XP payload, emitting header events
// to the session when it is non-nil. A failed parse ends with a parse/Error
// event.
func ParseWithDebug(r io.Reader, session *debug.Session) (*Document, error) {
	br := acquireReader(r)
	defer releaseReader(br)

	doc, err := parseDocument(br, session)
	if err != nil {
		session.Emit("parse", "Error", debug.ErrorData{
			Type:    errorType(err),
			Message: err.Error(),
		})
		return nil, err
	}
	return doc, nil
}

// errorType names the failure class recorded in debug error events.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrTruncated):
		return "truncated"
	case errors.Is(err, common.ErrBadDocumentFormat):
		return "bad_format"
	default:
		return "read"
	}
}

func parseDocument(br io.Reader, session *debug.Session) (*Document, error) {

	var header [headerSize]byte
	if err := readFull(br, header[:], "document header"); err != nil {
		return nil, err
	}

	version := int(int32(binary.LittleEndian.Uint32(header[0:4])))
	count := int(int32(binary.LittleEndian.Uint32(header[4:8])))
	if count < 0 || count > common.MaxLayers {
		return nil, fmt.Errorf("%w: layer count %d outside [0, %d]", common.ErrBadDocumentFormat, count, common.MaxLayers)
	}

	session.Emit("parse", "Header", debug.DocumentHeaderData{
		Version:    version,
		LayerCount: count,
	})

	doc := &Document{
		Version:    version,
		LayerCount: count,
		Layers:     make([]*Layer, 0, count),
	}

	record := acquireRecord()
	defer releaseRecord(record)

	for i := 0; i < count; i++ {
		layer, err := parseLayer(br, record, i)
		if err != nil {
			return nil, err
		}
		session.Emit("parse", "Layer", debug.LayerHeaderData{
			Index:  i,
			Width:  layer.Width,
			Height: layer.Height,
		})
		doc.Layers = append(doc.Layers, layer)
	}

	return doc, nil
}

// parseLayer reads one layer header and its cells.
func parseLayer(r io.Reader, record []byte, index int) (*Layer, error) {
	var header [layerHeaderSize]byte
	if err := readFull(r, header[:], fmt.Sprintf("layer %d header", index)); err != nil {
		return nil, err
	}

	width := int(int32(binary.LittleEndian.Uint32(header[0:4])))
	height := int(int32(binary.LittleEndian.Uint32(header[4:8])))
	if width <= 0 || height <= 0 || width > common.MaxDimension || height > common.MaxDimension {
		return nil, fmt.Errorf("%w: layer %d has invalid size %dx%d", common.ErrBadDocumentFormat, index, width, height)
	}

	// The header is untrusted: capacity grows with the records actually read.
	total := width * height
	layer := &Layer{
		Width:  width,
		Height: height,
		Cells:  make([]Cell, 0, min(total, cellChunk)),
	}

	for i := 0; i < total; i++ {
		if _, err := io.ReadFull(r, record); err != nil {
			return nil, readError(err, fmt.Sprintf("layer %d cell %d", index, i))
		}
		layer.Cells = append(layer.Cells, decodeCell(record))
	}

	return layer, nil
}

// decodeCell unpacks a cell record.
func decodeCell(b []byte) Cell {
	bg := PackRGB(b[7], b[8], b[9])
	if b[7] == keyRed && b[8] == keyGreen && b[9] == keyBlue {
		bg = 0
	}
	return Cell{
		CodePoint:  rune(binary.LittleEndian.Uint32(b[0:4])),
		Foreground: PackRGB(b[4], b[5], b[6]),
		Background: bg,
	}
}

// PackRGB packs an opaque color as RGBA8888.
func PackRGB(r, g, b uint8) uint32 {
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | 0xFF
}

// readFull reads exactly len(buf) bytes, mapping short reads to ErrTruncated.
func readFull(r io.Reader, buf []byte, what string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		return readError(err, what)
	}
	return nil
}

// readError maps short reads to ErrTruncated.
func readError(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w reading %s", common.ErrBadDocumentFormat, ErrTruncated, what)
	}
	return fmt.Errorf("error reading %s: %w", what, err)
}
