// Package common provides shared constants and types for internal packages.
// These constants must match the public API in the xpgo package.
package common

import "errors"

// Cell constants
const (
	// SpaceCodePoint is the glyph that never paints ink
	SpaceCodePoint = 32
	// SentinelMask selects the bits that must be non-zero for a color to paint
	SentinelMask = 0xFE
)

// Composition modes (must match public API in xpgo package)
const (
	// ModeMasked flips rows and honors transparency sentinels
	ModeMasked = 0
	// ModeLegacy overwrites unconditionally with identity coordinates
	ModeLegacy = 1
)

// Payload limits used by the decoder
const (
	// MaxLayers bounds the declared layer count
	MaxLayers = 64
	// MaxDimension bounds layer width and height
	MaxDimension = 4096
)

// Common errors (must match public API in xpgo package)
var (
	// ErrStructuralMismatch is returned when a document's layers disagree with its header
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrIndexOutOfRange is returned for a layer index outside the document
	ErrIndexOutOfRange = errors.New("layer index out of range")
	// ErrBadDocumentFormat is returned when the payload cannot be decoded
	ErrBadDocumentFormat = errors.New("bad document format")
)
