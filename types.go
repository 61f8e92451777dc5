package xpgo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ryanlewis/xpgo/internal/common"
	"github.com/ryanlewis/xpgo/internal/compositor"
	"github.com/ryanlewis/xpgo/internal/debug"
)

// Color is a packed 32-bit color. The compositor treats it as opaque apart
// from the transparency test, so any channel packing works. Documents decoded
// by this package use RGBA8888 (red in the high byte).
type Color uint32

// RGBA packs four channels as RGBA8888.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// IsTransparent reports whether c is a transparency sentinel: c & 0xFE == 0.
// Only 0 and 1 qualify; opaque black packed as RGBA8888 is 0x000000FF.
func (c Color) IsTransparent() bool {
	return compositor.IsTransparentSentinel(uint32(c))
}

// Cell is one character position: a glyph code point and its two colors.
type Cell struct {
	CodePoint  rune
	Foreground Color
	Background Color
}

// Mode selects the composition rule set.
type Mode int

const (
	// ModeMasked is the default. Rows are flipped (source y maps to
	// height-1-y) and transparency sentinels leave the destination untouched.
	ModeMasked Mode = common.ModeMasked

	// ModeLegacy overwrites every background and every non-space glyph,
	// with identity coordinates and no transparency test.
	ModeLegacy Mode = common.ModeLegacy
)

// String returns the mode name accepted by ParseMode.
func (m Mode) String() string {
	return debug.FormatMode(int(m))
}

// ParseMode converts a mode name to a Mode. "current" is an alias for
// "masked"; the empty string selects the default.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "masked", "current":
		return ModeMasked, nil
	case "legacy":
		return ModeLegacy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Common errors returned by the xpgo package
var (
	// ErrStructuralMismatch is returned when the declared layer count differs
	// from the layers supplied, or when layers disagree on size
	ErrStructuralMismatch = common.ErrStructuralMismatch

	// ErrIndexOutOfRange is returned by Document.Layer for an invalid index
	ErrIndexOutOfRange = common.ErrIndexOutOfRange

	// ErrBadDocumentFormat is returned when a payload cannot be decoded
	ErrBadDocumentFormat = common.ErrBadDocumentFormat

	// ErrUnknownMode is returned for an unrecognised composition mode
	ErrUnknownMode = compositor.ErrUnknownMode

	// ErrBadLayerShape is returned by NewLayer for non-positive or ragged input
	ErrBadLayerShape = errors.New("bad layer shape")

	// ErrNilDocument is returned when Flatten is given a nil document
	ErrNilDocument = errors.New("document cannot be nil")

	// ErrNilSurface is returned when Flatten is given a nil surface
	ErrNilSurface = errors.New("surface cannot be nil")
)

// Option configures flattening and decoding.
type Option func(*options)

type options struct {
	mode  Mode
	debug *debug.Session
}

func defaultOptions() *options {
	return &options{mode: ModeMasked}
}

// WithMode selects the composition rule set. The document's format version
// is never consulted; callers that need legacy output must ask for it.
func WithMode(mode Mode) Option {
	return func(opts *options) {
		opts.mode = mode
	}
}

// WithDebug attaches a debug session that receives decode and flatten events.
// A nil session disables tracing.
func WithDebug(session *debug.Session) Option {
	return func(opts *options) {
		opts.debug = session
	}
}

func (o *options) toInternal(version int) *compositor.Options {
	return &compositor.Options{
		Mode:    int(o.mode),
		Version: version,
		Debug:   o.debug,
	}
}
