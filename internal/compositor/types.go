package compositor

import (
	"errors"

	"github.com/ryanlewis/xpgo/internal/common"
	"github.com/ryanlewis/xpgo/internal/debug"
)

// Error definitions for the compositor package
var (
	// ErrNilSource is returned when a nil source is provided to Flatten
	ErrNilSource = errors.New("source cannot be nil")
	// ErrNilTarget is returned when a nil target is provided to Flatten
	ErrNilTarget = errors.New("target cannot be nil")
	// ErrUnknownMode is returned for a mode value with no rule set
	ErrUnknownMode = errors.New("unknown composition mode")
)

// Composition modes
const (
	// Masked flips rows and skips transparency sentinels
	Masked = common.ModeMasked
	// Legacy writes every cell with identity coordinates
	Legacy = common.ModeLegacy
)

// Source is a read-only layer stack. All layers share Bounds.
type Source interface {
	LayerCount() int
	Bounds() (width, height int)
	CellAt(layer, x, y int) (codePoint rune, fg, bg uint32)
}

// Target is the destination surface written by Flatten.
type Target interface {
	SetGlyph(x, y int, codePoint rune, fg uint32)
	SetBackground(x, y int, bg uint32)
	EnsureBackgroundCapacity(width, height int)
}

// Options contains flatten options passed from the main package
type Options struct {
	// Mode selects the rule set (Masked or Legacy)
	Mode int
	// Version is reported in debug events only; it never selects a mode
	Version int
	// Debug receives trace events when non-nil
	Debug *debug.Session
}

// Stats counts what a flatten wrote.
type Stats struct {
	Layers           int
	CellsVisited     int
	GlyphWrites      int
	BackgroundWrites int
}
