// Package screen adapts a tcell.Screen to the xpgo.Surface interface so a
// document can be flattened straight onto a terminal.
package screen

import (
	"github.com/gdamore/tcell/v2"

	"github.com/ryanlewis/xpgo"
)

// Screen writes flattened cells to a tcell.Screen. Colors are read as
// RGBA8888, the packing produced by xpgo's decoder; the alpha byte is
// ignored.
//
// A glyph write keeps the cell's current background and a background write
// keeps its glyph and ink, so the two planes stay independent as they are
// in xpgo.Grid. Nothing is shown until Show is called.
type Screen struct {
	screen   tcell.Screen
	mapGlyph func(rune) rune
	width    int
	height   int
}

// Option configures a Screen.
type Option func(*Screen)

// WithGlyphMapper translates stored code points before they reach the
// terminal, for example xpgo.DecodeCP437.
func WithGlyphMapper(fn func(rune) rune) Option {
	return func(s *Screen) {
		s.mapGlyph = fn
	}
}

// New wraps an initialised tcell.Screen.
func New(s tcell.Screen, opts ...Option) *Screen {
	sc := &Screen{screen: s}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Color converts an RGBA8888 color to a tcell RGB color.
func Color(c xpgo.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c>>24&0xFF), int32(c>>16&0xFF), int32(c>>8&0xFF))
}

// SetGlyph implements xpgo.Surface.
func (s *Screen) SetGlyph(x, y int, codePoint rune, fg xpgo.Color) {
	if s.mapGlyph != nil {
		codePoint = s.mapGlyph(codePoint)
	}
	_, _, style, _ := s.screen.GetContent(x, y)
	s.screen.SetContent(x, y, codePoint, nil, style.Foreground(Color(fg)))
}

// SetBackground implements xpgo.Surface.
func (s *Screen) SetBackground(x, y int, bg xpgo.Color) {
	mainc, combc, style, _ := s.screen.GetContent(x, y)
	if mainc == 0 {
		mainc = ' '
	}
	s.screen.SetContent(x, y, mainc, combc, style.Background(Color(bg)))
}

// EnsureBackgroundCapacity implements xpgo.Surface. The terminal owns its
// size; simulation screens smaller than the request are grown so that tests
// and offscreen renders see every cell.
func (s *Screen) EnsureBackgroundCapacity(width, height int) {
	s.width = max(s.width, width)
	s.height = max(s.height, height)

	sim, ok := s.screen.(tcell.SimulationScreen)
	if !ok {
		return
	}
	w, h := sim.Size()
	if w < width || h < height {
		sim.SetSize(max(w, width), max(h, height))
	}
}

// Extent returns the largest area requested through EnsureBackgroundCapacity.
func (s *Screen) Extent() (width, height int) {
	return s.width, s.height
}

// Show makes pending writes visible.
func (s *Screen) Show() {
	s.screen.Show()
}

// Underlying exposes the wrapped tcell.Screen.
func (s *Screen) Underlying() tcell.Screen {
	return s.screen
}
