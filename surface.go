package xpgo

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
)

// Surface is a destination grid addressed by (x, y) with a top-left origin.
// Flatten only writes through these methods; it never reads back.
//
// A surface is not safe for concurrent flattens. Callers must serialise
// writes to one surface.
type Surface interface {
	// SetGlyph writes a code point and its ink color.
	SetGlyph(x, y int, codePoint rune, fg Color)

	// SetBackground writes the background color plane.
	SetBackground(x, y int, bg Color)

	// EnsureBackgroundCapacity makes sure the background plane covers at
	// least width × height. Flatten calls it once, before any write.
	EnsureBackgroundCapacity(width, height int)
}

// surfaceTarget exposes a Surface to the compositor.
type surfaceTarget struct {
	s Surface
}

func (t surfaceTarget) SetGlyph(x, y int, codePoint rune, fg uint32) {
	t.s.SetGlyph(x, y, codePoint, Color(fg))
}

func (t surfaceTarget) SetBackground(x, y int, bg uint32) {
	t.s.SetBackground(x, y, Color(bg))
}

func (t surfaceTarget) EnsureBackgroundCapacity(width, height int) {
	t.s.EnsureBackgroundCapacity(width, height)
}

// Grid is an in-memory Surface. The glyph and foreground planes exist from
// construction; the background plane stays unallocated until the first
// EnsureBackgroundCapacity or SetBackground call. Writes outside the grid
// are ignored. A nil *Grid behaves as an empty 0×0 grid.
type Grid struct {
	width  int
	height int
	glyphs []rune  // row-major: y*width + x
	fg     []Color // row-major: y*width + x
	bg     [][]Color
}

// NewGrid returns a width × height grid filled with spaces.
func NewGrid(width, height int) *Grid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g := &Grid{
		width:  width,
		height: height,
		glyphs: make([]rune, width*height),
		fg:     make([]Color, width*height),
	}
	for i := range g.glyphs {
		g.glyphs[i] = ' '
	}
	return g
}

// Size returns the grid dimensions.
func (g *Grid) Size() (width, height int) {
	if g == nil {
		return 0, 0
	}
	return g.width, g.height
}

func (g *Grid) inBounds(x, y int) bool {
	return g != nil && x >= 0 && x < g.width && y >= 0 && y < g.height
}

// SetGlyph implements Surface.
func (g *Grid) SetGlyph(x, y int, codePoint rune, fg Color) {
	if !g.inBounds(x, y) {
		return
	}
	g.glyphs[y*g.width+x] = codePoint
	g.fg[y*g.width+x] = fg
}

// SetBackground implements Surface.
func (g *Grid) SetBackground(x, y int, bg Color) {
	if !g.inBounds(x, y) {
		return
	}
	if g.bg == nil {
		g.EnsureBackgroundCapacity(g.width, g.height)
	}
	if x >= len(g.bg) || y >= len(g.bg[x]) {
		return
	}
	g.bg[x][y] = bg
}

// EnsureBackgroundCapacity implements Surface. The plane is indexed [x][y];
// growing it keeps existing values.
func (g *Grid) EnsureBackgroundCapacity(width, height int) {
	if g == nil {
		return
	}
	if g.bg != nil && len(g.bg) >= width && (len(g.bg) == 0 || len(g.bg[0]) >= height) {
		return
	}

	w, h := width, height
	if g.bg != nil {
		w = max(w, len(g.bg))
		if len(g.bg) > 0 {
			h = max(h, len(g.bg[0]))
		}
	}

	plane := make([][]Color, w)
	for x := range plane {
		plane[x] = make([]Color, h)
		if x < len(g.bg) {
			copy(plane[x], g.bg[x])
		}
	}
	g.bg = plane
}

// HasBackground reports whether the background plane has been allocated.
func (g *Grid) HasBackground() bool {
	return g != nil && g.bg != nil
}

// Glyph returns the code point at (x, y), or 0 outside the grid.
func (g *Grid) Glyph(x, y int) rune {
	if !g.inBounds(x, y) {
		return 0
	}
	return g.glyphs[y*g.width+x]
}

// Foreground returns the ink color at (x, y), or 0 outside the grid.
func (g *Grid) Foreground(x, y int) Color {
	if !g.inBounds(x, y) {
		return 0
	}
	return g.fg[y*g.width+x]
}

// Background returns the background at (x, y), or 0 when the plane is
// unallocated or does not cover (x, y).
func (g *Grid) Background(x, y int) Color {
	if g == nil || x < 0 || x >= len(g.bg) || y < 0 || y >= len(g.bg[x]) {
		return 0
	}
	return g.bg[x][y]
}

// WriteText writes the glyph plane as lines of text. mapGlyph, when
// non-nil, translates stored code points for display (see DecodeCP437).
// Zero-width runes print as spaces; a double-width rune covers the next
// column, so every line spans the same number of terminal columns.
func (g *Grid) WriteText(w io.Writer, mapGlyph func(rune) rune) error {
	width, height := g.Size()
	bw := bufio.NewWriter(w)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := g.glyphs[y*g.width+x]
			if mapGlyph != nil {
				r = mapGlyph(r)
			}
			switch runewidth.RuneWidth(r) {
			case 0:
				r = ' '
			case 2:
				if x+1 < width {
					x++
				} else {
					r = ' '
				}
			}
			bw.WriteRune(r)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Dump writes all three planes in a stable plain-text form used by golden
// files: glyph rows between bars, then foreground and background rows as
// hex words.
func (g *Grid) Dump(w io.Writer) error {
	width, height := g.Size()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "size: %dx%d\n", width, height)
	fmt.Fprintln(bw, "glyphs:")
	for y := 0; y < height; y++ {
		bw.WriteByte('|')
		for x := 0; x < width; x++ {
			bw.WriteRune(g.glyphs[y*width+x])
		}
		bw.WriteString("|\n")
	}

	fmt.Fprintln(bw, "fg:")
	for y := 0; y < height; y++ {
		writeColorRow(bw, width, func(x int) Color { return g.fg[y*width+x] })
	}

	if !g.HasBackground() {
		fmt.Fprintln(bw, "bg: unallocated")
		return bw.Flush()
	}
	fmt.Fprintln(bw, "bg:")
	for y := 0; y < height; y++ {
		writeColorRow(bw, width, func(x int) Color { return g.Background(x, y) })
	}
	return bw.Flush()
}

func writeColorRow(w *bufio.Writer, width int, at func(x int) Color) {
	for x := 0; x < width; x++ {
		if x > 0 {
			w.WriteByte(' ')
		}
		fmt.Fprintf(w, "%08X", uint32(at(x)))
	}
	w.WriteByte('\n')
}
