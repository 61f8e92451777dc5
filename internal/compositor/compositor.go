// Package compositor flattens a layer stack onto a destination surface.
//
// Two rule sets share one traversal. Masked mode flips the vertical axis and
// leaves transparency sentinels unpainted; Legacy mode maps coordinates
// unchanged and paints every background.
package compositor

import (
	"fmt"
	"time"

	"github.com/ryanlewis/xpgo/internal/common"
	"github.com/ryanlewis/xpgo/internal/debug"
)

// IsTransparentSentinel reports whether a packed color means "no paint":
// every bit selected by 0xFE is zero, so only 0 and 1 qualify.
func IsTransparentSentinel(c uint32) bool {
	return c&common.SentinelMask == 0
}

// rules is the per-mode behavior plugged into the traversal.
type rules struct {
	flipY bool
	// paint decides which channels of a cell are written
	paint func(codePoint rune, fg, bg uint32) (glyph, background bool)
}

func maskedPaint(codePoint rune, fg, bg uint32) (bool, bool) {
	return codePoint != common.SpaceCodePoint && !IsTransparentSentinel(fg), !IsTransparentSentinel(bg)
}

func legacyPaint(codePoint rune, _, _ uint32) (bool, bool) {
	return codePoint != common.SpaceCodePoint, true
}

func rulesFor(mode int) (rules, error) {
	switch mode {
	case Masked:
		return rules{flipY: true, paint: maskedPaint}, nil
	case Legacy:
		return rules{flipY: false, paint: legacyPaint}, nil
	}
	return rules{}, fmt.Errorf("%w: %d", ErrUnknownMode, mode)
}

// Flatten writes every layer of src onto dst, bottom layer first.
//
// A source with no layers is a no-op: dst is not touched at all. Otherwise
// dst.EnsureBackgroundCapacity is called once with the layer size before any
// write. dst must be at least as large as src.Bounds().
func Flatten(src Source, dst Target, opts *Options) (Stats, error) {
	if src == nil {
		return Stats{}, ErrNilSource
	}
	if dst == nil {
		return Stats{}, ErrNilTarget
	}
	if opts == nil {
		opts = &Options{}
	}

	r, err := rulesFor(opts.Mode)
	if err != nil {
		return Stats{}, err
	}

	layers := src.LayerCount()
	if layers == 0 {
		return Stats{}, nil
	}

	width, height := src.Bounds()
	session := opts.Debug

	var startTime time.Time
	if session != nil {
		startTime = time.Now()
		session.Emit("flatten", "Start", debug.FlattenStartData{
			Mode:    debug.FormatMode(opts.Mode),
			Version: opts.Version,
			Layers:  layers,
			Width:   width,
			Height:  height,
			FlipY:   r.flipY,
		})
		session.Emit("flatten", "Capacity", debug.CapacityData{Width: width, Height: height})
	}

	dst.EnsureBackgroundCapacity(width, height)

	stats := Stats{Layers: layers}
	for layer := 0; layer < layers; layer++ {
		ls := flattenLayer(src, dst, layer, width, height, r, opts)
		stats.CellsVisited += width * height
		stats.GlyphWrites += ls.GlyphWrites
		stats.BackgroundWrites += ls.BackgroundWrites
		session.Emit("flatten", "Layer", ls)
	}

	if session != nil {
		session.Emit("flatten", "End", debug.FlattenEndData{
			Layers:           stats.Layers,
			CellsVisited:     stats.CellsVisited,
			GlyphWrites:      stats.GlyphWrites,
			BackgroundWrites: stats.BackgroundWrites,
			ElapsedMs:        time.Since(startTime).Milliseconds(),
		})
	}

	return stats, nil
}

// flattenLayer visits every cell of one layer exactly once.
func flattenLayer(src Source, dst Target, layer, width, height int, r rules, opts *Options) debug.LayerData {
	ls := debug.LayerData{Index: layer}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			codePoint, fg, bg := src.CellAt(layer, x, y)
			glyph, background := r.paint(codePoint, fg, bg)

			dy := y
			if r.flipY {
				dy = height - 1 - y
			}

			if glyph {
				dst.SetGlyph(x, dy, codePoint, fg)
				ls.GlyphWrites++
			} else {
				if codePoint == common.SpaceCodePoint {
					ls.SpaceSkips++
				} else {
					ls.ForegroundSkips++
				}
				traceSkip(opts, layer, x, y, "glyph", codePoint, fg)
			}

			if background {
				dst.SetBackground(x, dy, bg)
				ls.BackgroundWrites++
			} else {
				ls.BackgroundSkips++
				traceSkip(opts, layer, x, y, "background", codePoint, bg)
			}
		}
	}
	return ls
}

// traceSkip reports an unpainted channel in source coordinates.
func traceSkip(opts *Options, layer, x, y int, channel string, codePoint rune, color uint32) {
	if opts.Debug == nil {
		return
	}
	opts.Debug.Emit("flatten", "Skip", debug.SkipData{
		Layer:     layer,
		X:         x,
		Y:         y,
		CodePoint: codePoint,
		Color:     color,
		Channel:   channel,
		Reason:    debug.ClassifySkip(channel, codePoint, color, opts.Mode),
	})
}
