package debug

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Sink receives events from a Session. Sessions serialise their calls.
type Sink interface {
	Write(event Event) error
	Flush() error
	Close() error
}

// JSONSink writes one JSON object per line.
type JSONSink struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONSink returns a buffered JSON Lines sink on w.
func NewJSONSink(w io.Writer) *JSONSink {
	bw := bufio.NewWriter(w)
	return &JSONSink{w: bw, enc: json.NewEncoder(bw)}
}

func (s *JSONSink) Write(event Event) error { return s.enc.Encode(event) }

func (s *JSONSink) Flush() error { return s.w.Flush() }

// Close flushes; the underlying writer stays open.
func (s *JSONSink) Close() error { return s.Flush() }

// PrettySink writes an indented, human-oriented trace.
type PrettySink struct {
	w *bufio.Writer
}

// NewPrettySink returns a buffered pretty sink on w.
func NewPrettySink(w io.Writer) *PrettySink {
	return &PrettySink{w: bufio.NewWriter(w)}
}

// Write prints a header line per event followed by its fields.
func (s *PrettySink) Write(event Event) error {
	fmt.Fprintf(s.w, "#%d %s %s/%s session=%s\n", event.Seq, event.Timestamp, event.Phase, event.Event, event.SessionID)

	switch d := event.Data.(type) {
	case nil:
	case SessionStartData:
		s.line("library: %s, schema: %s", d.Library, d.Schema)
	case SessionEndData:
		s.line("events: %d, elapsed_ms: %d", d.Events, d.ElapsedMs)
	case FlattenStartData:
		s.line("mode: %s, flip_y: %t", d.Mode, d.FlipY)
		s.line("version: %d, layers: %d, size: %dx%d", d.Version, d.Layers, d.Width, d.Height)
	case FlattenEndData:
		s.line("layers: %d, cells_visited: %d", d.Layers, d.CellsVisited)
		s.line("glyph_writes: %d, background_writes: %d", d.GlyphWrites, d.BackgroundWrites)
		s.line("elapsed_ms: %d", d.ElapsedMs)
	case LayerData:
		s.line("index: %d, glyph_writes: %d, background_writes: %d", d.Index, d.GlyphWrites, d.BackgroundWrites)
		s.line("skips: space=%d fg=%d bg=%d", d.SpaceSkips, d.ForegroundSkips, d.BackgroundSkips)
	case SkipData:
		s.line("layer: %d, cell: (%d,%d), glyph: %s", d.Layer, d.X, d.Y, runeStr(d.CodePoint))
		s.line("%s: %s → %s", d.Channel, FormatColor(d.Color), d.Reason)
	case CapacityData:
		s.line("capacity: %dx%d", d.Width, d.Height)
	case DocumentHeaderData:
		s.line("version: %d, layer_count: %d", d.Version, d.LayerCount)
	case LayerHeaderData:
		s.line("layer: %d, size: %dx%d", d.Index, d.Width, d.Height)
	case ErrorData:
		s.line("error: %s: %s", d.Type, d.Message)
	case map[string]any:
		for _, k := range sortedKeys(d) {
			s.line("%s: %v", k, d[k])
		}
	default:
		s.line("data: %+v", d)
	}
	return nil
}

func (s *PrettySink) line(format string, args ...any) {
	s.w.WriteString("  ")
	fmt.Fprintf(s.w, format, args...)
	s.w.WriteByte('\n')
}

func (s *PrettySink) Flush() error { return s.w.Flush() }

// Close flushes; the underlying writer stays open.
func (s *PrettySink) Close() error { return s.Flush() }

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// runeStr formats a code point as 'X' (0x58), a bare hex value, or NUL.
func runeStr(r rune) string {
	switch {
	case r == 0:
		return "NUL"
	case r >= 32 && r < 127:
		return fmt.Sprintf("'%c' (0x%02X)", r, r)
	}
	return fmt.Sprintf("0x%02X", r)
}
