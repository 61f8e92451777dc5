package compositor

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ryanlewis/xpgo/internal/debug"
)

type cell struct {
	cp     rune
	fg, bg uint32
}

// stackSource is a Source backed by [layer][x][y] cells.
type stackSource struct {
	w, h   int
	layers [][][]cell
}

func newStack(w, h, layers int) *stackSource {
	s := &stackSource{w: w, h: h}
	for i := 0; i < layers; i++ {
		cols := make([][]cell, w)
		for x := range cols {
			cols[x] = make([]cell, h)
			for y := range cols[x] {
				cols[x][y] = cell{cp: ' '}
			}
		}
		s.layers = append(s.layers, cols)
	}
	return s
}

func (s *stackSource) set(layer, x, y int, c cell) *stackSource {
	s.layers[layer][x][y] = c
	return s
}

func (s *stackSource) LayerCount() int    { return len(s.layers) }
func (s *stackSource) Bounds() (int, int) { return s.w, s.h }
func (s *stackSource) CellAt(l, x, y int) (rune, uint32, uint32) {
	c := s.layers[l][x][y]
	return c.cp, c.fg, c.bg
}

type write struct {
	kind  string // "glyph", "bg", "ensure"
	x, y  int
	cp    rune
	color uint32
}

// recorder is a Target that records every call in order.
type recorder struct {
	writes []write
}

func (r *recorder) SetGlyph(x, y int, cp rune, fg uint32) {
	r.writes = append(r.writes, write{kind: "glyph", x: x, y: y, cp: cp, color: fg})
}

func (r *recorder) SetBackground(x, y int, bg uint32) {
	r.writes = append(r.writes, write{kind: "bg", x: x, y: y, color: bg})
}

func (r *recorder) EnsureBackgroundCapacity(w, h int) {
	r.writes = append(r.writes, write{kind: "ensure", x: w, y: h})
}

// final returns the last glyph and background written at (x, y).
func (r *recorder) final(x, y int) (glyph *write, bg *write) {
	for i := range r.writes {
		w := &r.writes[i]
		if w.x != x || w.y != y {
			continue
		}
		switch w.kind {
		case "glyph":
			glyph = w
		case "bg":
			bg = w
		}
	}
	return glyph, bg
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, w := range r.writes {
		if w.kind == kind {
			n++
		}
	}
	return n
}

func TestIsTransparentSentinel(t *testing.T) {
	tests := []struct {
		color uint32
		want  bool
	}{
		{0, true},
		{1, true},
		{2, false},
		{3, false},
		{0x000000FF, false},
		{0xFFFFFF00, true},
		{0xFFFFFF01, true},
		{0xFFFFFFFF, false},
	}

	for _, tt := range tests {
		if got := IsTransparentSentinel(tt.color); got != tt.want {
			t.Errorf("IsTransparentSentinel(0x%08X) = %v, want %v", tt.color, got, tt.want)
		}
	}
}

func TestFlattenZeroLayers(t *testing.T) {
	for _, mode := range []int{Masked, Legacy} {
		rec := &recorder{}
		stats, err := Flatten(newStack(3, 3, 0), rec, &Options{Mode: mode})
		if err != nil {
			t.Fatalf("mode %d: Flatten() error = %v", mode, err)
		}
		if len(rec.writes) != 0 {
			t.Errorf("mode %d: zero-layer flatten touched destination: %+v", mode, rec.writes)
		}
		if stats != (Stats{}) {
			t.Errorf("mode %d: stats = %+v, want zero", mode, stats)
		}
	}
}

func TestFlattenNilArguments(t *testing.T) {
	if _, err := Flatten(nil, &recorder{}, nil); !errors.Is(err, ErrNilSource) {
		t.Errorf("nil source error = %v, want ErrNilSource", err)
	}
	if _, err := Flatten(newStack(1, 1, 1), nil, nil); !errors.Is(err, ErrNilTarget) {
		t.Errorf("nil target error = %v, want ErrNilTarget", err)
	}
}

func TestFlattenUnknownMode(t *testing.T) {
	rec := &recorder{}
	_, err := Flatten(newStack(1, 1, 1), rec, &Options{Mode: 9})
	if !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("Flatten() error = %v, want ErrUnknownMode", err)
	}
	if len(rec.writes) != 0 {
		t.Errorf("rejected flatten touched destination: %+v", rec.writes)
	}
}

func TestFlattenEnsuresCapacityFirst(t *testing.T) {
	for _, mode := range []int{Masked, Legacy} {
		rec := &recorder{}
		src := newStack(4, 3, 2).set(0, 0, 0, cell{'A', 0xFF, 0xFF})
		if _, err := Flatten(src, rec, &Options{Mode: mode}); err != nil {
			t.Fatalf("Flatten() error = %v", err)
		}
		if rec.count("ensure") != 1 {
			t.Errorf("mode %d: EnsureBackgroundCapacity called %d times, want 1", mode, rec.count("ensure"))
		}
		if first := rec.writes[0]; first.kind != "ensure" || first.x != 4 || first.y != 3 {
			t.Errorf("mode %d: first call = %+v, want ensure 4x3", mode, first)
		}
	}
}

func TestFlattenMaskedOpaqueCellFlips(t *testing.T) {
	src := newStack(3, 4, 1).set(0, 1, 0, cell{'#', 0x336699FF, 0x102030FF})

	rec := &recorder{}
	if _, err := Flatten(src, rec, &Options{Mode: Masked}); err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	if rec.count("glyph") != 1 {
		t.Fatalf("glyph writes = %d, want 1", rec.count("glyph"))
	}
	if rec.count("bg") != 1 {
		t.Fatalf("background writes = %d, want 1", rec.count("bg"))
	}

	glyph, bg := rec.final(1, 3)
	if glyph == nil || glyph.cp != '#' || glyph.color != 0x336699FF {
		t.Errorf("glyph at (1,3) = %+v, want '#'/0x336699FF", glyph)
	}
	if bg == nil || bg.color != 0x102030FF {
		t.Errorf("background at (1,3) = %+v, want 0x102030FF", bg)
	}
}

func TestFlattenMaskedTransparentForeground(t *testing.T) {
	for _, fg := range []uint32{0, 1, 0xABCDEF00, 0xABCDEF01} {
		for _, cp := range []rune{'A', ' ', 0x2588} {
			rec := &recorder{}
			src := newStack(1, 1, 1).set(0, 0, 0, cell{cp, fg, 0})
			if _, err := Flatten(src, rec, &Options{Mode: Masked}); err != nil {
				t.Fatalf("Flatten() error = %v", err)
			}
			if n := rec.count("glyph"); n != 0 {
				t.Errorf("fg 0x%08X cp %q: glyph writes = %d, want 0", fg, cp, n)
			}
		}
	}
}

func TestFlattenMaskedTransparentTopBackground(t *testing.T) {
	src := newStack(2, 2, 2).
		set(0, 1, 0, cell{'a', 0xFF, 0x112233FF}).
		set(1, 1, 0, cell{'b', 0xEE, 1})

	rec := &recorder{}
	if _, err := Flatten(src, rec, &Options{Mode: Masked}); err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	glyph, bg := rec.final(1, 1)
	if bg == nil || bg.color != 0x112233FF {
		t.Errorf("background at (1,1) = %+v, want layer 0 value 0x112233FF", bg)
	}
	if glyph == nil || glyph.cp != 'b' {
		t.Errorf("glyph at (1,1) = %+v, want top layer 'b'", glyph)
	}
}

func TestFlattenTopLayerOverwrites(t *testing.T) {
	src := newStack(1, 1, 3).
		set(0, 0, 0, cell{'a', 0x10, 0x20}).
		set(1, 0, 0, cell{'b', 0x30, 0x40}).
		set(2, 0, 0, cell{'c', 0x50, 0x60})

	for _, mode := range []int{Masked, Legacy} {
		rec := &recorder{}
		if _, err := Flatten(src, rec, &Options{Mode: mode}); err != nil {
			t.Fatalf("Flatten() error = %v", err)
		}
		glyph, bg := rec.final(0, 0)
		if glyph == nil || glyph.cp != 'c' || glyph.color != 0x50 {
			t.Errorf("mode %d: glyph = %+v, want 'c'/0x50", mode, glyph)
		}
		if bg == nil || bg.color != 0x60 {
			t.Errorf("mode %d: background = %+v, want 0x60", mode, bg)
		}
	}
}

func TestFlattenLegacyIgnoresMask(t *testing.T) {
	src := newStack(2, 2, 1).
		set(0, 0, 1, cell{'Z', 1, 0}).
		set(0, 1, 1, cell{' ', 0xFF, 0xAABBCCFF})

	rec := &recorder{}
	stats, err := Flatten(src, rec, &Options{Mode: Legacy})
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	glyph, bg := rec.final(0, 1)
	if glyph == nil || glyph.cp != 'Z' || glyph.color != 1 {
		t.Errorf("glyph at (0,1) = %+v, want 'Z'/1 with identity mapping", glyph)
	}
	if bg == nil || bg.color != 0 {
		t.Errorf("background at (0,1) = %+v, want explicit 0 write", bg)
	}

	glyph, bg = rec.final(1, 1)
	if glyph != nil {
		t.Errorf("space cell wrote glyph %+v", glyph)
	}
	if bg == nil || bg.color != 0xAABBCCFF {
		t.Errorf("space cell background = %+v, want 0xAABBCCFF", bg)
	}

	if stats.BackgroundWrites != 4 {
		t.Errorf("legacy background writes = %d, want every cell (4)", stats.BackgroundWrites)
	}
	if stats.GlyphWrites != 1 {
		t.Errorf("legacy glyph writes = %d, want 1", stats.GlyphWrites)
	}
}

// TestFlattenScenario is the 2x2 reference document in masked mode.
func TestFlattenScenario(t *testing.T) {
	src := newStack(2, 2, 1).
		set(0, 0, 0, cell{'A', 0x000000FF, 0xFFFFFFFF}).
		set(0, 1, 0, cell{' ', 0, 0}).
		set(0, 0, 1, cell{'B', 0x00FF00FF, 0}).
		set(0, 1, 1, cell{'C', 1, 1})

	rec := &recorder{}
	stats, err := Flatten(src, rec, &Options{Mode: Masked})
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	want := []write{
		{kind: "ensure", x: 2, y: 2},
		{kind: "glyph", x: 0, y: 1, cp: 'A', color: 0x000000FF},
		{kind: "bg", x: 0, y: 1, color: 0xFFFFFFFF},
		{kind: "glyph", x: 0, y: 0, cp: 'B', color: 0x00FF00FF},
	}
	if len(rec.writes) != len(want) {
		t.Fatalf("writes = %+v, want %+v", rec.writes, want)
	}
	for i := range want {
		if rec.writes[i] != want[i] {
			t.Errorf("write %d = %+v, want %+v", i, rec.writes[i], want[i])
		}
	}

	wantStats := Stats{Layers: 1, CellsVisited: 4, GlyphWrites: 2, BackgroundWrites: 1}
	if stats != wantStats {
		t.Errorf("stats = %+v, want %+v", stats, wantStats)
	}
}

func TestFlattenDegenerateCell(t *testing.T) {
	src := newStack(1, 1, 1).set(0, 0, 0, cell{'@', 0xFF, 0xFF})
	rec := &recorder{}
	if _, err := Flatten(src, rec, nil); err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	glyph, bg := rec.final(0, 0)
	if glyph == nil || bg == nil {
		t.Errorf("1x1 flatten writes = %+v, want glyph and background at (0,0)", rec.writes)
	}
}

func TestFlattenDebugEvents(t *testing.T) {
	debug.SetEnabled(true)
	defer debug.SetEnabled(false)

	var buf bytes.Buffer
	session := debug.NewSession(debug.NewJSONSink(&buf))

	src := newStack(1, 2, 1).
		set(0, 0, 0, cell{'A', 0xFF, 0xFF}).
		set(0, 0, 1, cell{'B', 1, 0xFF})

	if _, err := Flatten(src, &recorder{}, &Options{Mode: Masked, Version: 2, Debug: session}); err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var names []string
	var skipReasons []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var evt struct {
			Phase string         `json:"phase"`
			Event string         `json:"event"`
			Data  map[string]any `json:"data"`
		}
		if err := json.Unmarshal([]byte(line), &evt); err != nil {
			t.Fatalf("bad JSON line %q: %v", line, err)
		}
		names = append(names, evt.Phase+"/"+evt.Event)
		if evt.Event == "Skip" {
			skipReasons = append(skipReasons, evt.Data["reason"].(string))
		}
	}

	want := "session/Start,flatten/Start,flatten/Capacity,flatten/Skip,flatten/Layer,flatten/End,session/End"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
	if len(skipReasons) != 1 || skipReasons[0] != "transparent_fg" {
		t.Errorf("skip reasons = %v, want [transparent_fg]", skipReasons)
	}
}
