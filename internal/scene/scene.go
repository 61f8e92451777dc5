// Package scene loads YAML descriptions of small documents used as golden
// fixtures and demo inputs.
//
// A scene lists only the cells that differ from the layer fill; unlisted
// cells take the fill, which defaults to a space with both colors 0.
//
//	name: reference-2x2
//	version: 2
//	width: 2
//	height: 2
//	layers:
//	  - cells:
//	      - {x: 0, y: 0, glyph: "A", fg: 0x000000FF, bg: 0xFFFFFFFF}
package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ryanlewis/xpgo"
)

// Scene is a YAML document description.
type Scene struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Version     int     `yaml:"version"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Layers      []Layer `yaml:"layers"`
}

// Layer describes one layer.
type Layer struct {
	Fill  *Cell  `yaml:"fill"`
	Cells []Cell `yaml:"cells"`
}

// Cell describes one cell. Code, when set, wins over Glyph.
type Cell struct {
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
	Glyph string `yaml:"glyph"`
	Code  *int   `yaml:"code"`
	FG    uint32 `yaml:"fg"`
	BG    uint32 `yaml:"bg"`
}

// Load reads a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}

	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scene %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &s, nil
}

// Glob loads every *.yaml scene in dir, sorted by file name.
func Glob(dir string) ([]*Scene, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenes := make([]*Scene, 0, len(paths))
	for _, p := range paths {
		s, err := Load(p)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, s)
	}
	return scenes, nil
}

// Document builds the described document.
func (s *Scene) Document() (*xpgo.Document, error) {
	layers := make([]*xpgo.Layer, 0, len(s.Layers))
	for i, ls := range s.Layers {
		l, err := s.buildLayer(ls)
		if err != nil {
			return nil, fmt.Errorf("scene %s layer %d: %w", s.Name, i, err)
		}
		layers = append(layers, l)
	}
	return xpgo.NewDocument(s.Version, len(layers), layers)
}

func (s *Scene) buildLayer(ls Layer) (*xpgo.Layer, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("invalid scene size %dx%d", s.Width, s.Height)
	}

	fill := xpgo.Cell{CodePoint: ' '}
	if ls.Fill != nil {
		c, err := ls.Fill.cell()
		if err != nil {
			return nil, fmt.Errorf("fill: %w", err)
		}
		fill = c
	}

	cells := make([][]xpgo.Cell, s.Width)
	for x := range cells {
		cells[x] = make([]xpgo.Cell, s.Height)
		for y := range cells[x] {
			cells[x][y] = fill
		}
	}

	for _, cs := range ls.Cells {
		if cs.X < 0 || cs.X >= s.Width || cs.Y < 0 || cs.Y >= s.Height {
			return nil, fmt.Errorf("cell (%d,%d) outside %dx%d", cs.X, cs.Y, s.Width, s.Height)
		}
		c, err := cs.cell()
		if err != nil {
			return nil, fmt.Errorf("cell (%d,%d): %w", cs.X, cs.Y, err)
		}
		cells[cs.X][cs.Y] = c
	}

	return xpgo.NewLayer(s.Width, s.Height, cells)
}

func (c Cell) cell() (xpgo.Cell, error) {
	cp := ' '
	switch {
	case c.Code != nil:
		cp = rune(*c.Code)
	case c.Glyph != "":
		if utf8.RuneCountInString(c.Glyph) != 1 {
			return xpgo.Cell{}, fmt.Errorf("glyph %q must be a single rune", c.Glyph)
		}
		cp, _ = utf8.DecodeRuneInString(c.Glyph)
	}
	return xpgo.Cell{CodePoint: cp, Foreground: xpgo.Color(c.FG), Background: xpgo.Color(c.BG)}, nil
}

// GoldenName returns the golden file name for a scene flattened in mode.
func GoldenName(s *Scene, mode xpgo.Mode) string {
	return s.Name + "." + mode.String() + ".txt"
}
