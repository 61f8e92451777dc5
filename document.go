package xpgo

import "fmt"

// Layer is a fixed-size grid of cells. Layers are immutable once built.
type Layer struct {
	width  int
	height int
	// cells is column-major: index x*height + y
	cells []Cell
}

// NewLayer builds a layer from cells indexed [x][y]. Every column must have
// the same length. The input is copied.
func NewLayer(width, height int, cells [][]Cell) (*Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrBadLayerShape, width, height)
	}
	if len(cells) != width {
		return nil, fmt.Errorf("%w: %d columns for width %d", ErrBadLayerShape, len(cells), width)
	}

	l := &Layer{
		width:  width,
		height: height,
		cells:  make([]Cell, 0, width*height),
	}
	for x, column := range cells {
		if len(column) != height {
			return nil, fmt.Errorf("%w: column %d has %d cells for height %d", ErrBadLayerShape, x, len(column), height)
		}
		l.cells = append(l.cells, column...)
	}
	return l, nil
}

// Width returns the number of columns.
func (l *Layer) Width() int { return l.width }

// Height returns the number of rows.
func (l *Layer) Height() int { return l.height }

// At returns the cell at (x, y). It panics when (x, y) lies outside
// [0, Width) × [0, Height).
func (l *Layer) At(x, y int) Cell {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		panic(fmt.Sprintf("xpgo: cell (%d,%d) out of range for %dx%d layer", x, y, l.width, l.height))
	}
	return l.cells[x*l.height+y]
}

// Document is an ordered stack of equally sized layers. Index 0 is the
// bottom layer and is drawn first. Documents are immutable and may be
// flattened concurrently onto distinct surfaces.
type Document struct {
	version int
	layers  []*Layer
}

// NewDocument validates and assembles a document. It returns an error
// wrapping ErrStructuralMismatch when declaredLayerCount differs from
// len(layers), when a layer is nil, or when layers differ in size.
func NewDocument(version, declaredLayerCount int, layers []*Layer) (*Document, error) {
	if declaredLayerCount != len(layers) {
		return nil, fmt.Errorf("%w: declared %d layers, got %d", ErrStructuralMismatch, declaredLayerCount, len(layers))
	}

	for i, l := range layers {
		if l == nil {
			return nil, fmt.Errorf("%w: layer %d is nil", ErrStructuralMismatch, i)
		}
		if l.width != layers[0].width || l.height != layers[0].height {
			return nil, fmt.Errorf("%w: layer %d is %dx%d, layer 0 is %dx%d",
				ErrStructuralMismatch, i, l.width, l.height, layers[0].width, layers[0].height)
		}
	}

	return &Document{
		version: version,
		layers:  append([]*Layer(nil), layers...),
	}, nil
}

// Version returns the format version tag. It carries no meaning for
// composition; see WithMode.
func (d *Document) Version() int { return d.version }

// LayerCount returns the number of layers.
func (d *Document) LayerCount() int { return len(d.layers) }

// Layer returns layer i, or an error wrapping ErrIndexOutOfRange.
func (d *Document) Layer(i int) (*Layer, error) {
	if i < 0 || i >= len(d.layers) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(d.layers))
	}
	return d.layers[i], nil
}

// Size returns the shared layer size, or (0, 0) for a document without layers.
func (d *Document) Size() (width, height int) {
	if len(d.layers) == 0 {
		return 0, 0
	}
	return d.layers[0].width, d.layers[0].height
}

// docSource exposes a Document to the compositor.
type docSource struct {
	doc *Document
}

func (s docSource) LayerCount() int { return len(s.doc.layers) }

func (s docSource) Bounds() (int, int) { return s.doc.Size() }

func (s docSource) CellAt(layer, x, y int) (rune, uint32, uint32) {
	l := s.doc.layers[layer]
	c := l.cells[x*l.height+y]
	return c.CodePoint, uint32(c.Foreground), uint32(c.Background)
}
