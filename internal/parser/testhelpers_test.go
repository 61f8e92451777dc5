package parser

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// payloadBuilder assembles raw XP payloads for tests.
//
// Usage example:
//
//	data := newPayload(-1, 1).layer(2, 1).cell('A', 255, 0, 0, 0, 0, 0).cell(' ', 0, 0, 0, 255, 0, 255).bytes()
type payloadBuilder struct {
	buf bytes.Buffer
}

func newPayload(version, layers int32) *payloadBuilder {
	p := &payloadBuilder{}
	p.int(version)
	p.int(layers)
	return p
}

func (p *payloadBuilder) int(v int32) *payloadBuilder {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	p.buf.Write(b[:])
	return p
}

func (p *payloadBuilder) layer(width, height int32) *payloadBuilder {
	return p.int(width).int(height)
}

func (p *payloadBuilder) cell(code rune, fr, fg, fb, br, bg, bb uint8) *payloadBuilder {
	p.int(int32(code))
	p.buf.Write([]byte{fr, fg, fb, br, bg, bb})
	return p
}

func (p *payloadBuilder) bytes() []byte {
	return p.buf.Bytes()
}

// mustParse parses data or fails the test.
func mustParse(t *testing.T, data []byte) *Document {
	t.Helper()
	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

// validateCell checks one decoded cell.
func validateCell(t *testing.T, l *Layer, x, y int, want Cell) {
	t.Helper()
	if got := l.At(x, y); got != want {
		t.Errorf("cell (%d,%d) = %+v, want %+v", x, y, got, want)
	}
}
