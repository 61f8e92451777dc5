package parser

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ryanlewis/xpgo/internal/common"
)

// Encode writes doc as an uncompressed XP payload.
//
// Colors lose their alpha byte. A background that is a transparency sentinel
// is written as the editor's magenta key so that Parse maps it back to 0.
func Encode(w io.Writer, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", common.ErrBadDocumentFormat)
	}
	if doc.LayerCount != len(doc.Layers) {
		return fmt.Errorf("%w: declared %d layers, have %d", common.ErrStructuralMismatch, doc.LayerCount, len(doc.Layers))
	}

	bw := bufio.NewWriter(w)
	var word [4]byte

	putInt := func(v int) error {
		binary.LittleEndian.PutUint32(word[:], uint32(int32(v)))
		_, err := bw.Write(word[:])
		return err
	}

	if err := putInt(doc.Version); err != nil {
		return err
	}
	if err := putInt(doc.LayerCount); err != nil {
		return err
	}

	record := make([]byte, cellRecordSize)
	for i, layer := range doc.Layers {
		if len(layer.Cells) != layer.Width*layer.Height {
			return fmt.Errorf("%w: layer %d has %d cells for %dx%d", common.ErrStructuralMismatch, i, len(layer.Cells), layer.Width, layer.Height)
		}
		if err := putInt(layer.Width); err != nil {
			return err
		}
		if err := putInt(layer.Height); err != nil {
			return err
		}
		for _, c := range layer.Cells {
			encodeCell(record, c)
			if _, err := bw.Write(record); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// encodeCell packs a cell record into b.
func encodeCell(b []byte, c Cell) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(c.CodePoint))
	b[4], b[5], b[6] = unpackRGB(c.Foreground)
	if c.Background&common.SentinelMask == 0 {
		b[7], b[8], b[9] = keyRed, keyGreen, keyBlue
		return
	}
	b[7], b[8], b[9] = unpackRGB(c.Background)
}

func unpackRGB(c uint32) (r, g, b uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8)
}
