package xpgo

import "golang.org/x/text/encoding/charmap"

// cp437Controls holds the display glyphs for code page 437 bytes 0x00-0x1F,
// which charmap decodes as control characters.
var cp437Controls = [32]rune{
	' ', '☺', '☻', '♥', '♦', '♣', '♠', '•', '◘', '○', '◙', '♂', '♀', '♪', '♫', '☼',
	'►', '◄', '↕', '‼', '¶', '§', '▬', '↨', '↑', '↓', '→', '←', '∟', '↔', '▲', '▼',
}

// DecodeCP437 maps a stored glyph code to the Unicode rune it displays as.
// The editor stores glyphs as code page 437 indices; codes 0-255 are
// translated and anything else passes through unchanged. Flatten never
// applies this mapping; it is for output stages such as Grid.WriteText.
func DecodeCP437(codePoint rune) rune {
	switch {
	case codePoint < 0 || codePoint > 0xFF:
		return codePoint
	case codePoint < 0x20:
		return cp437Controls[codePoint]
	case codePoint == 0x7F:
		return '⌂'
	}
	return charmap.CodePage437.DecodeByte(byte(codePoint))
}
