package xpgo

import (
	"errors"
	"testing"
)

func TestColorIsTransparent(t *testing.T) {
	tests := []struct {
		name  string
		color Color
		want  bool
	}{
		{"zero", 0, true},
		{"one", 1, true},
		{"two", 2, false},
		{"opaque black", RGBA(0, 0, 0, 0xFF), false},
		{"white with clear alpha", RGBA(0xFF, 0xFF, 0xFF, 0), true},
		{"white with alpha one", RGBA(0xFF, 0xFF, 0xFF, 1), true},
		{"opaque white", RGBA(0xFF, 0xFF, 0xFF, 0xFF), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.color.IsTransparent(); got != tt.want {
				t.Errorf("Color(0x%08X).IsTransparent() = %v, want %v", uint32(tt.color), got, tt.want)
			}
		})
	}
}

func TestRGBA(t *testing.T) {
	if got := RGBA(0x12, 0x34, 0x56, 0x78); got != 0x12345678 {
		t.Errorf("RGBA() = 0x%08X, want 0x12345678", uint32(got))
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeMasked, false},
		{"masked", ModeMasked, false},
		{"current", ModeMasked, false},
		{" Legacy ", ModeLegacy, false},
		{"LEGACY", ModeLegacy, false},
		{"v2", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownMode) {
				t.Errorf("ParseMode(%q) error = %v, want ErrUnknownMode", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	if ModeMasked.String() != "masked" || ModeLegacy.String() != "legacy" {
		t.Errorf("mode names = %q/%q", ModeMasked, ModeLegacy)
	}
	if ModeMasked != 0 {
		t.Errorf("ModeMasked must be the zero value")
	}
}

func TestDecodeCP437(t *testing.T) {
	tests := []struct {
		in   rune
		want rune
	}{
		{0, ' '},
		{1, '☺'},
		{0x1F, '▼'},
		{'A', 'A'},
		{' ', ' '},
		{0x7F, '⌂'},
		{0xB0, '░'},
		{0xDB, '█'},
		{0xFF, '\u00a0'},
		{0x2588, 0x2588},
		{-1, -1},
	}

	for _, tt := range tests {
		if got := DecodeCP437(tt.in); got != tt.want {
			t.Errorf("DecodeCP437(0x%X) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
