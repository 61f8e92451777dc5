package debug

import "fmt"

// Composition mode values (matching common/constants.go)
const (
	modeMasked = 0
	modeLegacy = 1
)

// sentinelMask matches common.SentinelMask.
const sentinelMask = 0xFE

// FormatMode returns the human-readable name of a composition mode.
func FormatMode(mode int) string {
	switch mode {
	case modeMasked:
		return "masked"
	case modeLegacy:
		return "legacy"
	}
	return fmt.Sprintf("unknown(%d)", mode)
}

// ClassifySkip returns why a cell channel was left unpainted.
// It returns "" when the channel would be painted under the given mode.
func ClassifySkip(channel string, codePoint rune, color uint32, mode int) string {
	switch channel {
	case "glyph":
		if codePoint == ' ' {
			return "space"
		}
		if mode == modeMasked && color&sentinelMask == 0 {
			return "transparent_fg"
		}
	case "background":
		if mode == modeMasked && color&sentinelMask == 0 {
			return "transparent_bg"
		}
	}
	return ""
}

// FormatColor formats a packed color as 0xRRGGBBAA, marking sentinels.
func FormatColor(c uint32) string {
	if c&sentinelMask == 0 {
		return fmt.Sprintf("0x%08X (transparent)", c)
	}
	return fmt.Sprintf("0x%08X", c)
}
