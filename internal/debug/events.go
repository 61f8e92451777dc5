package debug

// FlattenStartData contains information about the start of a flatten operation.
type FlattenStartData struct {
	Mode    string `json:"mode"`
	Version int    `json:"version"`
	Layers  int    `json:"layers"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	FlipY   bool   `json:"flip_y"`
}

// FlattenEndData contains information about the end of a flatten operation.
type FlattenEndData struct {
	Layers           int   `json:"layers"`
	CellsVisited     int   `json:"cells_visited"`
	GlyphWrites      int   `json:"glyph_writes"`
	BackgroundWrites int   `json:"background_writes"`
	ElapsedMs        int64 `json:"elapsed_ms"`
}

// LayerData contains per-layer write statistics.
type LayerData struct {
	Index            int `json:"index"`
	GlyphWrites      int `json:"glyph_writes"`
	BackgroundWrites int `json:"background_writes"`
	SpaceSkips       int `json:"space_skips"`
	ForegroundSkips  int `json:"foreground_skips"`
	BackgroundSkips  int `json:"background_skips"`
}

// SkipData describes one cell channel that was not painted.
type SkipData struct {
	Layer     int    `json:"layer"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	CodePoint rune   `json:"code_point"`
	Color     uint32 `json:"color"`
	Channel   string `json:"channel"` // "glyph" or "background"
	Reason    string `json:"reason"`  // see ClassifySkip
}

// CapacityData records the background plane size requested from the surface.
type CapacityData struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DocumentHeaderData contains the decoded payload header.
type DocumentHeaderData struct {
	Version    int `json:"version"`
	LayerCount int `json:"layer_count"`
}

// LayerHeaderData contains a decoded layer header.
type LayerHeaderData struct {
	Index  int `json:"index"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ErrorData contains error information.
type ErrorData struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// SessionStartData opens every session.
type SessionStartData struct {
	Library string `json:"library"`
	Schema  string `json:"schema"`
}

// SessionEndData closes every session. Events counts all events of the
// session including this one.
type SessionEndData struct {
	Events    uint64 `json:"events"`
	ElapsedMs int64  `json:"elapsed_ms"`
}
