// Command xpgo flattens layered XP art files and prints the result.
package main

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"

	"github.com/ryanlewis/xpgo"
	"github.com/ryanlewis/xpgo/internal/debug"
	"github.com/ryanlewis/xpgo/screen"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Output formats.
const (
	outputText   = "text"
	outputDump   = "dump"
	outputScreen = "screen"
	outputXPP    = "xpp"
)

var gzipMagic = []byte{0x1f, 0x8b}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("xpgo", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		fv          flagValues
		configPath  string
		showVersion bool
		showHelp    bool
	)

	fs.StringVarP(&fv.mode, "mode", "m", "masked", "Composition rules: masked or legacy")
	fs.StringVarP(&fv.output, "output", "o", outputText, "Output format: text, dump, screen or xpp")
	fs.BoolVarP(&fv.gzip, "gzip", "z", false, "Input is gzip compressed (default: detect)")
	fs.BoolVar(&fv.cp437, "cp437", true, "Decode glyphs as code page 437 for display")
	fs.StringVarP(&fv.unknownRune, "unknown-rune", "u", "?", "Rune printed for unprintable glyphs in text output (\"none\" or empty keeps them)")
	fs.StringVarP(&configPath, "config", "c", "", "YAML config file")
	fs.BoolVarP(&showVersion, "version", "v", false, "Show version information")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show help message")
	fs.BoolVar(&fv.debug, "debug", false, "Enable debug mode (outputs to stderr)")
	fs.StringVar(&fv.debugFile, "debug-file", "", "Write debug output to file instead of stderr")
	fs.BoolVar(&fv.debugPretty, "debug-pretty", false, "Use pretty format for debug output (default: JSON)")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if showHelp {
		printHelp(stdout, fs)
		return 0
	}
	if showVersion {
		fmt.Fprintf(stdout, "xpgo version %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	cfg := defaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = loadConfig(configPath); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	fv.apply(fs, &cfg)

	mode, err := xpgo.ParseMode(cfg.Mode)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	output, err := parseOutput(cfg.Output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	unknown, err := parseUnknownRune(cfg.UnknownRune)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing unknown rune: %v\n", err)
		return 1
	}

	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "Error: at most one input file")
		printHelp(stderr, fs)
		return 1
	}
	inputPath := "-"
	if fs.NArg() == 1 {
		inputPath = fs.Arg(0)
	}

	var session *debug.Session
	if cfg.Debug.Enabled || cfg.Debug.File != "" || os.Getenv("XPGO_DEBUG") == "1" {
		debug.SetEnabled(true)

		var out io.Writer = stderr
		if cfg.Debug.File != "" {
			file, err := os.Create(cfg.Debug.File)
			if err != nil {
				fmt.Fprintf(stderr, "Error creating debug file: %v\n", err)
				return 1
			}
			defer file.Close()
			out = file
		}

		var sink debug.Sink
		if cfg.Debug.Pretty || debug.PrettyFromEnv() {
			sink = debug.NewPrettySink(out)
		} else {
			sink = debug.NewJSONSink(out)
		}

		session = debug.NewSession(sink)
		if session != nil {
			defer session.Close()
		}
	}

	doc, err := readDocument(inputPath, stdin, cfg.Gzip, session)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	opts := []xpgo.Option{xpgo.WithMode(mode), xpgo.WithDebug(session)}

	switch output {
	case outputScreen:
		err = showOnScreen(doc, displayMapper(cfg.CP437, 0), opts)
	case outputXPP:
		err = xpgo.EncodeDocument(stdout, doc)
	default:
		var grid *xpgo.Grid
		grid, err = xpgo.FlattenGrid(doc, opts...)
		if err != nil {
			break
		}
		if output == outputDump {
			err = grid.Dump(stdout)
		} else {
			err = grid.WriteText(stdout, displayMapper(cfg.CP437, unknown))
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseOutput(s string) (string, error) {
	switch o := strings.ToLower(strings.TrimSpace(s)); o {
	case "", outputText:
		return outputText, nil
	case outputDump, outputScreen, outputXPP:
		return o, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// displayMapper builds the glyph translation used for display. A non-zero
// unknown replaces code points that are not printable after decoding.
func displayMapper(cp437 bool, unknown rune) func(rune) rune {
	return func(r rune) rune {
		if cp437 {
			r = xpgo.DecodeCP437(r)
		}
		if unknown != 0 && r != ' ' && !unicode.IsPrint(r) {
			return unknown
		}
		return r
	}
}

// readDocument decodes path, or stdin for "-". forceGzip nil means the
// gzip magic is sniffed.
func readDocument(path string, stdin io.Reader, forceGzip *bool, session *debug.Session) (*xpgo.Document, error) {
	var r io.Reader = stdin
	name := "stdin"
	if path != "-" {
		file, err := os.Open(resolveDocumentPath(path))
		if err != nil {
			return nil, fmt.Errorf("failed to open document: %w", err)
		}
		defer file.Close()
		r = file
		name = path
	}

	br := bufio.NewReader(r)
	compressed := false
	if forceGzip != nil {
		compressed = *forceGzip
	} else if magic, err := br.Peek(len(gzipMagic)); err == nil {
		compressed = bytes.Equal(magic, gzipMagic)
	}

	var payload io.Reader = br
	if compressed {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", name, err)
		}
		defer zr.Close()
		payload = zr
	}

	doc, err := xpgo.ParseDocument(payload, xpgo.WithDebug(session))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", name, err)
	}
	return doc, nil
}

// resolveDocumentPath accepts a path with or without its extension.
func resolveDocumentPath(p string) string {
	if ext := filepath.Ext(p); ext == ".xp" || ext == ".xpp" {
		return p
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	for _, ext := range []string{".xp", ".xpp"} {
		if _, err := os.Stat(p + ext); err == nil {
			return p + ext
		}
	}
	return p
}

// showOnScreen flattens doc onto the terminal and waits for a key press.
func showOnScreen(doc *xpgo.Document, mapGlyph func(rune) rune, opts []xpgo.Option) error {
	ts, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := ts.Init(); err != nil {
		return fmt.Errorf("failed to initialise screen: %w", err)
	}
	defer ts.Fini()

	ts.HideCursor()
	sc := screen.New(ts, screen.WithGlyphMapper(mapGlyph))

	draw := func() error {
		ts.Clear()
		if err := xpgo.Flatten(doc, sc, opts...); err != nil {
			return err
		}
		sc.Show()
		return nil
	}
	if err := draw(); err != nil {
		return err
	}

	for {
		switch ts.PollEvent().(type) {
		case *tcell.EventResize:
			ts.Sync()
			if err := draw(); err != nil {
				return err
			}
		case *tcell.EventKey:
			return nil
		case nil:
			return errors.New("screen closed")
		}
	}
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "xpgo - layered XP art compositor")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xpgo [flags] [file.xp|file.xpp|-]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Modes:")
	fmt.Fprintln(w, "  masked  flip rows, skip sentinel colors (value & 0xFE == 0)")
	fmt.Fprintln(w, "  legacy  identity rows, overwrite unconditionally")
}
