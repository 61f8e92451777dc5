// Command generate-goldens flattens every YAML scene in both modes and
// writes the golden files checked by the root package tests.
package main

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/ryanlewis/xpgo"
	"github.com/ryanlewis/xpgo/internal/scene"
)

var (
	scenesDir  = pflag.String("scenes", "testdata/scenes", "Directory of YAML scenes")
	outDir     = pflag.String("out", "testdata/goldens", "Output directory")
	payloadDir = pflag.String("payloads", "", "Also write each scene as <name>.xp (gzip) into this directory")
	strict     = pflag.Bool("strict", false, "Exit on any warning")
)

var modes = []xpgo.Mode{xpgo.ModeMasked, xpgo.ModeLegacy}

func main() {
	pflag.Parse()

	scenes, err := scene.Glob(*scenesDir)
	if err != nil {
		log.Fatalf("Failed to load scenes: %v", err)
	}
	if len(scenes) == 0 {
		log.Fatalf("No scenes found in %s", *scenesDir)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory %s: %v", *outDir, err)
	}
	if *payloadDir != "" {
		if err := os.MkdirAll(*payloadDir, 0o755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", *payloadDir, err)
		}
	}

	for _, s := range scenes {
		doc, err := s.Document()
		if err != nil {
			if *strict {
				log.Fatalf("Failed to build scene %s: %v", s.Name, err)
			}
			log.Printf("Warning: %v", err)
			continue
		}

		for _, mode := range modes {
			if err := generateGoldenFile(s, doc, mode); err != nil {
				if *strict {
					log.Fatalf("Failed to generate golden file: %v", err)
				}
				log.Printf("Warning: %v", err)
			}
		}

		if *payloadDir != "" {
			if err := writePayload(s, doc); err != nil {
				if *strict {
					log.Fatalf("Failed to write payload: %v", err)
				}
				log.Printf("Warning: %v", err)
			}
		}
	}

	log.Println("Golden file generation complete")
}

func generateGoldenFile(s *scene.Scene, doc *xpgo.Document, mode xpgo.Mode) error {
	name := scene.GoldenName(s, mode)
	log.Printf("Generating %s", name)

	grid, err := xpgo.FlattenGrid(doc, xpgo.WithMode(mode))
	if err != nil {
		return fmt.Errorf("failed to flatten %s: %w", name, err)
	}

	var body bytes.Buffer
	if err := grid.Dump(&body); err != nil {
		return err
	}

	width, height := doc.Size()
	meta := scene.GoldenMetadata{
		Scene:     s.Name,
		Mode:      mode.String(),
		Version:   doc.Version(),
		Layers:    doc.LayerCount(),
		Width:     width,
		Height:    height,
		Generator: "generate-goldens",
	}

	var out bytes.Buffer
	if err := scene.WriteGolden(&out, meta, body.Bytes()); err != nil {
		return err
	}

	outFile := filepath.Join(*outDir, name)
	if err := os.WriteFile(outFile, out.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", outFile, err)
	}
	return nil
}

// writePayload stores the scene the way the editor saves files: a gzip
// stream around the uncompressed payload.
func writePayload(s *scene.Scene, doc *xpgo.Document) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := xpgo.EncodeDocument(zw, doc); err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.Name, err)
	}
	if err := zw.Close(); err != nil {
		return err
	}

	outFile := filepath.Join(*payloadDir, s.Name+".xp")
	if err := os.WriteFile(outFile, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", outFile, err)
	}
	return nil
}
