package scene

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// GoldenMetadata is the YAML front matter of a golden file.
type GoldenMetadata struct {
	Scene          string `yaml:"scene"`
	Mode           string `yaml:"mode"`
	Version        int    `yaml:"version"`
	Layers         int    `yaml:"layers"`
	Width          int    `yaml:"width"`
	Height         int    `yaml:"height"`
	Generator      string `yaml:"generator"`
	ChecksumSHA256 string `yaml:"checksum_sha256"`
}

var frontMatterFence = []byte("---\n")

// ErrNoFrontMatter is returned by ReadGolden when the file does not start
// with a front matter block.
var ErrNoFrontMatter = errors.New("golden file has no front matter")

// Checksum returns the hex SHA256 of a golden body.
func Checksum(body []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(body))
}

// WriteGolden writes meta as front matter followed by body. The checksum
// field is filled from body.
func WriteGolden(w io.Writer, meta GoldenMetadata, body []byte) error {
	meta.ChecksumSHA256 = Checksum(body)

	yamlData, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(frontMatterFence)
	buf.Write(yamlData)
	buf.Write(frontMatterFence)
	buf.Write(body)

	_, err = w.Write(buf.Bytes())
	return err
}

// ReadGolden splits a golden file into its metadata and body.
func ReadGolden(data []byte) (GoldenMetadata, []byte, error) {
	var meta GoldenMetadata

	if !bytes.HasPrefix(data, frontMatterFence) {
		return meta, nil, ErrNoFrontMatter
	}
	rest := data[len(frontMatterFence):]

	end := bytes.Index(rest, append([]byte("\n"), frontMatterFence...))
	if end < 0 {
		return meta, nil, fmt.Errorf("%w: unterminated block", ErrNoFrontMatter)
	}

	if err := yaml.Unmarshal(rest[:end+1], &meta); err != nil {
		return meta, nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return meta, rest[end+1+len(frontMatterFence):], nil
}
