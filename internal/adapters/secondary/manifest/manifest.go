package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/memory"
)

// DefaultViewport is the extent used when a manifest does not set one
const DefaultViewport = 800

// Format is the encoding of a manifest file
type Format string

const (
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatMarkdown Format = "markdown"
)

// ErrUnsupportedFormat is returned for manifest files with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// Manifest describes a feed: its viewport and its slides in order
type Manifest struct {
	Viewport float64       `yaml:"viewport" toml:"viewport"`
	Slides   []memory.Item `yaml:"slides" toml:"slides"`
}

// Validate checks the manifest for impossible geometry
func (m *Manifest) Validate() error {
	if m.Viewport < 0 {
		return fmt.Errorf("viewport must be non-negative, got %v", m.Viewport)
	}

	for i, slide := range m.Slides {
		if slide.Height < 0 {
			return fmt.Errorf("slide %d: height must be non-negative, got %v", i, slide.Height)
		}
	}

	return nil
}

// GetViewport returns the viewport extent with default
func (m *Manifest) GetViewport() float64 {
	if m.Viewport == 0 {
		return DefaultViewport
	}
	return m.Viewport
}

// DetectFormat picks the format from the file extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads and parses the manifest at path
func Load(path string) (*Manifest, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 - manifest path comes from the user
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a manifest. Unknown fields are rejected.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest

	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}

	case FormatTOML:
		meta, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, fmt.Errorf("decoding toml: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}

	case FormatMarkdown:
		parsed, err := parseMarkdown(data)
		if err != nil {
			return nil, err
		}
		m = *parsed

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
