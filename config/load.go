package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir  = "config"
	DefaultConfigFile = "paintblob.toml"
)

// DefaultConfigPath is probed by LoadAuto when no explicit path is given
var DefaultConfigPath = filepath.Join(DefaultConfigDir, DefaultConfigFile)

// Format identifies a tunables file encoding
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFromPath picks the decoder by file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
}

// LoadAuto loads tunables with priority: customPath > DefaultConfigPath > compiled defaults
func LoadAuto(customPath string) (*Tunables, error) {
	if customPath != "" {
		return Load(customPath)
	}
	if fileExists(DefaultConfigPath) {
		return Load(DefaultConfigPath)
	}
	return Default(), nil
}

// Load reads and validates a tunables file, keys absent from the file keep their defaults
func Load(path string) (*Tunables, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	t, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return t, nil
}

// Decode parses data over the defaults and validates the result
// Unknown keys are rejected so typos do not silently fall back to defaults
func Decode(data []byte, format Format) (*Tunables, error) {
	t := Default()

	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(t); err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// Empty or comment-only documents decode to io.EOF
		if err := dec.Decode(t); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %d", format)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Encode writes tunables in the given format, used to dump a starter file
func Encode(t *Tunables, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(t)
	case FormatYAML:
		return yaml.Marshal(t)
	default:
		return nil, fmt.Errorf("unknown format %d", format)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
