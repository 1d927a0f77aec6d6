// Package config describes worlds and scenes as YAML or TOML documents.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFormat = errors.New("config: unknown format")
	ErrInvalid       = errors.New("config: invalid")
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Vec3 is written as a three element list, [x, y, z].
type Vec3 [3]float64

// Sleep holds the thresholds under which a body falls asleep.
type Sleep struct {
	// Time is how long (s) a body must stay slow.
	Time float64 `yaml:"time" toml:"time"`
	// Velocity is the linear and angular speed under which a body is slow.
	Velocity float64 `yaml:"velocity" toml:"velocity"`
}

// World holds the simulation settings.
type World struct {
	Gravity  Vec3 `yaml:"gravity" toml:"gravity"`
	Substeps int  `yaml:"substeps" toml:"substeps"`
	Workers  int  `yaml:"workers" toml:"workers"`

	// Broad phase grid
	CellSize  float64 `yaml:"cell_size" toml:"cell_size"`
	GridCells int     `yaml:"grid_cells" toml:"grid_cells"`

	Sleep Sleep `yaml:"sleep" toml:"sleep"`
}

// Defaults returns the settings used for anything a document leaves out.
func Defaults() World {
	return World{
		Gravity:   Vec3{0, -9.81, 0},
		Substeps:  1,
		Workers:   1,
		CellSize:  4,
		GridCells: 1024,
		Sleep: Sleep{
			Time:     0.1,
			Velocity: 0.05,
		},
	}
}

// Scene is a world and the bodies it starts with.
type Scene struct {
	World  World  `yaml:"world" toml:"world"`
	Bodies []Body `yaml:"bodies" toml:"bodies"`
}

// Load reads and validates the scene file at path. The format follows the
// extension: .yaml, .yml or .toml.
func Load(path string) (*Scene, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scene, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := scene.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scene, nil
}

// Decode reads a scene in the given format, on top of the default world
// settings. Unknown keys are rejected.
func Decode(r io.Reader, format Format) (*Scene, error) {
	scene := Scene{World: Defaults()}

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&scene); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&scene); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return &scene, nil
}

// Encode writes the scene in the given format.
func (s *Scene) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(s)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
