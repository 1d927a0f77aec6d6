package config

import (
	"fmt"

	"go.uber.org/multierr"
)

// Body types
const (
	BodyDynamic = "dynamic"
	BodyStatic  = "static"
)

// Collider shapes
const (
	ShapeSphere   = "sphere"
	ShapePlane    = "plane"
	ShapeBox      = "box"
	ShapeAABox    = "aabox"
	ShapeTriangle = "triangle"
)

// Body describes one rigid body of a scene.
type Body struct {
	Name    string  `yaml:"name" toml:"name"`
	Type    string  `yaml:"type" toml:"type"`
	Trigger bool    `yaml:"trigger,omitempty" toml:"trigger,omitempty"`
	Mass    float64 `yaml:"mass,omitempty" toml:"mass,omitempty"`

	Position Vec3 `yaml:"position" toml:"position"`
	// Euler angles in radians, applied x, then y, then z.
	Rotation Vec3  `yaml:"rotation,omitempty" toml:"rotation,omitempty"`
	Scale    *Vec3 `yaml:"scale,omitempty" toml:"scale,omitempty"`
	// Parent names another body whose transform this body's follows.
	Parent string `yaml:"parent,omitempty" toml:"parent,omitempty"`

	Velocity        Vec3 `yaml:"velocity,omitempty" toml:"velocity,omitempty"`
	AngularVelocity Vec3 `yaml:"angular_velocity,omitempty" toml:"angular_velocity,omitempty"`

	Material Material `yaml:"material,omitempty" toml:"material,omitempty"`
	Collider Collider `yaml:"collider" toml:"collider"`
}

// Material overrides the body defaults. A nil friction keeps the default
// coefficient.
type Material struct {
	Restitution    float64  `yaml:"restitution,omitempty" toml:"restitution,omitempty"`
	Friction       *float64 `yaml:"friction,omitempty" toml:"friction,omitempty"`
	RollResistance float64  `yaml:"roll_resistance,omitempty" toml:"roll_resistance,omitempty"`
	LinearDamping  float64  `yaml:"linear_damping,omitempty" toml:"linear_damping,omitempty"`
	AngularDamping float64  `yaml:"angular_damping,omitempty" toml:"angular_damping,omitempty"`
}

// Collider is the collision shape of a body, in body space. Which fields
// apply depends on Shape.
type Collider struct {
	Shape string `yaml:"shape" toml:"shape"`
	// Layer 0 means the default layer.
	Layer uint8 `yaml:"layer,omitempty" toml:"layer,omitempty"`

	// sphere, aabox
	Center Vec3    `yaml:"center,omitempty" toml:"center,omitempty"`
	Radius float64 `yaml:"radius,omitempty" toml:"radius,omitempty"`

	// plane: points p with normal·p = d
	Normal Vec3    `yaml:"normal,omitempty" toml:"normal,omitempty"`
	D      float64 `yaml:"d,omitempty" toml:"d,omitempty"`

	// box, aabox: width, height, depth
	Size Vec3 `yaml:"size,omitempty" toml:"size,omitempty"`

	// triangle
	Vertices []Vec3 `yaml:"vertices,omitempty" toml:"vertices,omitempty"`
	CCW      bool   `yaml:"ccw,omitempty" toml:"ccw,omitempty"`
}

// Validate reports every problem of the scene at once. Each one wraps
// ErrInvalid.
func (s *Scene) Validate() error {
	err := s.World.Validate()

	names := make(map[string]bool, len(s.Bodies))
	for i, b := range s.Bodies {
		label := fmt.Sprintf("bodies[%d]", i)
		if b.Name != "" {
			label = fmt.Sprintf("body %q", b.Name)
			if names[b.Name] {
				err = multierr.Append(err, invalid("%s: duplicate name", label))
			}
			names[b.Name] = true
		}
		err = multierr.Append(err, b.validate(label))
	}

	for i, b := range s.Bodies {
		if b.Parent == "" {
			continue
		}
		if b.Name == "" {
			// parents are linked by name
			err = multierr.Append(err, invalid("bodies[%d]: a body with a parent needs a name", i))
			continue
		}
		if !names[b.Parent] {
			err = multierr.Append(err, invalid("body %q: unknown parent %q", b.Name, b.Parent))
		}
		if b.Parent == b.Name {
			err = multierr.Append(err, invalid("body %q: parented to itself", b.Name))
		}
	}
	return err
}

// Validate checks the world settings.
func (w World) Validate() error {
	var err error
	if w.Substeps < 1 {
		err = multierr.Append(err, invalid("world: substeps must be at least 1, got %d", w.Substeps))
	}
	if w.Workers < 1 {
		err = multierr.Append(err, invalid("world: workers must be at least 1, got %d", w.Workers))
	}
	if w.CellSize <= 0 {
		err = multierr.Append(err, invalid("world: cell_size must be positive, got %v", w.CellSize))
	}
	if w.GridCells < 1 {
		err = multierr.Append(err, invalid("world: grid_cells must be at least 1, got %d", w.GridCells))
	}
	if w.Sleep.Time < 0 || w.Sleep.Velocity < 0 {
		err = multierr.Append(err, invalid("world: sleep thresholds must not be negative"))
	}
	return err
}

func (b Body) validate(label string) error {
	var err error
	switch b.Type {
	case BodyDynamic:
		if b.Mass <= 0 {
			err = multierr.Append(err, invalid("%s: dynamic bodies need a positive mass, got %v", label, b.Mass))
		}
	case BodyStatic:
	default:
		err = multierr.Append(err, invalid("%s: unknown body type %q", label, b.Type))
	}

	if b.Scale != nil {
		for _, s := range b.Scale {
			if s == 0 {
				err = multierr.Append(err, invalid("%s: scale components must not be zero", label))
				break
			}
		}
	}

	c := b.Collider
	switch c.Shape {
	case ShapeSphere:
		if c.Radius <= 0 {
			err = multierr.Append(err, invalid("%s: sphere radius must be positive", label))
		}
	case ShapePlane:
		if c.Normal == (Vec3{}) {
			err = multierr.Append(err, invalid("%s: plane normal must not be zero", label))
		}
	case ShapeBox, ShapeAABox:
		if c.Size[0] <= 0 || c.Size[1] <= 0 || c.Size[2] <= 0 {
			err = multierr.Append(err, invalid("%s: %s size must be positive", label, c.Shape))
		}
	case ShapeTriangle:
		if len(c.Vertices) != 3 {
			err = multierr.Append(err, invalid("%s: triangles need 3 vertices, got %d", label, len(c.Vertices)))
		}
	default:
		err = multierr.Append(err, invalid("%s: unknown collider shape %q", label, c.Shape))
	}
	return err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}
