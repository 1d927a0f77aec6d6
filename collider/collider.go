// Package collider defines the collision primitives and the Ray used to
// query them.
//
// Colliders are small value types sharing a Base (collision layer and
// stillness). The family is closed: Plane, Triangle, AABox, Box and Sphere
// are the only implementations, identified by their Kind so that pairwise
// tests can be dispatched through a table instead of type switches.
package collider

import (
	"math"

	"github.com/akmonengine/kinema/transform"
	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used by the intersection routines.
const Epsilon = 1e-6

// Layer is a collision bitmask. Two colliders may only interact when their
// layers share at least one bit.
type Layer uint8

// DefaultLayer is the layer assigned to colliders built from configuration
// when none is given.
const DefaultLayer Layer = 0x01

// Interacts reports whether two layers share a bit.
func (l Layer) Interacts(other Layer) bool {
	return l&other != 0
}

// Base holds the fields common to every collider.
type Base struct {
	Layer Layer
	// Still colliders do not interact with each other, only with non-still
	// ones.
	Still bool
}

// Common returns the shared collider fields.
func (b Base) Common() Base {
	return b
}

func (Base) collider() {}

// Kind tags each collider variant.
type Kind uint8

const (
	KindSphere Kind = iota
	KindPlane
	KindBox
	KindAABox
	KindTriangle

	// KindCount is the number of collider variants.
	KindCount
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindPlane:
		return "plane"
	case KindBox:
		return "box"
	case KindAABox:
		return "aabox"
	case KindTriangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// Collider is implemented by Plane, Triangle, AABox, Box and Sphere.
type Collider interface {
	Kind() Kind
	Common() Base
	// Bounds returns the world-space axis-aligned bounds used by the broad
	// phase.
	Bounds() AABB
	// Place expresses a collider defined in a body's local space in world
	// space, following the body transform t.
	Place(t *transform.Transform) Collider

	collider()
}

// WithBase returns c with its common fields replaced by b.
func WithBase(c Collider, b Base) Collider {
	switch v := c.(type) {
	case Sphere:
		v.Base = b
		return v
	case Plane:
		v.Base = b
		return v
	case Box:
		v.Base = b
		return v
	case AABox:
		v.Base = b
		return v
	case Triangle:
		v.Base = b
		return v
	}
	return c
}

// maxAbs returns the largest absolute component of v.
func maxAbs(v mgl64.Vec3) float64 {
	return math.Max(math.Abs(v[0]), math.Max(math.Abs(v[1]), math.Abs(v[2])))
}

func absVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])}
}

func mulVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
