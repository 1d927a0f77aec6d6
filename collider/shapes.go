package collider

import (
	"math"

	"github.com/akmonengine/kinema/transform"
	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// Plane
// =============================================================================

// Plane is the infinite plane of points p with Normal·p = D.
type Plane struct {
	Base
	Normal mgl64.Vec3
	D      float64
}

func (Plane) Kind() Kind { return KindPlane }

// Bounds of a plane are unbounded.
func (Plane) Bounds() AABB { return Unbounded() }

// SignedDistance returns the distance from point to the plane, positive on
// the side the normal points to.
func (p Plane) SignedDistance(point mgl64.Vec3) float64 {
	return (p.Normal.Dot(point) - p.D) / p.Normal.Len()
}

// Place maps the plane through t. Normals follow the inverse transpose so
// that non-uniform scale keeps them perpendicular.
func (p Plane) Place(t *transform.Transform) Collider {
	onPlane := t.TransformPoint(p.Normal.Mul(p.D / p.Normal.LenSqr()))
	normal := mgl64.TransformNormal(p.Normal, t.InverseMatrix().Transpose()).Normalize()

	p.Normal = normal
	p.D = normal.Dot(onPlane)
	return p
}

// =============================================================================
// Triangle
// =============================================================================

// Triangle is a single face. CCW tells whether V0, V1, V2 wind
// counter-clockwise around the front face normal.
type Triangle struct {
	Base
	V0, V1, V2 mgl64.Vec3
	CCW        bool
}

func (Triangle) Kind() Kind { return KindTriangle }

// Vertices returns the vertices in counter-clockwise order.
func (tri Triangle) Vertices() (mgl64.Vec3, mgl64.Vec3, mgl64.Vec3) {
	if tri.CCW {
		return tri.V0, tri.V1, tri.V2
	}
	return tri.V0, tri.V2, tri.V1
}

// Normal returns the unit front face normal.
func (tri Triangle) Normal() mgl64.Vec3 {
	a, b, c := tri.Vertices()
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

func (tri Triangle) Bounds() AABB {
	bounds := AABB{Min: tri.V0, Max: tri.V0}
	return bounds.Expand(tri.V1).Expand(tri.V2)
}

// Place maps the vertices through t. A mirroring transform flips the
// winding.
func (tri Triangle) Place(t *transform.Transform) Collider {
	tri.V0 = t.TransformPoint(tri.V0)
	tri.V1 = t.TransformPoint(tri.V1)
	tri.V2 = t.TransformPoint(tri.V2)
	if t.Matrix().Mat3().Det() < 0 {
		tri.CCW = !tri.CCW
	}
	return tri
}

// =============================================================================
// AABox
// =============================================================================

// AABox is an axis-aligned box given by its center and full dimensions
// along x (Width), y (Height) and z (Depth).
type AABox struct {
	Base
	Center               mgl64.Vec3
	Width, Height, Depth float64
}

// NewAABoxFromCorners builds the box spanning min and max.
func NewAABoxFromCorners(min, max mgl64.Vec3) AABox {
	size := max.Sub(min)
	return AABox{
		Base:   Base{Layer: DefaultLayer},
		Center: min.Add(max).Mul(0.5),
		Width:  size[0],
		Height: size[1],
		Depth:  size[2],
	}
}

func (AABox) Kind() Kind { return KindAABox }

// HalfExtents returns half the box dimensions.
func (b AABox) HalfExtents() mgl64.Vec3 {
	return mgl64.Vec3{b.Width / 2, b.Height / 2, b.Depth / 2}
}

func (b AABox) Bounds() AABB {
	h := b.HalfExtents()
	return AABB{Min: b.Center.Sub(h), Max: b.Center.Add(h)}
}

// Corners returns the eight corners. Bit 0 of the index selects +x, bit 1
// selects +y and bit 2 selects +z, so corners whose indices differ by a
// single bit share an edge.
func (b AABox) Corners() [8]mgl64.Vec3 {
	return corners(b.Center, mgl64.QuatIdent(), b.HalfExtents())
}

// Place moves the box with t. The box stays axis-aligned: the body's
// orientation is ignored and only its world scale stretches the box.
func (b AABox) Place(t *transform.Transform) Collider {
	s := absVec(t.ScaleGlobal())
	b.Center = t.TransformPoint(b.Center)
	b.Width *= s[0]
	b.Height *= s[1]
	b.Depth *= s[2]
	return b
}

// =============================================================================
// Box
// =============================================================================

// Box is an oriented box. Its pose comes from Transform; Width, Height and
// Depth are its dimensions before the transform's scale.
type Box struct {
	Base
	Transform            *transform.Transform
	Width, Height, Depth float64
}

func (Box) Kind() Kind { return KindBox }

// Frame returns the rigid world-space placement of the box.
func (b Box) Frame() Frame {
	half := mgl64.Vec3{b.Width / 2, b.Height / 2, b.Depth / 2}
	if b.Transform == nil {
		return Frame{Orientation: mgl64.QuatIdent(), HalfExtents: half}
	}
	return Frame{
		Center:      b.Transform.PositionGlobal(),
		Orientation: b.Transform.OrientationGlobal(),
		HalfExtents: mulVec(half, absVec(b.Transform.ScaleGlobal())),
	}
}

func (b Box) Bounds() AABB {
	f := b.Frame()
	r := f.Orientation.Mat4().Mat3()

	var extent mgl64.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			extent[i] += math.Abs(r.At(i, j)) * f.HalfExtents[j]
		}
	}
	return AABB{Min: f.Center.Sub(extent), Max: f.Center.Add(extent)}
}

// Corners returns the eight world-space corners, indexed like
// AABox.Corners.
func (b Box) Corners() [8]mgl64.Vec3 {
	f := b.Frame()
	return corners(f.Center, f.Orientation, f.HalfExtents)
}

// Place attaches a box without a transform of its own to t. A box that
// already has a transform is returned unchanged.
func (b Box) Place(t *transform.Transform) Collider {
	if b.Transform == nil {
		b.Transform = t
	}
	return b
}

// Frame is a rigid placement with half extents, used to run box queries in
// the box's own axis-aligned space.
type Frame struct {
	Center      mgl64.Vec3
	Orientation mgl64.Quat
	HalfExtents mgl64.Vec3
}

// ToLocal maps a world point into the frame.
func (f Frame) ToLocal(p mgl64.Vec3) mgl64.Vec3 {
	return f.Orientation.Conjugate().Rotate(p.Sub(f.Center))
}

// ToWorld maps a frame point to world space.
func (f Frame) ToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return f.Orientation.Rotate(p).Add(f.Center)
}

// DirectionToLocal rotates a world direction into the frame.
func (f Frame) DirectionToLocal(d mgl64.Vec3) mgl64.Vec3 {
	return f.Orientation.Conjugate().Rotate(d)
}

// DirectionToWorld rotates a frame direction to world space.
func (f Frame) DirectionToWorld(d mgl64.Vec3) mgl64.Vec3 {
	return f.Orientation.Rotate(d)
}

// Local returns the frame's box as an AABox centered on the origin.
func (f Frame) Local(base Base) AABox {
	return AABox{
		Base:   base,
		Width:  f.HalfExtents[0] * 2,
		Height: f.HalfExtents[1] * 2,
		Depth:  f.HalfExtents[2] * 2,
	}
}

func corners(center mgl64.Vec3, orientation mgl64.Quat, half mgl64.Vec3) [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	for i := range out {
		offset := half
		if i&1 == 0 {
			offset[0] = -offset[0]
		}
		if i&2 == 0 {
			offset[1] = -offset[1]
		}
		if i&4 == 0 {
			offset[2] = -offset[2]
		}
		out[i] = center.Add(orientation.Rotate(offset))
	}
	return out
}

// =============================================================================
// Sphere
// =============================================================================

// Sphere is a ball given by its center and radius.
type Sphere struct {
	Base
	Center mgl64.Vec3
	Radius float64
}

func (Sphere) Kind() Kind { return KindSphere }

func (s Sphere) Bounds() AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

// Place maps the center through t. The radius grows with the largest
// world scale component so that the sphere still encloses its scaled
// volume.
func (s Sphere) Place(t *transform.Transform) Collider {
	s.Center = t.TransformPoint(s.Center)
	s.Radius *= maxAbs(t.ScaleGlobal())
	return s
}
