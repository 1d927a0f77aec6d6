package actor

import (
	"math"

	"github.com/akmonengine/kinema/collider"
	"github.com/go-gl/mathgl/mgl64"
)

// InertiaShape selects a closed-form inertia tensor.
type InertiaShape int

const (
	InertiaShapeSphere InertiaShape = iota
	InertiaShapeEllipsoid
	InertiaShapeCuboid
	InertiaShapeRodCenter
	InertiaShapeRodEnd
	InertiaShapeCylinder
)

// GenerateInertiaTensor dispatches to the tensor of the given shape. The
// meaning of the dimensions depends on the shape: widthOrRadius is the
// radius, first semi-axis, width or rod length; depthOrCutout is the third
// semi-axis, the depth or the inner radius of a hollow cylinder.
func GenerateInertiaTensor(shape InertiaShape, widthOrRadius, height, depthOrCutout, mass float64) mgl64.Mat3 {
	switch shape {
	case InertiaShapeSphere:
		return InertiaSphere(widthOrRadius, mass)
	case InertiaShapeEllipsoid:
		return InertiaEllipsoid(widthOrRadius, height, depthOrCutout, mass)
	case InertiaShapeCuboid:
		return InertiaCuboid(widthOrRadius, height, depthOrCutout, mass)
	case InertiaShapeRodCenter:
		return InertiaRodAboutCenter(widthOrRadius, mass)
	case InertiaShapeRodEnd:
		return InertiaRodAboutEnd(widthOrRadius, mass)
	case InertiaShapeCylinder:
		return InertiaCylinder(widthOrRadius, height, depthOrCutout, mass)
	default:
		return mgl64.Ident3()
	}
}

// InertiaSphere is the tensor of a solid sphere: 2/5 m r² on the diagonal.
func InertiaSphere(r, mass float64) mgl64.Mat3 {
	i := (2.0 / 5.0) * mass * r * r
	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

// InertiaEllipsoid is the tensor of a solid ellipsoid with semi-axes a, b
// and c along x, y and z.
func InertiaEllipsoid(a, b, c, mass float64) mgl64.Mat3 {
	m := mass / 5.0
	return mgl64.Diag3(mgl64.Vec3{
		m * (b*b + c*c),
		m * (a*a + c*c),
		m * (a*a + b*b),
	})
}

// InertiaCuboid is the tensor of a solid box of full dimensions a, b and c
// along x, y and z.
func InertiaCuboid(a, b, c, mass float64) mgl64.Mat3 {
	m := mass / 12.0
	return mgl64.Diag3(mgl64.Vec3{
		m * (b*b + c*c),
		m * (a*a + c*c),
		m * (a*a + b*b),
	})
}

// InertiaRodAboutCenter is the tensor of a thin rod along y spinning about
// its middle. It is singular: the rod has no inertia about its own axis.
func InertiaRodAboutCenter(length, mass float64) mgl64.Mat3 {
	i := mass / 12.0 * length * length
	return mgl64.Diag3(mgl64.Vec3{i, 0, i})
}

// InertiaRodAboutEnd is the tensor of a thin rod along y spinning about one
// end.
func InertiaRodAboutEnd(length, mass float64) mgl64.Mat3 {
	i := mass / 3.0 * length * length
	return mgl64.Diag3(mgl64.Vec3{i, 0, i})
}

// InertiaCylinder is the tensor of a cylinder along z. A non-zero inner
// radius makes it a thick-walled tube.
func InertiaCylinder(r, height, innerRadius, mass float64) mgl64.Mat3 {
	radial := r*r + innerRadius*innerRadius
	side := mass / 12.0 * (3*radial + height*height)
	return mgl64.Diag3(mgl64.Vec3{side, side, mass / 2.0 * radial})
}

// ComputeInertia picks the tensor matching a collider's shape. Triangles
// and planes are approximated by the box of their bounds, or a unit sphere
// when unbounded.
func ComputeInertia(c collider.Collider, mass float64) mgl64.Mat3 {
	switch v := c.(type) {
	case collider.Sphere:
		return InertiaSphere(v.Radius, mass)
	case collider.AABox:
		return InertiaCuboid(v.Width, v.Height, v.Depth, mass)
	case collider.Box:
		return InertiaCuboid(v.Width, v.Height, v.Depth, mass)
	}

	bounds := c.Bounds()
	if bounds.IsUnbounded() {
		return InertiaSphere(1, mass)
	}
	size := bounds.Max.Sub(bounds.Min)
	return InertiaCuboid(size[0], size[1], size[2], mass)
}

// Volume returns the volume enclosed by a collider, zero for planes and
// triangles.
func Volume(c collider.Collider) float64 {
	switch v := c.(type) {
	case collider.Sphere:
		return 4.0 / 3.0 * math.Pi * v.Radius * v.Radius * v.Radius
	case collider.AABox:
		return v.Width * v.Height * v.Depth
	case collider.Box:
		return v.Width * v.Height * v.Depth
	default:
		return 0
	}
}
