package collider

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line. The direction is kept normalized.
type Ray struct {
	origin    mgl64.Vec3
	direction mgl64.Vec3
}

// NewRay creates a ray, normalizing direction. A zero direction yields a
// non-finite ray.
func NewRay(origin, direction mgl64.Vec3) Ray {
	return Ray{origin: origin, direction: direction.Normalize()}
}

func (r Ray) Origin() mgl64.Vec3    { return r.origin }
func (r Ray) Direction() mgl64.Vec3 { return r.direction }

func (r *Ray) SetOrigin(origin mgl64.Vec3) {
	r.origin = origin
}

// SetDirection replaces the direction, normalizing it.
func (r *Ray) SetDirection(direction mgl64.Vec3) {
	r.direction = direction.Normalize()
}

// PointAt returns origin + t*direction.
func (r Ray) PointAt(t float64) mgl64.Vec3 {
	return r.origin.Add(r.direction.Mul(t))
}

// IntersectPlane returns where the ray meets the plane. A ray parallel to
// the plane only hits when its origin lies in it.
func (r Ray) IntersectPlane(p Plane) (mgl64.Vec3, bool) {
	denom := p.Normal.Dot(r.direction)
	if math.Abs(denom) < Epsilon {
		if math.Abs(p.Normal.Dot(r.origin)-p.D) < Epsilon {
			return r.origin, true
		}
		return mgl64.Vec3{}, false
	}

	t := (p.D - p.Normal.Dot(r.origin)) / denom
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	return r.PointAt(t), true
}

// IntersectTriangle runs Möller–Trumbore against tri. With cullFaces, a
// triangle whose front face points away from the ray is never hit.
func (r Ray) IntersectTriangle(tri Triangle, cullFaces bool) (mgl64.Vec3, bool) {
	v0, v1, v2 := tri.Vertices()
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)

	p := r.direction.Cross(e2)
	det := e1.Dot(p)
	if cullFaces && det < Epsilon {
		return mgl64.Vec3{}, false
	}
	if math.Abs(det) < Epsilon {
		return mgl64.Vec3{}, false
	}
	inv := 1 / det

	s := r.origin.Sub(v0)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return mgl64.Vec3{}, false
	}

	q := s.Cross(e1)
	v := r.direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return mgl64.Vec3{}, false
	}

	t := e2.Dot(q) * inv
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	return r.PointAt(t), true
}

// IntersectAABox returns the entry point of the ray into the box. A ray
// starting inside the box hits at its origin.
func (r Ray) IntersectAABox(b AABox) (mgl64.Vec3, bool) {
	half := b.HalfExtents()
	delta := r.origin.Sub(b.Center)

	if math.Abs(delta[0]) <= half[0] && math.Abs(delta[1]) <= half[1] && math.Abs(delta[2]) <= half[2] {
		return r.origin, true
	}

	best := math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		// only faces turned towards the origin can be entered
		if math.Abs(delta[axis]) <= half[axis] || r.direction[axis] == 0 {
			continue
		}
		face := b.Center[axis] + math.Copysign(half[axis], delta[axis])
		t := (face - r.origin[axis]) / r.direction[axis]
		if t < 0 || t >= best {
			continue
		}

		hit := r.PointAt(t)
		inside := true
		for other := 0; other < 3; other++ {
			if other != axis && math.Abs(hit[other]-b.Center[other]) > half[other]+Epsilon {
				inside = false
				break
			}
		}
		if inside {
			best = t
		}
	}

	if math.IsInf(best, 1) {
		return mgl64.Vec3{}, false
	}
	return r.PointAt(best), true
}

// IntersectBox moves the ray into the box frame, runs the axis-aligned test
// and maps the hit back to world space.
func (r Ray) IntersectBox(b Box) (mgl64.Vec3, bool) {
	f := b.Frame()
	local := Ray{origin: f.ToLocal(r.origin), direction: f.DirectionToLocal(r.direction)}

	hit, ok := local.IntersectAABox(f.Local(b.Base))
	if !ok {
		return mgl64.Vec3{}, false
	}
	return f.ToWorld(hit), true
}

// IntersectSphere returns the entry and exit points of the ray through s.
// A ray starting inside the sphere enters at its origin.
func (r Ray) IntersectSphere(s Sphere) (entry, exit mgl64.Vec3, ok bool) {
	t0, t1, ok := r.sphereRoots(s)
	if !ok {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return r.PointAt(t0), r.PointAt(t1), true
}

// sphereRoots returns the ray parameters of the entry and exit points,
// with the entry clamped to 0 for an origin inside the sphere.
func (r Ray) sphereRoots(s Sphere) (float64, float64, bool) {
	l := r.origin.Sub(s.Center)
	b := l.Dot(r.direction)
	c := l.Dot(l) - s.Radius*s.Radius

	disc := b*b - c
	if disc < 0 {
		return 0, 0, false
	}
	root := math.Sqrt(disc)
	t0, t1 := -b-root, -b+root

	if c <= 0 {
		return 0, t1, true
	}
	if t0 < 0 {
		return 0, 0, false
	}
	return t0, t1, true
}

// SegmentSphere returns the parameters in [0, length] where the segment
// starting at the ray origin crosses the sphere surface.
func (r Ray) SegmentSphere(s Sphere, length float64) []float64 {
	l := r.origin.Sub(s.Center)
	b := l.Dot(r.direction)
	c := l.Dot(l) - s.Radius*s.Radius

	disc := b*b - c
	if disc < 0 {
		return nil
	}
	root := math.Sqrt(disc)

	var out []float64
	for _, t := range [2]float64{-b - root, -b + root} {
		if t >= 0 && t <= length {
			out = append(out, t)
		}
	}
	return out
}
