package collision

import (
	"math"

	"github.com/akmonengine/kinema/collider"
	"github.com/go-gl/mathgl/mgl64"
)

var fallbackNormal = mgl64.Vec3{1, 0, 0}

// sphereSphere: the centers are at most the sum of the radii apart. The
// contact point sits inside A, halfway through the overlap, and the normal
// points from A to B.
func sphereSphere(a, b collider.Sphere) (Contact, bool) {
	delta := b.Center.Sub(a.Center)
	d := delta.Len()
	if d > a.Radius+b.Radius {
		return Contact{}, false
	}

	dir := fallbackNormal
	if d > collider.Epsilon {
		dir = delta.Mul(1 / d)
	}
	depth := a.Radius + b.Radius - d
	return Contact{
		Point:    a.Center.Add(dir.Mul(a.Radius - depth/2)),
		Normal:   dir,
		Depth:    depth,
		HasPoint: true,
	}, true
}

// spherePlane treats the plane as a half-space: any sphere whose center is
// less than its radius above the plane collides. The contact point is the
// center projected onto the plane.
func spherePlane(s collider.Sphere, p collider.Plane) (Contact, bool) {
	normal := p.Normal.Normalize()
	d := p.SignedDistance(s.Center)
	if d > s.Radius {
		return Contact{}, false
	}
	return Contact{
		Point:    s.Center.Sub(normal.Mul(d)),
		Normal:   normal,
		Depth:    s.Radius - d,
		HasPoint: true,
	}, true
}

// sphereAABox compares the distance from the center to the nearest point
// of the box with the radius. The normal points from the box surface to the
// center.
func sphereAABox(s collider.Sphere, b collider.AABox) (Contact, bool) {
	bounds := b.Bounds()
	nearest := mgl64.Vec3{
		mgl64.Clamp(s.Center[0], bounds.Min[0], bounds.Max[0]),
		mgl64.Clamp(s.Center[1], bounds.Min[1], bounds.Max[1]),
		mgl64.Clamp(s.Center[2], bounds.Min[2], bounds.Max[2]),
	}

	delta := s.Center.Sub(nearest)
	d := delta.Len()
	if d > s.Radius {
		return Contact{}, false
	}

	normal := fallbackNormal
	if d > 0 {
		normal = delta.Mul(1 / d)
	}
	return Contact{Point: nearest, Normal: normal, Depth: s.Radius - d, HasPoint: true}, true
}

// sphereBox runs sphereAABox in the frame of the box.
func sphereBox(s collider.Sphere, b collider.Box) (Contact, bool) {
	f := b.Frame()

	// cheap rejection on the enclosing sphere of the box
	if s.Center.Sub(f.Center).Len() > f.HalfExtents.Len()+s.Radius {
		return Contact{}, false
	}

	local := s
	local.Center = f.ToLocal(s.Center)
	contact, ok := sphereAABox(local, f.Local(b.Base))
	if !ok {
		return Contact{}, false
	}
	contact.Point = f.ToWorld(contact.Point)
	contact.Normal = f.DirectionToWorld(contact.Normal)
	return contact, true
}

// sphereTriangle casts each triangle edge as a finite segment through the
// sphere and averages every crossing found. Vertices inside the sphere
// also count. A sphere touching only the inside of the face is no hit. The
// normal is the face normal.
func sphereTriangle(s collider.Sphere, tri collider.Triangle) (Contact, bool) {
	v0, v1, v2 := tri.Vertices()
	normal := tri.Normal()

	dist := s.Center.Sub(v0).Dot(normal)

	var sum mgl64.Vec3
	hits := 0
	add := func(p mgl64.Vec3) {
		sum = sum.Add(p)
		hits++
	}

	r2 := s.Radius * s.Radius
	for _, edge := range [3][2]mgl64.Vec3{{v0, v1}, {v1, v2}, {v2, v0}} {
		from, to := edge[0], edge[1]
		if from.Sub(s.Center).LenSqr() <= r2 {
			add(from)
		}

		length := to.Sub(from).Len()
		ray := collider.NewRay(from, to.Sub(from))
		for _, t := range ray.SegmentSphere(s, length) {
			add(ray.PointAt(t))
		}
	}

	if hits == 0 {
		return Contact{}, false
	}
	return Contact{
		Point:    sum.Mul(1 / float64(hits)),
		Normal:   normal,
		Depth:    math.Max(0, s.Radius-math.Abs(dist)),
		HasPoint: true,
	}, true
}
