package collision

import (
	"math"

	"github.com/akmonengine/kinema/collider"
	"github.com/go-gl/mathgl/mgl64"
)

// planePlane: non-parallel planes always meet along a line and the contact
// point is the point of that line lying in the coordinate plane its
// direction crosses most steeply. Parallel planes only collide when they
// coincide, normals flipped or not.
func planePlane(a, b collider.Plane) (Contact, bool) {
	na, da := normalized(a)
	nb, db := normalized(b)

	dir := nb.Cross(na)
	if dir.Len() < collider.Epsilon {
		same := na.ApproxEqualThreshold(nb, collider.Epsilon) && math.Abs(da-db) < collider.Epsilon
		flipped := na.ApproxEqualThreshold(nb.Mul(-1), collider.Epsilon) && math.Abs(da+db) < collider.Epsilon
		if !same && !flipped {
			return Contact{}, false
		}
		return Contact{Point: na.Mul(da), Normal: na, HasPoint: true}, true
	}

	// zero the coordinate along the dominant direction component and solve
	// both plane equations for the other two
	k := 0
	for axis := 1; axis < 3; axis++ {
		if math.Abs(dir[axis]) > math.Abs(dir[k]) {
			k = axis
		}
	}
	i, j := (k+1)%3, (k+2)%3

	det := na[i]*nb[j] - na[j]*nb[i]
	var point mgl64.Vec3
	point[i] = (da*nb[j] - db*na[j]) / det
	point[j] = (na[i]*db - nb[i]*da) / det

	return Contact{Point: point, Normal: na, HasPoint: true}, true
}

func planeAABox(p collider.Plane, b collider.AABox) (Contact, bool) {
	return planeCorners(p, b.Corners())
}

func planeBox(p collider.Plane, b collider.Box) (Contact, bool) {
	return planeCorners(p, b.Corners())
}

// planeCorners classifies the eight box corners against the plane. A box
// with corners on both sides collides; the contact point is the average of
// the points where its edges cross the plane and the depth is how far the
// deepest corner sits behind it.
func planeCorners(p collider.Plane, corners [8]mgl64.Vec3) (Contact, bool) {
	var dist [8]float64
	var front [8]bool
	allFront, allBack := true, true
	deepest := 0.0
	for i, c := range corners {
		dist[i] = p.SignedDistance(c)
		deepest = math.Min(deepest, dist[i])
		front[i] = dist[i] >= 0
		allFront = allFront && front[i]
		allBack = allBack && !front[i]
	}
	if allFront || allBack {
		return Contact{}, false
	}

	var sum mgl64.Vec3
	hits := 0
	for i := range corners {
		for bit := 0; bit < 3; bit++ {
			// corners one bit apart share an edge; i < j visits it once
			j := i ^ (1 << bit)
			if j < i || front[i] == front[j] {
				continue
			}
			t := dist[i] / (dist[i] - dist[j])
			sum = sum.Add(corners[i].Add(corners[j].Sub(corners[i]).Mul(t)))
			hits++
		}
	}

	return Contact{
		Point:    sum.Mul(1 / float64(hits)),
		Normal:   p.Normal.Normalize(),
		Depth:    -deepest,
		HasPoint: true,
	}, true
}

// planeTriangle only classifies the vertices: a triangle with vertices on
// both sides of the plane, or touching it, collides. No contact point is
// built.
func planeTriangle(p collider.Plane, tri collider.Triangle) (Contact, bool) {
	d0 := p.SignedDistance(tri.V0)
	d1 := p.SignedDistance(tri.V1)
	d2 := p.SignedDistance(tri.V2)

	if (d0 > 0 && d1 > 0 && d2 > 0) || (d0 < 0 && d1 < 0 && d2 < 0) {
		return Contact{}, false
	}
	return Contact{
		Normal: p.Normal.Normalize(),
		Depth:  -math.Min(0, math.Min(d0, math.Min(d1, d2))),
	}, true
}

// normalized returns the unit normal and matching offset of p.
func normalized(p collider.Plane) (mgl64.Vec3, float64) {
	l := p.Normal.Len()
	return p.Normal.Mul(1 / l), p.D / l
}
