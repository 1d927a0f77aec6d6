package kinema

import (
	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/collider"
	"github.com/go-gl/mathgl/mgl64"
)

type RaycastHit struct {
	Body     *actor.RigidBody
	Point    mgl64.Vec3
	Distance float64
}

// Raycast returns the closest body hit by ray within maxDistance. Trigger
// bodies are transparent to rays.
func (w *World) Raycast(ray collider.Ray, maxDistance float64) (RaycastHit, bool) {
	closestHit := RaycastHit{Distance: maxDistance}
	hit := false

	for _, body := range w.Bodies {
		if body.IsTrigger {
			continue
		}

		point, ok := intersect(ray, body.WorldCollider())
		if !ok {
			continue
		}
		if distance := point.Sub(ray.Origin()).Len(); distance <= closestHit.Distance {
			closestHit = RaycastHit{Body: body, Point: point, Distance: distance}
			hit = true
		}
	}

	return closestHit, hit
}

// intersect returns the first point of c met by ray.
func intersect(ray collider.Ray, c collider.Collider) (mgl64.Vec3, bool) {
	switch shape := c.(type) {
	case collider.Sphere:
		entry, _, ok := ray.IntersectSphere(shape)
		return entry, ok
	case collider.Plane:
		return ray.IntersectPlane(shape)
	case collider.AABox:
		return ray.IntersectAABox(shape)
	case collider.Box:
		return ray.IntersectBox(shape)
	case collider.Triangle:
		return ray.IntersectTriangle(shape, false)
	default:
		return mgl64.Vec3{}, false
	}
}
