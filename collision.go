package kinema

import (
	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/collision"
	"github.com/akmonengine/kinema/constraint"
)

// Proxies places the collider of every body at its current pose. Transform
// caches are revalidated here, sequentially, so that the parallel phases
// after it only read them.
func Proxies(bodies []*actor.RigidBody) []Proxy {
	proxies := make([]Proxy, len(bodies))
	for i, body := range bodies {
		c := body.WorldCollider()
		proxies[i] = Proxy{Body: body, Collider: c, Bounds: c.Bounds()}
	}
	return proxies
}

// BroadPhase performs broad-phase collision detection using the spatial grid.
// It returns pairs of bodies whose bounds overlap and might be colliding.
func BroadPhase(spatialGrid *SpatialGrid, proxies []Proxy) []Pair {
	spatialGrid.Clear()
	for i, proxy := range proxies {
		spatialGrid.Insert(i, proxy.Bounds)
	}
	spatialGrid.SortCells()

	return spatialGrid.FindPairs(proxies)
}

// NarrowPhase runs the exact test of every pair, spread over workersCount
// goroutines, and returns one constraint per pair in contact, in pair
// order.
func NarrowPhase(pairs []Pair, workersCount int) []*constraint.ContactConstraint {
	results := make([]*constraint.ContactConstraint, len(pairs))
	indices := make([]int, len(pairs))
	for i := range indices {
		indices[i] = i
	}

	task(workersCount, indices, func(i int) {
		p := pairs[i]
		if contact, ok := collision.CheckContact(p.ColliderA, p.ColliderB); ok {
			results[i] = &constraint.ContactConstraint{
				BodyA:   p.BodyA,
				BodyB:   p.BodyB,
				Contact: contact,
			}
		}
	})

	contacts := results[:0]
	for _, c := range results {
		if c != nil {
			contacts = append(contacts, c)
		}
	}
	return contacts
}
