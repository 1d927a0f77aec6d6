// Package collision implements the pairwise collider tests.
//
// Every ordered pair of collider kinds has an entry in a capability table.
// Each unordered pair has one canonical test; the reversed entry calls it
// with its arguments swapped and returns its contact as is, so the contact
// is always labeled in the canonical order (sphere first, then plane).
//
// Box/box, box/aabox, aabox/aabox, box-or-aabox/triangle and
// triangle/triangle have no test and never collide.
package collision

import (
	"github.com/akmonengine/kinema/collider"
	"github.com/go-gl/mathgl/mgl64"
)

// Contact describes where two colliders touch.
type Contact struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	// Depth is how far the colliders overlap along Normal, zero when they
	// just touch.
	Depth float64
	// HasPoint is false for pairs that detect an overlap without building
	// a contact point (plane/triangle).
	HasPoint bool
}

type pairTest func(a, b collider.Collider) (Contact, bool)

type entry struct {
	test pairTest
	// stillGate skips the pair in CheckContact when both sides are still.
	stillGate bool
}

var table [collider.KindCount][collider.KindCount]entry

func init() {
	register(collider.KindSphere, collider.KindSphere, typed(sphereSphere), true)
	register(collider.KindSphere, collider.KindPlane, typed(spherePlane), true)
	register(collider.KindSphere, collider.KindAABox, typed(sphereAABox), true)
	register(collider.KindSphere, collider.KindBox, typed(sphereBox), true)
	register(collider.KindSphere, collider.KindTriangle, typed(sphereTriangle), true)

	register(collider.KindPlane, collider.KindPlane, typed(planePlane), false)
	register(collider.KindPlane, collider.KindAABox, typed(planeAABox), true)
	register(collider.KindPlane, collider.KindBox, typed(planeBox), true)
	register(collider.KindPlane, collider.KindTriangle, typed(planeTriangle), false)
}

// register installs the canonical test for (a, b) and its swapped twin.
func register(a, b collider.Kind, test pairTest, stillGate bool) {
	table[a][b] = entry{test: test, stillGate: stillGate}
	if a != b {
		table[b][a] = entry{
			test: func(x, y collider.Collider) (Contact, bool) {
				return test(y, x)
			},
			stillGate: stillGate,
		}
	}
}

// typed adapts a test on concrete collider types to the table signature.
func typed[A, B collider.Collider](fn func(A, B) (Contact, bool)) pairTest {
	return func(a, b collider.Collider) (Contact, bool) {
		return fn(a.(A), b.(B))
	}
}

// Supported reports whether a real test exists for the pair.
func Supported(a, b collider.Kind) bool {
	return table[a][b].test != nil
}

// Check reports whether a and b intersect. Only the layer mask gates the
// test.
func Check(a, b collider.Collider) bool {
	if !a.Common().Layer.Interacts(b.Common().Layer) {
		return false
	}
	e := table[a.Kind()][b.Kind()]
	if e.test == nil {
		return false
	}
	_, ok := e.test(a, b)
	return ok
}

// CheckContact reports whether a and b intersect and where. On top of the
// layer mask, pairs of two still colliders are skipped for every pair
// involving a sphere and for plane/box pairs.
func CheckContact(a, b collider.Collider) (Contact, bool) {
	if !a.Common().Layer.Interacts(b.Common().Layer) {
		return Contact{}, false
	}
	e := table[a.Kind()][b.Kind()]
	if e.test == nil {
		return Contact{}, false
	}
	if e.stillGate && a.Common().Still && b.Common().Still {
		return Contact{}, false
	}
	return e.test(a, b)
}
