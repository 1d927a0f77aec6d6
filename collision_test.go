package kinema

import (
	"testing"

	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/collider"
	"github.com/akmonengine/kinema/transform"
	"github.com/go-gl/mathgl/mgl64"
)

func createTestSphere(position mgl64.Vec3, radius float64) *actor.RigidBody {
	t := transform.New()
	t.SetPosition(position)

	return actor.NewRigidBody(
		t,
		collider.Sphere{Base: collider.Base{Layer: collider.DefaultLayer}, Radius: radius},
		actor.BodyTypeDynamic,
		1.0,
	)
}

func TestProxies(t *testing.T) {
	sphere := createTestSphere(mgl64.Vec3{1, 2, 3}, 0.5)
	plane := createTestPlane()

	proxies := Proxies([]*actor.RigidBody{sphere, plane})

	if len(proxies) != 2 {
		t.Fatalf("Expected 2 proxies, got %d", len(proxies))
	}
	placed, ok := proxies[0].Collider.(collider.Sphere)
	if !ok {
		t.Fatalf("Expected a sphere collider, got %v", proxies[0].Collider.Kind())
	}
	if placed.Center != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("Placed center = %v, want (1,2,3)", placed.Center)
	}
	if proxies[0].Bounds.Min != (mgl64.Vec3{0.5, 1.5, 2.5}) || proxies[0].Bounds.Max != (mgl64.Vec3{1.5, 2.5, 3.5}) {
		t.Errorf("Bounds = %+v", proxies[0].Bounds)
	}
	if !proxies[1].Bounds.IsUnbounded() {
		t.Error("Plane proxy should be unbounded")
	}
}

func TestBroadPhase_ClearsPreviousStep(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)
	bodyA := createTestSphere(mgl64.Vec3{0, 0, 0}, 0.5)
	bodyB := createTestSphere(mgl64.Vec3{0.8, 0, 0}, 0.5)
	bodies := []*actor.RigidBody{bodyA, bodyB}

	if pairs := BroadPhase(grid, Proxies(bodies)); len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(pairs))
	}

	bodyB.Transform.SetPosition(mgl64.Vec3{10, 0, 0})
	if pairs := BroadPhase(grid, Proxies(bodies)); len(pairs) != 0 {
		t.Errorf("Expected 0 pairs after moving apart, got %d", len(pairs))
	}
}

func TestNarrowPhase(t *testing.T) {
	// Bounds overlap for every pair, only some shapes touch
	ground := createTestPlane()
	resting := createTestSphere(mgl64.Vec3{0, 0.9, 0}, 1)
	flying := createTestSphere(mgl64.Vec3{5, 3, 0}, 1)
	near := createTestSphere(mgl64.Vec3{6.5, 3, 0}, 1)
	corner := createTestSphere(mgl64.Vec3{20, 20, 0}, 1)
	diagonal := createTestSphere(mgl64.Vec3{21.8, 21.8, 0}, 1)

	bodies := []*actor.RigidBody{ground, resting, flying, near, corner, diagonal}

	for _, workers := range []int{1, 2, 4, 16} {
		pairs := BroadPhase(NewSpatialGrid(1.0, 256), Proxies(bodies))
		constraints := NarrowPhase(pairs, workers)

		// ground-resting, flying-near; corner-diagonal only share bounds
		if len(constraints) != 2 {
			t.Fatalf("workers=%d: expected 2 contacts, got %d", workers, len(constraints))
		}
		if constraints[0].BodyA != ground || constraints[0].BodyB != resting {
			t.Errorf("workers=%d: contacts should keep the pair order", workers)
		}
		if constraints[1].BodyA != flying || constraints[1].BodyB != near {
			t.Errorf("workers=%d: unexpected second contact", workers)
		}
		if depth := constraints[0].Contact.Depth; depth < 0.1-1e-9 || depth > 0.1+1e-9 {
			t.Errorf("workers=%d: depth = %v, want 0.1", workers, depth)
		}
	}
}

func TestNarrowPhase_Empty(t *testing.T) {
	if constraints := NarrowPhase(nil, 4); len(constraints) != 0 {
		t.Errorf("Expected no contacts, got %d", len(constraints))
	}
}
