package kinema

import (
	"fmt"

	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/collider"
	"github.com/akmonengine/kinema/config"
	"github.com/akmonengine/kinema/transform"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Scene is a world built from a scene description, with its bodies
// reachable by name.
type Scene struct {
	World *World

	bodies map[string]*actor.RigidBody
}

// Body returns the body declared under name.
func (s *Scene) Body(name string) (*actor.RigidBody, bool) {
	body, ok := s.bodies[name]
	return body, ok
}

// BuildScene validates cfg and creates its world and bodies. Parents are
// linked once every body exists, keeping the declared poses local to the
// parent.
func BuildScene(cfg *config.Scene, logger *zap.Logger) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	scene := &Scene{
		World:  NewWorld(cfg.World, logger),
		bodies: make(map[string]*actor.RigidBody, len(cfg.Bodies)),
	}

	for _, b := range cfg.Bodies {
		body := newBody(b)
		scene.World.AddBody(body)
		if b.Name != "" {
			scene.bodies[b.Name] = body
		}
	}

	for _, b := range cfg.Bodies {
		if b.Parent == "" {
			continue
		}
		child, parent := scene.bodies[b.Name], scene.bodies[b.Parent]
		if err := child.Transform.SetParent(parent.Transform, false); err != nil {
			return nil, fmt.Errorf("build scene: body %q: %w", b.Name, err)
		}
	}

	logger.Info("scene built",
		zap.Int("bodies", len(scene.World.Bodies)),
		zap.Int("substeps", scene.World.Substeps),
		zap.Int("workers", scene.World.Workers),
	)
	return scene, nil
}

func newBody(b config.Body) *actor.RigidBody {
	t := transform.New()
	t.SetPosition(mgl64.Vec3(b.Position))
	t.SetOrientationEuler(b.Rotation[0], b.Rotation[1], b.Rotation[2])
	if b.Scale != nil {
		t.SetScale(mgl64.Vec3(*b.Scale))
	}

	bodyType := actor.BodyTypeDynamic
	if b.Type == config.BodyStatic {
		bodyType = actor.BodyTypeStatic
	}

	body := actor.NewRigidBody(t, newCollider(b.Collider), bodyType, b.Mass)
	body.IsTrigger = b.Trigger
	body.Velocity = mgl64.Vec3(b.Velocity)
	body.AngularVelocity = mgl64.Vec3(b.AngularVelocity)

	m := b.Material
	body.Material.Restitution = m.Restitution
	if m.Friction != nil {
		body.Material.Friction = *m.Friction
	}
	body.Material.RollResistance = m.RollResistance
	body.Material.LinearDamping = m.LinearDamping
	body.Material.AngularDamping = m.AngularDamping

	return body
}

// newCollider builds a validated collider description.
func newCollider(c config.Collider) collider.Collider {
	base := collider.Base{Layer: collider.Layer(c.Layer)}
	if base.Layer == 0 {
		base.Layer = collider.DefaultLayer
	}

	switch c.Shape {
	case config.ShapeSphere:
		return collider.Sphere{Base: base, Center: mgl64.Vec3(c.Center), Radius: c.Radius}
	case config.ShapePlane:
		normal := mgl64.Vec3(c.Normal)
		return collider.Plane{Base: base, Normal: normal.Normalize(), D: c.D / normal.Len()}
	case config.ShapeBox:
		return collider.Box{Base: base, Width: c.Size[0], Height: c.Size[1], Depth: c.Size[2]}
	case config.ShapeAABox:
		return collider.AABox{Base: base, Center: mgl64.Vec3(c.Center), Width: c.Size[0], Height: c.Size[1], Depth: c.Size[2]}
	default:
		return collider.Triangle{
			Base: base,
			V0:   mgl64.Vec3(c.Vertices[0]),
			V1:   mgl64.Vec3(c.Vertices[1]),
			V2:   mgl64.Vec3(c.Vertices[2]),
			CCW:  c.CCW,
		}
	}
}
