package constraint

import (
	"math"

	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/collider"
	"github.com/akmonengine/kinema/collision"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// BounceThreshold is the approach speed (m/s) above which a body hitting
	// an immovable one is reflected. Slower contacts are resting: only the
	// approaching part of the velocity is cancelled.
	BounceThreshold = 0.5

	penetrationSlop = 1e-8
)

// ContactConstraint is the response to one contact between two bodies.
type ContactConstraint struct {
	BodyA   *actor.RigidBody
	BodyB   *actor.RigidBody
	Contact collision.Contact
}

// Resolve separates the bodies, then applies bounce and friction.
func (c *ContactConstraint) Resolve(dt float64) {
	c.SolvePosition(dt)
	c.SolveVelocity(dt)
}

// SolvePosition pushes the bodies apart along the contact normal. The depth
// is shared in proportion to the inverse masses, so static bodies never
// move.
func (c *ContactConstraint) SolvePosition(dt float64) {
	depth := c.Contact.Depth
	if depth <= penetrationSlop {
		return
	}
	if c.BodyA.IsSleeping && c.BodyB.IsSleeping {
		return
	}

	invMassA := c.BodyA.InverseMass()
	invMassB := c.BodyB.InverseMass()
	totalWeight := invMassA + invMassB
	if totalWeight <= 0 {
		return
	}

	if invMassA > 0 {
		n := c.outward(c.BodyA, c.BodyB)
		c.BodyA.Transform.TranslateGlobal(n.Mul(depth * invMassA / totalWeight))
	}
	if invMassB > 0 {
		n := c.outward(c.BodyB, c.BodyA)
		c.BodyB.Transform.TranslateGlobal(n.Mul(depth * invMassB / totalWeight))
	}
}

// SolveVelocity applies restitution and friction.
//
// Against an immovable body, a fast enough approach is mirrored with
// RigidBody.Reflect, damped by 1-restitution. Between two dynamic bodies the
// approaching speed is exchanged through an impulse along the normal. In
// both cases the normal impulse then presses the friction.
func (c *ContactConstraint) SolveVelocity(dt float64) {
	if c.BodyA.IsSleeping && c.BodyB.IsSleeping {
		return
	}

	restitution := ComputeRestitution(c.BodyA.Material, c.BodyB.Material)
	friction := ComputeFriction(c.BodyA.Material, c.BodyB.Material)

	invMassA := c.BodyA.InverseMass()
	invMassB := c.BodyB.InverseMass()

	switch {
	case invMassA > 0 && invMassB > 0:
		c.exchange(restitution, friction)
	case invMassA > 0:
		c.againstImmovable(c.BodyA, c.BodyB, restitution, friction)
	case invMassB > 0:
		c.againstImmovable(c.BodyB, c.BodyA, restitution, friction)
	}
}

func (c *ContactConstraint) againstImmovable(body, other *actor.RigidBody, restitution, friction float64) {
	n := c.outward(body, other)
	normalVel := body.Velocity.Dot(n)
	if normalVel >= 0 {
		return
	}

	mass := body.Material.GetMass()
	leverage := c.leverage(body)

	var impulse float64
	if -normalVel > BounceThreshold {
		impulse = (1 + restitution) * mass * -normalVel
		body.Reflect(n, 1-restitution, 0, mgl64.Vec3{})
	} else {
		// resting: the body is not woken up, so that it can fall asleep
		impulse = mass * -normalVel
		body.Velocity = body.Velocity.Sub(n.Mul(normalVel))
	}

	applyFriction(body, n.Mul(impulse), leverage, friction)
	clampSmallVelocities(body)
}

func (c *ContactConstraint) exchange(restitution, friction float64) {
	bodyA, bodyB := c.BodyA, c.BodyB

	// from A to B
	n := c.outward(bodyB, bodyA)
	relativeVel := bodyB.Velocity.Sub(bodyA.Velocity).Dot(n)
	if relativeVel >= 0 {
		return
	}

	invMassA := bodyA.InverseMass()
	invMassB := bodyB.InverseMass()
	lambdaNormal := -(1 + restitution) * relativeVel / (invMassA + invMassB)

	leverageA := c.leverage(bodyA)
	leverageB := c.leverage(bodyB)
	bodyA.ApplyForce(n.Mul(-lambdaNormal), leverageA)
	bodyB.ApplyForce(n.Mul(lambdaNormal), leverageB)

	applyFriction(bodyA, n.Mul(lambdaNormal), leverageA, friction)
	applyFriction(bodyB, n.Mul(lambdaNormal), leverageB, friction)

	clampSmallVelocities(bodyA)
	clampSmallVelocities(bodyB)
}

// applyFriction runs RigidBody.ApplyFriction with the pair's combined
// coefficient: the body scales the pressure by its own coefficient, so the
// pressure is rescaled beforehand.
func applyFriction(body *actor.RigidBody, normalImpulse, leverage mgl64.Vec3, friction float64) {
	own := body.Material.Friction
	if own <= 0 {
		body.ApplyFriction(normalImpulse, leverage, 0)
		return
	}
	body.ApplyFriction(normalImpulse.Mul(friction/own), leverage, 0)
}

// outward returns the contact normal oriented away from other, as seen by
// body. Planes are half-spaces: their normal always wins. Otherwise the
// normal is flipped to point from the contact point towards body's center.
func (c *ContactConstraint) outward(body, other *actor.RigidBody) mgl64.Vec3 {
	n := c.Contact.Normal
	if other.Collider.Kind() == collider.KindPlane {
		return n
	}
	if body.Collider.Kind() == collider.KindPlane {
		return n.Mul(-1)
	}

	var side float64
	if c.Contact.HasPoint {
		side = n.Dot(body.Position().Sub(c.Contact.Point))
	}
	if math.Abs(side) < collider.Epsilon {
		side = n.Dot(body.Position().Sub(other.Position()))
	}
	if side < 0 {
		return n.Mul(-1)
	}
	return n
}

// leverage runs from the contact point to body's center, zero when the
// contact has no point.
func (c *ContactConstraint) leverage(body *actor.RigidBody) mgl64.Vec3 {
	if !c.Contact.HasPoint {
		return mgl64.Vec3{}
	}
	return body.Position().Sub(c.Contact.Point)
}
