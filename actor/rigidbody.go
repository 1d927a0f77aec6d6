package actor

import (
	"math"

	"github.com/akmonengine/kinema/collider"
	"github.com/akmonengine/kinema/transform"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

func (t BodyType) String() string {
	if t == BodyTypeStatic {
		return "static"
	}
	return "dynamic"
}

const (
	// DefaultFriction is the sliding friction coefficient of new bodies.
	DefaultFriction = 0.125

	velocityEpsilon = 1e-9
)

type Material struct {
	mass        float64
	Restitution float64 // 0= no rebound, 1= perfect restitution

	Friction       float64 // sliding friction coefficient
	RollResistance float64
	LinearDamping  float64 // 0.0 - 1.0, per second
	AngularDamping float64 // 0.0 - 1.0, per second
}

func (material Material) GetMass() float64 {
	return material.mass
}

// ContinuousForce is a force applied over a span of simulated time.
// Leverage is the offset from the point where the force acts to the center
// of mass. Torque is applied on top of the force's own moment.
type ContinuousForce struct {
	Force     mgl64.Vec3
	Leverage  mgl64.Vec3
	Torque    mgl64.Vec3
	Remaining float64
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	ID uuid.UUID

	// Pose, shared with the collider of box bodies
	Transform *transform.Transform

	// Linear motion
	Velocity mgl64.Vec3 // Linear velocity (m/s)

	// Angular motion
	AngularVelocity     mgl64.Vec3 // rad/s, world space
	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3

	forces []ContinuousForce

	IsSleeping bool
	SleepTimer float64

	// Triggers report overlaps but get no collision response.
	IsTrigger bool

	// Physical properties
	Material Material
	BodyType BodyType // Dynamic or Static

	// Collision shape, in body space
	Collider collider.Collider
}

// NewRigidBody creates a new rigid body with the given properties.
// mass is ignored for static bodies, which get an infinite mass and a still
// collider.
func NewRigidBody(t *transform.Transform, c collider.Collider, bodyType BodyType, mass float64) *RigidBody {
	if t == nil {
		t = transform.New()
	}
	rb := &RigidBody{
		ID:        uuid.New(),
		Transform: t,
		Collider:  c,
		BodyType:  bodyType,
		Material: Material{
			Friction: DefaultFriction,
		},
	}

	if bodyType == BodyTypeStatic {
		rb.Material.mass = math.Inf(1)
		rb.Collider = collider.WithBase(c, collider.Base{Layer: c.Common().Layer, Still: true})
		return rb
	}

	rb.Material.mass = mass
	rb.SetInertiaTensor(ComputeInertia(c, mass))
	return rb
}

// SetInertiaTensor replaces the body-space inertia tensor. A singular
// tensor leaves the body without angular response.
func (rb *RigidBody) SetInertiaTensor(inertia mgl64.Mat3) {
	rb.InertiaLocal = inertia
	rb.InverseInertiaLocal = inertia.Inv()
}

// InverseMass is zero for static bodies.
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType == BodyTypeStatic {
		return 0
	}
	return 1 / rb.Material.GetMass()
}

// Position returns the world-space center of the body.
func (rb *RigidBody) Position() mgl64.Vec3 {
	return rb.Transform.PositionGlobal()
}

// WorldCollider returns the collider placed at the body's current pose.
func (rb *RigidBody) WorldCollider() collider.Collider {
	return rb.Collider.Place(rb.Transform)
}

// Update advances the pose by the current velocities over delta seconds,
// then consumes up to delta seconds of every pending continuous force.
func (rb *RigidBody) Update(delta float64) {
	if rb.BodyType == BodyTypeStatic || rb.IsSleeping {
		return
	}

	rb.Transform.TranslateGlobal(rb.Velocity.Mul(delta))
	rb.rotateBy(rb.AngularVelocity.Mul(delta))

	pending := rb.forces[:0]
	for _, f := range rb.forces {
		t := math.Min(delta, f.Remaining)

		rb.ApplyForceOverPast(f.Force, t, f.Leverage)
		if f.Torque != (mgl64.Vec3{}) {
			rb.applyTorqueOverPast(f.Torque, t)
		}

		f.Remaining -= t
		if f.Remaining > 0 {
			pending = append(pending, f)
		}
	}
	clear(rb.forces[len(pending):])
	rb.forces = pending

	// ========== DAMPING ==========
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * delta))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * delta))
}

// rotateBy applies a world-space rotation vector (axis scaled by angle).
func (rb *RigidBody) rotateBy(rotation mgl64.Vec3) {
	angle := rotation.Len()
	if angle < velocityEpsilon {
		return
	}
	rb.Transform.RotateGlobal(mgl64.QuatRotate(angle, rotation.Mul(1/angle)))
}

// ApplyAcceleration changes the linear velocity at once.
func (rb *RigidBody) ApplyAcceleration(acc mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.Awake()
	rb.Velocity = rb.Velocity.Add(acc)
}

// ApplyAccelerationOverTime accelerates the body continuously for time
// seconds.
func (rb *RigidBody) ApplyAccelerationOverTime(acc mgl64.Vec3, time float64) {
	rb.enqueue(ContinuousForce{Force: acc.Mul(rb.Material.GetMass()), Remaining: time})
}

// ApplyAngularAcceleration changes the angular velocity at once.
func (rb *RigidBody) ApplyAngularAcceleration(acc mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.Awake()
	rb.AngularVelocity = rb.AngularVelocity.Add(acc)
}

// ApplyAngularAccelerationOverTime spins the body up continuously for time
// seconds.
func (rb *RigidBody) ApplyAngularAccelerationOverTime(acc mgl64.Vec3, time float64) {
	rb.enqueue(ContinuousForce{Torque: rb.GetInertiaWorld().Mul3x1(acc), Remaining: time})
}

// ApplyForce applies the impulse F, in world space, at once. The moment is
// F × leverage, leverage running from the point of application to the
// center of mass.
func (rb *RigidBody) ApplyForce(force, leverage mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.Awake()

	rb.Velocity = rb.Velocity.Add(force.Mul(1 / rb.Material.GetMass()))
	torque := force.Cross(leverage)
	rb.AngularVelocity = rb.AngularVelocity.Add(rb.GetInverseInertiaWorld().Mul3x1(torque))
}

// ApplyForceLocal is ApplyForce with force and leverage given in the body's
// oriented frame.
func (rb *RigidBody) ApplyForceLocal(force, leverage mgl64.Vec3) {
	q := rb.Transform.OrientationGlobal()
	rb.ApplyForce(q.Rotate(force), q.Rotate(leverage))
}

// ApplyForceOverTime applies force continuously for time seconds, starting
// with the next Update.
func (rb *RigidBody) ApplyForceOverTime(force mgl64.Vec3, time float64, leverage mgl64.Vec3) {
	rb.enqueue(ContinuousForce{Force: force, Leverage: leverage, Remaining: time})
}

// ApplyForceOverPast applies force as if it had acted during the last time
// seconds: the velocities gain the full impulse and the pose catches up
// with the distance a constant acceleration would have covered.
func (rb *RigidBody) ApplyForceOverPast(force mgl64.Vec3, time float64, leverage mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	rb.ApplyForce(force.Mul(time), leverage)

	half := 0.5 * time * time
	rb.Transform.TranslateGlobal(force.Mul(half / rb.Material.GetMass()))
	rb.rotateBy(rb.GetInverseInertiaWorld().Mul3x1(force.Cross(leverage)).Mul(half))
}

func (rb *RigidBody) applyTorqueOverPast(torque mgl64.Vec3, time float64) {
	angular := rb.GetInverseInertiaWorld().Mul3x1(torque)
	rb.AngularVelocity = rb.AngularVelocity.Add(angular.Mul(time))
	rb.rotateBy(angular.Mul(0.5 * time * time))
}

func (rb *RigidBody) enqueue(f ContinuousForce) {
	if rb.BodyType == BodyTypeStatic || f.Remaining <= 0 {
		return
	}
	rb.Awake()
	rb.forces = append(rb.forces, f)
}

// PendingForces returns a copy of the continuous-force queue.
func (rb *RigidBody) PendingForces() []ContinuousForce {
	return append([]ContinuousForce(nil), rb.forces...)
}

// Reflect bounces the body off a surface of the given normal.
//
// With a non-zero rotImpact, the surface velocity due to spin at
// rotLeverage is first folded into the linear velocity. After the linear
// velocity is mirrored, the spin is rescaled so that kinetic plus rotational
// energy stay what they were, and both velocities are finally scaled by
// 1-damping.
func (rb *RigidBody) Reflect(normal mgl64.Vec3, damping, rotImpact float64, rotLeverage mgl64.Vec3) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	keep := math.Max(0, 1-damping)
	normal = normal.Normalize()
	mass := rb.Material.GetMass()

	eKin1 := 0.5 * mass * rb.Velocity.LenSqr()
	eRot1 := rb.rotationalEnergy()

	if rotImpact != 0 && rotLeverage.Len() > 0 {
		rb.Velocity = rb.Velocity.Add(rotLeverage.Cross(rb.AngularVelocity).Mul(rotImpact))
	}
	rb.Velocity = rb.Velocity.Sub(normal.Mul(2 * rb.Velocity.Dot(normal)))

	eKin2 := 0.5 * mass * rb.Velocity.LenSqr()
	if eRot1 > 0 {
		// E_rot2 = p * E_rot1, and rotational energy grows with w²
		p := math.Max(0, (eKin1+eRot1-eKin2)/eRot1)
		rb.AngularVelocity = rb.AngularVelocity.Mul(math.Sqrt(p))
	}

	rb.AngularVelocity = rb.AngularVelocity.Mul(keep)
	rb.Velocity = rb.Velocity.Mul(keep)
}

func (rb *RigidBody) rotationalEnergy() float64 {
	return 0.5 * rb.AngularVelocity.Dot(rb.GetInertiaWorld().Mul3x1(rb.AngularVelocity))
}

// KineticEnergy returns the translational plus rotational energy.
func (rb *RigidBody) KineticEnergy() float64 {
	if rb.BodyType == BodyTypeStatic {
		return 0
	}
	return 0.5*rb.Material.GetMass()*rb.Velocity.LenSqr() + rb.rotationalEnergy()
}

// ApplyFriction slows the body at a contact pressed by normalForce.
// Sliding friction opposes the velocity of the contact point and never
// reverses it; rolling resistance opposes the part of that velocity due to
// spin. With delta > 0 both act over the past delta seconds, otherwise as
// impulses.
func (rb *RigidBody) ApplyFriction(normalForce, leverage mgl64.Vec3, delta float64) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	pressure := normalForce.Len()
	spin := leverage.Cross(rb.AngularVelocity)

	apply := func(force mgl64.Vec3) {
		if delta > 0 {
			rb.ApplyForceOverPast(force, delta, leverage)
		} else {
			rb.ApplyForce(force, leverage)
		}
	}

	slide := rb.Velocity.Add(spin)
	if speed := slide.Len(); speed > velocityEpsilon && rb.Material.Friction > 0 {
		magnitude := rb.Material.Friction * pressure
		limit := speed * rb.Material.GetMass()
		if delta > 0 {
			limit /= delta
		}
		apply(slide.Mul(-math.Min(magnitude, limit) / speed))
	}

	if roll := spin.Len(); roll > velocityEpsilon && rb.Material.RollResistance > 0 {
		apply(spin.Mul(-rb.Material.RollResistance * pressure / roll))
	}
}

func (rb *RigidBody) TrySleep(dt float64, timethreshold float64, velocityThreshold float64) {
	if rb.BodyType == BodyTypeStatic {
		return
	}
	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold && len(rb.forces) == 0 {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timethreshold {
			rb.Sleep()
		}
	} else {
		rb.Awake()
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// ClearForces drops every pending continuous force.
func (rb *RigidBody) ClearForces() {
	clear(rb.forces)
	rb.forces = rb.forces[:0]
}

// Inertie en espace monde
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	// I_world = R * I_local * R^T
	R := rb.Transform.OrientationGlobal().Mat4().Mat3()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

// Inverse de l'inertie en espace monde
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if rb.BodyType == BodyTypeStatic {
		return mgl64.Mat3{0, 0, 0, 0, 0, 0, 0, 0, 0}
	}

	// I_world^(-1) = R * I_local^(-1) * R^T
	R := rb.Transform.OrientationGlobal().Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}
