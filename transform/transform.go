// Package transform implements a hierarchical 3D transform.
//
// A Transform stores a position, an orientation and a non-uniform scale
// relative to an optional parent. The local-to-world matrix and its inverse
// are cached and rebuilt lazily: every mutator only marks the transform (and
// its descendants) dirty, and the matrices are recomputed on the next read
// through Matrix or InverseMatrix.
//
// Matrices are composed as T * R * S and left-multiplied by the parent's
// world matrix. Scale components must be non-zero; a degenerate scale makes
// the inverse undefined (NaN/Inf), which is not reported.
package transform

import (
	"errors"
	"math"
	"weak"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrCyclicParent is returned by SetParent when the new parent is the
// transform itself or one of its descendants.
var ErrCyclicParent = errors.New("transform: parent would create a cycle")

var (
	axisRight   = mgl64.Vec3{1, 0, 0}
	axisUp      = mgl64.Vec3{0, 1, 0}
	axisForward = mgl64.Vec3{0, 0, 1}
)

// Transform represents a position, orientation and scale in 3D space,
// optionally attached to a parent Transform.
type Transform struct {
	position    mgl64.Vec3
	orientation mgl64.Quat
	scale       mgl64.Vec3

	parent   *Transform
	children []weak.Pointer[Transform]

	localToWorld mgl64.Mat4
	worldToLocal mgl64.Mat4
	dirty        bool
}

// New creates an identity transform without a parent.
func New() *Transform {
	return &Transform{
		orientation:  mgl64.QuatIdent(),
		scale:        mgl64.Vec3{1, 1, 1},
		localToWorld: mgl64.Ident4(),
		worldToLocal: mgl64.Ident4(),
	}
}

// Matrix returns the local-to-world matrix.
func (t *Transform) Matrix() mgl64.Mat4 {
	if t.dirty {
		t.validate()
	}
	return t.localToWorld
}

// InverseMatrix returns the world-to-local matrix, e.g. a view matrix when
// t describes a camera.
func (t *Transform) InverseMatrix() mgl64.Mat4 {
	if t.dirty {
		t.validate()
	}
	return t.worldToLocal
}

// validate rebuilds both cached matrices. The parent matrix is always read
// through its accessor so that a dirty ancestor validates itself first.
func (t *Transform) validate() {
	m := mgl64.Translate3D(t.position[0], t.position[1], t.position[2]).
		Mul4(t.orientation.Mat4()).
		Mul4(mgl64.Scale3D(t.scale[0], t.scale[1], t.scale[2]))
	if t.parent != nil {
		m = t.parent.Matrix().Mul4(m)
	}
	t.localToWorld = m
	t.worldToLocal = m.Inv()
	t.dirty = false
}

// Invalidate marks the cached matrices of t and all of its descendants as
// stale. Nothing is recomputed until the next read.
func (t *Transform) Invalidate() {
	if t.dirty {
		// a clean descendant always implies clean ancestors, so the subtree
		// below a dirty node is already dirty
		return
	}
	t.dirty = true
	t.eachChild(func(child *Transform) {
		child.Invalidate()
	})
}

// SetMatrix installs a local transformation matrix, decomposing it into
// position, orientation and scale.
func (t *Transform) SetMatrix(m mgl64.Mat4) {
	t.position, t.orientation, t.scale = Decompose(m)
	t.Invalidate()
}

// SetMatrixGlobal installs a world-space transformation matrix. The local
// pose is derived from the parent's current world matrix.
func (t *Transform) SetMatrixGlobal(m mgl64.Mat4) {
	if t.parent != nil {
		m = t.parent.InverseMatrix().Mul4(m)
	}
	t.SetMatrix(m)
}

// SetInverseMatrix installs a local transformation given in inverted form.
func (t *Transform) SetInverseMatrix(m mgl64.Mat4) {
	t.SetMatrix(m.Inv())
}

// SetInverseMatrixGlobal installs a world-space transformation given in
// inverted form.
func (t *Transform) SetInverseMatrixGlobal(m mgl64.Mat4) {
	t.SetMatrixGlobal(m.Inv())
}

// Translate moves the transform in its parent's space, ignoring its own
// orientation.
func (t *Transform) Translate(delta mgl64.Vec3) {
	t.position = t.position.Add(delta)
	t.Invalidate()
}

// TranslateOriented moves the transform along its own oriented axes, i.e.
// in what would be its children's space without scale.
func (t *Transform) TranslateOriented(delta mgl64.Vec3) {
	t.position = t.position.Add(t.orientation.Rotate(delta))
	t.Invalidate()
}

// TranslateGlobal moves the transform by a world-space displacement. The
// displacement is brought into the parent's space by undoing the parent
// chain's accumulated orientation and scale.
func (t *Transform) TranslateGlobal(delta mgl64.Vec3) {
	if t.parent != nil {
		local := t.parent.OrientationGlobal().Conjugate().Rotate(delta)
		s := t.parent.ScaleGlobal()
		delta = mgl64.Vec3{local[0] / s[0], local[1] / s[1], local[2] / s[2]}
	}
	t.position = t.position.Add(delta)
	t.Invalidate()
}

// SetPosition sets the position in the parent's space.
func (t *Transform) SetPosition(position mgl64.Vec3) {
	t.position = position
	t.Invalidate()
}

// Position returns the position in the parent's space.
func (t *Transform) Position() mgl64.Vec3 {
	return t.position
}

// PositionGlobal returns the world-space position of the transform origin.
func (t *Transform) PositionGlobal() mgl64.Vec3 {
	if t.parent == nil {
		return t.position
	}
	return mgl64.TransformCoordinate(t.position, t.parent.Matrix())
}

// Right returns the local x axis rotated by the orientation.
func (t *Transform) Right() mgl64.Vec3 {
	return t.orientation.Rotate(axisRight)
}

// Up returns the local y axis rotated by the orientation.
func (t *Transform) Up() mgl64.Vec3 {
	return t.orientation.Rotate(axisUp)
}

// Forward returns the local z axis rotated by the orientation.
func (t *Transform) Forward() mgl64.Vec3 {
	return t.orientation.Rotate(axisForward)
}

// RightGlobal returns the x axis of the transform in world space.
func (t *Transform) RightGlobal() mgl64.Vec3 {
	return t.OrientationGlobal().Rotate(axisRight)
}

// UpGlobal returns the y axis of the transform in world space.
func (t *Transform) UpGlobal() mgl64.Vec3 {
	return t.OrientationGlobal().Rotate(axisUp)
}

// ForwardGlobal returns the z axis of the transform in world space.
func (t *Transform) ForwardGlobal() mgl64.Vec3 {
	return t.OrientationGlobal().Rotate(axisForward)
}

// Rotate applies a rotation expressed in the transform's own frame
// (post-multiplied).
func (t *Transform) Rotate(rotation mgl64.Quat) {
	t.orientation = t.orientation.Mul(rotation).Normalize()
	t.Invalidate()
}

// RotateAxis rotates by angle radians around a local axis.
func (t *Transform) RotateAxis(angle float64, axis mgl64.Vec3) {
	t.Rotate(mgl64.QuatRotate(angle, axis.Normalize()))
}

// RotateAround rotates the transform around a pivot given as an offset from
// its current position, in the parent's space.
//
// The transform is rotated, then moved by offset minus the rotated offset:
// this moves it onto the pivot and back out along the rotated direction.
func (t *Transform) RotateAround(rotation mgl64.Quat, offset mgl64.Vec3) {
	t.Rotate(rotation)
	rotated := rotation.Rotate(offset)
	t.Translate(offset.Sub(rotated))
}

// RotateAroundAxis is RotateAround with an angle/axis rotation.
func (t *Transform) RotateAroundAxis(angle float64, axis, offset mgl64.Vec3) {
	t.RotateAround(mgl64.QuatRotate(angle, axis.Normalize()), offset)
}

// RotateGlobal applies a rotation expressed in world space (pre-multiplied,
// conjugated by the parent's world orientation).
func (t *Transform) RotateGlobal(rotation mgl64.Quat) {
	if t.parent == nil {
		t.orientation = rotation.Mul(t.orientation).Normalize()
	} else {
		p := t.parent.OrientationGlobal()
		t.orientation = p.Inverse().Mul(rotation).Mul(p).Mul(t.orientation).Normalize()
	}
	t.Invalidate()
}

// RotateGlobalAxis rotates by angle radians around a world-space axis.
func (t *Transform) RotateGlobalAxis(angle float64, axis mgl64.Vec3) {
	t.RotateGlobal(mgl64.QuatRotate(angle, axis.Normalize()))
}

// RotateAroundGlobal rotates the transform around a world-space pivot.
func (t *Transform) RotateAroundGlobal(rotation mgl64.Quat, center mgl64.Vec3) {
	delta := center.Sub(t.PositionGlobal())
	t.RotateGlobal(rotation)
	rotated := rotation.Rotate(delta)
	t.TranslateGlobal(delta.Sub(rotated))
}

// RotateAroundGlobalAxis is RotateAroundGlobal with an angle/axis rotation.
func (t *Transform) RotateAroundGlobalAxis(angle float64, axis, center mgl64.Vec3) {
	t.RotateAroundGlobal(mgl64.QuatRotate(angle, axis.Normalize()), center)
}

// SetOrientation sets the orientation in the parent's space.
func (t *Transform) SetOrientation(orientation mgl64.Quat) {
	t.orientation = orientation.Normalize()
	t.Invalidate()
}

// SetOrientationEuler sets the orientation from euler angles in radians,
// applied around x, then y, then z.
func (t *Transform) SetOrientationEuler(x, y, z float64) {
	t.SetOrientation(EulerToQuat(mgl64.Vec3{x, y, z}))
}

// Orientation returns the orientation in the parent's space.
func (t *Transform) Orientation() mgl64.Quat {
	return t.orientation
}

// OrientationGlobal returns the accumulated world-space orientation.
func (t *Transform) OrientationGlobal() mgl64.Quat {
	if t.parent == nil {
		return t.orientation
	}
	return t.parent.OrientationGlobal().Mul(t.orientation)
}

// OrientationEuler returns the local orientation as euler angles.
func (t *Transform) OrientationEuler() mgl64.Vec3 {
	return QuatToEuler(t.orientation)
}

// OrientationGlobalEuler returns the world-space orientation as euler angles.
func (t *Transform) OrientationGlobalEuler() mgl64.Vec3 {
	return QuatToEuler(t.OrientationGlobal())
}

// ScaleBy multiplies the scale along the transform's own oriented axes.
func (t *Transform) ScaleBy(factors mgl64.Vec3) {
	t.scale = mgl64.Vec3{t.scale[0] * factors[0], t.scale[1] * factors[1], t.scale[2] * factors[2]}
	t.Invalidate()
}

// ScaleByUniform multiplies the scale equally along all axes.
func (t *Transform) ScaleByUniform(s float64) {
	t.ScaleBy(mgl64.Vec3{s, s, s})
}

// ScaleByGlobal scales along the parent's x, y and z axes. Scale lives on
// the transform's oriented axes, so the request is first expressed per
// local axis: each local axis is rotated into parent space, stretched by the
// requested factors, and its resulting length becomes that axis' factor.
func (t *Transform) ScaleByGlobal(factors mgl64.Vec3) {
	var local mgl64.Vec3
	for i, axis := range [3]mgl64.Vec3{axisRight, axisUp, axisForward} {
		a := t.orientation.Rotate(axis)
		local[i] = mgl64.Vec3{a[0] * factors[0], a[1] * factors[1], a[2] * factors[2]}.Len()
	}
	t.ScaleBy(local)
}

// SetScale sets the scale along the oriented axes.
func (t *Transform) SetScale(scale mgl64.Vec3) {
	t.scale = scale
	t.Invalidate()
}

// Scale returns the scale along the oriented axes.
func (t *Transform) Scale() mgl64.Vec3 {
	return t.scale
}

// ScaleGlobal returns the component-wise product of the scales along the
// parent chain.
func (t *Transform) ScaleGlobal() mgl64.Vec3 {
	if t.parent == nil {
		return t.scale
	}
	p := t.parent.ScaleGlobal()
	return mgl64.Vec3{p[0] * t.scale[0], p[1] * t.scale[1], p[2] * t.scale[2]}
}

// TransformPoint maps a point from the transform's space to world space.
func (t *Transform) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, t.Matrix())
}

// TransformDirection maps a direction from the transform's space to world
// space. Scale is applied, translation is not.
func (t *Transform) TransformDirection(d mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformNormal(d, t.Matrix())
}

// InverseTransformPoint maps a world-space point into the transform's space.
func (t *Transform) InverseTransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, t.InverseMatrix())
}

// InverseTransformDirection maps a world-space direction into the
// transform's space.
func (t *Transform) InverseTransformDirection(d mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformNormal(d, t.InverseMatrix())
}

// FromRowMajor converts a row-major matrix, as produced by asset importers,
// into the column-major layout used by mgl64.
func FromRowMajor(m [16]float64) mgl64.Mat4 {
	return mgl64.Mat4(m).Transpose()
}

// EulerToQuat builds the rotation qZ * qY * qX from euler angles in radians.
func EulerToQuat(euler mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(euler[0], axisRight)
	qy := mgl64.QuatRotate(euler[1], axisUp)
	qz := mgl64.QuatRotate(euler[2], axisForward)
	return qz.Mul(qy).Mul(qx)
}

// QuatToEuler is the inverse of EulerToQuat for y angles in [-pi/2, pi/2].
func QuatToEuler(q mgl64.Quat) mgl64.Vec3 {
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]
	pitch := math.Atan2(2*(y*z+w*x), w*w-x*x-y*y+z*z)
	yaw := math.Asin(mgl64.Clamp(-2*(x*z-w*y), -1, 1))
	roll := math.Atan2(2*(x*y+w*z), w*w+x*x-y*y-z*z)
	return mgl64.Vec3{pitch, yaw, roll}
}
