package transform

import (
	"fmt"
	"slices"
	"weak"

	"github.com/go-gl/mathgl/mgl64"
)

// SetParent attaches t to parent, or detaches it when parent is nil.
//
// With keepGlobal the world-space pose is preserved and the local pose is
// recomputed against the new parent; otherwise the local pose is kept and
// the world pose follows the new parent.
func (t *Transform) SetParent(parent *Transform, keepGlobal bool) error {
	for p := parent; p != nil; p = p.parent {
		if p == t {
			return fmt.Errorf("set parent: %w", ErrCyclicParent)
		}
	}
	if parent == t.parent {
		return nil
	}

	global := t.Matrix()

	if t.parent != nil {
		t.parent.removeChild(t)
	}
	t.parent = parent
	if parent != nil {
		parent.children = append(parent.children, weak.Make(t))
	}

	if keepGlobal {
		local := global
		if parent != nil {
			local = parent.InverseMatrix().Mul4(global)
		}
		t.position, t.orientation, t.scale = Decompose(local)
	}

	t.dirty = false
	t.Invalidate()
	return nil
}

// Parent returns the parent transform, or nil.
func (t *Transform) Parent() *Transform {
	return t.parent
}

// Children returns the live child transforms.
func (t *Transform) Children() []*Transform {
	var children []*Transform
	t.eachChild(func(child *Transform) {
		children = append(children, child)
	})
	return children
}

// Detach unlinks t from its parent while keeping its world-space pose.
func (t *Transform) Detach() {
	// a nil parent cannot form a cycle
	_ = t.SetParent(nil, true)
}

// eachChild calls fn for every child that is still alive and drops the
// references to collected ones.
func (t *Transform) eachChild(fn func(*Transform)) {
	live := t.children[:0]
	for _, ref := range t.children {
		child := ref.Value()
		if child == nil {
			continue
		}
		live = append(live, ref)
		fn(child)
	}
	clear(t.children[len(live):])
	t.children = live
}

func (t *Transform) removeChild(child *Transform) {
	t.children = slices.DeleteFunc(t.children, func(ref weak.Pointer[Transform]) bool {
		v := ref.Value()
		return v == nil || v == child
	})
}

// Decompose splits an affine T * R * S matrix into its translation,
// rotation and scale. A negative determinant is folded into the x scale.
func Decompose(m mgl64.Mat4) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	position := m.Col(3).Vec3()

	x, y, z := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	scale := mgl64.Vec3{x.Len(), y.Len(), z.Len()}
	if m.Mat3().Det() < 0 {
		scale[0] = -scale[0]
	}

	x, y, z = x.Mul(1/scale[0]), y.Mul(1/scale[1]), z.Mul(1/scale[2])
	rotation := mgl64.Mat4{
		x[0], x[1], x[2], 0,
		y[0], y[1], y[2], 0,
		z[0], z[1], z[2], 0,
		0, 0, 0, 1,
	}

	return position, mgl64.Mat4ToQuat(rotation).Normalize(), scale
}
