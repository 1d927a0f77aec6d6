package collider

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrIndexCount is returned when an index list does not describe whole
	// triangles.
	ErrIndexCount = errors.New("collider: index count is not a multiple of 3")
	// ErrIndexOutOfRange is returned when an index does not address a vertex.
	ErrIndexOutOfRange = errors.New("collider: vertex index out of range")
)

// Vertex is a mesh vertex as delivered by an asset loader.
type Vertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	UV       mgl64.Vec2
}

// MeshTriangles builds world-space triangle colliders from an indexed
// triangle list and the node's model matrix. Each triangle is wound
// counter-clockwise unless its vertex normals point against the face
// normal of that order.
func MeshTriangles(vertices []Vertex, indices []uint32, model mgl64.Mat4, base Base) ([]Triangle, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh of %d indices: %w", len(indices), ErrIndexCount)
	}

	normalMatrix := model.Inv().Transpose()
	triangles := make([]Triangle, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		var v [3]Vertex
		for k := 0; k < 3; k++ {
			idx := indices[i+k]
			if int(idx) >= len(vertices) {
				return nil, fmt.Errorf("index %d at %d (%d vertices): %w", idx, i+k, len(vertices), ErrIndexOutOfRange)
			}
			v[k] = vertices[idx]
		}

		tri := Triangle{
			Base: base,
			V0:   mgl64.TransformCoordinate(v[0].Position, model),
			V1:   mgl64.TransformCoordinate(v[1].Position, model),
			V2:   mgl64.TransformCoordinate(v[2].Position, model),
			CCW:  true,
		}

		shading := v[0].Normal.Add(v[1].Normal).Add(v[2].Normal)
		if shading.LenSqr() > 0 {
			shading = mgl64.TransformNormal(shading, normalMatrix)
			face := tri.V1.Sub(tri.V0).Cross(tri.V2.Sub(tri.V0))
			if face.Dot(shading) < 0 {
				tri.CCW = false
			}
		}
		triangles = append(triangles, tri)
	}
	return triangles, nil
}
