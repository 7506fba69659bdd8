// Package trimesh flattens a scene graph into a triangle mesh.
//
// Extraction is a single pass: every triangle under the root is transformed
// by its accumulated model matrix and appended as three fresh vertices, then
// the vertices are rescaled by the axis scale of the last visited triangle's
// model matrix and given identity indices.
//
// That rescale applies the model's scale a second time, since the vertices
// already went through the full matrix. Meshes loaded this way have always
// carried it, so it stays the default; set Options.SkipScaleCorrection to
// get plain world-space vertices.
package trimesh

import "github.com/Faultbox/scenemesh/pkg/math"

// TriangleMesh is a flat, non-indexed-in-practice triangle list: each
// triangle owns three consecutive vertices and Indices[i] == i.
type TriangleMesh struct {
	Vertices []math.Vec3
	Indices  []uint32
}

// NumTriangles returns the number of whole triangles.
func (m *TriangleMesh) NumTriangles() int {
	return len(m.Vertices) / 3
}

// Empty reports whether the mesh has no vertices.
func (m *TriangleMesh) Empty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned bounding box of the vertices. ok is false
// for an empty mesh.
func (m *TriangleMesh) Bounds() (lo, hi math.Vec3, ok bool) {
	if len(m.Vertices) == 0 {
		return math.Vec3{}, math.Vec3{}, false
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		lo.X, hi.X = min(lo.X, v.X), max(hi.X, v.X)
		lo.Y, hi.Y = min(lo.Y, v.Y), max(hi.Y, v.Y)
		lo.Z, hi.Z = min(lo.Z, v.Z), max(hi.Z, v.Z)
	}
	return lo, hi, true
}
