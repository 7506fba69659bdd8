package scene

import (
	"fmt"

	"github.com/Faultbox/scenemesh/pkg/math"
)

// Triangle is three vertices in counter-clockwise winding order.
type Triangle [3]math.Vec3

// Shape is geometry that can be broken into triangles in the node's local space.
type Shape interface {
	EachTriangle(fn func(Triangle))
}

// TriangleSet is an indexed triangle list. With no indices, consecutive
// vertex triples form the triangles.
type TriangleSet struct {
	Vertices []math.Vec3
	Indices  []uint32
}

// EachTriangle calls fn for every triangle whose indices are in range.
func (s *TriangleSet) EachTriangle(fn func(Triangle)) {
	if len(s.Indices) == 0 {
		for i := 0; i+2 < len(s.Vertices); i += 3 {
			fn(Triangle{s.Vertices[i], s.Vertices[i+1], s.Vertices[i+2]})
		}
		return
	}

	n := uint32(len(s.Vertices))
	for i := 0; i+2 < len(s.Indices); i += 3 {
		a, b, c := s.Indices[i], s.Indices[i+1], s.Indices[i+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		fn(Triangle{s.Vertices[a], s.Vertices[b], s.Vertices[c]})
	}
}

// Validate checks that the set describes whole triangles with in-range indices.
func (s *TriangleSet) Validate() error {
	if len(s.Indices) == 0 {
		if len(s.Vertices)%3 != 0 {
			return fmt.Errorf("triangle set: %d vertices is not a multiple of 3", len(s.Vertices))
		}
		return nil
	}
	if len(s.Indices)%3 != 0 {
		return fmt.Errorf("triangle set: %d indices is not a multiple of 3", len(s.Indices))
	}
	for i, idx := range s.Indices {
		if int(idx) >= len(s.Vertices) {
			return fmt.Errorf("triangle set: index %d at %d out of range (%d vertices)", idx, i, len(s.Vertices))
		}
	}
	return nil
}

// Box is an axis-aligned box centered on the origin.
type Box struct {
	HalfExtents math.Vec3
}

// boxFaces lists each face as four corner sign triples, counter-clockwise
// when seen from outside.
var boxFaces = [6][4][3]float32{
	{{1, -1, -1}, {1, 1, -1}, {1, 1, 1}, {1, -1, 1}},     // +X
	{{-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}, {-1, -1, -1}}, // -X
	{{-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}, {1, 1, -1}},     // +Y
	{{-1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {1, -1, 1}}, // -Y
	{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}},     // +Z
	{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}, // -Z
}

// EachTriangle emits the 12 triangles of the box.
func (b *Box) EachTriangle(fn func(Triangle)) {
	corner := func(s [3]float32) math.Vec3 {
		return math.Vec3{X: s[0] * b.HalfExtents.X, Y: s[1] * b.HalfExtents.Y, Z: s[2] * b.HalfExtents.Z}
	}
	for _, f := range boxFaces {
		c0, c1, c2, c3 := corner(f[0]), corner(f[1]), corner(f[2]), corner(f[3])
		fn(Triangle{c0, c1, c2})
		fn(Triangle{c0, c2, c3})
	}
}
