package trimesh

import (
	"github.com/Faultbox/scenemesh/pkg/math"
	"github.com/Faultbox/scenemesh/pkg/scene"
)

// initialCapacity matches the vertex reservation the loaders have always made.
const initialCapacity = 256

// Traverser is the traversal engine contract extraction relies on.
// *scene.CallbackAction implements it.
type Traverser interface {
	AddTriangleCallback(fn scene.TriangleFunc)
	Apply(root *scene.Node) error
}

// Options tune extraction.
type Options struct {
	// SkipScaleCorrection leaves vertices exactly as the model matrices
	// placed them instead of rescaling them by the last model's axis scale.
	SkipScaleCorrection bool
}

// collector is the per-extraction state threaded through the triangle
// callback: the mesh being filled and the model matrix of the most
// recently visited triangle.
type collector struct {
	mesh *TriangleMesh
	last math.Mat4
	seen bool
}

func (c *collector) onTriangle(v0, v1, v2 math.Vec3, model math.Mat4) {
	c.last = model
	c.seen = true
	c.mesh.Vertices = append(c.mesh.Vertices,
		model.TransformVec3(v0),
		model.TransformVec3(v1),
		model.TransformVec3(v2),
	)
}

// lastTransform returns the model matrix of the last triangle visited.
// ok is false when no triangle was visited.
func (c *collector) lastTransform() (m math.Mat4, ok bool) {
	return c.last, c.seen
}

// Extract flattens the subtree under root using a fresh scene.CallbackAction.
func Extract(root *scene.Node) (*TriangleMesh, error) {
	return ExtractWith(scene.NewCallbackAction(), root, Options{})
}

// ExtractWith flattens the subtree under root using t. root is held by a
// reference for the whole traversal and let go on every exit path. A nil
// root or a subtree without triangles yields an empty mesh and no error.
//
// If t fails, the error is returned along with whatever was collected
// before the failure, unscaled and without indices.
func ExtractWith(t Traverser, root *scene.Node, opts Options) (*TriangleMesh, error) {
	c := &collector{mesh: &TriangleMesh{Vertices: make([]math.Vec3, 0, initialCapacity)}}
	t.AddTriangleCallback(c.onTriangle)

	if err := traverse(t, root); err != nil {
		return c.mesh, err
	}

	model, ok := c.lastTransform()
	if !ok {
		return c.mesh, nil
	}

	scale := math.Vec3{X: 1, Y: 1, Z: 1}
	if !opts.SkipScaleCorrection {
		scale = math.AxisScale(model)
	}
	return Finalize(c.mesh, scale), nil
}

func traverse(t Traverser, root *scene.Node) error {
	release := root.Acquire()
	defer release()
	return t.Apply(root)
}

// Finalize multiplies every vertex component-wise by scale and assigns
// identity indices. The mesh is modified in place and returned.
func Finalize(mesh *TriangleMesh, scale math.Vec3) *TriangleMesh {
	mesh.Indices = make([]uint32, len(mesh.Vertices))
	for i := range mesh.Vertices {
		mesh.Indices[i] = uint32(i)
		mesh.Vertices[i] = mesh.Vertices[i].MulComponents(scale)
	}
	return mesh
}
