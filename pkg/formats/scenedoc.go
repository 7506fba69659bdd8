package formats

import (
	"fmt"

	"github.com/Faultbox/scenemesh/pkg/math"
	"github.com/Faultbox/scenemesh/pkg/scene"
)

// SceneDocument is the YAML scene description.
type SceneDocument struct {
	Bodies []BodyDoc  `yaml:"bodies,omitempty"`
	Robots []RobotDoc `yaml:"robots,omitempty"`
}

// BodyDoc describes a body and its links.
type BodyDoc struct {
	Name      string       `yaml:"name"`
	Transform TransformDoc `yaml:"transform,omitempty"`
	Links     []LinkDoc    `yaml:"links,omitempty"`
}

// RobotDoc is a body with manipulators.
type RobotDoc struct {
	BodyDoc      `yaml:",inline"`
	Manipulators []ManipulatorDoc `yaml:"manipulators,omitempty"`
}

// ManipulatorDoc names a base and end effector link.
type ManipulatorDoc struct {
	Name     string `yaml:"name"`
	Base     string `yaml:"base"`
	Effector string `yaml:"effector"`
}

// LinkDoc describes a link. Geometry is expressed in the link frame.
type LinkDoc struct {
	Name      string       `yaml:"name"`
	Transform TransformDoc `yaml:"transform,omitempty"`
	Geometry  *GeometryDoc `yaml:"geometry,omitempty"`
}

// TransformDoc is either a full column-major matrix or a translation,
// axis-angle rotation and scale composed as T * R * S. Missing parts
// default to identity.
type TransformDoc struct {
	Matrix      *[16]float32 `yaml:"matrix,omitempty,flow"`
	Translation *[3]float32  `yaml:"translation,omitempty,flow"`
	Rotation    *RotationDoc `yaml:"rotation,omitempty"`
	Scale       *[3]float32  `yaml:"scale,omitempty,flow"`
}

// RotationDoc is an axis-angle rotation; Angle is in radians.
type RotationDoc struct {
	Axis  [3]float32 `yaml:"axis,flow"`
	Angle float32    `yaml:"angle"`
}

// GeometryDoc is one scene graph node: a transform, an optional shape, and
// child nodes. Box holds half extents. Vertices with optional Indices form a
// triangle set.
type GeometryDoc struct {
	Name      string        `yaml:"name,omitempty"`
	Transform TransformDoc  `yaml:"transform,omitempty"`
	Box       *[3]float32   `yaml:"box,omitempty,flow"`
	Vertices  [][3]float32  `yaml:"vertices,omitempty,flow"`
	Indices   []uint32      `yaml:"indices,omitempty,flow"`
	Children  []GeometryDoc `yaml:"children,omitempty"`
}

// Mat4 returns the transform as a matrix.
func (t TransformDoc) Mat4() math.Mat4 {
	if t.Matrix != nil {
		return math.Mat4(*t.Matrix)
	}

	translation := math.Vec3{}
	if t.Translation != nil {
		translation = math.Vec3FromArray(*t.Translation)
	}
	rotation := math.QuatIdentity()
	if t.Rotation != nil {
		rotation = math.QuatFromAxisAngle(math.Vec3FromArray(t.Rotation.Axis), t.Rotation.Angle)
	}
	scale := math.Vec3{X: 1, Y: 1, Z: 1}
	if t.Scale != nil {
		scale = math.Vec3FromArray(*t.Scale)
	}
	return math.TRS(translation, rotation, scale)
}

// IsZero lets yaml omit an identity transform.
func (t TransformDoc) IsZero() bool {
	return t.Matrix == nil && t.Translation == nil && t.Rotation == nil && t.Scale == nil
}

func matrixDoc(m math.Mat4) TransformDoc {
	if m == math.Identity() {
		return TransformDoc{}
	}
	arr := [16]float32(m)
	return TransformDoc{Matrix: &arr}
}

// buildNode converts a geometry description into an unreferenced scene
// graph. path names the node in error messages.
func (g *GeometryDoc) buildNode(path string) (*scene.Node, error) {
	if g.Name != "" {
		path = path + "/" + g.Name
	}
	if g.Box != nil && len(g.Vertices) > 0 {
		return nil, fmt.Errorf("geometry %s: box and vertices are exclusive", path)
	}

	n := scene.NewNode(g.Name)
	n.SetTransform(g.Transform.Mat4())

	switch {
	case g.Box != nil:
		n.SetShape(&scene.Box{HalfExtents: math.Vec3FromArray(*g.Box)})
	case len(g.Vertices) > 0:
		set := &scene.TriangleSet{Vertices: make([]math.Vec3, len(g.Vertices)), Indices: g.Indices}
		for i, v := range g.Vertices {
			set.Vertices[i] = math.Vec3FromArray(v)
		}
		if err := set.Validate(); err != nil {
			return nil, fmt.Errorf("geometry %s: %w", path, err)
		}
		n.SetShape(set)
	case len(g.Indices) > 0:
		return nil, fmt.Errorf("geometry %s: indices without vertices", path)
	}

	for i := range g.Children {
		child, err := g.Children[i].buildNode(path)
		if err != nil {
			return nil, err
		}
		if err := n.AddChild(child); err != nil {
			return nil, err
		}
	}
	return n, nil
}
