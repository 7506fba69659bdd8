package formats

import (
	"github.com/Faultbox/scenemesh/pkg/math"
	"github.com/Faultbox/scenemesh/pkg/scene"
)

// BuildRSMScene converts the model hierarchy into a scene graph rooted at an
// unreferenced group node named after the model's root node.
//
// Each RSM node becomes a hierarchy node with Position * Rotation * Scale,
// inherited by its children, plus a shape child with Offset * Matrix that
// only its own vertices see. Nodes whose parent is missing or themselves,
// and every node on a parent cycle, hang off the top group. The static pose
// is used; rotation and scale keyframes contribute their first key.
func BuildRSMScene(rsm *RSM) (*scene.Node, error) {
	top := scene.NewNode(rsm.RootNode)

	nodes := make([]*scene.Node, len(rsm.Nodes))
	byName := make(map[string]int, len(rsm.Nodes))
	for i := range rsm.Nodes {
		src := &rsm.Nodes[i]
		n := scene.NewNode(src.Name)
		n.SetTransform(rsmHierarchyMatrix(src))

		if shape := rsmShape(src); shape != nil {
			geom := scene.NewShapeNode(src.Name+"#mesh", shape)
			geom.SetTransform(math.Translate(src.Offset[0], src.Offset[1], src.Offset[2]).
				Mul(math.FromMat3x3(src.Matrix)))
			if err := n.AddChild(geom); err != nil {
				return nil, err
			}
		}

		nodes[i] = n
		if _, dup := byName[src.Name]; !dup {
			byName[src.Name] = i
		}
	}

	for i := range rsm.Nodes {
		parent := rsmParentIndex(rsm, byName, i)
		var err error
		if parent < 0 {
			err = top.AddChild(nodes[i])
		} else {
			err = nodes[parent].AddChild(nodes[i])
		}
		if err != nil {
			return nil, err
		}
	}

	return top, nil
}

// rsmParentIndex returns the index of node i's parent, or -1 if the node
// should be treated as a root.
func rsmParentIndex(rsm *RSM, byName map[string]int, i int) int {
	node := &rsm.Nodes[i]
	if node.Parent == "" || node.Parent == node.Name {
		return -1
	}
	parent, ok := byName[node.Parent]
	if !ok {
		return -1
	}

	// Walk up the chain; if it leads back to i, i is on a cycle.
	seen := map[int]bool{i: true}
	for cur := parent; ; {
		if seen[cur] {
			if cur == i {
				return -1
			}
			return parent
		}
		seen[cur] = true
		up := &rsm.Nodes[cur]
		next, ok := byName[up.Parent]
		if up.Parent == "" || up.Parent == up.Name || !ok {
			return parent
		}
		cur = next
	}
}

func rsmHierarchyMatrix(node *RSMNode) math.Mat4 {
	m := math.Translate(node.Position[0], node.Position[1], node.Position[2])

	switch {
	case len(node.RotKeys) > 0:
		q := node.RotKeys[0].Quaternion
		m = m.Mul(math.Quat{X: q[0], Y: q[1], Z: q[2], W: q[3]}.ToMat4())
	case node.RotAngle != 0:
		m = m.Mul(math.QuatFromAxisAngle(math.Vec3FromArray(node.RotAxis), node.RotAngle).ToMat4())
	}

	m = m.Mul(math.Scale(node.Scale[0], node.Scale[1], node.Scale[2]))
	if len(node.ScaleKeys) > 0 {
		s := node.ScaleKeys[0].Scale
		m = m.Mul(math.Scale(s[0], s[1], s[2]))
	}
	return m
}

// rsmShape returns the node's faces as a triangle set, dropping faces with
// out-of-range vertex ids. It returns nil when no face survives.
func rsmShape(node *RSMNode) *scene.TriangleSet {
	if len(node.Faces) == 0 || len(node.Vertices) == 0 {
		return nil
	}

	set := &scene.TriangleSet{Vertices: make([]math.Vec3, len(node.Vertices))}
	for i, v := range node.Vertices {
		set.Vertices[i] = math.Vec3FromArray(v)
	}

	for _, face := range node.Faces {
		valid := true
		for _, vid := range face.VertexIDs {
			if int(vid) >= len(node.Vertices) {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		set.Indices = append(set.Indices,
			uint32(face.VertexIDs[0]), uint32(face.VertexIDs[1]), uint32(face.VertexIDs[2]))
	}

	if len(set.Indices) == 0 {
		return nil
	}
	return set
}
