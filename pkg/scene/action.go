package scene

import (
	"fmt"

	"github.com/Faultbox/scenemesh/pkg/math"
)

// DefaultMaxDepth bounds how deep Apply descends before failing.
const DefaultMaxDepth = 256

// TriangleFunc receives one triangle in local space and the model matrix
// accumulated from the traversal root down to the triangle's node.
type TriangleFunc func(v0, v1, v2 math.Vec3, model math.Mat4)

// CallbackAction walks a scene graph depth-first and invokes the registered
// triangle callbacks for every triangle of every shape it meets. Callbacks
// run inline on the calling goroutine.
type CallbackAction struct {
	MaxDepth int

	callbacks []TriangleFunc
}

// NewCallbackAction returns an action with no callbacks and DefaultMaxDepth.
func NewCallbackAction() *CallbackAction {
	return &CallbackAction{MaxDepth: DefaultMaxDepth}
}

// AddTriangleCallback registers fn. Callbacks fire in registration order.
func (a *CallbackAction) AddTriangleCallback(fn TriangleFunc) {
	a.callbacks = append(a.callbacks, fn)
}

// Apply traverses the subtree rooted at root. A nil root is a no-op.
// Traversal stops at the first error.
func (a *CallbackAction) Apply(root *Node) error {
	if root == nil {
		return nil
	}
	maxDepth := a.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	w := walker{action: a, maxDepth: maxDepth, onPath: make(map[*Node]bool)}
	return w.visit(root, math.Identity(), 0)
}

type walker struct {
	action   *CallbackAction
	maxDepth int
	onPath   map[*Node]bool
}

func (w *walker) visit(n *Node, parent math.Mat4, depth int) error {
	if n.Released() {
		return fmt.Errorf("visiting %q: %w", n.Name, ErrReleasedNode)
	}
	if depth >= w.maxDepth {
		return fmt.Errorf("visiting %q at depth %d: %w", n.Name, depth, ErrMaxDepth)
	}
	if w.onPath[n] {
		return fmt.Errorf("visiting %q: %w", n.Name, ErrCycle)
	}
	w.onPath[n] = true
	defer delete(w.onPath, n)

	model := parent.Mul(n.transform)

	if n.shape != nil && len(w.action.callbacks) > 0 {
		n.shape.EachTriangle(func(t Triangle) {
			for _, cb := range w.action.callbacks {
				cb(t[0], t[1], t[2], model)
			}
		})
	}

	// Callbacks may detach or release children; iterate over a snapshot.
	for _, c := range n.Children() {
		if err := w.visit(c, model, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// CountTriangles returns the number of triangles reachable from root.
func CountTriangles(root *Node) (int, error) {
	count := 0
	a := NewCallbackAction()
	a.AddTriangleCallback(func(_, _, _ math.Vec3, _ math.Mat4) {
		count++
	})
	err := a.Apply(root)
	return count, err
}
