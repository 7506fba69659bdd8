// Package scene implements the scene graph consumed by mesh extraction: nodes
// with local transforms and triangle shapes, reference counting, and a
// callback-driven traversal that reports every triangle together with its
// accumulated model matrix.
package scene

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Faultbox/scenemesh/pkg/math"
)

// Scene graph errors.
var (
	ErrReleasedNode = errors.New("scene: node has been released")
	ErrCycle        = errors.New("scene: cycle in node graph")
	ErrMaxDepth     = errors.New("scene: maximum traversal depth exceeded")
)

// Node is a scene graph node. Its local transform applies to its own shape
// and to all of its descendants.
//
// A node starts with a reference count of zero. Parents hold one reference
// on each child. Unref releases the node once the count drops to zero.
type Node struct {
	Name string

	transform math.Mat4
	shape     Shape
	children  []*Node

	refs     atomic.Int32
	released atomic.Bool
}

// NewNode creates an unreferenced node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, transform: math.Identity()}
}

// NewShapeNode creates a node carrying the given shape.
func NewShapeNode(name string, shape Shape) *Node {
	n := NewNode(name)
	n.shape = shape
	return n
}

// Transform returns the local transform.
func (n *Node) Transform() math.Mat4 {
	return n.transform
}

// SetTransform replaces the local transform.
func (n *Node) SetTransform(m math.Mat4) {
	n.transform = m
}

// Shape returns the node's shape, or nil.
func (n *Node) Shape() Shape {
	return n.shape
}

// SetShape replaces the node's shape.
func (n *Node) SetShape(s Shape) {
	n.shape = s
}

// AddChild appends child and takes a reference on it.
func (n *Node) AddChild(child *Node) error {
	if n.Released() || child.Released() {
		return ErrReleasedNode
	}
	child.Ref()
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches child and drops the parent's reference on it.
// It returns false if child is not a direct child of n.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.Unref()
			return true
		}
	}
	return false
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Ref increments the reference count.
func (n *Node) Ref() {
	n.refs.Add(1)
}

// Unref decrements the reference count and releases the node when it
// reaches zero.
func (n *Node) Unref() {
	if n.refs.Add(-1) <= 0 {
		n.release()
	}
}

// RefCount returns the current reference count.
func (n *Node) RefCount() int32 {
	return n.refs.Load()
}

// Released reports whether the node has been released.
func (n *Node) Released() bool {
	return n.released.Load()
}

// Acquire holds a reference on n until the returned function is called.
// The release function is idempotent and restores the count to its prior
// value. A node that had no owner when acquired is never released by it, so
// an unowned tree handed to a traversal survives it. A node that had owners
// and lost all of them while held is released when the hold ends. A nil
// node yields a no-op release.
func (n *Node) Acquire() (release func()) {
	if n == nil {
		return func() {}
	}
	owned := n.refs.Add(1) > 1
	var once sync.Once
	return func() {
		once.Do(func() {
			if n.refs.Add(-1) <= 0 && owned {
				n.release()
			}
		})
	}
}

func (n *Node) release() {
	if n.released.Swap(true) {
		return
	}
	children := n.children
	n.children = nil
	n.shape = nil
	for _, c := range children {
		c.Unref()
	}
}
