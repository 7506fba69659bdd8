package environment

import (
	"github.com/Faultbox/scenemesh/pkg/math"
	"github.com/Faultbox/scenemesh/pkg/trimesh"
)

// Link is a rigid part of a body with its collision mesh.
type Link struct {
	Name      string
	Transform math.Mat4
	Mesh      *trimesh.TriangleMesh
}

// KinBody is a named collection of links.
type KinBody struct {
	Name      string
	Transform math.Mat4
	Links     []*Link

	env *Environment
}

// NewKinBody returns an empty body with an identity transform.
func NewKinBody(name string) *KinBody {
	return &KinBody{Name: name, Transform: math.Identity()}
}

// Env returns the environment the body was added to, or nil.
func (b *KinBody) Env() *Environment {
	return b.env
}

// AddLink appends a link.
func (b *KinBody) AddLink(l *Link) {
	b.Links = append(b.Links, l)
}

// GetLink returns the link with the given name, or nil.
func (b *KinBody) GetLink(name string) *Link {
	for _, l := range b.Links {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// NumTriangles sums triangle counts over all link meshes.
func (b *KinBody) NumTriangles() int {
	n := 0
	for _, l := range b.Links {
		if l.Mesh != nil {
			n += l.Mesh.NumTriangles()
		}
	}
	return n
}

// Manipulator names the chain from a base link to an end effector link.
type Manipulator struct {
	Name     string
	Base     string
	Effector string
}

// Robot is a body with manipulators.
type Robot struct {
	KinBody
	Manipulators []Manipulator
}

// NewRobot returns an empty robot with an identity transform.
func NewRobot(name string) *Robot {
	return &Robot{KinBody: *NewKinBody(name)}
}
