package formats

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/scenemesh/pkg/environment"
	"github.com/Faultbox/scenemesh/pkg/trimesh"
)

// SceneWriter accumulates bodies and saves them as a YAML scene document.
// Link meshes are written as flat triangle sets with identity transforms,
// so reading the document back reproduces the same vertices.
type SceneWriter struct {
	doc     SceneDocument
	written bool
}

// NewSceneWriter returns an empty writer.
func NewSceneWriter() *SceneWriter {
	return &SceneWriter{}
}

// WriteEnvironment adds every body and robot of env.
func (w *SceneWriter) WriteEnvironment(env *environment.Environment) error {
	for _, b := range env.Bodies() {
		if err := w.WriteBody(b); err != nil {
			return err
		}
	}
	for _, r := range env.Robots() {
		if err := w.WriteRobot(r); err != nil {
			return err
		}
	}
	// An empty environment is still a valid document.
	w.written = true
	return nil
}

// WriteBody adds a body.
func (w *SceneWriter) WriteBody(body *environment.KinBody) error {
	doc, err := bodyDoc(body)
	if err != nil {
		return err
	}
	w.doc.Bodies = append(w.doc.Bodies, doc)
	w.written = true
	return nil
}

// WriteRobot adds a robot with its manipulators.
func (w *SceneWriter) WriteRobot(robot *environment.Robot) error {
	doc, err := bodyDoc(&robot.KinBody)
	if err != nil {
		return err
	}
	rd := RobotDoc{BodyDoc: doc}
	for _, m := range robot.Manipulators {
		rd.Manipulators = append(rd.Manipulators, ManipulatorDoc{Name: m.Name, Base: m.Base, Effector: m.Effector})
	}
	w.doc.Robots = append(w.doc.Robots, rd)
	w.written = true
	return nil
}

// Marshal returns the YAML encoding of everything written so far.
func (w *SceneWriter) Marshal() ([]byte, error) {
	if !w.written {
		return nil, ErrNothingWritten
	}
	return yaml.Marshal(&w.doc)
}

// Save writes the document to path, creating parent directories.
func (w *SceneWriter) Save(path string) error {
	data, err := w.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func bodyDoc(body *environment.KinBody) (BodyDoc, error) {
	if body.Name == "" {
		return BodyDoc{}, fmt.Errorf("writing body: %w", environment.ErrNoBodyName)
	}
	doc := BodyDoc{Name: body.Name, Transform: matrixDoc(body.Transform)}
	for _, l := range body.Links {
		doc.Links = append(doc.Links, LinkDoc{
			Name:      l.Name,
			Transform: matrixDoc(l.Transform),
			Geometry:  meshGeometry(l.Name, l.Mesh),
		})
	}
	return doc, nil
}

func meshGeometry(name string, mesh *trimesh.TriangleMesh) *GeometryDoc {
	if mesh == nil || mesh.Empty() {
		return nil
	}
	g := &GeometryDoc{Name: name, Vertices: make([][3]float32, len(mesh.Vertices))}
	for i, v := range mesh.Vertices {
		g.Vertices[i] = v.Array()
	}
	return g
}
