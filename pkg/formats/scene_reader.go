package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/scenemesh/internal/logger"
	"github.com/Faultbox/scenemesh/pkg/environment"
	"github.com/Faultbox/scenemesh/pkg/scene"
	"github.com/Faultbox/scenemesh/pkg/trimesh"
)

// SceneReader reads YAML scene documents.
type SceneReader struct {
	opts Options
	doc  *SceneDocument
}

// NewSceneReader returns an uninitialized scene document reader.
func NewSceneReader(opts Options) *SceneReader {
	return &SceneReader{opts: opts}
}

// InitFromFile loads a scene document from disk.
func (r *SceneReader) InitFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading scene document: %w", err)
	}
	return r.InitFromData(data)
}

// InitFromData decodes a scene document. Unknown fields are rejected.
func (r *SceneReader) InitFromData(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	doc := &SceneDocument{}
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decoding scene document: empty document")
		}
		return fmt.Errorf("decoding scene document: %w", err)
	}
	r.doc = doc
	return nil
}

// Document returns the decoded document, or nil before initialization.
func (r *SceneReader) Document() *SceneDocument {
	return r.doc
}

// ExtractEnvironment builds every body and robot in the document and adds
// them to env. Bodies added before a failure stay in env.
func (r *SceneReader) ExtractEnvironment(env *environment.Environment) error {
	if r.doc == nil {
		return ErrNotInitialized
	}
	for i := range r.doc.Bodies {
		body, err := r.buildBody(&r.doc.Bodies[i])
		if err != nil {
			return err
		}
		if err := env.AddBody(body); err != nil {
			return err
		}
	}
	for i := range r.doc.Robots {
		robot, err := r.buildRobot(&r.doc.Robots[i])
		if err != nil {
			return err
		}
		if err := env.AddRobot(robot); err != nil {
			return err
		}
	}
	return nil
}

// ExtractBody builds the first body in the document.
func (r *SceneReader) ExtractBody() (*environment.KinBody, error) {
	if r.doc == nil {
		return nil, ErrNotInitialized
	}
	if len(r.doc.Bodies) == 0 {
		return nil, ErrNoBody
	}
	return r.buildBody(&r.doc.Bodies[0])
}

// ExtractRobot builds the first robot in the document.
func (r *SceneReader) ExtractRobot() (*environment.Robot, error) {
	if r.doc == nil {
		return nil, ErrNotInitialized
	}
	if len(r.doc.Robots) == 0 {
		return nil, ErrNoRobot
	}
	return r.buildRobot(&r.doc.Robots[0])
}

func (r *SceneReader) buildBody(doc *BodyDoc) (*environment.KinBody, error) {
	body := environment.NewKinBody(doc.Name)
	body.Transform = doc.Transform.Mat4()

	for i := range doc.Links {
		ld := &doc.Links[i]
		link := &environment.Link{Name: ld.Name, Transform: ld.Transform.Mat4()}

		mesh, err := r.linkMesh(doc.Name+"/"+ld.Name, ld.Geometry)
		if err != nil {
			return nil, fmt.Errorf("body %s: %w", doc.Name, err)
		}
		link.Mesh = mesh
		body.AddLink(link)
	}

	logger.Debug("built body",
		zap.String("body", body.Name),
		zap.Int("links", len(body.Links)),
		zap.Int("triangles", body.NumTriangles()))
	return body, nil
}

func (r *SceneReader) buildRobot(doc *RobotDoc) (*environment.Robot, error) {
	body, err := r.buildBody(&doc.BodyDoc)
	if err != nil {
		return nil, err
	}
	robot := &environment.Robot{KinBody: *body}
	for _, m := range doc.Manipulators {
		if robot.GetLink(m.Base) == nil || robot.GetLink(m.Effector) == nil {
			return nil, fmt.Errorf("robot %s: manipulator %s references unknown link", doc.Name, m.Name)
		}
		robot.Manipulators = append(robot.Manipulators, environment.Manipulator{
			Name:     m.Name,
			Base:     m.Base,
			Effector: m.Effector,
		})
	}
	return robot, nil
}

// linkMesh flattens a link's geometry. A link without geometry gets an
// empty mesh.
func (r *SceneReader) linkMesh(path string, geom *GeometryDoc) (*trimesh.TriangleMesh, error) {
	if geom == nil {
		return &trimesh.TriangleMesh{}, nil
	}
	root, err := geom.buildNode(path)
	if err != nil {
		return nil, err
	}
	root.Ref()
	defer root.Unref()

	mesh, err := trimesh.ExtractWith(scene.NewCallbackAction(), root, r.opts.Mesh)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", path, err)
	}
	return mesh, nil
}
