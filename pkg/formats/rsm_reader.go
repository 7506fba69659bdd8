package formats

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/scenemesh/internal/logger"
	"github.com/Faultbox/scenemesh/pkg/environment"
	"github.com/Faultbox/scenemesh/pkg/scene"
	"github.com/Faultbox/scenemesh/pkg/trimesh"
)

// RSMReader reads binary RSM models as single-link bodies.
type RSMReader struct {
	opts Options
	name string
	rsm  *RSM
}

// NewRSMReader returns an uninitialized RSM reader.
func NewRSMReader(opts Options) *RSMReader {
	return &RSMReader{opts: opts}
}

// InitFromFile parses a model from disk. The body is named after the file.
func (r *RSMReader) InitFromFile(path string) error {
	rsm, err := ParseRSMFile(path)
	if err != nil {
		return err
	}
	r.rsm = rsm
	r.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return nil
}

// InitFromData parses a model from memory. The body is named after the
// model's root node.
func (r *RSMReader) InitFromData(data []byte) error {
	rsm, err := ParseRSM(data)
	if err != nil {
		return err
	}
	r.rsm = rsm
	r.name = rsm.RootNode
	return nil
}

// Model returns the parsed model, or nil before initialization.
func (r *RSMReader) Model() *RSM {
	return r.rsm
}

// ExtractEnvironment adds the model's body to env.
func (r *RSMReader) ExtractEnvironment(env *environment.Environment) error {
	body, err := r.ExtractBody()
	if err != nil {
		return err
	}
	return env.AddBody(body)
}

// ExtractBody flattens the whole model into one link named after the root node.
func (r *RSMReader) ExtractBody() (*environment.KinBody, error) {
	if r.rsm == nil {
		return nil, ErrNotInitialized
	}

	root, err := BuildRSMScene(r.rsm)
	if err != nil {
		return nil, err
	}
	root.Ref()
	defer root.Unref()

	mesh, err := trimesh.ExtractWith(scene.NewCallbackAction(), root, r.opts.Mesh)
	if err != nil {
		return nil, err
	}

	name := r.name
	if name == "" {
		name = "model"
	}
	body := environment.NewKinBody(name)
	body.AddLink(&environment.Link{Name: r.rsm.RootNode, Transform: root.Transform(), Mesh: mesh})

	logger.Debug("built RSM body",
		zap.String("body", name),
		zap.Stringer("version", r.rsm.Version),
		zap.Int("nodes", len(r.rsm.Nodes)),
		zap.Int("triangles", mesh.NumTriangles()))
	return body, nil
}

// ExtractRobot always fails: RSM models carry no manipulators.
func (r *RSMReader) ExtractRobot() (*environment.Robot, error) {
	if r.rsm == nil {
		return nil, ErrNotInitialized
	}
	return nil, ErrNoRobot
}
