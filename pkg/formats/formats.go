// Package formats reads and writes scene documents: YAML scene descriptions
// holding bodies, robots and their link geometry, and binary RSM models.
// Readers turn link geometry into scene graphs and flatten them with
// trimesh to produce link collision meshes.
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/scenemesh/pkg/environment"
	"github.com/Faultbox/scenemesh/pkg/trimesh"
)

// Document errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNotInitialized    = errors.New("reader not initialized")
	ErrNoBody            = errors.New("document has no body")
	ErrNoRobot           = errors.New("document has no robot")
	ErrNothingWritten    = errors.New("nothing written")
)

// Options control how documents are turned into bodies.
type Options struct {
	Mesh trimesh.Options
}

// Reader loads a document and extracts bodies from it.
type Reader interface {
	InitFromFile(path string) error
	InitFromData(data []byte) error
	ExtractEnvironment(env *environment.Environment) error
	ExtractBody() (*environment.KinBody, error)
	ExtractRobot() (*environment.Robot, error)
}

// Writer collects bodies and saves them as a document.
type Writer interface {
	WriteEnvironment(env *environment.Environment) error
	WriteBody(body *environment.KinBody) error
	WriteRobot(robot *environment.Robot) error
	Save(path string) error
}

// NewReader picks a reader by file extension.
func NewReader(path string, opts Options) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewSceneReader(opts), nil
	case ".rsm":
		return NewRSMReader(opts), nil
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// NewReaderForData picks a reader by sniffing data: RSM magic selects the
// RSM reader, anything else is treated as a YAML scene document.
func NewReaderForData(data []byte, opts Options) Reader {
	if bytes.HasPrefix(data, []byte(rsmMagic)) {
		return NewRSMReader(opts)
	}
	return NewSceneReader(opts)
}

// NewWriter picks a writer by file extension. Only YAML scene documents
// can be written.
func NewWriter(path string) (Writer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewSceneWriter(), nil
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}
