//go:build !noscenedoc

package document

import (
	"go.uber.org/zap"

	"github.com/Faultbox/scenemesh/internal/logger"
	"github.com/Faultbox/scenemesh/pkg/environment"
	"github.com/Faultbox/scenemesh/pkg/formats"
)

// Supported reports whether scene document support is compiled in.
const Supported = true

// Reader and writer constructors, swapped out in tests.
var (
	newReader        = formats.NewReader
	newReaderForData = formats.NewReaderForData
	newWriter        = formats.NewWriter
)

// openFile resolves path and initializes a reader for it. Extraction must
// not be attempted when it returns false.
func openFile(env *environment.Environment, path string) (formats.Reader, bool) {
	resolved := path
	if env != nil {
		p, err := env.ResolvePath(path)
		if err != nil {
			logger.Debug("document not found", zap.String("path", path), zap.Error(err))
			return nil, false
		}
		resolved = p
	}

	r, err := newReader(resolved, Options)
	if err != nil {
		logger.Debug("no reader for document", zap.String("path", resolved), zap.Error(err))
		return nil, false
	}
	if err := r.InitFromFile(resolved); err != nil {
		logger.Debug("failed to load document", zap.String("path", resolved), zap.Error(err))
		return nil, false
	}
	return r, true
}

func openData(data []byte) (formats.Reader, bool) {
	r := newReaderForData(data, Options)
	if err := r.InitFromData(data); err != nil {
		logger.Debug("failed to load document data", zap.Int("bytes", len(data)), zap.Error(err))
		return nil, false
	}
	return r, true
}

func extractEnvironment(r formats.Reader, env *environment.Environment, ok bool) bool {
	if !ok {
		return false
	}
	if err := r.ExtractEnvironment(env); err != nil {
		logger.Debug("failed to extract environment", zap.Error(err))
		return false
	}
	return true
}

func extractBody(r formats.Reader, ok bool) (*environment.KinBody, bool) {
	if !ok {
		return nil, false
	}
	body, err := r.ExtractBody()
	if err != nil {
		logger.Debug("failed to extract body", zap.Error(err))
		return nil, false
	}
	return body, true
}

func extractRobot(r formats.Reader, ok bool) (*environment.Robot, bool) {
	if !ok {
		return nil, false
	}
	robot, err := r.ExtractRobot()
	if err != nil {
		logger.Debug("failed to extract robot", zap.Error(err))
		return nil, false
	}
	return robot, true
}

func parseFile(env *environment.Environment, path string) bool {
	r, ok := openFile(env, path)
	return extractEnvironment(r, env, ok)
}

func parseBodyFile(env *environment.Environment, path string) (*environment.KinBody, bool) {
	r, ok := openFile(env, path)
	return extractBody(r, ok)
}

func parseRobotFile(env *environment.Environment, path string) (*environment.Robot, bool) {
	r, ok := openFile(env, path)
	return extractRobot(r, ok)
}

func parseData(env *environment.Environment, data []byte) bool {
	r, ok := openData(data)
	return extractEnvironment(r, env, ok)
}

func parseBodyData(_ *environment.Environment, data []byte) (*environment.KinBody, bool) {
	r, ok := openData(data)
	return extractBody(r, ok)
}

func parseRobotData(_ *environment.Environment, data []byte) (*environment.Robot, bool) {
	r, ok := openData(data)
	return extractRobot(r, ok)
}

// save runs write against a writer for path and saves the result.
func save(path string, write func(formats.Writer) error) bool {
	w, err := newWriter(path)
	if err != nil {
		logger.Debug("no writer for document", zap.String("path", path), zap.Error(err))
		return false
	}
	if err := write(w); err != nil {
		logger.Debug("failed to write document", zap.String("path", path), zap.Error(err))
		return false
	}
	if err := w.Save(path); err != nil {
		logger.Debug("failed to save document", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

func writeFile(env *environment.Environment, path string) bool {
	logger.Debug("writing environment", zap.String("path", path))
	return save(path, func(w formats.Writer) error { return w.WriteEnvironment(env) })
}

func writeBodyFile(body *environment.KinBody, path string) bool {
	logger.Debug("writing body", zap.String("body", body.Name), zap.String("path", path))
	return save(path, func(w formats.Writer) error { return w.WriteBody(body) })
}

func writeRobotFile(robot *environment.Robot, path string) bool {
	logger.Debug("writing robot", zap.String("robot", robot.Name), zap.String("path", path))
	return save(path, func(w formats.Writer) error { return w.WriteRobot(robot) })
}
