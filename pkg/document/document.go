// Package document offers one-call loading and saving of scene documents.
//
// Each function reports success as a bool. Failures are logged through the
// package logger; callers that need the underlying error use the readers and
// writers in package formats directly. Building with the noscenedoc tag
// compiles document support out, and every function then logs an error and
// returns false.
package document

import (
	"github.com/Faultbox/scenemesh/pkg/environment"
	"github.com/Faultbox/scenemesh/pkg/formats"
)

// Options applied to every reader created by this package.
var Options formats.Options

// ParseFile loads every body and robot in the document at path into env.
// Relative paths are resolved against env's data directories.
func ParseFile(env *environment.Environment, path string) bool {
	return parseFile(env, path)
}

// ParseBodyFile loads the first body of the document at path.
func ParseBodyFile(env *environment.Environment, path string) (*environment.KinBody, bool) {
	return parseBodyFile(env, path)
}

// ParseRobotFile loads the first robot of the document at path.
func ParseRobotFile(env *environment.Environment, path string) (*environment.Robot, bool) {
	return parseRobotFile(env, path)
}

// ParseData loads every body and robot in an in-memory document into env.
func ParseData(env *environment.Environment, data []byte) bool {
	return parseData(env, data)
}

// ParseBodyData loads the first body of an in-memory document.
func ParseBodyData(env *environment.Environment, data []byte) (*environment.KinBody, bool) {
	return parseBodyData(env, data)
}

// ParseRobotData loads the first robot of an in-memory document.
func ParseRobotData(env *environment.Environment, data []byte) (*environment.Robot, bool) {
	return parseRobotData(env, data)
}

// WriteFile saves every body and robot of env to path.
func WriteFile(env *environment.Environment, path string) bool {
	return writeFile(env, path)
}

// WriteBodyFile saves a single body to path.
func WriteBodyFile(body *environment.KinBody, path string) bool {
	return writeBodyFile(body, path)
}

// WriteRobotFile saves a single robot to path.
func WriteRobotFile(robot *environment.Robot, path string) bool {
	return writeRobotFile(robot, path)
}
