//go:build noscenedoc

package document

import (
	"github.com/Faultbox/scenemesh/internal/logger"
	"github.com/Faultbox/scenemesh/pkg/environment"
)

// Supported reports whether scene document support is compiled in.
const Supported = false

func unsupported() {
	logger.Error("scene documents not supported")
}

func parseFile(*environment.Environment, string) bool {
	unsupported()
	return false
}

func parseBodyFile(*environment.Environment, string) (*environment.KinBody, bool) {
	unsupported()
	return nil, false
}

func parseRobotFile(*environment.Environment, string) (*environment.Robot, bool) {
	unsupported()
	return nil, false
}

func parseData(*environment.Environment, []byte) bool {
	unsupported()
	return false
}

func parseBodyData(*environment.Environment, []byte) (*environment.KinBody, bool) {
	unsupported()
	return nil, false
}

func parseRobotData(*environment.Environment, []byte) (*environment.Robot, bool) {
	unsupported()
	return nil, false
}

func writeFile(*environment.Environment, string) bool {
	unsupported()
	return false
}

func writeBodyFile(*environment.KinBody, string) bool {
	unsupported()
	return false
}

func writeRobotFile(*environment.Robot, string) bool {
	unsupported()
	return false
}
