// Package environment holds the simulation environment and the bodies and
// robots loaded into it.
package environment

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/scenemesh/internal/logger"
	"github.com/Faultbox/scenemesh/pkg/paths"
)

// DataPathEnv names the variable holding extra data search directories.
const DataPathEnv = "SCENEMESH_DATA"

// Environment errors.
var (
	ErrDuplicateBody = errors.New("environment: body name already in use")
	ErrNoBodyName    = errors.New("environment: body has no name")
	ErrForeignBody   = errors.New("environment: body belongs to another environment")
)

// Environment owns a set of bodies and robots keyed by name.
type Environment struct {
	mu     sync.RWMutex
	bodies map[string]*KinBody
	robots map[string]*Robot

	rng          *rand.Rand
	dataDirs     []string
	loadDataDirs bool
	initialized  bool
}

// New returns an uninitialized environment. Call Init before use.
func New(loadDataDirs bool) *Environment {
	return &Environment{
		bodies:       make(map[string]*KinBody),
		robots:       make(map[string]*Robot),
		loadDataDirs: loadDataDirs,
	}
}

// CreateEnvironment builds and initializes an environment.
func CreateEnvironment(loadDataDirs bool) *Environment {
	env := New(loadDataDirs)
	env.Init()
	return env
}

// Init seeds the environment's random source from the current time and,
// if requested, reads data search directories from $SCENEMESH_DATA.
// Calling Init again reseeds and rereads.
func (e *Environment) Init() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rng = rand.New(rand.NewSource(time.Now().UnixMilli()))
	e.dataDirs = nil
	if e.loadDataDirs {
		if v, ok := os.LookupEnv(DataPathEnv); ok {
			dirs, _ := paths.ParseDirectories(&v)
			e.dataDirs = paths.NonEmpty(dirs)
		}
	}
	e.initialized = true

	logger.Debug("environment initialized", zap.Strings("data_dirs", e.dataDirs))
}

// Initialized reports whether Init has run.
func (e *Environment) Initialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// Rand returns the environment's random source, seeded by Init. Nothing in
// this module draws from it; it is kept for planners and samplers that run
// against the environment. It is not safe for concurrent use.
func (e *Environment) Rand() *rand.Rand {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rng
}

// DataDirs returns the data search directories.
func (e *Environment) DataDirs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.dataDirs...)
}

// AddDataDirs appends search directories after those from the environment.
func (e *Environment) AddDataDirs(dirs ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dataDirs = append(e.dataDirs, paths.NonEmpty(dirs)...)
}

// ResolvePath returns name unchanged if it is absolute or exists relative to
// the working directory, otherwise the first match under DataDirs.
func (e *Environment) ResolvePath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	for _, dir := range e.DataDirs() {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("resolving %s: %w", name, os.ErrNotExist)
}

// AddBody registers body under its name.
func (e *Environment) AddBody(body *KinBody) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.claim(body); err != nil {
		return err
	}
	e.bodies[body.Name] = body
	return nil
}

// AddRobot registers robot under its name. Robots share the body namespace.
func (e *Environment) AddRobot(robot *Robot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.claim(&robot.KinBody); err != nil {
		return err
	}
	e.robots[robot.Name] = robot
	return nil
}

func (e *Environment) claim(body *KinBody) error {
	if body.Name == "" {
		return ErrNoBodyName
	}
	if body.env != nil && body.env != e {
		return fmt.Errorf("%s: %w", body.Name, ErrForeignBody)
	}
	if _, ok := e.bodies[body.Name]; ok {
		return fmt.Errorf("%s: %w", body.Name, ErrDuplicateBody)
	}
	if _, ok := e.robots[body.Name]; ok {
		return fmt.Errorf("%s: %w", body.Name, ErrDuplicateBody)
	}
	body.env = e
	return nil
}

// RemoveBody removes the body or robot with the given name. It returns
// false if no such body exists.
func (e *Environment) RemoveBody(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.bodies[name]; ok {
		b.env = nil
		delete(e.bodies, name)
		return true
	}
	if r, ok := e.robots[name]; ok {
		r.env = nil
		delete(e.robots, name)
		return true
	}
	return false
}

// GetBody returns the plain body with the given name, or nil.
func (e *Environment) GetBody(name string) *KinBody {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bodies[name]
}

// GetRobot returns the robot with the given name, or nil.
func (e *Environment) GetRobot(name string) *Robot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.robots[name]
}

// Bodies returns the plain bodies sorted by name.
func (e *Environment) Bodies() []*KinBody {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*KinBody, 0, len(e.bodies))
	for _, b := range e.bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Robots returns the robots sorted by name.
func (e *Environment) Robots() []*Robot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Robot, 0, len(e.robots))
	for _, r := range e.robots {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
