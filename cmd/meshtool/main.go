// meshtool is a CLI utility for inspecting and converting scene documents.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/scenemesh/internal/config"
	"github.com/Faultbox/scenemesh/internal/logger"
	"github.com/Faultbox/scenemesh/pkg/document"
	"github.com/Faultbox/scenemesh/pkg/environment"
	"github.com/Faultbox/scenemesh/pkg/paths"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	document.Options.Mesh.SkipScaleCorrection = !cfg.Mesh.ScaleCorrection

	command := args[0]
	args = args[1:]

	var ok bool
	switch command {
	case "info":
		ok = cmdInfo(newEnvironment(cfg), args)
	case "extract", "x":
		ok = cmdExtract(newEnvironment(cfg), args)
	case "convert":
		ok = cmdConvert(newEnvironment(cfg), args)
	case "watch":
		ok = cmdWatch(cfg, args)
	case "config":
		ok = cmdConfig(cfg, args)
	case "dirs":
		ok = cmdDirs(newEnvironment(cfg), args)
	case "help", "-h", "--help":
		printUsage()
		ok = true
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}

	if !ok {
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - scene document and collision mesh utility

Usage:
  meshtool [global options] <command> [options]

Global options:
  -config <file>          Config file (default ./config.yaml or user config dir)
  -debug                  Enable debug logging
  -data <list>            Extra document search directories
  -no-scale-correction    Skip the final axis-scale correction

Commands:
  info <doc>                     Show bodies, links and mesh statistics
  extract [-robot] <doc> <out>   Extract the first body (or robot) to a YAML document
  convert <doc> <out>            Load every body in doc and save them as YAML
  watch [-once] <doc> <out>      Convert doc to out again whenever doc changes
  config [-save] [-o file]       Print the effective config, or save it
  dirs [list]                    Show how a directory list is split

Documents are YAML scene files (.yaml, .yml) or RSM models (.rsm).

Examples:
  meshtool info scene.yaml
  meshtool -data /srv/models extract chair.rsm chair.yaml
  meshtool -no-scale-correction convert scene.yaml flat.yaml
  meshtool -data /srv/models config -save
  meshtool dirs "/opt/a:/opt/b"`)
}

// newEnvironment creates an environment searching the configured data
// directories after those from SCENEMESH_DATA.
func newEnvironment(cfg *config.Config) *environment.Environment {
	env := environment.CreateEnvironment(cfg.Data.LoadEnv)
	if cfg.Data.SearchPaths != "" {
		dirs, _ := paths.ParseDirectories(&cfg.Data.SearchPaths)
		env.AddDataDirs(dirs...)
	}
	return env
}

func cmdInfo(env *environment.Environment, args []string) bool {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Show per-link details")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info [-v] <doc>")
		return false
	}

	if !document.ParseFile(env, fs.Arg(0)) {
		fmt.Fprintf(os.Stderr, "Error: could not load %s (run with -debug for details)\n", fs.Arg(0))
		return false
	}

	fmt.Printf("Document: %s\n", fs.Arg(0))
	for _, body := range env.Bodies() {
		printBody("Body", body, *verbose)
	}
	for _, robot := range env.Robots() {
		printBody("Robot", &robot.KinBody, *verbose)
		for _, m := range robot.Manipulators {
			fmt.Printf("  manipulator %s: %s -> %s\n", m.Name, m.Base, m.Effector)
		}
	}
	return true
}

func printBody(kind string, body *environment.KinBody, verbose bool) {
	fmt.Printf("%s %s: %d links, %d triangles\n", kind, body.Name, len(body.Links), body.NumTriangles())
	if !verbose {
		return
	}
	for _, l := range body.Links {
		if l.Mesh == nil {
			fmt.Printf("  %-20s no mesh\n", l.Name)
			continue
		}
		lo, hi, ok := l.Mesh.Bounds()
		if !ok {
			fmt.Printf("  %-20s empty\n", l.Name)
			continue
		}
		fmt.Printf("  %-20s %6d tris  bounds (%.3f %.3f %.3f) - (%.3f %.3f %.3f)\n",
			l.Name, l.Mesh.NumTriangles(), lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
	}
}

func cmdExtract(env *environment.Environment, args []string) bool {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	robot := fs.Bool("robot", false, "Extract the first robot instead of the first body")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool extract [-robot] <doc> <out.yaml>")
		return false
	}
	in, out := fs.Arg(0), fs.Arg(1)

	if *robot {
		r, ok := document.ParseRobotFile(env, in)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no robot extracted from %s\n", in)
			return false
		}
		if !document.WriteRobotFile(r, out) {
			fmt.Fprintf(os.Stderr, "Error: could not write %s\n", out)
			return false
		}
		logger.Info("extracted robot", zap.String("robot", r.Name), zap.Int("triangles", r.NumTriangles()))
		return true
	}

	body, ok := document.ParseBodyFile(env, in)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no body extracted from %s\n", in)
		return false
	}
	if !document.WriteBodyFile(body, out) {
		fmt.Fprintf(os.Stderr, "Error: could not write %s\n", out)
		return false
	}
	logger.Info("extracted body", zap.String("body", body.Name), zap.Int("triangles", body.NumTriangles()))
	return true
}

func cmdConvert(env *environment.Environment, args []string) bool {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool convert <doc> <out.yaml>")
		return false
	}
	if !document.ParseFile(env, args[0]) {
		fmt.Fprintf(os.Stderr, "Error: could not load %s\n", args[0])
		return false
	}
	if !document.WriteFile(env, args[1]) {
		fmt.Fprintf(os.Stderr, "Error: could not write %s\n", args[1])
		return false
	}
	logger.Info("converted document",
		zap.String("from", args[0]),
		zap.String("to", args[1]),
		zap.Int("bodies", len(env.Bodies())),
		zap.Int("robots", len(env.Robots())))
	return true
}

// cmdConfig prints the config after file and flag overrides. With -save it
// becomes the user's config file; with -o it is written to the given path.
func cmdConfig(cfg *config.Config, args []string) bool {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Save to the user config directory")
	out := fs.String("o", "", "Save to this file")
	fs.Parse(args)

	switch {
	case *out != "":
		if err := cfg.SaveTo(*out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		logger.Info("saved config", zap.String("path", *out))
	case *save:
		path, err := cfg.Save()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		logger.Info("saved config", zap.String("path", path))
	default:
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		os.Stdout.Write(data)
	}
	return true
}

func cmdDirs(env *environment.Environment, args []string) bool {
	var dirs []string
	if len(args) > 0 {
		dirs, _ = paths.ParseDirectories(&args[0])
	} else {
		dirs = env.DataDirs()
	}

	for i, d := range dirs {
		if d == "" {
			d = "(empty)"
		}
		fmt.Printf("%3d  %s\n", i, d)
	}
	return true
}
