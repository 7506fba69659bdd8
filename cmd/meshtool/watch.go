package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/scenemesh/internal/config"
	"github.com/Faultbox/scenemesh/internal/logger"
)

// Editors often write a file in several steps; wait this long after the
// last event before converting.
const watchSettle = 200 * time.Millisecond

// cmdWatch converts doc to out, then again every time doc changes, until
// interrupted.
func cmdWatch(cfg *config.Config, args []string) bool {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	once := fs.Bool("once", false, "Convert once and exit (no watching)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool watch [-once] <doc> <out.yaml>")
		return false
	}
	in, out := fs.Arg(0), fs.Arg(1)

	convert := func() bool {
		// Every pass starts from an empty environment so removed bodies
		// disappear from the output.
		return cmdConvert(newEnvironment(cfg), []string{in, out})
	}
	if ok := convert(); *once {
		return ok
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := watchFile(ctx, in, convert); err != nil {
		logger.Error("watch failed", zap.String("path", in), zap.Error(err))
		return false
	}
	return true
}

// watchFile calls fn after path changes until ctx is done. The parent
// directory is watched so that editors replacing the file are noticed.
func watchFile(ctx context.Context, path string, fn func() bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watching document", zap.String("path", abs))

	settle := time.NewTimer(watchSettle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				settle.Reset(watchSettle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-settle.C:
			if !fn() {
				logger.Warn("conversion failed, waiting for the next change", zap.String("path", abs))
			}
		}
	}
}
