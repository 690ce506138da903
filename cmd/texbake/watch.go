package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/config"
	"github.com/Faultbox/texbake/internal/job"
	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/scene"
)

const settleDelay = 200 * time.Millisecond

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: texbake watch [options] <scene.yaml>")
		os.Exit(1)
	}

	cfg, req := setup(flags)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &watcher{
		path:    fs.Arg(0),
		cfg:     cfg,
		req:     req,
		gate:    &job.Gate{},
		tracked: map[string]bool{},
		results: make(chan outcome, 1),
		log:     logger.Named("watch"),
	}
	if err := w.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type outcome struct {
	res bake.Result
	err error
}

// watcher rebakes a scene whenever one of its files changes. Changes that
// arrive while a bake runs are rejected by the gate and trigger one more
// bake once the running one finishes.
type watcher struct {
	path string
	cfg  *config.Config
	req  bake.Request
	gate *job.Gate

	fsw     *fsnotify.Watcher
	tracked map[string]bool
	dirty   bool
	running bool
	results chan outcome
	log     *zap.Logger
}

func (w *watcher) run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()
	w.fsw = fsw

	// Editors often replace files, so watch directories and filter by name.
	w.track([]string{w.path})
	w.rebake(ctx)

	settle := time.NewTimer(settleDelay)
	settle.Stop()

	for {
		select {
		case <-ctx.Done():
			if w.running {
				<-w.results
			}
			w.log.Info("watch stopped")
			return nil

		case e := <-fsw.Events:
			abs, _ := filepath.Abs(e.Name)
			if !w.tracked[abs] || e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("file changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))
			settle.Reset(settleDelay)

		case <-settle.C:
			w.rebake(ctx)

		case out := <-w.results:
			w.running = false
			if out.err != nil {
				w.log.Error("bake failed", zap.Error(out.err))
			} else {
				printReports(os.Stdout, out.res)
			}
			if w.dirty {
				w.dirty = false
				w.rebake(ctx)
			}

		case err := <-fsw.Errors:
			w.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

// rebake reloads the scene and starts a bake in the background.
func (w *watcher) rebake(ctx context.Context) {
	sc, err := scene.Load(w.path)
	if err != nil {
		w.log.Error("scene reload failed", zap.Error(err))
		return
	}
	w.track(sc.Files())

	run, err := startBake(ctx, w.gate, w.cfg, w.req, sc)
	if errors.Is(err, job.ErrBusy) {
		w.log.Warn("bake request rejected, a bake is already running")
		w.dirty = true
		return
	}
	if err != nil {
		w.log.Error("bake not started", zap.Error(err))
		return
	}

	w.running = true
	go func() {
		res, err := run.finish(nil)
		w.results <- outcome{res, err}
	}()
}

func (w *watcher) track(files []string) {
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil || w.tracked[abs] {
			continue
		}
		if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
			w.log.Warn("cannot watch directory", zap.String("dir", filepath.Dir(abs)), zap.Error(err))
			continue
		}
		w.tracked[abs] = true
	}
}
