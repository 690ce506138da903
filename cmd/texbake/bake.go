package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/config"
	"github.com/Faultbox/texbake/internal/imaging"
	"github.com/Faultbox/texbake/internal/job"
	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/scene"
	"github.com/Faultbox/texbake/internal/shading"
)

func cmdBake(args []string) int {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	quiet := fs.Bool("q", false, "Hide the progress bar")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: texbake bake [options] <scene.yaml>")
		return 1
	}

	cfg, req := setup(flags)
	defer logger.Sync()

	sc, err := scene.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bar io.Writer
	if !*quiet {
		bar = os.Stderr
	}
	res, err := bakeScene(ctx, nil, cfg, req, sc, bar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	printReports(os.Stdout, res)
	return exitCode(res.Status)
}

// bakeRun is a started bake of one scene.
type bakeRun struct {
	scene *scene.Scene
	req   bake.Request
	enc   imaging.FileEncoder
	job   *job.Job[bake.Result]
}

// startBake starts a bake of sc as a job admitted through gate. It fails with
// job.ErrBusy while another bake holds the gate.
func startBake(ctx context.Context, gate *job.Gate, cfg *config.Config, req bake.Request, sc *scene.Scene) (*bakeRun, error) {
	active, err := sc.Active()
	if err != nil {
		return nil, err
	}

	run := &bakeRun{scene: sc, req: req}
	p := &bake.Pipeline{
		Host:        sc,
		Fallback:    shading.Evaluator{},
		Transformer: imaging.Transformer{},
		Encoder:     run.enc,
		Workers:     cfg.Workers,
	}
	if run.job, err = p.Start(ctx, gate, req, active, sc.Selected()); err != nil {
		return nil, err
	}
	return run, nil
}

// finish waits for the bake and saves the internal images it modified.
// Progress is drawn to progress when set.
func (r *bakeRun) finish(progress io.Writer) (bake.Result, error) {
	if progress != nil {
		trackProgress(r.job, progress)
	}
	res := r.job.Wait()

	if res.Status == bake.StatusSuccess && r.req.SaveMode == bake.SaveInternal {
		saved, err := r.scene.SaveImages(r.enc)
		if err != nil {
			return res, err
		}
		res.Written = append(res.Written, saved...)
	}

	if leaks := append(r.scene.LiveMeshes(), r.scene.Pending()...); len(leaks) > 0 {
		logger.Warn("bake left temporary scene state", zap.Strings("leaks", leaks))
	}
	return res, nil
}

// bakeScene starts a bake and waits for it.
func bakeScene(ctx context.Context, gate *job.Gate, cfg *config.Config, req bake.Request, sc *scene.Scene, progress io.Writer) (bake.Result, error) {
	run, err := startBake(ctx, gate, cfg, req, sc)
	if err != nil {
		return bake.Result{}, err
	}
	return run.finish(progress)
}

// trackProgress draws j's progress until it finishes.
func trackProgress(j *job.Job[bake.Result], w io.Writer) {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(j.Name),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Close()

	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-j.Done():
			bar.Set(100)
			bar.Finish()
			return
		case <-tick.C:
			bar.Set(int(j.Progress() * 100))
		}
	}
}

func printReports(w io.Writer, res bake.Result) {
	for _, r := range res.Reports {
		fmt.Fprintf(w, "%-7s %s\n", r.Level, r.Message)
	}
	for _, path := range res.Written {
		fmt.Fprintf(w, "wrote   %s\n", path)
	}
	fmt.Fprintf(w, "status: %s\n", res.Status)
}

func exitCode(s bake.Status) int {
	switch s {
	case bake.StatusSuccess:
		return 0
	case bake.StatusCancelled:
		return 130
	}
	return 1
}
