package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/config"
	"github.com/Faultbox/texbake/internal/job"
	"github.com/Faultbox/texbake/internal/scene"
)

const planeScene = `
objects:
  - name: Plane
    primitive: {shape: plane}
active: Plane
`

func loadPlane(t *testing.T) (*scene.Scene, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(planeScene), 0644); err != nil {
		t.Fatalf("failed to write scene: %v", err)
	}
	sc, err := scene.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return sc, dir
}

func externalUV(t *testing.T, dir string) (*config.Config, bake.Request) {
	t.Helper()
	cfg := config.Default()
	cfg.Bake.Type = "UV"
	cfg.Bake.Margin = 0
	cfg.Output.SaveMode = "EXTERNAL"
	cfg.Output.FilePath = filepath.Join(dir, "out", "uv.png")
	cfg.Output.Width, cfg.Output.Height = 8, 8
	req, err := cfg.Request()
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return cfg, req
}

func TestBakeSceneExternal(t *testing.T) {
	sc, dir := loadPlane(t)
	cfg, req := externalUV(t, dir)

	res, err := bakeScene(context.Background(), &job.Gate{}, cfg, req, sc, nil)
	if err != nil {
		t.Fatalf("bakeScene failed: %v", err)
	}
	if res.Status != bake.StatusSuccess {
		t.Fatalf("expected success, got %s: %v", res.Status, res.Reports)
	}
	want := filepath.Join(dir, "out", "uv.png")
	if len(res.Written) != 1 || res.Written[0] != want {
		t.Fatalf("expected %s written, got %v", want, res.Written)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("output file missing: %v", err)
	}

	var out bytes.Buffer
	printReports(&out, res)
	if !strings.Contains(out.String(), "status: success") {
		t.Errorf("expected status line, got %q", out.String())
	}
}

func TestBakeSceneBusy(t *testing.T) {
	sc, dir := loadPlane(t)
	cfg, req := externalUV(t, dir)

	gate := &job.Gate{}
	if err := gate.TryAcquire("other"); err != nil {
		t.Fatalf("TryAcquire failed: %v", err)
	}
	defer gate.Release()

	if _, err := bakeScene(context.Background(), gate, cfg, req, sc, nil); !errors.Is(err, job.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		status bake.Status
		want   int
	}{
		{bake.StatusSuccess, 0},
		{bake.StatusCancelled, 130},
		{bake.StatusFailed, 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.status); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.status, tt.want, got)
		}
	}
}
