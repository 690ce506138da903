package job

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestJobRunsAndReportsProgress(t *testing.T) {
	var gate Gate
	j, err := Start(context.Background(), &gate, "bake", func(ctx context.Context, report func(float32)) int {
		report(0.5)
		return 42
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got := j.Wait(); got != 42 {
		t.Errorf("expected result 42, got %d", got)
	}
	if p := j.Progress(); p != 1 {
		t.Errorf("expected progress 1 after completion, got %f", p)
	}
	if _, busy := gate.Active(); busy {
		t.Error("gate still held after job finished")
	}
}

func TestGateRejectsSecondJob(t *testing.T) {
	var gate Gate
	release := make(chan struct{})
	first, err := Start(context.Background(), &gate, "first", func(ctx context.Context, _ func(float32)) bool {
		<-release
		return true
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if name, busy := gate.Active(); !busy || name != "first" {
		t.Errorf("expected gate held by first, got %q (busy=%v)", name, busy)
	}
	_, err = Start(context.Background(), &gate, "second", func(ctx context.Context, _ func(float32)) bool {
		return true
	})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(release)
	first.Wait()

	again, err := Start(context.Background(), &gate, "third", func(ctx context.Context, _ func(float32)) bool {
		return true
	})
	if err != nil {
		t.Fatalf("expected gate to admit after release, got %v", err)
	}
	again.Wait()
}

func TestCancelStopsJob(t *testing.T) {
	j, err := Start(context.Background(), nil, "cancel", func(ctx context.Context, _ func(float32)) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Second):
			return nil
		}
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	j.Cancel()

	select {
	case <-j.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not stop after Cancel")
	}
	if got := j.Wait(); !errors.Is(got, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", got)
	}
}

func TestProgressClamped(t *testing.T) {
	block := make(chan struct{})
	seen := make(chan float32, 1)
	var j *Job[struct{}]
	j, err := Start(context.Background(), nil, "clamp", func(ctx context.Context, report func(float32)) struct{} {
		<-block
		report(3)
		seen <- j.Progress()
		return struct{}{}
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	close(block)
	if p := <-seen; p != 1 {
		t.Errorf("expected progress clamped to 1, got %f", p)
	}
	j.Wait()
	if j.ID.String() == "" {
		t.Error("expected a job ID")
	}
}
