// Package job runs long bake operations in the background. A Gate admits at
// most one job at a time; each Job carries its own cancellation and progress.
package job

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/logger"
)

// ErrBusy is returned when a job is started while another holds the gate.
var ErrBusy = errors.New("another job is already running")

// Gate is a one-slot admission semaphore. The zero value is ready to use.
type Gate struct {
	mu     sync.Mutex
	holder string
	busy   bool
}

// TryAcquire takes the gate for name, or returns ErrBusy.
func (g *Gate) TryAcquire(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return ErrBusy
	}
	g.busy = true
	g.holder = name
	return nil
}

// Release frees the gate. Releasing a free gate is a no-op.
func (g *Gate) Release() {
	g.mu.Lock()
	g.busy = false
	g.holder = ""
	g.mu.Unlock()
}

// Active reports the name of the running job, if any.
func (g *Gate) Active() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder, g.busy
}

// Func is the body of a job. It should return promptly once ctx is done and
// may call report with a completion fraction in [0,1].
type Func[T any] func(ctx context.Context, report func(float32)) T

// Job is a handle to a running background job.
type Job[T any] struct {
	ID      uuid.UUID
	Name    string
	Started time.Time

	cancel   context.CancelFunc
	done     chan struct{}
	progress atomic.Uint32
	result   T
}

// Start runs fn on a new goroutine once gate admits it. A nil gate admits
// every job.
func Start[T any](ctx context.Context, gate *Gate, name string, fn Func[T]) (*Job[T], error) {
	if gate != nil {
		if err := gate.TryAcquire(name); err != nil {
			return nil, err
		}
	}

	jctx, cancel := context.WithCancel(ctx)
	j := &Job[T]{
		ID:      uuid.New(),
		Name:    name,
		Started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	log := logger.Named("job")
	log.Info("job started", zap.String("job", name), zap.Stringer("id", j.ID))

	go func() {
		defer close(j.done)
		defer cancel()
		if gate != nil {
			defer gate.Release()
		}

		j.result = fn(jctx, j.setProgress)
		j.setProgress(1)
		log.Info("job finished",
			zap.String("job", name),
			zap.Stringer("id", j.ID),
			zap.Duration("elapsed", time.Since(j.Started)))
	}()
	return j, nil
}

func (j *Job[T]) setProgress(p float32) {
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	j.progress.Store(math.Float32bits(p))
}

// Progress returns the last reported completion fraction.
func (j *Job[T]) Progress() float32 {
	return math.Float32frombits(j.progress.Load())
}

// Cancel requests cooperative cancellation. It does not wait.
func (j *Job[T]) Cancel() {
	j.cancel()
}

// Done is closed when the job body has returned.
func (j *Job[T]) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes and returns its result.
func (j *Job[T]) Wait() T {
	<-j.done
	return j.result
}
